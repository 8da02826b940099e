// Package ephem provides the astronomy providers behind the calendar
// engine: an SPK kernel reader for JPL ephemerides and a file-free
// analytic series, plus the resolution rules that pick between them.
package ephem

import (
	"os"
	"path/filepath"
	"time"
)

// Environment variables and defaults of the resolution precedence.
const (
	EnvEphemeris     = "TOKI_EPHEMERIS"
	EnvEphemerisPath = "TOKI_EPHEMERIS_PATH"
	DefaultEphemeris = "de440s.bsp"

	// dataDir is where bare ephemeris names are looked up.
	dataDir = "data"
)

// Ref is a resolved ephemeris reference: either the analytic provider or a
// named kernel file.
type Ref struct {
	Name     string
	Path     string
	Analytic bool
}

// Key is a stable cache key for the process-wide provider table.
func (r Ref) Key() string {
	if r.Analytic {
		return AnalyticName
	}
	return r.Path
}

// Resolve applies the precedence (first hit wins):
//
//  1. explicit path argument
//  2. $TOKI_EPHEMERIS_PATH
//  3. explicit name argument
//  4. $TOKI_EPHEMERIS
//  5. the default kernel name under data/
//
// The reserved name "analytic" (at any name step) selects the built-in
// series provider instead of a file. A bare file name resolves under the
// data directory; names with a separator and absolute paths are used
// as given.
func Resolve(name, path string) Ref {
	if path == "" {
		path = os.Getenv(EnvEphemerisPath)
	}
	if path != "" {
		return Ref{Name: filepath.Base(path), Path: path}
	}
	if name == "" {
		name = os.Getenv(EnvEphemeris)
	}
	if name == "" {
		name = DefaultEphemeris
	}
	if name == AnalyticName {
		return Ref{Name: AnalyticName, Analytic: true}
	}
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return Ref{Name: filepath.Base(name), Path: name}
	}
	return Ref{Name: name, Path: filepath.Join(dataDir, name)}
}

// Provider is the capability set a resolved ephemeris exposes; it matches
// the engine-side oracle contract.
type Provider interface {
	SunLongitude(t time.Time) (float64, error)
	MoonLongitude(t time.Time) (float64, error)
	SunriseSunset(year int, month time.Month, day int, lat, lon float64) (rise, set time.Time)
	Coverage() (start, end time.Time)
	Name() string
}

// Open acquires the provider for a resolved reference. Call it once per
// reference and share the result; kernels are immutable after loading.
func Open(r Ref) (Provider, error) {
	if r.Analytic {
		return AnalyticProvider{}, nil
	}
	return OpenSPK(r.Name, r.Path)
}
