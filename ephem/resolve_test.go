package ephem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Precedence(t *testing.T) {
	t.Setenv(EnvEphemeris, "")
	t.Setenv(EnvEphemerisPath, "")

	t.Run("explicit path wins over everything", func(t *testing.T) {
		t.Setenv(EnvEphemerisPath, "/env/path.bsp")
		r := Resolve("de421.bsp", "/explicit/kernel.bsp")
		assert.Equal(t, "/explicit/kernel.bsp", r.Path)
		assert.Equal(t, "kernel.bsp", r.Name)
		assert.False(t, r.Analytic)
	})

	t.Run("env path beats names", func(t *testing.T) {
		t.Setenv(EnvEphemerisPath, "/env/path.bsp")
		r := Resolve("de421.bsp", "")
		assert.Equal(t, "/env/path.bsp", r.Path)
	})

	t.Run("explicit name beats env name", func(t *testing.T) {
		t.Setenv(EnvEphemeris, "de421.bsp")
		r := Resolve("de440s.bsp", "")
		assert.Equal(t, filepath.Join("data", "de440s.bsp"), r.Path)
		assert.Equal(t, "de440s.bsp", r.Name)
	})

	t.Run("env name beats default", func(t *testing.T) {
		t.Setenv(EnvEphemeris, "de421.bsp")
		r := Resolve("", "")
		assert.Equal(t, filepath.Join("data", "de421.bsp"), r.Path)
	})

	t.Run("default kernel under data dir", func(t *testing.T) {
		r := Resolve("", "")
		assert.Equal(t, DefaultEphemeris, r.Name)
		assert.Equal(t, filepath.Join("data", DefaultEphemeris), r.Path)
	})
}

func TestResolve_Analytic(t *testing.T) {
	t.Setenv(EnvEphemeris, "")
	t.Setenv(EnvEphemerisPath, "")

	r := Resolve(AnalyticName, "")
	assert.True(t, r.Analytic)
	assert.Equal(t, AnalyticName, r.Key())

	p, err := Open(r)
	assert.NoError(t, err)
	assert.Equal(t, AnalyticName, p.Name())

	t.Setenv(EnvEphemeris, AnalyticName)
	assert.True(t, Resolve("", "").Analytic)
}

func TestResolve_PathLikeNames(t *testing.T) {
	t.Setenv(EnvEphemeris, "")
	t.Setenv(EnvEphemerisPath, "")

	abs := Resolve("/kernels/de440s.bsp", "")
	assert.Equal(t, "/kernels/de440s.bsp", abs.Path)
	assert.Equal(t, "de440s.bsp", abs.Name)

	rel := Resolve("kernels/de440s.bsp", "")
	assert.Equal(t, "kernels/de440s.bsp", rel.Path)
}

func TestOpen_MissingKernel(t *testing.T) {
	_, err := Open(Ref{Name: "nope.bsp", Path: filepath.Join(t.TempDir(), "nope.bsp")})
	assert.Error(t, err)
}
