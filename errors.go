package toki

import "errors"

// Error kinds surfaced by the engine. Callers match them with errors.Is;
// wrapped messages carry the human-readable detail. The engine never returns
// a partially built record together with an error.
var (
	// ErrEphemerisUnavailable means the ephemeris handle could not be
	// acquired (file missing, unreadable, or not a valid SPK).
	ErrEphemerisUnavailable = errors.New("ephemeris unavailable")

	// ErrOutOfEphemerisRange means a requested instant lies outside the
	// ephemeris's validity window.
	ErrOutOfEphemerisRange = errors.New("outside ephemeris range")

	// ErrRootFindFailed means bisection did not converge for a crossing.
	// The whole response for the affected range fails; crossings are never
	// silently omitted.
	ErrRootFindFailed = errors.New("root finding failed")

	// ErrLunisolarResolutionFailed means the anchoring 冬至 or a required
	// new moon could not be located inside the padded window.
	ErrLunisolarResolutionFailed = errors.New("lunisolar resolution failed")

	// ErrInvalidInput means a malformed date, reversed range, or
	// out-of-bounds observer coordinate.
	ErrInvalidInput = errors.New("invalid input")
)
