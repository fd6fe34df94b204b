package domain

import "errors"

// Sentinel errors for the battle lifecycle. Handlers map these onto HTTP
// statuses; everything else is a 500.
var (
	// ErrInvalidRequest rejects malformed creation input: empty or
	// identical participant names, or an out-of-range round count.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound reports an unknown battle id.
	ErrNotFound = errors.New("battle not found")

	// ErrBattleBusy rejects a second concurrent writer stream for the
	// same battle.
	ErrBattleBusy = errors.New("battle stream already active")

	// ErrGenerationFailed wraps provider errors and timeouts; it is
	// surfaced in-band as a stream error event.
	ErrGenerationFailed = errors.New("generation failed")
)
