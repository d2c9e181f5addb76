package tims

import "errors"

var (
	// ErrFrameTooLarge means the vendor library asked for a scan
	// buffer beyond the configured hard cap. Fatal: the growth loop
	// stops without allocating past the cap.
	ErrFrameTooLarge = errors.New("tims: maximum expected frame size exceeded")

	// ErrAmbiguousPrecursor means more than one precursor selection
	// window overlaps a merged scan range. The resolver refuses to
	// guess which selection produced the data.
	ErrAmbiguousPrecursor = errors.New("tims: multiple precursors overlap scan interval")

	// ErrInvalidScanID means a scan identifier string matched neither
	// the single-scan nor the merged-range format.
	ErrInvalidScanID = errors.New("tims: malformed scan identifier")

	// ErrClosed means the session was used after Close.
	ErrClosed = errors.New("tims: session closed")
)
