package native

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrServiceUnavailable reports that a session with the vendor library
// could not be established (a zero handle from Open).
var ErrServiceUnavailable = errors.New("native: coordinate service unavailable")

// ServiceError is a failed call into the vendor library. Text carries
// the error string retrieved from the library via the two-call
// protocol, which is the only diagnostic channel the ABI offers.
type ServiceError struct {
	Op   string
	Text string
}

func (e *ServiceError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("native: %s failed", e.Op)
	}
	return fmt.Sprintf("native: %s failed: %s", e.Op, e.Text)
}

// Library wraps a Driver with the error-retrieval protocol and the
// session lifecycle. The vendor library has no concurrent-call
// contract, so every call is serialised behind a single mutex; one
// Library (and one session handle) per opened acquisition.
type Library struct {
	mu  sync.Mutex
	drv Driver
}

// NewLibrary wraps drv. The Library takes ownership: drv must not be
// used directly afterwards.
func NewLibrary(drv Driver) *Library {
	return &Library{drv: drv}
}

// Open establishes a session for the analysis directory. A zero handle
// from the vendor library is reported as ErrServiceUnavailable along
// with whatever error text the library recorded.
func (l *Library) Open(path string, useRecalibrated bool) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	handle := l.drv.Open(path, useRecalibrated)
	if handle == 0 {
		text := l.lastErrorLocked()
		if text == "" {
			return 0, fmt.Errorf("open %s: %w", path, ErrServiceUnavailable)
		}
		return 0, fmt.Errorf("open %s: %w: %s", path, ErrServiceUnavailable, text)
	}
	return handle, nil
}

// Close releases the session handle. Safe to call with zero (never
// opened) and safe to call more than once.
func (l *Library) Close(handle uint64) {
	if handle == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.drv.Close(handle)
}

// LastError retrieves the library's most recent error text.
func (l *Library) LastError() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErrorLocked()
}

func (l *Library) lastErrorLocked() string {
	n := l.drv.LastErrorString(nil)
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	l.drv.LastErrorString(buf)
	return strings.TrimRight(string(buf), "\x00")
}

// Convert runs one batched coordinate transform over values and
// returns the converted array, always the same length as the input.
func (l *Library) Convert(handle uint64, frameID int64, t Transform, values []float64) ([]float64, error) {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if ok := l.drv.Convert(handle, frameID, t, values, out); ok == 0 {
		return nil, &ServiceError{Op: t.String(), Text: l.lastErrorLocked()}
	}
	return out, nil
}

// ReadScanBuffer asks the vendor library to fill buf with the packed
// scan data for [scanBegin, scanEnd) of one frame. It returns the
// number of bytes the full range requires; the caller owns the
// grow-and-retry protocol. A zero return from the library is surfaced
// as a ServiceError.
func (l *Library) ReadScanBuffer(handle uint64, frameID int64, scanBegin, scanEnd uint32, buf []uint32) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	required := l.drv.ReadScans(handle, frameID, scanBegin, scanEnd, buf)
	if required == 0 {
		return 0, &ServiceError{Op: "read_scans", Text: l.lastErrorLocked()}
	}
	return required, nil
}
