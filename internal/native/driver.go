// Package native wraps the vendor coordinate-conversion library
// (libtimsdata.so / timsdata.dll) behind a narrow Go contract. The
// library owns all coordinate math: raw TOF index to m/z, mobility
// scan number to 1/K0, and scan number to TIMS voltage. Nothing in
// this repository recomputes those transforms.
package native

// Transform selects one of the six batched 1:1 coordinate conversions
// exported by the vendor library.
type Transform int

const (
	IndexToMz Transform = iota
	MzToIndex
	ScanNumToOneOverK0
	OneOverK0ToScanNum
	ScanNumToVoltage
	VoltageToScanNum
)

func (t Transform) String() string {
	switch t {
	case IndexToMz:
		return "index_to_mz"
	case MzToIndex:
		return "mz_to_index"
	case ScanNumToOneOverK0:
		return "scannum_to_oneoverk0"
	case OneOverK0ToScanNum:
		return "oneoverk0_to_scannum"
	case ScanNumToVoltage:
		return "scannum_to_voltage"
	case VoltageToScanNum:
		return "voltage_to_scannum"
	}
	return "unknown"
}

// Driver is the raw vendor ABI. All entry points follow the vendor
// convention of signalling failure with a zero return value; the error
// text is then retrievable through LastErrorString.
//
// A Driver is NOT safe for concurrent use. Library serialises access
// to it; callers must not invoke a Driver directly once it has been
// handed to a Library.
type Driver interface {
	// Open establishes a session for the analysis directory and
	// returns its handle, or zero on failure.
	Open(path string, useRecalibrated bool) uint64

	// Close releases a session handle. Closing handle zero is a no-op.
	Close(handle uint64)

	// LastErrorString implements the vendor two-call protocol: called
	// with a nil buffer it returns the required buffer length in
	// bytes, called with a buffer of that length it fills it with the
	// NUL-terminated error text and returns the length written.
	LastErrorString(buf []byte) uint32

	// ReadScans fills buf with the packed scan data for the half-open
	// mobility scan range [scanBegin, scanEnd) of one frame and
	// returns the number of bytes the full range requires. A return
	// larger than 4*len(buf) means buf was too small and must be
	// regrown by the caller; zero means failure.
	ReadScans(handle uint64, frameID int64, scanBegin, scanEnd uint32, buf []uint32) uint32

	// Convert applies one batched coordinate transform. in and out
	// must have equal length. Returns non-zero on success.
	Convert(handle uint64, frameID int64, t Transform, in, out []float64) uint32
}
