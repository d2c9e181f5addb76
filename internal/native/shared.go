//go:build linux || darwin

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// DefaultLibraryName is the vendor shared object looked up on the
// default dlopen search path when no explicit paths are configured.
const DefaultLibraryName = "libtimsdata.so"

var transformSymbols = [...]string{
	IndexToMz:          "tims_index_to_mz",
	MzToIndex:          "tims_mz_to_index",
	ScanNumToOneOverK0: "tims_scannum_to_oneoverk0",
	OneOverK0ToScanNum: "tims_oneoverk0_to_scannum",
	ScanNumToVoltage:   "tims_scannum_to_voltage",
	VoltageToScanNum:   "tims_voltage_to_scannum",
}

// sharedLibrary is the Driver backed by the real vendor shared object,
// bound without cgo via purego.
type sharedLibrary struct {
	open      func(path string, useRecalibrated uint32) uint64
	close     func(handle uint64)
	lastError func(buf []byte, length uint32) uint32
	readScans func(handle uint64, frameID int64, scanBegin, scanEnd uint32, buf []uint32, length uint32) uint32
	convert   [len(transformSymbols)]func(handle uint64, frameID int64, in, out []float64, count uint32) uint32
}

// LoadSharedLibrary dlopens the vendor library, trying each path in
// order. With no paths it falls back to DefaultLibraryName on the
// system search path.
func LoadSharedLibrary(paths ...string) (Driver, error) {
	if len(paths) == 0 {
		paths = []string{DefaultLibraryName}
	}
	var firstErr error
	for _, p := range paths {
		h, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("load %s: %w", p, err)
			}
			continue
		}
		return bind(h), nil
	}
	return nil, firstErr
}

func bind(h uintptr) *sharedLibrary {
	lib := &sharedLibrary{}
	purego.RegisterLibFunc(&lib.open, h, "tims_open")
	purego.RegisterLibFunc(&lib.close, h, "tims_close")
	purego.RegisterLibFunc(&lib.lastError, h, "tims_get_last_error_string")
	purego.RegisterLibFunc(&lib.readScans, h, "tims_read_scans_v2")
	for t, sym := range transformSymbols {
		purego.RegisterLibFunc(&lib.convert[t], h, sym)
	}
	return lib
}

func (l *sharedLibrary) Open(path string, useRecalibrated bool) uint64 {
	var recal uint32
	if useRecalibrated {
		recal = 1
	}
	return l.open(path, recal)
}

func (l *sharedLibrary) Close(handle uint64) {
	l.close(handle)
}

func (l *sharedLibrary) LastErrorString(buf []byte) uint32 {
	return l.lastError(buf, uint32(len(buf)))
}

func (l *sharedLibrary) ReadScans(handle uint64, frameID int64, scanBegin, scanEnd uint32, buf []uint32) uint32 {
	return l.readScans(handle, frameID, scanBegin, scanEnd, buf, uint32(4*len(buf)))
}

func (l *sharedLibrary) Convert(handle uint64, frameID int64, t Transform, in, out []float64) uint32 {
	return l.convert[t](handle, frameID, in, out, uint32(len(in)))
}
