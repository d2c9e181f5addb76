//go:build !linux && !darwin

package native

import "fmt"

// DefaultLibraryName matches the vendor DLL name on platforms without
// a dlopen binding.
const DefaultLibraryName = "timsdata.dll"

// LoadSharedLibrary is unsupported on this platform; tests and
// embedders supply a Driver directly instead.
func LoadSharedLibrary(paths ...string) (Driver, error) {
	return nil, fmt.Errorf("native: shared library loading not supported on this platform")
}
