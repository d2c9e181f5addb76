package tims

import "github.com/iontrace/timsdata/internal/peaks"

// ScanArrays assembles the (m/z, intensity) arrays for a spectrum
// reference.
//
// A single mobility scan comes back exactly as decoded and converted,
// unsorted by m/z. A combined range is treated as profile data: the
// concatenated points are sorted by m/z, centroided, and reprofiled
// with the session's merge parameters into one continuous frame-level
// spectrum. Summing adjacent mobility scans into a single profile is a
// deliberate approximation; consumers want frame-level, not per-scan,
// profile data.
func (s *Session) ScanArrays(ref *SpectrumRef) (mz, intensity []float64, err error) {
	mz, intensity, err = s.ReadSpectrum(ref.Frame.ID, ref.StartScan, ref.EndScan())
	if err != nil {
		return nil, nil, err
	}
	if !ref.Combined() {
		return mz, intensity, nil
	}

	peaks.SortByMz(mz, intensity)
	centroids := peaks.Pick(mz, intensity)
	mz, intensity = peaks.Reprofile(centroids, s.merge.FWHM, s.merge.DX)
	return mz, intensity, nil
}

// Centroids decodes, converts and centroids the referenced scan data
// without reprofiling.
func (s *Session) Centroids(ref *SpectrumRef) ([]peaks.Peak, error) {
	mz, intensity, err := s.ReadSpectrum(ref.Frame.ID, ref.StartScan, ref.EndScan())
	if err != nil {
		return nil, err
	}
	peaks.SortByMz(mz, intensity)
	return peaks.Pick(mz, intensity), nil
}

// IsProfile reports whether the referenced data is delivered as
// profile arrays. Combined ranges always are; single mobility scans
// are inherently sparse and treated as centroid-equivalent.
func (s *Session) IsProfile(ref *SpectrumRef) bool {
	return ref.Combined()
}
