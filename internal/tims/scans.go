package tims

import "fmt"

// ScanData is one decoded mobility scan: parallel raw TOF index and
// intensity sequences of equal length. Indices are not guaranteed to
// ascend; callers sort after coordinate conversion when they need
// order.
type ScanData struct {
	Indices     []uint32
	Intensities []uint32
}

// ReadScans reads and decodes the packed scan buffer for the half-open
// mobility scan range [scanBegin, scanEnd) of one frame, returning
// exactly scanEnd-scanBegin decoded scans in scan order.
//
// The buffer size is negotiated with the vendor library: the session
// keeps a running size estimate, and whenever a frame needs more the
// estimate is widened permanently to required/4+1 units and the read
// retried. A requirement beyond the configured hard cap fails with
// ErrFrameTooLarge before any allocation past the cap. Buffer growth
// is the only local recovery; every other failure propagates.
func (s *Session) ReadScans(frameID int64, scanBegin, scanEnd int) ([]ScanData, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if scanBegin < 0 || scanEnd <= scanBegin {
		return nil, fmt.Errorf("frame %d: invalid scan range [%d,%d)", frameID, scanBegin, scanEnd)
	}

	var buf []uint32
	for {
		s.mu.Lock()
		units := s.frameBufferUnits
		s.mu.Unlock()

		buf = make([]uint32, units)
		required, err := s.lib.ReadScanBuffer(s.handle, frameID,
			uint32(scanBegin), uint32(scanEnd), buf)
		if err != nil {
			return nil, fmt.Errorf("frame %d scans [%d,%d): %w", frameID, scanBegin, scanEnd, err)
		}
		if int(required) <= 4*units {
			break
		}
		if required > s.maxFrameBytes {
			return nil, fmt.Errorf("frame %d needs %d bytes (cap %d): %w",
				frameID, required, s.maxFrameBytes, ErrFrameTooLarge)
		}
		grown := int(required)/4 + 1
		s.log.Debug().
			Int64("frame", frameID).
			Int("units", grown).
			Msg("widening scan buffer estimate")
		s.mu.Lock()
		if grown > s.frameBufferUnits {
			s.frameBufferUnits = grown
		}
		s.mu.Unlock()
	}

	return decodeScanBuffer(buf, frameID, scanBegin, scanEnd)
}

// decodeScanBuffer walks the packed layout once: the first
// scanEnd-scanBegin words are per-scan peak counts, followed by each
// scan's count index words and count intensity words in scan order.
func decodeScanBuffer(buf []uint32, frameID int64, scanBegin, scanEnd int) ([]ScanData, error) {
	n := scanEnd - scanBegin
	if len(buf) < n {
		return nil, fmt.Errorf("frame %d: scan buffer truncated before peak counts", frameID)
	}
	scans := make([]ScanData, 0, n)
	offset := n
	for i := 0; i < n; i++ {
		count := int(buf[i])
		if offset+2*count > len(buf) {
			return nil, fmt.Errorf("frame %d: scan buffer truncated in scan %d payload",
				frameID, scanBegin+i)
		}
		scan := ScanData{
			Indices:     make([]uint32, count),
			Intensities: make([]uint32, count),
		}
		copy(scan.Indices, buf[offset:offset+count])
		offset += count
		copy(scan.Intensities, buf[offset:offset+count])
		offset += count
		scans = append(scans, scan)
	}
	return scans, nil
}

// ReadSpectrum decodes [scanBegin, scanEnd) of one frame and flattens
// the non-empty scans into a single (m/z, intensity) pair. The index
// to m/z conversion happens in one batched call for the whole frame,
// never per scan. The output is unsorted: it preserves concatenation
// order, and raw indices within a scan are themselves unordered.
func (s *Session) ReadSpectrum(frameID int64, scanBegin, scanEnd int) (mz, intensity []float64, err error) {
	scans, err := s.ReadScans(frameID, scanBegin, scanEnd)
	if err != nil {
		return nil, nil, err
	}

	var total int
	for _, scan := range scans {
		total += len(scan.Indices)
	}
	indices := make([]float64, 0, total)
	intensity = make([]float64, 0, total)
	for _, scan := range scans {
		for i, idx := range scan.Indices {
			indices = append(indices, float64(idx))
			intensity = append(intensity, float64(scan.Intensities[i]))
		}
	}

	mz, err = s.IndexToMz(frameID, indices)
	if err != nil {
		return nil, nil, err
	}
	return mz, intensity, nil
}
