package tims

import (
	"fmt"
	"regexp"
	"strconv"
)

// SpectrumRef addresses one unit of mobility-resolved data inside a
// frame: either a single mobility scan or a merged half-open scan
// range. Scan numbers are 0-based internally; identifier strings are
// 1-based.
type SpectrumRef struct {
	Frame     *Frame
	StartScan int

	// endScan is zero for a single-scan reference, in which case the
	// effective end is StartScan+1.
	endScan int

	// Precursor is the matched PASEF selection window, attached by
	// GetScanByID for PASEF MS2 frames.
	Precursor *PASEFPrecursorInformation
}

// NewScanRef addresses the single mobility scan startScan.
func NewScanRef(frame *Frame, startScan int) *SpectrumRef {
	return &SpectrumRef{Frame: frame, StartScan: startScan}
}

// NewRangeRef addresses the merged half-open range
// [startScan, endScan). endScan must be greater than startScan.
func NewRangeRef(frame *Frame, startScan, endScan int) *SpectrumRef {
	return &SpectrumRef{Frame: frame, StartScan: startScan, endScan: endScan}
}

// EndScan returns the exclusive end of the addressed range.
func (r *SpectrumRef) EndScan() int {
	if r.endScan == 0 {
		return r.StartScan + 1
	}
	return r.endScan
}

// Combined reports whether the reference spans more than one mobility
// scan. Combined ranges are treated as profile data downstream.
func (r *SpectrumRef) Combined() bool {
	return r.endScan != 0 && r.endScan-r.StartScan > 1
}

// ID formats the reference as its external identifier string, with
// 1-based scan numbers.
func (r *SpectrumRef) ID() string {
	if r.endScan == 0 {
		return fmt.Sprintf("frame=%d scan=%d", r.Frame.ID, r.StartScan+1)
	}
	return fmt.Sprintf("frame=%d startScan=%d endScan=%d",
		r.Frame.ID, r.StartScan+1, r.endScan+1)
}

var (
	singleScanIDPattern = regexp.MustCompile(`^frame=(\d+) scan=(\d+)$`)
	multiScanIDPattern  = regexp.MustCompile(`^frame=(\d+) startScan=(\d+) endScan=(\d+)$`)
)

// ParseScanID parses an identifier string into its frame id and
// 0-based half-open scan range. Anything outside the two supported
// formats is rejected with ErrInvalidScanID.
func ParseScanID(id string) (frameID int64, startScan, endScan int, err error) {
	if m := singleScanIDPattern.FindStringSubmatch(id); m != nil {
		frameID, _ = strconv.ParseInt(m[1], 10, 64)
		scan, _ := strconv.Atoi(m[2])
		if scan < 1 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidScanID, id)
		}
		return frameID, scan - 1, scan, nil
	}
	if m := multiScanIDPattern.FindStringSubmatch(id); m != nil {
		frameID, _ = strconv.ParseInt(m[1], 10, 64)
		start, _ := strconv.Atoi(m[2])
		end, _ := strconv.Atoi(m[3])
		if start < 1 || end <= start {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidScanID, id)
		}
		return frameID, start - 1, end - 1, nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidScanID, id)
}

// GetScanByID resolves an identifier string into a SpectrumRef,
// loading the owning frame through the cache. For PASEF MS2 frames the
// matching precursor selection is attached; an ambiguous merged range
// is an error here, exactly as in LocatePrecursor.
func (s *Session) GetScanByID(id string) (*SpectrumRef, error) {
	frameID, start, end, err := ParseScanID(id)
	if err != nil {
		return nil, err
	}
	frame, err := s.GetFrame(frameID)
	if err != nil {
		return nil, err
	}
	ref := &SpectrumRef{Frame: frame, StartScan: start}
	if end > start+1 {
		ref.endScan = end
	}
	if frame.MsMsType == FrameTypePASEF {
		ref.Precursor, err = s.LocatePrecursor(ref)
		if err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// ScanTime returns the elution time of the owning frame.
func (s *Session) ScanTime(ref *SpectrumRef) float64 {
	return ref.Frame.Time
}

// ScanIndex returns the global 0-based index of the referenced scan:
// the mobility scan count of every earlier frame plus the scan offset
// within its own frame.
func (s *Session) ScanIndex(ref *SpectrumRef) (int64, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	var below int64
	row := s.db.QueryRow(`SELECT COALESCE(SUM(NumScans), 0) FROM Frames WHERE Id < ?`, ref.Frame.ID)
	if err := row.Scan(&below); err != nil {
		return 0, fmt.Errorf("scan index for frame %d: %w", ref.Frame.ID, err)
	}
	return below + int64(ref.StartScan), nil
}
