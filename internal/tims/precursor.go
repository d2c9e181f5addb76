package tims

import (
	"fmt"
	"math"
)

// PASEFPrecursorInformation is one precursor selection window within a
// PASEF MS2 frame: the half-open mobility scan range [StartScan,
// EndScan) that was fragmented, the isolation window, and the
// precursor descriptor columns joined from the Precursors table.
// Immutable once loaded.
type PASEFPrecursorInformation struct {
	FrameID         int64
	StartScan       int
	EndScan         int
	IsolationMz     float64
	IsolationWidth  float64
	CollisionEnergy float64
	MonoisotopicMz  float64
	Charge          int

	// AverageScanNumber is the (possibly fractional) mean mobility
	// scan of the selection as recorded by the instrument.
	AverageScanNumber float64
	Intensity         float64

	// Parent is the MS1 frame that was fragmented.
	Parent int64
}

// overlaps reports whether the half-open interval [StartScan, EndScan)
// intersects [start, end).
func (p *PASEFPrecursorInformation) overlaps(start, end int) bool {
	return p.StartScan < end && start < p.EndScan
}

// contains reports whether the half-open interval covers scan s.
func (p *PASEFPrecursorInformation) contains(s int) bool {
	return p.StartScan <= s && s < p.EndScan
}

// LocatePrecursor finds the precursor selection window that produced
// the referenced scan data, or nil when none did.
//
// A single scan matches on exact containment in a window's half-open
// range. A merged range matches on interval overlap instead; when more
// than one window overlaps, the origin of the summed signal cannot be
// attributed and ErrAmbiguousPrecursor is returned rather than a
// guess.
func (s *Session) LocatePrecursor(ref *SpectrumRef) (*PASEFPrecursorInformation, error) {
	if ref.Combined() {
		var match *PASEFPrecursorInformation
		for i := range ref.Frame.Precursors {
			p := &ref.Frame.Precursors[i]
			if !p.overlaps(ref.StartScan, ref.EndScan()) {
				continue
			}
			if match != nil {
				return nil, fmt.Errorf("frame %d scans [%d,%d): %w",
					ref.Frame.ID, ref.StartScan, ref.EndScan(), ErrAmbiguousPrecursor)
			}
			match = p
		}
		return match, nil
	}

	for i := range ref.Frame.Precursors {
		if ref.Frame.Precursors[i].contains(ref.StartScan) {
			return &ref.Frame.Precursors[i], nil
		}
	}
	return nil, nil
}

// IsolationWindow is a symmetric isolation window around a target m/z.
type IsolationWindow struct {
	Target      float64
	LowerOffset float64
	UpperOffset float64
}

// IsolationWindow returns the isolation window of the precursor
// selection that produced the referenced scan, or nil for frames
// without one.
func (s *Session) IsolationWindow(ref *SpectrumRef) (*IsolationWindow, error) {
	if ref.Frame.MsMsType != FrameTypePASEF {
		return nil, nil
	}
	precursor, err := s.LocatePrecursor(ref)
	if err != nil || precursor == nil {
		return nil, err
	}
	half := precursor.IsolationWidth / 2
	return &IsolationWindow{
		Target:      precursor.IsolationMz,
		LowerOffset: half,
		UpperOffset: half,
	}, nil
}

// ActivationMethod enumerates the dissociation methods the scan-mode
// column can imply.
type ActivationMethod int

const (
	ActivationCID ActivationMethod = iota
	ActivationInSourceCID
)

func (m ActivationMethod) String() string {
	if m == ActivationInSourceCID {
		return "in-source collision-induced dissociation"
	}
	return "collision-induced dissociation"
}

// ActivationInformation describes how the referenced scan's precursor
// was fragmented.
type ActivationInformation struct {
	Method ActivationMethod

	// CollisionEnergy is taken from the matched precursor selection;
	// zero when the frame has none.
	CollisionEnergy float64
}

// Activation maps the frame's scan mode onto a dissociation method and
// attaches the collision energy of the matched precursor selection.
// Unknown scan modes warn and fall back to CID.
func (s *Session) Activation(ref *SpectrumRef) (*ActivationInformation, error) {
	info := &ActivationInformation{}
	switch ref.Frame.ScanMode {
	case 2, 8, 9:
		info.Method = ActivationCID
	case 3, 4, 5:
		info.Method = ActivationInSourceCID
	default:
		s.log.Warn().
			Int("scan_mode", ref.Frame.ScanMode).
			Int64("frame", ref.Frame.ID).
			Msg("unknown scan mode, assuming CID")
		info.Method = ActivationCID
	}
	precursor, err := s.LocatePrecursor(ref)
	if err != nil {
		return nil, err
	}
	if precursor != nil {
		info.CollisionEnergy = precursor.CollisionEnergy
	}
	return info, nil
}

// PrecursorInfo is the resolved precursor description for one
// fragmentation scan, cross-referencing the MS1 acquisition window the
// precursor was selected from.
type PrecursorInfo struct {
	Mz        float64
	Intensity float64
	Charge    int

	// PrecursorScanID addresses the selected mobility scan range of
	// the parent MS1 frame.
	PrecursorScanID string
	ProductScanID   string

	// InverseMobility is the 1/K0 value at the fragmented scan, or at
	// the ceiling of the selection's average scan number for merged
	// ranges.
	InverseMobility float64
}

// PrecursorInformation resolves the precursor selection that produced
// the referenced PASEF MS2 scan and assembles its description. Returns
// nil for non-PASEF frames and for scans no selection covers.
func (s *Session) PrecursorInformation(ref *SpectrumRef) (*PrecursorInfo, error) {
	if ref.Frame.MsMsType != FrameTypePASEF {
		return nil, nil
	}
	precursor, err := s.LocatePrecursor(ref)
	if err != nil || precursor == nil {
		return nil, err
	}

	scanNumber := float64(ref.StartScan)
	if ref.Combined() {
		scanNumber = math.Ceil(precursor.AverageScanNumber)
	}
	mobility, err := s.ScanNumberToOneOverK0(ref.Frame.ID, []float64{scanNumber})
	if err != nil {
		return nil, err
	}

	parentFrame, err := s.GetFrame(precursor.Parent)
	if err != nil {
		return nil, fmt.Errorf("parent of frame %d: %w", ref.Frame.ID, err)
	}
	parentRef := &SpectrumRef{
		Frame:     parentFrame,
		StartScan: precursor.StartScan,
		endScan:   precursor.EndScan,
	}

	return &PrecursorInfo{
		Mz:              precursor.MonoisotopicMz,
		Intensity:       precursor.Intensity,
		Charge:          precursor.Charge,
		PrecursorScanID: parentRef.ID(),
		ProductScanID:   ref.ID(),
		InverseMobility: mobility[0],
	}, nil
}
