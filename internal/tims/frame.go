package tims

// Frame type codes stored in the Frames.MsMsType column of the
// metadata store.
const (
	FrameTypeMS1      = 0
	FrameTypeMS2      = 2
	FrameTypePASEF    = 8
	FrameTypeDIAPASEF = 9
)

// FrameTypeLabel maps MsMsType codes to their display labels.
var FrameTypeLabel = map[int]string{
	FrameTypeMS1:      "MS1 Scan",
	FrameTypeMS2:      "MS2 Scan",
	FrameTypePASEF:    "PASEF MS2 Scan",
	FrameTypeDIAPASEF: "DIA-PASEF",
}

// Frame is one acquisition cycle: every mobility scan recorded at one
// elution time point, plus its calibration and intensity summary
// columns from the Frames table. A PASEF MS2 frame additionally owns
// the precursor selection windows that produced it, ordered by their
// starting mobility scan.
type Frame struct {
	ID                int64
	AccumulationTime  float64
	MaxIntensity      int64
	MsMsType          int
	MzCalibration     int64
	NumPeaks          int64
	NumScans          int
	Polarity          string
	PropertyGroup     int64
	RampTime          float64
	ScanMode          int
	SummedIntensities int64
	T1                float64
	T2                float64
	Time              float64
	TimsCalibration   int64
	TimsID            int64

	Precursors []PASEFPrecursorInformation
}

// MSLevel derives the MS level from the frame type: MS1 frames are
// level 1, everything else level 2.
func (f *Frame) MSLevel() int {
	if f.MsMsType == FrameTypeMS1 {
		return 1
	}
	return 2
}

// PolaritySign returns +1 for positive mode, -1 for negative mode and
// 0 when the polarity column holds anything else.
func (f *Frame) PolaritySign() int {
	switch f.Polarity {
	case "+":
		return 1
	case "-":
		return -1
	}
	return 0
}
