package tims

import (
	"fmt"
	"strconv"
)

// SoftwareInfo is one software entry from the GlobalMetadata table.
type SoftwareInfo struct {
	Name    string
	Version string
}

// AcquisitionParameters are the run-level key/value entries of the
// GlobalMetadata table that describe how the acquisition was made.
type AcquisitionParameters struct {
	AcquisitionDate string
	OperatorName    string
	ScanWindowLower float64
	ScanWindowUpper float64
}

// InstrumentConfiguration describes the acquiring instrument.
type InstrumentConfiguration struct {
	InstrumentFamily   string
	InstrumentRevision string
	SerialNumber       string
}

// Metadata is the parsed GlobalMetadata table plus the per-type frame
// counts of the acquisition.
type Metadata struct {
	Acquisition         AcquisitionParameters
	Instrument          InstrumentConfiguration
	AcquisitionSoftware SoftwareInfo

	// FrameCounts maps frame type labels (see FrameTypeLabel) to the
	// number of frames of that type; the "Total" key holds the sum.
	FrameCounts map[string]int
}

// ReadMetadata loads the GlobalMetadata key/value table and the frame
// count index. Keys this reader does not recognise are skipped; the
// metadata store carries many more than we consume. Note the two
// misspelled instrument keys, which are verbatim column values in the
// store.
func (s *Session) ReadMetadata() (*Metadata, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	md := &Metadata{FrameCounts: map[string]int{}}

	rows, err := s.db.Query(`SELECT Key, Value FROM GlobalMetadata`)
	if err != nil {
		return nil, fmt.Errorf("read global metadata: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan global metadata: %w", err)
		}
		switch key {
		case "AcquistionSoftware":
			md.AcquisitionSoftware.Name = value
		case "AcquisitionSoftwareVersion":
			md.AcquisitionSoftware.Version = value
		case "InstrmentFamily":
			md.Instrument.InstrumentFamily = value
		case "InstrmentRevision":
			md.Instrument.InstrumentRevision = value
		case "InstrumentSerialNumber":
			md.Instrument.SerialNumber = value
		case "AcquisitionDateTime":
			md.Acquisition.AcquisitionDate = value
		case "OperatorName":
			md.Acquisition.OperatorName = value
		case "MzAcqRangeLower":
			md.Acquisition.ScanWindowLower, _ = strconv.ParseFloat(value, 64)
		case "MzAcqRangeUpper":
			md.Acquisition.ScanWindowUpper, _ = strconv.ParseFloat(value, 64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read global metadata: %w", err)
	}

	counts, err := s.db.Query(`SELECT MsMsType, COUNT(*) FROM Frames GROUP BY MsMsType`)
	if err != nil {
		return nil, fmt.Errorf("count frames: %w", err)
	}
	defer counts.Close()
	total := 0
	for counts.Next() {
		var msmsType, count int
		if err := counts.Scan(&msmsType, &count); err != nil {
			return nil, fmt.Errorf("count frames: %w", err)
		}
		label, ok := FrameTypeLabel[msmsType]
		if !ok {
			label = fmt.Sprintf("MsMsType %d", msmsType)
		}
		md.FrameCounts[label] = count
		total += count
	}
	if err := counts.Err(); err != nil {
		return nil, fmt.Errorf("count frames: %w", err)
	}
	md.FrameCounts["Total"] = total
	return md, nil
}
