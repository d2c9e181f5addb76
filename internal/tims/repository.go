package tims

import (
	"database/sql"
	"fmt"
)

const frameColumns = `Id, AccumulationTime, MaxIntensity, MsMsType, MzCalibration,
	NumPeaks, NumScans, Polarity, PropertyGroup, RampTime, ScanMode,
	SummedIntensities, T1, T2, Time, TimsCalibration, TimsId`

// GetFrame returns the frame with the given identifier, loading it
// from the metadata store on first access. Loaded frames are held in a
// bounded LRU cache; an evicted frame is simply reloaded, yielding
// equal data for the same identifier.
//
// For PASEF MS2 frames the precursor selection windows are loaded in
// the same call, ordered by their starting mobility scan. Frame types
// without precursor support produce a warning and an empty precursor
// list; the frame remains usable for raw scan access.
func (s *Session) GetFrame(frameID int64) (*Frame, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if frame, ok := s.cache.Get(frameID); ok {
		return frame, nil
	}

	row := s.db.QueryRow(`SELECT `+frameColumns+` FROM Frames WHERE Id = ?`, frameID)
	frame := &Frame{}
	err := row.Scan(
		&frame.ID, &frame.AccumulationTime, &frame.MaxIntensity, &frame.MsMsType,
		&frame.MzCalibration, &frame.NumPeaks, &frame.NumScans, &frame.Polarity,
		&frame.PropertyGroup, &frame.RampTime, &frame.ScanMode,
		&frame.SummedIntensities, &frame.T1, &frame.T2, &frame.Time,
		&frame.TimsCalibration, &frame.TimsID,
	)
	if err != nil {
		return nil, fmt.Errorf("load frame %d: %w", frameID, err)
	}

	switch frame.MsMsType {
	case FrameTypeMS1:
		// No precursor metadata to attach.
	case FrameTypePASEF:
		frame.Precursors, err = s.loadPASEFPrecursors(frameID)
		if err != nil {
			return nil, err
		}
	default:
		s.log.Warn().
			Int64("frame", frameID).
			Int("msms_type", frame.MsMsType).
			Msg("no precursor support for frame type yet")
	}

	s.cache.Add(frameID, frame)
	return frame, nil
}

func (s *Session) loadPASEFPrecursors(frameID int64) ([]PASEFPrecursorInformation, error) {
	rows, err := s.db.Query(`
		SELECT f.Frame, f.ScanNumBegin, f.ScanNumEnd, f.IsolationMz, f.IsolationWidth,
		       f.CollisionEnergy, p.MonoisotopicMz, p.Charge, p.ScanNumber,
		       p.Intensity, p.Parent
		FROM PasefFrameMsMsInfo f JOIN Precursors p ON p.Id = f.Precursor
		WHERE f.Frame = ?
		ORDER BY f.ScanNumBegin`, frameID)
	if err != nil {
		return nil, fmt.Errorf("load precursors for frame %d: %w", frameID, err)
	}
	defer rows.Close()

	var precursors []PASEFPrecursorInformation
	for rows.Next() {
		var p PASEFPrecursorInformation
		var mono sql.NullFloat64
		var charge sql.NullInt64
		err := rows.Scan(
			&p.FrameID, &p.StartScan, &p.EndScan, &p.IsolationMz, &p.IsolationWidth,
			&p.CollisionEnergy, &mono, &charge, &p.AverageScanNumber,
			&p.Intensity, &p.Parent,
		)
		if err != nil {
			return nil, fmt.Errorf("scan precursor row for frame %d: %w", frameID, err)
		}
		// Unresolved monoisotopic assignments are stored as NULL.
		p.MonoisotopicMz = mono.Float64
		p.Charge = int(charge.Int64)
		precursors = append(precursors, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load precursors for frame %d: %w", frameID, err)
	}
	return precursors, nil
}

// DescribeFrame fetches the raw Frames row as a column→value map.
// Uncached; intended for diagnostics, not the hot path.
func (s *Session) DescribeFrame(frameID int64) (map[string]any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT * FROM Frames WHERE Id = ?`, frameID)
	if err != nil {
		return nil, fmt.Errorf("describe frame %d: %w", frameID, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("describe frame %d: %w", frameID, sql.ErrNoRows)
	}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("describe frame %d: %w", frameID, err)
	}
	out := make(map[string]any, len(cols))
	for i, c := range cols {
		out[c] = values[i]
	}
	return out, nil
}
