package tims

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iontrace/timsdata/internal/native"
)

// fakeScan is one synthetic mobility scan served by the fake driver.
type fakeScan struct {
	indices     []uint32
	intensities []uint32
}

// fakeDriver implements native.Driver over in-memory scan data with
// trivially invertible affine transforms standing in for the vendor
// coordinate math.
type fakeDriver struct {
	frames    map[int64][]fakeScan
	lastError string

	openFail    bool
	failConvert bool

	// requiredOverride, when nonzero, is returned from every ReadScans
	// call without writing anything. Simulates an oversized frame.
	requiredOverride uint32

	readCalls    int
	convertCalls int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{frames: map[int64][]fakeScan{}}
}

func (d *fakeDriver) Open(path string, useRecalibrated bool) uint64 {
	if d.openFail {
		d.lastError = "cannot open analysis directory"
		return 0
	}
	return 42
}

func (d *fakeDriver) Close(handle uint64) {}

func (d *fakeDriver) LastErrorString(buf []byte) uint32 {
	n := uint32(len(d.lastError) + 1)
	if buf == nil {
		return n
	}
	copy(buf, d.lastError)
	return n
}

func (d *fakeDriver) ReadScans(handle uint64, frameID int64, scanBegin, scanEnd uint32, buf []uint32) uint32 {
	d.readCalls++
	if d.requiredOverride != 0 {
		return d.requiredOverride
	}
	scans, ok := d.frames[frameID]
	if !ok || int(scanEnd) > len(scans) || scanBegin >= scanEnd {
		d.lastError = "invalid frame or scan range"
		return 0
	}
	packed := packScanBuffer(scans[scanBegin:scanEnd])
	if len(buf) >= len(packed) {
		copy(buf, packed)
	}
	return uint32(4 * len(packed))
}

func (d *fakeDriver) Convert(handle uint64, frameID int64, t native.Transform, in, out []float64) uint32 {
	d.convertCalls++
	if d.failConvert {
		d.lastError = "conversion failed"
		return 0
	}
	for i, v := range in {
		switch t {
		case native.IndexToMz:
			out[i] = 100 + 0.001*v
		case native.MzToIndex:
			out[i] = (v - 100) / 0.001
		case native.ScanNumToOneOverK0:
			out[i] = 1.6 - 0.001*v
		case native.OneOverK0ToScanNum:
			out[i] = (1.6 - v) / 0.001
		case native.ScanNumToVoltage:
			out[i] = 100 - 0.05*v
		case native.VoltageToScanNum:
			out[i] = (100 - v) / 0.05
		}
	}
	return 1
}

// packScanBuffer builds the packed wire layout: per-scan peak counts
// first, then each scan's index words followed by its intensity words.
func packScanBuffer(scans []fakeScan) []uint32 {
	out := make([]uint32, 0, len(scans))
	for _, s := range scans {
		out = append(out, uint32(len(s.indices)))
	}
	for _, s := range scans {
		out = append(out, s.indices...)
		out = append(out, s.intensities...)
	}
	return out
}

// testAcquisition is a synthetic analysis directory: a real SQLite
// metadata store on disk plus a fake vendor driver.
type testAcquisition struct {
	t   *testing.T
	dir string
	db  *sql.DB
	drv *fakeDriver
}

func newTestAcquisition(t *testing.T) *testAcquisition {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, MetadataFileName))
	if err != nil {
		t.Fatalf("open metadata store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE Frames (
			Id                INTEGER PRIMARY KEY,
			AccumulationTime  REAL,
			MaxIntensity      INTEGER,
			MsMsType          INTEGER,
			MzCalibration     INTEGER,
			NumPeaks          INTEGER,
			NumScans          INTEGER,
			Polarity          TEXT,
			PropertyGroup     INTEGER,
			RampTime          REAL,
			ScanMode          INTEGER,
			SummedIntensities INTEGER,
			T1                REAL,
			T2                REAL,
			Time              REAL,
			TimsCalibration   INTEGER,
			TimsId            INTEGER
		);
		CREATE TABLE Precursors (
			Id             INTEGER PRIMARY KEY,
			LargestPeakMz  REAL,
			AverageMz      REAL,
			MonoisotopicMz REAL,
			Charge         INTEGER,
			ScanNumber     REAL,
			Intensity      REAL,
			Parent         INTEGER
		);
		CREATE TABLE PasefFrameMsMsInfo (
			Frame           INTEGER,
			ScanNumBegin    INTEGER,
			ScanNumEnd      INTEGER,
			IsolationMz     REAL,
			IsolationWidth  REAL,
			CollisionEnergy REAL,
			Precursor       INTEGER
		);
		CREATE TABLE GlobalMetadata (Key TEXT, Value TEXT);
	`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return &testAcquisition{t: t, dir: dir, db: db, drv: newFakeDriver()}
}

type frameSpec struct {
	id       int64
	msmsType int
	numScans int
	polarity string
	scanMode int
	time     float64
}

func (a *testAcquisition) addFrame(f frameSpec) {
	a.t.Helper()
	if f.polarity == "" {
		f.polarity = "+"
	}
	if f.scanMode == 0 {
		f.scanMode = 8
	}
	_, err := a.db.Exec(`
		INSERT INTO Frames (Id, AccumulationTime, MaxIntensity, MsMsType, MzCalibration,
			NumPeaks, NumScans, Polarity, PropertyGroup, RampTime, ScanMode,
			SummedIntensities, T1, T2, Time, TimsCalibration, TimsId)
		VALUES (?, 100.0, 5000, ?, 1, 1234, ?, ?, 1, 100.0, ?, 99999, 25.0, 25.1, ?, 1, 0)`,
		f.id, f.msmsType, f.numScans, f.polarity, f.scanMode, f.time)
	if err != nil {
		a.t.Fatalf("insert frame %d: %v", f.id, err)
	}
}

type precursorSpec struct {
	id              int64
	frame           int64
	scanBegin       int
	scanEnd         int
	isolationMz     float64
	isolationWidth  float64
	collisionEnergy float64
	monoisotopicMz  float64
	charge          int
	scanNumber      float64
	intensity       float64
	parent          int64
}

func (a *testAcquisition) addPrecursor(p precursorSpec) {
	a.t.Helper()
	_, err := a.db.Exec(`
		INSERT INTO Precursors (Id, LargestPeakMz, AverageMz, MonoisotopicMz, Charge,
			ScanNumber, Intensity, Parent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.id, p.monoisotopicMz, p.monoisotopicMz, p.monoisotopicMz, p.charge,
		p.scanNumber, p.intensity, p.parent)
	if err != nil {
		a.t.Fatalf("insert precursor %d: %v", p.id, err)
	}
	_, err = a.db.Exec(`
		INSERT INTO PasefFrameMsMsInfo (Frame, ScanNumBegin, ScanNumEnd, IsolationMz,
			IsolationWidth, CollisionEnergy, Precursor)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.frame, p.scanBegin, p.scanEnd, p.isolationMz, p.isolationWidth,
		p.collisionEnergy, p.id)
	if err != nil {
		a.t.Fatalf("insert pasef info for precursor %d: %v", p.id, err)
	}
}

func (a *testAcquisition) setMetadata(key, value string) {
	a.t.Helper()
	if _, err := a.db.Exec(`INSERT INTO GlobalMetadata (Key, Value) VALUES (?, ?)`, key, value); err != nil {
		a.t.Fatalf("insert metadata %s: %v", key, err)
	}
}

func (a *testAcquisition) addScans(frameID int64, scans []fakeScan) {
	a.drv.frames[frameID] = scans
}

func (a *testAcquisition) open(opts Options) *Session {
	a.t.Helper()
	opts.Driver = a.drv
	session, err := Open(a.dir, opts)
	if err != nil {
		a.t.Fatalf("open session: %v", err)
	}
	a.t.Cleanup(func() { session.Close() })
	return session
}
