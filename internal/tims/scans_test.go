package tims

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iontrace/timsdata/internal/native"
)

func testScans() []fakeScan {
	return []fakeScan{
		{indices: []uint32{300, 100, 200}, intensities: []uint32{30, 10, 20}},
		{indices: []uint32{}, intensities: []uint32{}},
		{indices: []uint32{150, 450}, intensities: []uint32{15, 45}},
	}
}

func TestReadScansShape(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	acq.addScans(1, testScans())
	session := acq.open(Options{})

	scans, err := session.ReadScans(1, 0, 3)
	if err != nil {
		t.Fatalf("ReadScans: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("expected 3 scans, got %d", len(scans))
	}
	for i, scan := range scans {
		if len(scan.Indices) != len(scan.Intensities) {
			t.Errorf("scan %d: %d indices vs %d intensities",
				i, len(scan.Indices), len(scan.Intensities))
		}
	}
	want := []ScanData{
		{Indices: []uint32{300, 100, 200}, Intensities: []uint32{30, 10, 20}},
		{Indices: []uint32{}, Intensities: []uint32{}},
		{Indices: []uint32{150, 450}, Intensities: []uint32{15, 45}},
	}
	if diff := cmp.Diff(want, scans); diff != "" {
		t.Errorf("decoded scans mismatch (-want +got):\n%s", diff)
	}
}

func TestReadScansSubrange(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	acq.addScans(1, testScans())
	session := acq.open(Options{})

	scans, err := session.ReadScans(1, 1, 3)
	if err != nil {
		t.Fatalf("ReadScans: %v", err)
	}
	want := []ScanData{
		{Indices: []uint32{}, Intensities: []uint32{}},
		{Indices: []uint32{150, 450}, Intensities: []uint32{15, 45}},
	}
	if diff := cmp.Diff(want, scans); diff != "" {
		t.Errorf("decoded scans mismatch (-want +got):\n%s", diff)
	}
}

func TestReadScansInvalidRange(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	session := acq.open(Options{})

	if _, err := session.ReadScans(1, 2, 2); err == nil {
		t.Error("expected error for empty range")
	}
	if _, err := session.ReadScans(1, -1, 2); err == nil {
		t.Error("expected error for negative scan")
	}
}

// Decoding the same range with wildly different initial buffer hints
// must converge on identical content; the hint is performance state,
// not a correctness input.
func TestBufferGrowthIdempotent(t *testing.T) {
	scans := testScans()

	small := newTestAcquisition(t)
	small.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	small.addScans(1, scans)
	smallSession := small.open(Options{FrameBufferHint: 1})

	large := newTestAcquisition(t)
	large.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	large.addScans(1, scans)
	largeSession := large.open(Options{FrameBufferHint: 4096})

	gotSmall, err := smallSession.ReadScans(1, 0, 3)
	if err != nil {
		t.Fatalf("ReadScans with small hint: %v", err)
	}
	gotLarge, err := largeSession.ReadScans(1, 0, 3)
	if err != nil {
		t.Fatalf("ReadScans with large hint: %v", err)
	}
	if diff := cmp.Diff(gotLarge, gotSmall); diff != "" {
		t.Errorf("buffer hint changed decoded content (-large +small):\n%s", diff)
	}

	if small.drv.readCalls < 2 {
		t.Errorf("expected at least one growth retry, got %d read calls", small.drv.readCalls)
	}
	if large.drv.readCalls != 1 {
		t.Errorf("large hint should decode in one call, got %d", large.drv.readCalls)
	}

	// The widened estimate persists: the next read needs no retry.
	calls := small.drv.readCalls
	if _, err := smallSession.ReadScans(1, 0, 3); err != nil {
		t.Fatalf("second ReadScans: %v", err)
	}
	if small.drv.readCalls != calls+1 {
		t.Errorf("estimate was not retained, got %d extra calls", small.drv.readCalls-calls)
	}
}

func TestReadScansFrameTooLarge(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	session := acq.open(Options{MaxFrameBytes: 4096})

	acq.drv.requiredOverride = 8192
	_, err := session.ReadScans(1, 0, 3)
	if !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
	// The failed negotiation must not widen the shared estimate past
	// the cap.
	session.mu.Lock()
	units := session.frameBufferUnits
	session.mu.Unlock()
	if 4*units > 4096 {
		t.Errorf("estimate grew past the cap: %d units", units)
	}
}

func TestReadScansServiceError(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	session := acq.open(Options{})

	_, err := session.ReadScans(99, 0, 3)
	var serviceErr *native.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if serviceErr.Text == "" {
		t.Error("expected error text from the driver")
	}
}

func TestReadSpectrum(t *testing.T) {
	acq := newTestAcquisition(t)
	acq.addFrame(frameSpec{id: 1, msmsType: FrameTypeMS1, numScans: 3})
	acq.addScans(1, testScans())
	session := acq.open(Options{})

	mz, intensity, err := session.ReadSpectrum(1, 0, 3)
	if err != nil {
		t.Fatalf("ReadSpectrum: %v", err)
	}
	// Concatenation order with the empty scan dropped, indices run
	// through the affine index→m/z transform of the test driver.
	wantMz := []float64{100.3, 100.1, 100.2, 100.15, 100.45}
	wantIntensity := []float64{30, 10, 20, 15, 45}
	if diff := cmp.Diff(wantMz, mz, cmp.Comparer(floatNear)); diff != "" {
		t.Errorf("mz mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantIntensity, intensity); diff != "" {
		t.Errorf("intensity mismatch (-want +got):\n%s", diff)
	}
	if acq.drv.convertCalls != 1 {
		t.Errorf("conversion must be one batched call per frame, got %d", acq.drv.convertCalls)
	}
}

func floatNear(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
