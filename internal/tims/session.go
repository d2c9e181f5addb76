package tims

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/iontrace/timsdata/internal/native"
)

const (
	// MetadataFileName is the SQLite metadata store inside every
	// analysis directory.
	MetadataFileName = "analysis.tdf"

	// DefaultMaxFrameBytes caps the negotiated scan buffer at 16 MiB.
	DefaultMaxFrameBytes = 16 * 1024 * 1024

	// defaultFrameBufferUnits is the starting scan-buffer size hint in
	// 4-byte units, before any frame has widened it.
	defaultFrameBufferUnits = 128

	defaultFrameCacheSize = 128
)

// MergeParameters control how a merged mobility scan range is turned
// back into a continuous profile: the gaussian full width at half
// maximum applied to each centroid and the m/z grid spacing.
type MergeParameters struct {
	FWHM float64
	DX   float64
}

// DefaultMergeParameters are the reprofiling constants applied to
// merged scan ranges unless overridden.
var DefaultMergeParameters = MergeParameters{FWHM: 0.04, DX: 0.001}

// Options configure Open.
type Options struct {
	// Driver overrides the vendor library binding. When nil the
	// shared library is loaded from LibraryPaths.
	Driver native.Driver

	// LibraryPaths are candidate paths for the vendor shared library.
	// Empty means the platform default name on the system search path.
	LibraryPaths []string

	// UseRecalibratedState opens the acquisition with the vendor
	// library's recalibrated coordinate state.
	UseRecalibratedState bool

	// MaxFrameBytes caps the negotiated scan buffer. Zero means
	// DefaultMaxFrameBytes.
	MaxFrameBytes uint32

	// FrameBufferHint is the initial scan-buffer size in 4-byte units.
	// Zero means the default of 128. Purely a performance hint.
	FrameBufferHint int

	// FrameCacheSize bounds the frame LRU cache. Zero means the
	// default of 128 frames.
	FrameCacheSize int

	// Merge overrides the reprofiling parameters for merged ranges.
	// Zero-valued fields fall back to DefaultMergeParameters.
	Merge MergeParameters

	// Logger receives warnings and debug traces. The zero Logger
	// discards everything.
	Logger zerolog.Logger
}

// Session owns one opened acquisition: the vendor library handle, the
// read-only connection to the metadata store, the bounded frame cache
// and the running scan-buffer size estimate.
//
// A Session serialises vendor library access internally, so it may be
// shared across goroutines, but the underlying service is inherently
// serial: concurrent callers queue behind one another.
type Session struct {
	ID  uuid.UUID
	dir string
	log zerolog.Logger

	lib    *native.Library
	handle uint64
	db     *sql.DB
	cache  *lru.Cache[int64, *Frame]

	maxFrameBytes uint32
	merge         MergeParameters

	// mu guards frameBufferUnits, the running buffer-size estimate
	// shared by every ReadScans call, and the closed flag.
	mu               sync.Mutex
	frameBufferUnits int
	closed           bool
}

// Open establishes a session for an analysis directory: it opens the
// vendor library handle for coordinate conversion and raw access, and
// the analysis.tdf metadata store read-only. The returned Session must
// be closed; Close releases both resources and is safe on every exit
// path.
func Open(dir string, opts Options) (*Session, error) {
	drv := opts.Driver
	if drv == nil {
		var err error
		drv, err = native.LoadSharedLibrary(opts.LibraryPaths...)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", dir, err)
		}
	}
	lib := native.NewLibrary(drv)

	handle, err := lib.Open(dir, opts.UseRecalibratedState)
	if err != nil {
		return nil, err
	}

	dsn := "file:" + filepath.Join(dir, MetadataFileName) + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		lib.Close(handle)
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	cacheSize := opts.FrameCacheSize
	if cacheSize <= 0 {
		cacheSize = defaultFrameCacheSize
	}
	cache, err := lru.New[int64, *Frame](cacheSize)
	if err != nil {
		db.Close()
		lib.Close(handle)
		return nil, fmt.Errorf("frame cache: %w", err)
	}

	maxBytes := opts.MaxFrameBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxFrameBytes
	}
	hint := opts.FrameBufferHint
	if hint <= 0 {
		hint = defaultFrameBufferUnits
	}
	merge := opts.Merge
	if merge.FWHM == 0 {
		merge.FWHM = DefaultMergeParameters.FWHM
	}
	if merge.DX == 0 {
		merge.DX = DefaultMergeParameters.DX
	}

	id := uuid.New()
	return &Session{
		ID:               id,
		dir:              dir,
		log:              opts.Logger.With().Str("session", id.String()).Logger(),
		lib:              lib,
		handle:           handle,
		db:               db,
		cache:            cache,
		maxFrameBytes:    maxBytes,
		merge:            merge,
		frameBufferUnits: hint,
	}, nil
}

// Close releases the vendor library session and the metadata store
// connection. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.db.Close()
	s.lib.Close(s.handle)
	s.handle = 0
	return err
}

// Dir returns the analysis directory this session was opened on.
func (s *Session) Dir() string { return s.dir }

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// IndexToMz converts raw TOF indices to m/z values for one frame.
func (s *Session) IndexToMz(frameID int64, indices []float64) ([]float64, error) {
	return s.convert(frameID, native.IndexToMz, indices)
}

// MzToIndex converts m/z values to raw TOF indices for one frame.
func (s *Session) MzToIndex(frameID int64, mzs []float64) ([]float64, error) {
	return s.convert(frameID, native.MzToIndex, mzs)
}

// ScanNumberToOneOverK0 converts mobility scan numbers to inverse
// reduced ion mobility values.
func (s *Session) ScanNumberToOneOverK0(frameID int64, scans []float64) ([]float64, error) {
	return s.convert(frameID, native.ScanNumToOneOverK0, scans)
}

// OneOverK0ToScanNumber converts inverse reduced ion mobility values
// to mobility scan numbers.
func (s *Session) OneOverK0ToScanNumber(frameID int64, mobilities []float64) ([]float64, error) {
	return s.convert(frameID, native.OneOverK0ToScanNum, mobilities)
}

// ScanNumberToVoltage converts mobility scan numbers to TIMS voltages.
func (s *Session) ScanNumberToVoltage(frameID int64, scans []float64) ([]float64, error) {
	return s.convert(frameID, native.ScanNumToVoltage, scans)
}

// VoltageToScanNumber converts TIMS voltages to mobility scan numbers.
func (s *Session) VoltageToScanNumber(frameID int64, voltages []float64) ([]float64, error) {
	return s.convert(frameID, native.VoltageToScanNum, voltages)
}

func (s *Session) convert(frameID int64, t native.Transform, values []float64) ([]float64, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out, err := s.lib.Convert(s.handle, frameID, t, values)
	if err != nil {
		return nil, fmt.Errorf("frame %d: %w", frameID, err)
	}
	return out, nil
}
