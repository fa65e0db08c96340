// Package session orchestrates one measurement session: calibration,
// segmentation, coefficient computation and history bookkeeping.
package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"drape-meter/internal/calibrate"
	"drape-meter/internal/drape"
	"drape-meter/internal/history"
	"drape-meter/internal/imgutil"
	"drape-meter/internal/segment"
	"drape-meter/pkg/geometry"
)

var (
	// ErrNotReady means no capture is loaded yet.
	ErrNotReady = errors.New("no image loaded")

	// ErrBusy means a measurement is already in flight; seed clicks during
	// segmentation are rejected rather than queued.
	ErrBusy = errors.New("measurement already in flight")

	// ErrSessionReset means the session was reset while a measurement was
	// running; the stale result was discarded.
	ErrSessionReset = errors.New("session reset during measurement")
)

// Session owns the state for one capture-and-measure cycle. The capture is
// immutable once loaded; all analysis runs on derived copies. A Session is
// safe for concurrent use, but only one measurement runs at a time. A Reset
// or SetImage during a measurement frees the session's own Mat, so the
// in-flight run analyzes a private clone it owns and closes itself.
type Session struct {
	mu     sync.Mutex
	logger *slog.Logger

	cfg       Config
	calParams calibrate.Params
	segParams segment.Params
	hist      *history.History

	// generation invalidates in-flight runs on reset or image reload.
	generation uint64
	state      State

	img image.Image
	mat gocv.Mat

	reference   calibrate.Reference
	scaleFactor float64
	lastSeg     *segment.Result
	lastMeas    *history.Measurement

	inFlight bool
}

// New creates a session with the given configuration and history sink.
// A nil history creates a private one with the default capacity.
func New(cfg Config, hist *history.History, logger *slog.Logger) *Session {
	if hist == nil {
		hist = history.New(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		logger:    logger,
		cfg:       cfg,
		calParams: calibrate.DefaultParams(),
		segParams: segment.DefaultParams(),
		hist:      hist,
		state:     StateIdle,
		mat:       gocv.NewMat(),
	}
}

// SetConfig replaces the session configuration. The new values take effect
// on the next measurement.
func (s *Session) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// SetDetectorParams overrides calibration and segmentation tuning.
func (s *Session) SetDetectorParams(cal calibrate.Params, seg segment.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calParams = cal
	s.segParams = seg
}

// SetImage loads a new capture, clearing all per-capture state. Any
// measurement still in flight is invalidated.
func (s *Session) SetImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())
	}

	mat, err := imgutil.ToMat(img)
	if err != nil {
		return fmt.Errorf("failed to convert image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeMatLocked()
	s.img = img
	s.mat = mat
	s.generation++
	s.clearCaptureStateLocked()
	return nil
}

// Reset discards the capture and all per-capture state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeMatLocked()
	s.img = nil
	s.mat = gocv.NewMat()
	s.generation++
	s.clearCaptureStateLocked()
}

// Close releases the session's image buffers.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeMatLocked()
	s.mat = gocv.NewMat()
	s.img = nil
}

func (s *Session) closeMatLocked() {
	if !s.mat.Empty() {
		s.mat.Close()
	}
}

func (s *Session) clearCaptureStateLocked() {
	s.state = StateIdle
	s.reference = nil
	s.scaleFactor = 0
	s.lastSeg = nil
	s.lastMeas = nil
}

// Measure runs the full pipeline from one seed click: calibrate against the
// chosen reference kind, segment the silhouette, compute the coefficient and
// append the measurement to history. It runs synchronously; the heavy stages
// execute outside the session lock so state queries stay responsive.
func (s *Session) Measure(seed geometry.PointInt, kind ReferenceKind) (history.Measurement, error) {
	s.mu.Lock()
	if err := s.cfg.Validate(); err != nil {
		s.mu.Unlock()
		return history.Measurement{}, err
	}
	if s.img == nil || s.mat.Empty() {
		s.mu.Unlock()
		return history.Measurement{}, ErrNotReady
	}
	if s.inFlight {
		s.mu.Unlock()
		return history.Measurement{}, ErrBusy
	}
	s.inFlight = true
	gen := s.generation
	cfg := s.cfg
	calParams := s.calParams.WithImageSize(s.mat.Cols(), s.mat.Rows())
	segParams := s.segParams
	img := s.img
	mat := s.mat.Clone()
	s.state = StateCalibrating
	s.mu.Unlock()

	defer func() {
		mat.Close()
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	ref, scale, err := s.calibrateStage(mat, img, seed, kind, cfg, calParams)
	if err != nil {
		s.failStage(gen, err)
		return history.Measurement{}, err
	}
	if !s.advance(gen, StateCalibrated, func() {
		s.reference = ref
		s.scaleFactor = scale
	}) {
		return history.Measurement{}, ErrSessionReset
	}
	if !s.advance(gen, StateSegmenting, func() {}) {
		return history.Measurement{}, ErrSessionReset
	}

	seg, err := segment.Detect(mat, scale, cfg.DiskDiameterCm, cfg.FabricDiameterCm, segParams, s.logger)
	if err != nil {
		s.failStage(gen, err)
		return history.Measurement{}, err
	}

	// Cusick definition: the coefficient uses the total projected shadow
	// area including the disk footprint. The fabric-only figure is kept
	// for display.
	coefficient := drape.Coefficient(seg.TotalShadowCm2, cfg.DiskDiameterCm, cfg.FabricDiameterCm)
	if coefficient == 0 && seg.TotalShadowCm2 > 0 {
		s.logger.Warn("degenerate geometry, coefficient forced to zero",
			"shadow_cm2", seg.TotalShadowCm2,
			"disk_cm", cfg.DiskDiameterCm,
			"fabric_cm", cfg.FabricDiameterCm)
	}

	m := history.Measurement{
		Timestamp:      time.Now(),
		AreaCm2:        seg.TotalShadowCm2,
		CoefficientPct: coefficient,
		Category:       drape.Classify(coefficient),
	}

	if !s.advance(gen, StateMeasured, func() {
		s.lastSeg = &seg
		s.lastMeas = &m
		s.hist.Add(m)
	}) {
		return history.Measurement{}, ErrSessionReset
	}

	s.logger.Info("measurement complete",
		"area_cm2", m.AreaCm2,
		"coefficient_pct", m.CoefficientPct,
		"category", m.Category.String(),
		"strategy", seg.Strategy.String(),
		"degraded", seg.Degraded)

	return m, nil
}

// calibrateStage locates the reference object and derives the scale factor.
func (s *Session) calibrateStage(mat gocv.Mat, img image.Image, seed geometry.PointInt, kind ReferenceKind, cfg Config, params calibrate.Params) (calibrate.Reference, float64, error) {
	var ref calibrate.Reference

	switch kind {
	case RefCoin:
		circle, err := calibrate.DetectCoin(mat, seed, params, s.logger)
		if err != nil {
			return nil, 0, err
		}
		ref = calibrate.Coin{Circle: circle}
	case RefSquare:
		area, err := calibrate.DetectSquare(img, seed, params)
		if err != nil {
			return nil, 0, err
		}
		ref = calibrate.Square{PixelArea: area, SideCm: cfg.SquareSideCm}
	default:
		return nil, 0, fmt.Errorf("unknown reference kind %d", kind)
	}

	scale, err := calibrate.ScaleFactor(ref, cfg.ReferenceDiameterCm)
	if err != nil {
		return nil, 0, err
	}
	return ref, scale, nil
}

// advance applies a state transition and its associated updates, unless the
// session generation changed while the stage ran. Stale runs must not touch
// the new session's state.
func (s *Session) advance(gen uint64, next State, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	apply()
	s.state = next
	return true
}

// failStage records a stage failure. Prior session state (previous scale
// factor, previous measurement) is left untouched.
func (s *Session) failStage(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	s.state = StateError
	s.logger.Warn("pipeline stage failed", "error", err)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ScaleFactor returns the active pixels-per-centimeter factor, 0 when
// uncalibrated.
func (s *Session) ScaleFactor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scaleFactor
}

// Reference returns the active reference object, nil when uncalibrated.
func (s *Session) Reference() calibrate.Reference {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// LastSegmentation returns the most recent segmentation result, nil before
// the first successful run on this capture.
func (s *Session) LastSegmentation() *segment.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeg
}

// LastMeasurement returns the most recent measurement, nil before the first
// successful run on this capture.
func (s *Session) LastMeasurement() *history.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMeas
}

// History returns the session's measurement history.
func (s *Session) History() *history.History {
	return s.hist
}
