package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-tuner/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// Stats counts how the engine classified the frames it has seen
type Stats struct {
	Frames        int `json:"frames"`
	Voiced        int `json:"voiced"`
	Silent        int `json:"silent"`
	LowConfidence int `json:"low_confidence"`
	OutOfRange    int `json:"out_of_range"`
	Emitted       int `json:"emitted"`
}

// Option customizes an Engine
type Option func(*Engine)

// WithLogger replaces the engine's logger
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSessionID overrides the generated session id
func WithSessionID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.sessionID = id
		}
	}
}

// Engine runs the tuner pipeline one frame at a time: coarse FFT peak,
// autocorrelation refinement, temporal smoothing, note mapping, Pythagorean
// analysis and purity scoring.
//
// An Engine keeps rolling history and is not safe for concurrent use.
type Engine struct {
	cfg         config.TunerConfig
	notation    tonal.Notation
	peaks       *spectral.PeakFinder
	refiner     *tonal.Refiner
	smoother    *temporal.Smoother
	mapper      *tonal.NoteMapper
	pythagorean *tonal.PythagoreanAnalyzer
	purity      *harmonic.PurityScorer

	// bin frequencies for the last seen (bin count, sample rate)
	binFreqs      []float64
	binSampleRate float64

	sessionID string
	last      *Measurement
	stats     Stats
	logger    logging.Logger
}

// NewEngine builds an engine from a validated configuration
func NewEngine(cfg config.TunerConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuner config: %w", err)
	}
	notation, err := tonal.ParseNotation(cfg.Notation)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		notation: notation,
		peaks:    spectral.NewPeakFinder(cfg.Peak.MinFreq, cfg.Peak.MaxFreq),
		refiner: tonal.NewRefinerWithParams(tonal.RefinerParams{
			Tolerance:     cfg.Refiner.Tolerance,
			NoiseFloor:    cfg.Refiner.NoiseFloor,
			MinSimilarity: cfg.Refiner.MinSimilarity,
			Midpoint:      cfg.Refiner.Midpoint,
		}),
		smoother:    temporal.NewSmoother(cfg.Smoothing.Window()),
		mapper:      tonal.NewNoteMapper(cfg.A4, notation),
		pythagorean: tonal.NewPythagoreanAnalyzer(cfg.A4, notation),
		purity: harmonic.NewPurityScorerWithParams(harmonic.PurityParams{
			Harmonics:     cfg.Purity.Harmonics,
			DecayExponent: cfg.Purity.DecayExponent,
			Sigma:         cfg.Purity.Sigma,
		}),
		sessionID: uuid.NewString(),
		logger:    logging.GetGlobalLogger(),
	}

	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithFields(logging.Fields{
		"component":  "tuner_engine",
		"session_id": e.sessionID,
	})

	return e, nil
}

// ProcessFrame analyses one frame. It returns a Measurement when the
// smoothing interval has elapsed and a pitch is available, and nil otherwise.
// Silence and unconfident frames are not errors; only malformed frames are.
func (e *Engine) ProcessFrame(frame AudioFrame) (*Measurement, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	e.stats.Frames++

	peak := e.peaks.Find(frame.FrequencyData, frame.SampleRate)
	estimate := e.refiner.Refine(frame.TimeDomain, frame.SampleRate, peak.Clamped)
	e.count(estimate)

	loudness := temporal.LoudnessDB(frame.TimeDomain, e.cfg.Refiner.Midpoint, e.cfg.Smoothing.MinDecibels)

	stable, ok := e.smoother.Observe(frame.Timestamp, loudness, estimate.Frequency, estimate.Valid())
	if !ok {
		if !estimate.Valid() {
			e.logger.Debug("Frame not voiced", logging.Fields{
				"reason":      estimate.Reason.String(),
				"rms":         estimate.RMS,
				"confidence":  estimate.Confidence,
				"loudness_db": loudness,
			})
		}
		return nil, nil
	}

	note, err := e.mapper.Map(stable.Frequency)
	if err != nil {
		return nil, fmt.Errorf("mapping stable frequency: %w", err)
	}
	pyth, err := e.pythagorean.Analyze(note)
	if err != nil {
		return nil, fmt.Errorf("pythagorean analysis: %w", err)
	}

	freqs := e.binFrequencies(len(frame.FrequencyData), frame.SampleRate)

	m := &Measurement{
		SessionID:               e.sessionID,
		Timestamp:               stable.Time,
		Note:                    note.Name,
		Tone:                    note.Tone,
		Octave:                  note.Octave,
		ReferenceFrequency:      note.Reference,
		Cents:                   note.Cents,
		MIDIKey:                 note.MIDIKey,
		PythagoreanFrequency:    pyth.Frequency,
		PythagoreanCents:        pyth.Cents,
		PythagoreanAlternatives: pyth.Alternatives,
		DominantFrequency:       stable.Frequency,
		LoudnessDB:              stable.LoudnessDB,
		Dynamic:                 stable.Mark,
		FrequencySamples:        stable.FrequencySamples,
		CoarseFrequency:         peak.Clamped,
		Confidence:              estimate.Confidence,
		Purity:                  e.purity.ScoreBytes(frame.FrequencyData, freqs, peak.Clamped),
		Harmonics:               harmonic.Markers(stable.Frequency, e.cfg.Purity.MarkerCeiling),
	}

	e.last = m
	e.stats.Emitted++

	e.logger.Debug("Measurement emitted", logging.Fields{
		"note":      m.Note,
		"frequency": m.DominantFrequency,
		"cents":     m.Cents,
		"dynamic":   m.Dynamic.String(),
		"purity":    m.Purity,
	})

	return m, nil
}

// Consume pulls frames from src until it is exhausted or ctx is done,
// passing every emitted measurement to fn. An error from fn stops the loop.
func (e *Engine) Consume(ctx context.Context, src FrameSource, fn func(*Measurement) error) error {
	logger := e.logger.WithContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := src.NextFrame()
		if errors.Is(err, io.EOF) {
			logger.Debug("Frame source exhausted", logging.Fields{
				"frames":  e.stats.Frames,
				"emitted": e.stats.Emitted,
			})
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		m, err := e.ProcessFrame(frame)
		if err != nil {
			return fmt.Errorf("processing frame at %s: %w", frame.Timestamp.Format("15:04:05.000"), err)
		}
		if m == nil {
			continue
		}
		if err := fn(m); err != nil {
			return err
		}
	}
}

// Last returns the most recent measurement, or nil before the first emission
func (e *Engine) Last() *Measurement {
	return e.last
}

// SessionID identifies this engine's measurements
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Stats returns the frame counters
func (e *Engine) Stats() Stats {
	return e.stats
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() config.TunerConfig {
	return e.cfg
}

// Reset drops all history, counters and the last measurement
func (e *Engine) Reset() {
	e.smoother.Reset()
	e.last = nil
	e.stats = Stats{}
}

func (e *Engine) count(estimate tonal.PitchEstimate) {
	switch estimate.Reason {
	case tonal.Voiced:
		e.stats.Voiced++
	case tonal.Silence:
		e.stats.Silent++
	case tonal.LowConfidence:
		e.stats.LowConfidence++
	case tonal.OutOfRange:
		e.stats.OutOfRange++
	}
}

func (e *Engine) binFrequencies(binCount int, sampleRate float64) []float64 {
	if len(e.binFreqs) != binCount || e.binSampleRate != sampleRate {
		e.binFreqs = spectral.BinFrequencies(binCount, sampleRate)
		e.binSampleRate = sampleRate
	}
	return e.binFreqs
}
