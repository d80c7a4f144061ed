package source

import (
	"fmt"
	"io"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// SampleSource replays a mono float signal through an analyser, yielding one
// frame every hop samples. Frames are stamped with the time of their last
// sample relative to start.
type SampleSource struct {
	samples    []float64
	sampleRate float64
	hop        int
	analyser   *spectral.Analyser
	start      time.Time
	pos        int
}

// NewSampleSource creates a frame source over samples in [-1, 1]. When
// cfg.DCCutoff is positive the signal is DC-blocked first.
func NewSampleSource(samples []float64, sampleRate float64, cfg config.AnalyserConfig, start time.Time) (*SampleSource, error) {
	if !common.IsPositiveFinite(sampleRate) {
		return nil, fmt.Errorf("%w, got %g", tuner.ErrInvalidSampleRate, sampleRate)
	}
	if cfg.HopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive, got %d", cfg.HopSize)
	}

	analyser, err := spectral.NewAnalyser(spectral.AnalyserParams{
		FFTSize:               cfg.FFTSize,
		SmoothingTimeConstant: cfg.SmoothingTimeConstant,
		MinDecibels:           cfg.MinDecibels,
		MaxDecibels:           cfg.MaxDecibels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analyser: %w", err)
	}

	if cfg.DCCutoff > 0 {
		dc := filters.NewDCRemovalWithCutoff(sampleRate, cfg.DCCutoff)
		samples = dc.ProcessBuffer(samples)
		logging.Debug("DC blocker applied", logging.Fields{
			"pole":      dc.PoleLocation(),
			"cutoff_hz": dc.CutoffFrequency(sampleRate),
			"samples":   len(samples),
		})
	}

	return &SampleSource{
		samples:    samples,
		sampleRate: sampleRate,
		hop:        cfg.HopSize,
		analyser:   analyser,
		start:      start,
	}, nil
}

// NextFrame analyses the next block, returning io.EOF when fewer than
// FFTSize samples remain
func (s *SampleSource) NextFrame() (tuner.AudioFrame, error) {
	size := s.analyser.FFTSize()
	if s.pos+size > len(s.samples) {
		return tuner.AudioFrame{}, io.EOF
	}

	timeDomain, frequency, err := s.analyser.Analyse(s.samples[s.pos : s.pos+size])
	if err != nil {
		return tuner.AudioFrame{}, err
	}

	frame := tuner.AudioFrame{
		TimeDomain:    timeDomain,
		FrequencyData: frequency,
		SampleRate:    s.sampleRate,
		Timestamp:     s.start.Add(s.offset(s.pos + size)),
	}
	s.pos += s.hop
	return frame, nil
}

// Frames returns how many frames the source yields in total
func (s *SampleSource) Frames() int {
	size := s.analyser.FFTSize()
	if len(s.samples) < size {
		return 0
	}
	return (len(s.samples)-size)/s.hop + 1
}

// Duration is the length of the underlying signal
func (s *SampleSource) Duration() time.Duration {
	return s.offset(len(s.samples))
}

// SampleRate returns the signal's sample rate in Hz
func (s *SampleSource) SampleRate() float64 {
	return s.sampleRate
}

// Rewind restarts the source from the first sample
func (s *SampleSource) Rewind() {
	s.pos = 0
	s.analyser.Reset()
}

func (s *SampleSource) offset(samples int) time.Duration {
	return time.Duration(float64(samples) / s.sampleRate * float64(time.Second))
}
