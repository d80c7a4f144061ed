package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// TunerConfig gathers every tunable of the analysis pipeline
type TunerConfig struct {
	A4       float64 `json:"a4"`       // Reference pitch (Hz)
	Notation string  `json:"notation"` // "english" or "german"

	Peak      PeakConfig      `json:"peak"`
	Refiner   RefinerConfig   `json:"refiner"`
	Smoothing SmoothingConfig `json:"smoothing"`
	Purity    PurityConfig    `json:"purity"`
	Analyser  AnalyserConfig  `json:"analyser"`
	Decoder   DecoderConfig   `json:"decoder"`
}

// PeakConfig bounds the coarse FFT peak before refinement
type PeakConfig struct {
	MinFreq float64 `json:"min_freq"` // Hz
	MaxFreq float64 `json:"max_freq"` // Hz
}

// RefinerConfig configures the autocorrelation lag search
type RefinerConfig struct {
	Tolerance     float64 `json:"tolerance"`      // Fraction of the coarse frequency searched either side
	NoiseFloor    float64 `json:"noise_floor"`    // Normalized RMS gate
	MinSimilarity float64 `json:"min_similarity"` // Similarity that must be exceeded
	Midpoint      float64 `json:"midpoint"`       // Zero level of unsigned samples
}

// SmoothingConfig configures the rolling histories
type SmoothingConfig struct {
	WindowMS    int     `json:"window_ms"`    // Trailing window and emission interval
	MinDecibels float64 `json:"min_decibels"` // Floor for the loudness estimate (dBFS)
}

// Window returns the smoothing window as a duration
func (s SmoothingConfig) Window() time.Duration {
	return time.Duration(s.WindowMS) * time.Millisecond
}

// PurityConfig shapes the harmonic template of the purity score
type PurityConfig struct {
	Harmonics     int     `json:"harmonics"`
	DecayExponent float64 `json:"decay_exponent"`
	Sigma         float64 `json:"sigma"`          // Hz
	MarkerCeiling float64 `json:"marker_ceiling"` // Highest harmonic marker reported (Hz)
}

// AnalyserConfig configures the analyser used by file and synthetic sources
type AnalyserConfig struct {
	FFTSize               int     `json:"fft_size"`
	HopSize               int     `json:"hop_size"`
	SmoothingTimeConstant float64 `json:"smoothing_time_constant"`
	MinDecibels           float64 `json:"min_decibels"`
	MaxDecibels           float64 `json:"max_decibels"`
	DCCutoff              float64 `json:"dc_cutoff"` // DC blocker cutoff (Hz), 0 disables
}

// DecoderConfig configures ffmpeg decoding of non-WAV recordings
type DecoderConfig struct {
	FFmpegPath    string `json:"ffmpeg_path"`
	SampleRate    int    `json:"sample_rate"`
	TimeoutMS     int    `json:"timeout_ms"`
	MaxDurationMS int    `json:"max_duration_ms"` // 0 decodes everything
}

// DefaultTunerConfig returns the defaults used by the tuner
func DefaultTunerConfig() TunerConfig {
	return TunerConfig{
		A4:       440,
		Notation: "english",
		Peak: PeakConfig{
			MinFreq: 261,  // ~C4
			MaxFreq: 2349, // ~D7
		},
		Refiner: RefinerConfig{
			Tolerance:     0.2,
			NoiseFloor:    0.01,
			MinSimilarity: 0.9,
			Midpoint:      128,
		},
		Smoothing: SmoothingConfig{
			WindowMS:    250,
			MinDecibels: -100,
		},
		Purity: PurityConfig{
			Harmonics:     8,
			DecayExponent: 1.5,
			Sigma:         8.5,
			MarkerCeiling: 2349,
		},
		Analyser: AnalyserConfig{
			FFTSize:               2048,
			HopSize:               512,
			SmoothingTimeConstant: 0.8,
			MinDecibels:           -100,
			MaxDecibels:           -30,
			DCCutoff:              10,
		},
		Decoder: DecoderConfig{
			FFmpegPath: "ffmpeg",
			SampleRate: 44100,
			TimeoutMS:  30000,
		},
	}
}

// Validate reports the first setting the pipeline cannot work with
func (c TunerConfig) Validate() error {
	switch {
	case !(c.A4 > 0):
		return fmt.Errorf("a4 must be positive, got %g", c.A4)
	case c.Notation != "english" && c.Notation != "german":
		return fmt.Errorf("notation must be \"english\" or \"german\", got %q", c.Notation)
	case !(c.Peak.MinFreq > 0) || c.Peak.MaxFreq < c.Peak.MinFreq:
		return fmt.Errorf("peak range [%g, %g] is invalid", c.Peak.MinFreq, c.Peak.MaxFreq)
	case !(c.Refiner.Tolerance > 0) || c.Refiner.Tolerance >= 1:
		return fmt.Errorf("refiner tolerance must be within (0, 1), got %g", c.Refiner.Tolerance)
	case c.Refiner.NoiseFloor < 0:
		return fmt.Errorf("refiner noise floor must not be negative, got %g", c.Refiner.NoiseFloor)
	case c.Refiner.MinSimilarity < 0 || c.Refiner.MinSimilarity >= 1:
		return fmt.Errorf("refiner min similarity must be within [0, 1), got %g", c.Refiner.MinSimilarity)
	case !(c.Refiner.Midpoint > 0):
		return fmt.Errorf("refiner midpoint must be positive, got %g", c.Refiner.Midpoint)
	case c.Smoothing.WindowMS <= 0:
		return fmt.Errorf("smoothing window must be positive, got %dms", c.Smoothing.WindowMS)
	case c.Smoothing.MinDecibels >= 0:
		return fmt.Errorf("smoothing min decibels must be negative, got %g", c.Smoothing.MinDecibels)
	case c.Purity.Harmonics < 1:
		return fmt.Errorf("purity harmonics must be at least 1, got %d", c.Purity.Harmonics)
	case !(c.Purity.Sigma > 0):
		return fmt.Errorf("purity sigma must be positive, got %g", c.Purity.Sigma)
	case c.Analyser.HopSize <= 0:
		return fmt.Errorf("analyser hop size must be positive, got %d", c.Analyser.HopSize)
	case c.Analyser.DCCutoff < 0:
		return fmt.Errorf("analyser dc cutoff must not be negative, got %g", c.Analyser.DCCutoff)
	case c.Decoder.SampleRate <= 0:
		return fmt.Errorf("decoder sample rate must be positive, got %d", c.Decoder.SampleRate)
	}
	return nil
}

// LoadFile reads a JSON config from path, overlaying it on the defaults
func LoadFile(path string) (TunerConfig, error) {
	cfg := DefaultTunerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Join(ErrInvalidConfig, err)
	}
	return cfg, nil
}

// ErrInvalidConfig marks configs rejected by Validate when loaded from disk
var ErrInvalidConfig = errors.New("invalid tuner config")
