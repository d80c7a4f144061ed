package spectral

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// AnalyserParams mirrors the knobs of a browser-style analyser node
type AnalyserParams struct {
	FFTSize               int     `json:"fft_size"`
	SmoothingTimeConstant float64 `json:"smoothing_time_constant"` // 0..1, weight of the previous frame
	MinDecibels           float64 `json:"min_decibels"`            // maps to byte 0
	MaxDecibels           float64 `json:"max_decibels"`            // maps to byte 255
}

// DefaultAnalyserParams returns the usual analyser defaults
func DefaultAnalyserParams() AnalyserParams {
	return AnalyserParams{
		FFTSize:               2048,
		SmoothingTimeConstant: 0.8,
		MinDecibels:           -100,
		MaxDecibels:           -30,
	}
}

// Analyser turns a block of float samples into the byte buffers a platform
// audio API hands out per tick: unsigned time-domain samples centred at 128
// and a Blackman-windowed, time-smoothed magnitude spectrum in decibel bytes.
//
// The smoothed spectrum is carried between calls, so an Analyser belongs to a
// single stream.
type Analyser struct {
	params   AnalyserParams
	fft      *FFT
	window   []float64
	smoothed []float64
}

// NewAnalyser creates an analyser, validating the FFT size and dB range
func NewAnalyser(params AnalyserParams) (*Analyser, error) {
	if params.FFTSize < 32 || params.FFTSize&(params.FFTSize-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 32, got %d", params.FFTSize)
	}
	if params.SmoothingTimeConstant < 0 || params.SmoothingTimeConstant > 1 {
		return nil, fmt.Errorf("smoothing time constant must be within [0, 1], got %g", params.SmoothingTimeConstant)
	}
	if params.MinDecibels >= params.MaxDecibels {
		return nil, fmt.Errorf("min decibels (%g) must be below max decibels (%g)", params.MinDecibels, params.MaxDecibels)
	}

	return &Analyser{
		params:   params,
		fft:      NewFFT(),
		window:   window.Blackman(params.FFTSize),
		smoothed: make([]float64, params.FFTSize/2),
	}, nil
}

// FFTSize returns the configured transform length
func (a *Analyser) FFTSize() int {
	return a.params.FFTSize
}

// BinCount returns the number of frequency bins, FFTSize/2
func (a *Analyser) BinCount() int {
	return a.params.FFTSize / 2
}

// Analyse consumes exactly FFTSize samples in [-1, 1] and returns the
// time-domain and frequency byte buffers for this tick
func (a *Analyser) Analyse(samples []float64) (timeDomain, frequency []uint8, err error) {
	if len(samples) != a.params.FFTSize {
		return nil, nil, fmt.Errorf("sample block size (%d) doesn't match fft size (%d)", len(samples), a.params.FFTSize)
	}

	timeDomain = make([]uint8, len(samples))
	windowed := make([]float64, len(samples))
	for i, x := range samples {
		timeDomain[i] = toByte(128 * (x + 1))
		windowed[i] = x * a.window[i]
	}

	mags := a.fft.Magnitudes(a.fft.Compute(windowed))

	tau := a.params.SmoothingTimeConstant
	dbRange := a.params.MaxDecibels - a.params.MinDecibels
	frequency = make([]uint8, len(mags))
	for k, m := range mags {
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*m

		db := math.Inf(-1)
		if a.smoothed[k] > 0 {
			db = 20 * math.Log10(a.smoothed[k])
		}
		frequency[k] = toByte(255 / dbRange * (db - a.params.MinDecibels))
	}

	return timeDomain, frequency, nil
}

// Reset clears the smoothing history
func (a *Analyser) Reset() {
	for i := range a.smoothed {
		a.smoothed[i] = 0
	}
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
