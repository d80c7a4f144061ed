package tonal

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// EstimateReason tells why a PitchEstimate does or does not carry a frequency
type EstimateReason int

const (
	// Voiced means the estimate carries a usable frequency
	Voiced EstimateReason = iota
	// Silence means the frame's RMS was below the noise floor
	Silence
	// LowConfidence means no lag in the search band matched well enough
	LowConfidence
	// OutOfRange means the inputs could not bound a lag search
	OutOfRange
)

func (r EstimateReason) String() string {
	switch r {
	case Voiced:
		return "voiced"
	case Silence:
		return "silence"
	case LowConfidence:
		return "low_confidence"
	case OutOfRange:
		return "out_of_range"
	default:
		return "unknown"
	}
}

// PitchEstimate is either a voiced frequency or an explicit "no pitch"
type PitchEstimate struct {
	Frequency  float64        `json:"frequency"`  // Hz, zero unless Voiced
	Confidence float64        `json:"confidence"` // Best lag similarity (0-1)
	RMS        float64        `json:"rms"`        // Normalized frame RMS
	Lag        int            `json:"lag"`        // Winning lag in samples
	Reason     EstimateReason `json:"reason"`
}

// Valid reports whether the estimate carries a strictly positive, finite frequency
func (e PitchEstimate) Valid() bool {
	return e.Reason == Voiced && common.IsPositiveFinite(e.Frequency)
}

// RefinerParams configures the autocorrelation refinement
type RefinerParams struct {
	Tolerance     float64 `json:"tolerance"`      // Lag band around the coarse estimate, fraction of frequency
	NoiseFloor    float64 `json:"noise_floor"`    // RMS below which the frame is silence
	MinSimilarity float64 `json:"min_similarity"` // Similarity that must be exceeded to accept a lag
	Midpoint      float64 `json:"midpoint"`       // Value of a zero sample in the unsigned buffer
}

// DefaultRefinerParams returns the usual refinement settings
func DefaultRefinerParams() RefinerParams {
	return RefinerParams{
		Tolerance:     0.2,
		NoiseFloor:    0.01,
		MinSimilarity: 0.9,
		Midpoint:      128,
	}
}

// Refiner narrows a coarse FFT-peak frequency to sub-bin precision with a
// mean-absolute-difference lag search restricted to the band around it.
//
// Bin spacing (sampleRate/fftSize) is tens of cents at musical pitches, so the
// search recovers the period directly from the waveform. Keeping the band tight
// bounds the cost to O((maxLag-minLag)*N/2) and keeps octave errors out.
type Refiner struct {
	params RefinerParams
}

// NewRefiner creates a refiner with default parameters
func NewRefiner() *Refiner {
	return &Refiner{params: DefaultRefinerParams()}
}

// NewRefinerWithParams creates a refiner with custom parameters
func NewRefinerWithParams(params RefinerParams) *Refiner {
	return &Refiner{params: params}
}

// Params returns the refiner's parameters
func (r *Refiner) Params() RefinerParams {
	return r.params
}

// Refine estimates the period of buffer near coarseFreq
func (r *Refiner) Refine(buffer []uint8, sampleRate, coarseFreq float64) PitchEstimate {
	samples := common.CenteredBytes(buffer, r.params.Midpoint)
	rms := common.RMS(samples)

	if len(samples) == 0 || rms < r.params.NoiseFloor {
		return PitchEstimate{RMS: rms, Reason: Silence}
	}

	if !common.IsPositiveFinite(sampleRate) || !common.IsPositiveFinite(coarseFreq) {
		return PitchEstimate{RMS: rms, Reason: OutOfRange}
	}

	minLag, maxLag := r.LagBounds(len(samples), sampleRate, coarseFreq)
	if minLag > maxLag {
		return PitchEstimate{RMS: rms, Reason: OutOfRange}
	}

	half := len(samples) / 2
	bestLag := -1
	bestSimilarity := 0.0

	for lag := minLag; lag <= maxLag; lag++ {
		diff := 0.0
		for i := 0; i < half; i++ {
			diff += math.Abs(samples[i] - samples[i+lag])
		}
		similarity := 1 - diff/float64(half)

		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestLag = lag
		}
	}

	if bestLag <= 0 || bestSimilarity <= r.params.MinSimilarity {
		return PitchEstimate{Confidence: bestSimilarity, RMS: rms, Lag: bestLag, Reason: LowConfidence}
	}

	return PitchEstimate{
		Frequency:  sampleRate / float64(bestLag),
		Confidence: bestSimilarity,
		RMS:        rms,
		Lag:        bestLag,
		Reason:     Voiced,
	}
}

// LagBounds returns the inclusive lag range whose implied frequencies lie
// within the tolerance band of coarseFreq, limited to lags the first half of
// an n-sample buffer can be compared against
func (r *Refiner) LagBounds(n int, sampleRate, coarseFreq float64) (minLag, maxLag int) {
	fHigh := coarseFreq * (1 + r.params.Tolerance)
	fLow := coarseFreq * (1 - r.params.Tolerance)

	minLag = max(1, int(math.Floor(sampleRate/fHigh)))
	if fLow > 0 {
		maxLag = int(math.Floor(sampleRate / fLow))
	} else {
		maxLag = n
	}
	maxLag = min(maxLag, n-n/2)

	return minLag, maxLag
}
