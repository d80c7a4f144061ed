package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// purityEpsilon keeps the cosine similarity finite for silent spectra
const purityEpsilon = 1e-8

// PurityParams shapes the ideal harmonic template
type PurityParams struct {
	Harmonics     int     `json:"harmonics"`      // Number of partials in the template
	DecayExponent float64 `json:"decay_exponent"` // Partial n has amplitude 1/n^DecayExponent
	Sigma         float64 `json:"sigma"`          // Gaussian peak width (Hz)
}

// DefaultPurityParams returns the template used for the purity score
func DefaultPurityParams() PurityParams {
	return PurityParams{
		Harmonics:     8,
		DecayExponent: 1.5,
		Sigma:         8.5,
	}
}

// PurityScorer rates how closely a magnitude spectrum follows an idealized
// harmonic series on f0. Clean harmonic tones score near 100, noise and
// inharmonic content score low.
type PurityScorer struct {
	params PurityParams
}

// NewPurityScorer creates a scorer with default parameters
func NewPurityScorer() *PurityScorer {
	return &PurityScorer{params: DefaultPurityParams()}
}

// NewPurityScorerWithParams creates a scorer with custom parameters
func NewPurityScorerWithParams(params PurityParams) *PurityScorer {
	return &PurityScorer{params: params}
}

// IdealSpectrum evaluates the template on the frequency axis freqs: a sum of
// Gaussian peaks at n*f0 weighted by 1/n^DecayExponent
func (ps *PurityScorer) IdealSpectrum(freqs []float64, f0 float64) []float64 {
	ideal := make([]float64, len(freqs))
	twoSigmaSq := 2 * ps.params.Sigma * ps.params.Sigma

	for i, f := range freqs {
		sum := 0.0
		for n := 1; n <= ps.params.Harmonics; n++ {
			amp := 1 / math.Pow(float64(n), ps.params.DecayExponent)
			delta := f - float64(n)*f0
			sum += amp * math.Exp(-(delta*delta)/twoSigmaSq)
		}
		ideal[i] = sum
	}

	return ideal
}

// Score returns the cosine similarity of actual and ideal as a percentage
func (ps *PurityScorer) Score(actual, ideal []float64) float64 {
	return common.CosineSimilarity(actual, ideal, purityEpsilon) * 100
}

// ScoreBytes normalizes an analyser byte spectrum to [0, 1] and scores it
// against the template for f0
func (ps *PurityScorer) ScoreBytes(magnitudes []uint8, freqs []float64, f0 float64) float64 {
	actual := make([]float64, len(magnitudes))
	for i, m := range magnitudes {
		actual[i] = float64(m) / 255
	}
	return ps.Score(actual, ps.IdealSpectrum(freqs, f0))
}

// Markers lists the harmonic frequencies h*f0 up to and including ceiling
func Markers(f0, ceiling float64) []float64 {
	if !common.IsPositiveFinite(f0) {
		return []float64{}
	}

	markers := []float64{}
	for h := 1; float64(h)*f0 <= ceiling; h++ {
		markers = append(markers, float64(h)*f0)
	}
	return markers
}
