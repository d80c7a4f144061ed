package filters

import (
	"math"
)

// DCRemoval is a one-pole DC blocker (high-pass) that removes the 0 Hz
// component from a recording before it is quantized around the byte midpoint.
//
// Difference equation: y[n] = x[n] - x[n-1] + R*y[n-1]
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	poleLocation float64 // R parameter (0 < R < 1)

	// State variables
	x1 float64 // Previous input sample x[n-1]
	y1 float64 // Previous output sample y[n-1]
}

// NewDCRemovalWithCutoff creates a DC blocker whose -3dB point is cutoffFreq,
// using R = 1 - 2*pi*fc/fs
func NewDCRemovalWithCutoff(sampleRate, cutoffFreq float64) *DCRemoval {
	pole := 1.0 - (2.0 * math.Pi * cutoffFreq / sampleRate)

	// Clamp to valid range
	if pole >= 1.0 {
		pole = 0.999
	} else if pole <= 0.0 {
		pole = 0.001
	}

	return &DCRemoval{poleLocation: pole}
}

// Process filters a single sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.poleLocation*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBuffer filters a whole buffer, returning a new slice
func (dc *DCRemoval) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = dc.Process(sample)
	}
	return output
}

// PoleLocation returns R
func (dc *DCRemoval) PoleLocation() float64 {
	return dc.poleLocation
}

// CutoffFrequency approximates the -3dB point as (1-R)*fs/(2*pi)
func (dc *DCRemoval) CutoffFrequency(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - dc.poleLocation) * sampleRate / (2.0 * math.Pi)
}
