package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// mjibson/go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// Magnitudes returns |X[k]| / n for the first n/2 bins of a spectrum of size n
func (f *FFT) Magnitudes(spectrum []complex128) []float64 {
	n := len(spectrum)
	if n == 0 {
		return []float64{}
	}

	mags := make([]float64, n/2)
	scale := 1.0 / float64(n)
	for k := range mags {
		mags[k] = cmplx.Abs(spectrum[k]) * scale
	}
	return mags
}

// BinFrequency returns the centre frequency of bin index for binCount bins
// spanning [0, sampleRate/2)
func BinFrequency(index, binCount int, sampleRate float64) float64 {
	if binCount <= 0 {
		return 0
	}
	return float64(index) * (sampleRate / 2) / float64(binCount)
}

// BinFrequencies returns the frequency axis for binCount bins
func BinFrequencies(binCount int, sampleRate float64) []float64 {
	freqs := make([]float64, binCount)
	for i := range freqs {
		freqs[i] = BinFrequency(i, binCount, sampleRate)
	}
	return freqs
}
