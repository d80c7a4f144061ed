package spectral

import (
	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// Peak is the strongest bin of a magnitude spectrum
type Peak struct {
	Index     int     `json:"index"`
	Magnitude uint8   `json:"magnitude"`
	Frequency float64 `json:"frequency"` // Raw bin frequency (Hz)
	Clamped   float64 `json:"clamped"`   // Frequency constrained to the playable band (Hz)
}

// PeakFinder locates the coarse fundamental as the loudest FFT bin and
// constrains it to a playable band before it seeds the lag search
type PeakFinder struct {
	MinFreq float64
	MaxFreq float64
}

// NewPeakFinder creates a peak finder clamping to [minFreq, maxFreq]
func NewPeakFinder(minFreq, maxFreq float64) *PeakFinder {
	return &PeakFinder{MinFreq: minFreq, MaxFreq: maxFreq}
}

// Find returns the first bin holding the maximum magnitude. A flat buffer
// degenerates to bin 0 at 0 Hz.
func (pf *PeakFinder) Find(magnitudes []uint8, sampleRate float64) Peak {
	maxIndex := 0
	var maxVal uint8
	for i, m := range magnitudes {
		if m > maxVal {
			maxVal = m
			maxIndex = i
		}
	}

	freq := BinFrequency(maxIndex, len(magnitudes), sampleRate)
	return Peak{
		Index:     maxIndex,
		Magnitude: maxVal,
		Frequency: freq,
		Clamped:   common.Clamp(freq, pf.MinFreq, pf.MaxFreq),
	}
}
