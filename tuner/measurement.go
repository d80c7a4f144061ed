package tuner

import (
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/temporal"
	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

// Measurement is one stable reading of the tuner
type Measurement struct {
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`

	// Equal temperament
	Note               string     `json:"note"` // Tone and octave, e.g. "A4"
	Tone               tonal.Tone `json:"-"`
	Octave             int        `json:"octave"`
	ReferenceFrequency float64    `json:"reference_frequency"` // Hz
	Cents              float64    `json:"cents"`               // [-50, 50]
	MIDIKey            int        `json:"midi_key"`

	// Pythagorean tuning
	PythagoreanFrequency    float64                        `json:"pythagorean_frequency"` // Hz
	PythagoreanCents        float64                        `json:"pythagorean_cents"`
	PythagoreanAlternatives []tonal.PythagoreanAlternative `json:"pythagorean_alternatives"`

	// Smoothed signal
	DominantFrequency float64              `json:"dominant_frequency"` // Mean of the frequency window (Hz)
	LoudnessDB        float64              `json:"loudness_db"`        // Mean of the loudness window (dBFS)
	Dynamic           temporal.DynamicMark `json:"dynamic"`
	FrequencySamples  int                  `json:"frequency_samples"`

	// Current frame
	CoarseFrequency float64   `json:"coarse_frequency"` // Clamped FFT peak (Hz)
	Confidence      float64   `json:"confidence"`
	Purity          float64   `json:"purity"`    // 0-100
	Harmonics       []float64 `json:"harmonics"` // h * DominantFrequency markers (Hz)
}

// NeedleCents returns where the Pythagorean needles sit on the gauge: one
// per enharmonic spelling, or the single own-spelling deviation
func (m *Measurement) NeedleCents() []float64 {
	if len(m.PythagoreanAlternatives) == 0 {
		return []float64{m.PythagoreanCents}
	}

	cents := make([]float64, len(m.PythagoreanAlternatives))
	for i, alt := range m.PythagoreanAlternatives {
		cents[i] = alt.Cents
	}
	return cents
}

// GaugeAngle is the equal-temperament needle deflection in radians
func (m *Measurement) GaugeAngle() float64 {
	return tonal.GaugeAngle(m.Cents)
}
