package temporal

import (
	"time"
)

// StableMeasurement is the rolling average emitted by a Smoother
type StableMeasurement struct {
	Time             time.Time   `json:"time"`
	Frequency        float64     `json:"frequency"`   // Mean of the frequency window (Hz)
	LoudnessDB       float64     `json:"loudness_db"` // Mean of the loudness window (dBFS)
	Mark             DynamicMark `json:"dynamic_mark"`
	FrequencySamples int         `json:"frequency_samples"`
	LoudnessSamples  int         `json:"loudness_samples"`
}

// Smoother stabilizes noisy per-frame estimates with two trailing windows,
// emitting their means at most once per window interval. History is rolling
// and never cleared on emission.
type Smoother struct {
	interval  time.Duration
	frequency *HistoryWindow
	loudness  *HistoryWindow
	lastEmit  time.Time
	emitted   bool
}

// NewSmoother creates a smoother whose window and emission interval are both interval
func NewSmoother(interval time.Duration) *Smoother {
	return &Smoother{
		interval:  interval,
		frequency: NewHistoryWindow(interval),
		loudness:  NewHistoryWindow(interval),
	}
}

// Observe records one tick. freq is only recorded when voiced is true. It
// returns a StableMeasurement when one is due.
func (s *Smoother) Observe(now time.Time, loudnessDB, freq float64, voiced bool) (StableMeasurement, bool) {
	s.loudness.Push(now, loudnessDB)
	if voiced {
		s.frequency.Push(now, freq)
	}
	s.loudness.Prune(now)
	s.frequency.Prune(now)

	due := !s.emitted || now.Sub(s.lastEmit) > s.interval
	if !due || s.frequency.Len() == 0 {
		return StableMeasurement{}, false
	}

	s.lastEmit = now
	s.emitted = true

	loudness := s.loudness.Mean()
	return StableMeasurement{
		Time:             now,
		Frequency:        s.frequency.Mean(),
		LoudnessDB:       loudness,
		Mark:             DynamicMarkFor(loudness),
		FrequencySamples: s.frequency.Len(),
		LoudnessSamples:  s.loudness.Len(),
	}, true
}

// FrequencyHistory exposes the frequency window for inspection
func (s *Smoother) FrequencyHistory() *HistoryWindow {
	return s.frequency
}

// LoudnessHistory exposes the loudness window for inspection
func (s *Smoother) LoudnessHistory() *HistoryWindow {
	return s.loudness
}

// Reset forgets all history and the emission timer
func (s *Smoother) Reset() {
	s.frequency.Clear()
	s.loudness.Clear()
	s.lastEmit = time.Time{}
	s.emitted = false
}
