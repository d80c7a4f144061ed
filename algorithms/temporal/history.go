package temporal

import (
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// Sample is one time-stamped scalar observation
type Sample struct {
	Time  time.Time
	Value float64
}

// HistoryWindow keeps the samples observed within a trailing time window.
// It has a single writer and no internal locking.
type HistoryWindow struct {
	window  time.Duration
	samples []Sample
}

// NewHistoryWindow creates an empty history spanning window
func NewHistoryWindow(window time.Duration) *HistoryWindow {
	return &HistoryWindow{
		window:  window,
		samples: make([]Sample, 0, 64),
	}
}

// Window returns the trailing interval kept by the history
func (hw *HistoryWindow) Window() time.Duration {
	return hw.window
}

// Push appends a sample
func (hw *HistoryWindow) Push(t time.Time, value float64) {
	hw.samples = append(hw.samples, Sample{Time: t, Value: value})
}

// Prune drops samples older than now - window. Samples exactly on the
// boundary are kept.
func (hw *HistoryWindow) Prune(now time.Time) {
	keep := hw.samples[:0]
	for _, s := range hw.samples {
		if now.Sub(s.Time) <= hw.window {
			keep = append(keep, s)
		}
	}

	// zero the tail so dropped samples are not retained by the backing array
	for i := len(keep); i < len(hw.samples); i++ {
		hw.samples[i] = Sample{}
	}
	hw.samples = keep
}

// Len returns the number of retained samples
func (hw *HistoryWindow) Len() int {
	return len(hw.samples)
}

// Values returns a copy of the retained values in insertion order
func (hw *HistoryWindow) Values() []float64 {
	values := make([]float64, len(hw.samples))
	for i, s := range hw.samples {
		values[i] = s.Value
	}
	return values
}

// Mean returns the arithmetic mean of the retained values, or 0 when empty
func (hw *HistoryWindow) Mean() float64 {
	return common.StableMean(hw.Values())
}

// Clear drops every sample
func (hw *HistoryWindow) Clear() {
	hw.samples = hw.samples[:0]
}
