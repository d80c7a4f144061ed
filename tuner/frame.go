package tuner

import (
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

var (
	// ErrEmptyFrame is returned for frames without time-domain or frequency data
	ErrEmptyFrame = errors.New("audio frame has no samples")
	// ErrInvalidSampleRate is returned for non-positive or non-finite sample rates
	ErrInvalidSampleRate = errors.New("audio frame sample rate must be positive")
	// ErrMissingTimestamp is returned for frames with a zero timestamp
	ErrMissingTimestamp = errors.New("audio frame has no timestamp")
)

// AudioFrame is one analysis tick as delivered by an analyser: unsigned
// time-domain samples centred at 128 and one magnitude byte per FFT bin
type AudioFrame struct {
	TimeDomain    []uint8   `json:"-"`
	FrequencyData []uint8   `json:"-"`
	SampleRate    float64   `json:"sample_rate"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate checks that the frame can be analysed
func (f AudioFrame) Validate() error {
	if len(f.TimeDomain) == 0 || len(f.FrequencyData) == 0 {
		return fmt.Errorf("%w (time domain %d, frequency %d)", ErrEmptyFrame, len(f.TimeDomain), len(f.FrequencyData))
	}
	if !common.IsPositiveFinite(f.SampleRate) {
		return fmt.Errorf("%w, got %g", ErrInvalidSampleRate, f.SampleRate)
	}
	if f.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}
	return nil
}

// FrameSource yields analysis frames in time order. NextFrame returns io.EOF
// once the source is exhausted.
type FrameSource interface {
	NextFrame() (AudioFrame, error)
}
