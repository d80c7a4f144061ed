package tonal

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 44100.0

// sineBytes renders an unsigned 8-bit sine centred at 128
func sineBytes(freq, sampleRate float64, n int, amplitude float64) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		v := 128 + amplitude*math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
		out[i] = uint8(math.Round(math.Max(0, math.Min(255, v))))
	}
	return out
}

func TestRefineSilentBufferHasNoPitch(t *testing.T) {
	buf := make([]uint8, 2048)
	for i := range buf {
		buf[i] = 128
	}

	est := NewRefiner().Refine(buf, testSampleRate, 440)
	assert.False(t, est.Valid())
	assert.Equal(t, Silence, est.Reason)
	assert.Equal(t, 0.0, est.Frequency)
}

func TestRefineQuietBufferBelowNoiseFloor(t *testing.T) {
	est := NewRefiner().Refine(sineBytes(440, testSampleRate, 2048, 1), testSampleRate, 440)
	assert.Equal(t, Silence, est.Reason)
	assert.Less(t, est.RMS, 0.01)
}

func TestRefineSineWithinOnePercent(t *testing.T) {
	refiner := NewRefiner()
	binWidth := testSampleRate / 2048

	for _, freq := range []float64{261.63, 329.63, 440, 523.25, 880, 1046.5, 1760, 2093} {
		t.Run(fmt.Sprintf("%.2fHz", freq), func(t *testing.T) {
			buf := sineBytes(freq, testSampleRate, 2048, 120)

			// Seed with the bin-quantized estimate an FFT peak would give
			coarse := math.Round(freq/binWidth) * binWidth
			est := refiner.Refine(buf, testSampleRate, coarse)

			require.True(t, est.Valid(), "reason %s, confidence %.3f", est.Reason, est.Confidence)
			assert.Greater(t, est.Confidence, 0.9)
			assert.InEpsilon(t, freq, est.Frequency, 0.01)
			assert.InDelta(t, testSampleRate/float64(est.Lag), est.Frequency, 1e-9)
		})
	}
}

func TestRefineNoiseIsLowConfidence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	buf := make([]uint8, 2048)
	for i := range buf {
		buf[i] = uint8(28 + rng.Intn(200))
	}

	est := NewRefiner().Refine(buf, testSampleRate, 440)
	assert.Equal(t, LowConfidence, est.Reason)
	assert.False(t, est.Valid())
	assert.LessOrEqual(t, est.Confidence, 0.9)
}

func TestRefineOutOfRangeInputs(t *testing.T) {
	refiner := NewRefiner()
	loud := sineBytes(440, testSampleRate, 2048, 120)

	assert.Equal(t, OutOfRange, refiner.Refine(loud, testSampleRate, 0).Reason)
	assert.Equal(t, OutOfRange, refiner.Refine(loud, 0, 440).Reason)
	assert.Equal(t, OutOfRange, refiner.Refine(loud, testSampleRate, math.NaN()).Reason)

	// 16 samples cannot hold a 300 Hz period at 44.1 kHz
	assert.Equal(t, OutOfRange, refiner.Refine(loud[:16], testSampleRate, 300).Reason)
}

func TestLagBounds(t *testing.T) {
	refiner := NewRefiner()

	minLag, maxLag := refiner.LagBounds(2048, testSampleRate, 440)
	assert.Equal(t, 83, minLag)
	assert.Equal(t, 125, maxLag)

	// capped so the first half of the buffer can be compared
	minLag, maxLag = refiner.LagBounds(256, testSampleRate, 261)
	assert.Equal(t, 140, minLag)
	assert.Equal(t, 128, maxLag)

	params := DefaultRefinerParams()
	params.Tolerance = 1.5
	minLag, maxLag = NewRefinerWithParams(params).LagBounds(2048, testSampleRate, 440)
	assert.Equal(t, 40, minLag)
	assert.Equal(t, 1024, maxLag)
}

func TestEstimateReasonString(t *testing.T) {
	assert.Equal(t, "voiced", Voiced.String())
	assert.Equal(t, "silence", Silence.String())
	assert.Equal(t, "low_confidence", LowConfidence.String())
	assert.Equal(t, "out_of_range", OutOfRange.String())
	assert.Equal(t, "unknown", EstimateReason(42).String())
}
