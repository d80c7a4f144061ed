package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, sampleRate, amplitude float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func TestBinFrequencies(t *testing.T) {
	freqs := BinFrequencies(1024, 44100)
	require.Len(t, freqs, 1024)
	assert.Equal(t, 0.0, freqs[0])
	assert.InDelta(t, 22050.0/1024, freqs[1], 1e-9)
	assert.InDelta(t, 22050.0*1023/1024, freqs[1023], 1e-9)
	assert.Equal(t, 0.0, BinFrequency(3, 0, 44100))
}

func TestPeakFinderClampsAndPrefersFirstMax(t *testing.T) {
	pf := NewPeakFinder(261, 2349)

	mags := make([]uint8, 1024)
	mags[20] = 200
	mags[40] = 200
	peak := pf.Find(mags, 44100)
	assert.Equal(t, 20, peak.Index)
	assert.InDelta(t, 20*22050.0/1024, peak.Frequency, 1e-9)
	assert.InDelta(t, peak.Frequency, peak.Clamped, 1e-9)

	low := make([]uint8, 1024)
	low[5] = 90
	assert.Equal(t, 261.0, pf.Find(low, 44100).Clamped)

	high := make([]uint8, 1024)
	high[500] = 90
	assert.Equal(t, 2349.0, pf.Find(high, 44100).Clamped)
}

func TestPeakFinderFlatBuffer(t *testing.T) {
	pf := NewPeakFinder(261, 2349)
	peak := pf.Find(make([]uint8, 1024), 44100)
	assert.Equal(t, 0, peak.Index)
	assert.Equal(t, 0.0, peak.Frequency)
	assert.Equal(t, 261.0, peak.Clamped)
}

func TestNewAnalyserValidates(t *testing.T) {
	params := DefaultAnalyserParams()
	params.FFTSize = 1000
	_, err := NewAnalyser(params)
	assert.Error(t, err)

	params = DefaultAnalyserParams()
	params.MinDecibels = -20
	_, err = NewAnalyser(params)
	assert.Error(t, err)

	params = DefaultAnalyserParams()
	params.SmoothingTimeConstant = 1.5
	_, err = NewAnalyser(params)
	assert.Error(t, err)
}

func TestAnalyserSineProducesPeakAtTone(t *testing.T) {
	a, err := NewAnalyser(DefaultAnalyserParams())
	require.NoError(t, err)
	require.Equal(t, 1024, a.BinCount())

	samples := sine(440, 44100, 0.5, a.FFTSize())
	timeDomain, freqData, err := a.Analyse(samples)
	require.NoError(t, err)
	require.Len(t, timeDomain, 2048)
	require.Len(t, freqData, 1024)

	assert.Equal(t, uint8(128), timeDomain[0])
	assert.InDelta(t, 192, int(timeDomain[25]), 1) // quarter period of 440 Hz is ~25 samples

	peak := NewPeakFinder(261, 2349).Find(freqData, 44100)
	assert.InDelta(t, 20.4, float64(peak.Index), 1.0)
	assert.InDelta(t, 440, peak.Frequency, 22050.0/1024)
}

func TestAnalyserSilenceAndSizeMismatch(t *testing.T) {
	a, err := NewAnalyser(DefaultAnalyserParams())
	require.NoError(t, err)

	timeDomain, freqData, err := a.Analyse(make([]float64, a.FFTSize()))
	require.NoError(t, err)
	for _, b := range timeDomain {
		assert.Equal(t, uint8(128), b)
	}
	for _, b := range freqData {
		assert.Equal(t, uint8(0), b)
	}

	_, _, err = a.Analyse(make([]float64, 10))
	assert.Error(t, err)
}

func TestAnalyserSmoothingDecays(t *testing.T) {
	a, err := NewAnalyser(DefaultAnalyserParams())
	require.NoError(t, err)

	_, loud, err := a.Analyse(sine(440, 44100, 0.5, a.FFTSize()))
	require.NoError(t, err)
	_, decayed, err := a.Analyse(make([]float64, a.FFTSize()))
	require.NoError(t, err)

	peak := NewPeakFinder(0, 22050).Find(loud, 44100).Index
	assert.Greater(t, decayed[peak], uint8(0))
	assert.LessOrEqual(t, decayed[peak], loud[peak])

	a.Reset()
	_, cleared, err := a.Analyse(make([]float64, a.FFTSize()))
	require.NoError(t, err)
	assert.Equal(t, uint8(0), cleared[peak])
}
