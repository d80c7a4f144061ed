package source

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// GenerateSine renders a sine of the given peak amplitude
func GenerateSine(freq float64, sampleRate int, duration time.Duration, amplitude float64) []float64 {
	return GenerateTone(freq, sampleRate, duration, []float64{amplitude})
}

// GenerateTone renders a harmonic tone on freq where partials[n] is the
// amplitude of harmonic n+1. Partials at or above Nyquist are skipped.
func GenerateTone(freq float64, sampleRate int, duration time.Duration, partials []float64) []float64 {
	n := int(duration.Seconds() * float64(sampleRate))
	if n <= 0 {
		return []float64{}
	}

	out := make([]float64, n)
	nyquist := float64(sampleRate) / 2
	for h, amp := range partials {
		f := float64(h+1) * freq
		if amp == 0 || f >= nyquist {
			continue
		}
		w := 2 * math.Pi * f / float64(sampleRate)
		for i := range out {
			out[i] += amp * math.Sin(w*float64(i))
		}
	}
	return out
}

// HarmonicPartials returns count partial amplitudes decaying as 1/n^exponent,
// scaled so they sum to peak
func HarmonicPartials(count int, exponent, peak float64) []float64 {
	partials := make([]float64, count)
	sum := 0.0
	for n := range partials {
		partials[n] = 1 / math.Pow(float64(n+1), exponent)
		sum += partials[n]
	}
	for n := range partials {
		partials[n] *= peak / sum
	}
	return partials
}

// WriteWAV writes samples in [-1, 1] as a 16-bit mono PCM file
func WriteWAV(path string, samples []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, s)) * math.MaxInt16))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 1,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return nil
}
