package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// ErrInvalidWAV is returned for files the WAV decoder rejects
var ErrInvalidWAV = errors.New("invalid wav file")

// ReadWAV decodes a PCM WAV file, downmixes it to mono and scales samples
// into [-1, 1]
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, fmt.Errorf("%w: %s has no audio format", ErrInvalidWAV, path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 {
		return nil, 0, fmt.Errorf("%w: %s has no bit depth", ErrInvalidWAV, path)
	}

	return downmix(buf, bitDepth), buf.Format.SampleRate, nil
}

func downmix(buf *audio.IntBuffer, bitDepth int) []float64 {
	ch := buf.Format.NumChannels
	scale := math.Pow(2, float64(bitDepth-1))
	if bitDepth == 8 {
		// 8-bit PCM is unsigned
		scale = 128
	}

	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			v := float64(buf.Data[i*ch+c])
			if bitDepth == 8 {
				v -= 128
			}
			sum += v
		}
		out[i] = sum / float64(ch) / scale
	}
	return out
}

// OpenWAV reads path and wraps it in a SampleSource stamped from start
func OpenWAV(path string, cfg config.AnalyserConfig, start time.Time) (*SampleSource, error) {
	samples, sampleRate, err := ReadWAV(path)
	if err != nil {
		return nil, err
	}
	return NewSampleSource(samples, float64(sampleRate), cfg, start)
}

// OpenFile opens a recording of any format. WAV files are decoded natively,
// everything else through ffmpeg as configured by cfg.Decoder.
func OpenFile(ctx context.Context, path string, cfg config.TunerConfig, start time.Time) (*SampleSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return OpenWAV(path, cfg.Analyser, start)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	decoder := transcode.NewDecoder(&transcode.DecoderConfig{
		FFmpegPath:  cfg.Decoder.FFmpegPath,
		SampleRate:  cfg.Decoder.SampleRate,
		MaxDuration: time.Duration(cfg.Decoder.MaxDurationMS) * time.Millisecond,
		Timeout:     time.Duration(cfg.Decoder.TimeoutMS) * time.Millisecond,
	})
	samples, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewSampleSource(samples, float64(decoder.SampleRate()), cfg.Analyser, start)
}
