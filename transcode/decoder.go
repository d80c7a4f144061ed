package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ErrNoSamples is returned when ffmpeg produced no audio
var ErrNoSamples = errors.New("no audio samples decoded")

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	FFmpegPath  string        `json:"ffmpeg_path"` // Path to ffmpeg binary
	SampleRate  int           `json:"sample_rate"` // Output sample rate
	MaxDuration time.Duration `json:"max_duration"`
	Timeout     time.Duration `json:"timeout"` // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		FFmpegPath:  "ffmpeg", // Assume in PATH
		SampleRate:  44100,
		MaxDuration: 0, // No limit
		Timeout:     30 * time.Second,
	}
}

// Decoder turns any recording ffmpeg understands into mono float64 PCM
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// SampleRate is the rate of the decoded PCM
func (d *Decoder) SampleRate() int {
	return d.config.SampleRate
}

// DecodeFile decodes filename to mono samples in [-1, 1] at the configured rate
func (d *Decoder) DecodeFile(ctx context.Context, filename string) ([]float64, error) {
	if err := d.ValidateConfig(); err != nil {
		return nil, err
	}

	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := d.buildFFmpegArgs(filename)
	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)

	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := cmd.Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSamples, filename)
	}

	logger.Debug("FFmpeg decode completed successfully", logging.Fields{
		"output_samples":     len(samples),
		"output_sample_rate": d.config.SampleRate,
		"output_duration":    float64(len(samples)) / float64(d.config.SampleRate),
	})

	return samples, nil
}

// buildFFmpegArgs decodes to raw mono float64 little-endian on stdout
func (d *Decoder) buildFFmpegArgs(filename string) []string {
	args := []string{
		"-i", filename,
		"-f", "f64le",
		"-ac", "1",
		"-ar", strconv.Itoa(d.config.SampleRate),
	}

	if d.config.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.2f", d.config.MaxDuration.Seconds()))
	}

	// Suppress ffmpeg output
	args = append(args, "-v", "error", "pipe:1")

	return args
}

// bytesToFloat64 converts raw float64 bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	// Trim to multiple of 8 bytes
	data = data[:len(data)-(len(data)%8)]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		bits := binary.LittleEndian.Uint64(data[i*8 : i*8+8])
		samples[i] = math.Float64frombits(bits)
	}

	return samples
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %d", d.config.SampleRate)
	}
	if d.config.FFmpegPath == "" {
		return fmt.Errorf("ffmpeg path must be set")
	}
	return nil
}

// CheckFFmpegAvailability reports whether the configured ffmpeg binary runs
func (d *Decoder) CheckFFmpegAvailability() error {
	if _, err := exec.LookPath(d.config.FFmpegPath); err != nil {
		return fmt.Errorf("ffmpeg not found at %s: %w", d.config.FFmpegPath, err)
	}
	return nil
}
