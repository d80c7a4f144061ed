package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner/source"
)

type toneOptions struct {
	duration   time.Duration
	sampleRate int
	amplitude  float64
	harmonics  int
}

func newToneCmd(root *rootOptions) *cobra.Command {
	opts := &toneOptions{}

	cmd := &cobra.Command{
		Use:   "tone <frequency> <out.wav>",
		Short: "Writes a test tone",
		Long: `Writes a 16-bit mono WAV test tone. With --harmonics above 1 the tone
carries partials decaying like the purity template.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := strconv.ParseFloat(args[0], 64)
			if err != nil || !(freq > 0) {
				return fmt.Errorf("invalid frequency %q", args[0])
			}
			if opts.sampleRate <= 0 {
				return fmt.Errorf("sample rate must be positive, got %d", opts.sampleRate)
			}
			if opts.harmonics < 1 {
				return fmt.Errorf("harmonics must be at least 1, got %d", opts.harmonics)
			}

			partials := source.HarmonicPartials(opts.harmonics, root.cfg.Purity.DecayExponent, opts.amplitude)
			samples := source.GenerateTone(freq, opts.sampleRate, opts.duration, partials)
			if err := source.WriteWAV(args[1], samples, opts.sampleRate); err != nil {
				return err
			}

			logging.Info("Tone written", logging.Fields{
				"path":      args[1],
				"frequency": freq,
				"samples":   len(samples),
			})
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.duration, "duration", 2*time.Second, "length of the tone")
	cmd.Flags().IntVar(&opts.sampleRate, "sample-rate", 44100, "sample rate in Hz")
	cmd.Flags().Float64Var(&opts.amplitude, "amplitude", 0.5, "peak amplitude (0-1)")
	cmd.Flags().IntVar(&opts.harmonics, "harmonics", 1, "number of partials")

	return cmd
}
