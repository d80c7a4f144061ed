package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
	"github.com/RyanBlaney/sonido-tuner/tuner/export"
	"github.com/RyanBlaney/sonido-tuner/tuner/source"
)

type analyzeOptions struct {
	jsonOutput bool
	midiPath   string
	bpm        float64
	maxGap     time.Duration
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <recording>",
		Short: "Analyses a recording",
		Long: `Replays a recording through the tuner and prints every stable reading:
note, deviation in cents, Pythagorean deviation, dynamic and tone purity.
WAV files are read directly; other formats are decoded with ffmpeg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print readings as JSON lines")
	cmd.Flags().StringVar(&opts.midiPath, "midi", "", "write the detected notes to a MIDI file")
	cmd.Flags().Float64Var(&opts.bpm, "bpm", 120, "tempo of the written MIDI file")
	cmd.Flags().DurationVar(&opts.maxGap, "max-gap", 300*time.Millisecond, "longest pause inside one MIDI note")

	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, path string) error {
	logger := logging.WithFields(logging.Fields{
		"command": "analyze",
		"file":    path,
	})

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	start := time.Now()
	src, err := source.OpenFile(cmd.Context(), path, root.cfg, start)
	if err != nil {
		return err
	}

	engine, err := tuner.NewEngine(root.cfg)
	if err != nil {
		return err
	}
	logger.Info("Analysing recording", logging.Fields{
		"session_id":  engine.SessionID(),
		"size":        humanize.Bytes(uint64(info.Size())),
		"duration":    src.Duration().String(),
		"sample_rate": src.SampleRate(),
	})

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)

	var readings []*tuner.Measurement
	err = engine.Consume(cmd.Context(), src, func(m *tuner.Measurement) error {
		readings = append(readings, m)
		if opts.jsonOutput {
			return enc.Encode(m)
		}
		return printReading(out, m, m.Timestamp.Sub(start))
	})
	if err != nil {
		return err
	}

	stats := engine.Stats()
	if !opts.jsonOutput {
		fmt.Fprintf(out, "%s frames, %s voiced, %s silent, %s readings\n",
			humanize.Comma(int64(stats.Frames)),
			humanize.Comma(int64(stats.Voiced)),
			humanize.Comma(int64(stats.Silent)),
			humanize.Comma(int64(stats.Emitted)))
	}

	if opts.midiPath != "" {
		if err := writeMIDI(opts, readings); err != nil {
			return err
		}
		logger.Info("MIDI file written", logging.Fields{"path": opts.midiPath})
	}

	return nil
}

func printReading(w io.Writer, m *tuner.Measurement, at time.Duration) error {
	pyth := fmt.Sprintf("%+6.1f", m.PythagoreanCents)
	if len(m.PythagoreanAlternatives) == 2 {
		a, b := m.PythagoreanAlternatives[0], m.PythagoreanAlternatives[1]
		pyth = fmt.Sprintf("%s %+6.1f / %s %+6.1f", a.Name, a.Cents, b.Name, b.Cents)
	}

	_, err := fmt.Fprintf(w, "%8.3fs  %-5s %7.1f Hz  %+5.1f ct  pyth %s ct  %-2s  purity %5.1f%%\n",
		at.Seconds(), m.Note, m.DominantFrequency, m.Cents, pyth, m.Dynamic, m.Purity)
	return err
}

func writeMIDI(opts *analyzeOptions, readings []*tuner.Measurement) error {
	f, err := os.Create(opts.midiPath)
	if err != nil {
		return err
	}
	defer f.Close()

	events := export.Segment(readings, opts.maxGap)
	if err := export.WriteMIDI(f, events, opts.bpm); err != nil {
		return err
	}
	return f.Close()
}
