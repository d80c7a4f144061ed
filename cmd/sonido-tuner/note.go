package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/algorithms/tonal"
)

func newNoteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "note <frequency|name>",
		Short: "Maps a frequency or note name",
		Long: `Given a frequency in Hz, prints the nearest note and its deviation.
Given a note name such as A4, Cis5 or Bb3, prints its frequency.
Both forms also print the Pythagorean tuning of the note.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notation, err := tonal.ParseNotation(root.cfg.Notation)
			if err != nil {
				return err
			}
			mapper := tonal.NewNoteMapper(root.cfg.A4, notation)

			freq, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				tone, octave, perr := mapper.ParseNote(args[0])
				if perr != nil {
					return perr
				}
				freq = mapper.Frequency(tone, octave)
			}

			note, err := mapper.Map(freq)
			if err != nil {
				return err
			}
			pyth, err := tonal.NewPythagoreanAnalyzer(root.cfg.A4, notation).Analyze(note)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %.2f Hz (equal temperament %.2f Hz, %+.1f ct, MIDI %d)\n",
				note.Name, freq, note.Reference, note.Cents, note.MIDIKey)
			fmt.Fprintf(out, "pythagorean %.2f Hz (%+.1f ct)\n", pyth.Frequency, pyth.Cents)
			for _, alt := range pyth.Alternatives {
				fmt.Fprintf(out, "  %-3s %.2f Hz (%+.1f ct)\n", alt.Name, alt.Frequency, alt.Cents)
			}
			return nil
		},
	}
}
