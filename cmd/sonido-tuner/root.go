package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// rootOptions are the persistent flags shared by every command
type rootOptions struct {
	logLevel   string
	configPath string
	noColor    bool
	a4         float64
	notation   string

	cfg config.TunerConfig
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sonido-tuner",
		Short: "Pitch, tuning and tone purity analysis",
		Long: `sonido-tuner estimates the pitch of an instrument, reports it in equal
temperament and Pythagorean tuning and scores how pure its tone is.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.configPath, "config", "", "path to a JSON tuner config")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored log output")
	flags.Float64Var(&opts.a4, "a4", 440, "reference pitch of A4 in Hz")
	flags.StringVar(&opts.notation, "notation", "english", "note names: english or german")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newNoteCmd(opts),
		newToneCmd(opts),
	)

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}

	var logger *logging.DefaultLogger
	if o.noColor {
		logger = logging.NewDefaultLoggerNoColor()
	} else {
		logger = logging.NewDefaultLogger()
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	cfg := config.DefaultTunerConfig()
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
		if err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("a4") {
		cfg.A4 = o.a4
	}
	if flags.Changed("notation") {
		cfg.Notation = o.notation
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	o.cfg = cfg
	logging.Debug("Configuration loaded", logging.Fields{
		"config":   o.configPath,
		"a4":       cfg.A4,
		"notation": cfg.Notation,
	})
	return nil
}
