package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/backmassage/lapsemaster/internal/config"
	"github.com/backmassage/lapsemaster/internal/logging"
)

// appContext carries flag values and the initialized config/logger shared by
// all subcommands. Initialization happens in the root PersistentPreRunE so
// every command sees the same precedence: defaults < config file < env <
// flags.
type appContext struct {
	configFlag  string
	verboseFlag bool
	colorFlag   string

	cfg config.Config
	log zerolog.Logger
}

func (a *appContext) setup() error {
	cfg := config.Default()

	if a.configFlag != "" {
		if err := config.Load(a.configFlag, &cfg); err != nil {
			return err
		}
	}
	config.ApplyEnv(&cfg)

	cfg.Verbose = a.verboseFlag
	if a.colorFlag != "" {
		cfg.ColorMode = config.ColorMode(a.colorFlag)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logging.New(&cfg, os.Stderr)
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &appContext{}

	rootCmd := &cobra.Command{
		Use:           "lapsemaster",
		Short:         "Turn numbered JPEG frame sequences into time-lapse videos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path (TOML)")
	pf.BoolVarP(&ctx.verboseFlag, "verbose", "v", false, "Verbose output, including encoder stderr")
	pf.StringVar(&ctx.colorFlag, "color", "", "Console colors: auto | always | never")

	rootCmd.AddCommand(newEncodeCommand(ctx))
	rootCmd.AddCommand(newBatchCommand(ctx))
	rootCmd.AddCommand(newAutoCommand(ctx))
	rootCmd.AddCommand(newCheckCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// rotationFromFlag parses a --rotation value, logging a warning and falling
// back to none for unrecognized words. Unknown rotation is never fatal.
func rotationFromFlag(ctx *appContext, value string) config.Rotation {
	rot, ok := config.ParseRotation(value)
	if !ok {
		ctx.log.Warn().Msgf("unknown rotation %q, using none", value)
	}
	return rot
}
