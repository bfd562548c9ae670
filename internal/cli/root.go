package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/scrobblecord/internal/config"
	errs "github.com/tessro/scrobblecord/internal/errors"
	"github.com/tessro/scrobblecord/internal/logging"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg       *config.Config
	logger    = logging.Discard()
	logCloser io.Closer
)

// allowMissingConfig marks commands that work without the --config file.
const allowMissingConfig = "allow-missing-config"

var rootCmd = &cobra.Command{
	Use:   "scrobblecord",
	Short: "Show what you're scrobbling on Last.fm as your Discord status",
	Long: `scrobblecord polls Last.fm for the track you are listening to and mirrors
it into Discord rich presence through the local Discord client.

Running scrobblecord without a subcommand starts the bridge.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.scrobblecordrc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addRunFlags(rootCmd)
}

func initConfig(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if errors.Is(err, errs.ErrConfigNotFound) && cmd.Annotations[allowMissingConfig] == "true" {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	l, closer, err := logging.New(cfg.Log, verbose)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logger, logCloser = l, closer
	slog.SetDefault(logger)

	return nil
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errs.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
