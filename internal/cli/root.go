// Package cli provides the floodrisk command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-service/internal/config"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Version is set at build time.
var Version = "0.1.0"

// app carries the state shared by every subcommand once the root command's
// pre-run has loaded it.
type app struct {
	manifest string

	cfg       *config.Config
	logger    *slog.Logger
	closeLogs func() error
}

// NewRootCmd builds the floodrisk command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "floodrisk",
		Short: "Flood risk assessment from local environmental observations",
		Long: `floodrisk estimates whether a flood is likely from nine local observations
plus land cover and soil type, using a pre-trained scaler and classifier.

Configuration is read from the environment (and a .env file when present).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "features" || cmd.Name() == "help" {
				return nil
			}
			return a.init()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closeLogs == nil {
				return nil
			}
			return a.closeLogs()
		},
	}

	root.PersistentFlags().StringVarP(&a.manifest, "manifest", "m", "", "model manifest path (overrides MODEL_MANIFEST)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newPredictCmd(a))
	root.AddCommand(newFeaturesCmd())

	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) init() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.manifest != "" {
		cfg.ModelManifest = a.manifest
	}

	logger, closeLogs, err := observability.NewLogger(cfg)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.closeLogs = closeLogs
	return nil
}
