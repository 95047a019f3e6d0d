// Package cli implements the feiken command line client.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weperform/feiken-authenticate/internal/api"
	"github.com/weperform/feiken-authenticate/internal/config"
	"github.com/weperform/feiken-authenticate/internal/identity"
	"github.com/weperform/feiken-authenticate/internal/scanner"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	cfg config.Config
}

// NewRootCommand creates the feiken root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "feiken",
		Short: "Verify Feiken product authenticity by QR code",
		Long: "Scan QR codes on Feiken products to verify authenticity and " +
			"review this device's scan history.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

			path := opts.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.feiken/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDeviceIDCommand(opts))

	return cmd
}

// newEngine wires the scan engine from the loaded configuration.
func (o *RootOptions) newEngine() *scanner.Engine {
	return scanner.New(
		api.NewClient(o.cfg.APIURL, o.cfg.Timeout.Std()),
		o.newProvider(),
		scanner.WithCooldown(o.cfg.Cooldown.Std()),
	)
}

func (o *RootOptions) newProvider() *identity.Provider {
	var store identity.Store
	if o.cfg.SealStorage {
		store = identity.NewSealedStore(o.cfg.DataDir)
	} else {
		store = identity.NewFileStore(o.cfg.DataDir)
	}
	return identity.NewProvider(store)
}
