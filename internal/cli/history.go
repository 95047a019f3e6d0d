package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weperform/feiken-authenticate/internal/history"
)

// NewHistoryCommand lists this device's scan history, newest first.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	var recent bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show this device's scan history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := opts.newEngine()

			entries, err := engine.LoadHistory(cmd.Context())
			if err != nil {
				// A failed fetch is not "no history"; say so explicitly.
				return fmt.Errorf("could not load scan history: %w", err)
			}
			if recent {
				entries = engine.History().Recent(history.RecentLimit)
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(w, "No scan history found for this device.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s  product=%s batch=%s qr=%s scans=%d\n",
					e.ScannedAt.Local().Format("2006-01-02 15:04"),
					e.ProductID, e.BatchNumber, e.QRCodeID, e.ScanCount)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&recent, "recent", false,
		fmt.Sprintf("show only the %d most recent scans", history.RecentLimit))
	return cmd
}
