package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weperform/feiken-authenticate/internal/scanner"
	"github.com/weperform/feiken-authenticate/internal/session"
)

// NewScanCommand verifies a single decoded QR payload.
//
// The CLI stands in for the camera: the payload arrives as an argument, and
// the command reports exactly one terminal result per attempt.
func NewScanCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <qr-payload>",
		Short: "Verify a scanned QR payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := opts.newEngine()

			out, err := engine.Scan(cmd.Context(), args[0])
			switch {
			case errors.Is(err, scanner.ErrScanInFlight):
				return errors.New("a scan is already in progress, try again shortly")
			case errors.Is(err, session.ErrUnreachable):
				return errors.New("network error: cannot reach the verification service")
			case err != nil:
				var rej *session.RejectedError
				if errors.As(err, &rej) {
					fmt.Fprintf(cmd.OutOrStdout(), "Verification failed: %s\n", rej.Message)
					return nil
				}
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Result: %s\n", out.Kind.Label())
			if out.ProductID != "" {
				fmt.Fprintf(w, "Product ID: %s\n", out.ProductID)
			}
			if out.BatchNumber != "" {
				fmt.Fprintf(w, "Batch: %s\n", out.BatchNumber)
			}
			if out.ScanCount > 0 {
				fmt.Fprintf(w, "Scan count: %d\n", out.ScanCount)
			}
			return nil
		},
	}
}
