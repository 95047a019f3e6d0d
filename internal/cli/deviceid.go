package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weperform/feiken-authenticate/internal/identity"
)

// NewDeviceIDCommand prints the installation's device id, resolving and
// persisting it on first use.
func NewDeviceIDCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deviceid",
		Short: "Show this installation's device id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := opts.newProvider().Get(cmd.Context())
			if err != nil {
				var se *identity.StorageError
				if errors.As(err, &se) {
					fmt.Fprintf(cmd.ErrOrStderr(),
						"warning: device id could not be persisted (%v); it is valid for this run only\n", se)
				} else {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
