package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Grant other users read access",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "grant <container> <username>",
			Short: "Give a user read access",
			Args:  cobra.ExactArgs(2),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				s, err := app.svc.Shares.Grant(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(app.out, "%s can now %s %s\n", s.GranteeName, s.Permission, args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "revoke <container> <username>",
			Short: "Take read access away",
			Args:  cobra.ExactArgs(2),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				if err := app.svc.Shares.Revoke(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(app.out, "revoked %s\n", args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list <container>",
			Short: "Show who the container is shared with",
			Args:  cobra.ExactArgs(1),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				shares, err := app.svc.Shares.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				renderShares(app.out, shares)
				return nil
			}),
		},
	)
	return cmd
}
