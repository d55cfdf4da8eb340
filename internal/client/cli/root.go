package cli

import (
	"github.com/dmitrijs2005/gridplanner/internal/client/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the gridcli command tree over cfg. Flags parsed by
// cobra are written into cfg before any command runs.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	return newRootCmd(newApp(cfg, Connect))
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gridcli",
		Short:        "Plan posts on a shared grid",
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.finish()
		},
	}
	config.BindFlags(cmd.PersistentFlags(), app.config)

	cmd.AddCommand(
		newVersionCmd(app),
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newPingCmd(app),
		newContainersCmd(app),
		newGridCmd(app),
		newShareCmd(app),
		newCommentsCmd(app),
	)
	return cmd
}

// run opens the services before fn. PersistentPostRun does not fire when
// RunE fails, so failures are cleaned up here.
func (a *App) run(session bool, fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.out = cmd.OutOrStdout()
		a.errOut = cmd.ErrOrStderr()
		ctx := cmd.Context()
		err := a.open(ctx)
		if err == nil && session {
			err = a.requireSession(ctx)
		}
		if err == nil {
			err = fn(cmd, args)
		}
		if err != nil {
			a.finish()
		}
		return err
	}
}
