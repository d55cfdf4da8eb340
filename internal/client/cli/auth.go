package cli

import (
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

// credentials takes the username from args or a prompt, and always prompts
// for the password.
func (a *App) credentials(args []string) (string, string, error) {
	var username string
	if len(args) > 0 {
		username = args[0]
	} else {
		u, err := GetSimpleText(a.reader, "Username", a.out)
		if err != nil {
			return "", "", err
		}
		username = u
	}
	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.run(false, func(cmd *cobra.Command, args []string) error {
			username, password, err := app.credentials(args)
			if err != nil {
				return err
			}
			if err := app.svc.Auth.Register(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "registered %s, now run \"gridcli login %s\"\n", username, username)
			return nil
		}),
	}
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.run(false, func(cmd *cobra.Command, args []string) error {
			username, password, err := app.credentials(args)
			if err != nil {
				return err
			}
			if err := app.svc.Auth.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "logged in as %s\n", username)
			return nil
		}),
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and every local copy",
		Args:  cobra.NoArgs,
		RunE: app.run(false, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "logged out")
			return nil
		}),
	}
}

func newPingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: app.run(false, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Auth.Ping(cmd.Context()); err != nil {
				fmt.Fprintf(app.out, "offline: %v\n", err)
				return err
			}
			fmt.Fprintln(app.out, "online")
			return nil
		}),
	}
}
