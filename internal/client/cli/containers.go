package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newContainersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "containers",
		Aliases: []string{"c"},
		Short:   "Manage containers",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty container",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			c, err := app.svc.Grids.CreateContainer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "created %s (%s)\n", c.Name, c.ID)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List owned and shared containers",
		Args:  cobra.NoArgs,
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			cs, err := app.svc.Grids.ListContainers(cmd.Context())
			if err != nil {
				return err
			}
			renderContainers(app.out, cs)
			return nil
		}),
	}

	cmd.AddCommand(create, list)
	return cmd
}
