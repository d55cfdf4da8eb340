package cli

import (
	"fmt"

	"github.com/dmitrijs2005/gridplanner/internal/grid"
	"github.com/spf13/cobra"
)

func newGridCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "grid",
		Aliases: []string{"g"},
		Short:   "View and rearrange a container's grid",
	}
	cmd.AddCommand(
		newGridShowCmd(app),
		newGridInsertCmd(app),
		newGridRemoveCmd(app),
		newGridSwapCmd(app),
		newGridReorderCmd(app),
		newGridEditCmd(app),
		newGridRepairCmd(app),
		newGridAttachCmd(app),
		newGridDetachCmd(app),
		newGridImageURLCmd(app),
		newGridBackupCmd(app),
		newGridRestoreCmd(app),
	)
	return cmd
}

func newGridShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <container>",
		Short: "Render the grid",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			view, err := app.svc.Grids.Show(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderGrid(app.out, view)
			return nil
		}),
	}
}

type payloadFlags struct {
	caption string
	notes   string
	at      string
	clearAt bool
}

func (f *payloadFlags) bind(cmd *cobra.Command, withClear bool) {
	cmd.Flags().StringVar(&f.caption, "caption", "", "caption text")
	cmd.Flags().StringVar(&f.notes, "notes", "", "private notes")
	cmd.Flags().StringVar(&f.at, "at", "", "scheduled publication time")
	if withClear {
		cmd.Flags().BoolVar(&f.clearAt, "clear-at", false, "remove the scheduled time")
		cmd.MarkFlagsMutuallyExclusive("at", "clear-at")
	}
}

func (f *payloadFlags) changed(cmd *cobra.Command) bool {
	for _, name := range []string{"caption", "notes", "at", "clear-at"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// apply copies the flags the user set onto p.
func (f *payloadFlags) apply(cmd *cobra.Command, p *grid.Payload) error {
	if cmd.Flags().Changed("caption") {
		p.Caption = f.caption
	}
	if cmd.Flags().Changed("notes") {
		p.Notes = f.notes
	}
	if cmd.Flags().Changed("at") {
		t, err := parseWhen(f.at)
		if err != nil {
			return err
		}
		p.ScheduledAt = &t
	}
	if f.clearAt {
		p.ScheduledAt = nil
	}
	return nil
}

func newGridInsertCmd(app *App) *cobra.Command {
	var (
		pf     payloadFlags
		bottom bool
	)
	cmd := &cobra.Command{
		Use:   "insert <container>",
		Short: "Add a cell at the top (or bottom) of the grid",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			var p grid.Payload
			if err := pf.apply(cmd, &p); err != nil {
				return err
			}
			edge := grid.EdgeTop
			if bottom {
				edge = grid.EdgeBottom
			}
			it, err := app.svc.Grids.Insert(cmd.Context(), args[0], edge, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "inserted %s at the %s\n", it.ID, edge)
			return nil
		}),
	}
	pf.bind(cmd, false)
	cmd.Flags().BoolVar(&bottom, "bottom", false, "insert after the last cell")
	return cmd
}

func newGridRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <container> <item>",
		Aliases: []string{"rm"},
		Short:   "Delete a cell",
		Args:    cobra.ExactArgs(2),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Grids.Remove(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "removed %s\n", args[1])
			return nil
		}),
	}
}

func newGridSwapCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "swap <container> <item-a> <item-b>",
		Short: "Exchange the positions of two cells",
		Args:  cobra.ExactArgs(3),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Grids.Swap(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "swapped %s and %s\n", args[1], args[2])
			return nil
		}),
	}
}

func newGridReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <container> <item>...",
		Short: "Move the listed cells to the front in the given order",
		Args:  cobra.MinimumNArgs(2),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Grids.Reorder(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "reordered")
			return nil
		}),
	}
}

func newGridEditCmd(app *App) *cobra.Command {
	var pf payloadFlags
	cmd := &cobra.Command{
		Use:   "edit <container> <item>",
		Short: "Change a cell's caption, notes or schedule",
		Args:  cobra.ExactArgs(2),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if !pf.changed(cmd) {
				return fmt.Errorf("nothing to change, pass --caption, --notes, --at or --clear-at")
			}
			// Parse before touching the cache so a bad --at changes nothing.
			var scratch grid.Payload
			if err := pf.apply(cmd, &scratch); err != nil {
				return err
			}
			err := app.svc.Grids.Edit(cmd.Context(), args[0], args[1], func(p *grid.Payload) error {
				return pf.apply(cmd, p)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "updated %s\n", args[1])
			return nil
		}),
	}
	pf.bind(cmd, true)
	return cmd
}

func newGridRepairCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <container> [item...]",
		Short: "Renumber positions after an interrupted rearrangement",
		Long: "Renumber the container to consecutive positions. Listed items come " +
			"first; the rest keep their current relative order.",
		Args: cobra.MinimumNArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Grids.Repair(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}
			fmt.Fprintln(app.out, "repaired")
			return nil
		}),
	}
}

func newGridAttachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <container> <item> <image-path>",
		Short: "Upload an image and attach it to a cell",
		Args:  cobra.ExactArgs(3),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			key, err := app.svc.Media.Attach(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "attached %s\n", key)
			return nil
		}),
	}
}

func newGridDetachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detach <container> <item> <image-key>",
		Short: "Remove an image from a cell and from storage",
		Args:  cobra.ExactArgs(3),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			if err := app.svc.Media.Detach(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "detached %s\n", args[2])
			return nil
		}),
	}
}

func newGridImageURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "image-url <image-key>",
		Short: "Print a temporary download link for an image",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			u, err := app.svc.Media.URL(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(app.out, u)
			return nil
		}),
	}
}

func newGridBackupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <container>",
		Short: "Copy the container to the backup store",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			n, err := app.svc.Grids.Backup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "backed up %d items\n", n)
			return nil
		}),
	}
}

func newGridRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <container>",
		Short: "Replace the container with its last backup",
		Args:  cobra.ExactArgs(1),
		RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
			n, err := app.svc.Grids.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "restored %d items\n", n)
			return nil
		}),
	}
}
