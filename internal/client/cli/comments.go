package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gridplanner/internal/client/comments"
	"github.com/dmitrijs2005/gridplanner/internal/client/models"
	"github.com/spf13/cobra"
)

// commentText joins args, or reads several lines from stdin when none are
// given.
func (a *App) commentText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	return GetMultiline(a.reader, "Comment", a.out)
}

func newCommentsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comments",
		Aliases: []string{"cm"},
		Short:   "Discuss a cell",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list <container> <item>",
			Short: "Print the thread",
			Args:  cobra.ExactArgs(2),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				cs, err := app.svc.Comments.List(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				renderComments(app.out, cs)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add <container> <item> [text...]",
			Short: "Post a comment",
			Args:  cobra.MinimumNArgs(2),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				text, err := app.commentText(args[2:])
				if err != nil {
					return err
				}
				c, err := app.svc.Comments.Add(cmd.Context(), args[0], args[1], text)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.out, "added %s\n", c.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "edit <comment> [text...]",
			Short: "Change your comment",
			Args:  cobra.MinimumNArgs(1),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				text, err := app.commentText(args[1:])
				if err != nil {
					return err
				}
				c, err := app.svc.Comments.Edit(cmd.Context(), args[0], text)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.out, "updated %s\n", c.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <comment>",
			Short: "Delete your comment",
			Args:  cobra.ExactArgs(1),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				if err := app.svc.Comments.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(app.out, "deleted %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "watch <container> <item>",
			Short: "Follow the thread live until interrupted",
			Args:  cobra.ExactArgs(2),
			RunE: app.run(true, func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(app.errOut, "watching, press Ctrl+C to stop")
				err := app.svc.Comments.Watch(cmd.Context(), args[0], args[1], func(_ []models.Comment, ev comments.Event) {
					switch ev.Type {
					case comments.EventDelete:
						fmt.Fprintf(app.out, "- %s deleted\n", ev.Comment.ID)
					default:
						fmt.Fprintf(app.out, "%s ", ev.Type)
						renderComment(app.out, ev.Comment)
					}
				})
				if errors.Is(err, cmd.Context().Err()) {
					return nil
				}
				return err
			}),
		},
	)
	return cmd
}
