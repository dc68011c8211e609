// Package showcmd implements the `focus show` command.
package showcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus show`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the show command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a saved plan and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.GetPlan(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", p.RawText)
	fmt.Fprintf(out, "ID: %s\n", p.ID)
	fmt.Fprintf(out, "Category: %s | Slot: %d min | Created: %s\n",
		p.Category, p.SlotMinutes, p.CreatedAt.Format(time.RFC3339))
	if p.Mood != "" {
		fmt.Fprintf(out, "Mood: %s\n", p.Mood)
	}
	fmt.Fprintln(out)
	shared.WritePlanTasks(out, p.Tasks)
	fmt.Fprintf(out, "\nTotal: %d min, %d XP\n", p.TotalMinutes, p.TotalXP)
	return nil
}
