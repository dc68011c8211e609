// Package completecmd implements the `focus complete` command.
package completecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus complete`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the complete command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "complete <task-id>",
		Short: "Mark a subtask done by ID or prefix and earn its XP",
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

	res, err := svc.Complete(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Already {
		fmt.Fprintf(out, "Already done: %s\n", res.Title)
		return nil
	}
	fmt.Fprintf(out, "Done: %s (+%d XP)\n", res.Title, res.XPAwarded)
	return nil
}
