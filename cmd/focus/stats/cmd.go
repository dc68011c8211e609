// Package statscmd implements the `focus stats` command.
package statscmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus stats`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the stats command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "stats",
		Short: "Show XP, level and streak",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	svc, err := c.ctx.OpenService()
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Stats()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Level %d | %d XP\n", st.Level, st.TotalXP)
	fmt.Fprintf(out, "Plans: %d\n", st.Plans)
	fmt.Fprintf(out, "Tasks: %d/%d completed\n", st.TasksCompleted, st.TasksTotal)
	fmt.Fprintf(out, "Streak: %d day(s)\n", st.StreakDays)
	return nil
}
