// Package xpcmd implements the `focus xp` command.
package xpcmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
	"github.com/go-ports/focusflow/internal/models"
)

// Command implements `focus xp`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the xp command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "xp <minutes> <difficulty>",
		Short: "Compute the XP a subtask is worth (difficulty: easy, medium, hard or 1-3)",
		Args:  cobra.ExactArgs(2),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (*Command) run(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes < 0 {
		return fmt.Errorf("minutes must be a non-negative integer, got %q", args[0])
	}
	d, err := models.ParseDifficulty(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d XP\n", models.XP(minutes, d))
	return nil
}
