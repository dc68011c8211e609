// Package prunecmd implements the `focus prune` command.
package prunecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus prune`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	olderThan int
	category  string
}

// New creates the prune command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "prune",
		Short: "Delete plans older than a number of days",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.olderThan, "older-than", 30, "Delete plans created more than this many days ago")
	f.StringVar(&c.category, "category", "", "Only prune plans in this category")

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

	n, err := svc.Prune(c.olderThan, c.category)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d plan(s) older than %d days\n", n, c.olderThan)
	return nil
}
