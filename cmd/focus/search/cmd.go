// Package searchcmd implements the `focus search` command.
package searchcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
)

// Command implements `focus search`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	limit    int
	category string
}

// New creates the search command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved plans using FTS5 keyword and semantic search",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.limit, "limit", 5, "Maximum number of results")
	f.StringVar(&c.category, "category", "", "Filter by category")

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

	ctx := cmd.Context()
	results, err := svc.Search(ctx, strings.Join(args, " "), c.limit, c.category, svc.UseSemantic(ctx))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "\n Results (%d found) \n", len(results))
	for i, r := range results {
		createdAt := r.CreatedAt
		if len(createdAt) > 10 {
			createdAt = createdAt[:10]
		}
		fmt.Fprintf(out, "\n [%d] %s (score: %.2f)\n", i+1, r.RawText, r.Score)
		fmt.Fprintf(out, "     %s | %s | %s\n", shared.ShortID(r.ID), r.Category, createdAt)
		fmt.Fprintf(out, "     %d min | %d XP\n", r.TotalMinutes, r.TotalXP)
	}
	return nil
}
