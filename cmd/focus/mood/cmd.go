// Package moodcmd implements the `focus mood` command group.
package moodcmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
	"github.com/go-ports/focusflow/internal/breakdown"
)

// Command implements `focus mood`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the mood command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "mood",
		Short: "Log or list mood check-ins",
		RunE:  func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}
	c.cmd.AddCommand(
		newLog(ctx),
		newList(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// mood log
// ---------------------------------------------------------------------------

func newLog(ctx *shared.Context) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "log <mood>",
		Short: "Record how you feel: energized, focused, calm, tired or stressed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.OpenService()
			if err != nil {
				return err
			}
			defer svc.Close()

			m, err := svc.LogMood(args[0], note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged mood: %s (suggested slot: %d min)\n",
				m.Mood, breakdown.SuggestSlot(m.Mood))
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "Optional note")
	return cmd
}

// ---------------------------------------------------------------------------
// mood list
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent mood check-ins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.OpenService()
			if err != nil {
				return err
			}
			defer svc.Close()

			moods, err := svc.Moods(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(moods) == 0 {
				fmt.Fprintln(out, "No moods logged yet.")
				return nil
			}
			for _, m := range moods {
				line := m.CreatedAt.Local().Format(time.DateTime) + "  " + m.Mood
				if m.Note != "" {
					line += "  " + strings.TrimSpace(m.Note)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of entries")
	return cmd
}
