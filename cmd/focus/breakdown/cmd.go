// Package breakdowncmd implements the `focus breakdown` command.
package breakdowncmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
	"github.com/go-ports/focusflow/internal/service"
)

// Command implements `focus breakdown`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	slot    int
	mood    string
	seed    uint64
	jsonOut bool
}

// New creates the breakdown command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "breakdown <task description>",
		Short: "Break a task into focus-sized subtasks without saving it",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.slot, "slot", 0, "Focus slot length in minutes (default: mood suggestion, then config)")
	f.StringVar(&c.mood, "mood", "", "Current mood: energized, focused, calm, tired, stressed")
	f.Uint64Var(&c.seed, "seed", 0, "Seed for reproducible difficulties on generic tasks")
	f.BoolVar(&c.jsonOut, "json", false, "Print the breakdown as JSON")

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

	in := service.PlanInput{
		Text:        strings.Join(args, " "),
		SlotMinutes: c.slot,
		Mood:        c.mood,
	}
	if cmd.Flags().Changed("seed") {
		in.Seed = &c.seed
	}

	b, err := svc.Breakdown(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if c.jsonOut {
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Category: %s | Slot: %d min\n\n", b.Category, b.SlotMinutes)
	shared.WriteTasks(out, b.Tasks)
	fmt.Fprintf(out, "\nTotal: %d min, %d XP\n", b.TotalMinutes, b.TotalXP)
	return nil
}
