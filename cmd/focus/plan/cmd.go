// Package plancmd implements the `focus plan` command.
package plancmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/go-ports/focusflow/cmd/focus/shared"
	"github.com/go-ports/focusflow/internal/service"
)

// Command implements `focus plan`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command

	slot int
	mood string
}

// New creates the plan command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "plan <task description>",
		Short: "Break a task down and save it as a plan",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	f := c.cmd.Flags()
	f.IntVar(&c.slot, "slot", 0, "Focus slot length in minutes (default: mood suggestion, then config)")
	f.StringVar(&c.mood, "mood", "", "Current mood: energized, focused, calm, tired, stressed")

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

	p, err := svc.Plan(cmd.Context(), service.PlanInput{
		Text:        strings.Join(args, " "),
		SlotMinutes: c.slot,
		Mood:        c.mood,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved plan %s (%s, %d min slot)\n\n", p.ID, p.Category, p.SlotMinutes)
	shared.WritePlanTasks(out, p.Tasks)
	fmt.Fprintf(out, "\nTotal: %d min, %d XP\n", p.TotalMinutes, p.TotalXP)
	fmt.Fprintf(out, "File: %s\n", p.FilePath)
	fmt.Fprintln(out, "Mark a step done with `focus complete <task-id>`.")
	return nil
}
