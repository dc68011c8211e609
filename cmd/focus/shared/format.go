package shared

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-ports/focusflow/internal/models"
)

// ShortID returns the first 8 characters of an ID for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// WriteTasks prints generated subtasks as an aligned table.
func WriteTasks(w io.Writer, tasks []models.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, t := range tasks {
		fmt.Fprintf(tw, "  %d.\t%s\t%d min\t%s\t%d XP\n", i+1, t.Title, t.EstimatedMinutes, t.Difficulty, t.XP())
	}
	_ = tw.Flush()
}

// WritePlanTasks prints persisted subtasks with their short IDs and status.
func WritePlanTasks(w io.Writer, tasks []models.PlanTask) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, t := range tasks {
		box := "[ ]"
		if t.Done() {
			box = "[x]"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d min\t%s\t%d XP\n", box, ShortID(t.ID), t.Title, t.EstimatedMinutes, t.Difficulty, t.XP)
	}
	_ = tw.Flush()
}
