package breakdown_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/focusflow/internal/breakdown"
	"github.com/go-ports/focusflow/internal/models"
)

// titlesAndMinutes flattens tasks for compact comparisons.
func titlesAndMinutes(tasks []models.Task) ([]string, []int, []models.Difficulty) {
	titles := make([]string, len(tasks))
	minutes := make([]int, len(tasks))
	diffs := make([]models.Difficulty, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
		minutes[i] = t.EstimatedMinutes
		diffs[i] = t.Difficulty
	}
	return titles, minutes, diffs
}

// ---------------------------------------------------------------------------
// Category templates
// ---------------------------------------------------------------------------

func TestDecompose_ProjectProposal(t *testing.T) {
	c := qt.New(t)

	b, err := breakdown.Decompose(models.TaskInput{RawText: "Write a project proposal", PreferredSlotMinutes: 25})
	c.Assert(err, qt.IsNil)
	c.Assert(b.Category, qt.Equals, models.CategoryProject)
	c.Assert(b.SlotMinutes, qt.Equals, 25)

	titles, minutes, diffs := titlesAndMinutes(b.Tasks)
	c.Assert(titles, qt.DeepEquals, []string{
		"Research and gather requirements",
		"Create outline and structure",
		"Write first draft",
		"Add supporting details and data",
		"Review and edit",
		"Final formatting and submission",
	})
	c.Assert(minutes, qt.DeepEquals, []int{20, 15, 45, 25, 20, 10})
	c.Assert(diffs, qt.DeepEquals, []models.Difficulty{
		models.Easy, models.Easy, models.Hard, models.Medium, models.Medium, models.Easy,
	})
	c.Assert(b.TotalMinutes, qt.Equals, 135)
	c.Assert(b.TotalXP, qt.Equals, 4+3+27+10+8+2)
}

func TestDecompose_TeamMeeting(t *testing.T) {
	c := qt.New(t)

	b, err := breakdown.Decompose(models.TaskInput{RawText: "Prepare for team meeting", PreferredSlotMinutes: 30})
	c.Assert(err, qt.IsNil)
	c.Assert(b.Category, qt.Equals, models.CategoryMeeting)

	titles, minutes, diffs := titlesAndMinutes(b.Tasks)
	c.Assert(titles, qt.DeepEquals, []string{
		"Review agenda and objectives",
		"Gather relevant materials",
		"Prepare talking points",
		"Anticipate questions and follow-ups",
		"Final logistics check",
	})
	c.Assert(minutes, qt.DeepEquals, []int{10, 15, 20, 15, 5})
	c.Assert(diffs, qt.DeepEquals, []models.Difficulty{
		models.Easy, models.Easy, models.Medium, models.Medium, models.Easy,
	})
}

func TestDecompose_SlotCapsTemplateSteps(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		text    string
		slot    int
		minutes []int
	}{
		{"project slot 10", "quarterly report", 10, []int{10, 10, 20, 10, 10, 10}},
		{"project slot 60 hits scale cap", "project kickoff", 60, []int{20, 15, 45, 25, 20, 10}},
		{"study slot 15", "study for the exam", 15, []int{10, 15, 15, 30, 15}},
		{"study scale cap is 40", "learn spanish", 50, []int{10, 25, 20, 40, 15}},
		{"presentation slot 20", "sales pitch", 20, []int{15, 20, 40, 20, 10}},
		{"code slot 25", "develop login page", 25, []int{15, 20, 15, 45, 25, 15}},
		{"meeting slot 5", "phone interview", 5, []int{5, 5, 5, 5, 5}},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			b, err := breakdown.Decompose(models.TaskInput{RawText: tc.text, PreferredSlotMinutes: tc.slot})
			c.Assert(err, qt.IsNil)
			_, minutes, _ := titlesAndMinutes(b.Tasks)
			c.Assert(minutes, qt.DeepEquals, tc.minutes)
		})
	}
}

func TestDecompose_CategoryPriority(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		text string
		want models.Category
	}{
		{"Code review meeting for the project", models.CategoryProject},
		{"Demo the study app", models.CategoryStudy},
		{"Pitch deck for the new program", models.CategoryPresentation},
		{"Program the interview scheduler", models.CategoryCode},
		{"CALL the landlord", models.CategoryMeeting},
		{"Clean my desk", models.CategoryGeneral},
	}

	for _, tc := range cases {
		c.Run(tc.text, func(c *qt.C) {
			c.Assert(breakdown.Detect(tc.text), qt.Equals, tc.want)
			b, err := breakdown.Decompose(models.TaskInput{RawText: tc.text})
			c.Assert(err, qt.IsNil)
			c.Assert(b.Category, qt.Equals, tc.want)
		})
	}
}

func TestDecompose_TemplateIsDeterministic(t *testing.T) {
	c := qt.New(t)

	in := models.TaskInput{RawText: "Develop the billing program", PreferredSlotMinutes: 20}
	a, err := breakdown.Decompose(in)
	c.Assert(err, qt.IsNil)
	b, err := breakdown.Decompose(in)
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.DeepEquals, b)
}

// ---------------------------------------------------------------------------
// Generic path
// ---------------------------------------------------------------------------

func TestDecompose_GenericDefaultEffort(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name    string
		slot    int
		chunks  int
		minutes int
	}{
		{"slot 25 gives two chunks", 25, 2, 22},
		{"slot 10 caps at five chunks", 10, 5, 10},
		{"slot 60 gives a single chunk", 60, 1, 45},
		{"slot 15 gives three chunks", 15, 3, 15},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			b, err := breakdown.Decompose(
				models.TaskInput{RawText: "Clean my desk", PreferredSlotMinutes: tc.slot},
				breakdown.WithSeed(7),
			)
			c.Assert(err, qt.IsNil)
			c.Assert(b.Category, qt.Equals, models.CategoryGeneral)
			c.Assert(b.Tasks, qt.HasLen, tc.chunks)
			for i, task := range b.Tasks {
				c.Assert(task.EstimatedMinutes, qt.Equals, tc.minutes)
				if i == 0 || i == len(b.Tasks)-1 {
					c.Assert(task.Difficulty, qt.Equals, models.Easy)
				} else {
					c.Assert(task.Difficulty == models.Medium || task.Difficulty == models.Hard, qt.IsTrue)
				}
			}
		})
	}
}

func TestDecompose_GenericPhaseNames(t *testing.T) {
	c := qt.New(t)

	b, err := breakdown.Decompose(models.TaskInput{RawText: "Build a birdhouse", PreferredSlotMinutes: 25})
	c.Assert(err, qt.IsNil)
	titles, minutes, _ := titlesAndMinutes(b.Tasks)
	c.Assert(titles, qt.DeepEquals, []string{
		"Planning and preparation",
		"Initial execution",
		"Main work phase",
		"Review and refinement",
		"Final completion",
	})
	c.Assert(minutes, qt.DeepEquals, []int{24, 24, 24, 24, 24})
}

func TestEstimateMinutes(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		text string
		want int
	}{
		{"Clean my desk", 45},
		{"Send a quick email", 15},
		{"Reply to email", 15},
		{"Simple fix", 20},
		{"Review the budget", 30},
		{"Write a poem", 60},
		{"Organize the garage", 60},
		{"Research competitors", 90},
		{"Build a shed", 120},
		{"Quick research", 15},
	}
	for _, tc := range cases {
		c.Run(tc.text, func(c *qt.C) {
			c.Assert(breakdown.EstimateMinutes(tc.text), qt.Equals, tc.want)
		})
	}
}

func TestDecompose_SeedIsReproducible(t *testing.T) {
	c := qt.New(t)

	in := models.TaskInput{RawText: "Tidy the garden shed", PreferredSlotMinutes: 5}
	a, err := breakdown.Decompose(in, breakdown.WithSeed(42))
	c.Assert(err, qt.IsNil)
	b, err := breakdown.Decompose(in, breakdown.WithSeed(42))
	c.Assert(err, qt.IsNil)
	c.Assert(a, qt.DeepEquals, b)
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestDecompose_Bounds(t *testing.T) {
	c := qt.New(t)

	texts := []string{
		"Write a project proposal",
		"Learn Go generics",
		"Record product demo",
		"Develop payment service",
		"Interview candidate",
		"Clean my desk",
		"Research flights",
		"Build a treehouse",
		"Quick email",
	}
	slots := []int{-3, 0, 1, 5, 10, 15, 25, 30, 45, 60, 90, math.MaxInt / 2, math.MaxInt}

	for _, text := range texts {
		for _, slot := range slots {
			b, err := breakdown.Decompose(models.TaskInput{RawText: text, PreferredSlotMinutes: slot})
			c.Assert(err, qt.IsNil)
			c.Assert(len(b.Tasks) >= 1 && len(b.Tasks) <= breakdown.MaxTasks, qt.IsTrue,
				qt.Commentf("text=%q slot=%d len=%d", text, slot, len(b.Tasks)))

			c.Assert(b.TotalMinutes > 0, qt.IsTrue, qt.Commentf("text=%q slot=%d total=%d", text, slot, b.TotalMinutes))

			effective := breakdown.NormalizeSlot(slot)
			limit := 45
			if effective <= math.MaxInt/2 {
				limit = max(effective*2, 45)
			}
			for _, task := range b.Tasks {
				c.Assert(task.EstimatedMinutes > 0, qt.IsTrue)
				c.Assert(task.EstimatedMinutes <= limit, qt.IsTrue,
					qt.Commentf("text=%q slot=%d minutes=%d", text, slot, task.EstimatedMinutes))
				c.Assert(task.Difficulty.Valid(), qt.IsTrue)
			}
		}
	}
}

func TestDecompose_DefaultSlot(t *testing.T) {
	c := qt.New(t)

	for _, slot := range []int{0, -10} {
		b, err := breakdown.Decompose(models.TaskInput{RawText: "Write a project proposal", PreferredSlotMinutes: slot})
		c.Assert(err, qt.IsNil)
		c.Assert(b.SlotMinutes, qt.Equals, models.DefaultSlotMinutes)
	}
}

func TestDecompose_FailurePath(t *testing.T) {
	c := qt.New(t)

	for _, text := range []string{"", "   ", "\n\t"} {
		c.Run("blank "+text, func(c *qt.C) {
			b, err := breakdown.Decompose(models.TaskInput{RawText: text, PreferredSlotMinutes: 25})
			c.Assert(errors.Is(err, breakdown.ErrInvalidInput), qt.IsTrue)
			c.Assert(b.Tasks, qt.HasLen, 0)
		})
	}
}

func TestDecompose_ConcurrentCalls(t *testing.T) {
	c := qt.New(t)

	want, err := breakdown.Decompose(models.TaskInput{RawText: "study chemistry", PreferredSlotMinutes: 20})
	c.Assert(err, qt.IsNil)

	seeded := breakdown.WithSeed(3)
	var wg sync.WaitGroup
	results := make([]breakdown.Breakdown, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = breakdown.Decompose(models.TaskInput{RawText: "study chemistry", PreferredSlotMinutes: 20}, seeded)
		}(i)
	}
	wg.Wait()
	for _, r := range results {
		c.Assert(r, qt.DeepEquals, want)
	}
}

// ---------------------------------------------------------------------------
// DecomposeContext
// ---------------------------------------------------------------------------

func TestDecomposeContext_DelayDoesNotChangeResult(t *testing.T) {
	c := qt.New(t)

	in := models.TaskInput{RawText: "Prepare for team meeting", PreferredSlotMinutes: 30}
	want, err := breakdown.Decompose(in)
	c.Assert(err, qt.IsNil)

	for _, delay := range []time.Duration{0, 5 * time.Millisecond} {
		got, err := breakdown.DecomposeContext(context.Background(), in, delay)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.DeepEquals, want)
	}
}

func TestDecomposeContext_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("cancelled context aborts the wait", func(c *qt.C) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := breakdown.DecomposeContext(ctx, models.TaskInput{RawText: "anything"}, time.Hour)
		c.Assert(err, qt.ErrorIs, context.Canceled)
	})

	c.Run("blank input is still rejected", func(c *qt.C) {
		_, err := breakdown.DecomposeContext(context.Background(), models.TaskInput{RawText: " "}, 0)
		c.Assert(err, qt.ErrorIs, breakdown.ErrInvalidInput)
	})
}

func TestSuggestSlot(t *testing.T) {
	c := qt.New(t)

	c.Assert(breakdown.SuggestSlot("focused"), qt.Equals, 45)
	c.Assert(breakdown.SuggestSlot("energized"), qt.Equals, 30)
	c.Assert(breakdown.SuggestSlot("calm"), qt.Equals, 25)
	c.Assert(breakdown.SuggestSlot("tired"), qt.Equals, 15)
	c.Assert(breakdown.SuggestSlot("stressed"), qt.Equals, 15)
	c.Assert(breakdown.SuggestSlot("grumpy"), qt.Equals, 0)
	for _, m := range models.ValidMoods {
		c.Assert(breakdown.SuggestSlot(m) > 0, qt.IsTrue)
	}
}
