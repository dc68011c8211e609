package breakdown

import (
	"strings"

	"github.com/go-ports/focusflow/internal/models"
)

// step is one row of a category template. When scaleCap is set the step is
// sized min(slot*2, scaleCap) instead of min(base, slot).
type step struct {
	title    string
	base     int
	diff     models.Difficulty
	scaleCap int
}

type template struct {
	category models.Category
	keywords []string
	steps    []step
}

// templates are matched in this order; the first template with a keyword
// present in the description wins even if later ones also match.
var templates = []template{
	{
		category: models.CategoryProject,
		keywords: []string{"project", "proposal", "report"},
		steps: []step{
			{title: "Research and gather requirements", base: 20, diff: models.Easy},
			{title: "Create outline and structure", base: 15, diff: models.Easy},
			{title: "Write first draft", diff: models.Hard, scaleCap: 45},
			{title: "Add supporting details and data", base: 25, diff: models.Medium},
			{title: "Review and edit", base: 20, diff: models.Medium},
			{title: "Final formatting and submission", base: 10, diff: models.Easy},
		},
	},
	{
		category: models.CategoryStudy,
		keywords: []string{"study", "learn", "course"},
		steps: []step{
			{title: "Review learning objectives", base: 10, diff: models.Easy},
			{title: "Read core material", base: 25, diff: models.Medium},
			{title: "Take structured notes", base: 20, diff: models.Medium},
			{title: "Practice problems and exercises", diff: models.Hard, scaleCap: 40},
			{title: "Self-quiz and summarize", base: 15, diff: models.Medium},
		},
	},
	{
		category: models.CategoryPresentation,
		keywords: []string{"presentation", "pitch", "demo"},
		steps: []step{
			{title: "Define key message and audience", base: 15, diff: models.Easy},
			{title: "Outline slide flow", base: 20, diff: models.Medium},
			{title: "Design slides and visuals", diff: models.Hard, scaleCap: 45},
			{title: "Rehearse delivery", base: 20, diff: models.Medium},
			{title: "Final run-through and polish", base: 10, diff: models.Easy},
		},
	},
	{
		category: models.CategoryCode,
		keywords: []string{"code", "develop", "program"},
		steps: []step{
			{title: "Clarify requirements and acceptance criteria", base: 15, diff: models.Easy},
			{title: "Design the solution", base: 20, diff: models.Medium},
			{title: "Set up environment and scaffolding", base: 15, diff: models.Easy},
			{title: "Implement core functionality", diff: models.Hard, scaleCap: 45},
			{title: "Write and run tests", base: 25, diff: models.Medium},
			{title: "Refactor and document", base: 15, diff: models.Medium},
		},
	},
	{
		category: models.CategoryMeeting,
		keywords: []string{"meeting", "call", "interview"},
		steps: []step{
			{title: "Review agenda and objectives", base: 10, diff: models.Easy},
			{title: "Gather relevant materials", base: 15, diff: models.Easy},
			{title: "Prepare talking points", base: 20, diff: models.Medium},
			{title: "Anticipate questions and follow-ups", base: 15, diff: models.Medium},
			{title: "Final logistics check", base: 5, diff: models.Easy},
		},
	},
}

// matchTemplate expects lower-cased text.
func matchTemplate(lower string) (template, bool) {
	for _, tpl := range templates {
		for _, kw := range tpl.keywords {
			if strings.Contains(lower, kw) {
				return tpl, true
			}
		}
	}
	return template{}, false
}

func (tpl template) render(slot int) []models.Task {
	tasks := make([]models.Task, len(tpl.steps))
	for i, s := range tpl.steps {
		minutes := min(s.base, slot)
		if s.scaleCap > 0 {
			minutes = scaledMinutes(slot, s.scaleCap)
		}
		tasks[i] = models.Task{
			Title:            s.title,
			EstimatedMinutes: minutes,
			Difficulty:       s.diff,
		}
	}
	return tasks
}

// scaledMinutes returns min(slot*2, limit) without overflowing on huge slots.
func scaledMinutes(slot, limit int) int {
	if slot > limit/2 {
		return limit
	}
	return min(slot*2, limit)
}
