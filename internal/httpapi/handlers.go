package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/go-ports/focusflow/internal/models"
	"github.com/go-ports/focusflow/internal/service"
)

type handler struct {
	svc *service.Service
}

func (r TaskRequest) input() service.PlanInput {
	return service.PlanInput{
		Text:        r.Text,
		SlotMinutes: r.SlotMinutes,
		Mood:        r.Mood,
		Seed:        r.Seed,
	}
}

func parseTask(c *fiber.Ctx) (TaskRequest, error) {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return req, nil
}

func (h *handler) breakdown(c *fiber.Ctx) error {
	req, err := parseTask(c)
	if err != nil {
		return err
	}
	b, err := h.svc.Breakdown(c.UserContext(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(toBreakdownResponse(b))
}

func (h *handler) createPlan(c *fiber.Ctx) error {
	req, err := parseTask(c)
	if err != nil {
		return err
	}
	in := req.input()
	in.Seed = nil
	p, err := h.svc.Plan(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toPlanResponse(p))
}

func (h *handler) listPlans(c *fiber.Ctx) error {
	plans, err := h.svc.History(c.QueryInt("limit", 10), c.Query("category"))
	if err != nil {
		return err
	}
	out := make([]PlanResponse, len(plans))
	for i, p := range plans {
		out[i] = toPlanResponse(p)
	}
	return c.JSON(out)
}

func (h *handler) getPlan(c *fiber.Ctx) error {
	p, err := h.svc.GetPlan(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(toPlanResponse(p))
}

func (h *handler) deletePlan(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := h.svc.DeletePlan(id)
	if err != nil {
		return err
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "plan "+id+" not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) completeTask(c *fiber.Ctx) error {
	res, err := h.svc.Complete(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(CompleteResponse{
		TaskID:    res.TaskID,
		Title:     res.Title,
		XPAwarded: res.XPAwarded,
		Already:   res.Already,
	})
}

func (h *handler) stats(c *fiber.Ctx) error {
	st, err := h.svc.Stats()
	if err != nil {
		return err
	}
	return c.JSON(StatsResponse{
		Plans:          st.Plans,
		TasksTotal:     st.TasksTotal,
		TasksCompleted: st.TasksCompleted,
		TotalXP:        st.TotalXP,
		Level:          st.Level,
		StreakDays:     st.StreakDays,
	})
}

func (h *handler) logMood(c *fiber.Ctx) error {
	var req MoodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	m, err := h.svc.LogMood(req.Mood, req.Note)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(MoodResponse{
		ID:        m.ID,
		Mood:      m.Mood,
		Note:      m.Note,
		CreatedAt: m.CreatedAt,
	})
}

func (h *handler) listMoods(c *fiber.Ctx) error {
	moods, err := h.svc.Moods(c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	out := make([]MoodResponse, len(moods))
	for i, m := range moods {
		out[i] = MoodResponse{ID: m.ID, Mood: m.Mood, Note: m.Note, CreatedAt: m.CreatedAt}
	}
	return c.JSON(out)
}

func (h *handler) xp(c *fiber.Ctx) error {
	minutes := c.QueryInt("minutes", -1)
	if minutes < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "minutes must be a non-negative integer")
	}
	d, err := models.ParseDifficulty(c.Query("difficulty", "medium"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(XPResponse{Minutes: minutes, Difficulty: d.String(), XP: models.XP(minutes, d)})
}
