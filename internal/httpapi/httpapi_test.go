package httpapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gofiber/fiber/v2"

	"github.com/go-ports/focusflow/internal/checkers"
	"github.com/go-ports/focusflow/internal/httpapi"
	"github.com/go-ports/focusflow/internal/service"
)

func newApp(c *qt.C) *fiber.App {
	svc, err := service.New(c.TB.TempDir())
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { _ = svc.Close() })
	return httpapi.New(svc)
}

// do sends a request through the app and returns the status and body.
func do(c *qt.C, app *fiber.App, method, target, body string) (int, string) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	c.Assert(err, qt.IsNil)
	return resp.StatusCode, string(data)
}

func createPlan(c *qt.C, app *fiber.App, text string) httpapi.PlanResponse {
	status, body := do(c, app, http.MethodPost, "/api/plans", `{"text":"`+text+`"}`)
	c.Assert(status, qt.Equals, http.StatusCreated, qt.Commentf("body: %s", body))
	var p httpapi.PlanResponse
	c.Assert(json.Unmarshal([]byte(body), &p), qt.IsNil)
	return p
}

// ---------------------------------------------------------------------------
// Breakdown
// ---------------------------------------------------------------------------

func TestBreakdown_HappyPath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	status, body := do(c, app, http.MethodPost, "/api/breakdown", `{"text":"Write a project proposal","slot_minutes":25}`)
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(body, checkers.JSONPathEquals("$.category"), "project")
	c.Assert(body, checkers.JSONPathEquals("$.slot_minutes"), float64(25))
	c.Assert(body, checkers.JSONPathEquals("$.tasks[0].title"), "Research and gather requirements")
	c.Assert(body, checkers.JSONPathEquals("$.tasks[0].difficulty"), float64(1))

	var b httpapi.BreakdownResponse
	c.Assert(json.Unmarshal([]byte(body), &b), qt.IsNil)
	c.Assert(b.Tasks, qt.HasLen, 6)
	total := 0
	for _, task := range b.Tasks {
		total += task.EstimatedMinutes
	}
	c.Assert(b.TotalMinutes, qt.Equals, total)

	c.Run("nothing is stored", func(c *qt.C) {
		_, body := do(c, app, http.MethodGet, "/api/plans", "")
		c.Assert(strings.TrimSpace(body), qt.Equals, "[]")
	})
}

func TestBreakdown_FailurePath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	tests := []struct {
		name string
		body string
	}{
		{name: "blank text", body: `{"text":"   "}`},
		{name: "unknown mood", body: `{"text":"study","mood":"grumpy"}`},
		{name: "malformed body", body: `{"text":`},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			status, body := do(c, app, http.MethodPost, "/api/breakdown", tt.body)
			c.Assert(status, qt.Equals, http.StatusBadRequest)
			var e httpapi.ErrorResponse
			c.Assert(json.Unmarshal([]byte(body), &e), qt.IsNil)
			c.Assert(e.Error, qt.Not(qt.Equals), "")
		})
	}
}

// ---------------------------------------------------------------------------
// Plans
// ---------------------------------------------------------------------------

func TestPlans_HappyPath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	p := createPlan(c, app, "Study for the biology exam")
	c.Assert(p.ID, qt.Not(qt.Equals), "")
	c.Assert(string(p.Category), qt.Equals, "study")
	c.Assert(p.Tasks[0].ID, qt.Not(qt.Equals), "")
	c.Assert(p.Tasks[0].Position, qt.Equals, 1)
	createPlan(c, app, "Write the quarterly report")

	c.Run("get by id", func(c *qt.C) {
		status, body := do(c, app, http.MethodGet, "/api/plans/"+p.ID, "")
		c.Assert(status, qt.Equals, http.StatusOK)
		c.Assert(body, checkers.JSONPathEquals("$.text"), "Study for the biology exam")
	})

	c.Run("list with category filter", func(c *qt.C) {
		status, body := do(c, app, http.MethodGet, "/api/plans?category=project", "")
		c.Assert(status, qt.Equals, http.StatusOK)
		var plans []httpapi.PlanResponse
		c.Assert(json.Unmarshal([]byte(body), &plans), qt.IsNil)
		c.Assert(plans, qt.HasLen, 1)
		c.Assert(plans[0].Text, qt.Equals, "Write the quarterly report")
	})

	c.Run("delete", func(c *qt.C) {
		status, _ := do(c, app, http.MethodDelete, "/api/plans/"+p.ID, "")
		c.Assert(status, qt.Equals, http.StatusNoContent)
		status, _ = do(c, app, http.MethodGet, "/api/plans/"+p.ID, "")
		c.Assert(status, qt.Equals, http.StatusNotFound)
	})
}

func TestPlans_FailurePath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	c.Run("unknown plan", func(c *qt.C) {
		status, body := do(c, app, http.MethodGet, "/api/plans/does-not-exist", "")
		c.Assert(status, qt.Equals, http.StatusNotFound)
		c.Assert(body, qt.Contains, "not found")
	})

	c.Run("delete unknown plan", func(c *qt.C) {
		status, _ := do(c, app, http.MethodDelete, "/api/plans/does-not-exist", "")
		c.Assert(status, qt.Equals, http.StatusNotFound)
	})

	c.Run("wildcard IDs match nothing", func(c *qt.C) {
		createPlan(c, app, "Study for the biology exam")
		for _, id := range []string{"_", "%25"} {
			status, _ := do(c, app, http.MethodGet, "/api/plans/"+id, "")
			c.Assert(status, qt.Equals, http.StatusNotFound)
			status, _ = do(c, app, http.MethodDelete, "/api/plans/"+id, "")
			c.Assert(status, qt.Equals, http.StatusNotFound)
		}
		_, body := do(c, app, http.MethodGet, "/api/plans", "")
		c.Assert(body, checkers.JSONPathEquals("$[0].text"), "Study for the biology exam")
	})

	c.Run("unknown category", func(c *qt.C) {
		status, _ := do(c, app, http.MethodGet, "/api/plans?category=chores", "")
		c.Assert(status, qt.Equals, http.StatusBadRequest)
	})

	c.Run("blank text", func(c *qt.C) {
		status, _ := do(c, app, http.MethodPost, "/api/plans", `{"text":""}`)
		c.Assert(status, qt.Equals, http.StatusBadRequest)
	})
}

// ---------------------------------------------------------------------------
// Tasks and stats
// ---------------------------------------------------------------------------

func TestCompleteTask_HappyPath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	p := createPlan(c, app, "Prepare a pitch demo")
	task := p.Tasks[0]

	status, body := do(c, app, http.MethodPost, "/api/tasks/"+task.ID+"/complete", "")
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(body, checkers.JSONPathEquals("$.task_id"), task.ID)
	c.Assert(body, checkers.JSONPathEquals("$.xp_awarded"), float64(task.XP))

	c.Run("second completion awards nothing", func(c *qt.C) {
		_, body := do(c, app, http.MethodPost, "/api/tasks/"+task.ID+"/complete", "")
		c.Assert(body, checkers.JSONPathEquals("$.xp_awarded"), float64(0))
		c.Assert(body, checkers.JSONPathEquals("$.already"), true)
	})

	c.Run("stats reflect the completion", func(c *qt.C) {
		status, body := do(c, app, http.MethodGet, "/api/stats", "")
		c.Assert(status, qt.Equals, http.StatusOK)
		c.Assert(body, checkers.JSONPathEquals("$.plans"), float64(1))
		c.Assert(body, checkers.JSONPathEquals("$.tasks_completed"), float64(1))
		c.Assert(body, checkers.JSONPathEquals("$.total_xp"), float64(task.XP))
		c.Assert(body, checkers.JSONPathEquals("$.streak_days"), float64(1))
	})
}

func TestCompleteTask_FailurePath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	status, body := do(c, app, http.MethodPost, "/api/tasks/missing/complete", "")
	c.Assert(status, qt.Equals, http.StatusNotFound)
	c.Assert(body, checkers.JSONPathEquals("$.error"), `task "missing": not found`)
}

// ---------------------------------------------------------------------------
// Moods
// ---------------------------------------------------------------------------

func TestMoods_HappyPath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	status, body := do(c, app, http.MethodPost, "/api/moods", `{"mood":"Focused","note":"after coffee"}`)
	c.Assert(status, qt.Equals, http.StatusCreated)
	c.Assert(body, checkers.JSONPathEquals("$.mood"), "focused")

	status, body = do(c, app, http.MethodGet, "/api/moods", "")
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(body, checkers.JSONPathEquals("$[0].note"), "after coffee")
}

func TestMoods_FailurePath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	status, _ := do(c, app, http.MethodPost, "/api/moods", `{"mood":"grumpy"}`)
	c.Assert(status, qt.Equals, http.StatusBadRequest)
}

// ---------------------------------------------------------------------------
// XP
// ---------------------------------------------------------------------------

func TestXP_HappyPath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	tests := []struct {
		query string
		want  float64
	}{
		{query: "minutes=30&difficulty=hard", want: 18},
		{query: "minutes=25&difficulty=easy", want: 5},
		{query: "minutes=7&difficulty=2", want: 2},
		{query: "minutes=30", want: 12},
		{query: "minutes=0&difficulty=hard", want: 0},
	}
	for _, tt := range tests {
		c.Run(tt.query, func(c *qt.C) {
			status, body := do(c, app, http.MethodGet, "/api/xp?"+tt.query, "")
			c.Assert(status, qt.Equals, http.StatusOK)
			c.Assert(body, checkers.JSONPathEquals("$.xp"), tt.want)
		})
	}
}

func TestXP_FailurePath(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	for _, q := range []string{"", "minutes=-5", "minutes=abc", "minutes=10&difficulty=extreme"} {
		c.Run(q, func(c *qt.C) {
			status, _ := do(c, app, http.MethodGet, "/api/xp?"+q, "")
			c.Assert(status, qt.Equals, http.StatusBadRequest)
		})
	}
}

func TestHealth(t *testing.T) {
	c := qt.New(t)
	app := newApp(c)

	status, body := do(c, app, http.MethodGet, "/health", "")
	c.Assert(status, qt.Equals, http.StatusOK)
	c.Assert(body, checkers.JSONPathEquals("$.status"), "ok")
}
