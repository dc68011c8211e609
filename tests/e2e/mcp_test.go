// Package e2e_test: MCP server end-to-end tests.
//
// Each test wires the real MCP server in-process via the mcp-go
// InProcessTransport, backed by a fresh service.Service rooted at a
// temporary directory. The full stack (service → db → search → mcp handler →
// mcp-go server → in-process client) is exercised within a single process.
package e2e_test

import (
	"context"
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/go-ports/focusflow/internal/checkers"
	internalmcp "github.com/go-ports/focusflow/internal/mcp"
	"github.com/go-ports/focusflow/internal/service"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newMCPClient creates an in-process MCP client backed by a fresh service
// rooted at home. The client is started and initialized before it is
// returned; cleanup is registered on c automatically.
func newMCPClient(c *qt.C, home string) *mcpclient.Client {
	c.TB.Helper()

	svc, err := service.New(home)
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = svc.Close() })

	cl, err := mcpclient.NewInProcessClient(internalmcp.NewServer(svc))
	c.Assert(err, qt.IsNil)
	c.TB.Cleanup(func() { _ = cl.Close() })

	c.Assert(cl.Start(context.Background()), qt.IsNil)

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "e2e-test", Version: "0.0.1"}
	_, err = cl.Initialize(context.Background(), initReq)
	c.Assert(err, qt.IsNil)

	return cl
}

// callToolResult invokes the named MCP tool and returns the raw result.
func callToolResult(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) (*mcp.CallToolResult, string) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := cl.CallTool(context.Background(), req)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Content, qt.HasLen, 1)

	tc, ok := mcp.AsTextContent(result.Content[0])
	c.Assert(ok, qt.IsTrue)
	return result, tc.Text
}

// callTool invokes the named MCP tool, asserts it succeeded and returns the
// text of the first content item.
func callTool(c *qt.C, cl *mcpclient.Client, name string, args map[string]any) string {
	result, text := callToolResult(c, cl, name, args)
	c.Assert(result.IsError, qt.IsFalse, qt.Commentf("tool error: %s", text))
	return text
}

type createdPlan struct {
	ID    string `json:"id"`
	Tasks []struct {
		ID string `json:"id"`
		XP int    `json:"xp"`
	} `json:"tasks"`
	FilePath string `json:"file_path"`
}

func createPlanTool(c *qt.C, cl *mcpclient.Client, text string) createdPlan {
	out := callTool(c, cl, "plan_create", map[string]any{"text": text})
	var p createdPlan
	c.Assert(json.Unmarshal([]byte(out), &p), qt.IsNil)
	return p
}

// ---------------------------------------------------------------------------
// ListTools
// ---------------------------------------------------------------------------

func TestMCPListTools_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	result, err := cl.ListTools(context.Background(), mcp.ListToolsRequest{})
	c.Assert(err, qt.IsNil)
	c.Assert(result.Tools, qt.HasLen, 5)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	for _, want := range []string{"task_breakdown", "plan_create", "task_complete", "plan_search", "focus_stats"} {
		c.Assert(names, qt.Contains, want)
	}
}

// ---------------------------------------------------------------------------
// task_breakdown
// ---------------------------------------------------------------------------

func TestMCPTaskBreakdown_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	cases := []struct {
		name     string
		args     map[string]any
		category string
		slot     float64
		first    string
	}{
		{
			name:     "project template",
			args:     map[string]any{"text": "Write a project proposal", "slot_minutes": 25},
			category: "project",
			slot:     25,
			first:    "Research and gather requirements",
		},
		{
			name:     "mood picks the slot",
			args:     map[string]any{"text": "Prepare for team meeting", "mood": "focused"},
			category: "meeting",
			slot:     45,
		},
		{
			name:     "configured default slot",
			args:     map[string]any{"text": "Learn the basics of Go"},
			category: "study",
			slot:     25,
			first:    "Review learning objectives",
		},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			text := callTool(c, cl, "task_breakdown", tc.args)
			c.Assert(text, checkers.JSONPathEquals("$.category"), tc.category)
			c.Assert(text, checkers.JSONPathEquals("$.slot_minutes"), tc.slot)
			if tc.first != "" {
				c.Assert(text, checkers.JSONPathEquals("$.tasks[0].title"), tc.first)
			}
		})
	}

	c.Run("breakdown stores nothing", func(c *qt.C) {
		text := callTool(c, cl, "focus_stats", nil)
		c.Assert(text, checkers.JSONPathEquals("$.plans"), float64(0))
	})
}

func TestMCPTaskBreakdown_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	result, text := callToolResult(c, cl, "task_breakdown", map[string]any{"text": "   "})
	c.Assert(result.IsError, qt.IsTrue)
	c.Assert(text, qt.Contains, "task description is empty")
}

// ---------------------------------------------------------------------------
// plan_create → task_complete → focus_stats
// ---------------------------------------------------------------------------

func TestMCPPlanLifecycle_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	p := createPlanTool(c, cl, "Study for the biology exam")
	c.Assert(p.ID, qt.Not(qt.Equals), "")
	c.Assert(p.Tasks, qt.HasLen, 5)
	c.Assert(p.FilePath, qt.Not(qt.Equals), "")

	text := callTool(c, cl, "task_complete", map[string]any{"task_id": p.Tasks[0].ID})
	c.Assert(text, checkers.JSONPathEquals("$.xp_awarded"), float64(p.Tasks[0].XP))
	c.Assert(text, checkers.JSONPathEquals("$.already"), false)

	text = callTool(c, cl, "task_complete", map[string]any{"task_id": p.Tasks[0].ID})
	c.Assert(text, checkers.JSONPathEquals("$.xp_awarded"), float64(0))
	c.Assert(text, checkers.JSONPathEquals("$.already"), true)

	text = callTool(c, cl, "focus_stats", nil)
	c.Assert(text, checkers.JSONPathEquals("$.plans"), float64(1))
	c.Assert(text, checkers.JSONPathEquals("$.tasks_total"), float64(5))
	c.Assert(text, checkers.JSONPathEquals("$.tasks_completed"), float64(1))
	c.Assert(text, checkers.JSONPathEquals("$.total_xp"), float64(p.Tasks[0].XP))
	c.Assert(text, checkers.JSONPathEquals("$.level"), float64(1))
	c.Assert(text, checkers.JSONPathEquals("$.streak_days"), float64(1))
}

func TestMCPTaskComplete_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	result, text := callToolResult(c, cl, "task_complete", map[string]any{"task_id": "missing"})
	c.Assert(result.IsError, qt.IsTrue)
	c.Assert(text, qt.Contains, "not found")
}

// ---------------------------------------------------------------------------
// plan_search
// ---------------------------------------------------------------------------

func TestMCPPlanSearch_HappyPath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	createPlanTool(c, cl, "Study organic chemistry")
	createPlanTool(c, cl, "Write the chemistry lab report")

	c.Run("keyword match", func(c *qt.C) {
		text := callTool(c, cl, "plan_search", map[string]any{"query": "chemistry"})
		var results []map[string]any
		c.Assert(json.Unmarshal([]byte(text), &results), qt.IsNil)
		c.Assert(results, qt.HasLen, 2)
	})

	c.Run("category filter", func(c *qt.C) {
		text := callTool(c, cl, "plan_search", map[string]any{"query": "chemistry", "category": "study"})
		c.Assert(text, checkers.JSONPathEquals("$[0].text"), "Study organic chemistry")
		var results []map[string]any
		c.Assert(json.Unmarshal([]byte(text), &results), qt.IsNil)
		c.Assert(results, qt.HasLen, 1)
	})

	c.Run("no match", func(c *qt.C) {
		text := callTool(c, cl, "plan_search", map[string]any{"query": "astronomy"})
		c.Assert(text, qt.Equals, "[]")
	})
}

func TestMCPPlanSearch_FailurePath(t *testing.T) {
	c := qt.New(t)
	cl := newMCPClient(c, t.TempDir())

	result, text := callToolResult(c, cl, "plan_search", map[string]any{"query": ""})
	c.Assert(result.IsError, qt.IsTrue)
	c.Assert(text, qt.Contains, "search query is empty")
}
