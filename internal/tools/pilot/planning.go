package pilot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
	"github.com/slugpilot/slugpilot/internal/domain"
)

// registerCreateWeeklyPlan registers the create_weekly_plan tool.
func registerCreateWeeklyPlan(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("create_weekly_plan",
			mcp.WithDescription("Build a prioritized, conflict-checked plan of everything due in the next 7 days."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			plan := eng.CreateWeeklyPlan(ctx)
			logger.Printf("Weekly plan created for %s: %d tasks, %d conflicts", userID, len(plan), len(eng.Conflicts()))
			return mcp.NewToolResultText(renderPlan(plan, eng.Conflicts())), nil
		},
	)
}

// registerRevisePlan registers the revise_plan tool.
func registerRevisePlan(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("revise_plan",
			mcp.WithDescription("Re-fetch tasks from every source and rebuild the weekly plan from fresh data."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			plan := eng.RevisePlan(ctx)
			logger.Printf("Plan revised for %s: %d tasks", userID, len(plan))
			return mcp.NewToolResultText(renderPlan(plan, eng.Conflicts())), nil
		},
	)
}

// registerListTasks registers the list_tasks tool.
func registerListTasks(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("list_tasks",
			mcp.WithDescription("List all tasks gathered from the user's sources, deduplicated and sorted by urgency."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
			mcp.WithString("status", mcp.Description("Filter by status: pending, in_progress, completed, overdue")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			userID, _ := args["user_id"].(string)
			statusFilter, _ := args["status"].(string)

			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			tasks := eng.GatherTasks(ctx)
			if statusFilter != "" {
				filtered := tasks[:0]
				for _, t := range tasks {
					if string(t.Status) == statusFilter {
						filtered = append(filtered, t)
					}
				}
				tasks = filtered
			}
			if len(tasks) == 0 {
				return mcp.NewToolResultText("No tasks found"), nil
			}
			agent.SortByUrgency(tasks)
			return jsonResult(tasks)
		},
	)
}

// registerClarifyingQuestions registers the get_clarifying_questions tool.
func registerClarifyingQuestions(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("get_clarifying_questions",
			mcp.WithDescription("Get questions the agent would ask the student about unresolved scheduling conflicts."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			questions := eng.GetClarifyingQuestions()
			if len(questions) == 0 {
				return mcp.NewToolResultText("No clarifying questions; the current plan has no conflicts"), nil
			}
			var b strings.Builder
			for i, q := range questions {
				fmt.Fprintf(&b, "%d. %s\n", i+1, q)
			}
			return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
		},
	)
}

// renderPlan formats a weekly plan grouped by day with conflicts appended.
func renderPlan(plan []domain.Task, conflicts []domain.Conflict) string {
	if len(plan) == 0 {
		return "Nothing due in the next 7 days"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly plan: %d tasks\n", len(plan))
	lastDay := ""
	for _, t := range plan {
		day := t.DueDay().Format("2006-01-02")
		if day != lastDay {
			fmt.Fprintf(&b, "\n%s\n", day)
			lastDay = day
		}
		fmt.Fprintf(&b, "  [%s] %s", t.Priority, t.Title)
		if t.Course != "" {
			fmt.Fprintf(&b, " (%s)", t.Course)
		}
		fmt.Fprintf(&b, " - %.1fh\n", t.EffortHours())
	}

	if len(conflicts) > 0 {
		b.WriteString("\nConflicts:\n")
		for _, c := range conflicts {
			fmt.Fprintf(&b, "  ⚠️ %s\n", c.Message)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
