package pilot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
)

// registerCheckHealth registers the check_academic_health tool.
func registerCheckHealth(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("check_academic_health",
			mcp.WithDescription("Score the student's academic health 0-100 from overdue load, critical upcoming work, and weekly workload."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			return jsonResult(eng.CheckAcademicHealth(ctx))
		},
	)
}

// registerAutonomousDecisions registers the make_autonomous_decisions tool.
func registerAutonomousDecisions(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("make_autonomous_decisions",
			mcp.WithDescription("Run the decision rules once: escalate urgent work, flag overdue tasks, and suggest breakdowns for large tasks. Idempotent until source data changes."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			decisions := eng.MakeAutonomousDecisions(ctx)
			if len(decisions) == 0 {
				return mcp.NewToolResultText("No decisions needed; everything is on track"), nil
			}
			logger.Printf("Made %d autonomous decisions for %s", len(decisions), userID)

			var b strings.Builder
			fmt.Fprintf(&b, "%d decisions:\n", len(decisions))
			for _, d := range decisions {
				fmt.Fprintf(&b, "  [%s] %s: %s (%s)\n", d.Type, d.Task, d.Action, d.Reason)
			}
			return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
		},
	)
}

// registerSendNudge registers the send_nudge tool.
func registerSendNudge(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("send_nudge",
			mcp.WithDescription("Check whether the student needs a nudge right now and return the message that would be sent."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}
			if !eng.ShouldNudge(ctx) {
				return mcp.NewToolResultText("No nudge needed right now"), nil
			}
			tasks := eng.GatherTasks(ctx)
			health := eng.CheckAcademicHealth(ctx)
			return mcp.NewToolResultText(agent.NudgeMessage(tasks, health)), nil
		},
	)
}

// registerWeeklySummary registers the send_weekly_summary tool.
func registerWeeklySummary(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("send_weekly_summary",
			mcp.WithDescription("Compose and deliver the weekly digest: planned tasks by priority plus the current health report."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			loop, err := registry.Loop(userID)
			if err != nil {
				return nil, err
			}
			sent, err := loop.SendWeeklySummary(ctx)
			if err != nil {
				return nil, fmt.Errorf("weekly summary failed: %w", err)
			}
			if !sent {
				return mcp.NewToolResultText("Weekly summary not sent (notification sink does not support summaries)"), nil
			}
			logger.Printf("Weekly summary sent for %s", userID)
			return mcp.NewToolResultText("Weekly summary delivered"), nil
		},
	)
}

// registerRunCycle registers the run_cycle tool.
func registerRunCycle(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("run_cycle",
			mcp.WithDescription("Run one full monitoring cycle immediately instead of waiting for the next interval."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			loop, err := registry.Loop(userID)
			if err != nil {
				return nil, err
			}
			if err := loop.RunCycle(ctx); err != nil {
				return nil, fmt.Errorf("cycle failed: %w", err)
			}
			actions := loop.ActionHistory(10)
			if len(actions) == 0 {
				return mcp.NewToolResultText("Cycle complete, no actions taken"), nil
			}
			var b strings.Builder
			b.WriteString("Cycle complete. Recent actions:\n")
			for _, a := range actions {
				fmt.Fprintf(&b, "  %s %s\n", a.Timestamp.Format("15:04:05"), a.Action)
			}
			return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
		},
	)
}
