package pilot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
	"github.com/slugpilot/slugpilot/internal/studyplan"
)

// registerGenerateStudyPlan registers the generate_study_plan tool.
func registerGenerateStudyPlan(s *server.MCPServer, registry *agent.Registry, planner *studyplan.Generator, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("generate_study_plan",
			mcp.WithDescription("Generate study plans with scheduled sessions for every exam in the user's upcoming deadlines."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			eng, err := registry.Engine(userID)
			if err != nil {
				return nil, err
			}

			deadlines := eng.FetchDeadlines(ctx)
			plans := planner.AutoCreateWithPreferences(deadlines, eng.Preferences(), time.Now())
			if len(plans) == 0 {
				return mcp.NewToolResultText("No exams found in the planning window"), nil
			}
			logger.Printf("Generated %d study plans for %s", len(plans), userID)

			var b strings.Builder
			fmt.Fprintf(&b, "%d study plans:\n", len(plans))
			for _, p := range plans {
				fmt.Fprintf(&b, "\n%s (%s), exam %s, %.1fh total\n", p.ExamTitle, p.Course, p.ExamDate.Format("Mon Jan 2"), p.TotalHours)
				for _, sess := range p.Sessions {
					fmt.Fprintf(&b, "  %s  %.1fh  %s\n", sess.ScheduledTime.Format("Mon Jan 2 15:04"), sess.DurationHours, sess.Topic)
				}
			}
			return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
		},
	)
}
