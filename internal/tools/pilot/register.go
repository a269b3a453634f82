// Package pilot registers the academic-agent MCP tools.
package pilot

import (
	"encoding/json"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
	"github.com/slugpilot/slugpilot/internal/studyplan"
)

// RegisterOption configures optional dependencies for tool registration.
type RegisterOption func(*registerOpts)

type registerOpts struct {
	planner *studyplan.Generator
}

// WithStudyPlanner enables the generate_study_plan tool.
func WithStudyPlanner(g *studyplan.Generator) RegisterOption {
	return func(o *registerOpts) { o.planner = g }
}

// Register registers the academic agent tools with the mcp-go server.
func Register(s *server.MCPServer, registry *agent.Registry, logger *log.Logger, opts ...RegisterOption) {
	var o registerOpts
	for _, opt := range opts {
		opt(&o)
	}

	// User and loop lifecycle tools (5)
	registerRegisterUser(s, registry, logger)
	registerStartAgent(s, registry, logger)
	registerStopAgent(s, registry, logger)
	registerAgentStatus(s, registry, logger)
	registerActionHistory(s, registry, logger)

	// Planning tools (4)
	registerCreateWeeklyPlan(s, registry, logger)
	registerRevisePlan(s, registry, logger)
	registerListTasks(s, registry, logger)
	registerClarifyingQuestions(s, registry, logger)

	// Health and decision tools (5)
	registerCheckHealth(s, registry, logger)
	registerAutonomousDecisions(s, registry, logger)
	registerSendNudge(s, registry, logger)
	registerWeeklySummary(s, registry, logger)
	registerRunCycle(s, registry, logger)

	// Study plan tool (1, optional)
	if o.planner != nil {
		registerGenerateStudyPlan(s, registry, o.planner, logger)
	}
}

// jsonResult renders v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
