package pilot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
	"github.com/slugpilot/slugpilot/internal/domain"
)

// registerRegisterUser registers the register_user tool.
func registerRegisterUser(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("register_user",
			mcp.WithDescription("Register a student so an academic agent can manage their deadlines. Source credentials are optional; missing ones fall back to demo data."),
			mcp.WithString("email", mcp.Required(), mcp.Description("Student email")),
			mcp.WithString("name", mcp.Description("Display name")),
			mcp.WithString("canvas_token", mcp.Description("Canvas LMS API token")),
			mcp.WithString("calendar_token", mcp.Description("Google Calendar access token")),
			mcp.WithString("slack_bot_token", mcp.Description("Slack bot token")),
			mcp.WithString("slack_channels", mcp.Description("Comma-separated Slack channel IDs to watch")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			email, _ := args["email"].(string)
			if email == "" {
				return nil, fmt.Errorf("email is required")
			}
			name, _ := args["name"].(string)
			if name == "" {
				name, _, _ = strings.Cut(email, "@")
			}

			user := domain.User{
				ID:          uuid.NewString(),
				Email:       email,
				Name:        name,
				Preferences: domain.DefaultPreferences(),
			}
			user.CanvasToken, _ = args["canvas_token"].(string)
			user.CalendarToken, _ = args["calendar_token"].(string)
			user.SlackBotToken, _ = args["slack_bot_token"].(string)
			if channels, _ := args["slack_channels"].(string); channels != "" {
				user.SlackChannelIDs = strings.Split(channels, ",")
			}

			if err := registry.Register(user); err != nil {
				return nil, err
			}
			logger.Printf("User %s registered (%s)", user.ID, email)
			return mcp.NewToolResultText(fmt.Sprintf("User registered: %s\n\nUser ID: %s\nUse start_agent to begin the monitoring loop.", email, user.ID)), nil
		},
	)
}

// registerStartAgent registers the start_agent tool.
func registerStartAgent(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("start_agent",
			mcp.WithDescription("Start the recurring monitoring loop for a registered user. No-op if already running."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID from register_user")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			if userID == "" {
				return nil, fmt.Errorf("user_id is required")
			}
			if err := registry.Start(context.Background(), userID); err != nil {
				return nil, err
			}
			logger.Printf("Agent started for user %s", userID)
			return mcp.NewToolResultText("Agent loop started for user " + userID), nil
		},
	)
}

// registerStopAgent registers the stop_agent tool.
func registerStopAgent(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("stop_agent",
			mcp.WithDescription("Stop a user's monitoring loop. No-op if already stopped."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			if userID == "" {
				return nil, fmt.Errorf("user_id is required")
			}
			if err := registry.Stop(userID); err != nil {
				return nil, err
			}
			logger.Printf("Agent stopped for user %s", userID)
			return mcp.NewToolResultText("Agent loop stopped for user " + userID), nil
		},
	)
}

// registerAgentStatus registers the agent_status tool.
func registerAgentStatus(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("agent_status",
			mcp.WithDescription("Get a snapshot of a user's agent loop: running flag, last check, last plan update, recent action count."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			userID, _ := req.GetArguments()["user_id"].(string)
			loop, err := registry.Loop(userID)
			if err != nil {
				return nil, err
			}
			return jsonResult(loop.Status())
		},
	)
}

// registerActionHistory registers the get_action_history tool.
func registerActionHistory(s *server.MCPServer, registry *agent.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("get_action_history",
			mcp.WithDescription("List recent actions the agent took on the user's behalf, oldest first."),
			mcp.WithString("user_id", mcp.Required(), mcp.Description("User ID")),
			mcp.WithNumber("limit", mcp.Description("Max actions to return (default 20)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			userID, _ := args["user_id"].(string)
			limit := 20
			if v, ok := args["limit"].(float64); ok && v > 0 {
				limit = int(v)
			}
			loop, err := registry.Loop(userID)
			if err != nil {
				return nil, err
			}
			actions := loop.ActionHistory(limit)
			if len(actions) == 0 {
				return mcp.NewToolResultText("No actions recorded yet"), nil
			}
			return jsonResult(actions)
		},
	)
}
