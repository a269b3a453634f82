// SlugPilot MCP Server
// Stdio for the primary client, HTTP for external clients and health checks.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/slugpilot/slugpilot/internal/agent"
	"github.com/slugpilot/slugpilot/internal/domain"
	"github.com/slugpilot/slugpilot/internal/notify"
	"github.com/slugpilot/slugpilot/internal/policy"
	"github.com/slugpilot/slugpilot/internal/snapshot"
	"github.com/slugpilot/slugpilot/internal/sources"
	"github.com/slugpilot/slugpilot/internal/studyplan"
	"github.com/slugpilot/slugpilot/internal/tools/pilot"
)

// Version is set by -ldflags at build time.
var Version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Println("slugpilot " + Version)
			return
		}
	}

	tmpLogger := log.New(os.Stderr, "[slugpilot] ", log.LstdFlags|log.Lshortfile)
	cfg := loadConfig(tmpLogger)

	logger := setupLogger(cfg.LogFile)
	logger.Println("Starting SlugPilot MCP server...")
	logger.Printf("Snapshot database: %s", cfg.SnapshotFile)

	snapStore, err := snapshot.New(cfg.SnapshotFile)
	if err != nil {
		logger.Fatalf("Snapshot store: %v", err)
	}

	planner := studyplan.NewGenerator(studyplan.Style(cfg.Agent.StudyStyle), logger)
	registry := agent.NewRegistry(buildAgent(cfg, snapStore, planner, logger), logger)

	hooks := &server.Hooks{}
	hooks.AddAfterCallTool(func(ctx context.Context, id any, message *mcp.CallToolRequest, result *mcp.CallToolResult) {
		if message != nil {
			logger.Printf("Calling tool: %s", message.Params.Name)
		}
	})

	mcpServer := server.NewMCPServer(
		"slugpilot",
		Version,
		server.WithInstructions(instructionsText),
		server.WithHooks(hooks),
	)

	pilot.Register(mcpServer, registry, logger, pilot.WithStudyPlanner(planner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep running when daemonized (nohup, launchd, etc.)
	signal.Ignore(syscall.SIGHUP)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Live-reload planning preferences for every registered user when the
	// config file changes.
	var watcher *policy.Watcher
	if configPath := os.Getenv("SLUGPILOT_CONFIG"); configPath != "" {
		watcher = policy.NewWatcher(configPath, func(next *policy.Config) {
			for _, userID := range registry.Users() {
				eng, err := registry.Engine(userID)
				if err != nil {
					continue
				}
				eng.SetPreferences(next.DefaultPreferences)
			}
		}, logger)
		go watcher.Start(ctx)
	}

	httpShutdown := startHTTPServer(mcpServer, cfg.HTTPPort, registry, logger)

	logger.Println("Stdio ready (client connection)")
	stdioSrv := server.NewStdioServer(mcpServer)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Printf("Stdio server stopped: %v", err)
	}

	// Client disconnected -- shut everything down
	cancel()
	httpShutdown()

	if watcher != nil {
		watcher.Stop()
	}
	registry.StopAll()

	if err := snapStore.Close(); err != nil {
		logger.Printf("Warning: close snapshot store: %v", err)
	}

	logger.Println("Server stopped")
}

// buildAgent returns the Builder the registry uses to wire a new user's
// engine and cycle loop: one source client per upstream (credentials from
// the user record, config as fallback), the notification fan-out, and the
// loop tuned from config.
func buildAgent(cfg *policy.Config, snapStore *snapshot.Store, planner *studyplan.Generator, logger *log.Logger) agent.Builder {
	return func(user domain.User) (*agent.Engine, *agent.CycleLoop) {
		canvasToken := user.CanvasToken
		if canvasToken == "" {
			canvasToken = cfg.Sources.CanvasToken
		}
		calendarToken := user.CalendarToken
		if calendarToken == "" {
			calendarToken = cfg.Sources.CalendarToken
		}
		slackToken := user.SlackBotToken
		if slackToken == "" {
			slackToken = cfg.Sources.SlackBotToken
		}
		slackChannels := user.SlackChannelIDs
		if len(slackChannels) == 0 {
			slackChannels = cfg.Sources.SlackChannelIDs
		}
		piazzaEmail, piazzaPassword := user.PiazzaEmail, user.PiazzaPassword
		if piazzaEmail == "" {
			piazzaEmail, piazzaPassword = cfg.Sources.PiazzaEmail, cfg.Sources.PiazzaPassword
		}

		canvas := sources.NewCanvasClient(cfg.Sources.CanvasBaseURL, canvasToken, logger)
		calendar := sources.NewCalendarClient(calendarToken, cfg.Sources.CalendarID, logger)
		piazza := sources.NewPiazzaClient(piazzaEmail, piazzaPassword, logger)
		slack := sources.NewSlackClient(slackToken, slackChannels, logger)

		taskSources := []agent.TaskSource{canvas, calendar, piazza, slack}
		eng := agent.NewEngine(user, canvas, taskSources, logger)

		notifier := notify.NewService(slack, calendar, logger)
		loop := agent.NewCycleLoop(eng, notifier, logger,
			agent.WithCycleInterval(cfg.CycleInterval()),
			agent.WithErrorBackoff(cfg.ErrorBackoff()),
			agent.WithNudgeCooldown(cfg.NudgeCooldown()),
			agent.WithCalendarSink(calendar),
			agent.WithSnapshotStore(snapStore),
			agent.WithStudyPlanner(planner),
		)
		return eng, loop
	}
}

// startHTTPServer starts the HTTP transport in the background for
// external clients. Returns a shutdown function. Uses net.Listen to
// support port 0 (auto-assign) for running multiple instances.
func startHTTPServer(mcpServer *server.MCPServer, port int, registry *agent.Registry, logger *log.Logger) func() {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		logger.Fatalf("HTTP listen: %v", err)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port
	baseURL := fmt.Sprintf("http://localhost:%d", actualPort)

	logger.Printf("HTTP server on :%d", actualPort)
	logger.Printf("  Clients connect at: %s/mcp", baseURL)

	sseSrv := server.NewSSEServer(mcpServer, server.WithBaseURL(baseURL))
	streamSrv := server.NewStreamableHTTPServer(mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/sse", sseSrv)
	mux.Handle("/sse/", sseSrv)
	mux.Handle("/message", sseSrv)
	mux.Handle("/mcp", streamSrv)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		running := 0
		for _, userID := range registry.Users() {
			if registry.Running(userID) {
				running++
			}
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","port":%d,"users":%d,"agents_running":%d}`, actualPort, len(registry.Users()), running)
	})

	httpServer := &http.Server{Handler: mux}

	go func() {
		if err := httpServer.Serve(ln); err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	return func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}
}

// setupLogger creates a logger that writes to a log file and optionally stderr.
// When stderr is a terminal (interactive use), logs go to both stderr and the file.
// When stderr is redirected (daemon mode via nohup), logs go only to the file.
func setupLogger(logFilePath string) *log.Logger {
	var writers []io.Writer

	stderrIsTerminal := false
	if info, err := os.Stderr.Stat(); err == nil {
		stderrIsTerminal = (info.Mode() & os.ModeCharDevice) != 0
	}

	hasLogFile := false
	lower := strings.ToLower(logFilePath)
	if lower != "none" && lower != "off" && logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err == nil {
			f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writers = append(writers, f)
				hasLogFile = true
			} else {
				fmt.Fprintf(os.Stderr, "[slugpilot] Warning: cannot open log file %s: %v\n", logFilePath, err)
			}
		} else {
			fmt.Fprintf(os.Stderr, "[slugpilot] Warning: cannot create log dir %s: %v\n", filepath.Dir(logFilePath), err)
		}
	}

	if stderrIsTerminal || !hasLogFile {
		writers = append(writers, os.Stderr)
	}

	return log.New(io.MultiWriter(writers...), "[slugpilot] ", log.LstdFlags|log.Lshortfile)
}

// loadConfig loads configuration from SLUGPILOT_CONFIG or defaults.
func loadConfig(logger *log.Logger) *policy.Config {
	cfg := policy.DefaultConfig()
	if configPath := os.Getenv("SLUGPILOT_CONFIG"); configPath != "" {
		var err error
		cfg, err = policy.LoadConfig(configPath)
		if err != nil {
			logger.Printf("Warning: failed to load config %s: %v, using defaults", configPath, err)
			cfg = policy.DefaultConfig()
		}
	}
	return cfg
}

const instructionsText = `SlugPilot manages a student's academic life: it gathers deadlines from
Canvas, Calendar, Piazza, and Slack, builds prioritized weekly plans,
watches academic health, and nudges when work is slipping.

Typical flow:
 1. register_user with the student's email (source tokens optional)
 2. start_agent to begin the 15-minute monitoring loop
 3. create_weekly_plan / check_academic_health / list_tasks on demand
 4. agent_status and get_action_history to see what the agent did

Without source credentials every source serves deterministic demo data,
so the full flow works out of the box.`
