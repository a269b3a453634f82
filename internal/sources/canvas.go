package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// CanvasClient reads upcoming graded work from the Canvas LMS REST API.
// Without an API token it serves deterministic demo data instead.
type CanvasClient struct {
	baseURL string
	token   string
	http    *http.Client
	mock    *MockGenerator
	logger  *log.Logger
	now     func() time.Time
}

// NewCanvasClient builds a client for the given Canvas instance. An empty
// token switches the client to demo mode.
func NewCanvasClient(baseURL, token string, logger *log.Logger) *CanvasClient {
	if logger == nil {
		logger = log.Default()
	}
	return &CanvasClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
		mock:    NewMockGenerator(),
		logger:  logger,
		now:     time.Now,
	}
}

// Name implements agent.TaskSource.
func (c *CanvasClient) Name() domain.Source { return domain.SourceCanvas }

// FetchDeadlines returns upcoming graded deadlines, falling back to demo
// data when the client is unconfigured or the API call fails.
func (c *CanvasClient) FetchDeadlines(ctx context.Context) ([]domain.Deadline, error) {
	if c.token == "" {
		return c.mock.CanvasDeadlines(c.now(), 15), nil
	}

	deadlines, err := c.fetchUpcoming(ctx)
	if err != nil {
		c.logger.Printf("[canvas] api fetch failed, using demo data: %v", err)
		return c.mock.CanvasDeadlines(c.now(), 15), nil
	}
	return deadlines, nil
}

// FetchTasks converts deadlines into tasks with priority derived from
// urgency and effort estimated from assignment type.
func (c *CanvasClient) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	deadlines, err := c.FetchDeadlines(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now()
	tasks := make([]domain.Task, 0, len(deadlines))
	for _, d := range deadlines {
		tasks = append(tasks, domain.Task{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			Course:         d.Course,
			DueDate:        d.DueDate,
			Priority:       priorityForDue(d.DueDate, now),
			Status:         domain.StatusPending,
			EstimatedHours: estimateHours(d.AssignmentType, d.Points),
			Source:         domain.SourceCanvas,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      now,
		})
	}
	return tasks, nil
}

func (c *CanvasClient) fetchUpcoming(ctx context.Context) ([]domain.Deadline, error) {
	endpoint := c.baseURL + "/api/v1/users/self/upcoming_events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("canvas request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("canvas returned %s", resp.Status)
	}

	var events []struct {
		Title      string `json:"title"`
		Assignment *struct {
			ID             json.Number `json:"id"`
			Name           string      `json:"name"`
			DueAt          time.Time   `json:"due_at"`
			PointsPossible float64     `json:"points_possible"`
			Description    string      `json:"description"`
		} `json:"assignment"`
		ContextName string `json:"context_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("decode canvas events: %w", err)
	}

	deadlines := make([]domain.Deadline, 0, len(events))
	for _, ev := range events {
		if ev.Assignment == nil || ev.Assignment.DueAt.IsZero() {
			continue
		}
		a := ev.Assignment
		deadlines = append(deadlines, domain.Deadline{
			ID:             "canvas_" + a.ID.String(),
			Title:          a.Name,
			Course:         ev.ContextName,
			DueDate:        a.DueAt,
			AssignmentType: classifyAssignment(a.Name),
			Points:         a.PointsPossible,
			Description:    a.Description,
			CreatedAt:      c.now(),
		})
	}
	return deadlines, nil
}

// priorityForDue maps time-until-due onto a priority band.
func priorityForDue(due, now time.Time) domain.Priority {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case days <= 1:
		return domain.PriorityCritical
	case days <= 3:
		return domain.PriorityHigh
	case days <= 7:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// estimateHours guesses effort from assignment type, scaled by point
// weight for ordinary work.
func estimateHours(assignmentType string, points float64) float64 {
	switch assignmentType {
	case "exam", "midterm", "final":
		return 10.0
	case "project":
		return 15.0
	case "quiz":
		return 2.0
	}
	if points >= 50 {
		return 8.0
	}
	if points >= 25 {
		return 5.0
	}
	return 3.0
}

// classifyAssignment infers the assignment type from its title.
func classifyAssignment(title string) string {
	lower := strings.ToLower(title)
	for _, kind := range []string{"final", "midterm", "exam", "quiz", "project", "lab", "homework"} {
		if strings.Contains(lower, kind) {
			return kind
		}
	}
	return "assignment"
}
