package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// deadlineKeywords mark calendar events that represent actual work rather
// than plain appointments.
var deadlineKeywords = []string{"due", "deadline", "submit", "exam", "quiz", "assignment", "project"}

// CalendarClient reads events from and writes reminders to the user's
// Google Calendar. Without an access token it serves demo data and logs
// writes instead of performing them.
type CalendarClient struct {
	baseURL    string
	token      string
	calendarID string
	http       *http.Client
	mock       *MockGenerator
	logger     *log.Logger
	now        func() time.Time
}

// NewCalendarClient builds a calendar client. An empty token switches the
// client to demo mode.
func NewCalendarClient(token, calendarID string, logger *log.Logger) *CalendarClient {
	if logger == nil {
		logger = log.Default()
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &CalendarClient{
		baseURL:    "https://www.googleapis.com/calendar/v3",
		token:      token,
		calendarID: calendarID,
		http:       &http.Client{Timeout: 15 * time.Second},
		mock:       NewMockGenerator(),
		logger:     logger,
		now:        time.Now,
	}
}

// Name implements agent.TaskSource.
func (c *CalendarClient) Name() domain.Source { return domain.SourceCalendar }

// FetchTasks returns upcoming events that look like deadlines or study
// commitments.
func (c *CalendarClient) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	if c.token == "" {
		return c.mock.CalendarEvents(c.now(), 8), nil
	}

	tasks, err := c.fetchEvents(ctx)
	if err != nil {
		c.logger.Printf("[calendar] api fetch failed, using demo data: %v", err)
		return c.mock.CalendarEvents(c.now(), 8), nil
	}
	return tasks, nil
}

// CreateReminder writes a single event to the calendar. In demo mode the
// reminder is only logged.
func (c *CalendarClient) CreateReminder(ctx context.Context, title string, start, end time.Time, description string) error {
	if c.token == "" {
		c.logger.Printf("[calendar] demo mode, would create reminder %q at %s", title, start.Format(time.RFC3339))
		return nil
	}

	body := map[string]any{
		"summary":     title,
		"description": description,
		"start":       map[string]string{"dateTime": start.Format(time.RFC3339)},
		"end":         map[string]string{"dateTime": end.Format(time.RFC3339)},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("calendar returned %s", resp.Status)
	}
	return nil
}

// SyncSessions mirrors study sessions onto the calendar as two-hour-style
// blocks titled "Study: course - topic".
func (c *CalendarClient) SyncSessions(ctx context.Context, sessions []domain.StudySession) error {
	for _, s := range sessions {
		title := fmt.Sprintf("Study: %s - %s", s.Course, s.Topic)
		end := s.ScheduledTime.Add(time.Duration(s.DurationHours * float64(time.Hour)))
		description := "Materials: " + strings.Join(s.Materials, ", ")
		if err := c.CreateReminder(ctx, title, s.ScheduledTime, end, description); err != nil {
			return fmt.Errorf("sync session %q: %w", title, err)
		}
	}
	return nil
}

func (c *CalendarClient) fetchEvents(ctx context.Context) ([]domain.Task, error) {
	now := c.now()
	q := url.Values{}
	q.Set("timeMin", now.Format(time.RFC3339))
	q.Set("timeMax", now.AddDate(0, 0, 14).Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned %s", resp.Status)
	}

	var payload struct {
		Items []struct {
			ID          string `json:"id"`
			Summary     string `json:"summary"`
			Description string `json:"description"`
			Start       struct {
				DateTime time.Time `json:"dateTime"`
				Date     string    `json:"date"`
			} `json:"start"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar events: %w", err)
	}

	tasks := make([]domain.Task, 0, len(payload.Items))
	for _, it := range payload.Items {
		when := it.Start.DateTime
		if when.IsZero() && it.Start.Date != "" {
			when, _ = time.Parse("2006-01-02", it.Start.Date)
		}
		if when.IsZero() {
			continue
		}
		priority := domain.PriorityLow
		if mentionsDeadline(it.Summary + " " + it.Description) {
			priority = domain.PriorityMedium
		}
		tasks = append(tasks, domain.Task{
			ID:          "calendar_" + it.ID,
			Title:       it.Summary,
			Description: it.Description,
			DueDate:     when,
			Priority:    priority,
			Status:      domain.StatusPending,
			Source:      domain.SourceCalendar,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return tasks, nil
}

// mentionsDeadline reports whether event text contains deadline language.
func mentionsDeadline(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range deadlineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
