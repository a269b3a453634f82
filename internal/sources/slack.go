package sources

import (
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

// SlackClient reads deadline mentions from course channels and posts
// nudges back. Without a bot token it serves demo data and logs posts.
type SlackClient struct {
	baseURL  string
	token    string
	channels []string
	http     *http.Client
	mock     *MockGenerator
	logger   *log.Logger
	now      func() time.Time
}

// NewSlackClient builds a slack client watching the given channel IDs. An
// empty token switches the client to demo mode.
func NewSlackClient(token string, channels []string, logger *log.Logger) *SlackClient {
	if logger == nil {
		logger = log.Default()
	}
	return &SlackClient{
		baseURL:  "https://slack.com/api",
		token:    token,
		channels: channels,
		http:     &http.Client{Timeout: 15 * time.Second},
		mock:     NewMockGenerator(),
		logger:   logger,
		now:      time.Now,
	}
}

// Name implements agent.TaskSource.
func (c *SlackClient) Name() domain.Source { return domain.SourceSlack }

// FetchTasks returns recent channel messages that mention deadlines.
func (c *SlackClient) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	if c.token == "" || len(c.channels) == 0 {
		return c.mock.SlackMessages(c.now()), nil
	}

	var tasks []domain.Task
	for _, channel := range c.channels {
		msgs, err := c.fetchHistory(ctx, channel)
		if err != nil {
			c.logger.Printf("[slack] fetch %s failed, using demo data: %v", channel, err)
			return c.mock.SlackMessages(c.now()), nil
		}
		tasks = append(tasks, msgs...)
	}
	return tasks, nil
}

// PostMessage posts to the first watched channel. Returns whether a
// message was actually delivered.
func (c *SlackClient) PostMessage(ctx context.Context, text string) (bool, error) {
	if c.token == "" || len(c.channels) == 0 {
		c.logger.Printf("[slack] demo mode, would post: %s", text)
		return false, nil
	}

	body, err := json.Marshal(map[string]string{
		"channel": c.channels[0],
		"text":    text,
	})
	if err != nil {
		return false, fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", strings.NewReader(string(body)))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("slack request: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode slack response: %w", err)
	}
	if !result.OK {
		return false, fmt.Errorf("slack api error: %s", result.Error)
	}
	return true, nil
}

func (c *SlackClient) fetchHistory(ctx context.Context, channel string) ([]domain.Task, error) {
	q := url.Values{}
	q.Set("channel", channel)
	q.Set("limit", "50")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/conversations.history?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		OK       bool   `json:"ok"`
		Error    string `json:"error"`
		Messages []struct {
			Text string `json:"text"`
			TS   string `json:"ts"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode slack history: %w", err)
	}
	if !payload.OK {
		return nil, fmt.Errorf("slack api error: %s", payload.Error)
	}

	now := c.now()
	tasks := make([]domain.Task, 0)
	for _, m := range payload.Messages {
		if !mentionsDeadline(m.Text) {
			continue
		}
		title := truncate(m.Text, 60)
		tasks = append(tasks, domain.Task{
			ID:          "slack_" + channel + "_" + m.TS,
			Title:       "Slack: " + title,
			Description: m.Text,
			DueDate:     now.AddDate(0, 0, 2),
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusPending,
			Source:      domain.SourceSlack,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return tasks, nil
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
