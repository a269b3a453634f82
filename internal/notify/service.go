// Package notify delivers nudges and summaries to the user over whatever
// channels are configured.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// Messenger posts a chat message. Returns whether it was delivered.
type Messenger interface {
	PostMessage(ctx context.Context, text string) (bool, error)
}

// ReminderWriter creates a calendar reminder.
type ReminderWriter interface {
	CreateReminder(ctx context.Context, title string, start, end time.Time, description string) error
}

// Service fans a notification out to chat and calendar. Either channel
// may be nil; the log line is always written, so a fully unconfigured
// service still surfaces the nudge. Implements agent.NotificationSink.
type Service struct {
	messenger Messenger
	calendar  ReminderWriter
	logger    *log.Logger
	now       func() time.Time
}

// NewService builds a notification service. messenger and calendar may be
// nil.
func NewService(messenger Messenger, calendar ReminderWriter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		messenger: messenger,
		calendar:  calendar,
		logger:    logger,
		now:       time.Now,
	}
}

// Send delivers a notification on every configured channel. The returned
// bool reports whether the notification reached the user at all, which is
// always true since the log channel cannot fail.
func (s *Service) Send(ctx context.Context, priority, message string) (bool, error) {
	s.logger.Printf("[NOTIFICATION] %s: %s", strings.ToUpper(priority), message)

	if s.messenger != nil {
		if _, err := s.messenger.PostMessage(ctx, message); err != nil {
			s.logger.Printf("[notify] chat delivery failed: %v", err)
		}
	}

	if s.calendar != nil && (priority == "critical" || priority == "high") {
		start := s.now().Add(30 * time.Minute)
		err := s.calendar.CreateReminder(ctx, "⚠️ "+firstLine(message), start, start.Add(15*time.Minute), message)
		if err != nil {
			s.logger.Printf("[notify] calendar reminder failed: %v", err)
		}
	}
	return true, nil
}

// SendWeeklySummary posts a digest of the week's plan and health.
func (s *Service) SendWeeklySummary(ctx context.Context, tasks []domain.Task, health domain.HealthReport) (bool, error) {
	var b strings.Builder
	b.WriteString("📋 Weekly Summary\n")
	fmt.Fprintf(&b, "Health: %s (score %d)\n", health.Status, health.Score)
	fmt.Fprintf(&b, "Tasks this week: %d\n", len(tasks))

	counts := map[domain.Priority]int{}
	for _, t := range tasks {
		counts[t.Priority]++
	}
	for _, p := range []domain.Priority{domain.PriorityCritical, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
		if counts[p] > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", p, counts[p])
		}
	}
	for _, w := range health.Warnings {
		b.WriteString("• " + w + "\n")
	}
	return s.Send(ctx, "low", strings.TrimRight(b.String(), "\n"))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
