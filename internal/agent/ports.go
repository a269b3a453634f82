// Package agent implements the per-user decision engine, its heuristics,
// the recurring cycle loop, and the loop registry.
package agent

import (
	"context"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// DeadlineSource fetches graded-requirement records from the academic
// system of record. Implementations fall back to deterministic demo data
// when unconfigured; a returned error means even the fallback failed.
type DeadlineSource interface {
	FetchDeadlines(ctx context.Context) ([]domain.Deadline, error)
}

// TaskSource fetches tasks from one upstream collaborator (canvas,
// calendar, piazza, slack). Implementations degrade to demo data when
// unconfigured or failing.
type TaskSource interface {
	Name() domain.Source
	FetchTasks(ctx context.Context) ([]domain.Task, error)
}

// NotificationSink delivers a nudge to the user. Returns whether the
// notification was actually sent.
type NotificationSink interface {
	Send(ctx context.Context, priority, message string) (bool, error)
}

// SummarySink posts a weekly digest of the plan and health report. Sinks
// that also implement it get the weekly summary surface in addition to
// plain nudges.
type SummarySink interface {
	SendWeeklySummary(ctx context.Context, tasks []domain.Task, health domain.HealthReport) (bool, error)
}

// CalendarSink writes reminders and study sessions back to the user's
// calendar.
type CalendarSink interface {
	CreateReminder(ctx context.Context, title string, start, end time.Time, description string) error
	SyncSessions(ctx context.Context, sessions []domain.StudySession) error
}

// SnapshotStore persists the last-seen deadline set per user so the cycle
// loop can detect due-date shifts between cycles. Keys are deadline
// identity (title + course), values the due timestamp.
type SnapshotStore interface {
	Load(userID string) (map[string]time.Time, error)
	Save(userID string, snapshot map[string]time.Time) error
}

// StudyPlanner generates study plans for upcoming exams.
type StudyPlanner interface {
	AutoCreateForUpcomingExams(deadlines []domain.Deadline, now time.Time) []domain.StudyPlan
}
