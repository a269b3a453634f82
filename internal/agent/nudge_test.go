package agent

import (
	"strings"
	"testing"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

func TestNeedsNudge(t *testing.T) {
	prefs := testPrefs()

	tests := []struct {
		name   string
		tasks  []domain.Task
		health domain.HealthReport
		want   bool
	}{
		{
			name:   "critical health always nudges",
			health: domain.HealthReport{Status: domain.HealthCritical},
			want:   true,
		},
		{
			name:   "overdue count nudges",
			health: domain.HealthReport{Status: domain.HealthHealthy, OverdueCount: 1},
			want:   true,
		},
		{
			name: "high priority within threshold nudges",
			tasks: []domain.Task{
				task("a", "Soon", testTime.Add(48*time.Hour), domain.PriorityHigh, domain.StatusPending, 1),
			},
			health: domain.HealthReport{Status: domain.HealthHealthy},
			want:   true,
		},
		{
			name: "medium priority within threshold does not nudge",
			tasks: []domain.Task{
				task("a", "Soon", testTime.Add(48*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
			},
			health: domain.HealthReport{Status: domain.HealthHealthy},
			want:   false,
		},
		{
			name: "high priority outside threshold does not nudge",
			tasks: []domain.Task{
				task("a", "Far", testTime.Add(10*24*time.Hour), domain.PriorityHigh, domain.StatusPending, 1),
			},
			health: domain.HealthReport{Status: domain.HealthHealthy},
			want:   false,
		},
		{
			name: "completed high priority does not nudge",
			tasks: []domain.Task{
				task("a", "Done", testTime.Add(24*time.Hour), domain.PriorityHigh, domain.StatusCompleted, 1),
			},
			health: domain.HealthReport{Status: domain.HealthHealthy},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsNudge(tt.tasks, tt.health, prefs, testTime); got != tt.want {
				t.Errorf("NeedsNudge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNudgeMessage_RuleOrder(t *testing.T) {
	overdue := task("o", "Old homework", testTime.Add(-24*time.Hour), domain.PriorityCritical, domain.StatusOverdue, 1)
	critical := task("c", "Exam prep", testTime.Add(24*time.Hour), domain.PriorityCritical, domain.StatusPending, 1)
	pending := task("p", "Reading", testTime.Add(48*time.Hour), domain.PriorityLow, domain.StatusPending, 1)

	healthy := domain.HealthReport{Status: domain.HealthHealthy}

	tests := []struct {
		name   string
		tasks  []domain.Task
		health domain.HealthReport
		want   string
	}{
		{"overdue wins", []domain.Task{overdue, critical}, healthy, "overdue"},
		{"critical next", []domain.Task{critical, pending}, healthy, "critical"},
		{"at risk summary", []domain.Task{}, domain.HealthReport{Status: domain.HealthAtRisk, WeeklyHours: 12}, "at risk"},
		{"positive with pending", []domain.Task{pending}, healthy, "on track"},
		{"generic fallback", nil, healthy, "Keep up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NudgeMessage(tt.tasks, tt.health)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("message %q does not mention %q", msg, tt.want)
			}
		})
	}
}

func TestNudgeMessage_NamesMostUrgent(t *testing.T) {
	tasks := []domain.Task{
		task("o", "Essay draft", testTime.Add(-24*time.Hour), domain.PriorityCritical, domain.StatusOverdue, 1),
	}
	msg := NudgeMessage(tasks, domain.HealthReport{Status: domain.HealthAtRisk})
	if !strings.Contains(msg, "Essay draft") {
		t.Errorf("message %q does not name the overdue task", msg)
	}
}
