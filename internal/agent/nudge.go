package agent

import (
	"fmt"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// NeedsNudge decides whether the user should be prompted to act: critical
// health, any overdue task, or a pending high- or critical-priority task
// inside the nudge threshold window. This is only the decision; the cycle
// loop separately rate-limits how often a nudge may actually be sent.
func NeedsNudge(tasks []domain.Task, health domain.HealthReport, prefs domain.Preferences, now time.Time) bool {
	if health.Status == domain.HealthCritical {
		return true
	}
	if health.OverdueCount > 0 {
		return true
	}
	for _, t := range tasks {
		if t.Status != domain.StatusPending {
			continue
		}
		if t.Priority != domain.PriorityHigh && t.Priority != domain.PriorityCritical {
			continue
		}
		if daysUntil(now, t.DueDate) <= prefs.NudgeThresholdDays {
			return true
		}
	}
	return false
}

// NudgeMessage selects the nudge text, first matching rule wins: overdue
// tasks, then critical tasks due soon, then an at-risk health summary,
// then a positive upcoming-task summary, then generic encouragement.
func NudgeMessage(tasks []domain.Task, health domain.HealthReport) string {
	var overdue, critical, pending []domain.Task
	for _, t := range tasks {
		switch {
		case t.Status == domain.StatusOverdue:
			overdue = append(overdue, t)
		case t.Priority == domain.PriorityCritical:
			critical = append(critical, t)
		}
		if t.Status == domain.StatusPending {
			pending = append(pending, t)
		}
	}

	if len(overdue) > 0 {
		return fmt.Sprintf("⚠️ You have %d overdue task(s)! Let's get back on track. Most urgent: %s",
			len(overdue), overdue[0].Title)
	}
	if len(critical) > 0 {
		return fmt.Sprintf("🚨 %d critical task(s) due soon. Up next: %s due %s",
			len(critical), critical[0].Title, critical[0].DueDate.Format("01/02"))
	}
	if health.Status == domain.HealthAtRisk {
		return fmt.Sprintf("📊 Your academic health is at risk. Weekly workload: %.1f hours. Consider adjusting your schedule.",
			health.WeeklyHours)
	}
	if len(pending) > 0 {
		return fmt.Sprintf("✅ You're on track! Upcoming: %s due %s",
			pending[0].Title, pending[0].DueDate.Format("01/02"))
	}
	return "Keep up the great work! 🎓"
}
