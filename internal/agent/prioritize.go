package agent

import (
	"fmt"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// daysUntil returns whole days between now and t, truncated toward zero.
// A task due later today (or within 24h) counts as 0 days away.
func daysUntil(now, t time.Time) int {
	return int(t.Sub(now).Hours() / 24)
}

// Prioritize proposes priority and status changes based on time to
// deadline. Rules, first match per task:
//
//  1. past due and not completed: status overdue, priority critical
//  2. due within 1 day: priority critical
//  3. due within the nudge threshold: escalate one step (low to medium,
//     medium to high); critical and high are left alone
//
// Escalation is monotonic: no rule ever lowers a priority. The threshold
// rule ratchets one step per pass, so a task inside the nudge window
// climbs toward high across successive cycles until the 1-day rule takes
// over.
func Prioritize(tasks []domain.Task, prefs domain.Preferences, now time.Time) []domain.TaskPatch {
	var patches []domain.TaskPatch
	for i := range tasks {
		t := &tasks[i]
		if t.Status == domain.StatusCompleted {
			continue
		}

		if t.DueDate.Before(now) {
			patch := domain.TaskPatch{TaskID: t.ID, Reason: "past due"}
			if t.Status != domain.StatusOverdue {
				patch.Status = domain.StatusOverdue
			}
			if t.Priority != domain.PriorityCritical {
				patch.Priority = domain.PriorityCritical
			}
			if patch.Status != "" || patch.Priority != "" {
				patches = append(patches, patch)
			}
			continue
		}

		days := daysUntil(now, t.DueDate)
		switch {
		case days <= 1:
			if t.Priority != domain.PriorityCritical {
				patches = append(patches, domain.TaskPatch{
					TaskID:   t.ID,
					Priority: domain.PriorityCritical,
					Reason:   fmt.Sprintf("due in %d day(s)", days),
				})
			}
		case days <= prefs.NudgeThresholdDays:
			var next domain.Priority
			switch t.Priority {
			case domain.PriorityLow:
				next = domain.PriorityMedium
			case domain.PriorityMedium:
				next = domain.PriorityHigh
			}
			if next != "" {
				patches = append(patches, domain.TaskPatch{
					TaskID:   t.ID,
					Priority: next,
					Reason:   fmt.Sprintf("due in %d day(s), within nudge threshold", days),
				})
			}
		}
	}
	return patches
}

// ApplyPatches applies proposed changes to the task set, enforcing the
// escalation invariants no matter which heuristic produced the patch:
// priority only ever rises, and completed tasks never become overdue.
// Returns the number of tasks changed.
func ApplyPatches(tasks []domain.Task, patches []domain.TaskPatch, now time.Time) int {
	if len(patches) == 0 {
		return 0
	}
	byID := make(map[string]int, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = i
	}

	changed := 0
	for _, p := range patches {
		i, ok := byID[p.TaskID]
		if !ok {
			continue
		}
		t := &tasks[i]
		touched := false
		if p.Priority != "" && p.Priority.Rank() < t.Priority.Rank() {
			t.Priority = p.Priority
			touched = true
		}
		if p.Status == domain.StatusOverdue && t.Status != domain.StatusCompleted && t.Status != domain.StatusOverdue {
			t.Status = domain.StatusOverdue
			touched = true
		}
		if touched {
			t.UpdatedAt = now
			changed++
		}
	}
	return changed
}
