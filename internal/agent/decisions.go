package agent

import (
	"fmt"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// largeTaskHours is the estimated effort above which a task breakdown is
// suggested.
const largeTaskHours = 8.0

// Decide runs the four autonomous decision rules over the task set and
// returns a decision record per trigger. The rules are independent and
// not mutually exclusive; one task can trigger several. Escalating
// decisions carry a patch, advisory ones (suggest_*) do not; the caller
// applies the patches. Running Decide again on an already patched set
// produces no further escalations.
func Decide(tasks []domain.Task, prefs domain.Preferences, now time.Time) []domain.Decision {
	var decisions []domain.Decision

	// Rule 1: overdue tasks are always critical.
	for _, t := range tasks {
		if t.Status != domain.StatusOverdue || t.Priority == domain.PriorityCritical {
			continue
		}
		decisions = append(decisions, domain.Decision{
			Type:   domain.DecisionAutoPrioritize,
			Task:   t.Title,
			Reason: "Task is overdue",
			Action: "Set priority to critical",
			Patch:  &domain.TaskPatch{TaskID: t.ID, Priority: domain.PriorityCritical, Reason: "overdue"},
		})
	}

	// Rule 2: escalate pending tasks by deadline proximity.
	for _, t := range tasks {
		if t.Status != domain.StatusPending {
			continue
		}
		days := daysUntil(now, t.DueDate)
		switch {
		case days <= 1 && t.Priority != domain.PriorityCritical:
			decisions = append(decisions, domain.Decision{
				Type:   domain.DecisionAutoEscalate,
				Task:   t.Title,
				Reason: fmt.Sprintf("Due in %d day(s)", days),
				Action: fmt.Sprintf("Escalated from %s to critical", t.Priority),
				Patch:  &domain.TaskPatch{TaskID: t.ID, Priority: domain.PriorityCritical, Reason: "deadline imminent"},
			})
		case days <= 2 && t.Priority == domain.PriorityLow:
			decisions = append(decisions, domain.Decision{
				Type:   domain.DecisionAutoEscalate,
				Task:   t.Title,
				Reason: fmt.Sprintf("Due in %d days", days),
				Action: "Escalated from low to medium",
				Patch:  &domain.TaskPatch{TaskID: t.ID, Priority: domain.PriorityMedium, Reason: "deadline approaching"},
			})
		}
	}

	// Rule 3: suggest breaking down large pending tasks. Advisory only.
	for _, t := range tasks {
		if t.Status == domain.StatusPending && t.EstimatedHours > largeTaskHours {
			decisions = append(decisions, domain.Decision{
				Type:   domain.DecisionSuggestBreakdown,
				Task:   t.Title,
				Reason: fmt.Sprintf("Large task (%.0fh estimated)", t.EstimatedHours),
				Action: "Consider breaking into smaller subtasks",
			})
		}
	}

	// Rule 4: too many pending critical tasks. Advisory only, one record.
	criticalPending := 0
	for _, t := range tasks {
		if t.Priority == domain.PriorityCritical && t.Status == domain.StatusPending {
			criticalPending++
		}
	}
	if criticalPending > maxCriticalTasks {
		decisions = append(decisions, domain.Decision{
			Type:   domain.DecisionSuggestBuffer,
			Reason: fmt.Sprintf("%d critical tasks detected", criticalPending),
			Action: "Consider requesting extensions or reprioritizing",
		})
	}

	return decisions
}

// patchesOf collects the patches carried by escalating decisions.
func patchesOf(decisions []domain.Decision) []domain.TaskPatch {
	var patches []domain.TaskPatch
	for _, d := range decisions {
		if d.Patch != nil {
			patches = append(patches, *d.Patch)
		}
	}
	return patches
}
