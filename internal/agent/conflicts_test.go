package agent

import (
	"testing"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

func TestDetectConflicts_TimeConflictStrictlyOverDouble(t *testing.T) {
	prefs := testPrefs() // 3.0h daily capacity, so the limit is 6.0h
	due := testTime.Add(48 * time.Hour)

	// Exactly 6.0 hours: no conflict.
	atLimit := []domain.Task{
		task("a", "A", due, domain.PriorityMedium, domain.StatusPending, 3.0),
		task("b", "B", due, domain.PriorityMedium, domain.StatusPending, 3.0),
	}
	if got := DetectConflicts(atLimit, prefs); len(got) != 0 {
		t.Fatalf("at exactly 2x capacity: got %d conflicts, want 0", len(got))
	}

	// Just over: conflict.
	over := []domain.Task{
		task("a", "A", due, domain.PriorityMedium, domain.StatusPending, 3.0),
		task("b", "B", due, domain.PriorityMedium, domain.StatusPending, 3.01),
	}
	conflicts := DetectConflicts(over, prefs)
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].Type != domain.ConflictTime {
		t.Errorf("type = %s, want time_conflict", conflicts[0].Type)
	}
	if conflicts[0].TotalHours != 6.01 {
		t.Errorf("total hours = %.2f, want 6.01", conflicts[0].TotalHours)
	}
	if !conflicts[0].Date.Equal(over[0].DueDay()) {
		t.Errorf("date = %v, want %v", conflicts[0].Date, over[0].DueDay())
	}
}

func TestDetectConflicts_DefaultEffortCounts(t *testing.T) {
	// Three tasks with no estimate default to 3h each: 9h > 6h limit.
	due := testTime.Add(48 * time.Hour)
	tasks := []domain.Task{
		task("a", "A", due, domain.PriorityMedium, domain.StatusPending, 0),
		task("b", "B", due, domain.PriorityMedium, domain.StatusPending, 0),
		task("c", "C", due, domain.PriorityMedium, domain.StatusPending, 0),
	}
	conflicts := DetectConflicts(tasks, testPrefs())
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].TotalHours != 9.0 {
		t.Errorf("total hours = %.1f, want 9.0", conflicts[0].TotalHours)
	}
}

func TestDetectConflicts_PriorityConflict(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < 4; i++ {
		// Spread over days so no time conflict mixes in.
		due := testTime.Add(time.Duration(24*(i+1)) * time.Hour)
		tasks = append(tasks, task(string(rune('a'+i)), "T", due, domain.PriorityCritical, domain.StatusPending, 1))
	}

	conflicts := DetectConflicts(tasks, testPrefs())
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if conflicts[0].Type != domain.ConflictPriority {
		t.Errorf("type = %s, want priority_conflict", conflicts[0].Type)
	}
	if conflicts[0].Count != 4 {
		t.Errorf("count = %d, want 4", conflicts[0].Count)
	}

	// Exactly 3 critical tasks is allowed.
	if got := DetectConflicts(tasks[:3], testPrefs()); len(got) != 0 {
		t.Errorf("3 critical tasks: got %d conflicts, want 0", len(got))
	}
}

func TestDetectConflicts_BothTypesIndependent(t *testing.T) {
	due := testTime.Add(24 * time.Hour)
	var tasks []domain.Task
	for i := 0; i < 4; i++ {
		tasks = append(tasks, task(string(rune('a'+i)), "T", due, domain.PriorityCritical, domain.StatusPending, 2.0))
	}

	conflicts := DetectConflicts(tasks, testPrefs())
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2 (one per type)", len(conflicts))
	}
}
