package agent

import (
	"testing"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

func TestDecide_OverdueAutoPrioritized(t *testing.T) {
	tasks := []domain.Task{
		task("a", "Late", testTime.Add(-24*time.Hour), domain.PriorityMedium, domain.StatusOverdue, 1),
	}
	decisions := Decide(tasks, testPrefs(), testTime)
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if d.Type != domain.DecisionAutoPrioritize {
		t.Errorf("type = %s, want auto_prioritize", d.Type)
	}
	if d.Patch == nil || d.Patch.Priority != domain.PriorityCritical {
		t.Errorf("patch = %+v, want critical priority", d.Patch)
	}
}

func TestDecide_EscalationRules(t *testing.T) {
	tests := []struct {
		name     string
		task     domain.Task
		wantType domain.DecisionType
		wantPrio domain.Priority
	}{
		{
			name:     "due tomorrow escalates to critical",
			task:     task("a", "Soon", testTime.Add(20*time.Hour), domain.PriorityHigh, domain.StatusPending, 1),
			wantType: domain.DecisionAutoEscalate,
			wantPrio: domain.PriorityCritical,
		},
		{
			name:     "low due in 2 days escalates to medium",
			task:     task("a", "Low", testTime.Add(49*time.Hour), domain.PriorityLow, domain.StatusPending, 1),
			wantType: domain.DecisionAutoEscalate,
			wantPrio: domain.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decisions := Decide([]domain.Task{tt.task}, testPrefs(), testTime)
			if len(decisions) != 1 {
				t.Fatalf("got %d decisions, want 1", len(decisions))
			}
			if decisions[0].Type != tt.wantType {
				t.Errorf("type = %s, want %s", decisions[0].Type, tt.wantType)
			}
			if decisions[0].Patch.Priority != tt.wantPrio {
				t.Errorf("patch priority = %s, want %s", decisions[0].Patch.Priority, tt.wantPrio)
			}
		})
	}
}

func TestDecide_BreakdownAdvisory(t *testing.T) {
	tasks := []domain.Task{
		task("a", "Big project", testTime.Add(5*24*time.Hour), domain.PriorityMedium, domain.StatusPending, 15),
	}
	decisions := Decide(tasks, testPrefs(), testTime)
	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	if decisions[0].Type != domain.DecisionSuggestBreakdown {
		t.Errorf("type = %s, want suggest_breakdown", decisions[0].Type)
	}
	if decisions[0].Patch != nil {
		t.Error("advisory decision carries a patch")
	}
}

func TestDecide_BufferSuggestion(t *testing.T) {
	var tasks []domain.Task
	for i := 0; i < 4; i++ {
		due := testTime.Add(time.Duration(72+24*i) * time.Hour)
		tasks = append(tasks, task(string(rune('a'+i)), "Crit", due, domain.PriorityCritical, domain.StatusPending, 1))
	}

	decisions := Decide(tasks, testPrefs(), testTime)
	buffers := 0
	for _, d := range decisions {
		if d.Type == domain.DecisionSuggestBuffer {
			buffers++
		}
	}
	if buffers != 1 {
		t.Errorf("got %d buffer suggestions, want exactly 1", buffers)
	}
}

func TestDecide_OneTaskMultipleRules(t *testing.T) {
	// Pending, due tomorrow, 10h estimate: escalation and breakdown both
	// fire for the same task.
	tasks := []domain.Task{
		task("a", "Crunch", testTime.Add(20*time.Hour), domain.PriorityMedium, domain.StatusPending, 10),
	}
	decisions := Decide(tasks, testPrefs(), testTime)
	if len(decisions) != 2 {
		t.Fatalf("got %d decisions, want 2", len(decisions))
	}
}

func TestDecide_IdempotentAfterApply(t *testing.T) {
	tasks := []domain.Task{
		task("a", "Soon", testTime.Add(20*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
		task("b", "Low", testTime.Add(40*time.Hour), domain.PriorityLow, domain.StatusPending, 1),
	}

	first := Decide(tasks, testPrefs(), testTime)
	ApplyPatches(tasks, patchesOf(first), testTime)

	second := Decide(tasks, testPrefs(), testTime)
	for _, d := range second {
		if d.Patch != nil {
			t.Errorf("second pass still escalates: %+v", d)
		}
	}
}
