package agent

import (
	"testing"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

func TestDedupe_CollapsesSameTitleSameDay(t *testing.T) {
	due := testTime.Add(48 * time.Hour)
	tasks := []domain.Task{
		task("c1", "Midterm Exam", due, domain.PriorityHigh, domain.StatusPending, 3),
		task("cal1", "midterm exam", due.Add(2*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
		task("c2", "Homework 3", due, domain.PriorityLow, domain.StatusPending, 2),
	}

	unique := Dedupe(tasks)
	if len(unique) != 2 {
		t.Fatalf("got %d tasks, want 2", len(unique))
	}
	// First occurrence wins.
	if unique[0].ID != "c1" {
		t.Errorf("kept task %s, want c1", unique[0].ID)
	}
}

func TestDedupe_SameTitleDifferentDayKept(t *testing.T) {
	tasks := []domain.Task{
		task("a", "Quiz 1", testTime.Add(24*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
		task("b", "Quiz 1", testTime.Add(72*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
	}
	if got := len(Dedupe(tasks)); got != 2 {
		t.Fatalf("got %d tasks, want 2", got)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	tasks := []domain.Task{
		task("b", "Later", testTime.Add(72*time.Hour), domain.PriorityLow, domain.StatusPending, 1),
		task("a", "Sooner", testTime.Add(24*time.Hour), domain.PriorityHigh, domain.StatusPending, 1),
	}

	once := Dedupe(tasks)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("order changed at %d: %s vs %s", i, once[i].ID, twice[i].ID)
		}
	}
	if once[0].ID != "a" {
		t.Errorf("first task %s, want a (earlier due date)", once[0].ID)
	}
}

func TestDedupe_TiesBrokenByPriority(t *testing.T) {
	due := testTime.Add(24 * time.Hour)
	tasks := []domain.Task{
		task("low", "Reading", due, domain.PriorityLow, domain.StatusPending, 1),
		task("crit", "Lab report", due, domain.PriorityCritical, domain.StatusPending, 1),
	}
	unique := Dedupe(tasks)
	if unique[0].ID != "crit" {
		t.Errorf("first task %s, want crit", unique[0].ID)
	}
}

func TestSortByUrgency(t *testing.T) {
	tasks := []domain.Task{
		task("m", "Medium soon", testTime.Add(12*time.Hour), domain.PriorityMedium, domain.StatusPending, 1),
		task("c2", "Critical later", testTime.Add(48*time.Hour), domain.PriorityCritical, domain.StatusPending, 1),
		task("c1", "Critical soon", testTime.Add(12*time.Hour), domain.PriorityCritical, domain.StatusPending, 1),
	}
	SortByUrgency(tasks)
	want := []string{"c1", "c2", "m"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, tasks[i].ID, id)
		}
	}
}
