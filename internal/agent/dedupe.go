package agent

import (
	"sort"
	"strings"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// dedupeKey identifies a task for merging: the same obligation reported by
// two sources (a calendar event and a canvas deadline for one exam) shares
// a lower-cased title and a due calendar day.
type dedupeKey struct {
	title string
	day   string
}

// Dedupe merges task sequences from heterogeneous sources into one unique
// sequence, first occurrence wins, sorted ascending by due timestamp then
// priority rank. Deduplicating an already-unique sorted sequence returns
// an equal sequence.
func Dedupe(tasks []domain.Task) []domain.Task {
	seen := make(map[dedupeKey]bool, len(tasks))
	unique := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		key := dedupeKey{
			title: strings.ToLower(t.Title),
			day:   t.DueDay().Format("2006-01-02"),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, t)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		if !unique[i].DueDate.Equal(unique[j].DueDate) {
			return unique[i].DueDate.Before(unique[j].DueDate)
		}
		return unique[i].Priority.Rank() < unique[j].Priority.Rank()
	})
	return unique
}

// SortByUrgency orders tasks by priority rank (critical first), then due
// timestamp ascending. In place.
func SortByUrgency(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority.Rank() != tasks[j].Priority.Rank() {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		}
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
