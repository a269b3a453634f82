package agent

import (
	"sort"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// Distribute rebalances tasks across days so no single day exceeds 1.5x
// the preferred daily capacity. Days are processed in calendar order,
// tasks within a day in priority order. When adding a task would tip a
// day over the limit, its due date is moved back exactly one day (time of
// day preserved), but never earlier than today. This is a greedy
// single-step smoothing pass: the shift is not iterated further back and
// the previous day's own load is not re-checked.
//
// The input is not modified; the returned plan holds adjusted copies in
// day-then-priority order.
func Distribute(tasks []domain.Task, prefs domain.Preferences, now time.Time) []domain.Task {
	byDay := make(map[string][]domain.Task)
	for _, t := range tasks {
		day := t.DueDay().Format("2006-01-02")
		byDay[day] = append(byDay[day], t)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	limit := prefs.DailyStudyHours * 1.5

	plan := make([]domain.Task, 0, len(tasks))
	for _, day := range days {
		dayTasks := byDay[day]
		sort.SliceStable(dayTasks, func(i, j int) bool {
			return dayTasks[i].Priority.Rank() < dayTasks[j].Priority.Rank()
		})

		var dayHours float64
		for _, t := range dayTasks {
			hours := t.EffortHours()
			if dayHours+hours > limit {
				prevDay := t.DueDay().AddDate(0, 0, -1)
				if !prevDay.Before(today) {
					t.DueDate = t.DueDate.AddDate(0, 0, -1)
				}
			}
			// The accumulator counts the task against its original day
			// even when it was shifted, so one overloaded day cannot
			// cascade every following task backwards.
			dayHours += hours
			plan = append(plan, t)
		}
	}

	return plan
}
