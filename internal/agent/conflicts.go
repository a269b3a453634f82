package agent

import (
	"fmt"
	"sort"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// maxCriticalTasks is how many critical tasks can coexist before a
// priority conflict is reported.
const maxCriticalTasks = 3

// DetectConflicts scans a prioritized task set for workload collisions.
// A time conflict is reported for every day whose summed estimated effort
// exceeds twice the preferred daily capacity; one priority conflict is
// reported when more than maxCriticalTasks tasks are critical. The two
// checks are independent.
func DetectConflicts(tasks []domain.Task, prefs domain.Preferences) []domain.Conflict {
	var conflicts []domain.Conflict

	dailyHours := make(map[string]float64)
	days := make(map[string]domain.Task)
	for _, t := range tasks {
		day := t.DueDay().Format("2006-01-02")
		dailyHours[day] += t.EffortHours()
		if _, ok := days[day]; !ok {
			days[day] = t
		}
	}

	keys := make([]string, 0, len(dailyHours))
	for day := range dailyHours {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	for _, day := range keys {
		hours := dailyHours[day]
		if hours > prefs.DailyStudyHours*2 {
			conflicts = append(conflicts, domain.Conflict{
				Type:       domain.ConflictTime,
				Date:       days[day].DueDay(),
				TotalHours: hours,
				Message:    fmt.Sprintf("Too many tasks on %s: %.1f hours estimated", day, hours),
			})
		}
	}

	critical := 0
	for _, t := range tasks {
		if t.Priority == domain.PriorityCritical {
			critical++
		}
	}
	if critical > maxCriticalTasks {
		conflicts = append(conflicts, domain.Conflict{
			Type:    domain.ConflictPriority,
			Count:   critical,
			Message: fmt.Sprintf("Too many critical tasks (%d). Consider reprioritizing.", critical),
		})
	}

	return conflicts
}
