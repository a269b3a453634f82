package agent

import (
	"fmt"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// Health score deductions.
const (
	overduePenalty       = 10 // per overdue task
	criticalLoadPenalty  = 20 // flat, when more than 2 critical tasks are due within 2 days
	heavyWorkloadPenalty = 15 // flat, when the 7-day average exceeds 1.5x daily capacity
)

// ScoreHealth reduces the full task set into a single academic-health
// report. Pure: no side effects, safe to call repeatedly within a cycle.
// The score starts at 100, is reduced by overdue count, near-term
// critical load, and weekly workload pressure, and never drops below 0.
func ScoreHealth(tasks []domain.Task, prefs domain.Preferences, now time.Time) domain.HealthReport {
	var overdue, criticalUpcoming int
	var weeklyHours float64

	for _, t := range tasks {
		if t.Status == domain.StatusOverdue {
			overdue++
		}
		if t.Priority == domain.PriorityCritical && t.DueDate.After(now) && daysUntil(now, t.DueDate) <= 2 {
			criticalUpcoming++
		}
		if daysUntil(now, t.DueDate) <= 7 {
			weeklyHours += t.EffortHours()
		}
	}

	dailyAvg := 0.0
	if weeklyHours > 0 {
		dailyAvg = weeklyHours / 7
	}

	score := 100
	var warnings []string

	if overdue > 0 {
		score -= overdue * overduePenalty
		warnings = append(warnings, fmt.Sprintf("%d overdue task(s)", overdue))
	}
	if criticalUpcoming > 2 {
		score -= criticalLoadPenalty
		warnings = append(warnings, fmt.Sprintf("%d critical tasks due soon", criticalUpcoming))
	}
	if dailyAvg > prefs.DailyStudyHours*1.5 {
		score -= heavyWorkloadPenalty
		warnings = append(warnings, fmt.Sprintf("High workload: %.1f hours/day average", dailyAvg))
	}
	if score < 0 {
		score = 0
	}

	status := domain.HealthHealthy
	switch {
	case score < 60:
		status = domain.HealthCritical
	case score < 80:
		status = domain.HealthAtRisk
	}

	return domain.HealthReport{
		Score:            score,
		Status:           status,
		Warnings:         warnings,
		OverdueCount:     overdue,
		CriticalUpcoming: criticalUpcoming,
		WeeklyHours:      weeklyHours,
		DailyAverage:     dailyAvg,
	}
}
