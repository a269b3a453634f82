// Package studyplan turns upcoming exams into scheduled study sessions.
package studyplan

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// examKeywords identify deadlines that warrant a study plan.
var examKeywords = []string{"exam", "midterm", "final", "test", "quiz"}

// sessionHours is the length of one study block.
const sessionHours = 2.0

// Style shapes how hours are spread across the days before an exam.
type Style string

const (
	// StyleSpread uses slightly fewer total hours across more days.
	StyleSpread Style = "spread"
	// StyleBalanced uses the base estimate unchanged.
	StyleBalanced Style = "balanced"
	// StyleCram front-loads more hours into fewer days.
	StyleCram Style = "cram"
)

// Generator builds study plans for exams from their deadline records.
type Generator struct {
	style  Style
	logger *log.Logger
}

// NewGenerator returns a generator with the given study style.
func NewGenerator(style Style, logger *log.Logger) *Generator {
	if style == "" {
		style = StyleBalanced
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{style: style, logger: logger}
}

// IsExam reports whether a deadline looks like an exam.
func IsExam(d domain.Deadline) bool {
	text := strings.ToLower(d.Title + " " + d.AssignmentType)
	for _, kw := range examKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Generate builds a plan of study sessions between now and the exam date,
// scheduled inside the user's preferred study windows.
func (g *Generator) Generate(exam domain.Deadline, prefs domain.Preferences, now time.Time) domain.StudyPlan {
	total := g.estimateHours(exam)

	daysAvailable := int(exam.DueDate.Sub(now).Hours() / 24)
	if daysAvailable > prefs.StudyPlanDaysBeforeExam {
		daysAvailable = prefs.StudyPlanDaysBeforeExam
	}
	if daysAvailable < 1 {
		daysAvailable = 1
	}

	startHour := preferredStartHour(prefs.PreferredStudyTimes)
	sessions := make([]domain.StudySession, 0)
	remaining := total
	for day := daysAvailable; day >= 1 && remaining > 0; day-- {
		length := sessionHours
		if remaining < length {
			length = remaining
		}
		when := exam.DueDate.AddDate(0, 0, -day)
		when = time.Date(when.Year(), when.Month(), when.Day(), startHour, 0, 0, 0, when.Location())
		sessions = append(sessions, domain.StudySession{
			ID:            uuid.NewString(),
			Course:        exam.Course,
			Topic:         sessionTopic(exam.Title, len(sessions)+1),
			DurationHours: length,
			ScheduledTime: when,
			Materials:     []string{"Lecture notes", "Practice problems", "Past " + strings.ToLower(exam.AssignmentType) + "s"},
		})
		remaining -= length
	}

	// Hours beyond one session per day stack as extra blocks on the
	// closest days to the exam.
	for day := 1; remaining > 0 && day <= daysAvailable; day++ {
		length := sessionHours
		if remaining < length {
			length = remaining
		}
		when := exam.DueDate.AddDate(0, 0, -day)
		when = time.Date(when.Year(), when.Month(), when.Day(), startHour+3, 0, 0, 0, when.Location())
		sessions = append(sessions, domain.StudySession{
			ID:            uuid.NewString(),
			Course:        exam.Course,
			Topic:         sessionTopic(exam.Title, len(sessions)+1),
			DurationHours: length,
			ScheduledTime: when,
			Materials:     []string{"Review summary", "Flashcards"},
		})
		remaining -= length
	}

	return domain.StudyPlan{
		ID:         uuid.NewString(),
		Course:     exam.Course,
		ExamDate:   exam.DueDate,
		ExamTitle:  exam.Title,
		Sessions:   sessions,
		TotalHours: total,
		CreatedAt:  now,
		Status:     "active",
	}
}

// AutoCreateForUpcomingExams builds plans for every exam-like deadline
// inside the planning window. Implements agent.StudyPlanner.
func (g *Generator) AutoCreateForUpcomingExams(deadlines []domain.Deadline, now time.Time) []domain.StudyPlan {
	prefs := domain.DefaultPreferences()
	return g.AutoCreateWithPreferences(deadlines, prefs, now)
}

// AutoCreateWithPreferences is AutoCreateForUpcomingExams with explicit
// user preferences.
func (g *Generator) AutoCreateWithPreferences(deadlines []domain.Deadline, prefs domain.Preferences, now time.Time) []domain.StudyPlan {
	window := now.AddDate(0, 0, prefs.StudyPlanDaysBeforeExam)
	plans := make([]domain.StudyPlan, 0)
	for _, d := range deadlines {
		if !IsExam(d) {
			continue
		}
		if d.DueDate.Before(now) || d.DueDate.After(window) {
			continue
		}
		plan := g.Generate(d, prefs, now)
		g.logger.Printf("[studyplan] created plan for %q (%s), %d sessions over %.1fh",
			d.Title, d.Course, len(plan.Sessions), plan.TotalHours)
		plans = append(plans, plan)
	}
	return plans
}

// estimateHours derives total study hours from exam type and study style.
func (g *Generator) estimateHours(exam domain.Deadline) float64 {
	text := strings.ToLower(exam.Title + " " + exam.AssignmentType)
	var base float64
	switch {
	case strings.Contains(text, "final"):
		base = 20.0
	case strings.Contains(text, "midterm"):
		base = 12.0
	case strings.Contains(text, "quiz"):
		base = 3.0
	default:
		base = 10.0
	}
	switch g.style {
	case StyleCram:
		return base * 1.2
	case StyleSpread:
		return base * 0.9
	default:
		return base
	}
}

func sessionTopic(examTitle string, n int) string {
	return examTitle + " review, part " + strconv.Itoa(n)
}

// preferredStartHour parses the first preferred window ("09:00-12:00")
// and returns its start hour, defaulting to 09:00.
func preferredStartHour(windows []string) int {
	if len(windows) == 0 {
		return 9
	}
	start, _, ok := strings.Cut(windows[0], "-")
	if !ok {
		return 9
	}
	hh, _, ok := strings.Cut(strings.TrimSpace(start), ":")
	if !ok {
		return 9
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 9
	}
	return hour
}
