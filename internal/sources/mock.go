// Package sources implements the upstream collaborator clients: canvas,
// calendar, piazza, and slack. Every client degrades to the deterministic
// demo generator when unconfigured or failing, so a broken upstream never
// surfaces to the planning cycle.
package sources

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// mockSeed fixes the demo data so repeated generations with the same base
// time produce the same corpus.
const mockSeed = 9120

var mockCourses = []string{
	"CS101 - Introduction to Computer Science",
	"MATH19A - Calculus for Science",
	"PHYS5A - Physics for Scientists",
	"CSE30 - Programming Abstractions",
	"STAT5 - Statistics",
}

var mockAssignmentTypes = []string{
	"homework", "assignment", "project", "lab", "quiz", "exam", "midterm", "final",
}

// MockGenerator produces realistic demo data for every source. Each
// Generate method seeds its own RNG, so output depends only on the base
// time passed in.
type MockGenerator struct{}

// NewMockGenerator returns the shared demo-data generator.
func NewMockGenerator() *MockGenerator { return &MockGenerator{} }

// CanvasDeadlines generates n graded deadlines, some past and some
// upcoming, sorted by due date.
func (g *MockGenerator) CanvasDeadlines(base time.Time, n int) []domain.Deadline {
	rng := rand.New(rand.NewSource(mockSeed))
	deadlines := make([]domain.Deadline, 0, n)

	for i := 0; i < n; i++ {
		course := mockCourses[rng.Intn(len(mockCourses))]
		kind := mockAssignmentTypes[rng.Intn(len(mockAssignmentTypes))]
		due := base.AddDate(0, 0, rng.Intn(20)-5).Add(time.Duration(9+rng.Intn(15)) * time.Hour)

		var title string
		switch kind {
		case "homework":
			title = fmt.Sprintf("Homework %d", 1+rng.Intn(10))
		case "project":
			topics := []string{"Web App", "Data Analysis", "Algorithm Design"}
			title = fmt.Sprintf("Project %d: %s", 1+rng.Intn(3), topics[rng.Intn(len(topics))])
		case "midterm", "exam", "final":
			title = titleCase(kind) + " Exam"
		case "quiz":
			title = fmt.Sprintf("Quiz %d", 1+rng.Intn(5))
		default:
			title = fmt.Sprintf("%s %d", titleCase(kind), 1+rng.Intn(5))
		}

		var points float64
		switch kind {
		case "midterm", "exam", "final":
			points = 100.0
		case "project":
			points = []float64{50, 75, 100}[rng.Intn(3)]
		default:
			points = []float64{10, 15, 20, 25}[rng.Intn(4)]
		}

		deadlines = append(deadlines, domain.Deadline{
			ID:             fmt.Sprintf("mock_%d", i),
			Title:          title,
			Course:         course,
			DueDate:        due,
			AssignmentType: kind,
			Points:         points,
			Description:    fmt.Sprintf("Complete %s for %s", title, course),
			CreatedAt:      base,
		})
	}

	sort.Slice(deadlines, func(i, j int) bool {
		return deadlines[i].DueDate.Before(deadlines[j].DueDate)
	})
	return deadlines
}

// CalendarEvents generates n upcoming calendar events that carry a
// deadline.
func (g *MockGenerator) CalendarEvents(base time.Time, n int) []domain.Task {
	rng := rand.New(rand.NewSource(mockSeed + 1))
	kinds := []struct{ name, description string }{
		{"Study Session", "Study for upcoming exam"},
		{"Group Meeting", "Project group meeting"},
		{"Office Hours", "Professor office hours"},
		{"Review Session", "Exam review session"},
	}

	tasks := make([]domain.Task, 0, n)
	for i := 0; i < n; i++ {
		kind := kinds[rng.Intn(len(kinds))]
		course := mockCourses[rng.Intn(len(mockCourses))]
		when := base.AddDate(0, 0, rng.Intn(8)).Add(time.Duration(9+rng.Intn(9)) * time.Hour)
		tasks = append(tasks, domain.Task{
			ID:             fmt.Sprintf("mock_calendar_%d", i),
			Title:          fmt.Sprintf("%s: %s", kind.name, course),
			Description:    kind.description,
			Course:         course,
			DueDate:        when,
			Priority:       domain.PriorityMedium,
			Status:         domain.StatusPending,
			EstimatedHours: 1.0,
			Source:         domain.SourceCalendar,
			CreatedAt:      base,
			UpdatedAt:      base,
		})
	}
	return tasks
}

// PiazzaAnnouncements generates board announcements that mention
// deadlines.
func (g *MockGenerator) PiazzaAnnouncements(base time.Time) []domain.Task {
	rng := rand.New(rand.NewSource(mockSeed + 2))
	announcements := []struct{ title, content string }{
		{"Deadline Extended", "The deadline for Assignment 3 has been extended to Friday"},
		{"New Assignment Posted", "Assignment 4 is now available, due next Monday"},
		{"Exam Date Changed", "Midterm exam moved to next Wednesday"},
		{"Office Hours Cancelled", "This week's office hours cancelled, rescheduled for Friday"},
	}

	tasks := make([]domain.Task, 0, len(announcements))
	for i, a := range announcements {
		course := mockCourses[rng.Intn(len(mockCourses))]
		tasks = append(tasks, domain.Task{
			ID:          fmt.Sprintf("mock_piazza_%d", i),
			Title:       "Piazza: " + a.title,
			Description: a.content,
			Course:      course,
			DueDate:     base.AddDate(0, 0, 1+rng.Intn(5)),
			Priority:    domain.PriorityMedium,
			Status:      domain.StatusPending,
			Source:      domain.SourcePiazza,
			CreatedAt:   base,
			UpdatedAt:   base,
		})
	}
	return tasks
}

// SlackMessages generates chat messages that mention deadlines.
func (g *MockGenerator) SlackMessages(base time.Time) []domain.Task {
	rng := rand.New(rand.NewSource(mockSeed + 3))
	messages := []struct{ title, content string }{
		{"Assignment Due", "Don't forget Assignment 2 is due tomorrow at 11:59pm"},
		{"Project Update", "Project milestone due Friday, make sure to submit"},
		{"Study Group", "Study group meeting tomorrow at 3pm for midterm prep"},
	}

	tasks := make([]domain.Task, 0, len(messages))
	for i, m := range messages {
		course := mockCourses[rng.Intn(len(mockCourses))]
		due := base.AddDate(0, 0, 1+rng.Intn(3)).Add(23*time.Hour + 59*time.Minute)
		tasks = append(tasks, domain.Task{
			ID:          fmt.Sprintf("mock_slack_%d", i),
			Title:       "Slack: " + m.title,
			Description: m.content,
			Course:      course,
			DueDate:     due,
			Priority:    domain.PriorityHigh,
			Status:      domain.StatusPending,
			Source:      domain.SourceSlack,
			CreatedAt:   base,
			UpdatedAt:   base,
		})
	}
	return tasks
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
