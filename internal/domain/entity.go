// Package domain holds student-life entities and agent records.
// It has no dependencies on other packages.
package domain

import "time"

// Priority is the urgency class of a task.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort rank of a priority (critical first).
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	return p.Rank() < 4
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
)

// Source identifies which collaborator produced a task.
type Source string

const (
	SourceCanvas   Source = "canvas"
	SourceCalendar Source = "calendar"
	SourcePiazza   Source = "piazza"
	SourceSlack    Source = "slack"
	SourceAgent    Source = "agent"
)

// Task is a uniform unit of obligation derived from any source.
// Invariant: Status overdue implies DueDate is in the past and the task
// was never completed.
type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Course         string    `json:"course,omitempty"`
	DueDate        time.Time `json:"due_date"`
	Priority       Priority  `json:"priority"`
	Status         Status    `json:"status"`
	EstimatedHours float64   `json:"estimated_hours,omitempty"` // 0 = no estimate
	Source         Source    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// defaultEffortHours is assumed for tasks with no estimate.
const defaultEffortHours = 3.0

// EffortHours returns the estimated effort, defaulting when unset.
func (t Task) EffortHours() float64 {
	if t.EstimatedHours <= 0 {
		return defaultEffortHours
	}
	return t.EstimatedHours
}

// DueDay returns the calendar day the task is due (midnight, local).
func (t Task) DueDay() time.Time {
	y, m, d := t.DueDate.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.DueDate.Location())
}

// Deadline is a graded-requirement record from the academic system of
// record (Canvas). Immutable once fetched.
type Deadline struct {
	ID             string    `json:"id,omitempty"`
	Title          string    `json:"title"`
	Course         string    `json:"course"`
	DueDate        time.Time `json:"due_date"`
	AssignmentType string    `json:"assignment_type,omitempty"` // homework, project, quiz, exam, midterm, final
	Points         float64   `json:"points,omitempty"`
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// StudySession is one scheduled block of study time within a plan.
type StudySession struct {
	ID            string    `json:"id,omitempty"`
	Course        string    `json:"course"`
	Topic         string    `json:"topic"`
	DurationHours float64   `json:"duration_hours"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Materials     []string  `json:"materials,omitempty"`
	Completed     bool      `json:"completed"`
}

// StudyPlan is an ordered sequence of study sessions covering one exam.
type StudyPlan struct {
	ID         string         `json:"id,omitempty"`
	Course     string         `json:"course"`
	ExamDate   time.Time      `json:"exam_date"`
	ExamTitle  string         `json:"exam_title"`
	Sessions   []StudySession `json:"sessions"`
	TotalHours float64        `json:"total_hours"`
	CreatedAt  time.Time      `json:"created_at"`
	Status     string         `json:"status"` // active, completed, cancelled
}

// Preferences is per-user planning configuration. Read-only input to all
// heuristics; immutable within a cycle.
type Preferences struct {
	NotificationFrequency   string   `json:"notification_frequency" yaml:"notification_frequency"` // real-time, hourly, daily, weekly
	NudgeThresholdDays      int      `json:"nudge_threshold_days" yaml:"nudge_threshold_days"`
	DailyStudyHours         float64  `json:"preferred_study_hours_per_day" yaml:"preferred_study_hours_per_day"`
	PreferredStudyTimes     []string `json:"preferred_study_times" yaml:"preferred_study_times"` // "09:00-12:00"
	AutoCreateStudyPlans    bool     `json:"auto_create_study_plans" yaml:"auto_create_study_plans"`
	StudyPlanDaysBeforeExam int      `json:"study_plan_days_before_exam" yaml:"study_plan_days_before_exam"`
}

// DefaultPreferences returns the standard planning configuration.
func DefaultPreferences() Preferences {
	return Preferences{
		NotificationFrequency:   "daily",
		NudgeThresholdDays:      3,
		DailyStudyHours:         3.0,
		PreferredStudyTimes:     []string{"09:00-12:00", "14:00-17:00"},
		AutoCreateStudyPlans:    true,
		StudyPlanDaysBeforeExam: 7,
	}
}

// User is a registered student.
type User struct {
	ID              string      `json:"id"`
	Email           string      `json:"email"`
	Name            string      `json:"name"`
	CanvasToken     string      `json:"canvas_token,omitempty"`
	CalendarToken   string      `json:"calendar_token,omitempty"`
	PiazzaEmail     string      `json:"piazza_email,omitempty"`
	PiazzaPassword  string      `json:"piazza_password,omitempty"`
	SlackBotToken   string      `json:"slack_bot_token,omitempty"`
	SlackChannelIDs []string    `json:"slack_channel_ids,omitempty"`
	Preferences     Preferences `json:"preferences"`
}

// ConflictType distinguishes workload collision variants.
type ConflictType string

const (
	ConflictTime     ConflictType = "time_conflict"
	ConflictPriority ConflictType = "priority_conflict"
)

// Conflict is a detected scheduling collision. Ephemeral: recomputed on
// every planning pass, never accumulated.
type Conflict struct {
	Type       ConflictType `json:"type"`
	Date       time.Time    `json:"date,omitempty"`        // time_conflict: the overloaded day
	TotalHours float64      `json:"total_hours,omitempty"` // time_conflict: summed effort that day
	Count      int          `json:"count,omitempty"`       // priority_conflict: critical task count
	Message    string       `json:"message"`
}

// HealthStatus is the qualitative academic-health signal.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthCritical HealthStatus = "critical"
)

// HealthReport summarizes overdue load, near-term critical load, and
// weekly workload pressure into a single 0-100 score.
type HealthReport struct {
	Score            int          `json:"score"`
	Status           HealthStatus `json:"status"`
	Warnings         []string     `json:"warnings"`
	OverdueCount     int          `json:"overdue_count"`
	CriticalUpcoming int          `json:"critical_upcoming"`
	WeeklyHours      float64      `json:"weekly_hours"`
	DailyAverage     float64      `json:"daily_average"`
}

// DecisionType classifies an autonomous decision.
type DecisionType string

const (
	DecisionAutoPrioritize   DecisionType = "auto_prioritize"
	DecisionAutoEscalate     DecisionType = "auto_escalate"
	DecisionSuggestBreakdown DecisionType = "suggest_breakdown"
	DecisionSuggestBuffer    DecisionType = "suggest_buffer"
)

// Decision is one autonomous decision record. Mutating decisions carry a
// patch; advisory decisions (suggest_*) carry none.
type Decision struct {
	Type   DecisionType `json:"type"`
	Task   string       `json:"task,omitempty"`
	Reason string       `json:"reason"`
	Action string       `json:"action"`
	Patch  *TaskPatch   `json:"-"`
}

// TaskPatch is a proposed change to one task. Heuristics return patches
// instead of mutating tasks; the engine applies them in a fixed order so
// two heuristics cannot double-escalate the same task.
type TaskPatch struct {
	TaskID   string   `json:"task_id"`
	Priority Priority `json:"priority,omitempty"` // "" = leave unchanged
	Status   Status   `json:"status,omitempty"`   // "" = leave unchanged
	Reason   string   `json:"reason,omitempty"`
}

// CycleAction is one entry in the bounded agent action history.
type CycleAction struct {
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// AgentStatus is a snapshot of one user's cycle loop.
type AgentStatus struct {
	Running         bool      `json:"is_running"`
	LastCheck       time.Time `json:"last_check,omitzero"`
	LastPlanUpdate  time.Time `json:"last_plan_update,omitzero"`
	LastNudge       time.Time `json:"last_nudge,omitzero"`
	RecentActions   int       `json:"recent_actions_count"`
	WeeklyPlanTasks int       `json:"weekly_plan_tasks"`
}
