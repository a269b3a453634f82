package agent

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// taskCacheTTL is how long a gathered task set stays fresh for operations
// triggered outside the cycle loop.
const taskCacheTTL = 15 * time.Minute

// Engine is the per-user decision engine. It owns the current weekly plan
// and conflict list, re-derives the task set from the source collaborators
// every cycle, and applies the planning heuristics in a fixed order.
//
// The mutex serializes the cycle loop and directly triggered API calls;
// there is never more than one in-flight operation per user.
type Engine struct {
	user      domain.User
	deadlines DeadlineSource
	sources   []TaskSource
	logger    *log.Logger
	now       func() time.Time

	mu             sync.Mutex
	prefs          domain.Preferences
	tasks          []domain.Task
	gatheredAt     time.Time
	weeklyPlan     []domain.Task
	conflicts      []domain.Conflict
	lastPlanUpdate time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's time source (for tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a decision engine for one user. Sources are queried in
// the given order on every gather; deadlines may be nil when no academic
// system of record is configured.
func NewEngine(user domain.User, deadlines DeadlineSource, sources []TaskSource, logger *log.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		user:      user,
		deadlines: deadlines,
		sources:   sources,
		logger:    logger,
		now:       time.Now,
		prefs:     user.Preferences,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// User returns the engine's user.
func (e *Engine) User() domain.User { return e.user }

// Preferences returns the active planning preferences.
func (e *Engine) Preferences() domain.Preferences {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.prefs
}

// SetPreferences swaps the planning preferences. Takes effect on the next
// operation; the running cycle is not interrupted.
func (e *Engine) SetPreferences(p domain.Preferences) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prefs = p
}

// GatherTasks aggregates tasks from all configured sources into one
// deduplicated, sorted set. A failing source is logged and skipped; the
// sources themselves substitute deterministic demo data when unconfigured,
// so a degraded upstream never surfaces as an error here. The returned
// slice is a copy; callers may filter or re-sort it freely.
func (e *Engine) GatherTasks(ctx context.Context) []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks := e.gather(ctx)
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	return out
}

func (e *Engine) gather(ctx context.Context) []domain.Task {
	var all []domain.Task
	for _, src := range e.sources {
		tasks, err := src.FetchTasks(ctx)
		if err != nil {
			e.logger.Printf("Engine[%s]: source %s failed: %v", e.user.ID, src.Name(), err)
			continue
		}
		all = append(all, tasks...)
	}
	e.tasks = Dedupe(all)
	e.gatheredAt = e.now()
	return e.tasks
}

// current returns the cached task set, regathering when empty or stale.
// Callers hold e.mu.
func (e *Engine) current(ctx context.Context) []domain.Task {
	if e.tasks == nil || e.now().Sub(e.gatheredAt) > taskCacheTTL {
		return e.gather(ctx)
	}
	return e.tasks
}

// CreateWeeklyPlan builds the weekly plan: gathered tasks due within the
// next 7 days are prioritized, checked for conflicts, and distributed
// across days. The engine's plan and conflict list are replaced.
func (e *Engine) CreateWeeklyPlan(ctx context.Context) []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan(ctx)
}

func (e *Engine) plan(ctx context.Context) []domain.Task {
	now := e.now()
	all := e.current(ctx)

	weekEnd := now.AddDate(0, 0, 7)
	upcoming := make([]domain.Task, 0, len(all))
	for _, t := range all {
		if !t.DueDate.After(weekEnd) {
			upcoming = append(upcoming, t)
		}
	}

	patches := Prioritize(upcoming, e.prefs, now)
	ApplyPatches(upcoming, patches, now)
	ApplyPatches(e.tasks, patches, now)
	SortByUrgency(upcoming)

	e.conflicts = DetectConflicts(upcoming, e.prefs)
	e.weeklyPlan = Distribute(upcoming, e.prefs, now)
	e.lastPlanUpdate = now
	return e.weeklyPlan
}

// RevisePlan regathers tasks from every source and rebuilds the weekly
// plan. Used when deadlines have shifted or a conflict needs resolving.
func (e *Engine) RevisePlan(ctx context.Context) []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gather(ctx)
	return e.plan(ctx)
}

// CheckAcademicHealth scores the current task set. Read-only.
func (e *Engine) CheckAcademicHealth(ctx context.Context) domain.HealthReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ScoreHealth(e.current(ctx), e.prefs, e.now())
}

// ShouldNudge reports whether the user should be prompted to act. The
// cycle loop applies its own rate limit on top of this decision.
func (e *Engine) ShouldNudge(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks := e.current(ctx)
	health := ScoreHealth(tasks, e.prefs, e.now())
	return NeedsNudge(tasks, health, e.prefs, e.now())
}

// MakeAutonomousDecisions runs the decision rules over the current task
// set and applies the escalating patches. A second immediate invocation
// finds the set already escalated and decides nothing further.
func (e *Engine) MakeAutonomousDecisions(ctx context.Context) []domain.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	tasks := e.current(ctx)
	decisions := Decide(tasks, e.prefs, now)
	ApplyPatches(e.tasks, patchesOf(decisions), now)
	return decisions
}

// GetClarifyingQuestions renders the current conflict list as questions
// for the user. Empty when the last planning pass found no conflicts.
func (e *Engine) GetClarifyingQuestions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var questions []string
	for _, c := range e.conflicts {
		switch c.Type {
		case domain.ConflictTime:
			questions = append(questions, fmt.Sprintf(
				"You have %.1f hours of work scheduled for %s. Which tasks are most important to complete?",
				c.TotalHours, c.Date.Format("2006-01-02")))
		case domain.ConflictPriority:
			questions = append(questions, fmt.Sprintf(
				"You have %d critical tasks. Which ones can be deprioritized or extended?", c.Count))
		}
	}
	return questions
}

// Conflicts returns a copy of the conflict list from the last planning
// pass.
func (e *Engine) Conflicts() []domain.Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Conflict, len(e.conflicts))
	copy(out, e.conflicts)
	return out
}

// WeeklyPlan returns a copy of the current weekly plan.
func (e *Engine) WeeklyPlan() []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Task, len(e.weeklyPlan))
	copy(out, e.weeklyPlan)
	return out
}

// LastPlanUpdate returns when the weekly plan was last rebuilt (zero if
// never).
func (e *Engine) LastPlanUpdate() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPlanUpdate
}

// FetchDeadlines returns the user's deadline records, or nil when no
// deadline source is configured.
func (e *Engine) FetchDeadlines(ctx context.Context) []domain.Deadline {
	if e.deadlines == nil {
		return nil
	}
	deadlines, err := e.deadlines.FetchDeadlines(ctx)
	if err != nil {
		e.logger.Printf("Engine[%s]: deadline fetch failed: %v", e.user.ID, err)
		return nil
	}
	return deadlines
}
