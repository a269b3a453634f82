package agent

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

const (
	// defaultCycleInterval is how long the loop sleeps between cycles.
	defaultCycleInterval = 15 * time.Minute

	// defaultErrorBackoff is the shorter sleep after a failed cycle.
	defaultErrorBackoff = 60 * time.Second

	// defaultNudgeCooldown is the minimum gap between two sent nudges,
	// regardless of how often the nudge decision fires.
	defaultNudgeCooldown = 6 * time.Hour

	// planMaxAge is how old the weekly plan may get before a cycle
	// rebuilds it.
	planMaxAge = 24 * time.Hour
)

// CycleLoop drives one user's decision engine on a recurring interval.
// Each cycle gathers tasks, applies autonomous decisions, keeps the weekly
// plan fresh, reacts to deadline shifts and academic health, sends
// rate-limited nudges, and resolves time conflicts. A cycle error is
// logged and followed by a shorter backoff sleep; the loop only exits on
// Stop or context cancellation.
type CycleLoop struct {
	engine    *Engine
	notifier  NotificationSink
	calendar  CalendarSink
	snapshots SnapshotStore
	planner   StudyPlanner
	logger    *log.Logger

	interval      time.Duration
	errorBackoff  time.Duration
	nudgeCooldown time.Duration
	now           func() time.Time

	mu               sync.Mutex
	running          bool
	lastCheck        time.Time
	lastPlanCreation time.Time
	lastNudge        time.Time
	history          *actionHistory
	stopCh           chan struct{}
	doneCh           chan struct{}
}

// LoopOption configures the cycle loop.
type LoopOption func(*CycleLoop)

// WithCycleInterval sets the sleep between cycles.
func WithCycleInterval(d time.Duration) LoopOption {
	return func(l *CycleLoop) { l.interval = d }
}

// WithErrorBackoff sets the sleep after a failed cycle.
func WithErrorBackoff(d time.Duration) LoopOption {
	return func(l *CycleLoop) { l.errorBackoff = d }
}

// WithNudgeCooldown sets the minimum gap between sent nudges.
func WithNudgeCooldown(d time.Duration) LoopOption {
	return func(l *CycleLoop) { l.nudgeCooldown = d }
}

// WithCalendarSink attaches a calendar for study-session write-back.
func WithCalendarSink(c CalendarSink) LoopOption {
	return func(l *CycleLoop) { l.calendar = c }
}

// WithSnapshotStore attaches a store for deadline-shift detection.
func WithSnapshotStore(s SnapshotStore) LoopOption {
	return func(l *CycleLoop) { l.snapshots = s }
}

// WithStudyPlanner attaches a study-plan generator for upcoming exams.
func WithStudyPlanner(p StudyPlanner) LoopOption {
	return func(l *CycleLoop) { l.planner = p }
}

// WithLoopClock overrides the loop's time source (for tests).
func WithLoopClock(now func() time.Time) LoopOption {
	return func(l *CycleLoop) { l.now = now }
}

// NewCycleLoop creates a loop for one engine. The notifier is required;
// calendar, snapshot store, and study planner are optional features.
func NewCycleLoop(engine *Engine, notifier NotificationSink, logger *log.Logger, opts ...LoopOption) *CycleLoop {
	l := &CycleLoop{
		engine:        engine,
		notifier:      notifier,
		logger:        logger,
		interval:      defaultCycleInterval,
		errorBackoff:  defaultErrorBackoff,
		nudgeCooldown: defaultNudgeCooldown,
		now:           time.Now,
		history:       newActionHistory(historyCapacity),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Start runs the loop until ctx is cancelled or Stop is called. Starting
// an already running loop returns immediately.
func (l *CycleLoop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	stopCh, doneCh := l.stopCh, l.doneCh
	l.mu.Unlock()

	defer close(doneCh)
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	l.logger.Printf("CycleLoop[%s]: started (interval=%s)", l.engine.User().ID, l.interval)

	for {
		sleep := l.interval
		if err := l.RunCycle(ctx); err != nil {
			l.logger.Printf("CycleLoop[%s]: cycle error: %v", l.engine.User().ID, err)
			sleep = l.errorBackoff
		}

		select {
		case <-ctx.Done():
			l.logger.Printf("CycleLoop[%s]: stopped (context cancelled)", l.engine.User().ID)
			return
		case <-stopCh:
			l.logger.Printf("CycleLoop[%s]: stopped", l.engine.User().ID)
			return
		case <-time.After(sleep):
		}
	}
}

// Stop signals the loop to exit and waits for its confirmed termination.
// Stopping a loop that is not running is a no-op.
func (l *CycleLoop) Stop() {
	l.mu.Lock()
	if !l.running || l.stopCh == nil {
		l.mu.Unlock()
		return
	}
	l.running = false
	stopCh, doneCh := l.stopCh, l.doneCh
	l.stopCh = nil
	l.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Running reports whether the loop is active.
func (l *CycleLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Status returns a snapshot of the loop's state.
func (l *CycleLoop) Status() domain.AgentStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return domain.AgentStatus{
		Running:         l.running,
		LastCheck:       l.lastCheck,
		LastPlanUpdate:  l.lastPlanCreation,
		LastNudge:       l.lastNudge,
		RecentActions:   l.history.Len(),
		WeeklyPlanTasks: len(l.engine.WeeklyPlan()),
	}
}

// ActionHistory returns up to limit most recent recorded actions, oldest
// first.
func (l *CycleLoop) ActionHistory(limit int) []domain.CycleAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.Recent(limit)
}

// RunCycle executes one full cycle: gather, decide, plan, study plans,
// health, nudge, conflicts. A panic inside a cycle is converted into an
// error so the loop survives.
func (l *CycleLoop) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return l.runCycle(ctx)
}

func (l *CycleLoop) runCycle(ctx context.Context) error {
	cycleStart := l.now()
	userID := l.engine.User().ID
	var actions []domain.CycleAction

	// 1. Gather current state.
	tasks := l.engine.GatherTasks(ctx)

	// 2. Autonomous decisions.
	decisions := l.engine.MakeAutonomousDecisions(ctx)
	if len(decisions) > 0 {
		l.logger.Printf("CycleLoop[%s]: made %d autonomous decisions", userID, len(decisions))
		actions = append(actions, domain.CycleAction{
			Action:    "autonomous_decisions",
			Details:   map[string]any{"count": len(decisions)},
			Timestamp: cycleStart,
		})
	}

	// 3. Keep the weekly plan fresh (daily, or when none exists yet).
	if l.shouldUpdatePlan() {
		plan := l.engine.CreateWeeklyPlan(ctx)
		l.mu.Lock()
		l.lastPlanCreation = cycleStart
		l.mu.Unlock()
		actions = append(actions, domain.CycleAction{
			Action:    "plan_updated",
			Details:   map[string]any{"tasks_count": len(plan)},
			Timestamp: cycleStart,
		})
	}

	// 4. Detect deadline shifts and revise.
	if shifts := l.detectDeadlineShifts(ctx); len(shifts) > 0 {
		l.logger.Printf("CycleLoop[%s]: detected %d deadline shift(s), revising plan", userID, len(shifts))
		l.engine.RevisePlan(ctx)
		actions = append(actions, domain.CycleAction{
			Action:    "plan_revised",
			Details:   map[string]any{"reason": "deadline_shifts", "shifts": len(shifts)},
			Timestamp: cycleStart,
		})
	}

	// 5. Auto-create study plans for upcoming exams.
	if l.engine.Preferences().AutoCreateStudyPlans && l.planner != nil {
		if created := l.autoCreateStudyPlans(ctx); created > 0 {
			actions = append(actions, domain.CycleAction{
				Action:    "study_plans_created",
				Details:   map[string]any{"count": created},
				Timestamp: cycleStart,
			})
		}
	}

	// 6. Academic health escalation.
	health := l.engine.CheckAcademicHealth(ctx)
	actions = append(actions, l.handleHealth(ctx, health)...)

	// 7. Proactive, rate-limited nudge.
	actions = append(actions, l.maybeNudge(ctx, tasks, health)...)

	// 8. Resolve time conflicts autonomously.
	actions = append(actions, l.resolveConflicts(ctx)...)

	l.mu.Lock()
	l.lastCheck = cycleStart
	for _, a := range actions {
		l.history.Add(a)
	}
	l.mu.Unlock()

	l.logger.Printf("CycleLoop[%s]: cycle complete, %d action(s)", userID, len(actions))
	return nil
}

// SendWeeklySummary composes the current plan and health report and posts
// them through the notification sink. Returns false when the sink has no
// summary surface.
func (l *CycleLoop) SendWeeklySummary(ctx context.Context) (bool, error) {
	sink, ok := l.notifier.(SummarySink)
	if !ok {
		return false, nil
	}
	plan := l.engine.CreateWeeklyPlan(ctx)
	health := l.engine.CheckAcademicHealth(ctx)
	sent, err := sink.SendWeeklySummary(ctx, plan, health)
	if err != nil {
		return false, err
	}
	if sent {
		l.mu.Lock()
		l.history.Add(domain.CycleAction{
			Action:    "weekly_summary_sent",
			Details:   map[string]any{"tasks_count": len(plan), "health_score": health.Score},
			Timestamp: l.now(),
		})
		l.mu.Unlock()
	}
	return sent, nil
}

// shouldUpdatePlan reports whether the weekly plan is missing or older
// than a day.
func (l *CycleLoop) shouldUpdatePlan() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lastPlanCreation.IsZero() {
		return true
	}
	return l.now().Sub(l.lastPlanCreation) >= planMaxAge
}

// deadlineShift records one observed due-date change between cycles.
type deadlineShift struct {
	Title  string
	Course string
	OldDue time.Time
	NewDue time.Time
}

// detectDeadlineShifts compares freshly fetched deadlines against the
// persisted snapshot from the previous cycle. The first observation of a
// user's deadlines only seeds the snapshot and reports nothing.
func (l *CycleLoop) detectDeadlineShifts(ctx context.Context) []deadlineShift {
	if l.snapshots == nil {
		return nil
	}
	deadlines := l.engine.FetchDeadlines(ctx)
	if len(deadlines) == 0 {
		return nil
	}
	userID := l.engine.User().ID

	prev, err := l.snapshots.Load(userID)
	if err != nil {
		l.logger.Printf("CycleLoop[%s]: snapshot load failed: %v", userID, err)
		return nil
	}

	fresh := make(map[string]time.Time, len(deadlines))
	var shifts []deadlineShift
	for _, d := range deadlines {
		key := d.Title + "|" + d.Course
		fresh[key] = d.DueDate
		if old, ok := prev[key]; ok && !old.Equal(d.DueDate) {
			shifts = append(shifts, deadlineShift{
				Title:  d.Title,
				Course: d.Course,
				OldDue: old,
				NewDue: d.DueDate,
			})
		}
	}

	if err := l.snapshots.Save(userID, fresh); err != nil {
		l.logger.Printf("CycleLoop[%s]: snapshot save failed: %v", userID, err)
	}
	if len(prev) == 0 {
		return nil
	}
	return shifts
}

// autoCreateStudyPlans generates study plans for upcoming exams and syncs
// their sessions to the calendar. Returns the number of plans created.
func (l *CycleLoop) autoCreateStudyPlans(ctx context.Context) int {
	deadlines := l.engine.FetchDeadlines(ctx)
	if len(deadlines) == 0 {
		return 0
	}
	plans := l.planner.AutoCreateForUpcomingExams(deadlines, l.now())
	if len(plans) == 0 {
		return 0
	}
	if l.calendar != nil {
		for _, plan := range plans {
			if err := l.calendar.SyncSessions(ctx, plan.Sessions); err != nil {
				l.logger.Printf("CycleLoop[%s]: study session sync failed: %v", l.engine.User().ID, err)
			}
		}
	}
	return len(plans)
}

// handleHealth reacts to the health report: critical health triggers an
// emergency plan and a critical notification; at-risk health with overdue
// tasks triggers a warning.
func (l *CycleLoop) handleHealth(ctx context.Context, health domain.HealthReport) []domain.CycleAction {
	var actions []domain.CycleAction
	now := l.now()

	switch health.Status {
	case domain.HealthCritical:
		l.logger.Printf("CycleLoop[%s]: critical health, creating emergency plan", l.engine.User().ID)
		plan := l.engine.CreateWeeklyPlan(ctx)
		msg := fmt.Sprintf(
			"🚨 URGENT: Your academic health is critical (%d/100). I've created an emergency plan with %d prioritized tasks. Focus on overdue items first!",
			health.Score, len(plan))
		l.send(ctx, "critical", msg)
		actions = append(actions, domain.CycleAction{
			Action:    "emergency_plan_created",
			Details:   map[string]any{"health_score": health.Score},
			Timestamp: now,
		})
	case domain.HealthAtRisk:
		if health.OverdueCount > 0 {
			msg := fmt.Sprintf(
				"⚠️ You have %d overdue task(s). Let's prioritize getting caught up. I've updated your plan to focus on these first.",
				health.OverdueCount)
			l.send(ctx, "high", msg)
			actions = append(actions, domain.CycleAction{
				Action:    "overdue_warning_sent",
				Details:   map[string]any{"overdue_count": health.OverdueCount},
				Timestamp: now,
			})
		}
	}
	return actions
}

// maybeNudge sends a nudge when the decision fires and the cooldown has
// elapsed. The decision and the rate limit are separate gates; both must
// pass.
func (l *CycleLoop) maybeNudge(ctx context.Context, tasks []domain.Task, health domain.HealthReport) []domain.CycleAction {
	if !l.engine.ShouldNudge(ctx) {
		return nil
	}

	l.mu.Lock()
	lastNudge := l.lastNudge
	l.mu.Unlock()
	now := l.now()
	if !lastNudge.IsZero() && now.Sub(lastNudge) < l.nudgeCooldown {
		return nil
	}

	msg := NudgeMessage(tasks, health)
	ok, err := l.notifier.Send(ctx, string(health.Status), msg)
	if err != nil {
		l.logger.Printf("CycleLoop[%s]: nudge send failed: %v", l.engine.User().ID, err)
		return nil
	}
	if !ok {
		return nil
	}

	l.mu.Lock()
	l.lastNudge = now
	l.mu.Unlock()
	return []domain.CycleAction{{
		Action:    "nudge_sent",
		Details:   map[string]any{"message": msg},
		Timestamp: now,
	}}
}

// resolveConflicts redistributes the plan for every time conflict found in
// the last planning pass and tells the user what happened.
func (l *CycleLoop) resolveConflicts(ctx context.Context) []domain.CycleAction {
	var actions []domain.CycleAction
	for _, c := range l.engine.Conflicts() {
		if c.Type != domain.ConflictTime {
			continue
		}
		l.logger.Printf("CycleLoop[%s]: resolving time conflict on %s", l.engine.User().ID, c.Date.Format("2006-01-02"))
		l.engine.RevisePlan(ctx)
		msg := fmt.Sprintf(
			"I detected a scheduling conflict on %s (%.1f hours). I've redistributed your tasks to balance the workload.",
			c.Date.Format("2006-01-02"), c.TotalHours)
		l.send(ctx, "medium", msg)
		actions = append(actions, domain.CycleAction{
			Action:    "conflict_resolved",
			Details:   map[string]any{"conflict_type": string(domain.ConflictTime)},
			Timestamp: l.now(),
		})
	}
	return actions
}

// send delivers a notification, logging failures instead of propagating
// them into the cycle.
func (l *CycleLoop) send(ctx context.Context, priority, message string) {
	if l.notifier == nil {
		return
	}
	if _, err := l.notifier.Send(ctx, priority, message); err != nil {
		l.logger.Printf("CycleLoop[%s]: notification failed: %v", l.engine.User().ID, err)
	}
}
