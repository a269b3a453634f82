package agent

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// testTime is the fixed "now" used across the agent tests.
var testTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", 0)
}

func testPrefs() domain.Preferences {
	return domain.DefaultPreferences()
}

func task(id, title string, due time.Time, priority domain.Priority, status domain.Status, hours float64) domain.Task {
	return domain.Task{
		ID:             id,
		Title:          title,
		DueDate:        due,
		Priority:       priority,
		Status:         status,
		EstimatedHours: hours,
		Source:         domain.SourceCanvas,
	}
}

// fakeSource is a TaskSource returning a fixed task list.
type fakeSource struct {
	name  domain.Source
	mu    sync.Mutex
	tasks []domain.Task
	err   error
	calls int
}

func (f *fakeSource) Name() domain.Source { return f.name }

func (f *fakeSource) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeSource) setTasks(tasks []domain.Task) {
	f.mu.Lock()
	f.tasks = tasks
	f.mu.Unlock()
}

// fakeDeadlines is a DeadlineSource returning a fixed deadline list.
type fakeDeadlines struct {
	mu        sync.Mutex
	deadlines []domain.Deadline
}

func (f *fakeDeadlines) FetchDeadlines(ctx context.Context) ([]domain.Deadline, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Deadline, len(f.deadlines))
	copy(out, f.deadlines)
	return out, nil
}

func (f *fakeDeadlines) setDeadlines(d []domain.Deadline) {
	f.mu.Lock()
	f.deadlines = d
	f.mu.Unlock()
}

// fakeNotifier records every Send.
type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeNotifier) Send(ctx context.Context, priority, message string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, priority+": "+message)
	return true, nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sends)
}

// memSnapshots is an in-memory SnapshotStore.
type memSnapshots struct {
	mu   sync.Mutex
	data map[string]map[string]time.Time
}

func newMemSnapshots() *memSnapshots {
	return &memSnapshots{data: make(map[string]map[string]time.Time)}
}

func (m *memSnapshots) Load(userID string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]time.Time, len(m.data[userID]))
	for k, v := range m.data[userID] {
		out[k] = v
	}
	return out, nil
}

func (m *memSnapshots) Save(userID string, snapshot map[string]time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]time.Time, len(snapshot))
	for k, v := range snapshot {
		cp[k] = v
	}
	m.data[userID] = cp
	return nil
}

func testUser() domain.User {
	return domain.User{
		ID:          "user-1",
		Email:       "student@ucsc.edu",
		Name:        "student",
		Preferences: domain.DefaultPreferences(),
	}
}

func testEngine(src *fakeSource, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithClock(func() time.Time { return testTime })}, opts...)
	return NewEngine(testUser(), nil, []TaskSource{src}, testLogger(), opts...)
}
