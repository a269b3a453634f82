package agent

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// Registry errors, reported to the calling layer as explicit not-found or
// misuse failures. These are never retried.
var (
	ErrNotRegistered     = errors.New("agent not registered for user")
	ErrAlreadyRegistered = errors.New("agent already registered and running")
)

// Builder constructs the engine and cycle loop for one user. Supplied by
// the composition root so the registry stays free of collaborator wiring.
type Builder func(user domain.User) (*Engine, *CycleLoop)

// agentEntry couples one user's engine, loop, and running execution
// handle.
type agentEntry struct {
	engine *Engine
	loop   *CycleLoop
	cancel context.CancelFunc // nil when not running
}

// Registry supervises one cycle loop per registered user: register,
// start, stop, status. It is the only component that creates or cancels a
// loop's underlying goroutine. Per-user state is fully isolated.
type Registry struct {
	build  Builder
	logger *log.Logger

	mu     sync.RWMutex
	agents map[string]*agentEntry
}

// NewRegistry creates an empty registry.
func NewRegistry(build Builder, logger *log.Logger) *Registry {
	return &Registry{
		build:  build,
		logger: logger,
		agents: make(map[string]*agentEntry),
	}
}

// Register creates the engine and loop for a user without starting
// execution. Re-registering replaces a stopped agent; replacing a running
// one is refused.
func (r *Registry) Register(user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.agents[user.ID]; ok && existing.cancel != nil {
		return ErrAlreadyRegistered
	}

	engine, loop := r.build(user)
	r.agents[user.ID] = &agentEntry{engine: engine, loop: loop}
	r.logger.Printf("Registry: registered agent for user %s", user.ID)
	return nil
}

// Start launches the user's loop. A second start while one is running is
// a no-op.
func (r *Registry) Start(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.agents[userID]
	if !ok {
		return ErrNotRegistered
	}
	if entry.cancel != nil {
		r.logger.Printf("Registry: agent already running for user %s", userID)
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	entry.cancel = cancel
	go func() {
		entry.loop.Start(runCtx)
		// The loop may exit on its own when the parent context is
		// cancelled; release the handle so the agent reads as stopped.
		r.mu.Lock()
		if r.agents[userID] == entry && entry.cancel != nil {
			entry.cancel()
			entry.cancel = nil
		}
		r.mu.Unlock()
	}()
	r.logger.Printf("Registry: started agent for user %s", userID)
	return nil
}

// Stop signals the user's loop to exit, cancels its execution handle, and
// waits for confirmed termination. Stopping a stopped agent is a no-op.
func (r *Registry) Stop(userID string) error {
	r.mu.Lock()
	entry, ok := r.agents[userID]
	if !ok {
		r.mu.Unlock()
		return ErrNotRegistered
	}
	cancel := entry.cancel
	entry.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	entry.loop.Stop()
	cancel()
	r.logger.Printf("Registry: stopped agent for user %s", userID)
	return nil
}

// StopAll stops every running agent. Used during server shutdown.
func (r *Registry) StopAll() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		_ = r.Stop(id)
	}
}

// Engine returns the user's decision engine.
func (r *Registry) Engine(userID string) (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.agents[userID]
	if !ok {
		return nil, ErrNotRegistered
	}
	return entry.engine, nil
}

// Loop returns the user's cycle loop.
func (r *Registry) Loop(userID string) (*CycleLoop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.agents[userID]
	if !ok {
		return nil, ErrNotRegistered
	}
	return entry.loop, nil
}

// Running reports whether the user's loop is active.
func (r *Registry) Running(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.agents[userID]
	return ok && entry.cancel != nil
}

// Users returns the IDs of all registered users.
func (r *Registry) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		ids = append(ids, id)
	}
	return ids
}
