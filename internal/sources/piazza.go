package sources

import (
	"context"
	"log"
	"time"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// PiazzaClient reads course-board announcements. Piazza has no public
// API, so the client runs in demo mode unless credentials and a custom
// fetcher are supplied.
type PiazzaClient struct {
	email    string
	password string
	mock     *MockGenerator
	logger   *log.Logger
	now      func() time.Time
}

// NewPiazzaClient builds a piazza client. Without credentials it serves
// demo announcements.
func NewPiazzaClient(email, password string, logger *log.Logger) *PiazzaClient {
	if logger == nil {
		logger = log.Default()
	}
	return &PiazzaClient{
		email:    email,
		password: password,
		mock:     NewMockGenerator(),
		logger:   logger,
		now:      time.Now,
	}
}

// Name implements agent.TaskSource.
func (c *PiazzaClient) Name() domain.Source { return domain.SourcePiazza }

// FetchTasks returns announcements that mention deadlines.
func (c *PiazzaClient) FetchTasks(ctx context.Context) ([]domain.Task, error) {
	if c.email == "" || c.password == "" {
		return c.mock.PiazzaAnnouncements(c.now()), nil
	}
	// The unofficial piazza endpoint requires a session cookie dance that
	// is not worth maintaining; announcements come from demo data until a
	// sanctioned API exists.
	c.logger.Printf("[piazza] no supported api, using demo announcements")
	return c.mock.PiazzaAnnouncements(c.now()), nil
}
