package onboarding

import (
	"context"
	"strings"
	"sync"
	"time"

	"clientkit/internal/domain/project"
	"clientkit/internal/payment"
	apperrors "clientkit/pkg/errors"
	"clientkit/pkg/token"

	"go.uber.org/zap"
)

const (
	defaultClientName = "Client"
	msgSessionID      = "failed to generate session id"
)

type ProjectFinder interface {
	GetByPublicID(ctx context.Context, fragment string) (*project.Project, error)
}

// Manager owns the live onboarding sessions. Sessions are in memory only and
// expire after sitting idle for the configured TTL.
type Manager struct {
	projects  ProjectFinder
	recorder  Recorder
	processor payment.Processor
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Wizard
}

type ManagerConfig struct {
	Projects  ProjectFinder
	Recorder  Recorder
	Processor payment.Processor
	TTL       time.Duration
	Logger    *zap.Logger
}

func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		projects:  cfg.Projects,
		recorder:  cfg.Recorder,
		processor: cfg.Processor,
		ttl:       cfg.TTL,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*Wizard),
	}
}

// Start opens a session for the project behind a public link fragment.
func (m *Manager) Start(ctx context.Context, publicID string, client Client) (*Wizard, error) {
	p, err := m.projects.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if p.Status != project.StatusPublished {
		return nil, ErrNotPublished
	}

	client.Name = strings.TrimSpace(client.Name)
	client.Email = strings.TrimSpace(client.Email)
	if client.Name == "" {
		client.Name = defaultClientName
	}

	id, err := token.GenerateSessionID()
	if err != nil {
		return nil, apperrors.InternalServer(msgSessionID, err)
	}

	w := newWizard(id, p, client, wizardDeps{
		recorder:  m.recorder,
		processor: m.processor,
		logger:    m.logger,
		now:       m.now,
	})

	m.mu.Lock()
	m.sweepLocked()
	m.sessions[w.ID()] = w
	m.mu.Unlock()

	m.logger.Info("onboarding session started",
		zap.String("session_id", w.ID()),
		zap.String("project_id", p.ID),
	)
	return w, nil
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	w, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	w.touch(m.now())
	return w, nil
}

// Close ends a session and abandons any pending payment.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	w, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	w.Close()
	return nil
}

// CloseAll ends every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Wizard)
	m.mu.Unlock()

	for _, w := range sessions {
		w.Close()
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked()
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked() int {
	if m.ttl <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for id, w := range m.sessions {
		if w.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			w.Close()
			removed++
		}
	}
	if removed > 0 {
		m.logger.Debug("expired onboarding sessions", zap.Int("count", removed))
	}
	return removed
}
