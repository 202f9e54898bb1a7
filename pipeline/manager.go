// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

type AssessmentSource interface {
	GetBySlug(ctx context.Context, slug string) (*models.Assessment, error)
}

// Manager owns live sessions. Sessions idle longer than the TTL are
// dropped lazily on the next Start or Get.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	deps        Deps
	assessments AssessmentSource
	ttl         time.Duration

	now   func() time.Time
	newID func() string
}

func NewManager(deps Deps, assessments AssessmentSource, ttl time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		deps:        deps,
		assessments: assessments,
		ttl:         ttl,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Start opens a new session. With an assessment slug the session is bound
// to that assessment and its persona; an unknown slug yields a session in
// the error state rather than an error.
func (m *Manager) Start(ctx context.Context, assessmentSlug string) (*Session, error) {
	now := m.now()
	s := newSession(m.newID(), m.deps, now)

	if assessmentSlug != "" {
		a, err := m.assessments.GetBySlug(ctx, assessmentSlug)
		switch {
		case errors.Is(err, store.ErrNotFound):
			slog.Warn("session started with unknown assessment", "slug", assessmentSlug)
			s.failLink(msgAssessmentNotFound)
		case err != nil:
			return nil, err
		default:
			s.bind(a)
		}
	}

	m.mu.Lock()
	m.sweepLocked(now)
	m.sessions[s.id] = s
	m.mu.Unlock()

	slog.Info("session started", "session_id", s.id, "assessment_slug", assessmentSlug)
	return s, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(id string) (*Session, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked(now)
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(now)
	return s, nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sweepLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.ttl {
			delete(m.sessions, id)
			slog.Debug("session expired", "session_id", id)
		}
	}
}
