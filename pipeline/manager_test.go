// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

type fakeAssessments struct {
	bySlug map[string]*models.Assessment
	err    error
}

func (f *fakeAssessments) GetBySlug(ctx context.Context, slug string) (*models.Assessment, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.bySlug[slug]
	if !ok {
		return nil, store.ErrNotFound
	}
	return a, nil
}

func newTestManager(ttl time.Duration) (*Manager, *time.Time) {
	pid := "p-server"
	assessments := &fakeAssessments{bySlug: map[string]*models.Assessment{
		"abc123": {ID: "asm-1", PersonaID: &pid, ShareSlug: "abc123"},
	}}
	deps := Deps{
		Personas:  &fakePersonas{byID: map[string]*models.Persona{"p-server": serverPersona()}},
		Responses: &fakeSink{},
		Analyzer:  &fixedAnalyzer{},
	}
	m := NewManager(deps, assessments, ttl)

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	m.now = func() time.Time { return now }
	m.newID = func() string { n++; return fmt.Sprintf("sess-%d", n) }
	return m, &now
}

func TestManagerStartAndGet(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	s, err := m.Start(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", s.ID())

	got, err := m.Get("sess-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerStartWithAssessment(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	s, err := m.Start(context.Background(), "abc123")
	require.NoError(t, err)
	v := s.View()
	assert.True(t, v.FixedPersona)
	require.NotNil(t, v.AssessmentID)
	assert.Equal(t, "asm-1", *v.AssessmentID)

	s, err = m.Start(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, StateError, s.View().State)
	assert.Equal(t, msgAssessmentNotFound, s.View().Error)
}

func TestManagerDeadLinkSurvivesRestart(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	s, err := m.Start(context.Background(), "missing")
	require.NoError(t, err)
	require.NoError(t, s.Restart())

	v := s.View()
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, msgAssessmentNotFound, v.Error)
	assert.Nil(t, v.AssessmentID)
	assert.ErrorIs(t, s.SubmitInfo(context.Background(), jane), ErrInvalidTransition)
}

func TestManagerStartLookupFailure(t *testing.T) {
	m := NewManager(Deps{}, &fakeAssessments{err: errors.New("db down")}, time.Hour)

	_, err := m.Start(context.Background(), "abc123")
	assert.Error(t, err)
	assert.Zero(t, m.Len())
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	m, now := newTestManager(30 * time.Minute)

	_, err := m.Start(context.Background(), "")
	require.NoError(t, err)

	*now = now.Add(20 * time.Minute)
	_, err = m.Get("sess-1")
	require.NoError(t, err, "access refreshes the idle timer")

	*now = now.Add(20 * time.Minute)
	_, err = m.Get("sess-1")
	require.NoError(t, err)

	*now = now.Add(31 * time.Minute)
	_, err = m.Get("sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, m.Len())
}

func TestManagerConcurrentSessions(t *testing.T) {
	deps := Deps{
		Personas:  &fakePersonas{byID: map[string]*models.Persona{"p-server": serverPersona()}},
		Responses: &lockedSink{},
		Analyzer:  &lockedAnalyzer{},
	}
	m := NewManager(deps, &fakeAssessments{}, time.Hour)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Start(ctx, "")
			if err != nil {
				errs <- err
				return
			}
			steps := []func() error{
				func() error { return s.SubmitInfo(ctx, jane) },
				func() error { return s.SelectPersona(ctx, "p-server") },
				func() error { return s.Next(ctx, "a") },
				func() error { return s.Next(ctx, "b") },
				func() error { return s.Next(ctx, "c") },
			}
			for _, step := range steps {
				if err := step(); err != nil {
					errs <- err
					return
				}
			}
			if st := s.View().State; st != StateShowingResults {
				errs <- fmt.Errorf("session %s ended in %s", s.ID(), st)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, n, m.Len())
	assert.Len(t, deps.Responses.(*lockedSink).saved, n)
}

type lockedSink struct {
	mu    sync.Mutex
	saved []*models.Response
}

func (l *lockedSink) Create(ctx context.Context, r *models.Response) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saved = append(l.saved, r)
	return nil
}

type lockedAnalyzer struct {
	mu sync.Mutex
	fixedAnalyzer
}

func (l *lockedAnalyzer) Analyze(ctx context.Context, persona string, questions, answers []string) models.AnalysisRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fixedAnalyzer.Analyze(ctx, persona, questions, answers)
}
