// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

type State string

const (
	StateCollectingInfo     State = "collecting-info"
	StateSelectingPersona   State = "selecting-persona"
	StateAnsweringQuestions State = "answering-questions"
	StateSaving             State = "saving"
	StateShowingResults     State = "showing-results"
	StateNoQuestions        State = "no-questions"
	StateError              State = "error"
)

var (
	// ErrInvalidTransition is returned when an action is not allowed in the
	// session's current state. The state is left unchanged.
	ErrInvalidTransition = errors.New("action not allowed in current state")
	// ErrMissingField is returned when respondent info lacks a required value.
	ErrMissingField = errors.New("required field missing")
	// ErrEmptyAnswer is returned by Next for a blank answer.
	ErrEmptyAnswer = errors.New("answer is required")
)

// User-facing messages for the error state.
const (
	msgPersonaNotFound    = "The selected role could not be found."
	msgPersonaLoadFailed  = "We couldn't load this assessment. Please try again later."
	msgAssessmentNotFound = "This assessment link is invalid or has been removed."
	msgSaveFailed         = "We couldn't save your responses. Please restart and try again."
)

type PersonaSource interface {
	List(ctx context.Context) ([]models.Persona, error)
	Get(ctx context.Context, id string) (*models.Persona, error)
}

type ResponseSink interface {
	Create(ctx context.Context, r *models.Response) error
}

type Analyzer interface {
	Analyze(ctx context.Context, persona string, questions, answers []string) models.AnalysisRecord
}

// Deps are the collaborators every session uses.
type Deps struct {
	Personas     PersonaSource
	Responses    ResponseSink
	Analyzer     Analyzer
	RequirePhone bool
}

// Session walks one respondent through info, persona, questions and
// results. Methods are safe for concurrent use; they are serialised.
type Session struct {
	mu   sync.Mutex
	id   string
	deps Deps

	// Set when the session was opened from an assessment link.
	assessmentID   *string
	fixedPersonaID string
	// Set when the assessment link did not resolve; survives Restart.
	deadLink       string

	state      State
	respondent models.Respondent
	persona    *models.Persona
	index      int
	answers    []string
	draft      string
	result     *models.Response
	errMsg     string

	lastActive atomic.Int64
}

func newSession(id string, deps Deps, now time.Time) *Session {
	s := &Session{id: id, deps: deps, state: StateCollectingInfo}
	s.lastActive.Store(now.UnixNano())
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) touch(now time.Time) { s.lastActive.Store(now.UnixNano()) }

func (s *Session) idleSince() time.Time { return time.Unix(0, s.lastActive.Load()) }

// bind fixes the session to an assessment and, optionally, its persona.
func (s *Session) bind(a *models.Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := a.ID
	s.assessmentID = &id
	if a.PersonaID != nil {
		s.fixedPersonaID = *a.PersonaID
	}
}

func (s *Session) fail(msg string) {
	s.state = StateError
	s.errMsg = msg
}

// failLink puts a session opened from an unresolvable link into the error
// state for good.
func (s *Session) failLink(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deadLink = msg
	s.fail(msg)
}

// SubmitInfo records respondent details. First name, last name and email
// are always required; phone only when Deps.RequirePhone is set.
func (s *Session) SubmitInfo(ctx context.Context, r models.Respondent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollectingInfo {
		return fmt.Errorf("%w: submit info in %s", ErrInvalidTransition, s.state)
	}

	r = models.Respondent{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
	}
	required := []struct {
		field string
		value string
	}{
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"email", r.Email},
	}
	if s.deps.RequirePhone {
		required = append(required, struct {
			field string
			value string
		}{"phone", r.Phone})
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.field)
		}
	}

	s.respondent = r

	if s.fixedPersonaID == "" {
		s.state = StateSelectingPersona
		return nil
	}

	s.loadPersona(ctx, s.fixedPersonaID)
	return nil
}

// AvailablePersonas lists the personas a respondent may pick from. An empty
// list is a valid result.
func (s *Session) AvailablePersonas(ctx context.Context) ([]models.Persona, error) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	if state != StateSelectingPersona {
		return nil, fmt.Errorf("%w: list personas in %s", ErrInvalidTransition, state)
	}
	return s.deps.Personas.List(ctx)
}

// SelectPersona picks the persona whose questions will be asked.
func (s *Session) SelectPersona(ctx context.Context, personaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSelectingPersona {
		return fmt.Errorf("%w: select persona in %s", ErrInvalidTransition, s.state)
	}

	s.loadPersona(ctx, personaID)
	return nil
}

// loadPersona moves into the question loop, or into the error state when
// the persona cannot be loaded.
func (s *Session) loadPersona(ctx context.Context, personaID string) {
	p, err := s.deps.Personas.Get(ctx, personaID)
	if errors.Is(err, store.ErrNotFound) {
		slog.Warn("persona not found for session", "session_id", s.id, "persona_id", personaID)
		s.fail(msgPersonaNotFound)
		return
	}
	if err != nil {
		slog.Error("failed to load persona for session", "session_id", s.id, "persona_id", personaID, "error", err)
		s.fail(msgPersonaLoadFailed)
		return
	}

	s.persona = p
	s.index = 0
	s.answers = nil
	s.draft = ""

	if len(p.Questions) == 0 {
		s.state = StateNoQuestions
		return
	}
	s.state = StateAnsweringQuestions
}

// Next stores the trimmed answer for the current question and advances.
// On the last question it runs analysis and saves the response outside the
// session lock and without ctx cancellation; View reports saving meanwhile.
func (s *Session) Next(ctx context.Context, answer string) error {
	sub, err := s.advance(answer)
	if err != nil || sub == nil {
		return err
	}

	resp, saveErr := s.submit(context.WithoutCancel(ctx), sub)

	s.mu.Lock()
	defer s.mu.Unlock()
	if saveErr != nil {
		s.fail(msgSaveFailed)
		return nil
	}
	s.result = resp
	s.state = StateShowingResults
	return nil
}

// submission is what submit needs, copied out from under the lock.
type submission struct {
	persona      *models.Persona
	respondent   models.Respondent
	assessmentID *string
	answers      []string
}

// advance records the answer. It returns a submission when the last
// question was answered and the session has moved to saving.
func (s *Session) advance(answer string) (*submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnsweringQuestions {
		return nil, fmt.Errorf("%w: next in %s", ErrInvalidTransition, s.state)
	}

	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		s.draft = answer
		return nil, ErrEmptyAnswer
	}

	// answers always holds exactly the confirmed slots before index.
	s.answers = append(s.answers[:s.index], trimmed)
	s.draft = ""

	if s.index < len(s.persona.Questions)-1 {
		s.index++
		return nil, nil
	}

	s.state = StateSaving
	return &submission{
		persona:      s.persona,
		respondent:   s.respondent,
		assessmentID: s.assessmentID,
		answers:      append([]string(nil), s.answers...),
	}, nil
}

// Previous steps back one question. The stored answer for that slot moves
// back into the draft and stays revoked until Next confirms it again.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAnsweringQuestions || s.index == 0 {
		return fmt.Errorf("%w: previous in %s at question %d", ErrInvalidTransition, s.state, s.index)
	}

	s.index--
	s.draft = s.answers[s.index]
	s.answers = s.answers[:s.index]
	return nil
}

// Restart clears everything except the assessment binding. It is refused
// while a submission is being saved. A session from a dead link stays in
// the error state.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSaving {
		return fmt.Errorf("%w: restart in %s", ErrInvalidTransition, s.state)
	}

	s.state = StateCollectingInfo
	s.respondent = models.Respondent{}
	s.persona = nil
	s.index = 0
	s.answers = nil
	s.draft = ""
	s.result = nil
	s.errMsg = ""

	if s.deadLink != "" {
		s.fail(s.deadLink)
	}
	return nil
}

// submit analyses and persists one finished submission without holding
// the session lock.
func (s *Session) submit(ctx context.Context, sub *submission) (*models.Response, error) {
	p := sub.persona
	rec := s.deps.Analyzer.Analyze(ctx, p.Title, p.QuestionTexts(), sub.answers)

	resp := &models.Response{
		PersonaID:    p.ID,
		PersonaTitle: p.Title,
		AssessmentID: sub.assessmentID,
		Respondent:   sub.respondent,
		Answers:      make([]models.Answer, len(p.Questions)),
		Analysis:     &rec,
	}
	for i, q := range p.Questions {
		resp.Answers[i] = models.Answer{
			QuestionID: q.ID,
			Position:   i,
			Question:   q.Text,
			Text:       sub.answers[i],
		}
	}

	if err := s.deps.Responses.Create(ctx, resp); err != nil {
		slog.Error("failed to save response", "session_id", s.id, "persona_id", p.ID, "error", err)
		return nil, err
	}

	slog.Info("response saved",
		"session_id", s.id,
		"response_id", resp.ID,
		"persona_id", p.ID,
		"analysis_status", rec.Status,
	)
	return resp, nil
}

// PersonaSummary is the display part of a persona shown during a session.
type PersonaSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// View is a point-in-time copy of a session for rendering.
type View struct {
	ID            string            `json:"id"`
	State         State             `json:"state"`
	AssessmentID  *string           `json:"assessment_id,omitempty"`
	FixedPersona  bool              `json:"fixed_persona"`
	Respondent    models.Respondent `json:"respondent"`
	Persona       *PersonaSummary   `json:"persona,omitempty"`
	QuestionIndex int               `json:"question_index"`
	QuestionCount int               `json:"question_count"`
	Question      string            `json:"question,omitempty"`
	Draft         string            `json:"draft,omitempty"`
	Answers       []string          `json:"answers"`
	Response      *models.Response  `json:"response,omitempty"`
	Error         string            `json:"error,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:            s.id,
		State:         s.state,
		AssessmentID:  s.assessmentID,
		FixedPersona:  s.fixedPersonaID != "",
		Respondent:    s.respondent,
		QuestionIndex: s.index,
		Draft:         s.draft,
		Answers:       append([]string{}, s.answers...),
		Response:      s.result,
		Error:         s.errMsg,
	}
	if p := s.persona; p != nil {
		v.Persona = &PersonaSummary{ID: p.ID, Title: p.Title, Description: p.Description, Icon: p.Icon, Color: p.Color}
		v.QuestionCount = len(p.Questions)
		if s.state == StateAnsweringQuestions && s.index < len(p.Questions) {
			v.Question = p.Questions[s.index].Text
		}
	}
	return v
}
