// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Recommendation labels
const (
	RecommendationHighly       = "Highly Recommended"
	RecommendationRecommended  = "Recommended"
	RecommendationReservations = "Consider with Reservations"
	RecommendationNot          = "Not Recommended"
	RecommendationManualReview = "Manual Review Required"
)

// Analysis status values
const (
	AnalysisOK          = "ok"
	AnalysisUnavailable = "unavailable"
)

// NoResponse stands in for a missing answer inside an analysis prompt.
const NoResponse = "No response"

// Domain types

type Persona struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Color       string     `json:"color"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// QuestionTexts returns the question strings in display order.
func (p *Persona) QuestionTexts() []string {
	out := make([]string, len(p.Questions))
	for i, q := range p.Questions {
		out[i] = q.Text
	}
	return out
}

type Question struct {
	ID        string `json:"id"`
	PersonaID string `json:"persona_id"`
	Position  int    `json:"position"` // 0-indexed
	Text      string `json:"text"`
}

type Respondent struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name for display and progress labels.
func (r Respondent) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// Answer is keyed by the question's stable id. Question holds the text as it
// read at submission time, so later persona edits don't shift alignment.
type Answer struct {
	QuestionID string `json:"question_id"`
	Position   int    `json:"position"`
	Question   string `json:"question"`
	Text       string `json:"text"`
}

type Response struct {
	ID           string          `json:"id"`
	PersonaID    string          `json:"persona_id"`
	PersonaTitle string          `json:"persona_title,omitempty"`
	AssessmentID *string         `json:"assessment_id,omitempty"`
	Respondent   Respondent      `json:"respondent"`
	Answers      []Answer        `json:"answers"`
	Analysis     *AnalysisRecord `json:"analysis,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QuestionsAndAnswers splits the stored answers into index-aligned slices.
func (r *Response) QuestionsAndAnswers() (questions, answers []string) {
	questions = make([]string, len(r.Answers))
	answers = make([]string, len(r.Answers))
	for i, a := range r.Answers {
		questions[i] = a.Question
		answers[i] = a.Text
	}
	return questions, answers
}

type Analysis struct {
	Summary        string   `json:"summary"`
	Strengths      []string `json:"strengths"`
	Concerns       []string `json:"concerns"`
	Recommendation string   `json:"recommendation"`
}

// AnalysisRecord is the tagged outcome of an analysis run. Status is either
// AnalysisOK or AnalysisUnavailable; in the latter case Analysis holds the
// fallback payload and Reason says why the provider result was not used.
type AnalysisRecord struct {
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Analysis   Analysis  `json:"analysis"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// OK reports whether the record holds a provider-generated analysis.
func (a *AnalysisRecord) OK() bool {
	return a != nil && a.Status == AnalysisOK
}

type Assessment struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	PersonaID     *string   `json:"persona_id,omitempty"`
	PersonaTitle  string    `json:"persona_title,omitempty"`
	ShareSlug     string    `json:"share_slug"`
	ShareURL      string    `json:"share_url"`
	CreatedAt     time.Time `json:"created_at"`
	ResponseCount int       `json:"response_count"`
}

// Request types

type AnalyzeRequest struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
	Persona   string   `json:"persona"`
}

type PersonaRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Questions   []string `json:"questions"`
}

type CreateAssessmentRequest struct {
	Title     string  `json:"title"`
	PersonaID *string `json:"persona_id,omitempty"`
}

type StartSessionRequest struct {
	AssessmentSlug string `json:"assessment_slug,omitempty"`
}

type SelectPersonaRequest struct {
	PersonaID string `json:"persona_id"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type BackfillRequest struct {
	IncludeUnavailable bool `json:"include_unavailable"`
}

// Response types

// AnalyzeResponse mirrors Analysis on the wire for POST /api/analyze.
type AnalyzeResponse = Analysis

type PublicAssessment struct {
	Title        string  `json:"title"`
	PersonaID    *string `json:"persona_id,omitempty"`
	PersonaTitle string  `json:"persona_title,omitempty"`
}

type PersonaCount struct {
	PersonaID string `json:"persona_id"`
	Title     string `json:"title"`
	Responses int    `json:"responses"`
}

type Dashboard struct {
	Personas          []Persona      `json:"personas"`
	Responses         []Response     `json:"responses"`
	ByPersona         []PersonaCount `json:"by_persona"`
	ByRecommendation  map[string]int `json:"by_recommendation"`
	PendingAnalysis   int            `json:"pending_analysis"`
	UnavailableReview int            `json:"unavailable_analysis"`
}

type BackfillResponse struct {
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Current    string `json:"current,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
