// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/persona-assess/models"
)

var (
	// ErrMissingAPIKey is returned per call when the provider has no credential.
	ErrMissingAPIKey = errors.New("AI API key is not configured")
	// ErrEmptyReply means the provider answered with no text.
	ErrEmptyReply = errors.New("empty reply from model")
	// ErrMalformedReply means none of the section markers were found.
	ErrMalformedReply = errors.New("reply has no recognizable sections")
)

// Fallback texts used when no provider analysis could be obtained.
const (
	FallbackSummary = "Candidate has completed the assessment. Manual review recommended."
	FallbackConcern = "AI analysis unavailable - manual review required"
)

var fallbackStrengths = []string{
	"Completed all assessment questions",
	"Provided detailed responses",
}

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Fallback returns the fixed analysis substituted for any provider failure.
func Fallback() models.Analysis {
	return models.Analysis{
		Summary:        FallbackSummary,
		Strengths:      append([]string(nil), fallbackStrengths...),
		Concerns:       []string{FallbackConcern},
		Recommendation: models.RecommendationManualReview,
	}
}

// Service turns answered questionnaires into analyses. Analyze never fails:
// callers always receive a usable record.
type Service struct {
	gen     Generator
	timeout time.Duration
	now     func() time.Time
}

// NewService wraps gen. A timeout of zero disables the per-call deadline.
func NewService(gen Generator, timeout time.Duration) *Service {
	return &Service{
		gen:     gen,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Analyze builds the prompt, calls the generator once and parses the reply.
// Any failure yields an AnalysisUnavailable record carrying Fallback().
func (s *Service) Analyze(ctx context.Context, persona string, questions, answers []string) models.AnalysisRecord {
	a, err := s.generate(ctx, persona, questions, answers)
	if err != nil {
		slog.Warn("analysis unavailable, using fallback", "persona", persona, "error", err)
		return models.AnalysisRecord{
			Status:     models.AnalysisUnavailable,
			Reason:     err.Error(),
			Analysis:   Fallback(),
			AnalyzedAt: s.now(),
		}
	}

	return models.AnalysisRecord{
		Status:     models.AnalysisOK,
		Analysis:   a,
		AnalyzedAt: s.now(),
	}
}

func (s *Service) generate(ctx context.Context, persona string, questions, answers []string) (models.Analysis, error) {
	if s.gen == nil {
		return models.Analysis{}, ErrMissingAPIKey
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.gen.Generate(ctx, BuildPrompt(persona, questions, answers))
	if err != nil {
		return models.Analysis{}, err
	}
	if strings.TrimSpace(reply) == "" {
		return models.Analysis{}, ErrEmptyReply
	}
	return ParseReply(reply)
}
