// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package backfill re-runs analysis over stored responses that have none.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/persona-assess/models"
)

var (
	errNoAnswers   = errors.New("response has no answers")
	errUnavailable = errors.New("analysis unavailable")
)

type ResponseStore interface {
	ListUnanalyzed(ctx context.Context, includeUnavailable bool) ([]models.Response, error)
	SetAnalysis(ctx context.Context, responseID string, rec models.AnalysisRecord) error
}

type PersonaStore interface {
	Get(ctx context.Context, id string) (*models.Persona, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, persona string, questions, answers []string) models.AnalysisRecord
}

// Options tune a single run.
type Options struct {
	// IncludeUnavailable also reselects responses whose stored analysis is
	// the fallback.
	IncludeUnavailable bool
}

// Progress is reported after every item and returned at the end.
type Progress struct {
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Current    string `json:"current,omitempty"`
}

type Driver struct {
	responses ResponseStore
	personas  PersonaStore
	analyzer  Analyzer
	delay     time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a driver that waits delay between items.
func New(responses ResponseStore, personas PersonaStore, analyzer Analyzer, delay time.Duration) *Driver {
	return &Driver{
		responses: responses,
		personas:  personas,
		analyzer:  analyzer,
		delay:     delay,
		sleep:     sleepContext,
	}
}

// Run processes every selected response in creation order, one at a time.
// A failing item is counted and skipped. Cancelling ctx stops the loop and
// returns the counts so far with ctx.Err().
func (d *Driver) Run(ctx context.Context, opts Options, progress func(Progress)) (Progress, error) {
	if progress == nil {
		progress = func(Progress) {}
	}

	pending, err := d.responses.ListUnanalyzed(ctx, opts.IncludeUnavailable)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to list unanalyzed responses: %w", err)
	}

	p := Progress{Total: len(pending)}
	slog.Info("backfill started", "total", p.Total, "include_unavailable", opts.IncludeUnavailable)
	progress(p)

	for i := range pending {
		if i > 0 {
			if err := d.sleep(ctx, d.delay); err != nil {
				slog.Warn("backfill cancelled", "processed", p.Processed, "total", p.Total)
				return p, err
			}
		} else if err := ctx.Err(); err != nil {
			return p, err
		}

		r := &pending[i]
		p.Current = r.Respondent.FullName()

		if err := d.process(ctx, r); err != nil {
			p.Failed++
			slog.Warn("backfill item failed", "response_id", r.ID, "error", err)
		} else {
			p.Successful++
			slog.Debug("backfill item analyzed", "response_id", r.ID)
		}
		p.Processed++
		progress(p)
	}

	p.Current = ""
	slog.Info("backfill finished",
		"total", p.Total,
		"successful", p.Successful,
		"failed", p.Failed,
	)
	return p, nil
}

func (d *Driver) process(ctx context.Context, r *models.Response) error {
	if len(r.Answers) == 0 {
		return errNoAnswers
	}

	persona, err := d.personas.Get(ctx, r.PersonaID)
	if err != nil {
		return fmt.Errorf("failed to load persona %s: %w", r.PersonaID, err)
	}

	questions, answers := r.QuestionsAndAnswers()
	rec := d.analyzer.Analyze(ctx, persona.Title, questions, answers)
	if !rec.OK() {
		return fmt.Errorf("%w: %s", errUnavailable, rec.Reason)
	}

	if err := d.responses.SetAnalysis(ctx, r.ID, rec); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
