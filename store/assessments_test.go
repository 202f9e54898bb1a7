// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/sharelink"
)

func TestAssessmentCreate(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	p := createPersona(t, s, "Server", "q")

	a, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: " Spring hiring ", PersonaID: &p.ID})
	require.NoError(t, err)

	assert.Equal(t, "Spring hiring", a.Title)
	assert.Equal(t, "Server", a.PersonaTitle)
	assert.Equal(t, sharelink.GenerateShareSlug(a.ID, "test-salt"), a.ShareSlug)
	assert.Equal(t, "http://localhost:3318/a/"+a.ShareSlug, a.ShareURL)

	bySlug, err := s.Assessments.GetBySlug(ctx, a.ShareSlug)
	require.NoError(t, err)
	assert.Equal(t, a.ID, bySlug.ID)
	require.NotNil(t, bySlug.PersonaID)
	assert.Equal(t, p.ID, *bySlug.PersonaID)
	assert.Equal(t, a.ShareURL, bySlug.ShareURL)

	_, err = s.Assessments.GetBySlug(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssessmentCreateValidation(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()

	_, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	missing := "no-such-persona"
	_, err = s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "t", PersonaID: &missing})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "persona_id", verr.Field)

	// An empty persona id means "respondent chooses".
	empty := ""
	a, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "open", PersonaID: &empty})
	require.NoError(t, err)
	assert.Nil(t, a.PersonaID)
}

func TestAssessmentListCounts(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	p := createPersona(t, s, "Server", "q")

	first, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "first"})
	require.NoError(t, err)
	second, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "second", PersonaID: &p.ID})
	require.NoError(t, err)

	createResponse(t, s, p, &second.ID, nil)
	createResponse(t, s, p, &second.ID, nil)
	createResponse(t, s, p, nil, nil)

	list, err := s.Assessments.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, 2, list[0].ResponseCount)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Zero(t, list[1].ResponseCount)

	got, err := s.Assessments.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ResponseCount)
}

func TestAssessmentDeleteCascades(t *testing.T) {
	s := setupStores(t)
	ctx := context.Background()
	p := createPersona(t, s, "Server", "q")
	a, err := s.Assessments.Create(ctx, models.CreateAssessmentRequest{Title: "t", PersonaID: &p.ID})
	require.NoError(t, err)

	linked := createResponse(t, s, p, &a.ID, okRecord("x"))
	other := createResponse(t, s, p, nil, nil)

	require.NoError(t, s.Assessments.Delete(ctx, a.ID))

	_, err = s.Assessments.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Responses.Get(ctx, linked.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	byAssessment, err := s.Responses.List(ctx, ResponseFilter{AssessmentID: a.ID})
	require.NoError(t, err)
	assert.Empty(t, byAssessment)

	_, err = s.Responses.Get(ctx, other.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, s.Assessments.Delete(ctx, a.ID), ErrNotFound)
}
