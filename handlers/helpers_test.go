// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/persona-assess/analysis"
	"github.com/danielhkuo/persona-assess/backfill"
	"github.com/danielhkuo/persona-assess/pipeline"
	"github.com/danielhkuo/persona-assess/store"
	"github.com/danielhkuo/persona-assess/testutil"
)

// testEnv wires every handler against a fresh SQLite database
type testEnv struct {
	stores *store.Stores
	gen    *testutil.StubGenerator

	analyze     *AnalyzeHandler
	sessions    *SessionHandler
	personas    *PersonaHandler
	assessments *AssessmentHandler
	responses   *ResponseHandler
	admin       *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stores := testutil.NewStores(testutil.SetupTestDB(t))
	gen := &testutil.StubGenerator{Reply: testutil.WellFormedReply}
	svc := analysis.NewService(gen, time.Second)

	manager := pipeline.NewManager(pipeline.Deps{
		Personas:  stores.Personas,
		Responses: stores.Responses,
		Analyzer:  svc,
	}, stores.Assessments, time.Hour)
	driver := backfill.New(stores.Responses, stores.Personas, svc, 0)

	return &testEnv{
		stores:      stores,
		gen:         gen,
		analyze:     NewAnalyzeHandler(svc),
		sessions:    NewSessionHandler(manager),
		personas:    NewPersonaHandler(stores.Personas),
		assessments: NewAssessmentHandler(stores.Assessments, stores.Responses),
		responses:   NewResponseHandler(stores.Responses),
		admin:       NewAdminHandler(stores.Personas, stores.Responses, driver),
	}
}

// rawRequest builds a request with a literal, possibly malformed, body
func rawRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
