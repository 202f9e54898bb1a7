// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOpenAIEndpoint(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "https://api.openai.com/v1/chat/completions"},
		{"https://api.openai.com", "https://api.openai.com/v1/chat/completions"},
		{"https://proxy.local/v1", "https://proxy.local/v1/chat/completions"},
		{"https://proxy.local/v1/", "https://proxy.local/v1/chat/completions"},
		{"https://proxy.local/v1/chat/completions", "https://proxy.local/v1/chat/completions"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeOpenAIEndpoint(tt.base), "base %q", tt.base)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"SUMMARY: fine"}}]}`))
	}))
	defer srv.Close()

	gen := NewOpenAIGenerator("sk-test", srv.URL, "", srv.Client())
	reply, err := gen.Generate(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "SUMMARY: fine", reply)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestOpenAIGenerateErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"upstream error", http.StatusUnauthorized, `{"error":"bad key"}`, nil},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrEmptyReply},
		{"bad json", http.StatusOK, `not json`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIGenerator("sk-test", srv.URL, "", srv.Client()).Generate(context.Background(), "p")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestMissingKeyGenerators(t *testing.T) {
	gemini, err := NewGeminiGenerator(context.Background(), "", "")
	require.NoError(t, err)
	_, err = gemini.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Equal(t, "genai:"+defaultGeminiModel, gemini.Name())

	openai := NewOpenAIGenerator("", "", "", nil)
	_, err = openai.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
