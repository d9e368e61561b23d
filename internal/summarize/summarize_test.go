// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

func TestRenderPrompt(t *testing.T) {
	got, err := RenderPrompt("Cells <divide> & grow.")
	require.NoError(t, err)
	assert.Equal(t,
		"Summarize this abstract in 3 bullet points highlighting the specific mechanism. Bold human trials.\n\nAbstract:\nCells <divide> & grow.",
		got)
}

func TestGeminiBackend_Summarize(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "* one\n"}, {"text": "* two\n* **three**"}]}, "finishReason": "STOP"}]}`)
	}))
	defer ts.Close()

	g := &GeminiBackend{APIKey: "gk", Model: "gemini-2.5-flash", BaseURL: ts.URL, Client: ts.Client()}
	got, err := g.Summarize(context.Background(), "An abstract.")
	require.NoError(t, err)

	assert.Equal(t, "* one\n* two\n* **three**", got)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "gk", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "Abstract:\nAn abstract.")
}

func TestGeminiBackend_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{"http error", http.StatusBadRequest, `{"error": {"message": "API key not valid"}}`, "API key not valid"},
		{"blocked prompt", http.StatusOK, `{"promptFeedback": {"blockReason": "SAFETY"}}`, "blocked the prompt: SAFETY"},
		{"no candidates", http.StatusOK, `{"candidates": []}`, "no candidates"},
		{"empty text", http.StatusOK, `{"candidates": [{"content": {"parts": []}, "finishReason": "MAX_TOKENS"}]}`, "MAX_TOKENS"},
		{"bad json", http.StatusOK, `not json`, "decoding Gemini response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			g := &GeminiBackend{Model: "m", BaseURL: ts.URL, Client: ts.Client()}
			_, err := g.Summarize(context.Background(), "x")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClaudeBackend_Summarize(t *testing.T) {
	var gotVersion, gotKey string
	var gotBody claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get("anthropic-version")
		gotKey = r.Header.Get("x-api-key")
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		fmt.Fprint(w, `{"content": [{"type": "text", "text": "- a\n- b\n- c"}]}`)
	}))
	defer ts.Close()

	c := &ClaudeBackend{APIKey: "ak", Model: "claude-test", BaseURL: ts.URL, Client: ts.Client()}
	got, err := c.Summarize(context.Background(), "An abstract.")
	require.NoError(t, err)

	assert.Equal(t, "- a\n- b\n- c", got)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "ak", gotKey)
	assert.Equal(t, "claude-test", gotBody.Model)
	assert.Equal(t, claudeMaxTokens, gotBody.MaxTokens)
}

func TestClaudeBackend_NoText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"content": [{"type": "tool_use"}]}`)
	}))
	defer ts.Close()

	c := &ClaudeBackend{Model: "m", BaseURL: ts.URL, Client: ts.Client()}
	_, err := c.Summarize(context.Background(), "x")
	assert.ErrorContains(t, err, "no text content")
}

func TestNew_SelectsBackend(t *testing.T) {
	s, err := New(types.SummarizerConfig{Provider: types.ProviderGemini, AIConfig: types.AIConfig{Model: "g"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GeminiBackend{}, s)

	s, err = New(types.SummarizerConfig{Provider: types.ProviderClaude}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ClaudeBackend{}, s)

	_, err = New(types.SummarizerConfig{Provider: "other"}, nil)
	assert.Error(t, err)
}

func TestFixedPause(t *testing.T) {
	start := time.Now()
	require.NoError(t, FixedPause{Delay: 20 * time.Millisecond}.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, FixedPause{Delay: time.Hour}.Wait(ctx), context.Canceled)
	assert.ErrorIs(t, NoPause{}.Wait(ctx), context.Canceled)
	assert.NoError(t, NoPause{}.Wait(context.Background()))
	assert.NoError(t, FixedPause{}.Wait(context.Background()))
}
