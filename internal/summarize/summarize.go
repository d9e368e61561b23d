// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize turns an abstract into a short bullet-point analysis
// using a generative-language API. The prompt and model are fixed per run;
// the completion text is returned verbatim.
package summarize

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"text/template"
	"time"

	"github.com/pdiddy/pubmed-digest/internal/httputil"
	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// Summarizer produces the analysis text for one abstract.
type Summarizer interface {
	Summarize(ctx context.Context, abstract string) (string, error)
}

// promptTmpl asks for three bullets on the mechanism with human-trial
// results in bold.
var promptTmpl = template.Must(template.New("summary").Parse(
	"Summarize this abstract in 3 bullet points highlighting the specific mechanism. Bold human trials.\n\nAbstract:\n{{.Abstract}}"))

// RenderPrompt executes the summary prompt template for abstract.
func RenderPrompt(abstract string) (string, error) {
	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, struct{ Abstract string }{Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// New returns the backend selected by cfg.Provider.
func New(cfg types.SummarizerConfig, client *http.Client) (Summarizer, error) {
	if client == nil {
		client = httputil.NewClient(cfg.HTTPConfig)
	}
	switch cfg.Provider {
	case types.ProviderGemini, "":
		return &GeminiBackend{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	case types.ProviderClaude:
		return &ClaudeBackend{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Client:    client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
}

// Pacer waits between consecutive summarization calls.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedPause waits Delay after every call. It is a self-imposed rate limit
// and does not react to provider signals.
type FixedPause struct {
	Delay time.Duration
}

// Wait sleeps for Delay or until ctx is done.
func (p FixedPause) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoPause returns immediately.
type NoPause struct{}

// Wait returns ctx.Err().
func (NoPause) Wait(ctx context.Context) error { return ctx.Err() }
