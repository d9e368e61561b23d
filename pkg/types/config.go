// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-digest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PubMedConfig holds settings for the E-utilities search and fetch calls.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the E-utilities root (default https://eutils.ncbi.nlm.nih.gov/entrez/eutils).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Tool is the tool name NCBI asks every client to send.
	Tool string `json:"tool" yaml:"tool"`

	// Email is the contact address sent with each request.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey raises NCBI's per-client request limit from 3/s to 10/s.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond caps the client-side request rate. Zero selects
	// NCBI's published limit for the presence or absence of APIKey.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// SummarizerProvider selects the completion API used for abstracts.
type SummarizerProvider string

const (
	ProviderGemini SummarizerProvider = "gemini"
	ProviderClaude SummarizerProvider = "claude"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// SummarizerConfig holds settings for the summarization stage.
type SummarizerConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Provider selects the backend: gemini or claude.
	Provider SummarizerProvider `json:"provider" yaml:"provider"`

	// BaseURL overrides the provider endpoint root.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Pause is the fixed delay after each summarization call (default 2s).
	Pause time.Duration `json:"pause" yaml:"pause"`
}

// OutputConfig holds settings for the snapshot writer.
type OutputConfig struct {
	// Path is a local file path or an s3://bucket/key destination.
	Path string `json:"path" yaml:"path"`

	// Format is "json" or "yaml".
	Format string `json:"format" yaml:"format"`

	// S3Region is the AWS region used for s3:// destinations.
	S3Region string `json:"s3_region,omitempty" yaml:"s3_region,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Encoding    string `json:"encoding" yaml:"encoding"`
	Development bool   `json:"development" yaml:"development"`
}

// DigestConfig is the immutable configuration read once per run.
// SearchQuery, DaysBack, and MaxResults are required; the remaining
// sections carry defaults.
type DigestConfig struct {
	SearchQuery string `json:"search_query" yaml:"search_query"`
	DaysBack    int    `json:"days_back" yaml:"days_back"`
	MaxResults  int    `json:"max_results" yaml:"max_results"`

	PubMed     PubMedConfig     `json:"pubmed" yaml:"pubmed"`
	Summarizer SummarizerConfig `json:"summarizer" yaml:"summarizer"`
	Output     OutputConfig     `json:"output" yaml:"output"`
	Log        LogConfig        `json:"log" yaml:"log"`
}
