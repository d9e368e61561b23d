// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config reads the run configuration from a JSON or YAML file.
// The three search keys (search_query, days_back, max_results) are
// required; every other key has a default. Environment variables prefixed
// PUBMED_DIGEST_ override file values (PUBMED_DIGEST_OUTPUT_PATH for
// output.path).
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// EnvPrefix is the prefix for environment overrides.
const EnvPrefix = "PUBMED_DIGEST"

// Defaults for the optional keys.
const (
	DefaultOutputPath   = "results.json"
	DefaultOutputFormat = "json"
	DefaultPubMedURL    = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	DefaultTool         = "pubmed-digest"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultClaudeModel  = "claude-sonnet-4-5"
	DefaultPause        = 2 * time.Second
)

// Error reports a configuration that cannot be used. It is returned for a
// missing or malformed file and for absent or ill-typed keys.
type Error struct {
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Key != "" {
		b.WriteString(": key " + e.Key)
	}
	b.WriteString(": " + e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrMissingKey is wrapped by Error when a required key is absent.
var ErrMissingKey = errors.New("required key is missing")

// Load reads the configuration at path. An empty path searches the working
// directory for config.json, config.yaml, or config.yml.
func Load(path string) (types.DigestConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return types.DigestConfig{}, &Error{Path: "./config.{json,yaml,yml}", Err: errors.New("no config file found")}
		}
		return types.DigestConfig{}, &Error{Path: path, Err: err}
	}
	used := v.ConfigFileUsed()

	cfg, err := decode(v)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = used
		}
		return types.DigestConfig{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.path", DefaultOutputPath)
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.s3_region", "")
	v.SetDefault("pubmed.base_url", DefaultPubMedURL)
	v.SetDefault("pubmed.tool", DefaultTool)
	v.SetDefault("pubmed.timeout", 30*time.Second)
	v.SetDefault("pubmed.user_agent", "")
	v.SetDefault("pubmed.requests_per_second", 0)
	v.SetDefault("summarizer.provider", string(types.ProviderGemini))
	v.SetDefault("summarizer.model", "")
	v.SetDefault("summarizer.base_url", "")
	v.SetDefault("summarizer.timeout", 60*time.Second)
	v.SetDefault("summarizer.pause", DefaultPause)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
}

func decode(v *viper.Viper) (types.DigestConfig, error) {
	var cfg types.DigestConfig
	var err error

	if cfg.SearchQuery, err = requireString(v, "search_query"); err != nil {
		return cfg, err
	}
	if cfg.DaysBack, err = requireInt(v, "days_back"); err != nil {
		return cfg, err
	}
	if cfg.MaxResults, err = requireInt(v, "max_results"); err != nil {
		return cfg, err
	}

	cfg.Output = types.OutputConfig{
		Path:     v.GetString("output.path"),
		Format:   strings.ToLower(v.GetString("output.format")),
		S3Region: v.GetString("output.s3_region"),
	}
	if cfg.Output.Format != "json" && cfg.Output.Format != "yaml" {
		return cfg, &Error{Key: "output.format", Err: fmt.Errorf("unsupported format %q (want json or yaml)", cfg.Output.Format)}
	}

	cfg.PubMed = types.PubMedConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("pubmed.timeout"),
			UserAgent: v.GetString("pubmed.user_agent"),
		},
		BaseURL:           strings.TrimRight(v.GetString("pubmed.base_url"), "/"),
		Tool:              v.GetString("pubmed.tool"),
		RequestsPerSecond: v.GetFloat64("pubmed.requests_per_second"),
	}

	provider := types.SummarizerProvider(strings.ToLower(v.GetString("summarizer.provider")))
	model := v.GetString("summarizer.model")
	switch provider {
	case types.ProviderGemini:
		if model == "" {
			model = DefaultGeminiModel
		}
	case types.ProviderClaude:
		if model == "" {
			model = DefaultClaudeModel
		}
	default:
		return cfg, &Error{Key: "summarizer.provider", Err: fmt.Errorf("unsupported provider %q (want gemini or claude)", provider)}
	}

	pause := v.GetDuration("summarizer.pause")
	if pause < 0 {
		return cfg, &Error{Key: "summarizer.pause", Err: fmt.Errorf("must not be negative, got %s", pause)}
	}

	cfg.Summarizer = types.SummarizerConfig{
		AIConfig: types.AIConfig{Model: model},
		HTTPConfig: types.HTTPConfig{
			Timeout: v.GetDuration("summarizer.timeout"),
		},
		Provider: provider,
		BaseURL:  strings.TrimRight(v.GetString("summarizer.base_url"), "/"),
		Pause:    pause,
	}

	cfg.Log = types.LogConfig{
		Level:       v.GetString("log.level"),
		Encoding:    v.GetString("log.encoding"),
		Development: v.GetBool("log.development"),
	}
	return cfg, nil
}

func requireString(v *viper.Viper, key string) (string, error) {
	if !v.IsSet(key) {
		return "", &Error{Key: key, Err: ErrMissingKey}
	}
	s, ok := v.Get(key).(string)
	if !ok {
		return "", &Error{Key: key, Err: fmt.Errorf("must be a string, got %T", v.Get(key))}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &Error{Key: key, Err: errors.New("must not be blank")}
	}
	return s, nil
}

// requireInt accepts integers, integral floats (JSON numbers), and numeric
// strings (environment overrides).
func requireInt(v *viper.Viper, key string) (int, error) {
	if !v.IsSet(key) {
		return 0, &Error{Key: key, Err: ErrMissingKey}
	}
	raw := v.Get(key)
	switch n := raw.(type) {
	case bool, nil:
		return 0, &Error{Key: key, Err: fmt.Errorf("must be an integer, got %T", raw)}
	case float64:
		if n != math.Trunc(n) {
			return 0, &Error{Key: key, Err: fmt.Errorf("must be an integer, got %v", n)}
		}
	}
	i, err := cast.ToIntE(raw)
	if err != nil {
		return 0, &Error{Key: key, Err: fmt.Errorf("must be an integer: %w", err)}
	}
	return i, nil
}
