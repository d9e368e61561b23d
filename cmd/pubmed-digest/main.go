// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-digest CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-digest/internal/config"
	"github.com/pdiddy/pubmed-digest/internal/digest"
	"github.com/pdiddy/pubmed-digest/internal/logger"
	"github.com/pdiddy/pubmed-digest/internal/pubmed"
	"github.com/pdiddy/pubmed-digest/internal/secrets"
	"github.com/pdiddy/pubmed-digest/internal/snapshot"
	"github.com/pdiddy/pubmed-digest/internal/summarize"
	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs one pass of the digest when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "pubmed-digest",
	Short: "Fetch recent PubMed papers and summarize their abstracts",
	Long: `pubmed-digest searches PubMed for recent publications matching the
configured query, fetches each article's metadata and abstract, asks a
generative-language model for a short analysis, and writes the results as a
JSON or YAML snapshot (a local file or an s3:// object).

Configuration is read from config.json or config.yaml in the working directory
(or --config). Credentials come from the environment, a .env file, or files in
the secrets directory.`,
	SilenceUsage: true,
	RunE:         runDigest,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.{json,yaml,yml})")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
}

// env bundles what every command needs after startup.
type env struct {
	cfg types.DigestConfig
	log *zap.Logger
}

// setup loads configuration and credentials and builds the logger.
func setup(cmd *cobra.Command) (*env, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	secretsDir, _ := cmd.Flags().GetString("secrets-dir")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log)

	creds, err := secrets.Resolve(secretsDir, nil, log)
	if err != nil {
		return nil, fmt.Errorf("loading secrets: %w", err)
	}
	applyCredentials(&cfg, creds)
	applyUserAgent(&cfg, version)
	return &env{cfg: cfg, log: log}, nil
}

// applyCredentials copies the secrets each provider client needs into cfg.
func applyCredentials(cfg *types.DigestConfig, c secrets.Credentials) {
	cfg.PubMed.Email = c.EntrezEmail
	cfg.PubMed.APIKey = c.EntrezAPIKey
	switch cfg.Summarizer.Provider {
	case types.ProviderClaude:
		cfg.Summarizer.APIKey = c.AnthropicAPIKey
	default:
		cfg.Summarizer.APIKey = c.GeminiAPIKey
	}
}

// applyUserAgent fills in the default User-Agent for both clients.
func applyUserAgent(cfg *types.DigestConfig, v string) {
	if cfg.PubMed.UserAgent == "" {
		cfg.PubMed.UserAgent = "pubmed-digest/" + v
	}
	if cfg.Summarizer.UserAgent == "" {
		cfg.Summarizer.UserAgent = cfg.PubMed.UserAgent
	}
}

// newPipeline wires the production collaborators for cfg.
func newPipeline(ctx context.Context, e *env) (*digest.Pipeline, error) {
	client := pubmed.New(e.cfg.PubMed, nil)

	sum, err := summarize.New(e.cfg.Summarizer, nil)
	if err != nil {
		return nil, err
	}
	sink, err := snapshot.NewSink(ctx, e.cfg.Output)
	if err != nil {
		return nil, err
	}
	return &digest.Pipeline{
		Searcher:   client,
		Fetcher:    client,
		Summarizer: sum,
		Pacer:      summarize.FixedPause{Delay: e.cfg.Summarizer.Pause},
		Sink:       sink,
		Format:     snapshot.Format(e.cfg.Output.Format),
		Log:        e.log,
	}, nil
}

func runDigest(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	p, err := newPipeline(cmd.Context(), e)
	if err != nil {
		return err
	}
	if _, err := p.Run(cmd.Context(), e.cfg); err != nil {
		e.log.Error("Run failed", zap.Error(err))
		return err
	}
	return nil
}

func main() {
	// Missing .env is fine; the environment and .secrets/ still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
