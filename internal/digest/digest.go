// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package digest runs one pass of the pipeline: search PubMed, fetch the
// matching records in one batch, normalize and summarize each record, and
// write the successful articles as the new snapshot.
//
// Search, fetch, and write failures abort the run. A record that fails
// normalization or summarization is logged and dropped; the loop moves on.
package digest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/pubmed-digest/internal/extract"
	"github.com/pdiddy/pubmed-digest/internal/pubmed"
	"github.com/pdiddy/pubmed-digest/internal/snapshot"
	"github.com/pdiddy/pubmed-digest/internal/summarize"
	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// Searcher returns the PMIDs for a query. *pubmed.Client implements it.
type Searcher interface {
	Search(ctx context.Context, q pubmed.Query) ([]string, error)
}

// Fetcher returns the records for a batch of PMIDs. *pubmed.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string) ([]pubmed.Record, error)
}

// Stage names the per-article step that failed.
type Stage string

const (
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
)

// ArticleError reports a record dropped from the snapshot.
type ArticleError struct {
	PMID  string
	Stage Stage
	Err   error
}

func (e *ArticleError) Error() string {
	return fmt.Sprintf("article %s: %s: %v", e.PMID, e.Stage, e.Err)
}

func (e *ArticleError) Unwrap() error { return e.Err }

// Outcome is the result of processing one record: an enriched Article,
// or the reason it was skipped.
type Outcome struct {
	Article types.Article
	Err     *ArticleError
}

// Skipped reports whether the record contributes nothing to the snapshot.
func (o Outcome) Skipped() bool { return o.Err != nil }

// Result summarizes a run.
type Result struct {
	// Found is the number of PMIDs the search returned.
	Found int
	// Fetched is the number of records the batch fetch returned.
	Fetched int
	// Written is the number of articles in the new snapshot.
	Written int
	// Skipped holds one error per dropped record, in fetch order.
	Skipped []*ArticleError
	// NoResults is set when the search matched nothing and no snapshot
	// was written.
	NoResults bool
}

// Pipeline wires the run's collaborators. Summarizer, Pacer, and Sink may
// be nil only for Collect, which stops before summarization.
type Pipeline struct {
	Searcher   Searcher
	Fetcher    Fetcher
	Summarizer summarize.Summarizer
	Pacer      summarize.Pacer
	Sink       snapshot.Sink
	Format     snapshot.Format
	Log        *zap.Logger

	// Now stamps Article.FetchedAt. Defaults to time.Now.
	Now func() time.Time
}

// Run executes one full pass. When the search finds nothing, Run returns
// Result{NoResults: true} without fetching or writing, leaving any
// previous snapshot in place.
func (p *Pipeline) Run(ctx context.Context, cfg types.DigestConfig) (Result, error) {
	log := p.logger()

	records, res, err := p.searchAndFetch(ctx, cfg)
	if err != nil || res.NoResults {
		return res, err
	}

	pacer := p.Pacer
	if pacer == nil {
		pacer = summarize.NoPause{}
	}

	articles := make([]types.Article, 0, len(records))
	for _, rec := range records {
		out := p.process(ctx, rec, pacer)
		if out.Skipped() {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Warn("Error processing paper",
				zap.String("pmid", out.Err.PMID),
				zap.String("stage", string(out.Err.Stage)),
				zap.Error(out.Err.Err))
			res.Skipped = append(res.Skipped, out.Err)
			continue
		}
		log.Info("Analyzed", zap.String("pmid", out.Article.PMID), zap.String("title", preview(out.Article.Title)))
		articles = append(articles, out.Article)
	}

	n, err := snapshot.Write(ctx, p.Sink, p.Format, articles)
	if err != nil {
		return res, err
	}
	res.Written = n
	log.Info("Saved snapshot", zap.Int("papers", n), zap.String("dest", p.Sink.String()),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// Collect runs search, fetch, and normalization only. Records that fail
// normalization are logged and dropped. Nothing is summarized or written.
func (p *Pipeline) Collect(ctx context.Context, cfg types.DigestConfig) ([]types.Article, Result, error) {
	log := p.logger()

	records, res, err := p.searchAndFetch(ctx, cfg)
	if err != nil || res.NoResults {
		return nil, res, err
	}

	articles := make([]types.Article, 0, len(records))
	for _, rec := range records {
		art, err := extract.Normalize(rec, p.now())
		if err != nil {
			ae := &ArticleError{PMID: rec.PMID(), Stage: StageExtract, Err: err}
			log.Warn("Error processing paper", zap.String("pmid", ae.PMID), zap.Error(err))
			res.Skipped = append(res.Skipped, ae)
			continue
		}
		articles = append(articles, art)
	}
	return articles, res, nil
}

func (p *Pipeline) searchAndFetch(ctx context.Context, cfg types.DigestConfig) ([]pubmed.Record, Result, error) {
	log := p.logger()
	var res Result

	log.Info("Starting automated fetch", zap.String("query", cfg.SearchQuery),
		zap.Int("days_back", cfg.DaysBack), zap.Int("max_results", cfg.MaxResults))

	ids, err := p.Searcher.Search(ctx, pubmed.Query{
		Term:       cfg.SearchQuery,
		DaysBack:   cfg.DaysBack,
		MaxResults: cfg.MaxResults,
	})
	if err != nil {
		return nil, res, err
	}
	res.Found = len(ids)
	if len(ids) == 0 {
		log.Info("No new papers found.")
		res.NoResults = true
		return nil, res, nil
	}
	log.Info("Search complete", zap.Int("ids", len(ids)))

	records, err := p.Fetcher.Fetch(ctx, ids)
	if err != nil {
		return nil, res, err
	}
	res.Fetched = len(records)
	log.Info("Fetched records", zap.Int("records", len(records)))
	return records, res, nil
}

// process normalizes and summarizes one record. The pacer runs after every
// summarization call, whether or not it succeeded.
func (p *Pipeline) process(ctx context.Context, rec pubmed.Record, pacer summarize.Pacer) Outcome {
	art, err := extract.Normalize(rec, p.now())
	if err != nil {
		return Outcome{Err: &ArticleError{PMID: rec.PMID(), Stage: StageExtract, Err: err}}
	}

	analysis, err := p.Summarizer.Summarize(ctx, art.Abstract)
	if waitErr := pacer.Wait(ctx); waitErr != nil && err == nil {
		err = waitErr
	}
	if err != nil {
		return Outcome{Err: &ArticleError{PMID: art.PMID, Stage: StageSummarize, Err: err}}
	}

	art.Analysis = analysis
	return Outcome{Article: art}
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// preview shortens a title for progress lines.
func preview(title string) string {
	r := []rune(title)
	if len(r) <= 50 {
		return title
	}
	return string(r[:50]) + "..."
}
