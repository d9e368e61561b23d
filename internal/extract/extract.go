// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract maps PubMed records to the canonical Article. Each field
// is read independently and falls back to a default when its element is
// absent; only a record missing a whole required section is rejected.
package extract

import (
	"errors"
	"strings"
	"time"

	"github.com/pdiddy/pubmed-digest/internal/pubmed"
	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// doiResolver is prefixed to a bare DOI to form the article link.
const doiResolver = "https://doi.org/"

// Structural errors. A record returning one of these is skipped.
var (
	ErrMissingCitation   = errors.New("record has no MedlineCitation")
	ErrMissingArticle    = errors.New("record has no MedlineCitation/Article")
	ErrMissingPubmedData = errors.New("record has no PubmedData")
)

// Normalize builds an Article from rec, stamping it with fetchedAt. The
// Analysis field is left empty for the summarizer.
func Normalize(rec pubmed.Record, fetchedAt time.Time) (types.Article, error) {
	if rec.Citation == nil {
		return types.Article{}, ErrMissingCitation
	}
	art := rec.Citation.Article
	if art == nil {
		return types.Article{}, ErrMissingArticle
	}
	if rec.PubmedData == nil {
		return types.Article{}, ErrMissingPubmedData
	}

	return types.Article{
		PMID:      rec.PMID(),
		Title:     Title(art),
		Journal:   Journal(art),
		Abstract:  Abstract(art),
		Link:      Link(rec.PubmedData),
		FetchedAt: fetchedAt.Format(types.FetchedAtLayout),
	}, nil
}

// Title returns the article title, or types.DefaultTitle when the element
// is absent or blank.
func Title(art *pubmed.ArticleData) string {
	if art == nil || art.Title == nil || strings.TrimSpace(string(*art.Title)) == "" {
		return types.DefaultTitle
	}
	return string(*art.Title)
}

// Journal returns the journal title, or types.DefaultJournal.
func Journal(art *pubmed.ArticleData) string {
	if art == nil || art.Journal == nil || strings.TrimSpace(art.Journal.Title) == "" {
		return types.DefaultJournal
	}
	return art.Journal.Title
}

// Abstract joins the abstract fragments with single spaces. One fragment
// is returned unchanged; no abstract yields "".
func Abstract(art *pubmed.ArticleData) string {
	if art == nil || art.Abstract == nil {
		return ""
	}
	parts := make([]string, len(art.Abstract.Texts))
	for i, t := range art.Abstract.Texts {
		parts[i] = string(t.Text)
	}
	return strings.Join(parts, " ")
}

// Link returns the doi.org URL for the record's DOI, or "".
func Link(data *pubmed.PubmedData) string {
	doi := data.DOI()
	if doi == "" {
		return ""
	}
	return doiResolver + doi
}
