// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-digest pipeline:
// the run configuration and the enriched Article written to the snapshot.
package types

// FetchedAtLayout is the time layout of Article.FetchedAt (local time,
// minute precision).
const FetchedAtLayout = "2006-01-02 15:04"

// Default field values used when a PubMed record lacks the element.
const (
	DefaultTitle   = "No Title"
	DefaultJournal = "Unknown Journal"
)

// Article is one enriched publication in the snapshot. Articles are built
// once per run from a single PubMed record, enriched with the summarizer's
// analysis, and never mutated after being appended to the output list.
type Article struct {
	// PMID is the PubMed identifier of the source record. It is carried for
	// progress and error reporting and is not part of the snapshot.
	PMID string `json:"-" yaml:"-"`

	// Title is the article title, or DefaultTitle.
	Title string `json:"title" yaml:"title"`

	// Journal is the journal title, or DefaultJournal.
	Journal string `json:"journal" yaml:"journal"`

	// Abstract is the abstract fragments joined with single spaces.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Link is the https://doi.org/ URL for the article's DOI, or empty.
	Link string `json:"link" yaml:"link"`

	// Analysis is the summarizer output, verbatim.
	Analysis string `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// FetchedAt is the processing time formatted with FetchedAtLayout.
	FetchedAt string `json:"fetched_at" yaml:"fetched_at"`
}
