// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package snapshot

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-digest/pkg/types"
)

// FormatTable writes articles as a human-readable table to w.
func FormatTable(articles []types.Article, w io.Writer) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-30s  %-8s  %s\n", "#", "Title", "Journal", "Analysis", "Link")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for i, a := range articles {
		analysis := "no"
		if a.Analysis != "" {
			analysis = "yes"
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-30s  %-8s  %s\n",
			i+1, truncate(a.Title, 60), truncate(a.Journal, 30), analysis, a.Link)
	}

	fmt.Fprintf(w, "\n%d articles\n", len(articles))
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
