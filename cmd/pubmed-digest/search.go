// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-digest/internal/digest"
	"github.com/pdiddy/pubmed-digest/internal/pubmed"
	"github.com/pdiddy/pubmed-digest/internal/snapshot"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search and fetch matching papers without summarizing",
	Long: `Search runs the configured PubMed query, fetches the matching records, and
prints the normalized articles. Nothing is summarized and no snapshot is
written, so it is a cheap way to check a query before a full run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = e.log.Sync() }()

		client := pubmed.New(e.cfg.PubMed, nil)
		p := &digest.Pipeline{Searcher: client, Fetcher: client, Log: e.log}
		articles, _, err := p.Collect(cmd.Context(), e.cfg)
		if err != nil {
			return err
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := snapshot.Encode(snapshot.FormatJSON, articles)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		snapshot.FormatTable(articles, os.Stdout)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [snapshot]",
	Short: "Print a snapshot as a table",
	Long: `Show reads a local snapshot file and prints its articles. With no argument it
reads output.path from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			path = e.cfg.Output.Path
		}

		articles, err := snapshot.Read(path)
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			data, err := snapshot.Encode(snapshot.FormatJSON, articles)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		fmt.Printf("%s\n\n", path)
		snapshot.FormatTable(articles, os.Stdout)
		return nil
	},
}

func init() {
	searchCmd.Flags().Bool("json", false, "output articles as JSON")
	showCmd.Flags().Bool("json", false, "output articles as JSON")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
}
