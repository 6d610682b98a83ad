package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for websearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "websearch",
		Short: "Small web search engine: crawler, TF-IDF index and PageRank",
		Long: `websearch crawls a bounded part of the web, indexes the pages with TF-IDF,
ranks them with PageRank and answers free-text queries with a blend of
cosine similarity and PageRank.

Artifacts are stored under the data directory (default: the XDG data
directory). Each stage reads the output of the previous one:

  crawl -> index
        -> pagerank -> search / serve / eval`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .websearch.yaml in current, XDG config or home directory)")
	cmd.PersistentFlags().String("data-dir", "", "Directory for the corpus and index artifacts")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewPageRankCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewEvalCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
