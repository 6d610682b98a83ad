package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/analysis"
	"github.com/nao1215/websearch/internal/config"
	"github.com/nao1215/websearch/internal/crawler"
	"github.com/nao1215/websearch/internal/database"
	wslog "github.com/nao1215/websearch/internal/log"
	"github.com/nao1215/websearch/internal/pagerank"
	"github.com/nao1215/websearch/internal/search"
)

// persistentFlag reads a global flag from the command or the root.
func persistentFlag[T any](cmd *cobra.Command, name string, get func(*cobra.Command, string) (T, error)) T {
	v, err := get(cmd, name)
	if err != nil {
		v, _ = get(cmd.Root(), name)
	}
	return v
}

func getBool(cmd *cobra.Command, name string) (bool, error) {
	if f := cmd.Flags().Lookup(name); f != nil {
		return cmd.Flags().GetBool(name)
	}
	return cmd.PersistentFlags().GetBool(name)
}

func getString(cmd *cobra.Command, name string) (string, error) {
	if f := cmd.Flags().Lookup(name); f != nil {
		return cmd.Flags().GetString(name)
	}
	return cmd.PersistentFlags().GetString(name)
}

// override copies a flag value into dst when the user set the flag, so
// config file values survive unset flags.
func override[T any](cmd *cobra.Command, name string, dst *T, get func(string) (T, error)) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, err := get(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// setup loads the configuration, applies the global flags and installs
// the logger. Logs go to the command's stderr.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(persistentFlag(cmd, "config", getString))
	if err != nil {
		return nil, nil, err
	}

	cfg.Verbose = persistentFlag(cmd, "verbose", getBool)
	if persistentFlag(cmd, "log-json", getBool) {
		cfg.LogJSON = true
	}
	if dir := persistentFlag(cmd, "data-dir", getString); dir != "" {
		cfg.DataDir = dir
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogJSON {
		return wslog.NewJSONLogger(w, cfg.Verbose)
	}
	return wslog.NewLogger(w, cfg.Verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// addCrawlFlags registers the flags shared by crawl and run.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum number of pages to store")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth, "Maximum link depth from the seeds")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Politeness delay after each page fetch")
	cmd.Flags().Duration("timeout", config.DefaultFetchTimeout, "Timeout of a single page fetch")
	cmd.Flags().StringSlice("allowed-domain", nil, "Host the crawl may visit (repeatable, default: seed hosts)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User agent for requests and robots.txt")
	cmd.Flags().Bool("keep-html", false, "Store the raw HTML of each page")
	cmd.Flags().StringSlice("ignore", nil, "Path glob whose links are not followed (repeatable)")
	cmd.Flags().StringSlice("follow", nil, "Only follow links whose path matches (repeatable)")
	cmd.Flags().StringSlice("skip-title", nil, "Do not store pages whose title contains this (repeatable)")
}

// applyCrawlFlags merges crawl flags and seed arguments into cfg.
func applyCrawlFlags(cmd *cobra.Command, args []string, cfg *config.Config) error {
	f := cmd.Flags()
	if len(args) > 0 {
		cfg.Crawl.Seeds = args
	}
	for _, err := range []error{
		override(cmd, "max-pages", &cfg.Crawl.MaxPages, f.GetInt),
		override(cmd, "max-depth", &cfg.Crawl.MaxDepth, f.GetInt),
		override(cmd, "delay", &cfg.Crawl.Delay, f.GetDuration),
		override(cmd, "timeout", &cfg.Crawl.FetchTimeout, f.GetDuration),
		override(cmd, "allowed-domain", &cfg.Crawl.AllowedDomains, f.GetStringSlice),
		override(cmd, "user-agent", &cfg.Crawl.UserAgent, f.GetString),
		override(cmd, "keep-html", &cfg.Crawl.KeepHTML, f.GetBool),
		override(cmd, "ignore", &cfg.Crawl.IgnorePatterns, f.GetStringSlice),
		override(cmd, "follow", &cfg.Crawl.FollowPatterns, f.GetStringSlice),
		override(cmd, "skip-title", &cfg.Crawl.SkipTitleSubstrings, f.GetStringSlice),
	} {
		if err != nil {
			return err
		}
	}
	return cfg.ValidateCrawl()
}

// newSpider builds a Spider from the crawl configuration. Progress lines
// are written to out.
func newSpider(cfg config.CrawlConfig, logger *slog.Logger, out io.Writer) *crawler.Spider {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return crawler.NewSpider(client,
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithDelay(cfg.Delay),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRobotsTimeout(cfg.RobotsTimeout),
		crawler.WithAllowedDomains(cfg.AllowedDomains),
		crawler.WithIgnorePatterns(cfg.IgnorePatterns),
		crawler.WithFollowPatterns(cfg.FollowPatterns),
		crawler.WithSkipTitleSubstrings(cfg.SkipTitleSubstrings),
		crawler.WithKeepHTML(cfg.KeepHTML),
		crawler.WithProgress(progressPrinter(out)),
		crawler.WithLogger(logger),
	)
}

// progressPrinter prints one status line per stored document.
func progressPrinter(out io.Writer) crawler.ProgressFunc {
	return func(p crawler.Progress) {
		var percent float64
		if p.MaxPages > 0 {
			percent = float64(p.DocID) / float64(p.MaxPages) * 100
		}
		parent := p.ParentURL
		if parent == "" {
			parent = "seed"
		}
		fmt.Fprintf(out,
			"[%d/%d] %.1f%% complete | depth %d | frontier %d | parent %s | "+
				"page %.2fs excl delay | total %.2fs excl delay | wall %.2fs incl delay | %s\n",
			p.DocID, p.MaxPages, percent, p.Depth, p.FrontierLen, parent,
			p.PageTime.Seconds(), p.ProcessingTime.Seconds(), p.WallTime.Seconds(), p.URL)
	}
}

// newAnalyzer builds the text pipeline from the index configuration.
func newAnalyzer(cfg config.IndexConfig) (*analysis.Analyzer, error) {
	stopwords := analysis.DefaultStopwords()
	if cfg.StopwordsFile != "" {
		var err error
		stopwords, err = analysis.LoadStopwords(cfg.StopwordsFile)
		if err != nil {
			return nil, err
		}
	}
	return analysis.New(analysis.WithStopwords(stopwords), analysis.WithStemming(cfg.Stem)), nil
}

// addIndexFlags registers the text pipeline flags.
func addIndexFlags(cmd *cobra.Command) {
	cmd.Flags().String("stopwords", "", "Stopwords file, one word per line (default: built-in English list)")
	cmd.Flags().Bool("stem", false, "Apply Snowball English stemming")
	cmd.Flags().Int("snippet-length", config.DefaultSnippetLength, "Characters of content stored as snippet")
}

func applyIndexFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	for _, err := range []error{
		override(cmd, "stopwords", &cfg.Index.StopwordsFile, f.GetString),
		override(cmd, "stem", &cfg.Index.Stem, f.GetBool),
		override(cmd, "snippet-length", &cfg.Index.SnippetLength, f.GetInt),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// addPageRankFlags registers the PageRank flags.
func addPageRankFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("damping", config.DefaultDamping, "Damping factor in (0, 1)")
	cmd.Flags().Int("max-iter", config.DefaultMaxIterations, "Maximum number of power iterations")
	cmd.Flags().Float64("tol", config.DefaultTolerance, "L1 convergence tolerance")
	cmd.Flags().Int("workers", 0, "Goroutines per iteration (default: one per CPU)")
}

func applyPageRankFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	for _, err := range []error{
		override(cmd, "damping", &cfg.PageRank.Damping, f.GetFloat64),
		override(cmd, "max-iter", &cfg.PageRank.MaxIterations, f.GetInt),
		override(cmd, "tol", &cfg.PageRank.Tolerance, f.GetFloat64),
		override(cmd, "workers", &cfg.PageRank.Workers, f.GetInt),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func newEngine(cfg config.PageRankConfig) (*pagerank.Engine, error) {
	opts := []pagerank.Option{
		pagerank.WithDamping(cfg.Damping),
		pagerank.WithMaxIterations(cfg.MaxIterations),
		pagerank.WithTolerance(cfg.Tolerance),
	}
	if cfg.Workers > 0 {
		opts = append(opts, pagerank.WithWorkers(cfg.Workers))
	}
	return pagerank.New(opts...)
}

// addSearchFlags registers the ranking flags shared by search, serve and eval.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("w1", config.DefaultCosineWeight, "Weight of cosine similarity")
	cmd.Flags().Float64("w2", config.DefaultPageRankWeight, "Weight of PageRank")
	cmd.Flags().Bool("normalize", true, "Use min-max normalized PageRank scores")
	cmd.Flags().IntP("top", "k", config.DefaultResultLimit, "Number of results (0 for all)")
}

func searchOptions(cmd *cobra.Command, cfg *config.Config) (search.Options, error) {
	f := cmd.Flags()
	for _, err := range []error{
		override(cmd, "w1", &cfg.Search.CosineWeight, f.GetFloat64),
		override(cmd, "w2", &cfg.Search.PageRankWeight, f.GetFloat64),
		override(cmd, "normalize", &cfg.Search.NormalizePageRank, f.GetBool),
		override(cmd, "top", &cfg.Search.Limit, f.GetInt),
	} {
		if err != nil {
			return search.Options{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return search.Options{}, fmt.Errorf("configuration error: %w", err)
	}
	return search.Options{
		CosineWeight:      cfg.Search.CosineWeight,
		PageRankWeight:    cfg.Search.PageRankWeight,
		NormalizePageRank: cfg.Search.NormalizePageRank,
		Limit:             cfg.Search.Limit,
	}, nil
}

// openStore opens the artifact database. With create false a missing
// database is reported as database.ErrNotFound.
func openStore(cfg *config.Config, create bool) (*database.Store, error) {
	store, err := database.Open(cfg.IndexDir(), database.Options{
		CreateIfNotExists: create,
		EnableWAL:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// loadScorer reads the index and PageRank into memory. A missing PageRank
// only logs a warning; every document then scores 0 on that component.
func loadScorer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*search.Scorer, error) {
	store, err := openStore(cfg, false)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("no index in %s: run `websearch index` first: %w", cfg.IndexDir(), err)
		}
		return nil, err
	}
	defer store.Close()

	idx, err := store.LoadIndex(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("no index in %s: run `websearch index` first: %w", cfg.IndexDir(), err)
		}
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	pr, err := store.LoadPageRank(ctx)
	switch {
	case errors.Is(err, database.ErrNotFound):
		logger.Warn("no pagerank found, ranking by cosine similarity only; run `websearch pagerank`")
		pr = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load pagerank: %w", err)
	}

	logger.Debug("index loaded",
		"documents", idx.DocumentCount,
		"terms", len(idx.Dictionary),
		"pagerank", pr != nil,
	)
	return search.NewScorer(idx, pr), nil
}
