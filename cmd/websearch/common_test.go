package main

import (
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/websearch/internal/config"
	"github.com/nao1215/websearch/internal/crawler"
)

func crawlerProgressFixture() crawler.Progress {
	return crawler.Progress{
		DocID:          5,
		MaxPages:       20,
		URL:            "http://example.com/x",
		Depth:          1,
		ParentURL:      "http://example.com/",
		FrontierLen:    7,
		PageTime:       250 * time.Millisecond,
		ProcessingTime: 1500 * time.Millisecond,
		WallTime:       6 * time.Second,
	}
}

func TestApplyCrawlFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config values", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{Use: "crawl"}
		addCrawlFlags(cmd)
		if err := cmd.ParseFlags([]string{"--max-depth", "4"}); err != nil {
			t.Fatal(err)
		}

		cfg := config.NewConfig()
		cfg.Crawl.MaxPages = 25
		cfg.Crawl.Seeds = []string{"https://from-config.example/"}

		if err := applyCrawlFlags(cmd, nil, cfg); err != nil {
			t.Fatalf("applyCrawlFlags() error = %v", err)
		}
		if cfg.Crawl.MaxPages != 25 {
			t.Errorf("MaxPages = %d, want config value 25", cfg.Crawl.MaxPages)
		}
		if cfg.Crawl.MaxDepth != 4 {
			t.Errorf("MaxDepth = %d, want flag value 4", cfg.Crawl.MaxDepth)
		}
		if cfg.Crawl.Seeds[0] != "https://from-config.example/" {
			t.Errorf("Seeds = %v", cfg.Crawl.Seeds)
		}
	})

	t.Run("arguments replace seeds", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{Use: "crawl"}
		addCrawlFlags(cmd)
		if err := cmd.ParseFlags([]string{"--allowed-domain", "a.example,b.example"}); err != nil {
			t.Fatal(err)
		}

		cfg := config.NewConfig()
		cfg.Crawl.Seeds = []string{"https://old.example/"}
		if err := applyCrawlFlags(cmd, []string{"https://new.example/"}, cfg); err != nil {
			t.Fatalf("applyCrawlFlags() error = %v", err)
		}
		if len(cfg.Crawl.Seeds) != 1 || cfg.Crawl.Seeds[0] != "https://new.example/" {
			t.Errorf("Seeds = %v", cfg.Crawl.Seeds)
		}
		if len(cfg.Crawl.AllowedDomains) != 2 {
			t.Errorf("AllowedDomains = %v", cfg.Crawl.AllowedDomains)
		}
	})
}

func TestSearchOptions(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "search"}
	addSearchFlags(cmd)
	if err := cmd.ParseFlags([]string{"--w2", "0.5", "--normalize=false", "-k", "3"}); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewConfig()
	opts, err := searchOptions(cmd, cfg)
	if err != nil {
		t.Fatalf("searchOptions() error = %v", err)
	}
	if opts.CosineWeight != config.DefaultCosineWeight || opts.PageRankWeight != 0.5 {
		t.Errorf("weights = (%v, %v)", opts.CosineWeight, opts.PageRankWeight)
	}
	if opts.NormalizePageRank || opts.Limit != 3 {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestNewAnalyzer(t *testing.T) {
	t.Parallel()

	a, err := newAnalyzer(config.IndexConfig{Stem: true})
	if err != nil {
		t.Fatalf("newAnalyzer() error = %v", err)
	}
	settings := a.Settings()
	if !settings.Stem || len(settings.Stopwords) == 0 {
		t.Errorf("expected stemming and built-in stopwords, got %+v", settings)
	}

	if _, err := newAnalyzer(config.IndexConfig{StopwordsFile: "/nonexistent/stopwords.txt"}); err == nil {
		t.Error("expected error for missing stopwords file")
	}
}
