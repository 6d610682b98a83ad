package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/nao1215/websearch/internal/config"
	"github.com/nao1215/websearch/internal/corpus"
	"github.com/nao1215/websearch/internal/index"
	"github.com/nao1215/websearch/internal/model"
	"github.com/nao1215/websearch/internal/pagerank"
)

// ErrNoCorpus is returned by steps that need a corpus when none was
// crawled or loaded earlier in the run.
var ErrNoCorpus = errors.New("no corpus in pipeline state")

// Crawler fetches a corpus starting from seed URLs.
// *crawler.Spider implements it.
type Crawler interface {
	Crawl(ctx context.Context, seeds []string) (*corpus.Corpus, error)
}

// IndexSaver persists an index. *database.Store implements it.
type IndexSaver interface {
	SaveIndex(ctx context.Context, idx *model.Index) error
}

// PageRankSaver persists a PageRank vector. *database.Store implements it.
type PageRankSaver interface {
	SavePageRank(ctx context.Context, pr *model.PageRank) error
}

// CrawlStep crawls from the configured seeds and writes the corpus and
// its manifest.
//
// A cancelled crawl still writes the documents fetched so far, since a
// partial corpus is usable, and then returns the cancellation error.
type CrawlStep struct {
	crawler    Crawler
	cfg        config.CrawlConfig
	corpusPath string
	logger     *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl step writing to corpusPath.
func NewCrawlStep(crawler Crawler, cfg config.CrawlConfig, corpusPath string, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		crawler:    crawler,
		cfg:        cfg,
		corpusPath: corpusPath,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, state *State) error {
	startedAt := time.Now()
	c, crawlErr := s.crawler.Crawl(ctx, s.cfg.Seeds)
	if crawlErr != nil && (c == nil || c.Len() == 0) {
		return fmt.Errorf("crawl failed: %w", crawlErr)
	}
	if crawlErr != nil {
		s.logger.Warn("crawl interrupted, saving partial corpus",
			"documents", c.Len(),
			"error", crawlErr,
		)
	}

	if err := corpus.WriteFile(s.corpusPath, c); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}

	manifest := corpus.NewManifest(c, s.corpusPath, s.cfg.Seeds, s.cfg.AllowedDomains,
		s.cfg.MaxPages, s.cfg.MaxDepth, s.cfg.Delay, startedAt, time.Now())
	manifestPath := corpus.ManifestPath(s.corpusPath)
	if err := corpus.WriteManifest(manifestPath, manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	s.logger.Info("corpus written",
		"path", s.corpusPath,
		"manifest", manifestPath,
		"documents", c.Len(),
	)

	state.Corpus = c
	state.Manifest = manifest
	return crawlErr
}

// LoadCorpusStep reads a previously crawled corpus.
type LoadCorpusStep struct {
	path   string
	logger *slog.Logger
}

// NewLoadCorpusStep creates a step reading the corpus at path.
func NewLoadCorpusStep(path string, logger *slog.Logger) *LoadCorpusStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadCorpusStep{path: path, logger: logger}
}

// Name returns the step name.
func (s *LoadCorpusStep) Name() string {
	return "load_corpus"
}

// Do reads the corpus and, when present, its manifest.
func (s *LoadCorpusStep) Do(_ context.Context, state *State) error {
	c, err := corpus.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	manifest, err := corpus.ReadManifest(corpus.ManifestPath(s.path))
	switch {
	case err == nil:
		state.Manifest = manifest
	case errors.Is(err, os.ErrNotExist):
		s.logger.Debug("no manifest next to corpus", "path", s.path)
	default:
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	s.logger.Info("corpus loaded", "path", s.path, "documents", c.Len())
	state.Corpus = c
	return nil
}

// IndexStep builds the TF-IDF index of the corpus and saves it.
type IndexStep struct {
	builder *index.Builder
	store   IndexSaver
	logger  *slog.Logger
}

// NewIndexStep creates an index step.
func NewIndexStep(builder *index.Builder, store IndexSaver, logger *slog.Logger) *IndexStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexStep{builder: builder, store: store, logger: logger}
}

// Name returns the step name.
func (s *IndexStep) Name() string {
	return "index"
}

// Do builds and saves the index.
func (s *IndexStep) Do(ctx context.Context, state *State) error {
	if state.Corpus == nil {
		return ErrNoCorpus
	}

	idx, err := s.builder.Build(state.Corpus.Documents())
	if err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}
	if err := s.store.SaveIndex(ctx, idx); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	s.logger.Info("index built",
		"documents", idx.DocumentCount,
		"terms", len(idx.Dictionary),
	)
	state.Index = idx
	return nil
}

// PageRankStep ranks the corpus link graph and saves the scores.
type PageRankStep struct {
	engine *pagerank.Engine
	store  PageRankSaver
	logger *slog.Logger
}

// NewPageRankStep creates a PageRank step.
func NewPageRankStep(engine *pagerank.Engine, store PageRankSaver, logger *slog.Logger) *PageRankStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageRankStep{engine: engine, store: store, logger: logger}
}

// Name returns the step name.
func (s *PageRankStep) Name() string {
	return "pagerank"
}

// Do computes and saves PageRank. Hitting the iteration limit only logs
// a warning.
func (s *PageRankStep) Do(ctx context.Context, state *State) error {
	if state.Corpus == nil {
		return ErrNoCorpus
	}

	graph := pagerank.BuildGraph(state.Corpus.Documents())
	pr, err := s.engine.Rank(ctx, graph)
	if err != nil {
		return fmt.Errorf("failed to compute pagerank: %w", err)
	}
	if !pr.Converged {
		s.logger.Warn("pagerank did not converge",
			"iterations", pr.Iterations,
			"delta", pr.Delta,
		)
	}
	if err := s.store.SavePageRank(ctx, pr); err != nil {
		return fmt.Errorf("failed to save pagerank: %w", err)
	}

	s.logger.Info("pagerank computed",
		"documents", graph.Len(),
		"edges", graph.EdgeCount(),
		"dangling", graph.DanglingCount(),
		"iterations", pr.Iterations,
		"delta", pr.Delta,
	)
	state.PageRank = pr
	return nil
}
