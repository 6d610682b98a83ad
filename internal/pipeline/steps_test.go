package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/websearch/internal/analysis"
	"github.com/nao1215/websearch/internal/config"
	"github.com/nao1215/websearch/internal/corpus"
	"github.com/nao1215/websearch/internal/database"
	"github.com/nao1215/websearch/internal/index"
	"github.com/nao1215/websearch/internal/model"
	"github.com/nao1215/websearch/internal/pagerank"
)

// fakeCrawler returns a fixed corpus and error.
type fakeCrawler struct {
	corpus *corpus.Corpus
	err    error
	seeds  []string
}

func (f *fakeCrawler) Crawl(_ context.Context, seeds []string) (*corpus.Corpus, error) {
	f.seeds = seeds
	return f.corpus, f.err
}

// testCorpus builds a three page site: 1 links to 2 and 3, 2 links to 3.
func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()

	c := corpus.New()
	docs := []*model.Document{
		{DocID: 1, URL: "https://example.com/", Title: "Home", Content: "search engine home",
			Outlinks: []string{"https://example.com/a", "https://example.com/b"}},
		{DocID: 2, URL: "https://example.com/a", Title: "Ranking", Content: "pagerank ranking links",
			Outlinks: []string{"https://example.com/b"}, Depth: 1, ParentURL: "https://example.com/"},
		{DocID: 3, URL: "https://example.com/b", Title: "Index", Content: "inverted index postings",
			Depth: 1, ParentURL: "https://example.com/"},
	}
	for _, doc := range docs {
		if err := c.Add(doc); err != nil {
			t.Fatalf("failed to add document: %v", err)
		}
	}
	return c
}

func openStore(t *testing.T) *database.Store {
	t.Helper()

	s, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newEngine(t *testing.T) *pagerank.Engine {
	t.Helper()

	e, err := pagerank.New()
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return e
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig().Crawl
	cfg.Seeds = []string{"https://example.com/"}

	t.Run("writes corpus and manifest", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "crawl", "pages.jsonl")
		crawler := &fakeCrawler{corpus: testCorpus(t)}
		state := NewState()

		if err := NewCrawlStep(crawler, cfg, path).Do(context.Background(), state); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if len(crawler.seeds) != 1 || crawler.seeds[0] != "https://example.com/" {
			t.Errorf("crawler received seeds %v", crawler.seeds)
		}

		loaded, err := corpus.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read corpus: %v", err)
		}
		if loaded.Len() != 3 {
			t.Errorf("corpus has %d documents, want 3", loaded.Len())
		}

		manifest, err := corpus.ReadManifest(corpus.ManifestPath(path))
		if err != nil {
			t.Fatalf("failed to read manifest: %v", err)
		}
		if manifest.TotalDocuments != 3 || manifest.URLToID["https://example.com/b"] != 3 {
			t.Errorf("unexpected manifest: %+v", manifest)
		}
		if state.Corpus == nil || state.Manifest == nil {
			t.Error("state should hold corpus and manifest")
		}
	})

	t.Run("saves partial corpus on cancellation", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pages.jsonl")
		crawler := &fakeCrawler{corpus: testCorpus(t), err: context.Canceled}

		err := NewCrawlStep(crawler, cfg, path).Do(context.Background(), NewState())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Do() error = %v, want context.Canceled", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("partial corpus should be written: %v", err)
		}
	})

	t.Run("empty failed crawl writes nothing", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pages.jsonl")
		errNoSeeds := errors.New("no seeds")
		crawler := &fakeCrawler{err: errNoSeeds}

		err := NewCrawlStep(crawler, cfg, path).Do(context.Background(), NewState())
		if !errors.Is(err, errNoSeeds) {
			t.Fatalf("Do() error = %v, want %v", err, errNoSeeds)
		}
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("no corpus should be written, stat error = %v", err)
		}
	})
}

func TestLoadCorpusStep(t *testing.T) {
	t.Parallel()

	t.Run("loads corpus without manifest", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "pages.jsonl")
		if err := corpus.WriteFile(path, testCorpus(t)); err != nil {
			t.Fatalf("failed to write corpus: %v", err)
		}

		state := NewState()
		if err := NewLoadCorpusStep(path, nil).Do(context.Background(), state); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if state.Corpus.Len() != 3 {
			t.Errorf("loaded %d documents, want 3", state.Corpus.Len())
		}
		if state.Manifest != nil {
			t.Error("manifest should be nil when the file is absent")
		}
	})

	t.Run("missing corpus fails", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing.jsonl")
		err := NewLoadCorpusStep(path, nil).Do(context.Background(), NewState())
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Do() error = %v, want os.ErrNotExist", err)
		}
	})
}

func TestIndexStep(t *testing.T) {
	t.Parallel()

	t.Run("builds and saves index", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		state := NewState()
		state.Corpus = testCorpus(t)

		step := NewIndexStep(index.NewBuilder(analysis.New()), store, nil)
		if err := step.Do(context.Background(), state); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if state.Index == nil || state.Index.DocumentCount != 3 {
			t.Fatalf("unexpected index in state: %+v", state.Index)
		}

		saved, err := store.LoadIndex(context.Background())
		if err != nil {
			t.Fatalf("LoadIndex() error = %v", err)
		}
		if _, ok := saved.Dictionary["pagerank"]; !ok {
			t.Error("saved dictionary should contain \"pagerank\"")
		}
	})

	t.Run("requires corpus", func(t *testing.T) {
		t.Parallel()

		step := NewIndexStep(index.NewBuilder(nil), openStore(t), nil)
		if err := step.Do(context.Background(), NewState()); !errors.Is(err, ErrNoCorpus) {
			t.Errorf("Do() error = %v, want ErrNoCorpus", err)
		}
	})
}

func TestPageRankStep(t *testing.T) {
	t.Parallel()

	t.Run("ranks and saves", func(t *testing.T) {
		t.Parallel()

		store := openStore(t)
		state := NewState()
		state.Corpus = testCorpus(t)

		if err := NewPageRankStep(newEngine(t), store, nil).Do(context.Background(), state); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		pr := state.PageRank
		if pr == nil || len(pr.Scores) != 3 {
			t.Fatalf("unexpected pagerank in state: %+v", pr)
		}
		// Page 3 receives links from both other pages.
		if pr.Scores[3] <= pr.Scores[2] || pr.Scores[3] <= pr.Scores[1] {
			t.Errorf("expected doc 3 to rank highest, got %v", pr.Scores)
		}
		if pr.Normalized[3] != 1 {
			t.Errorf("normalized score of top doc = %v, want 1", pr.Normalized[3])
		}

		if _, err := store.LoadPageRank(context.Background()); err != nil {
			t.Errorf("LoadPageRank() error = %v", err)
		}
	})

	t.Run("requires corpus", func(t *testing.T) {
		t.Parallel()

		step := NewPageRankStep(newEngine(t), openStore(t), nil)
		if err := step.Do(context.Background(), NewState()); !errors.Is(err, ErrNoCorpus) {
			t.Errorf("Do() error = %v, want ErrNoCorpus", err)
		}
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "crawl", "pages.jsonl")
	store := openStore(t)

	cfg := config.NewConfig().Crawl
	cfg.Seeds = []string{"https://example.com/"}

	p := New()
	p.AddSteps(
		NewCrawlStep(&fakeCrawler{corpus: testCorpus(t)}, cfg, path),
		Parallel(
			NewIndexStep(index.NewBuilder(analysis.New()), store, nil),
			NewPageRankStep(newEngine(t), store, nil),
		),
	)

	state := NewState()
	if err := p.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if state.Index == nil || state.PageRank == nil {
		t.Fatal("index and pagerank should both be set")
	}
	if got := len(state.Completed()); got != 4 {
		t.Errorf("Completed() = %v, want crawl, both members and the group", state.Completed())
	}
}
