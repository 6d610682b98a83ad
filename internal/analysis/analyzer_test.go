package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and splits on punctuation", "Information-Retrieval, 101!", []string{"information", "retrieval", "101"}},
		{"non-ascii letters are boundaries", "naïve café", []string{"na", "ve", "caf"}},
		{"empty text", "", nil},
		{"only punctuation", "--- !!! ...", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("without options keeps every token", func(t *testing.T) {
		t.Parallel()

		a := New()
		assert.Equal(t, []string{"the", "web", "is", "big"}, a.Analyze("The Web is big"))
	})

	t.Run("drops stopwords before stemming", func(t *testing.T) {
		t.Parallel()

		a := New(WithStopwords(NewStopwordSet("the", "is")))
		assert.Equal(t, []string{"web", "big"}, a.Analyze("The Web is big"))
	})

	t.Run("stems surviving tokens", func(t *testing.T) {
		t.Parallel()

		a := New(WithStemming(true))
		assert.Equal(t, []string{"run", "crawler", "index"}, a.Analyze("running crawlers indexing"))
	})

	t.Run("term frequencies count analyzed terms", func(t *testing.T) {
		t.Parallel()

		a := New(WithStopwords(NewStopwordSet("a")), WithStemming(true))
		tf := a.TermFrequencies("A link links linked a LINK")
		assert.Equal(t, map[string]int{"link": 4}, tf)
	})

	t.Run("settings round trip reproduces the pipeline", func(t *testing.T) {
		t.Parallel()

		original := New(WithStopwords(NewStopwordSet("of", "the")), WithStemming(true))
		rebuilt := FromSettings(original.Settings())

		text := "The ranking of the ranked pages"
		assert.Equal(t, original.Analyze(text), rebuilt.Analyze(text))
		assert.Equal(t, []string{"of", "the"}, original.Settings().Stopwords)
	})
}

func TestStopwords(t *testing.T) {
	t.Parallel()

	t.Run("reader ignores comments and blank lines", func(t *testing.T) {
		t.Parallel()

		set, err := ReadStopwords(strings.NewReader("# comment\n\n  The \nAND\n#and\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"and", "the"}, set.Sorted())
	})

	t.Run("default list contains common words", func(t *testing.T) {
		t.Parallel()

		set := DefaultStopwords()
		assert.True(t, set.Contains("the"))
		assert.True(t, set.Contains("and"))
		assert.False(t, set.Contains("pagerank"))
		assert.False(t, set.Contains("# built-in english stopword list."))
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, err := LoadStopwords(t.TempDir() + "/missing.txt")
		assert.Error(t, err)
	})
}
