package corpus

import (
	"errors"
	"fmt"
	"maps"

	"github.com/nao1215/websearch/internal/model"
)

var (
	// ErrDuplicateURL is returned when a document's URL already has an id.
	ErrDuplicateURL = errors.New("url already in corpus")

	// ErrNonSequentialID is returned when a document id is not the next id.
	ErrNonSequentialID = errors.New("doc_id is not sequential")

	// ErrEmptyURL is returned when a document has no URL.
	ErrEmptyURL = errors.New("document has no url")
)

// Corpus is an ordered collection of documents.
// It is not safe for concurrent writes; the crawler is its only writer.
type Corpus struct {
	docs  []*model.Document
	byURL map[string]int
}

// New returns an empty Corpus.
func New() *Corpus {
	return &Corpus{
		docs:  make([]*model.Document, 0),
		byURL: make(map[string]int),
	}
}

// NextID returns the id the next added document must carry.
func (c *Corpus) NextID() int {
	return len(c.docs) + 1
}

// Add appends a document.
func (c *Corpus) Add(doc *model.Document) error {
	if doc.URL == "" {
		return ErrEmptyURL
	}
	if id, ok := c.byURL[doc.URL]; ok {
		return fmt.Errorf("%w: %s (doc_id %d)", ErrDuplicateURL, doc.URL, id)
	}
	if doc.DocID != c.NextID() {
		return fmt.Errorf("%w: got %d, want %d", ErrNonSequentialID, doc.DocID, c.NextID())
	}

	c.docs = append(c.docs, doc)
	c.byURL[doc.URL] = doc.DocID
	return nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// Get returns the document with the given id.
func (c *Corpus) Get(docID int) (*model.Document, bool) {
	if docID < 1 || docID > len(c.docs) {
		return nil, false
	}
	return c.docs[docID-1], true
}

// Lookup returns the id of a canonical URL.
func (c *Corpus) Lookup(canonicalURL string) (int, bool) {
	id, ok := c.byURL[canonicalURL]
	return id, ok
}

// Documents returns the documents in doc_id order.
// The slice is a copy; the documents are shared.
func (c *Corpus) Documents() []*model.Document {
	out := make([]*model.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

// URLToID returns a copy of the url to doc_id mapping.
func (c *Corpus) URLToID() map[string]int {
	return maps.Clone(c.byURL)
}
