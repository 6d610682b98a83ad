// Package corpus holds the crawled documents and persists them.
//
// A Corpus is append-only and addressed by doc_id. Document ids are
// assigned sequentially from 1 and every canonical URL owns exactly one id.
// On disk the corpus is JSON Lines, one document per line, with a JSON
// manifest written next to it.
package corpus
