// Package eval measures retrieval quality against judged queries.
//
// Queries use the CACM layout (".I <id>" starts a record, ".W" starts its
// text, any other dot field ends it) and relevance judgments are
// whitespace separated "query_id doc_id" lines. Each query is scored by
// average precision and R-precision; the run is summarized by their means.
package eval
