// Package report renders search results and evaluation summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain text layout printed by the search command
//   - JSONWriter: structured JSON, the same shape the HTTP API returns
//   - MarkdownWriter: Markdown tables for sharing evaluation runs
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
