package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Query is one judged query.
type Query struct {
	ID   int
	Text string
}

// Qrels maps a query id to its relevant doc_ids in file order.
type Qrels map[int][]int

// ParseQueries reads queries in CACM layout. Records whose ".I" line has no
// numeric id are skipped. A repeated id replaces the earlier text.
func ParseQueries(r io.Reader) ([]Query, error) {
	var (
		queries    []Query
		position   = make(map[int]int)
		current    *Query
		collecting bool
		buffer     []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(buffer, " "))
		if i, ok := position[current.ID]; ok {
			queries[i] = *current
		} else {
			position[current.ID] = len(queries)
			queries = append(queries, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, ".I"):
			flush()
			buffer = buffer[:0]
			collecting = false
			fields := strings.Fields(line)
			if len(fields) > 1 {
				if id, err := strconv.Atoi(fields[1]); err == nil {
					current = &Query{ID: id}
				}
			}
		case strings.HasPrefix(line, ".W"):
			collecting = true
		case strings.HasPrefix(line, "."):
			collecting = false
		case collecting:
			buffer = append(buffer, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queries: %w", err)
	}
	flush()

	return queries, nil
}

// ParseQrels reads "query_id doc_id" lines. Lines with fewer than two
// fields or non-numeric ids are skipped; extra fields are ignored.
func ParseQrels(r io.Reader) (Qrels, error) {
	qrels := make(Qrels)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		qid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		docID, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		qrels[qid] = append(qrels[qid], docID)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read qrels: %w", err)
	}
	return qrels, nil
}

// ReadQueries parses a query file.
func ReadQueries(path string) ([]Query, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided query file
	if err != nil {
		return nil, fmt.Errorf("failed to open queries: %w", err)
	}
	defer f.Close()
	return ParseQueries(f)
}

// ReadQrels parses a relevance judgment file.
func ReadQrels(path string) (Qrels, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided qrels file
	if err != nil {
		return nil, fmt.Errorf("failed to open qrels: %w", err)
	}
	defer f.Close()
	return ParseQrels(f)
}
