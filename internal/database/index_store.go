package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nao1215/websearch/internal/model"
)

// SaveIndex replaces the stored index with idx.
// Rows are written in term and doc_id order.
func (s *Store) SaveIndex(ctx context.Context, idx *model.Index) error {
	analyzer, err := json.Marshal(idx.Analyzer)
	if err != nil {
		return fmt.Errorf("failed to serialize analyzer settings: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"dictionary", "postings", "doc_norms", "documents"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		terms := idx.Terms()
		err := bulkInsert(ctx, tx, `INSERT INTO dictionary (term, df, idf) VALUES (?, ?, ?)`,
			func(exec func(...any) error) error {
				for _, term := range terms {
					stats := idx.Dictionary[term]
					if err := exec(term, stats.DocumentFrequency, stats.IDF); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("dictionary: %w", err)
		}

		err = bulkInsert(ctx, tx, `INSERT INTO postings (term, doc_id, weight) VALUES (?, ?, ?)`,
			func(exec func(...any) error) error {
				for _, term := range terms {
					for _, p := range idx.Postings[term] {
						if err := exec(term, p.DocID, p.Weight); err != nil {
							return err
						}
					}
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("postings: %w", err)
		}

		docIDs := idx.DocIDs()
		err = bulkInsert(ctx, tx, `INSERT INTO doc_norms (doc_id, norm) VALUES (?, ?)`,
			func(exec func(...any) error) error {
				for _, id := range docIDs {
					if err := exec(id, idx.Norms[id]); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("doc_norms: %w", err)
		}

		err = bulkInsert(ctx, tx, `INSERT INTO documents (doc_id, url, title, snippet) VALUES (?, ?, ?, ?)`,
			func(exec func(...any) error) error {
				for _, id := range docIDs {
					meta := idx.Documents[id]
					if err := exec(id, meta.URL, meta.Title, meta.Snippet); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("documents: %w", err)
		}

		if err := putSetting(ctx, tx, keyIndexAnalyzer, string(analyzer)); err != nil {
			return err
		}
		if err := putSetting(ctx, tx, keyIndexBuiltAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		return putSetting(ctx, tx, keyIndexDocuments, strconv.Itoa(idx.DocumentCount))
	})
}

// LoadIndex reads the stored index. It returns ErrNotFound when no index
// has been saved.
func (s *Store) LoadIndex(ctx context.Context) (*model.Index, error) {
	settings, err := s.settings(ctx, keyIndexDocuments, keyIndexAnalyzer)
	if err != nil {
		return nil, err
	}
	count, ok := settings[keyIndexDocuments]
	if !ok {
		return nil, fmt.Errorf("%w: index", ErrNotFound)
	}

	idx := model.NewIndex()
	if idx.DocumentCount, err = strconv.Atoi(count); err != nil {
		return nil, fmt.Errorf("invalid document count %q: %w", count, err)
	}
	if raw, ok := settings[keyIndexAnalyzer]; ok {
		if err := json.Unmarshal([]byte(raw), &idx.Analyzer); err != nil {
			return nil, fmt.Errorf("invalid analyzer settings: %w", err)
		}
	}

	err = s.scanRows(ctx, `SELECT term, df, idf FROM dictionary`, func(rows *sql.Rows) error {
		var term string
		var stats model.TermStats
		if err := rows.Scan(&term, &stats.DocumentFrequency, &stats.IDF); err != nil {
			return err
		}
		idx.Dictionary[term] = stats
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}

	err = s.scanRows(ctx, `SELECT term, doc_id, weight FROM postings ORDER BY term, doc_id`, func(rows *sql.Rows) error {
		var term string
		var p model.Posting
		if err := rows.Scan(&term, &p.DocID, &p.Weight); err != nil {
			return err
		}
		idx.Postings[term] = append(idx.Postings[term], p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load postings: %w", err)
	}

	err = s.scanRows(ctx, `SELECT doc_id, norm FROM doc_norms`, func(rows *sql.Rows) error {
		var id int
		var norm float64
		if err := rows.Scan(&id, &norm); err != nil {
			return err
		}
		idx.Norms[id] = norm
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load doc norms: %w", err)
	}

	err = s.scanRows(ctx, `SELECT doc_id, url, title, snippet FROM documents`, func(rows *sql.Rows) error {
		var meta model.DocMeta
		if err := rows.Scan(&meta.DocID, &meta.URL, &meta.Title, &meta.Snippet); err != nil {
			return err
		}
		idx.Documents[meta.DocID] = meta
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	return idx, nil
}

func (s *Store) scanRows(ctx context.Context, query string, scan func(*sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
