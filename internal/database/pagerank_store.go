package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/websearch/internal/model"
)

// SavePageRank replaces the stored PageRank vector with pr.
func (s *Store) SavePageRank(ctx context.Context, pr *model.PageRank) error {
	ids := make([]int, 0, len(pr.Scores))
	for id := range pr.Scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pagerank"); err != nil {
			return fmt.Errorf("failed to clear pagerank: %w", err)
		}

		err := bulkInsert(ctx, tx, `INSERT INTO pagerank (doc_id, score, normalized) VALUES (?, ?, ?)`,
			func(exec func(...any) error) error {
				for _, id := range ids {
					if err := exec(id, pr.Scores[id], pr.Normalized[id]); err != nil {
						return err
					}
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("pagerank: %w", err)
		}

		if err := putSetting(ctx, tx, keyPageRankConverged, strconv.FormatBool(pr.Converged)); err != nil {
			return err
		}
		if err := putSetting(ctx, tx, keyPageRankDelta, formatFloat(pr.Delta)); err != nil {
			return err
		}
		if err := putSetting(ctx, tx, keyPageRankBuiltAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return err
		}
		return putSetting(ctx, tx, keyPageRankIterations, strconv.Itoa(pr.Iterations))
	})
}

// LoadPageRank reads the stored PageRank vector. It returns ErrNotFound
// when PageRank has not been saved.
func (s *Store) LoadPageRank(ctx context.Context) (*model.PageRank, error) {
	settings, err := s.settings(ctx, keyPageRankIterations, keyPageRankConverged, keyPageRankDelta)
	if err != nil {
		return nil, err
	}
	iterations, ok := settings[keyPageRankIterations]
	if !ok {
		return nil, fmt.Errorf("%w: pagerank", ErrNotFound)
	}

	pr := &model.PageRank{
		Scores:     make(map[int]float64),
		Normalized: make(map[int]float64),
	}
	if pr.Iterations, err = strconv.Atoi(iterations); err != nil {
		return nil, fmt.Errorf("invalid iteration count %q: %w", iterations, err)
	}
	if pr.Converged, err = strconv.ParseBool(settings[keyPageRankConverged]); err != nil {
		return nil, fmt.Errorf("invalid converged flag: %w", err)
	}
	if pr.Delta, err = strconv.ParseFloat(settings[keyPageRankDelta], 64); err != nil {
		return nil, fmt.Errorf("invalid delta: %w", err)
	}

	err = s.scanRows(ctx, `SELECT doc_id, score, normalized FROM pagerank`, func(rows *sql.Rows) error {
		var id int
		var score, normalized float64
		if err := rows.Scan(&id, &score, &normalized); err != nil {
			return err
		}
		pr.Scores[id] = score
		pr.Normalized[id] = normalized
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pagerank: %w", err)
	}

	return pr, nil
}
