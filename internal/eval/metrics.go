package eval

import (
	"context"
	"time"

	"github.com/nao1215/websearch/internal/model"
	"github.com/nao1215/websearch/internal/search"
)

// Searcher runs a ranked query.
type Searcher interface {
	Search(query string, opts search.Options) ([]model.Result, error)
}

func uniqueInOrder(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AveragePrecision is the mean of precision@k over the ranks k holding a
// relevant document, divided by the number of relevant documents.
func AveragePrecision(retrieved, relevant []int) float64 {
	rel := uniqueInOrder(relevant)
	if len(rel) == 0 {
		return 0
	}
	relSet := make(map[int]struct{}, len(rel))
	for _, id := range rel {
		relSet[id] = struct{}{}
	}

	var hits int
	var sum float64
	for i, id := range retrieved {
		if _, ok := relSet[id]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(rel))
}

// RPrecision is the precision at rank R, where R is the number of
// relevant documents.
func RPrecision(retrieved, relevant []int) float64 {
	rel := uniqueInOrder(relevant)
	r := len(rel)
	if r == 0 {
		return 0
	}
	relSet := make(map[int]struct{}, r)
	for _, id := range rel {
		relSet[id] = struct{}{}
	}

	var hits int
	for _, id := range retrieved[:min(r, len(retrieved))] {
		if _, ok := relSet[id]; ok {
			hits++
		}
	}
	return float64(hits) / float64(r)
}

// Evaluate runs every query through s and scores it against qrels.
// Queries without judgments score 0 and still count toward the means.
func Evaluate(ctx context.Context, s Searcher, queries []Query, qrels Qrels, opts search.Options) (*model.Evaluation, error) {
	result := &model.Evaluation{
		Queries: make([]model.QueryEvaluation, 0, len(queries)),
	}
	if len(queries) == 0 {
		return result, nil
	}

	var apSum, rpSum float64
	var latencySum time.Duration
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		hits, err := s.Search(q.Text, opts)
		latency := time.Since(start)
		if err != nil {
			return nil, err
		}

		retrieved := make([]int, len(hits))
		for i, h := range hits {
			retrieved[i] = h.DocID
		}
		relevant := qrels[q.ID]

		qe := model.QueryEvaluation{
			QueryID:          q.ID,
			Query:            q.Text,
			Relevant:         len(uniqueInOrder(relevant)),
			Retrieved:        len(retrieved),
			AveragePrecision: AveragePrecision(retrieved, relevant),
			RPrecision:       RPrecision(retrieved, relevant),
			Latency:          latency,
		}
		result.Queries = append(result.Queries, qe)

		apSum += qe.AveragePrecision
		rpSum += qe.RPrecision
		latencySum += latency
	}

	n := float64(len(queries))
	result.MeanAveragePrecision = apSum / n
	result.MeanRPrecision = rpSum / n
	result.MeanLatency = latencySum / time.Duration(len(queries))
	return result, nil
}
