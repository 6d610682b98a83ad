package model

// PageRank holds the output of one PageRank run.
type PageRank struct {
	// Scores are the raw stationary probabilities. They sum to 1.
	Scores map[int]float64 `json:"scores"`

	// Normalized are the scores min-max rescaled into [0,1].
	Normalized map[int]float64 `json:"normalized"`

	// Iterations is the number of power iterations performed.
	Iterations int `json:"iterations"`

	// Converged reports whether the L1 delta fell below the tolerance
	// before the iteration limit.
	Converged bool `json:"converged"`

	// Delta is the L1 change of the last iteration.
	Delta float64 `json:"delta"`
}

// Component returns the PageRank component used for ranking a document.
// Documents missing from the vector score 0.
func (pr *PageRank) Component(docID int, normalized bool) float64 {
	if pr == nil {
		return 0
	}
	if normalized {
		return pr.Normalized[docID]
	}
	return pr.Scores[docID]
}
