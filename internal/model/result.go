package model

import "time"

// Result is one ranked search hit.
type Result struct {
	Rank     int     `json:"rank"`
	DocID    int     `json:"doc_id"`
	URL      string  `json:"url"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Score    float64 `json:"score"`
	Cosine   float64 `json:"cosine"`
	PageRank float64 `json:"pagerank"`
}

// QueryEvaluation holds the retrieval metrics of a single query.
type QueryEvaluation struct {
	QueryID          int           `json:"query_id"`
	Query            string        `json:"query"`
	Relevant         int           `json:"relevant"`
	Retrieved        int           `json:"retrieved"`
	AveragePrecision float64       `json:"average_precision"`
	RPrecision       float64       `json:"r_precision"`
	Latency          time.Duration `json:"latency_ns"`
}

// Evaluation summarizes a run over a query set.
type Evaluation struct {
	Queries              []QueryEvaluation `json:"queries"`
	MeanAveragePrecision float64           `json:"map"`
	MeanRPrecision       float64           `json:"mean_r_precision"`
	MeanLatency          time.Duration     `json:"mean_latency_ns"`
}
