// Package server serves the search engine over HTTP.
//
// GET / renders an HTML search form with its results, GET /api/search
// returns the same results as JSON and GET /healthz reports readiness.
// All routes share one token bucket; requests beyond it get 429.
package server
