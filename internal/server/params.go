package server

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/websearch/internal/search"
)

// MaxResultLimit caps k for HTTP requests.
const MaxResultLimit = 100

// Request parameter errors. They map to 400 responses.
var (
	// ErrInvalidLimit is returned when k is not an integer in [1, MaxResultLimit].
	ErrInvalidLimit = errors.New("invalid k")

	// ErrQueryTooLong is returned for queries above maxQueryLength bytes.
	ErrQueryTooLong = errors.New("query too long")
)

const maxQueryLength = 1024

// request is a parsed search request.
type request struct {
	Query string
	// W1 and W2 are the weights as given, before normalization.
	W1, W2 float64
	Opts   search.Options
}

// parseRequest reads q, w1, w2, normalize and k from the query string.
// Unparsable weights fall back to the defaults; negative weights and a
// bad k are errors.
func parseRequest(values url.Values, defaults search.Options) (request, error) {
	req := request{
		Query: strings.TrimSpace(values.Get("q")),
		W1:    floatParam(values, "w1", defaults.CosineWeight),
		W2:    floatParam(values, "w2", defaults.PageRankWeight),
		Opts:  defaults,
	}
	if len(req.Query) > maxQueryLength {
		return req, ErrQueryTooLong
	}
	if req.W1 < 0 || req.W2 < 0 {
		return req, fmt.Errorf("%w: w1=%g w2=%g", search.ErrNegativeWeight, req.W1, req.W2)
	}
	req.Opts.CosineWeight = req.W1
	req.Opts.PageRankWeight = req.W2

	// The form sends a hidden "0" before the checkbox, so the last value wins.
	if normalize, ok := values["normalize"]; ok && len(normalize) > 0 {
		switch strings.ToLower(normalize[len(normalize)-1]) {
		case "1", "true", "on", "yes":
			req.Opts.NormalizePageRank = true
		default:
			req.Opts.NormalizePageRank = false
		}
	}

	if raw := values.Get("k"); raw != "" {
		k, err := strconv.Atoi(raw)
		if err != nil || k < 1 || k > MaxResultLimit {
			return req, fmt.Errorf("%w: %q must be between 1 and %d", ErrInvalidLimit, raw, MaxResultLimit)
		}
		req.Opts.Limit = k
	}

	return req, nil
}

func floatParam(values url.Values, name string, def float64) float64 {
	raw := values.Get(name)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
