// Package config provides configuration structures and utilities for websearch.
// It defines the settings of each stage (crawl, index, pagerank, search and
// the web UI), their defaults, validation, and YAML file loading.
package config
