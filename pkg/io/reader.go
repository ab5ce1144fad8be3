// Package io provides input utilities for training data ingestion.
package io

import "context"

// Reader is the interface for reading tabular data from various sources.
type Reader interface {
	// Read returns the complete dataset.
	Read() ([][]float64, error)

	// Stream returns a channel of rows for sequential processing.
	Stream(ctx context.Context) (<-chan []float64, error)

	// Close releases resources.
	Close() error
}
