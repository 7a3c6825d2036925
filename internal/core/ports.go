package core

import (
	"context"
)

// Trainer produces a fitted model from the fixed training dataset
type Trainer interface {
	// Train loads the dataset and fits the pipeline
	Train(ctx context.Context) (*FittedModel, error)
}

// ModelProvider hands out the process-wide fitted model
type ModelProvider interface {
	// Model returns the fitted model, training it on first use
	Model(ctx context.Context) (*FittedModel, error)
}

// ResultStore keeps rendered predictions for download
type ResultStore interface {
	// Get retrieves a stored result by prediction ID
	Get(ctx context.Context, id string) (*StoredResult, error)

	// Set stores a result
	Set(ctx context.Context, result *StoredResult) error

	// Delete removes a stored result
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired results
	Cleanup(ctx context.Context) error
}
