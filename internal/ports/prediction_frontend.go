package ports

// PredictionFrontend exposes the prediction service to users
type PredictionFrontend interface {
	// Start starts serving requests
	Start() error

	// Stop stops serving requests
	Stop() error
}
