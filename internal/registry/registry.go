package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/core"
)

// ModelRegistry owns the process-wide fitted model. It is constructed once at
// startup and passed to every request handler; training runs at most once and
// every caller afterwards receives the same model or the same error.
type ModelRegistry struct {
	trainer core.Trainer
	logger  *zap.Logger

	once  sync.Once
	model *core.FittedModel
	err   error
}

// NewModelRegistry creates a registry backed by a trainer
func NewModelRegistry(trainer core.Trainer, logger *zap.Logger) *ModelRegistry {
	return &ModelRegistry{
		trainer: trainer,
		logger:  logger,
	}
}

// Model returns the fitted model, training it on first use. Training ignores
// cancellation of ctx.
func (r *ModelRegistry) Model(ctx context.Context) (*core.FittedModel, error) {
	r.once.Do(func() {
		r.logger.Info("Training attrition model")
		r.model, r.err = r.trainer.Train(context.WithoutCancel(ctx))
		if r.err != nil {
			r.logger.Error("Model training failed", zap.Error(r.err))
		}
	})
	return r.model, r.err
}
