package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/factory"
	"github.com/mikey/attrition-predictor/internal/logging"
	"github.com/mikey/attrition-predictor/internal/ports"
	"github.com/mikey/attrition-predictor/internal/registry"
	"github.com/mikey/attrition-predictor/internal/table"
	"github.com/mikey/attrition-predictor/internal/training"
	"github.com/mikey/attrition-predictor/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register model, table and service components shared with the CLI
	if err := provideModel(container); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.CacheFactory) (core.ResultStore, error) {
		return f.CreateResultStore()
	}); err != nil {
		return nil, err
	}

	// Register result TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register prediction service
	if err := container.Provide(core.NewPredictionService); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.PredictionFrontend, error) {
		return f.CreateFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideModel registers everything needed to train and serve the model:
// text decoding, table reading, the trainer, the registry and prediction settings
func provideModel(container *dig.Container) error {
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}
	if err := container.Provide(table.NewReader); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config) config.TrainingConfig {
		return cfg.GetTraining()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(cfg config.TrainingConfig, reader *table.Reader, logger *zap.Logger) core.Trainer {
		return training.NewTrainer(cfg, reader, logger)
	}); err != nil {
		return err
	}
	if err := container.Provide(registry.NewModelRegistry); err != nil {
		return err
	}
	if err := container.Provide(func(r *registry.ModelRegistry) core.ModelProvider {
		return r
	}); err != nil {
		return err
	}

	return container.Provide(func(cfg *config.Config) (core.PredictionSettings, error) {
		p := cfg.GetPrediction()
		if err := p.Validate(); err != nil {
			return core.PredictionSettings{}, err
		}
		return core.PredictionSettings{
			Threshold:         p.Threshold,
			LabelColumn:       p.LabelColumn,
			ProbabilityColumn: p.ProbabilityColumn,
		}, nil
	})
}
