package di

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/adapters/frontend"
	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/factory"
	"github.com/mikey/attrition-predictor/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Training flags
	DatasetPath    string
	TargetColumn   string
	ExcludeColumns []string

	// Prediction flags
	Threshold    float64
	ThresholdSet bool

	// Output flags
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		var (
			cfg *config.Config
			err error
		)
		if flags.ConfigFile != "" {
			cfg, err = config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
		} else {
			cfg, err = config.New()
			if err != nil {
				return nil, err
			}
		}

		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideModel(container); err != nil {
		return nil, err
	}

	// Register prediction service with no result store
	if err := container.Provide(func(
		models core.ModelProvider,
		logger *zap.Logger,
		settings core.PredictionSettings,
	) *core.PredictionService {
		return core.NewPredictionService(
			models,
			nil, // No result store for CLI
			logger,
			false,            // Storage disabled
			time.Duration(0), // No TTL
			settings,
		)
	}); err != nil {
		return nil, err
	}

	// Register frontend
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.FrontendFactory) *frontend.CliFrontend {
		return f.CreateCliFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// RunCLI builds the CLI container, trains the model and then hands the
// frontend to fn. Training errors are returned before any input is read.
func RunCLI(ctx context.Context, flags *CLIFlags, fn func(f *frontend.CliFrontend) error) error {
	container, err := BuildCLIContainer(flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}
	return container.Invoke(func(models core.ModelProvider, f *frontend.CliFrontend) error {
		if _, err := models.Model(ctx); err != nil {
			return fmt.Errorf("failed to train model: %w", err)
		}
		return fn(f)
	})
}

// applyFlags overrides configuration with explicitly given command line flags
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()

	v.Set("server.frontend", "cli")
	v.Set("cache.enabled", false)
	v.Set("cli.verbose", flags.Verbose)

	if flags.DatasetPath != "" {
		v.Set("training.dataset_path", flags.DatasetPath)
	}
	if flags.TargetColumn != "" {
		v.Set("training.target_column", flags.TargetColumn)
	}
	if len(flags.ExcludeColumns) > 0 {
		v.Set("training.exclude_columns", flags.ExcludeColumns)
	}
	if flags.ThresholdSet {
		v.Set("prediction.threshold", flags.Threshold)
	}
}
