package factory

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/adapters/frontend"
	"github.com/mikey/attrition-predictor/internal/config"
	"github.com/mikey/attrition-predictor/internal/core"
	"github.com/mikey/attrition-predictor/internal/ports"
	"github.com/mikey/attrition-predictor/internal/table"
	"github.com/mikey/attrition-predictor/internal/utils"
)

// FrontendFactory creates prediction frontends based on configuration
type FrontendFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.PredictionService
	reader        *table.Reader
	textProcessor *utils.TextProcessor
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.PredictionService,
	reader *table.Reader,
	textProcessor *utils.TextProcessor,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		reader:        reader,
		textProcessor: textProcessor,
	}
}

// CreateFrontend creates a frontend based on the configuration
func (f *FrontendFactory) CreateFrontend() (ports.PredictionFrontend, error) {
	frontendType := f.cfg.GetString("server.frontend")

	switch frontendType {
	case "http":
		serverCfg, err := f.cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return frontend.NewHTTPFrontend(
			f.service,
			f.reader,
			f.textProcessor,
			f.logger,
			serverCfg,
			f.cfg.GetPrediction(),
		), nil
	case "cli":
		return f.CreateCliFrontend(), nil
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", frontendType)
	}
}

// CreateCliFrontend creates the command-line frontend writing to the process streams
func (f *FrontendFactory) CreateCliFrontend() *frontend.CliFrontend {
	return frontend.NewCliFrontend(
		f.service,
		f.reader,
		f.logger,
		f.cfg.GetBool("cli.verbose"),
		f.cfg.GetInt("prediction.preview_rows"),
		os.Stderr,
		os.Stdout,
	)
}
