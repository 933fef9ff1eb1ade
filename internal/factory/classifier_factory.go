package factory

import (
	"fmt"

	"github.com/mikey/mail-router/internal/adapters/bedrock"
	"github.com/mikey/mail-router/internal/adapters/gemini"
	"github.com/mikey/mail-router/internal/adapters/openai"
	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates secondary classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new secondary classifier based on the
// configuration. Returns nil without error when the classifier is disabled.
func (f *ClassifierFactory) CreateClassifier() (core.SecondaryClassifier, error) {
	llmConfig := f.cfg.GetLLM()
	if !llmConfig.Enabled {
		return nil, nil
	}

	switch llmConfig.Provider {
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
