package factory

import (
	"github.com/mikey/mail-router/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory creates the text processor used to bound and
// sanitize document bodies before they reach a secondary classifier
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{logger: logger}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}
