package factory

import (
	"fmt"

	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/rules"
	"go.uber.org/zap"
)

// RouterFactory builds the routing engine from configuration
type RouterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewRouterFactory creates a new router factory
func NewRouterFactory(cfg *config.Config, logger *zap.Logger) *RouterFactory {
	return &RouterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateRuleSet builds the rule set from configuration, falling back to the
// canonical rules when none are configured. An invalid rule set is a fatal
// configuration error: the engine must not start over one.
func (f *RouterFactory) CreateRuleSet() (*core.RuleSet, error) {
	var specs []rules.Spec
	if err := f.cfg.UnmarshalKey("routing.rules", &specs); err != nil {
		return nil, fmt.Errorf("failed to decode routing rules: %w", err)
	}

	if len(specs) == 0 {
		f.logger.Info("No routing rules configured, using canonical rule set")
		return rules.Canonical()
	}

	ruleSet, err := rules.FromSpecs(specs)
	if err != nil {
		return nil, fmt.Errorf("failed to build routing rules: %w", err)
	}

	f.logger.Info("Loaded routing rules from configuration",
		zap.Int("rule_count", len(specs)))
	return ruleSet, nil
}

// CreateConfidencePolicy returns the configured confidence policy
func (f *RouterFactory) CreateConfidencePolicy() (core.ConfidencePolicy, error) {
	return core.NewConfidencePolicy(f.cfg.GetRouting().ConfidenceScheme)
}

// CreateRouter builds the routing engine
func (f *RouterFactory) CreateRouter(stats core.StatsRecorder) (*core.RouterService, error) {
	ruleSet, err := f.CreateRuleSet()
	if err != nil {
		return nil, err
	}

	policy, err := f.CreateConfidencePolicy()
	if err != nil {
		return nil, err
	}

	return core.NewRouterService(ruleSet, policy, stats, f.logger), nil
}
