package core

import (
	"time"

	"go.uber.org/zap"
)

// RouterService is the deterministic routing engine. It evaluates an
// immutable rule set against one document at a time, in declared order, and
// returns the first match. It performs no I/O and holds no locks, so a
// single instance is safe for concurrent use.
type RouterService struct {
	rules  *RuleSet
	policy ConfidencePolicy
	stats  StatsRecorder
	logger *zap.Logger
}

// NewRouterService creates a new routing engine over a validated rule set
func NewRouterService(
	rules *RuleSet,
	policy ConfidencePolicy,
	stats StatsRecorder,
	logger *zap.Logger,
) *RouterService {
	return &RouterService{
		rules:  rules,
		policy: policy,
		stats:  stats,
		logger: logger,
	}
}

// Route classifies a document into exactly one queue. Every document
// receives a decision: the rule set's default rule guarantees totality, so
// there is no error return and no "unroutable" outcome.
func (s *RouterService) Route(email *Email) *RoutingDecision {
	view := Normalize(email)

	for _, rule := range s.rules.Rules() {
		result := rule.Predicate.Match(view)
		if !result.Matched {
			continue
		}

		confidence, label := s.policy.Score(rule, result)
		decision := &RoutingDecision{
			Queue:           rule.Queue,
			RuleID:          rule.ID,
			RuleDescription: rule.Description,
			Confidence:      confidence,
			ConfidenceLabel: label,
			MatchReason:     result.Reason,
			MatchedKeywords: result.Keywords,
			RoutedAt:        time.Now(),
		}

		s.logger.Info("Email routed",
			zap.String("queue", string(decision.Queue)),
			zap.Int("rule_id", decision.RuleID),
			zap.Float64("confidence", decision.Confidence),
			zap.String("reason", decision.MatchReason))

		if s.stats != nil {
			s.stats.RecordDecision(decision.Queue)
		}
		return decision
	}

	// Unreachable: NewRuleSet guarantees a trailing default rule
	panic("rule set exhausted without a default rule")
}

// Rules exposes the engine's rule set for inspection and validation tooling
func (s *RouterService) Rules() *RuleSet {
	return s.rules
}
