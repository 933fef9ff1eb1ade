package core

import (
	"errors"
	"fmt"
	"strings"
)

// MatchResult reports the outcome of evaluating a single predicate
type MatchResult struct {
	Matched  bool
	Keywords []string
	Reason   string
}

// Predicate is the condition half of a routing rule. Each predicate kind
// carries only the fields it needs, so invalid rule shapes are
// unrepresentable.
type Predicate interface {
	// Match evaluates the predicate against a normalized view
	Match(view *NormalizedView) MatchResult
}

// SubjectContainsAny matches when the subject contains any configured
// keyword. With CheckAttachmentNames set, attachment filenames are scanned
// with the same keywords and either source of a hit counts.
type SubjectContainsAny struct {
	Keywords             []string
	CheckAttachmentNames bool
}

func (p SubjectContainsAny) Match(view *NormalizedView) MatchResult {
	ok, matched := MatchKeywords(view.Subject, p.Keywords)
	if ok {
		return MatchResult{
			Matched:  true,
			Keywords: matched,
			Reason:   fmt.Sprintf("subject contains %q", strings.Join(matched, ", ")),
		}
	}

	if p.CheckAttachmentNames {
		if ok, matched := MatchAttachmentNames(view.AttachmentNames, p.Keywords); ok {
			return MatchResult{
				Matched:  true,
				Keywords: matched,
				Reason:   fmt.Sprintf("attachment name contains %q", strings.Join(matched, ", ")),
			}
		}
	}

	return MatchResult{}
}

// DomainEquals matches when the sender domain equals the configured domain
// exactly. Comparison is case-insensitive on the "@domain" form; subdomains
// and suffix variants do not match.
type DomainEquals struct {
	Domain string
}

func (p DomainEquals) Match(view *NormalizedView) MatchResult {
	if view.SenderDomain == "" {
		return MatchResult{}
	}
	if view.SenderDomain != strings.ToLower(p.Domain) {
		return MatchResult{}
	}
	return MatchResult{
		Matched: true,
		Reason:  fmt.Sprintf("sender domain is %s", view.SenderDomain),
	}
}

// SubjectOrBodyContainsAny matches when either the subject or the body
// contains any configured keyword
type SubjectOrBodyContainsAny struct {
	Keywords []string
}

func (p SubjectOrBodyContainsAny) Match(view *NormalizedView) MatchResult {
	if ok, matched := MatchKeywords(view.Subject, p.Keywords); ok {
		return MatchResult{
			Matched:  true,
			Keywords: matched,
			Reason:   fmt.Sprintf("subject contains %q", strings.Join(matched, ", ")),
		}
	}
	if ok, matched := MatchKeywords(view.Body, p.Keywords); ok {
		return MatchResult{
			Matched:  true,
			Keywords: matched,
			Reason:   fmt.Sprintf("body contains %q", strings.Join(matched, ", ")),
		}
	}
	return MatchResult{}
}

// Default always matches. Exactly one rule per rule set carries it, in last
// position, which is what makes routing total.
type Default struct{}

func (Default) Match(*NormalizedView) MatchResult {
	return MatchResult{
		Matched: true,
		Reason:  "no specific rule matched; default routing applied",
	}
}

// Rule binds a predicate to a target queue. The ID identifies the rule in
// logs and explanations only; evaluation order is the declared sequence.
type Rule struct {
	ID          int
	Queue       Queue
	Description string
	Predicate   Predicate
}

// IsDefault reports whether the rule carries the unconditional predicate
func (r Rule) IsDefault() bool {
	_, ok := r.Predicate.(Default)
	return ok
}

// ConfigurationError reports an invalid rule set. It is fatal: an engine
// must not be constructed over a rule set that produced one.
type ConfigurationError struct {
	Issues []string
}

func (e *ConfigurationError) Error() string {
	return "invalid rule set: " + strings.Join(e.Issues, "; ")
}

// RuleSet is an ordered, immutable list of routing rules. Construction
// validates the invariants that make evaluation total, so a successfully
// built RuleSet can be shared across goroutines without synchronization.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet validates and builds a rule set. It fails with a
// ConfigurationError when there is not exactly one default rule, when the
// default rule is not last, or when rule IDs are duplicated.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	var issues []string

	if len(rules) == 0 {
		issues = append(issues, "no rules configured")
	}

	defaults := 0
	for i, rule := range rules {
		if rule.Predicate == nil {
			issues = append(issues, fmt.Sprintf("rule %d has no predicate", rule.ID))
			continue
		}
		if rule.IsDefault() {
			defaults++
			if i != len(rules)-1 {
				issues = append(issues, fmt.Sprintf("default rule %d must be last in evaluation order", rule.ID))
			}
		}
	}
	if len(rules) > 0 && defaults != 1 {
		issues = append(issues, fmt.Sprintf("exactly one default rule is required, found %d", defaults))
	}

	seen := make(map[int]bool)
	for _, rule := range rules {
		if seen[rule.ID] {
			issues = append(issues, fmt.Sprintf("duplicate rule ID %d", rule.ID))
		}
		seen[rule.ID] = true
	}

	if len(issues) > 0 {
		return nil, &ConfigurationError{Issues: issues}
	}

	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	return &RuleSet{rules: ordered}, nil
}

// Rules returns the rules in evaluation order
func (rs *RuleSet) Rules() []Rule {
	return rs.rules
}

// ValidationReport is the outcome of validating a rule set configuration
type ValidationReport struct {
	Valid    bool
	Issues   []string
	Warnings []string
}

// Validate re-checks the construction invariants and additionally warns
// about known queues that no rule targets. Intended for configuration
// inspection tooling; a constructed RuleSet always passes the fatal checks.
func (rs *RuleSet) Validate(knownQueues []Queue) ValidationReport {
	report := ValidationReport{Valid: true}

	if _, err := NewRuleSet(rs.rules); err != nil {
		var cfgErr *ConfigurationError
		if errors.As(err, &cfgErr) {
			report.Valid = false
			report.Issues = cfgErr.Issues
		}
	}

	covered := make(map[Queue]bool)
	for _, rule := range rs.rules {
		covered[rule.Queue] = true
	}
	for _, queue := range knownQueues {
		if !covered[queue] {
			report.Warnings = append(report.Warnings, fmt.Sprintf("queue %s has no routing rule", queue))
		}
	}

	return report
}
