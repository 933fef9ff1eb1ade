package core

import (
	"fmt"
)

// ConfidencePolicy assigns a heuristic confidence score and label to a
// matched rule. Scores are hand-tuned weights for SLA escalation
// thresholds, not calibrated probabilities. A policy is fixed at engine
// construction; a single engine instance never mixes schemes.
type ConfidencePolicy interface {
	Score(rule Rule, result MatchResult) (float64, string)
}

// Confidence scheme names accepted in configuration
const (
	SchemeBinary    = "binary"
	SchemeGraduated = "graduated"
)

// Downstream SLA escalation branches on this threshold
const escalationThreshold = 0.80

// BinaryPolicy assigns a fixed high confidence to every non-default match
// and a fixed default confidence to the fallback rule
type BinaryPolicy struct{}

func (BinaryPolicy) Score(rule Rule, _ MatchResult) (float64, string) {
	if rule.IsDefault() {
		return 0.50, ConfidenceDefault
	}
	return 0.90, ConfidenceHigh
}

// GraduatedPolicy assigns scores in the 0.70-0.95 band, increasing with the
// number of matched keywords. Domain matches score at the top of the band
// since an exact sender domain is the strongest signal available.
type GraduatedPolicy struct{}

func (GraduatedPolicy) Score(rule Rule, result MatchResult) (float64, string) {
	if rule.IsDefault() {
		return 0.50, ConfidenceDefault
	}

	// Accumulate in hundredths so repeated 0.05 steps land exactly on the
	// escalation threshold
	var hundredths int
	switch rule.Predicate.(type) {
	case DomainEquals:
		hundredths = 95
	default:
		hundredths = 70
		if extra := len(result.Keywords) - 1; extra > 0 {
			hundredths += 5 * extra
		}
		if hundredths > 95 {
			hundredths = 95
		}
	}
	score := float64(hundredths) / 100

	if score >= escalationThreshold {
		return score, ConfidenceHigh
	}
	return score, ConfidenceMedium
}

// NewConfidencePolicy returns the policy for a configured scheme name
func NewConfidencePolicy(scheme string) (ConfidencePolicy, error) {
	switch scheme {
	case SchemeBinary:
		return BinaryPolicy{}, nil
	case SchemeGraduated:
		return GraduatedPolicy{}, nil
	default:
		return nil, fmt.Errorf("unsupported confidence scheme: %s", scheme)
	}
}
