package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-router/internal/core"
)

func TestNewConfidencePolicy(t *testing.T) {
	policy, err := core.NewConfidencePolicy(core.SchemeBinary)
	require.NoError(t, err)
	assert.IsType(t, core.BinaryPolicy{}, policy)

	policy, err = core.NewConfidencePolicy(core.SchemeGraduated)
	require.NoError(t, err)
	assert.IsType(t, core.GraduatedPolicy{}, policy)

	_, err = core.NewConfidencePolicy("bayesian")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported confidence scheme")
}

func TestBinaryPolicy(t *testing.T) {
	policy := core.BinaryPolicy{}

	score, label := policy.Score(
		specificRule(2, core.QueuePreAlert),
		core.MatchResult{Matched: true, Keywords: []string{"pre-alert"}})
	assert.Equal(t, 0.90, score)
	assert.Equal(t, core.ConfidenceHigh, label)

	score, label = policy.Score(
		defaultRule(1, core.QueueShipmentInitiation),
		core.MatchResult{Matched: true})
	assert.Equal(t, 0.50, score)
	assert.Equal(t, core.ConfidenceDefault, label)
}

func TestGraduatedPolicy(t *testing.T) {
	policy := core.GraduatedPolicy{}
	keywordRule := specificRule(2, core.QueuePreAlert)

	cases := []struct {
		name      string
		rule      core.Rule
		keywords  []string
		wantScore float64
		wantLabel string
	}{
		{
			name:      "single keyword",
			rule:      keywordRule,
			keywords:  []string{"pre-alert"},
			wantScore: 0.70,
			wantLabel: core.ConfidenceMedium,
		},
		{
			name:      "two keywords",
			rule:      keywordRule,
			keywords:  []string{"pre-alert", "pre alert"},
			wantScore: 0.75,
			wantLabel: core.ConfidenceMedium,
		},
		{
			name:      "three keywords cross the escalation threshold",
			rule:      keywordRule,
			keywords:  []string{"pre-alert", "pre alert", "prealert"},
			wantScore: 0.80,
			wantLabel: core.ConfidenceHigh,
		},
		{
			name:      "score is capped",
			rule:      keywordRule,
			keywords:  []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			wantScore: 0.95,
			wantLabel: core.ConfidenceHigh,
		},
		{
			name: "domain match scores at the top of the band",
			rule: core.Rule{
				ID:        3,
				Queue:     core.QueueNonUPSShipments,
				Predicate: core.DomainEquals{Domain: "@mail.evergreen-line.com"},
			},
			wantScore: 0.95,
			wantLabel: core.ConfidenceHigh,
		},
		{
			name:      "default rule",
			rule:      defaultRule(1, core.QueueShipmentInitiation),
			wantScore: 0.50,
			wantLabel: core.ConfidenceDefault,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score, label := policy.Score(tc.rule, core.MatchResult{
				Matched:  true,
				Keywords: tc.keywords,
			})
			assert.InDelta(t, tc.wantScore, score, 1e-9)
			assert.Equal(t, tc.wantLabel, label)
		})
	}
}
