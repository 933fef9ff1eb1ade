package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/mail-router/internal/core"
)

func specificRule(id int, queue core.Queue) core.Rule {
	return core.Rule{
		ID:        id,
		Queue:     queue,
		Predicate: core.SubjectContainsAny{Keywords: []string{"keyword"}},
	}
}

func defaultRule(id int, queue core.Queue) core.Rule {
	return core.Rule{ID: id, Queue: queue, Predicate: core.Default{}}
}

func TestNewRuleSetInvariants(t *testing.T) {
	cases := []struct {
		name      string
		rules     []core.Rule
		wantIssue string
	}{
		{
			name:      "empty rule list",
			rules:     nil,
			wantIssue: "no rules configured",
		},
		{
			name: "no default rule",
			rules: []core.Rule{
				specificRule(1, core.QueuePreAlert),
			},
			wantIssue: "exactly one default rule is required, found 0",
		},
		{
			name: "two default rules",
			rules: []core.Rule{
				defaultRule(1, core.QueueShipmentInitiation),
				defaultRule(2, core.QueueShipmentInitiation),
			},
			wantIssue: "exactly one default rule is required, found 2",
		},
		{
			name: "default rule not last",
			rules: []core.Rule{
				defaultRule(1, core.QueueShipmentInitiation),
				specificRule(2, core.QueuePreAlert),
			},
			wantIssue: "default rule 1 must be last in evaluation order",
		},
		{
			name: "duplicate rule IDs",
			rules: []core.Rule{
				specificRule(7, core.QueuePreAlert),
				specificRule(7, core.QueueArrivalNotice),
				defaultRule(1, core.QueueShipmentInitiation),
			},
			wantIssue: "duplicate rule ID 7",
		},
		{
			name: "nil predicate",
			rules: []core.Rule{
				{ID: 3, Queue: core.QueuePreAlert},
				defaultRule(1, core.QueueShipmentInitiation),
			},
			wantIssue: "rule 3 has no predicate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rs, err := core.NewRuleSet(tc.rules)
			require.Error(t, err)
			assert.Nil(t, rs)

			var cfgErr *core.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, cfgErr.Issues, tc.wantIssue)
		})
	}
}

func TestNewRuleSetValid(t *testing.T) {
	rules := []core.Rule{
		specificRule(2, core.QueuePreAlert),
		specificRule(3, core.QueueArrivalNotice),
		defaultRule(1, core.QueueShipmentInitiation),
	}

	rs, err := core.NewRuleSet(rules)
	require.NoError(t, err)
	require.Len(t, rs.Rules(), 3)

	// Evaluation order is the declared order
	assert.Equal(t, 2, rs.Rules()[0].ID)
	assert.Equal(t, 1, rs.Rules()[2].ID)
	assert.True(t, rs.Rules()[2].IsDefault())
}

func TestSubjectContainsAnyPredicate(t *testing.T) {
	p := core.SubjectContainsAny{
		Keywords:             []string{"poa", "account setup"},
		CheckAttachmentNames: true,
	}

	result := p.Match(&core.NormalizedView{Subject: "poa question"})
	require.True(t, result.Matched)
	assert.Equal(t, []string{"poa"}, result.Keywords)
	assert.Contains(t, result.Reason, "subject contains")

	result = p.Match(&core.NormalizedView{
		Subject:         "scanned documents",
		AttachmentNames: []string{"poa_signed.pdf"},
	})
	require.True(t, result.Matched)
	assert.Contains(t, result.Reason, "attachment name contains")

	// Without the attachment flag, filenames are ignored
	noAttach := core.SubjectContainsAny{Keywords: []string{"poa"}}
	result = noAttach.Match(&core.NormalizedView{
		Subject:         "scanned documents",
		AttachmentNames: []string{"poa_signed.pdf"},
	})
	assert.False(t, result.Matched)
}

func TestDomainEqualsPredicate(t *testing.T) {
	p := core.DomainEquals{Domain: "@mail.evergreen-line.com"}

	cases := []struct {
		name   string
		domain string
		want   bool
	}{
		{"exact match", "@mail.evergreen-line.com", true},
		{"subdomain does not match", "@sub.mail.evergreen-line.com", false},
		{"parent domain does not match", "@evergreen-line.com", false},
		{"suffix variant does not match", "@mail.evergreen-line.com.cn", false},
		{"missing sender domain", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := p.Match(&core.NormalizedView{SenderDomain: tc.domain})
			assert.Equal(t, tc.want, result.Matched)
		})
	}
}

func TestSubjectOrBodyContainsAnyPredicate(t *testing.T) {
	p := core.SubjectOrBodyContainsAny{Keywords: []string{"arrival notice"}}

	result := p.Match(&core.NormalizedView{Subject: "arrival notice for bl 123"})
	require.True(t, result.Matched)
	assert.Contains(t, result.Reason, "subject contains")

	result = p.Match(&core.NormalizedView{
		Subject: "shipment update",
		Body:    "please find the arrival notice below",
	})
	require.True(t, result.Matched)
	assert.Contains(t, result.Reason, "body contains")

	result = p.Match(&core.NormalizedView{Subject: "shipment update", Body: "no match here"})
	assert.False(t, result.Matched)
}

func TestDefaultPredicateAlwaysMatches(t *testing.T) {
	result := core.Default{}.Match(&core.NormalizedView{})
	require.True(t, result.Matched)
	assert.NotEmpty(t, result.Reason)
}

func TestValidateWarnsOnUncoveredQueues(t *testing.T) {
	rs, err := core.NewRuleSet([]core.Rule{
		specificRule(2, core.QueuePreAlert),
		defaultRule(1, core.QueueShipmentInitiation),
	})
	require.NoError(t, err)

	report := rs.Validate([]core.Queue{
		core.QueuePreAlert,
		core.QueueArrivalNotice,
		core.QueueShipmentInitiation,
	})

	assert.True(t, report.Valid)
	assert.Empty(t, report.Issues)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], string(core.QueueArrivalNotice))
}
