package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-router/internal/core"
)

type recordingStats struct {
	decisions []core.Queue
	errors    int
}

func (r *recordingStats) RecordDecision(queue core.Queue) {
	r.decisions = append(r.decisions, queue)
}

func (r *recordingStats) RecordError() {
	r.errors++
}

func newTestRouter(t *testing.T, stats core.StatsRecorder) *core.RouterService {
	t.Helper()

	rs, err := core.NewRuleSet([]core.Rule{
		{
			ID:    2,
			Queue: core.QueueAccountInquiryUS,
			Predicate: core.SubjectContainsAny{
				Keywords:             []string{"power of attorney", "poa", "account needed", "account setup"},
				CheckAttachmentNames: true,
			},
		},
		{
			ID:        3,
			Queue:     core.QueueNonUPSShipments,
			Predicate: core.DomainEquals{Domain: "@mail.evergreen-line.com"},
		},
		{
			ID:    4,
			Queue: core.QueuePreAlert,
			Predicate: core.SubjectContainsAny{
				Keywords: []string{"pre-alert", "pre alert", "prealert"},
			},
		},
		{
			ID:        5,
			Queue:     core.QueueArrivalNotice,
			Predicate: core.SubjectOrBodyContainsAny{Keywords: []string{"arrival notice"}},
		},
		{
			ID:        1,
			Queue:     core.QueueShipmentInitiation,
			Predicate: core.Default{},
		},
	})
	require.NoError(t, err)

	policy, err := core.NewConfidencePolicy(core.SchemeGraduated)
	require.NoError(t, err)

	return core.NewRouterService(rs, policy, stats, zap.NewNop())
}

func TestRouteEveryDocumentGetsADecision(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		name  string
		email *core.Email
	}{
		{"empty email", &core.Email{}},
		{"malformed sender", &core.Email{From: "not-an-address", Subject: "hello"}},
		{"unmatched content", &core.Email{
			From:    "vendor@supplier.com",
			Subject: "Invoice Payment Question",
			Body:    "When is the invoice due?",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decision := router.Route(tc.email)
			require.NotNil(t, decision)
			assert.Equal(t, core.QueueShipmentInitiation, decision.Queue)
			assert.Equal(t, 1, decision.RuleID)
			assert.Equal(t, 0.50, decision.Confidence)
			assert.Equal(t, core.ConfidenceDefault, decision.ConfidenceLabel)
			assert.False(t, decision.RoutedAt.IsZero())
		})
	}
}

func TestRouteFirstMatchWins(t *testing.T) {
	router := newTestRouter(t, nil)

	// Subject matches both the account inquiry rule and the pre-alert rule;
	// the earlier rule in the chain takes the document
	decision := router.Route(&core.Email{
		From:    "broker@customs.example.org",
		Subject: "POA documents for the pre-alert shipment",
	})

	assert.Equal(t, core.QueueAccountInquiryUS, decision.Queue)
	assert.Equal(t, 2, decision.RuleID)
}

func TestRouteDomainBeatsLaterKeywordRules(t *testing.T) {
	router := newTestRouter(t, nil)

	decision := router.Route(&core.Email{
		From:    "Evergreen Ops <ops@mail.evergreen-line.com>",
		Subject: "Pre-Alert: MV Ever Given arrival notice",
	})

	assert.Equal(t, core.QueueNonUPSShipments, decision.Queue)
	assert.Equal(t, 3, decision.RuleID)
	assert.Equal(t, 0.95, decision.Confidence)
	assert.Equal(t, core.ConfidenceHigh, decision.ConfidenceLabel)
}

func TestRouteCaseInsensitive(t *testing.T) {
	router := newTestRouter(t, nil)

	upper := router.Route(&core.Email{Subject: "PRE-ALERT: SHIPMENT"})
	lower := router.Route(&core.Email{Subject: "pre-alert: shipment"})

	assert.Equal(t, upper.Queue, lower.Queue)
	assert.Equal(t, upper.RuleID, lower.RuleID)
	assert.Equal(t, upper.Confidence, lower.Confidence)
	assert.Equal(t, core.QueuePreAlert, upper.Queue)
}

func TestRouteSubdomainDoesNotMatchDomainRule(t *testing.T) {
	router := newTestRouter(t, nil)

	decision := router.Route(&core.Email{
		From:    "ops@sub.mail.evergreen-line.com",
		Subject: "Weekly schedule",
	})

	assert.Equal(t, core.QueueShipmentInitiation, decision.Queue)
}

func TestRouteAttachmentNameTriggersAccountInquiry(t *testing.T) {
	router := newTestRouter(t, nil)

	decision := router.Route(&core.Email{
		From:            "customer@shipper.example.com",
		Subject:         "Scanned documents",
		AttachmentNames: []string{"POA_signed.pdf"},
	})

	assert.Equal(t, core.QueueAccountInquiryUS, decision.Queue)
	assert.Equal(t, []string{"poa"}, decision.MatchedKeywords)
	assert.Contains(t, decision.MatchReason, "attachment name")
}

func TestRouteArrivalNoticeInBody(t *testing.T) {
	router := newTestRouter(t, nil)

	decision := router.Route(&core.Email{
		From:    "terminal@port.example.com",
		Subject: "Container update",
		Body:    "Attached please find the Arrival Notice for container MSKU1234567.",
	})

	assert.Equal(t, core.QueueArrivalNotice, decision.Queue)
	assert.Equal(t, 5, decision.RuleID)
}

func TestRouteRecordsEachDecision(t *testing.T) {
	stats := &recordingStats{}
	router := newTestRouter(t, stats)

	router.Route(&core.Email{Subject: "pre-alert"})
	router.Route(&core.Email{Subject: "anything else"})

	assert.Equal(t, []core.Queue{
		core.QueuePreAlert,
		core.QueueShipmentInitiation,
	}, stats.decisions)
	assert.Zero(t, stats.errors)
}

func TestRouteDeterministic(t *testing.T) {
	router := newTestRouter(t, nil)
	email := &core.Email{
		From:    "ops@mail.evergreen-line.com",
		Subject: "pre alert and arrival notice",
	}

	first := router.Route(email)
	for i := 0; i < 10; i++ {
		again := router.Route(email)
		assert.Equal(t, first.Queue, again.Queue)
		assert.Equal(t, first.RuleID, again.RuleID)
		assert.Equal(t, first.Confidence, again.Confidence)
		assert.Equal(t, first.MatchReason, again.MatchReason)
	}
}
