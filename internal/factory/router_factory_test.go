package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/factory"
)

func TestCreateRouterWithCanonicalRules(t *testing.T) {
	cfg := config.NewFromViper(config.NewEmptyViper())
	f := factory.NewRouterFactory(cfg, zap.NewNop())

	router, err := f.CreateRouter(nil)
	require.NoError(t, err)
	require.Len(t, router.Rules().Rules(), 5)

	decision := router.Route(&core.Email{Subject: "Pre-Alert: new shipment"})
	assert.Equal(t, core.QueuePreAlert, decision.Queue)
}

func TestCreateRuleSetFromConfiguration(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("routing.rules", []map[string]interface{}{
		{
			"id":        10,
			"queue":     "RAFT_ArrivalNotice",
			"predicate": "subjectOrBodyContainsAny",
			"keywords":  []string{"arrival notice"},
		},
		{
			"id":        1,
			"queue":     "Shipment_Initiation_Brkg_Inland_SI",
			"predicate": "default",
		},
	})
	f := factory.NewRouterFactory(config.NewFromViper(v), zap.NewNop())

	ruleSet, err := f.CreateRuleSet()
	require.NoError(t, err)
	require.Len(t, ruleSet.Rules(), 2)
	assert.Equal(t, 10, ruleSet.Rules()[0].ID)
}

func TestCreateRuleSetRejectsInvalidConfiguration(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("routing.rules", []map[string]interface{}{
		{
			"id":        1,
			"queue":     "RAFT_PreAlert",
			"predicate": "subjectContainsAny",
			// no keywords
		},
	})
	f := factory.NewRouterFactory(config.NewFromViper(v), zap.NewNop())

	_, err := f.CreateRuleSet()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires keywords")
}

func TestCreateConfidencePolicy(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("routing.confidence_scheme", "binary")
	f := factory.NewRouterFactory(config.NewFromViper(v), zap.NewNop())

	policy, err := f.CreateConfidencePolicy()
	require.NoError(t, err)
	assert.IsType(t, core.BinaryPolicy{}, policy)

	v.Set("routing.confidence_scheme", "nonsense")
	_, err = f.CreateConfidencePolicy()
	assert.Error(t, err)
}
