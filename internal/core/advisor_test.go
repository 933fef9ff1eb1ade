package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-router/internal/core"
)

type stubClassifier struct {
	recommendation *core.Recommendation
	err            error
	calls          int
}

func (s *stubClassifier) Classify(_ context.Context, _ *core.Email) (*core.Recommendation, error) {
	s.calls++
	return s.recommendation, s.err
}

type stubCache struct {
	entries map[string]*core.CacheEntry
	setErr  error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]*core.CacheEntry)}
}

func (s *stubCache) Get(_ context.Context, senderEmail string) (*core.CacheEntry, error) {
	entry, ok := s.entries[senderEmail]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (s *stubCache) Set(_ context.Context, entry *core.CacheEntry) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[entry.SenderEmail] = entry
	return nil
}

func (s *stubCache) Delete(_ context.Context, senderEmail string) error {
	delete(s.entries, senderEmail)
	return nil
}

func (s *stubCache) Cleanup(_ context.Context) error {
	return nil
}

func TestAdvisorClassifiesAndCaches(t *testing.T) {
	classifier := &stubClassifier{
		recommendation: &core.Recommendation{
			Queue:      core.QueuePreAlert,
			Confidence: 0.85,
			Reasons:    []string{"subject mentions a pre-alert"},
			ModelUsed:  "test-model",
		},
	}
	cache := newStubCache()
	advisor := core.NewAdvisorService(classifier, cache, zap.NewNop(), true, time.Hour)

	email := &core.Email{From: "ops@carrier.example.com", Subject: "Pre-Alert"}

	recommendation, err := advisor.Recommend(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, core.QueuePreAlert, recommendation.Queue)
	assert.Equal(t, 1, classifier.calls)

	entry, ok := cache.entries[email.From]
	require.True(t, ok)
	assert.Equal(t, core.QueuePreAlert, entry.Queue)
	assert.False(t, entry.ExpiresAt.IsZero())

	// Second call for the same sender is served from the cache
	recommendation, err = advisor.Recommend(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, core.QueuePreAlert, recommendation.Queue)
	assert.Equal(t, "cache", recommendation.ModelUsed)
	assert.Equal(t, 1, classifier.calls)
}

func TestAdvisorClassifierErrorSurfaces(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("model unavailable")}
	advisor := core.NewAdvisorService(classifier, newStubCache(), zap.NewNop(), true, time.Hour)

	recommendation, err := advisor.Recommend(context.Background(), &core.Email{From: "a@b.com"})
	require.Error(t, err)
	assert.Nil(t, recommendation)
}

func TestAdvisorCacheWriteFailureDoesNotFailRecommendation(t *testing.T) {
	classifier := &stubClassifier{
		recommendation: &core.Recommendation{Queue: core.QueueArrivalNotice, Confidence: 0.7},
	}
	cache := newStubCache()
	cache.setErr = errors.New("disk full")
	advisor := core.NewAdvisorService(classifier, cache, zap.NewNop(), true, time.Hour)

	recommendation, err := advisor.Recommend(context.Background(), &core.Email{From: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, core.QueueArrivalNotice, recommendation.Queue)
}

func TestAdvisorCacheDisabled(t *testing.T) {
	classifier := &stubClassifier{
		recommendation: &core.Recommendation{Queue: core.QueuePreAlert, Confidence: 0.9},
	}
	advisor := core.NewAdvisorService(classifier, nil, zap.NewNop(), false, 0)

	email := &core.Email{From: "ops@carrier.example.com"}
	for i := 0; i < 3; i++ {
		_, err := advisor.Recommend(context.Background(), email)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, classifier.calls)
}
