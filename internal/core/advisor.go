package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// AdvisorService wraps the optional secondary classifier. It caches
// recommendations per sender so repeated traffic from the same address does
// not hit the LLM again. Advisor failures surface as errors that callers
// must treat as "no recommendation available", never as a reason to abort
// deterministic routing.
type AdvisorService struct {
	classifier   SecondaryClassifier
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(
	classifier SecondaryClassifier,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *AdvisorService {
	return &AdvisorService{
		classifier:   classifier,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// Recommend returns the secondary classifier's routing suggestion for an
// email, consulting the per-sender cache first when enabled
func (s *AdvisorService) Recommend(ctx context.Context, email *Email) (*Recommendation, error) {
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, email.From); err == nil {
			s.logger.Debug("Cache hit for sender", zap.String("sender", email.From))
			return &Recommendation{
				Queue:      entry.Queue,
				Confidence: float64(entry.Confidence),
				Reasons:    []string{"recommendation from cache"},
				ModelUsed:  "cache",
				AnalyzedAt: time.Now(),
			}, nil
		}
	}

	recommendation, err := s.classifier.Classify(ctx, email)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled {
		entry := &CacheEntry{
			SenderEmail: email.From,
			Queue:       recommendation.Queue,
			Confidence:  float32(recommendation.Confidence),
			LastSeen:    time.Now(),
			ExpiresAt:   time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return recommendation, nil
}
