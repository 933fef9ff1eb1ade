package core

import (
	"context"
)

// SecondaryClassifier defines the interface for an optional LLM-backed
// classifier consulted as a supplementary signal. Its recommendation is
// never authoritative over the deterministic routing decision.
type SecondaryClassifier interface {
	// Classify produces a routing recommendation for an email
	Classify(ctx context.Context, email *Email) (*Recommendation, error)
}

// CacheRepository defines the interface for caching secondary classifier
// recommendations by sender
type CacheRepository interface {
	// Get retrieves a cached entry for a sender
	Get(ctx context.Context, senderEmail string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, senderEmail string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// StatsRecorder receives routing outcomes after a decision is finalized.
// Implementations must be safe for concurrent use.
type StatsRecorder interface {
	// RecordDecision records a finalized routing decision
	RecordDecision(queue Queue)

	// RecordError records a document that could not be processed
	RecordError()
}
