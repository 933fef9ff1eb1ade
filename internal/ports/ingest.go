package ports

import (
	"context"

	"github.com/mikey/mail-router/internal/core"
)

// EmailIngest defines the interface for feeding documents into the router
type EmailIngest interface {
	// ProcessEmail routes an email and returns the decision
	ProcessEmail(ctx context.Context, email *core.Email) (*core.RoutingDecision, error)

	// Start starts the ingest service
	Start() error

	// Stop stops the ingest service
	Stop() error
}
