package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/rules"
	"go.uber.org/zap"
)

// CliIngest routes emails from the command line and prints the decision
type CliIngest struct {
	router  *core.RouterService
	advisor *core.AdvisorService
	logger  *zap.Logger
	verbose bool
}

// NewCliIngest creates a new CLI ingest. The advisor is optional; pass nil
// to skip the secondary recommendation.
func NewCliIngest(router *core.RouterService, advisor *core.AdvisorService, logger *zap.Logger, verbose bool) (*CliIngest, error) {
	return &CliIngest{
		router:  router,
		advisor: advisor,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail routes an email and displays the results
func (f *CliIngest) ProcessEmail(ctx context.Context, email *core.Email) (*core.RoutingDecision, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	if len(email.AttachmentNames) > 0 {
		fmt.Printf("Attachments: %v\n", email.AttachmentNames)
	}

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	decision := f.router.Route(email)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Routing Decision ===\n")
	fmt.Printf("Queue: %s\n", decision.Queue)
	fmt.Printf("Rule: %d - %s\n", decision.RuleID, decision.RuleDescription)
	fmt.Printf("Confidence: %.2f (%s)\n", decision.Confidence, decision.ConfidenceLabel)
	fmt.Printf("Reason: %s\n", decision.MatchReason)
	fmt.Printf("Processing time: %v\n", duration)

	if info, ok := rules.Info(decision.Queue); ok {
		fmt.Printf("\n=== Queue Details ===\n")
		fmt.Printf("Team: %s\n", info.Team)
		fmt.Printf("SLA: %v\n", info.SLA)
		fmt.Printf("Escalation: %s\n", info.Escalation)
		fmt.Printf("Business impact: %s\n", info.BusinessImpact)
		fmt.Printf("Configured actions: %v\n", info.AutonomousActions)
	}

	// The secondary recommendation is displayed alongside the decision and
	// never replaces it; advisor failure means no recommendation
	if f.advisor != nil {
		recommendation, err := f.advisor.Recommend(ctx, email)
		if err != nil {
			f.logger.Warn("Secondary classifier unavailable", zap.Error(err))
			fmt.Printf("\nNo secondary recommendation available: %v\n", err)
		} else {
			fmt.Printf("\n=== Secondary Recommendation (advisory) ===\n")
			fmt.Printf("Recommended queue: %s\n", recommendation.Queue)
			fmt.Printf("Confidence: %.2f\n", recommendation.Confidence)
			fmt.Printf("Model: %s\n", recommendation.ModelUsed)
			for _, reason := range recommendation.Reasons {
				fmt.Printf("- %s\n", reason)
			}
		}
	}

	return decision, nil
}

// Start is a no-op for the CLI ingest
func (f *CliIngest) Start() error {
	return nil
}

// Stop is a no-op for the CLI ingest
func (f *CliIngest) Stop() error {
	return nil
}
