package factory

import (
	"fmt"

	"github.com/mikey/mail-router/internal/adapters/ingest"
	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/ports"
	"go.uber.org/zap"
)

// IngestFactory creates email ingest services based on configuration
type IngestFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	router  *core.RouterService
	advisor *core.AdvisorService
	stats   core.StatsRecorder
}

// NewIngestFactory creates a new ingest factory
func NewIngestFactory(
	cfg *config.Config,
	logger *zap.Logger,
	router *core.RouterService,
	advisor *core.AdvisorService,
	stats core.StatsRecorder,
) *IngestFactory {
	return &IngestFactory{
		cfg:     cfg,
		logger:  logger,
		router:  router,
		advisor: advisor,
		stats:   stats,
	}
}

// CreateEmailIngest creates an email ingest service based on the configuration
func (f *IngestFactory) CreateEmailIngest() (ports.EmailIngest, error) {
	ingestType := f.cfg.GetString("server.ingest_type")

	switch ingestType {
	case "smtp":
		return ingest.NewSMTPIngest(
			f.router,
			f.stats,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetString("server.headers.queue"),
			f.cfg.GetString("server.headers.rule"),
			f.cfg.GetString("server.headers.confidence"),
			f.cfg.GetString("server.headers.reason"),
			f.cfg.GetString("server.relay.address"),
			f.cfg.GetInt("server.relay.port"),
			f.cfg.GetBool("server.relay.enabled"),
		), nil
	case "cli":
		return ingest.NewCliIngest(
			f.router,
			f.advisor,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported ingest type: %s", ingestType)
	}
}
