package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/factory"
	"github.com/mikey/mail-router/internal/logging"
	"github.com/mikey/mail-router/internal/ports"
	"github.com/mikey/mail-router/internal/stats"
	"github.com/mikey/mail-router/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register statistics collector
	if err := container.Provide(stats.NewCollector); err != nil {
		return nil, err
	}
	if err := container.Provide(func(c *stats.Collector) core.StatsRecorder {
		return c
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewRouterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewIngestFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register routing engine
	if err := container.Provide(func(f *factory.RouterFactory, recorder core.StatsRecorder) (*core.RouterService, error) {
		return f.CreateRouter(recorder)
	}); err != nil {
		return nil, err
	}

	// Register secondary classifier (nil when disabled)
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.SecondaryClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register cache TTL and enabled flag
	if err := container.Provide(func(f *factory.CacheFactory) (time.Duration, error) {
		return f.GetCacheTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) bool {
		return f.IsCacheEnabled()
	}); err != nil {
		return nil, err
	}

	// Register advisor service (nil when the classifier is disabled)
	if err := container.Provide(func(
		classifier core.SecondaryClassifier,
		cache core.CacheRepository,
		logger *zap.Logger,
		cacheEnabled bool,
		cacheTTL time.Duration,
	) *core.AdvisorService {
		if classifier == nil {
			return nil
		}
		return core.NewAdvisorService(classifier, cache, logger, cacheEnabled, cacheTTL)
	}); err != nil {
		return nil, err
	}

	// Register email ingest
	if err := container.Provide(func(f *factory.IngestFactory) (ports.EmailIngest, error) {
		return f.CreateEmailIngest()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
