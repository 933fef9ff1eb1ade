package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mikey/mail-router/internal/adapters/ingest"
	"github.com/mikey/mail-router/internal/config"
	"github.com/mikey/mail-router/internal/core"
	"github.com/mikey/mail-router/internal/factory"
	"github.com/mikey/mail-router/internal/logging"
	"github.com/mikey/mail-router/internal/rules"
	"github.com/mikey/mail-router/internal/stats"
	"go.uber.org/zap"
)

var (
	// Routing flags
	confidenceScheme = flag.String("confidence-scheme", "graduated", "Confidence scheme (binary, graduated)")
	validateOnly     = flag.Bool("validate", false, "Validate the rule configuration and exit")

	// LLM provider flags
	withAdvisor = flag.Bool("advisor", false, "Also consult the LLM secondary classifier")
	provider    = flag.String("provider", "bedrock", "LLM provider (bedrock, gemini, openai)")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to LLM")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Input flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Build the routing engine
	collector := stats.NewCollector()
	routerFactory := factory.NewRouterFactory(cfg, logger)
	router, err := routerFactory.CreateRouter(collector)
	if err != nil {
		logger.Fatal("Failed to build routing engine", zap.Error(err))
	}

	if *validateOnly {
		printValidation(router)
		return
	}

	// Optionally build the secondary classifier
	var advisor *core.AdvisorService
	if *withAdvisor {
		advisor = buildAdvisor(cfg, logger)
	}

	cli, err := ingest.NewCliIngest(router, advisor, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create CLI ingest", zap.Error(err))
	}

	// Remaining arguments are .eml files; stdin when none given
	files := flag.Args()
	if len(files) == 0 {
		email, err := ingest.ParseMessage(bufio.NewReader(os.Stdin))
		if err != nil {
			logger.Fatal("Failed to parse email from stdin", zap.Error(err))
		}
		if _, err := cli.ProcessEmail(context.Background(), email); err != nil {
			logger.Fatal("Failed to process email", zap.Error(err))
		}
	} else {
		processFiles(cli, collector, logger, files)
	}

	// Print the session statistics
	snapshot := collector.Snapshot()
	fmt.Printf("\n=== Session Statistics ===\n")
	fmt.Printf("Documents processed: %d\n", snapshot.TotalProcessed)
	for queue, count := range snapshot.PerQueue {
		fmt.Printf("  %s: %d\n", queue, count)
	}
	if snapshot.ProcessingErrors > 0 {
		fmt.Printf("Processing errors: %d\n", snapshot.ProcessingErrors)
	}
}

// processFiles routes each file in turn; a file that fails to parse is
// reported and does not stop the batch
func processFiles(cli *ingest.CliIngest, collector *stats.Collector, logger *zap.Logger, files []string) {
	for i, path := range files {
		logger.Info("Processing email",
			zap.Int("index", i+1),
			zap.Int("total", len(files)),
			zap.String("file", path))

		file, err := os.Open(path)
		if err != nil {
			logger.Error("Failed to open input file", zap.Error(err), zap.String("file", path))
			collector.RecordError()
			continue
		}

		email, err := ingest.ParseMessage(bufio.NewReader(file))
		file.Close()
		if err != nil {
			logger.Error("Failed to parse email", zap.Error(err), zap.String("file", path))
			collector.RecordError()
			continue
		}

		if _, err := cli.ProcessEmail(context.Background(), email); err != nil {
			logger.Error("Failed to process email", zap.Error(err), zap.String("file", path))
			collector.RecordError()
		}
	}
}

// printValidation reports the rule configuration check
func printValidation(router *core.RouterService) {
	report := router.Rules().Validate(rules.KnownQueues())

	fmt.Printf("=== Rule Configuration ===\n")
	for _, rule := range router.Rules().Rules() {
		fmt.Printf("Rule %d -> %s: %s\n", rule.ID, rule.Queue, rule.Description)
	}

	fmt.Printf("\nValid: %t\n", report.Valid)
	for _, issue := range report.Issues {
		fmt.Printf("Issue: %s\n", issue)
	}
	for _, warning := range report.Warnings {
		fmt.Printf("Warning: %s\n", warning)
	}

	if !report.Valid {
		os.Exit(1)
	}
}

// buildAdvisor wires the secondary classifier without caching; the CLI is
// one-shot so a recommendation cache would never be hit
func buildAdvisor(cfg *config.Config, logger *zap.Logger) *core.AdvisorService {
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor)

	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}
	if classifier == nil {
		logger.Warn("Secondary classifier is disabled in configuration")
		return nil
	}

	return core.NewAdvisorService(classifier, nil, logger, false, 0)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("routing.confidence_scheme", *confidenceScheme)

	// Set LLM provider
	v.Set("llm.enabled", *withAdvisor)
	v.Set("llm.provider", *provider)

	// Set provider-specific configuration
	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	}

	return config.NewFromViper(v)
}
