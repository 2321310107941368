package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/news-agent/internal/analysis"
	"github.com/jonathan/news-agent/internal/config"
	"github.com/jonathan/news-agent/internal/db"
	"github.com/jonathan/news-agent/internal/extraction"
	"github.com/jonathan/news-agent/internal/fetch"
	"github.com/jonathan/news-agent/internal/llm"
	"github.com/jonathan/news-agent/internal/observability"
	"github.com/jonathan/news-agent/internal/pipeline"
	"github.com/jonathan/news-agent/internal/planning"
	"github.com/jonathan/news-agent/internal/providers"
	"github.com/jonathan/news-agent/internal/synthesis"
	"github.com/jonathan/news-agent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full news pipeline for a topic",
	Long: `Orchestrates the entire news run: planning -> searching -> extracting -> analyzing -> synthesizing.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath   string
	runTopic        string
	runMaxArticles  int
	runTopN         int
	runConcurrency  int
	runTimeoutMS    int
	runNewsAPIKey   string
	runGNewsAPIKey  string
	runGoogleKey    string
	runGoogleCX     string
	runGeminiAPIKey string
	runUseBrowser   bool
	runVerbose      bool
	runDatabaseURL  string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runTopic, "topic", "t", "", "News topic to research (required)")
	runCommand.Flags().IntVar(&runMaxArticles, "max-articles", 0, "Maximum candidate articles after dedup")
	runCommand.Flags().IntVar(&runTopN, "top-n", 0, "Number of top-ranked articles fed to synthesis")
	runCommand.Flags().IntVar(&runConcurrency, "concurrency", 0, "Bound on parallel provider and extraction calls")
	runCommand.Flags().IntVar(&runTimeoutMS, "timeout-ms", 0, "Overall run deadline in milliseconds")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for anti-scrape sites (requires Chrome)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Provider keys can be passed as flags, or read from env vars
	runCommand.Flags().StringVar(&runNewsAPIKey, "newsapi-key", "", "NewsAPI key (optional, defaults to NEWS_API_KEY env var)")
	runCommand.Flags().StringVar(&runGNewsAPIKey, "gnews-key", "", "GNews key (optional, defaults to GNEWS_API_KEY env var)")
	runCommand.Flags().StringVar(&runGoogleKey, "google-key", "", "Google Custom Search key (optional, defaults to GOOGLE_SEARCH_API_KEY env var)")
	runCommand.Flags().StringVar(&runGoogleCX, "google-cx", "", "Google Custom Search engine ID (optional, defaults to GOOGLE_SEARCH_CX env var)")
	runCommand.Flags().StringVar(&runGeminiAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("max-articles") {
		cfg.MaxArticles = runMaxArticles
	}
	if cmd.Flags().Changed("top-n") {
		cfg.TopN = runTopN
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.ConcurrencyLimit = runConcurrency
	}
	if cmd.Flags().Changed("timeout-ms") {
		cfg.TimeoutMS = runTimeoutMS
	}
	if cmd.Flags().Changed("newsapi-key") {
		cfg.NewsAPIKey = runNewsAPIKey
	}
	if cmd.Flags().Changed("gnews-key") {
		cfg.GNewsAPIKey = runGNewsAPIKey
	}
	if cmd.Flags().Changed("google-key") {
		cfg.GoogleSearchKey = runGoogleKey
	}
	if cmd.Flags().Changed("google-cx") {
		cfg.GoogleSearchCX = runGoogleCX
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = runGeminiAPIKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())

	// Step 4: Credential fallbacks from environment
	if cfg.NewsAPIKey == "" {
		cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	}
	if cfg.GNewsAPIKey == "" {
		cfg.GNewsAPIKey = os.Getenv("GNEWS_API_KEY")
	}
	if cfg.GoogleSearchKey == "" {
		cfg.GoogleSearchKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.GoogleSearchCX == "" {
		cfg.GoogleSearchCX = os.Getenv("GOOGLE_SEARCH_CX")
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 5: Validate required inputs
	if runTopic == "" {
		return fmt.Errorf("--topic is required")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	// Step 6: Build source clients from available credentials
	clients, err := buildClients(ctx, cfg)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		return fmt.Errorf("no news providers configured; set NEWS_API_KEY, GNEWS_API_KEY, or GOOGLE_SEARCH_API_KEY + GOOGLE_SEARCH_CX")
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	var store pipeline.Store
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		store = database
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	runner := pipeline.NewRunner(
		cfg,
		planning.NewPlanner(llmClient, cfg.Verbose),
		clients,
		extraction.NewExtractor(fetch.DefaultOptions(), cfg.UseBrowser, cfg.Verbose),
		analysis.NewAnalyzer(cfg.TierTable, *cfg.ScoreWeights, cfg.Verbose),
		synthesis.NewGeminiSynthesizer(llmClient, cfg.Verbose),
		store,
		printer,
	)

	result, err := runner.Run(ctx, runTopic)
	if err != nil {
		return err
	}

	printResult(result, printer)
	return nil
}

// buildClients assembles a SourceClient per configured credential.
func buildClients(ctx context.Context, cfg config.Config) ([]providers.SourceClient, error) {
	var clients []providers.SourceClient
	if cfg.NewsAPIKey != "" {
		clients = append(clients, providers.NewNewsAPIClient(cfg.NewsAPIKey, ""))
	}
	if cfg.GNewsAPIKey != "" {
		clients = append(clients, providers.NewGNewsClient(cfg.GNewsAPIKey, ""))
	}
	if cfg.GoogleSearchKey != "" && cfg.GoogleSearchCX != "" {
		cse, err := providers.NewGoogleCSEClient(ctx, cfg.GoogleSearchKey, cfg.GoogleSearchCX)
		if err != nil {
			return nil, fmt.Errorf("failed to create Google CSE client: %w", err)
		}
		clients = append(clients, cse)
	}
	return clients, nil
}

// printResult writes the summary, cited sources, and diagnostics to stdout.
func printResult(result *types.PipelineResult, printer *observability.Printer) {
	fmt.Println()
	fmt.Printf("Topic: %s\n", result.Topic)
	fmt.Println(strings.Repeat("=", 60))

	if result.SummaryText != "" {
		fmt.Println(result.SummaryText)
	} else {
		fmt.Println("(no summary produced; run ended early)")
	}

	if len(result.CitedArticles) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, article := range result.CitedArticles {
			score := "-"
			if article.CredibilityScore != nil {
				score = fmt.Sprintf("%.1f", *article.CredibilityScore)
			}
			fmt.Printf("  [%s] %s (%s)\n     %s\n", score, article.Title, article.SourceName, article.URL)
		}
	}

	printer.Metrics(result.Metrics)
	printer.Diagnostics(result.Errors)

	if result.Degraded() && printer == nil {
		fmt.Printf("\nCompleted with %d absorbed failures (run with --verbose for details)\n", len(result.Errors))
	}
	fmt.Printf("\nElapsed: %s\n", result.Elapsed.Round(10*time.Millisecond))
}
