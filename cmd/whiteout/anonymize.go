package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
	"github.com/hazyhaar/whiteout-ext/internal/classify"
	"github.com/hazyhaar/whiteout-ext/internal/config"
	"github.com/hazyhaar/whiteout-ext/internal/database"
	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/log"
	"github.com/hazyhaar/whiteout-ext/internal/model"
	"github.com/hazyhaar/whiteout-ext/internal/pipeline"
	"github.com/hazyhaar/whiteout-ext/internal/report"
)

// NewAnonymizeCmd creates the anonymize command.
func NewAnonymizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anonymize [file...]",
		Short: "Anonymize personal information in text documents",
		Long: `Anonymize detects personal information in text and replaces it with aliases.

Detection runs locally: tokenization, pattern matching, and dictionary
lookups never leave your machine. Ambiguous terms are sent to a
classification service on the local network, mixed with synthetic decoy
terms so the service cannot tell which terms appeared in your document.

Aliases are consistent within a session: the same name always maps to
the same alias, across documents and across runs.

Examples:
  # Anonymize a file, print the result
  whiteout anonymize letter.txt

  # Anonymize from stdin
  cat letter.txt | whiteout anonymize

  # Anonymize several files concurrently
  whiteout anonymize a.txt b.txt c.txt

  # Keep aliases consistent across runs
  whiteout anonymize --session case-4217 letter.txt
  whiteout anonymize --session case-4217 annex.txt

  # Realistic substitutes instead of numbered labels
  whiteout anonymize --style realistic letter.txt

  # Entity report in Markdown, written next to the output
  whiteout anonymize --markdown -o report.md letter.txt

  # Leave no trace on disk
  whiteout anonymize --ephemeral letter.txt

Configuration file (.whiteout) example:
  defaults:
    serviceUrl: "http://127.0.0.1:8089"
    jurisdictions: [FR]
  profiles:
    export:
      aliasStyle: realistic`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnonymizeCmd,
	}

	// Classification service flags
	cmd.Flags().StringP("service", "s", config.DefaultServiceURL,
		"Classification service base URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each classification batch round trip")
	cmd.Flags().IntP("batch-size", "b", config.DefaultMaxBatchSize,
		"Maximum terms per classification batch, decoys included")
	cmd.Flags().Float64P("decoy-ratio", "r", config.DefaultDecoyRatio,
		"Ratio of synthetic decoy terms mixed into each batch (0 to 1)")

	// Anonymization behavior flags
	cmd.Flags().StringP("style", "a", config.DefaultAliasStyle,
		"Alias style: generic (numbered labels) or realistic (plausible substitutes)")
	cmd.Flags().StringSliceP("jurisdictions", "J", config.DefaultJurisdictions,
		"Jurisdictions for dictionary lookups (e.g., FR,BE)")
	cmd.Flags().StringP("session", "S", "",
		"Session ID for alias consistency across runs (default: fresh per invocation)")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of documents processed in parallel when multiple files are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .whiteout in current or home directory)")
	cmd.Flags().StringP("profile", "p", "",
		"Named profile from the configuration file")

	// Storage flags
	cmd.Flags().BoolP("ephemeral", "e", false,
		"Keep alias maps and cache in memory only; nothing is written to disk")
	cmd.Flags().Bool("record", false,
		"Record detected entities in the entity graph for cross-document matching")
	cmd.Flags().String("label", "",
		"Human-readable document label for the entity graph (default: file name)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON entity report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown entity report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the entity report to specified file path (creates directories if needed)")

	return cmd
}

// runAnonymizeCmd executes the anonymize command.
func runAnonymizeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	record, err := cmd.Flags().GetBool("record")
	if err != nil {
		return err
	}
	label, err := cmd.Flags().GetString("label")
	if err != nil {
		return err
	}

	// Set up structured logging. The redacting handler masks document
	// content and entity values; logs are safe to keep even when the
	// documents are not.
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnonymize(ctx, cfg, args, record, label, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
// Precedence: flag explicitly set > profile from config file > defaults.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load profiles from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Profiles, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Profiles = &config.File{
			Profiles: make(map[string]config.Profile),
		}
	}

	// File defaults apply before any named profile and before flags.
	applyFileDefaults(cfg)

	profileName, err := cmd.Flags().GetString("profile")
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		if !cfg.ApplyProfile(profileName) {
			return nil, fmt.Errorf("profile not found in %s: %s", configPath, profileName)
		}
	}

	// Explicitly set flags win over profile values. Flags left at their
	// defaults must not clobber what the profile configured.
	if cmd.Flags().Changed("service") || cfg.ServiceURL == "" {
		cfg.ServiceURL, err = cmd.Flags().GetString("service")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("style") {
		cfg.AliasStyle, err = cmd.Flags().GetString("style")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("jurisdictions") {
		cfg.Jurisdictions, err = cmd.Flags().GetStringSlice("jurisdictions")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("decoy-ratio") {
		cfg.DecoyRatio, err = cmd.Flags().GetFloat64("decoy-ratio")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("batch-size") {
		cfg.MaxBatchSize, err = cmd.Flags().GetInt("batch-size")
		if err != nil {
			return nil, err
		}
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.SessionID, err = cmd.Flags().GetString("session")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Ephemeral, err = cmd.Flags().GetBool("ephemeral")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFileDefaults overlays the config file defaults onto cfg.
func applyFileDefaults(cfg *config.Config) {
	d := cfg.Profiles.Defaults
	if d.ServiceURL != "" {
		cfg.ServiceURL = d.ServiceURL
	}
	if d.AliasStyle != "" {
		cfg.AliasStyle = d.AliasStyle
	}
	if len(d.Jurisdictions) > 0 {
		cfg.Jurisdictions = append([]string{}, d.Jurisdictions...)
	}
	if d.DecoyRatio != nil {
		cfg.DecoyRatio = *d.DecoyRatio
	}
	if d.MaxBatchSize != nil {
		cfg.MaxBatchSize = *d.MaxBatchSize
	}
}

// anonymizerStore is the combined persistence surface the anonymize
// command needs: alias maps and cache for the pipeline, the entity
// graph for --record.
type anonymizerStore interface {
	pipeline.Store
	graph.Store
}

// runAnonymize executes the anonymization.
func runAnonymize(ctx context.Context, cfg *config.Config, files []string, record bool, label string, logger *slog.Logger) error {
	// Open the store. Ephemeral mode keeps everything in memory and
	// leaves no trace after the process exits.
	var store anonymizerStore
	if cfg.Ephemeral {
		store = database.NewMemoryStore()
		logger.Info("ephemeral mode, nothing will be written to disk")
	} else {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		store = db
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	deps := pipeline.Deps{
		Transport: classify.NewHTTPTransport(cfg.Timeout),
		Store:     store,
		Logger:    logger,
	}
	opts := pipeline.Options{
		BaseURL:       cfg.ServiceURL,
		Timeout:       cfg.Timeout,
		MaxBatchSize:  cfg.MaxBatchSize,
		DecoyRatio:    cfg.DecoyRatio,
		Jurisdictions: cfg.Jurisdictions,
		AliasStyle:    alias.ParseStyle(cfg.AliasStyle),
	}

	if len(files) > 1 {
		return runBatchAnonymize(ctx, cfg, files, record, deps, opts, store, logger)
	}
	return runSingleAnonymize(ctx, cfg, files, record, label, deps, opts, store, logger)
}

// runSingleAnonymize anonymizes one document from a file or stdin.
func runSingleAnonymize(ctx context.Context, cfg *config.Config, files []string, record bool, label string, deps pipeline.Deps, opts pipeline.Options, store anonymizerStore, logger *slog.Logger) error {
	inputFile := ""
	if len(files) == 1 {
		inputFile = files[0]
	}

	text, err := readInput(inputFile)
	if err != nil {
		return err
	}

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		logger.Debug("generated session ID", "session", sessionID)
	}

	result, err := pipeline.Run(ctx, text, deps, sessionID, opts)
	if err != nil {
		return fmt.Errorf("anonymization failed: %w", err)
	}

	if record {
		if err := recordInGraph(ctx, store, result, documentLabel(label, inputFile), logger); err != nil {
			logger.Error("failed to record document in entity graph", "error", err)
		}
	}

	fmt.Println(result.AnonymizedText)

	return outputReport(cfg, result)
}

// runBatchAnonymize anonymizes multiple files concurrently.
func runBatchAnonymize(ctx context.Context, cfg *config.Config, files []string, record bool, deps pipeline.Deps, opts pipeline.Options, store anonymizerStore, logger *slog.Logger) error {
	concurrency := cfg.Concurrency

	// A shared session means shared alias numbering, which has no
	// cross-writer coordination. Fall back to sequential processing.
	items := make([]pipeline.BatchItem, 0, len(files))
	for _, f := range files {
		text, err := readInput(f)
		if err != nil {
			return err
		}

		sessionID := cfg.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		items = append(items, pipeline.BatchItem{SessionID: sessionID, Text: text})
	}
	if cfg.SessionID != "" && concurrency > 1 {
		logger.Warn("shared session forces sequential processing", "session", cfg.SessionID)
		concurrency = 1
	}

	fmt.Fprintf(os.Stderr, "Anonymizing %d documents (concurrency: %d)...\n",
		len(files), concurrency)
	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(deps, opts,
		pipeline.WithConcurrency(concurrency),
		pipeline.WithBatchLogger(logger),
	)

	results, err := bp.Process(ctx, items)
	if err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("=== %s ===\n", files[i])
		fmt.Println(result.AnonymizedText)

		if record {
			if err := recordInGraph(ctx, store, result, documentLabel("", files[i]), logger); err != nil {
				logger.Error("failed to record document in entity graph", "file", files[i], "error", err)
			}
		}

		if err := outputReport(cfg, result); err != nil {
			logger.Error("report failed", "file", files[i], "error", err)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nBatch completed in %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// readInput reads the document text from a file, or stdin when path is empty.
func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's own CLI arguments
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}

// documentLabel picks a human-readable label for the entity graph.
func documentLabel(label, inputFile string) string {
	if label != "" {
		return label
	}
	if inputFile != "" {
		return filepath.Base(inputFile)
	}
	return "stdin"
}

// recordInGraph records the run's entities in the entity graph.
func recordInGraph(ctx context.Context, store graph.Store, result *model.ProcessResult, label string, logger *slog.Logger) error {
	documentID := graph.NewID("doc")
	if err := graph.RecordDocument(ctx, store, documentID, label, result.Text, result.Entities); err != nil {
		return err
	}

	logger.Info("document recorded in entity graph",
		"document_id", documentID,
		"entities", len(result.Entities),
	)
	return nil
}

// outputReport outputs the entity report in the requested format.
// The anonymized text itself always goes to stdout; the report goes to
// the --output file when given, stdout otherwise.
func outputReport(cfg *config.Config, result *model.ProcessResult) error {
	// No report requested: the anonymized text alone is the output.
	if !cfg.JSONReport && !cfg.MarkdownReport && cfg.ReportFile == "" {
		return nil
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600).
		// Reports contain the original entity texts and must stay as
		// private as the source document.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(result)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(result)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(result)
	return err
}
