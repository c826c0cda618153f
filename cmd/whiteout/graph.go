package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/whiteout-ext/internal/alias"
	"github.com/hazyhaar/whiteout-ext/internal/classify"
	"github.com/hazyhaar/whiteout-ext/internal/config"
	"github.com/hazyhaar/whiteout-ext/internal/database"
	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/model"
	"github.com/hazyhaar/whiteout-ext/internal/pipeline"
)

// defaultSearchLimit bounds entity search results.
const defaultSearchLimit = 20

// NewGraphCmd creates the graph command.
// This command inspects the entity graph built by 'anonymize --record'.
func NewGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [file]",
		Short: "Inspect the entity graph and match documents against it",
		Long: `Graph inspects the local entity graph: which entities appeared in which
documents, under which aliases.

Given a file, the command detects entities locally and proposes matches
against previously recorded documents. Matches are proposals only; an
exact match means a co-occurring entity from the prior document also
appears in this one, a likely match means only the name matches, and a
possible match means the name matches under a different entity type.

The graph is populated by 'whiteout anonymize --record'. Everything
stays on this machine.

Examples:
  # List recorded documents
  whiteout graph --list

  # Search known entities by prefix
  whiteout graph --search dupont

  # Match a new document against the graph
  whiteout graph letter.txt

  # Entity and document counts
  whiteout graph --stats

  # Confirm that a recorded occurrence was reviewed
  whiteout graph --confirm ent_0196... --document doc_0196...`,
		Args: cobra.MaximumNArgs(1),
		RunE: runGraphCmd,
	}

	// Inspection flags
	cmd.Flags().BoolP("list", "l", false,
		"List recorded documents")
	cmd.Flags().StringP("search", "s", "",
		"Search known entities by canonical prefix")
	cmd.Flags().Int("limit", defaultSearchLimit,
		"Maximum number of search results")
	cmd.Flags().Bool("stats", false,
		"Show entity and document counts")

	// Review flags
	cmd.Flags().String("confirm", "",
		"Mark an entity's occurrence as human-confirmed (requires --document)")
	cmd.Flags().String("document", "",
		"Document ID for --confirm")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

// runGraphCmd executes the graph command.
func runGraphCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Handle --list flag
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listGraphDocuments(ctx, db, jsonOutput)
	}

	// Handle --search flag
	search, err := cmd.Flags().GetString("search")
	if err != nil {
		return err
	}
	if search != "" {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		return searchGraphEntities(ctx, db, search, limit, jsonOutput)
	}

	// Handle --stats flag
	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	if stats {
		return showGraphStats(ctx, db, jsonOutput)
	}

	// Handle --confirm flag
	confirmEntity, err := cmd.Flags().GetString("confirm")
	if err != nil {
		return err
	}
	if confirmEntity != "" {
		documentID, err := cmd.Flags().GetString("document")
		if err != nil {
			return err
		}
		if documentID == "" {
			return errors.New("--confirm requires --document")
		}
		return confirmGraphOccurrence(ctx, db, confirmEntity, documentID)
	}

	// Default: match a document against the graph
	if len(args) == 0 {
		return errors.New("a file is required for matching (use --list to see recorded documents)")
	}
	return matchDocument(ctx, db, args[0], jsonOutput)
}

// listGraphDocuments lists all recorded documents.
func listGraphDocuments(ctx context.Context, db *database.DB, jsonOutput bool) error {
	docs, err := db.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if jsonOutput {
		return outputJSON(docs)
	}

	if len(docs) == 0 {
		fmt.Println("No documents recorded in the entity graph.")
		fmt.Println("\nUse 'whiteout anonymize --record <file>' to record a document.")
		return nil
	}

	fmt.Printf("Recorded documents (%d):\n\n", len(docs))
	fmt.Printf("  %-38s  %-20s  %-8s  %s\n", "ID", "Processed", "Entities", "Label")
	fmt.Println("  " + strings.Repeat("-", 80))

	for _, doc := range docs {
		fmt.Printf("  %-38s  %-20s  %-8d  %s\n",
			doc.ID,
			doc.ProcessedAt.Format("2006-01-02 15:04:05"),
			doc.EntityCount,
			doc.Label,
		)
	}
	fmt.Println("\nUse 'whiteout graph <file>' to match a new document against the graph.")

	return nil
}

// searchGraphEntities searches known entities by canonical prefix.
func searchGraphEntities(ctx context.Context, db *database.DB, prefix string, limit int, jsonOutput bool) error {
	entities, err := db.Search(ctx, graph.Canonicalize(prefix), limit)
	if err != nil {
		return fmt.Errorf("failed to search entities: %w", err)
	}

	if jsonOutput {
		return outputJSON(entities)
	}

	if len(entities) == 0 {
		fmt.Printf("No known entities match %q\n", prefix)
		return nil
	}

	fmt.Printf("Known entities matching %q (%d):\n\n", prefix, len(entities))
	fmt.Printf("  %-30s  %-8s  %-10s  %s\n", "Canonical", "Type", "Documents", "Last seen")
	fmt.Println("  " + strings.Repeat("-", 70))

	for _, e := range entities {
		fmt.Printf("  %-30s  %-8s  %-10d  %s\n",
			e.Canonical,
			e.Type.String(),
			e.DocumentCount,
			e.LastSeen.Format("2006-01-02 15:04:05"),
		)
	}

	return nil
}

// graphStats holds entity and document counts for output.
type graphStats struct {
	Entities  int `json:"entities"`
	Documents int `json:"documents"`
}

// showGraphStats shows entity and document counts.
func showGraphStats(ctx context.Context, db *database.DB, jsonOutput bool) error {
	entityCount, err := db.EntityCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count entities: %w", err)
	}
	documentCount, err := db.DocumentCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	if jsonOutput {
		return outputJSON(graphStats{Entities: entityCount, Documents: documentCount})
	}

	fmt.Printf("Entity graph:\n")
	fmt.Printf("  Known entities: %d\n", entityCount)
	fmt.Printf("  Documents:      %d\n", documentCount)

	return nil
}

// confirmGraphOccurrence marks an occurrence as human-confirmed.
func confirmGraphOccurrence(ctx context.Context, db *database.DB, entityID, documentID string) error {
	if err := db.ConfirmOccurrence(ctx, entityID, documentID); err != nil {
		if errors.Is(err, graph.ErrNotFound) {
			return fmt.Errorf("no occurrence of entity %s in document %s", entityID, documentID)
		}
		return fmt.Errorf("failed to confirm occurrence: %w", err)
	}

	fmt.Printf("Confirmed occurrence of %s in %s\n", entityID, documentID)
	return nil
}

// matchDocument detects entities in a file locally and proposes matches
// against the entity graph.
func matchDocument(ctx context.Context, db *database.DB, path string, jsonOutput bool) error {
	text, err := readInput(path)
	if err != nil {
		return err
	}

	// Detection runs against an in-memory store so matching never
	// touches alias maps: this command only reads the graph.
	cfg := config.NewConfig()
	deps := pipeline.Deps{
		Transport: classify.NewHTTPTransport(cfg.Timeout),
		Store:     database.NewMemoryStore(),
	}
	opts := pipeline.Options{
		BaseURL:       cfg.ServiceURL,
		Timeout:       cfg.Timeout,
		MaxBatchSize:  cfg.MaxBatchSize,
		DecoyRatio:    cfg.DecoyRatio,
		Jurisdictions: cfg.Jurisdictions,
		AliasStyle:    alias.ParseStyle(cfg.AliasStyle),
	}

	result, err := pipeline.Run(ctx, text, deps, uuid.NewString(), opts)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	candidates := make([]graph.Candidate, 0, len(result.Entities))
	for _, e := range result.Entities {
		candidates = append(candidates, graph.Candidate{Text: e.Text, Type: e.Type})
	}

	matches, err := graph.FindMatches(ctx, db, candidates)
	if err != nil {
		return fmt.Errorf("matching failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(matches)
	}

	fmt.Printf("Detected %d entities in %s\n", len(result.Entities), path)

	if len(matches) == 0 {
		fmt.Println("No known entities matched.")
		return nil
	}

	fmt.Printf("Proposed matches (%d):\n\n", len(matches))
	for _, m := range matches {
		fmt.Printf("  [%s] %s (%s)\n", strings.ToUpper(m.Confidence.String()), m.Known.Canonical, m.Known.Type.String())

		// Possible matches carry no prior-document context: only the
		// canonical form matched, under a different entity type.
		if m.Confidence == model.MatchPossible {
			fmt.Println("      same name recorded under a different type")
			continue
		}

		fmt.Printf("      previously %q in %s (%s)\n",
			m.PreviousAlias,
			m.PreviousDocument.Label,
			m.PreviousDocument.ProcessedAt.Format("2006-01-02"),
		)
		if len(m.CoEntities) > 0 {
			fmt.Printf("      seen alongside: %s\n", strings.Join(m.CoEntities, ", "))
		}
	}

	fmt.Println("\nMatches are proposals. Confirm reviewed occurrences with 'whiteout graph --confirm'.")

	return nil
}

// outputJSON writes any value as indented JSON to stdout.
func outputJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
