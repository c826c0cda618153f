package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// GetAliasMap loads the alias map for a session. A session never seen
// before yields an empty, non-nil map.
func (d *DB) GetAliasMap(ctx context.Context, sessionID string) (map[string]string, error) {
	query := `
	SELECT original, alias FROM alias_maps
	WHERE session_id = ?
	`

	rows, err := d.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias map: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var original, alias string
		if err := rows.Scan(&original, &alias); err != nil {
			return nil, fmt.Errorf("failed to scan alias row: %w", err)
		}
		aliases[original] = alias
	}

	return aliases, rows.Err()
}

// SetAliasMap persists the session alias map. Existing assignments are
// replaced; the write is atomic per session.
func (d *DB) SetAliasMap(ctx context.Context, sessionID string, aliases map[string]string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin alias map transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, `DELETE FROM alias_maps WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear alias map: %w", err)
	}

	insert := `INSERT INTO alias_maps (session_id, original, alias) VALUES (?, ?, ?)`
	for original, alias := range aliases {
		if _, err := tx.ExecContext(ctx, insert, sessionID, original, alias); err != nil {
			return fmt.Errorf("failed to store alias: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alias map: %w", err)
	}
	return nil
}

// GetCachedClassification returns the cached touchstone results for a
// term. The boolean is false on a miss, including expiry: the TTL is
// enforced here on read, and expired rows are dropped lazily.
func (d *DB) GetCachedClassification(ctx context.Context, term string) ([]model.TouchstoneResult, bool, error) {
	query := `
	SELECT results_json, expires_at FROM classification_cache
	WHERE term = ?
	`

	var resultsJSON string
	var expiresAt int64
	err := d.db.QueryRowContext(ctx, query, term).Scan(&resultsJSON, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read classification cache: %w", err)
	}

	if time.Now().UnixMilli() > expiresAt {
		if _, err := d.db.ExecContext(ctx, `DELETE FROM classification_cache WHERE term = ?`, term); err != nil {
			return nil, false, fmt.Errorf("failed to evict expired cache entry: %w", err)
		}
		return nil, false, nil
	}

	var results []model.TouchstoneResult
	if err := json.Unmarshal([]byte(resultsJSON), &results); err != nil {
		return nil, false, fmt.Errorf("failed to parse cached classification: %w", err)
	}
	return results, true, nil
}

// SetCachedClassification stores results for a term with a TTL.
// Negative results (empty slices) are cached too.
func (d *DB) SetCachedClassification(ctx context.Context, term string, results []model.TouchstoneResult, ttl time.Duration) error {
	if results == nil {
		results = []model.TouchstoneResult{}
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to serialize classification: %w", err)
	}

	query := `
	INSERT INTO classification_cache (term, results_json, expires_at)
	VALUES (?, ?, ?)
	ON CONFLICT(term) DO UPDATE SET
		results_json = excluded.results_json,
		expires_at = excluded.expires_at
	`

	expiresAt := time.Now().Add(ttl).UnixMilli()
	if _, err := d.db.ExecContext(ctx, query, term, string(resultsJSON), expiresAt); err != nil {
		return fmt.Errorf("failed to store classification: %w", err)
	}
	return nil
}
