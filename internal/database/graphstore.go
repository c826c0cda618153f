package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/whiteout-ext/internal/graph"
	"github.com/hazyhaar/whiteout-ext/internal/model"
)

// scanEntities reads known-entity rows ordered as the query specified.
func scanEntities(rows *sql.Rows) ([]model.KnownEntity, error) {
	var entities []model.KnownEntity
	for rows.Next() {
		var e model.KnownEntity
		var typeName string
		var firstSeen, lastSeen int64

		if err := rows.Scan(&e.ID, &e.Canonical, &typeName, &firstSeen, &lastSeen, &e.DocumentCount); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		e.Type = model.ParseEntityType(typeName)
		e.FirstSeen = time.UnixMilli(firstSeen).UTC()
		e.LastSeen = time.UnixMilli(lastSeen).UTC()
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

const entityColumns = `id, canonical, type, first_seen, last_seen, document_count`

// FindByCanonical returns all known entities with the given canonical
// form, any type.
func (d *DB) FindByCanonical(ctx context.Context, canonical string) ([]model.KnownEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE canonical = ? ORDER BY last_seen DESC`

	rows, err := d.db.QueryContext(ctx, query, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities by canonical: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// FindByType returns all known entities of a type, newest first.
func (d *DB) FindByType(ctx context.Context, t model.EntityType) ([]model.KnownEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE type = ? ORDER BY last_seen DESC`

	rows, err := d.db.QueryContext(ctx, query, t.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query entities by type: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// Search returns known entities whose canonical form starts with the
// prefix, up to limit.
func (d *DB) Search(ctx context.Context, canonicalPrefix string, limit int) ([]model.KnownEntity, error) {
	if limit <= 0 {
		return nil, nil
	}

	// LIKE with a trailing wildcard uses the canonical index; the prefix
	// itself must not contain LIKE metacharacters unescaped.
	query := `SELECT ` + entityColumns + ` FROM entities
	WHERE canonical LIKE ? ESCAPE '\'
	ORDER BY last_seen DESC
	LIMIT ?`

	rows, err := d.db.QueryContext(ctx, query, escapeLike(canonicalPrefix)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities: %w", err)
	}
	defer rows.Close()

	return scanEntities(rows)
}

// escapeLike escapes LIKE metacharacters so a prefix matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// PutEntity inserts or replaces a known entity by ID.
func (d *DB) PutEntity(ctx context.Context, e model.KnownEntity) error {
	query := `
	INSERT INTO entities (id, canonical, type, first_seen, last_seen, document_count)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		canonical = excluded.canonical,
		type = excluded.type,
		first_seen = excluded.first_seen,
		last_seen = excluded.last_seen,
		document_count = excluded.document_count
	`

	_, err := d.db.ExecContext(ctx, query,
		e.ID,
		e.Canonical,
		e.Type.String(),
		e.FirstSeen.UnixMilli(),
		e.LastSeen.UnixMilli(),
		e.DocumentCount,
	)
	if err != nil {
		return fmt.Errorf("failed to store entity: %w", err)
	}
	return nil
}

// GetEntity returns the entity with the given ID.
func (d *DB) GetEntity(ctx context.Context, id string) (model.KnownEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`

	var e model.KnownEntity
	var typeName string
	var firstSeen, lastSeen int64

	err := d.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.Canonical, &typeName, &firstSeen, &lastSeen, &e.DocumentCount)
	if err == sql.ErrNoRows {
		return model.KnownEntity{}, fmt.Errorf("entity %s: %w", id, graph.ErrNotFound)
	}
	if err != nil {
		return model.KnownEntity{}, fmt.Errorf("failed to get entity: %w", err)
	}

	e.Type = model.ParseEntityType(typeName)
	e.FirstSeen = time.UnixMilli(firstSeen).UTC()
	e.LastSeen = time.UnixMilli(lastSeen).UTC()
	return e, nil
}

// AddOccurrence appends an occurrence row.
func (d *DB) AddOccurrence(ctx context.Context, o model.EntityOccurrence) error {
	query := `
	INSERT INTO occurrences (entity_id, document_id, original_text, alias, confirmed)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(ctx, query, o.EntityID, o.DocumentID, o.OriginalText, o.Alias, o.Confirmed)
	if err != nil {
		return fmt.Errorf("failed to store occurrence: %w", err)
	}
	return nil
}

func scanOccurrences(rows *sql.Rows) ([]model.EntityOccurrence, error) {
	var occurrences []model.EntityOccurrence
	for rows.Next() {
		var o model.EntityOccurrence
		if err := rows.Scan(&o.EntityID, &o.DocumentID, &o.OriginalText, &o.Alias, &o.Confirmed); err != nil {
			return nil, fmt.Errorf("failed to scan occurrence: %w", err)
		}
		occurrences = append(occurrences, o)
	}
	return occurrences, rows.Err()
}

const occurrenceColumns = `entity_id, document_id, original_text, alias, confirmed`

// GetOccurrences returns all occurrences of an entity, newest first.
func (d *DB) GetOccurrences(ctx context.Context, entityID string) ([]model.EntityOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM occurrences WHERE entity_id = ? ORDER BY id DESC`

	rows, err := d.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query occurrences: %w", err)
	}
	defer rows.Close()

	return scanOccurrences(rows)
}

// GetDocumentOccurrences returns all occurrences within a document.
func (d *DB) GetDocumentOccurrences(ctx context.Context, documentID string) ([]model.EntityOccurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM occurrences WHERE document_id = ? ORDER BY id`

	rows, err := d.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document occurrences: %w", err)
	}
	defer rows.Close()

	return scanOccurrences(rows)
}

// ConfirmOccurrence marks an entity's occurrence in a document as
// human-confirmed.
func (d *DB) ConfirmOccurrence(ctx context.Context, entityID, documentID string) error {
	query := `UPDATE occurrences SET confirmed = 1 WHERE entity_id = ? AND document_id = ?`

	result, err := d.db.ExecContext(ctx, query, entityID, documentID)
	if err != nil {
		return fmt.Errorf("failed to confirm occurrence: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to confirm occurrence: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("occurrence of %s in %s: %w", entityID, documentID, graph.ErrNotFound)
	}
	return nil
}

// PutDocument inserts or replaces a document record by ID.
func (d *DB) PutDocument(ctx context.Context, doc model.DocumentRecord) error {
	query := `
	INSERT INTO documents (id, label, processed_at, entity_count, fingerprint)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		label = excluded.label,
		processed_at = excluded.processed_at,
		entity_count = excluded.entity_count,
		fingerprint = excluded.fingerprint
	`

	_, err := d.db.ExecContext(ctx, query, doc.ID, doc.Label, doc.ProcessedAt.UnixMilli(), doc.EntityCount, doc.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

const documentColumns = `id, label, processed_at, entity_count, fingerprint`

func scanDocuments(rows *sql.Rows) ([]model.DocumentRecord, error) {
	var docs []model.DocumentRecord
	for rows.Next() {
		var doc model.DocumentRecord
		var processedAt int64
		if err := rows.Scan(&doc.ID, &doc.Label, &processedAt, &doc.EntityCount, &doc.Fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.ProcessedAt = time.UnixMilli(processedAt).UTC()
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// GetDocument returns the document with the given ID.
func (d *DB) GetDocument(ctx context.Context, id string) (model.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = ?`

	var doc model.DocumentRecord
	var processedAt int64

	err := d.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.Label, &processedAt, &doc.EntityCount, &doc.Fingerprint)
	if err == sql.ErrNoRows {
		return model.DocumentRecord{}, fmt.Errorf("document %s: %w", id, graph.ErrNotFound)
	}
	if err != nil {
		return model.DocumentRecord{}, fmt.Errorf("failed to get document: %w", err)
	}

	doc.ProcessedAt = time.UnixMilli(processedAt).UTC()
	return doc, nil
}

// FindByFingerprint returns documents with the given content fingerprint.
func (d *DB) FindByFingerprint(ctx context.Context, fingerprint string) ([]model.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE fingerprint = ? ORDER BY processed_at DESC`

	rows, err := d.db.QueryContext(ctx, query, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents by fingerprint: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListDocuments returns all documents, newest first.
func (d *DB) ListDocuments(ctx context.Context) ([]model.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY processed_at DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// EntityCount returns the number of known entities.
func (d *DB) EntityCount(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return count, nil
}

// DocumentCount returns the number of documents.
func (d *DB) DocumentCount(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
