package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ReviewsScanner/internal/domain"
	"ReviewsScanner/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS review_audit_runs (
    run_id            TEXT PRIMARY KEY,
    place_url         TEXT NOT NULL,
    fetched_at        TIMESTAMPTZ NOT NULL,
    api_reviews_count INTEGER NOT NULL,
    displayed_count   INTEGER NOT NULL,
    discrepancies     INTEGER NOT NULL,
    text_hashes       TEXT[] NOT NULL DEFAULT '{}',
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS review_audit_items (
    run_id      TEXT NOT NULL REFERENCES review_audit_runs (run_id) ON DELETE CASCADE,
    position    INTEGER NOT NULL,
    author_name TEXT NOT NULL,
    rating      INTEGER NOT NULL,
    verified    BOOLEAN NOT NULL,
    matched_by  TEXT NOT NULL DEFAULT '',
    similarity  DOUBLE PRECISION NOT NULL DEFAULT 0,
    text_hash   TEXT NOT NULL,
    PRIMARY KEY (run_id, position)
);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository keeps the audit history of every run in Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.AuditRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the audit tables when they are missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// SaveAudit stores the run header and its items in one transaction. Saving the
// same run twice keeps the first copy.
func (r *PostgresRepository) SaveAudit(ctx context.Context, audit domain.AuditArtifact) (err error) {
	if r.db == nil {
		return nil
	}

	fetchedAt, err := time.Parse(time.RFC3339, audit.FetchedAt)
	if err != nil {
		return fmt.Errorf("parse fetchedAt %q: %w", audit.FetchedAt, err)
	}

	hashes := make([]string, 0, len(audit.Items))
	for _, item := range audit.Items {
		hashes = append(hashes, item.TextHash)
	}

	runQuery, runArgs, err := psql.Insert("review_audit_runs").
		Columns("run_id", "place_url", "fetched_at", "api_reviews_count", "displayed_count", "discrepancies", "text_hashes").
		Values(audit.RunID, audit.PlaceURL, fetchedAt, audit.APIReviewsCount, audit.DisplayedCount, audit.Discrepancies, pq.Array(hashes)).
		Suffix("ON CONFLICT (run_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, runQuery, runArgs...)
	if err != nil {
		return fmt.Errorf("insert audit run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 || len(audit.Items) == 0 {
		return tx.Commit()
	}

	items := psql.Insert("review_audit_items").
		Columns("run_id", "position", "author_name", "rating", "verified", "matched_by", "similarity", "text_hash")
	for i, item := range audit.Items {
		items = items.Values(audit.RunID, i, item.AuthorName, item.Rating, item.Verified, string(item.MatchedBy), item.Similarity, item.TextHash)
	}
	itemsQuery, itemsArgs, err := items.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}
	if _, err = tx.ExecContext(ctx, itemsQuery, itemsArgs...); err != nil {
		return fmt.Errorf("insert audit items: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit audit: %w", err)
	}
	return nil
}

// SeenTextHashes reports which of hashes were displayed by an earlier run.
func (r *PostgresRepository) SeenTextHashes(ctx context.Context, hashes []string) (map[string]bool, error) {
	if r.db == nil || len(hashes) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := psql.Select("DISTINCT text_hash").
		From("review_audit_items").
		Where("text_hash = ANY(?)", pq.StringArray(hashes)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen hashes: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		result[hash] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}
