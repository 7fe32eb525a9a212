package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"sreality-agents/models"
	"sreality-agents/utils"
)

// PostgresWriter persists aggregated agent records to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	connect := &utils.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
		Logger:      logger,
	}
	if err := connect.Do("postgres-connect", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS agents (
			id             SERIAL PRIMARY KEY,
			source         VARCHAR(50) NOT NULL,
			name           TEXT        NOT NULL,
			phone          TEXT        NOT NULL DEFAULT '',
			email          TEXT        NOT NULL DEFAULT '',
			brokerage      TEXT        NOT NULL DEFAULT '',
			region         TEXT        NOT NULL DEFAULT '',
			city           TEXT        NOT NULL DEFAULT '',
			specialization TEXT        NOT NULL DEFAULT '',
			detail_text    TEXT        NOT NULL DEFAULT '',
			links          TEXT        NOT NULL DEFAULT '',
			breakdown      TEXT        NOT NULL DEFAULT '',
			listing_count  INTEGER     NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),

			UNIQUE (name, phone, email, brokerage)
		);

		CREATE INDEX IF NOT EXISTS idx_agents_region        ON agents(region);
		CREATE INDEX IF NOT EXISTS idx_agents_brokerage     ON agents(brokerage);
		CREATE INDEX IF NOT EXISTS idx_agents_listing_count ON agents(listing_count);
	`)
	return err
}

// Write batch-upserts all records. Records hitting the identity constraint
// get their aggregate fields replaced with the fresher values.
func (pw *PostgresWriter) Write(records []*models.AgentRecord) error {
	if len(records) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := pw.upsertBatch(records[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) upsertBatch(batch []*models.AgentRecord) error {
	const fields = 12
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*fields)

	for idx, r := range batch {
		base := idx * fields
		placeholders := make([]string, fields)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", base+i+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.Source, r.Name, r.Phone, r.Email, r.Brokerage, r.Region, r.City,
			r.Specialization, r.DetailText, r.Links, r.Breakdown, r.ListingCount)
	}

	query := fmt.Sprintf(`
		INSERT INTO agents (source, name, phone, email, brokerage, region, city,
		                    specialization, detail_text, links, breakdown, listing_count)
		VALUES %s
		ON CONFLICT (name, phone, email, brokerage) DO UPDATE SET
			specialization = EXCLUDED.specialization,
			detail_text    = EXCLUDED.detail_text,
			links          = EXCLUDED.links,
			breakdown      = EXCLUDED.breakdown,
			listing_count  = EXCLUDED.listing_count
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: upsert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored agents ordered by listing count descending.
func (pw *PostgresWriter) FetchAll() ([]*models.AgentRecord, error) {
	rows, err := pw.db.Query(`
		SELECT source, name, phone, email, brokerage, region, city,
		       specialization, detail_text, links, breakdown, listing_count
		FROM agents
		ORDER BY listing_count DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var records []*models.AgentRecord
	for rows.Next() {
		r := &models.AgentRecord{}
		if err := rows.Scan(
			&r.Source, &r.Name, &r.Phone, &r.Email, &r.Brokerage, &r.Region,
			&r.City, &r.Specialization, &r.DetailText, &r.Links, &r.Breakdown,
			&r.ListingCount,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
