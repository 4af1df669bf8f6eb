// Package postgres persists run manifests and posterior summaries.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gocmr/domain/bundle"
	"gocmr/domain/core"
	"gocmr/ports"
)

// Connect opens a PostgreSQL connection pool.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the run tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			seed          BIGINT NOT NULL,
			n_individuals INT NOT NULL,
			n_occasions   INT NOT NULL,
			n_chains      INT NOT NULL,
			fingerprint   TEXT NOT NULL,
			manifest      JSONB NOT NULL,
			model_bundle  JSONB,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS run_summaries (
			run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			parameter TEXT NOT NULL,
			mean      DOUBLE PRECISION NOT NULL,
			std_dev   DOUBLE PRECISION NOT NULL,
			median    DOUBLE PRECISION NOT NULL,
			p2_5      DOUBLE PRECISION NOT NULL,
			p97_5     DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, parameter)
		);
	`)
	return err
}

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// SaveRun stores a run manifest and, when present, its full bundle.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record ports.RunRecord) error {
	manifest, err := json.Marshal(record.Manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	var bundleJSON []byte
	if record.Bundle != nil {
		if bundleJSON, err = json.Marshal(record.Bundle); err != nil {
			return fmt.Errorf("marshal bundle: %w", err)
		}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, seed, n_individuals, n_occasions, n_chains, fingerprint, manifest, model_bundle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET manifest = EXCLUDED.manifest, model_bundle = EXCLUDED.model_bundle
	`, record.Manifest.RunID, record.Manifest.Seed, record.Manifest.NIndividuals,
		record.Manifest.NOccasions, record.Manifest.NChains, record.Manifest.Fingerprint,
		manifest, bundleJSON, record.Manifest.CreatedAt.Time())
	if err != nil {
		return err
	}
	if len(record.Summaries) > 0 {
		return r.SaveSummaries(ctx, record.Manifest.RunID, record.Summaries)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (r *RunRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	var row struct {
		Manifest []byte `db:"manifest"`
		Bundle   []byte `db:"model_bundle"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT manifest, model_bundle FROM runs WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	record := &ports.RunRecord{}
	if err := json.Unmarshal(row.Manifest, &record.Manifest); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	if len(row.Bundle) > 0 {
		record.Bundle = &bundle.ModelBundle{}
		if err := json.Unmarshal(row.Bundle, record.Bundle); err != nil {
			return nil, fmt.Errorf("unmarshal bundle: %w", err)
		}
	}
	summaries, err := r.getSummaries(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Summaries = summaries
	return record, nil
}

// ListRuns returns the most recent runs without their bundles.
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows [][]byte
	err := r.db.SelectContext(ctx, &rows, `
		SELECT manifest FROM runs ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	records := make([]ports.RunRecord, 0, len(rows))
	for _, raw := range rows {
		var record ports.RunRecord
		if err := json.Unmarshal(raw, &record.Manifest); err != nil {
			return nil, fmt.Errorf("unmarshal manifest: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveSummaries upserts posterior summaries for a run.
func (r *RunRepositoryImpl) SaveSummaries(ctx context.Context, id core.RunID, summaries []ports.ParameterSummary) error {
	for _, s := range summaries {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO run_summaries (run_id, parameter, mean, std_dev, median, p2_5, p97_5)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (run_id, parameter) DO UPDATE SET
				mean = EXCLUDED.mean, std_dev = EXCLUDED.std_dev, median = EXCLUDED.median,
				p2_5 = EXCLUDED.p2_5, p97_5 = EXCLUDED.p97_5
		`, id, s.Parameter, s.Mean, s.StdDev, s.Median, s.P2_5, s.P97_5)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *RunRepositoryImpl) getSummaries(ctx context.Context, id core.RunID) ([]ports.ParameterSummary, error) {
	var summaries []ports.ParameterSummary
	err := r.db.SelectContext(ctx, &summaries, `
		SELECT parameter, mean, std_dev, median, p2_5, p97_5
		FROM run_summaries WHERE run_id = $1 ORDER BY parameter
	`, id)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
