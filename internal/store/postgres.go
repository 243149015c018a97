package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/bankiq/bankiq-cli/internal/db"
	"github.com/bankiq/bankiq-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS dataset_points (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	bank       TEXT NOT NULL,
	metric     TEXT NOT NULL,
	quarter    TEXT NOT NULL,
	value      DOUBLE PRECISION NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);
CREATE INDEX IF NOT EXISTS idx_dataset_points_dataset_id ON dataset_points(dataset_id);
CREATE INDEX IF NOT EXISTS idx_dataset_points_metric ON dataset_points(dataset_id, metric);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if ds.UploadedAt.IsZero() {
		ds.UploadedAt = time.Now().UTC()
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO datasets (id, name, uploaded_at) VALUES ($1, $2, $3)`,
		ds.ID, ds.Name, ds.UploadedAt,
	); err != nil {
		return eris.Wrap(err, "postgres: insert dataset")
	}

	rows := make([][]any, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		rows = append(rows, []any{ds.ID, r.Bank, r.Metric, r.Quarter, r.Value})
	}
	if _, err := db.CopyFrom(ctx, s.pool, "dataset_points",
		[]string{"dataset_id", "bank", "metric", "quarter", "value"}, rows); err != nil {
		return eris.Wrap(err, "postgres: insert points")
	}
	return nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	return s.loadDataset(ctx,
		`SELECT id, name, uploaded_at FROM datasets WHERE id = $1`, id)
}

func (s *PostgresStore) FindDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	return s.loadDataset(ctx,
		`SELECT id, name, uploaded_at FROM datasets WHERE name = $1 ORDER BY uploaded_at DESC LIMIT 1`, name)
}

func (s *PostgresStore) loadDataset(ctx context.Context, query string, arg any) (*model.Dataset, error) {
	var ds model.Dataset
	err := s.pool.QueryRow(ctx, query, arg).Scan(&ds.ID, &ds.Name, &ds.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load dataset")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT bank, metric, quarter, value FROM dataset_points
		 WHERE dataset_id = $1 ORDER BY bank, metric, quarter`, ds.ID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load points")
	}
	defer rows.Close()

	for rows.Next() {
		var r model.DatasetRow
		if err := rows.Scan(&r.Bank, &r.Metric, &r.Quarter, &r.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan point")
		}
		ds.Rows = append(ds.Rows, r)
	}
	return &ds, eris.Wrap(rows.Err(), "postgres: iterate points")
}

func (s *PostgresStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, uploaded_at FROM datasets ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list datasets")
	}
	defer rows.Close()

	var out []model.Dataset
	for rows.Next() {
		var ds model.Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan dataset")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate datasets")
}

func (s *PostgresStore) DeleteDataset(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "postgres: delete dataset")
	}
	if tag.RowsAffected() == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

func (s *PostgresStore) Points(ctx context.Context, datasetID, metric string, banks []string) ([]model.SeriesPoint, error) {
	query := `SELECT bank, metric, quarter, value FROM dataset_points
		WHERE dataset_id = $1 AND metric = $2`
	args := []any{datasetID, metric}
	if len(banks) > 0 {
		query += ` AND bank = ANY($3)`
		args = append(args, banks)
	}
	query += ` ORDER BY bank, quarter`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query points")
	}
	defer rows.Close()

	var out []model.SeriesPoint
	for rows.Next() {
		var p model.SeriesPoint
		if err := rows.Scan(&p.Bank, &p.Metric, &p.Quarter, &p.Value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan series point")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate series points")
}
