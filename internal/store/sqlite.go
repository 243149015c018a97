package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS datasets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	uploaded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS dataset_points (
	dataset_id TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
	bank       TEXT NOT NULL,
	metric     TEXT NOT NULL,
	quarter    TEXT NOT NULL,
	value      REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_datasets_name ON datasets(name);
CREATE INDEX IF NOT EXISTS idx_dataset_points_dataset_id ON dataset_points(dataset_id);
CREATE INDEX IF NOT EXISTS idx_dataset_points_metric ON dataset_points(dataset_id, metric);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *model.Dataset) error {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if ds.UploadedAt.IsZero() {
		ds.UploadedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, name, uploaded_at) VALUES (?, ?, ?)`,
		ds.ID, ds.Name, ds.UploadedAt,
	); err != nil {
		return eris.Wrap(err, "sqlite: insert dataset")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dataset_points (dataset_id, bank, metric, quarter, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare points insert")
	}
	defer stmt.Close()

	for _, r := range ds.Rows {
		if _, err := stmt.ExecContext(ctx, ds.ID, r.Bank, r.Metric, r.Quarter, r.Value); err != nil {
			return eris.Wrap(err, "sqlite: insert point")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) GetDataset(ctx context.Context, id string) (*model.Dataset, error) {
	return s.loadDataset(ctx, `SELECT id, name, uploaded_at FROM datasets WHERE id = ?`, id)
}

func (s *SQLiteStore) FindDatasetByName(ctx context.Context, name string) (*model.Dataset, error) {
	return s.loadDataset(ctx,
		`SELECT id, name, uploaded_at FROM datasets WHERE name = ? ORDER BY uploaded_at DESC LIMIT 1`, name)
}

func (s *SQLiteStore) loadDataset(ctx context.Context, query string, arg any) (*model.Dataset, error) {
	var ds model.Dataset
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&ds.ID, &ds.Name, &ds.UploadedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDatasetNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load dataset")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT bank, metric, quarter, value FROM dataset_points
		 WHERE dataset_id = ? ORDER BY bank, metric, quarter`, ds.ID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load points")
	}
	defer rows.Close()

	for rows.Next() {
		var r model.DatasetRow
		if err := rows.Scan(&r.Bank, &r.Metric, &r.Quarter, &r.Value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan point")
		}
		ds.Rows = append(ds.Rows, r)
	}
	return &ds, eris.Wrap(rows.Err(), "sqlite: iterate points")
}

func (s *SQLiteStore) ListDatasets(ctx context.Context) ([]model.Dataset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, uploaded_at FROM datasets ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list datasets")
	}
	defer rows.Close()

	var out []model.Dataset
	for rows.Next() {
		var ds model.Dataset
		if err := rows.Scan(&ds.ID, &ds.Name, &ds.UploadedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dataset")
		}
		out = append(out, ds)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate datasets")
}

func (s *SQLiteStore) DeleteDataset(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return eris.Wrap(err, "sqlite: delete dataset")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDatasetNotFound
	}
	return nil
}

func (s *SQLiteStore) Points(ctx context.Context, datasetID, metric string, banks []string) ([]model.SeriesPoint, error) {
	query := `SELECT bank, metric, quarter, value FROM dataset_points
		WHERE dataset_id = ? AND metric = ?`
	args := []any{datasetID, metric}
	if len(banks) > 0 {
		query += ` AND bank IN (?` + strings.Repeat(",?", len(banks)-1) + `)`
		for _, b := range banks {
			args = append(args, b)
		}
	}
	query += ` ORDER BY bank, quarter`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query points")
	}
	defer rows.Close()

	var out []model.SeriesPoint
	for rows.Next() {
		var p model.SeriesPoint
		if err := rows.Scan(&p.Bank, &p.Metric, &p.Quarter, &p.Value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan series point")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate series points")
}
