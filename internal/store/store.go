// Package store persists uploaded peer-comparison datasets. Two backends
// are provided: SQLite for single-machine use and PostgreSQL for shared
// deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/bankiq/bankiq-cli/internal/model"
)

// ErrDatasetNotFound is returned when a dataset lookup matches nothing.
var ErrDatasetNotFound = eris.New("store: dataset not found")

// Store defines the persistence interface for uploaded datasets.
type Store interface {
	// SaveDataset persists a dataset and its rows. A missing ID is
	// assigned; UploadedAt defaults to now.
	SaveDataset(ctx context.Context, ds *model.Dataset) error

	// GetDataset returns a dataset with its rows, or ErrDatasetNotFound.
	GetDataset(ctx context.Context, id string) (*model.Dataset, error)

	// FindDatasetByName returns the most recently uploaded dataset with
	// the given name, with rows, or ErrDatasetNotFound.
	FindDatasetByName(ctx context.Context, name string) (*model.Dataset, error)

	// ListDatasets returns all datasets newest first, without rows.
	ListDatasets(ctx context.Context) ([]model.Dataset, error)

	// DeleteDataset removes a dataset and its rows.
	DeleteDataset(ctx context.Context, id string) error

	// Points returns the observations for one metric of a dataset, sorted
	// by bank then quarter. An empty banks slice means all banks.
	Points(ctx context.Context, datasetID, metric string, banks []string) ([]model.SeriesPoint, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
