package kaggle

import (
	"context"
)

// DatasetQuery filters a dataset search. Zero values mean "no filter".
type DatasetQuery struct {
	Search   string
	SortBy   string
	Size     string
	FileType string
	License  string
	TagIDs   string
	User     string
	Page     int
	PageSize int
}

// ModelQuery filters a model listing. Zero values mean "no filter".
type ModelQuery struct {
	Search   string
	SortBy   string
	Owner    string
	Page     int
	PageSize int
}

// Client is the platform client capability consumed by the facade. The
// production implementation is APIClient; tests substitute fakes.
type Client interface {
	// ListCompetitions returns competitions visible to the caller.
	ListCompetitions(ctx context.Context) ([]Competition, error)

	// CompetitionDownloadFile fetches one competition file into path.
	CompetitionDownloadFile(ctx context.Context, id, fileName, path string, force, quiet bool) error

	// CompetitionDownloadFiles fetches the full competition bundle into path.
	CompetitionDownloadFiles(ctx context.Context, id, path string, force, quiet bool) error

	// ListDatasets searches datasets with the given filters.
	ListDatasets(ctx context.Context, q DatasetQuery) ([]Dataset, error)

	// ViewDataset returns the metadata for one dataset.
	ViewDataset(ctx context.Context, owner, name string) (Dataset, error)

	// ListDatasetFiles returns the file listing for one dataset.
	ListDatasetFiles(ctx context.Context, owner, name string) ([]DatasetFile, error)

	// DatasetDownloadFile fetches one dataset file into path.
	DatasetDownloadFile(ctx context.Context, owner, name, fileName, path string, force, quiet bool) error

	// DatasetDownloadFiles fetches the full dataset archive into path,
	// optionally extracting it.
	DatasetDownloadFiles(ctx context.Context, owner, name, path string, force, quiet, unzip bool) error

	// ListModels lists models with the given filters.
	ListModels(ctx context.Context, q ModelQuery) ([]Model, error)
}
