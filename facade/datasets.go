package facade

import (
	"context"
	"path/filepath"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/kaggle"
)

// DatasetSearchRequest parameterizes SearchDatasets.
type DatasetSearchRequest struct {
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

// DatasetDownloadRequest parameterizes DownloadDataset.
type DatasetDownloadRequest struct {
	Ref      string
	Path     string
	FileName string
	Force    bool
	Quiet    bool
	Unzip    bool
}

// datasetSummary flattens one dataset record into a JSON-safe map.
func datasetSummary(d kaggle.Dataset) map[string]any {
	return map[string]any{
		"ref":              Normalize(d.Ref),
		"title":            Normalize(d.Title),
		"size":             FormatFileSize(d.TotalBytes),
		"total_bytes":      Normalize(d.TotalBytes),
		"last_updated":     Normalize(d.LastUpdated),
		"download_count":   Normalize(d.DownloadCount),
		"vote_count":       Normalize(d.VoteCount),
		"usability_rating": Normalize(d.UsabilityRating),
		"license_name":     Normalize(d.LicenseName),
		"tags":             Normalize(d.Tags),
		"url":              "https://www.kaggle.com/datasets/" + d.Ref,
	}
}

// SearchDatasets searches datasets, serving repeated identical requests from
// the cache for the datasets TTL window.
func (f *Facade) SearchDatasets(ctx context.Context, req DatasetSearchRequest) Response {
	page := f.page(req.Page)
	pageSize := f.pageSize(req.PageSize)
	if res := ValidatePagination(page, pageSize, f.cfg.Pagination.MaxPageSize); !res.Valid {
		return Failure(KindValidation, res.Message)
	}

	return f.guard("search_datasets", func() (map[string]any, error) {
		key := CacheKey("search_datasets", map[string]any{
			"search":    req.Search,
			"sort_by":   req.SortBy,
			"size":      req.Size,
			"file_type": req.FileType,
			"license":   req.License,
			"tag_ids":   req.TagIDs,
			"user":      req.User,
			"page":      page,
			"page_size": pageSize,
		})

		value, err := f.cache.GetOrFill(key, f.cfg.DatasetsTTL(), func() (any, error) {
			datasets, err := f.client.ListDatasets(ctx, kaggle.DatasetQuery{
				Search:   req.Search,
				SortBy:   req.SortBy,
				Size:     req.Size,
				FileType: req.FileType,
				License:  req.License,
				TagIDs:   req.TagIDs,
				User:     req.User,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return nil, err
			}

			summaries := make([]any, len(datasets))
			for i, d := range datasets {
				summaries[i] = datasetSummary(d)
			}
			return map[string]any{
				"datasets":    summaries,
				"total_count": len(datasets),
				"page":        page,
				"page_size":   pageSize,
			}, nil
		})
		if err != nil {
			return nil, err
		}
		return value.(map[string]any), nil
	})
}

// GetDatasetDetails returns one dataset's metadata plus its file listing.
func (f *Facade) GetDatasetDetails(ctx context.Context, datasetRef string) Response {
	owner, name, res := ValidateRef(datasetRef)
	if !res.Valid {
		return Failure(KindValidation, res.Message)
	}

	return f.guard("get_dataset_details", func() (map[string]any, error) {
		key := CacheKey("get_dataset_details", map[string]any{
			"dataset_ref": datasetRef,
		})

		value, err := f.cache.GetOrFill(key, f.cfg.DatasetsTTL(), func() (any, error) {
			dataset, err := f.client.ViewDataset(ctx, owner, name)
			if err != nil {
				return nil, err
			}
			files, err := f.client.ListDatasetFiles(ctx, owner, name)
			if err != nil {
				return nil, err
			}

			fileEntries := make([]any, len(files))
			for i, file := range files {
				fileEntries[i] = map[string]any{
					"name":          Normalize(file.Name),
					"size":          FormatFileSize(file.TotalBytes),
					"total_bytes":   Normalize(file.TotalBytes),
					"creation_date": Normalize(file.CreationDate),
				}
			}

			detail := datasetSummary(dataset)
			detail["description"] = Normalize(dataset.Description)
			detail["files"] = fileEntries
			return detail, nil
		})
		if err != nil {
			return nil, err
		}
		return value.(map[string]any), nil
	})
}

// DownloadDataset fetches dataset files to disk. Downloads always bypass the
// cache; every invocation triggers a fresh transfer.
func (f *Facade) DownloadDataset(ctx context.Context, req DatasetDownloadRequest) Response {
	owner, name, res := ValidateRef(req.Ref)
	if !res.Valid {
		return Failure(KindValidation, res.Message)
	}

	downloadPath := f.cfg.ResolveDownloadPath(req.Path)

	return f.guard("download_dataset", func() (map[string]any, error) {
		if _, err := config.EnsureDownloadDir(downloadPath); err != nil {
			return nil, err
		}

		var files []string
		if req.FileName != "" {
			if err := f.client.DatasetDownloadFile(ctx, owner, name, req.FileName, downloadPath, req.Force, req.Quiet); err != nil {
				return nil, err
			}
			files = []string{req.FileName}
		} else {
			if err := f.client.DatasetDownloadFiles(ctx, owner, name, downloadPath, req.Force, req.Quiet, req.Unzip); err != nil {
				return nil, err
			}
			files = listDirFiles(filepath.Join(downloadPath, name))
		}

		return map[string]any{
			"dataset_ref":      req.Ref,
			"download_path":    downloadPath,
			"downloaded_files": Normalize(files),
			"total_files":      len(files),
		}, nil
	})
}
