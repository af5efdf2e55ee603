package facade

import (
	"context"

	"github.com/quantfold/kagglemcp/kaggle"
)

// ModelListRequest parameterizes ListModels.
type ModelListRequest struct {
	Search   string
	SortBy   string
	Owner    string
	Page     int
	PageSize int
}

// modelSummary flattens one model record into a JSON-safe map.
func modelSummary(m kaggle.Model) map[string]any {
	return map[string]any{
		"ref":          Normalize(m.Ref),
		"title":        Normalize(m.Title),
		"subtitle":     Normalize(m.Subtitle),
		"author":       Normalize(m.Author),
		"slug":         Normalize(m.Slug),
		"is_private":   Normalize(m.IsPrivate),
		"description":  Normalize(m.Description),
		"publish_time": Normalize(m.PublishTime),
		"url":          "https://www.kaggle.com/models/" + m.Ref,
	}
}

// ListModels lists models, serving repeated identical requests from the
// cache for the models TTL window.
func (f *Facade) ListModels(ctx context.Context, req ModelListRequest) Response {
	page := f.page(req.Page)
	pageSize := f.pageSize(req.PageSize)
	if res := ValidatePagination(page, pageSize, f.cfg.Pagination.MaxPageSize); !res.Valid {
		return Failure(KindValidation, res.Message)
	}

	return f.guard("list_models", func() (map[string]any, error) {
		key := CacheKey("list_models", map[string]any{
			"search":    req.Search,
			"sort_by":   req.SortBy,
			"owner":     req.Owner,
			"page":      page,
			"page_size": pageSize,
		})

		value, err := f.cache.GetOrFill(key, f.cfg.ModelsTTL(), func() (any, error) {
			models, err := f.client.ListModels(ctx, kaggle.ModelQuery{
				Search:   req.Search,
				SortBy:   req.SortBy,
				Owner:    req.Owner,
				Page:     page,
				PageSize: pageSize,
			})
			if err != nil {
				return nil, err
			}

			summaries := make([]any, len(models))
			for i, m := range models {
				summaries[i] = modelSummary(m)
			}
			return map[string]any{
				"models":      summaries,
				"total_count": len(models),
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
