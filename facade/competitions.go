package facade

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/kaggle"
)

// CompetitionListRequest parameterizes ListCompetitions.
type CompetitionListRequest struct {
	Search   string
	Category string
	SortBy   string
	Page     int
	PageSize int
}

// CompetitionDownloadRequest parameterizes DownloadCompetitionFiles.
type CompetitionDownloadRequest struct {
	ID       string
	Path     string
	FileName string
	Force    bool
	Quiet    bool
}

// competitionSummary flattens one competition record into a JSON-safe map.
func competitionSummary(c kaggle.Competition) map[string]any {
	return map[string]any{
		"id":                Normalize(c.ID),
		"title":             Normalize(c.Title),
		"url":               Normalize(c.URL),
		"description":       Normalize(c.Description),
		"category":          Normalize(c.Category),
		"reward":            Normalize(c.Reward),
		"deadline":          Normalize(c.Deadline),
		"max_team_size":     Normalize(c.MaxTeamSize),
		"evaluation_metric": Normalize(c.EvaluationMetric),
		"total_teams":       Normalize(c.TotalTeams),
		"user_has_entered":  Normalize(c.UserHasEntered),
	}
}

// ListCompetitions lists competitions, serving repeated identical requests
// from the cache for the competitions TTL window.
func (f *Facade) ListCompetitions(ctx context.Context, req CompetitionListRequest) Response {
	page := f.page(req.Page)
	pageSize := f.pageSize(req.PageSize)
	if res := ValidatePagination(page, pageSize, f.cfg.Pagination.MaxPageSize); !res.Valid {
		return Failure(KindValidation, res.Message)
	}

	return f.guard("list_competitions", func() (map[string]any, error) {
		key := CacheKey("list_competitions", map[string]any{
			"search":    req.Search,
			"category":  req.Category,
			"sort_by":   req.SortBy,
			"page":      page,
			"page_size": pageSize,
		})

		value, err := f.cache.GetOrFill(key, f.cfg.CompetitionsTTL(), func() (any, error) {
			comps, err := f.client.ListCompetitions(ctx)
			if err != nil {
				return nil, err
			}

			summaries := make([]any, len(comps))
			for i, c := range comps {
				summaries[i] = competitionSummary(c)
			}
			return map[string]any{
				"competitions": summaries,
				"total_count":  len(comps),
				"page":         page,
				"page_size":    pageSize,
			}, nil
		})
		if err != nil {
			return nil, err
		}
		return value.(map[string]any), nil
	})
}

// GetCompetitionDetails returns one competition, matched by id, ref, or URL
// suffix.
func (f *Facade) GetCompetitionDetails(ctx context.Context, competitionID string) Response {
	if competitionID == "" {
		return Failure(KindValidation, "Competition ID cannot be empty")
	}

	return f.guard("get_competition_details", func() (map[string]any, error) {
		key := CacheKey("get_competition_details", map[string]any{
			"competition_id": competitionID,
		})

		value, err := f.cache.GetOrFill(key, f.cfg.CompetitionsTTL(), func() (any, error) {
			comps, err := f.client.ListCompetitions(ctx)
			if err != nil {
				return nil, err
			}

			match, ok := findCompetition(comps, competitionID)
			if !ok {
				return nil, errors.NewNotFoundError("competition %q not found", competitionID)
			}

			detail := competitionSummary(match)
			detail["tags"] = Normalize(match.Tags)
			detail["timeline"] = map[string]any{
				"start_date":          Normalize(match.EnabledDate),
				"deadline":            Normalize(match.Deadline),
				"evaluation_end_date": Normalize(match.EvaluationEndDate),
			}
			return detail, nil
		})
		if err != nil {
			return nil, err
		}
		return value.(map[string]any), nil
	})
}

func findCompetition(comps []kaggle.Competition, id string) (kaggle.Competition, bool) {
	for _, c := range comps {
		if c.ID == id || c.Ref == id || c.URL == id || strings.HasSuffix(c.URL, "/"+id) {
			return c, true
		}
	}
	return kaggle.Competition{}, false
}

// DownloadCompetitionFiles fetches competition data to disk. Downloads
// always bypass the cache; every invocation triggers a fresh transfer.
func (f *Facade) DownloadCompetitionFiles(ctx context.Context, req CompetitionDownloadRequest) Response {
	if req.ID == "" {
		return Failure(KindValidation, "Competition ID cannot be empty")
	}

	downloadPath := f.cfg.ResolveDownloadPath(req.Path)

	return f.guard("download_competition_files", func() (map[string]any, error) {
		if _, err := config.EnsureDownloadDir(downloadPath); err != nil {
			return nil, err
		}

		var files []string
		if req.FileName != "" {
			if err := f.client.CompetitionDownloadFile(ctx, req.ID, req.FileName, downloadPath, req.Force, req.Quiet); err != nil {
				return nil, err
			}
			files = []string{req.FileName}
		} else {
			if err := f.client.CompetitionDownloadFiles(ctx, req.ID, downloadPath, req.Force, req.Quiet); err != nil {
				return nil, err
			}
			files = listDirFiles(filepath.Join(downloadPath, req.ID))
		}

		return map[string]any{
			"competition_id":   req.ID,
			"download_path":    downloadPath,
			"downloaded_files": Normalize(files),
			"total_files":      len(files),
		}, nil
	})
}

// listDirFiles returns the names of regular files in dir; a missing
// directory yields an empty list.
func listDirFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files
}
