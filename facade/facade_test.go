package facade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/kaggle"
)

// fakeClient is an in-memory kaggle.Client that counts upstream calls so
// tests can observe cache behavior.
type fakeClient struct {
	competitions []kaggle.Competition
	datasets     []kaggle.Dataset
	files        []kaggle.DatasetFile
	models       []kaggle.Model
	err          error

	listCompetitionCalls int
	listDatasetCalls     int
	viewDatasetCalls     int
	listModelCalls       int
	downloadCalls        int
}

func (f *fakeClient) ListCompetitions(ctx context.Context) ([]kaggle.Competition, error) {
	f.listCompetitionCalls++
	return f.competitions, f.err
}

func (f *fakeClient) CompetitionDownloadFile(ctx context.Context, id, fileName, path string, force, quiet bool) error {
	f.downloadCalls++
	return f.err
}

func (f *fakeClient) CompetitionDownloadFiles(ctx context.Context, id, path string, force, quiet bool) error {
	f.downloadCalls++
	return f.err
}

func (f *fakeClient) ListDatasets(ctx context.Context, q kaggle.DatasetQuery) ([]kaggle.Dataset, error) {
	f.listDatasetCalls++
	return f.datasets, f.err
}

func (f *fakeClient) ViewDataset(ctx context.Context, owner, name string) (kaggle.Dataset, error) {
	f.viewDatasetCalls++
	if f.err != nil {
		return kaggle.Dataset{}, f.err
	}
	if len(f.datasets) == 0 {
		return kaggle.Dataset{}, errors.NewNotFoundError("dataset %s/%s not found", owner, name)
	}
	return f.datasets[0], nil
}

func (f *fakeClient) ListDatasetFiles(ctx context.Context, owner, name string) ([]kaggle.DatasetFile, error) {
	return f.files, f.err
}

func (f *fakeClient) DatasetDownloadFile(ctx context.Context, owner, name, fileName, path string, force, quiet bool) error {
	f.downloadCalls++
	return f.err
}

func (f *fakeClient) DatasetDownloadFiles(ctx context.Context, owner, name, path string, force, quiet, unzip bool) error {
	f.downloadCalls++
	return f.err
}

func (f *fakeClient) ListModels(ctx context.Context, q kaggle.ModelQuery) ([]kaggle.Model, error) {
	f.listModelCalls++
	return f.models, f.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DownloadPath: t.TempDir(),
		Pagination:   config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Cache: config.CacheConfig{
			CompetitionsTTLSeconds: 3600,
			DatasetsTTLSeconds:     21600,
			ModelsTTLSeconds:       21600,
		},
	}
}

func sampleCompetitions() []kaggle.Competition {
	return []kaggle.Competition{
		{
			ID:       "titanic",
			Ref:      "titanic",
			Title:    "Titanic - Machine Learning from Disaster",
			URL:      "https://www.kaggle.com/competitions/titanic",
			Category: kaggle.CategoryGettingStarted,
			Reward:   "Knowledge",
			Deadline: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			Tags:     []string{"beginner", "tabular"},
		},
		{
			ID:       "arc-prize",
			Ref:      "arc-prize",
			Title:    "ARC Prize",
			URL:      "https://www.kaggle.com/competitions/arc-prize",
			Category: kaggle.CategoryFeatured,
			Reward:   "$1,000,000",
			Deadline: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func sampleDatasets() []kaggle.Dataset {
	return []kaggle.Dataset{
		{
			Ref:             "alice/titanic",
			Title:           "Titanic Passengers",
			TotalBytes:      1048576,
			LastUpdated:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			DownloadCount:   5000,
			VoteCount:       120,
			UsabilityRating: 0.88,
			LicenseName:     "CC0-1.0",
			Tags:            []string{"history"},
		},
	}
}

func TestListCompetitionsSuccess(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))

	resp := f.ListCompetitions(context.Background(), CompetitionListRequest{})
	require.False(t, resp.IsError())
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, 2, resp["total_count"])
	assert.Equal(t, 1, resp["page"])
	assert.Equal(t, 20, resp["page_size"])

	comps, ok := resp["competitions"].([]any)
	require.True(t, ok)
	require.Len(t, comps, 2)

	first, ok := comps[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "titanic", first["id"])
	assert.Equal(t, "gettingStarted", first["category"])
	assert.Equal(t, "2030-01-01T00:00:00Z", first["deadline"])
}

func TestListCompetitionsCached(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))
	ctx := context.Background()

	f.ListCompetitions(ctx, CompetitionListRequest{Search: "titanic"})
	f.ListCompetitions(ctx, CompetitionListRequest{Search: "titanic"})
	assert.Equal(t, 1, client.listCompetitionCalls, "identical requests within TTL share one upstream call")

	f.ListCompetitions(ctx, CompetitionListRequest{Search: "arc"})
	assert.Equal(t, 2, client.listCompetitionCalls, "different parameters miss the cache")
}

func TestListCompetitionsCacheExpiry(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.cache.now = func() time.Time { return now }

	f.ListCompetitions(ctx, CompetitionListRequest{})
	now = now.Add(2 * time.Hour)
	f.ListCompetitions(ctx, CompetitionListRequest{})
	assert.Equal(t, 2, client.listCompetitionCalls, "expired entries trigger a refetch")
}

func TestListCompetitionsValidationShortCircuits(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))

	resp := f.ListCompetitions(context.Background(), CompetitionListRequest{Page: -1})
	require.True(t, resp.IsError())
	assert.Equal(t, KindValidation, resp.ErrorKind())
	assert.Equal(t, "Page number must be 1 or greater", resp.ErrorMessage())
	assert.Equal(t, 0, client.listCompetitionCalls, "validation failures never reach upstream")
	assert.Equal(t, 0, f.Cache().Size(), "validation failures never touch the cache")

	resp = f.ListCompetitions(context.Background(), CompetitionListRequest{PageSize: 150})
	require.True(t, resp.IsError())
	assert.Equal(t, "Page size cannot exceed 100", resp.ErrorMessage())
}

func TestListCompetitionsUpstreamErrorClassified(t *testing.T) {
	client := &fakeClient{err: errors.ErrUnauthorized}
	f := New(client, testConfig(t))

	resp := f.ListCompetitions(context.Background(), CompetitionListRequest{})
	require.True(t, resp.IsError())
	assert.Equal(t, KindAuthentication, resp.ErrorKind())
	assert.Equal(t, "Authentication failed. Please check your Kaggle API credentials.", resp.ErrorMessage())
	assert.NotContains(t, resp, "status")
}

func TestUpstreamErrorsNotCached(t *testing.T) {
	client := &fakeClient{err: errors.ErrRateLimited}
	f := New(client, testConfig(t))
	ctx := context.Background()

	resp := f.ListCompetitions(ctx, CompetitionListRequest{})
	require.Equal(t, KindRateLimit, resp.ErrorKind())

	// After the upstream recovers, the next identical request goes through
	client.err = nil
	client.competitions = sampleCompetitions()
	resp = f.ListCompetitions(ctx, CompetitionListRequest{})
	require.False(t, resp.IsError())
	assert.Equal(t, 2, client.listCompetitionCalls)
}

func TestGetCompetitionDetails(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))
	ctx := context.Background()

	resp := f.GetCompetitionDetails(ctx, "arc-prize")
	require.False(t, resp.IsError())
	assert.Equal(t, "ARC Prize", resp["title"])

	timeline, ok := resp["timeline"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2026-11-01T00:00:00Z", timeline["deadline"])

	// URL-form identifiers resolve to the same competition
	resp = f.GetCompetitionDetails(ctx, "https://www.kaggle.com/competitions/arc-prize")
	require.False(t, resp.IsError())
	assert.Equal(t, "ARC Prize", resp["title"])
}

func TestGetCompetitionDetailsNotFound(t *testing.T) {
	client := &fakeClient{competitions: sampleCompetitions()}
	f := New(client, testConfig(t))

	resp := f.GetCompetitionDetails(context.Background(), "no-such-competition")
	require.True(t, resp.IsError())
	assert.Equal(t, KindNotFound, resp.ErrorKind())
	assert.Equal(t, "Resource not found. Please check the competition/dataset ID.", resp.ErrorMessage())
}

func TestGetCompetitionDetailsEmptyID(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))

	resp := f.GetCompetitionDetails(context.Background(), "")
	require.True(t, resp.IsError())
	assert.Equal(t, KindValidation, resp.ErrorKind())
	assert.Equal(t, 0, client.listCompetitionCalls)
}

func TestSearchDatasets(t *testing.T) {
	client := &fakeClient{datasets: sampleDatasets()}
	f := New(client, testConfig(t))
	ctx := context.Background()

	resp := f.SearchDatasets(ctx, DatasetSearchRequest{Search: "titanic"})
	require.False(t, resp.IsError())
	assert.Equal(t, 1, resp["total_count"])

	datasets, ok := resp["datasets"].([]any)
	require.True(t, ok)
	require.Len(t, datasets, 1)

	first, ok := datasets[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice/titanic", first["ref"])
	assert.Equal(t, "1.0 MB", first["size"])
	assert.Equal(t, "https://www.kaggle.com/datasets/alice/titanic", first["url"])

	f.SearchDatasets(ctx, DatasetSearchRequest{Search: "titanic"})
	assert.Equal(t, 1, client.listDatasetCalls)
}

func TestGetDatasetDetails(t *testing.T) {
	client := &fakeClient{
		datasets: sampleDatasets(),
		files: []kaggle.DatasetFile{
			{Name: "train.csv", TotalBytes: 61440, CreationDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
			{Name: "test.csv", TotalBytes: 30720},
		},
	}
	f := New(client, testConfig(t))

	resp := f.GetDatasetDetails(context.Background(), "alice/titanic")
	require.False(t, resp.IsError())
	assert.Equal(t, "Titanic Passengers", resp["title"])

	files, ok := resp["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 2)

	first, ok := files[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "train.csv", first["name"])
	assert.Equal(t, "60.0 KB", first["size"])
}

func TestGetDatasetDetailsBadRef(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))

	resp := f.GetDatasetDetails(context.Background(), "titanic")
	require.True(t, resp.IsError())
	assert.Equal(t, KindValidation, resp.ErrorKind())
	assert.Equal(t, "Dataset reference must be in format 'username/dataset-name'", resp.ErrorMessage())
	assert.Equal(t, 0, client.viewDatasetCalls)
}

func TestListModels(t *testing.T) {
	client := &fakeClient{models: []kaggle.Model{
		{Ref: "google/gemma", Title: "Gemma", Author: "Google", PublishTime: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
	}}
	f := New(client, testConfig(t))
	ctx := context.Background()

	resp := f.ListModels(ctx, ModelListRequest{})
	require.False(t, resp.IsError())
	assert.Equal(t, 1, resp["total_count"])

	models, ok := resp["models"].([]any)
	require.True(t, ok)
	first, ok := models[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://www.kaggle.com/models/google/gemma", first["url"])

	f.ListModels(ctx, ModelListRequest{})
	assert.Equal(t, 1, client.listModelCalls)
}

func TestDownloadsBypassCache(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))
	ctx := context.Background()

	req := CompetitionDownloadRequest{ID: "titanic"}
	resp := f.DownloadCompetitionFiles(ctx, req)
	require.False(t, resp.IsError())
	resp = f.DownloadCompetitionFiles(ctx, req)
	require.False(t, resp.IsError())
	assert.Equal(t, 2, client.downloadCalls, "every download triggers a fresh transfer")

	dreq := DatasetDownloadRequest{Ref: "alice/titanic", FileName: "train.csv"}
	f.DownloadDataset(ctx, dreq)
	f.DownloadDataset(ctx, dreq)
	assert.Equal(t, 4, client.downloadCalls)
}

func TestDownloadCompetitionFilesPayload(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))

	resp := f.DownloadCompetitionFiles(context.Background(), CompetitionDownloadRequest{
		ID:       "titanic",
		FileName: "train.csv",
	})
	require.False(t, resp.IsError())
	assert.Equal(t, "titanic", resp["competition_id"])
	assert.Equal(t, 1, resp["total_files"])

	files, ok := resp["downloaded_files"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"train.csv"}, files)
}

func TestDownloadDatasetBadRef(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))

	resp := f.DownloadDataset(context.Background(), DatasetDownloadRequest{Ref: "a/b/c"})
	require.True(t, resp.IsError())
	assert.Equal(t, KindValidation, resp.ErrorKind())
	assert.Equal(t, 0, client.downloadCalls)
}

func TestOperationsNeverPanic(t *testing.T) {
	// A nil client makes every upstream call panic; the guard must convert
	// that into an error envelope instead of crashing the server.
	f := New(nil, testConfig(t))

	resp := f.ListCompetitions(context.Background(), CompetitionListRequest{})
	require.True(t, resp.IsError())
	assert.Equal(t, KindUnknown, resp.ErrorKind())
}
