package kaggle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantfold/kagglemcp/config"
	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/internal/httpclient"
	"github.com/quantfold/kagglemcp/logger"
)

const defaultBaseURL = "https://www.kaggle.com/api/v1"

// Doer abstracts the HTTP client so tests can substitute one.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIClient implements Client against the Kaggle public API.
type APIClient struct {
	baseURL  string
	username string
	key      string
	http     Doer
	limiter  *rate.Limiter
}

// NewAPIClient builds a client using the configured credentials, timeout,
// and request pacing.
func NewAPIClient(cfg *config.Config) *APIClient {
	rpm := cfg.HTTP.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &APIClient{
		baseURL:  defaultBaseURL,
		username: cfg.Username,
		key:      cfg.Key,
		http:     httpclient.New(cfg.HTTPTimeout()),
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
	}
}

// apiTime parses the timestamp layouts the Kaggle API emits.
type apiTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *apiTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Newf("unrecognized timestamp %q", s)
}

type wireTag struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
}

func tagNames(tags []wireTag) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.Name != "" {
			names = append(names, tag.Name)
		} else {
			names = append(names, tag.Ref)
		}
	}
	return names
}

type wireCompetition struct {
	ID                json.Number `json:"id"`
	Ref               string      `json:"ref"`
	Title             string      `json:"title"`
	URL               string      `json:"url"`
	Description       string      `json:"description"`
	Category          string      `json:"category"`
	Reward            string      `json:"reward"`
	Deadline          apiTime     `json:"deadline"`
	EnabledDate       apiTime     `json:"enabledDate"`
	EvaluationEndDate apiTime     `json:"evaluationEndDate"`
	MaxTeamSize       int         `json:"maxTeamSize"`
	EvaluationMetric  string      `json:"evaluationMetric"`
	TotalTeams        int         `json:"totalTeams"`
	UserHasEntered    bool        `json:"userHasEntered"`
	Tags              []wireTag   `json:"tags"`
}

func (w wireCompetition) record() Competition {
	return Competition{
		ID:                w.ID.String(),
		Ref:               w.Ref,
		Title:             w.Title,
		URL:               w.URL,
		Description:       w.Description,
		Category:          ParseCategory(w.Category),
		Reward:            w.Reward,
		Deadline:          w.Deadline.Time,
		EnabledDate:       w.EnabledDate.Time,
		EvaluationEndDate: w.EvaluationEndDate.Time,
		MaxTeamSize:       w.MaxTeamSize,
		EvaluationMetric:  w.EvaluationMetric,
		TotalTeams:        w.TotalTeams,
		UserHasEntered:    w.UserHasEntered,
		Tags:              tagNames(w.Tags),
	}
}

type wireDataset struct {
	Ref             string    `json:"ref"`
	Title           string    `json:"title"`
	Subtitle        string    `json:"subtitle"`
	Description     string    `json:"description"`
	TotalBytes      int64     `json:"totalBytes"`
	LastUpdated     apiTime   `json:"lastUpdated"`
	DownloadCount   int       `json:"downloadCount"`
	VoteCount       int       `json:"voteCount"`
	UsabilityRating float64   `json:"usabilityRating"`
	LicenseName     string    `json:"licenseName"`
	Tags            []wireTag `json:"tags"`
}

func (w wireDataset) record() Dataset {
	return Dataset{
		Ref:             w.Ref,
		Title:           w.Title,
		Subtitle:        w.Subtitle,
		Description:     w.Description,
		TotalBytes:      w.TotalBytes,
		LastUpdated:     w.LastUpdated.Time,
		DownloadCount:   w.DownloadCount,
		VoteCount:       w.VoteCount,
		UsabilityRating: w.UsabilityRating,
		LicenseName:     w.LicenseName,
		Tags:            tagNames(w.Tags),
	}
}

type wireDatasetFile struct {
	Name         string  `json:"name"`
	TotalBytes   int64   `json:"totalBytes"`
	CreationDate apiTime `json:"creationDate"`
}

type wireModel struct {
	Ref         string  `json:"ref"`
	Title       string  `json:"title"`
	Subtitle    string  `json:"subtitle"`
	Author      string  `json:"author"`
	Slug        string  `json:"slug"`
	IsPrivate   bool    `json:"isPrivate"`
	Description string  `json:"description"`
	PublishTime apiTime `json:"publishTime"`
}

func (w wireModel) record() Model {
	return Model{
		Ref:         w.Ref,
		Title:       w.Title,
		Subtitle:    w.Subtitle,
		Author:      w.Author,
		Slug:        w.Slug,
		IsPrivate:   w.IsPrivate,
		Description: w.Description,
		PublishTime: w.PublishTime.Time,
	}
}

// get issues an authenticated GET and decodes the JSON body into out.
func (c *APIClient) get(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "failed to decode response for %s", path)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limiter interrupted")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", path)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", path)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// statusError converts a non-200 response into a sentinel-tagged error whose
// text carries the HTTP status, so both errors.Is checks and textual
// classification work downstream.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	if len(body) > 0 {
		msg += ": " + strings.TrimSpace(string(body))
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = errors.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = errors.ErrForbidden
	case http.StatusNotFound:
		sentinel = errors.ErrNotFound
	case http.StatusTooManyRequests:
		sentinel = errors.ErrRateLimited
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		sentinel = errors.ErrTimeout
	default:
		return errors.Newf("kaggle API: %s", msg)
	}
	return errors.Wrapf(sentinel, "kaggle API: %s", msg)
}

// ListCompetitions returns competitions visible to the caller.
func (c *APIClient) ListCompetitions(ctx context.Context) ([]Competition, error) {
	var wire []wireCompetition
	if err := c.get(ctx, "/competitions/list", nil, &wire); err != nil {
		return nil, err
	}
	comps := make([]Competition, len(wire))
	for i, w := range wire {
		comps[i] = w.record()
	}
	return comps, nil
}

// ListDatasets searches datasets with the given filters.
func (c *APIClient) ListDatasets(ctx context.Context, q DatasetQuery) ([]Dataset, error) {
	query := url.Values{}
	setIfNotEmpty(query, "search", q.Search)
	setIfNotEmpty(query, "sortBy", q.SortBy)
	setIfNotEmpty(query, "size", q.Size)
	setIfNotEmpty(query, "filetype", q.FileType)
	setIfNotEmpty(query, "license", q.License)
	setIfNotEmpty(query, "tagids", q.TagIDs)
	setIfNotEmpty(query, "user", q.User)
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}

	var wire []wireDataset
	if err := c.get(ctx, "/datasets/list", query, &wire); err != nil {
		return nil, err
	}
	datasets := make([]Dataset, len(wire))
	for i, w := range wire {
		datasets[i] = w.record()
	}
	return datasets, nil
}

// ViewDataset returns the metadata for one dataset.
func (c *APIClient) ViewDataset(ctx context.Context, owner, name string) (Dataset, error) {
	var wire wireDataset
	path := fmt.Sprintf("/datasets/view/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.get(ctx, path, nil, &wire); err != nil {
		return Dataset{}, err
	}
	return wire.record(), nil
}

// ListDatasetFiles returns the file listing for one dataset.
func (c *APIClient) ListDatasetFiles(ctx context.Context, owner, name string) ([]DatasetFile, error) {
	var wire struct {
		DatasetFiles []wireDatasetFile `json:"datasetFiles"`
	}
	path := fmt.Sprintf("/datasets/list/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.get(ctx, path, nil, &wire); err != nil {
		return nil, err
	}
	files := make([]DatasetFile, len(wire.DatasetFiles))
	for i, w := range wire.DatasetFiles {
		files[i] = DatasetFile{Name: w.Name, TotalBytes: w.TotalBytes, CreationDate: w.CreationDate.Time}
	}
	return files, nil
}

// ListModels lists models with the given filters.
func (c *APIClient) ListModels(ctx context.Context, q ModelQuery) ([]Model, error) {
	query := url.Values{}
	setIfNotEmpty(query, "search", q.Search)
	setIfNotEmpty(query, "sortBy", q.SortBy)
	setIfNotEmpty(query, "owner", q.Owner)
	if q.Page > 1 {
		query.Set("pageToken", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	var wire struct {
		Models []wireModel `json:"models"`
	}
	if err := c.get(ctx, "/models/list", query, &wire); err != nil {
		return nil, err
	}
	models := make([]Model, len(wire.Models))
	for i, w := range wire.Models {
		models[i] = w.record()
	}
	return models, nil
}

// CompetitionDownloadFile fetches one competition file into path.
func (c *APIClient) CompetitionDownloadFile(ctx context.Context, id, fileName, path string, force, quiet bool) error {
	urlPath := fmt.Sprintf("/competitions/data/download/%s/%s", url.PathEscape(id), url.PathEscape(fileName))
	return c.downloadTo(ctx, urlPath, filepath.Join(path, fileName), force, quiet)
}

// CompetitionDownloadFiles fetches the full competition bundle into path.
func (c *APIClient) CompetitionDownloadFiles(ctx context.Context, id, path string, force, quiet bool) error {
	urlPath := fmt.Sprintf("/competitions/data/download-all/%s", url.PathEscape(id))
	archive := filepath.Join(path, id+".zip")
	if err := c.downloadTo(ctx, urlPath, archive, force, quiet); err != nil {
		return err
	}
	return extractZip(archive, filepath.Join(path, id))
}

// DatasetDownloadFile fetches one dataset file into path.
func (c *APIClient) DatasetDownloadFile(ctx context.Context, owner, name, fileName, path string, force, quiet bool) error {
	urlPath := fmt.Sprintf("/datasets/download/%s/%s/%s",
		url.PathEscape(owner), url.PathEscape(name), url.PathEscape(fileName))
	return c.downloadTo(ctx, urlPath, filepath.Join(path, fileName), force, quiet)
}

// DatasetDownloadFiles fetches the full dataset archive into path, optionally
// extracting it.
func (c *APIClient) DatasetDownloadFiles(ctx context.Context, owner, name, path string, force, quiet, unzip bool) error {
	urlPath := fmt.Sprintf("/datasets/download/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	archive := filepath.Join(path, name+".zip")
	if err := c.downloadTo(ctx, urlPath, archive, force, quiet); err != nil {
		return err
	}
	if !unzip {
		return nil
	}
	return extractZip(archive, filepath.Join(path, name))
}

// downloadTo streams a GET response into dest. An existing file is kept
// unless force is set.
func (c *APIClient) downloadTo(ctx context.Context, urlPath, dest string, force, quiet bool) error {
	if !force {
		if _, err := os.Stat(dest); err == nil {
			if !quiet {
				logger.Infow("file already downloaded, skipping",
					logger.FieldFile, dest)
			}
			return nil
		}
	}

	resp, err := c.do(ctx, urlPath, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", dest)
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", dest)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to write %s", dest)
	}
	if !quiet {
		logger.Infow("downloaded file",
			logger.FieldFile, dest,
			logger.FieldSize, written)
	}
	return nil
}

// extractZip unpacks archive into destDir, refusing entries that escape it.
func extractZip(archive, destDir string) error {
	reader, err := zip.OpenReader(archive)
	if err != nil {
		return errors.Wrapf(err, "failed to open archive %s", archive)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", destDir)
	}

	for _, entry := range reader.File {
		target := filepath.Join(destDir, entry.Name)
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return errors.Newf("archive entry %q escapes extraction directory", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return errors.Wrapf(err, "failed to create %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", target)
		}
		src, err := entry.Open()
		if err != nil {
			return errors.Wrapf(err, "failed to open archive entry %s", entry.Name)
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return errors.Wrapf(err, "failed to create %s", target)
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return errors.Wrapf(err, "failed to extract %s", entry.Name)
		}
	}
	return nil
}

func setIfNotEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
