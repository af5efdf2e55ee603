// Package server exposes the facade over the Model Context Protocol.
package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/quantfold/kagglemcp/facade"
	"github.com/quantfold/kagglemcp/logger"
	"github.com/quantfold/kagglemcp/version"
)

// Server wraps a Facade and exposes it via Model Context Protocol.
type Server struct {
	facade *facade.Facade
	server *server.MCPServer
}

// New creates an MCP server over the given facade.
func New(f *facade.Facade) *Server {
	s := &Server{facade: f}

	s.server = server.NewMCPServer(
		"Kaggle MCP Server",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Serve runs the server over stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.server)
}

// registerTools registers all MCP tools for Kaggle operations
func (s *Server) registerTools() {
	listCompetitionsTool := mcp.NewTool("list_competitions",
		mcp.WithDescription("List active Kaggle competitions with optional filtering"),
		mcp.WithString("search",
			mcp.Description("Search term to filter competitions"),
		),
		mcp.WithString("category",
			mcp.Description("Competition category (all, featured, research, recruitment, gettingStarted, playground)"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order (deadline, prize, numberOfTeams, recentlyCreated)"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of competitions per page (default: 20, max: 100)"),
		),
	)
	s.server.AddTool(listCompetitionsTool, s.handleListCompetitions)

	competitionDetailsTool := mcp.NewTool("get_competition_details",
		mcp.WithDescription("Get detailed information about a specific Kaggle competition"),
		mcp.WithString("competition_id",
			mcp.Required(),
			mcp.Description("The competition identifier (id, ref, or URL slug)"),
		),
	)
	s.server.AddTool(competitionDetailsTool, s.handleGetCompetitionDetails)

	downloadCompetitionTool := mcp.NewTool("download_competition_files",
		mcp.WithDescription("Download competition files to a specified directory"),
		mcp.WithString("competition_id",
			mcp.Required(),
			mcp.Description("The competition identifier"),
		),
		mcp.WithString("download_path",
			mcp.Description("Local directory to download files to (default: configured download path)"),
		),
		mcp.WithString("file_name",
			mcp.Description("Specific file to download (downloads all if not specified)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Force download even if files exist (default: false)"),
		),
		mcp.WithBoolean("quiet",
			mcp.Description("Suppress download progress output (default: true)"),
		),
	)
	s.server.AddTool(downloadCompetitionTool, s.handleDownloadCompetitionFiles)

	searchDatasetsTool := mcp.NewTool("search_datasets",
		mcp.WithDescription("Search for Kaggle datasets with filtering options"),
		mcp.WithString("search",
			mcp.Description("Search term"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order (hottest, votes, updated, active, published)"),
		),
		mcp.WithString("size",
			mcp.Description("Dataset size filter (all, small, medium, large)"),
		),
		mcp.WithString("file_type",
			mcp.Description("File type filter (all, csv, sqlite, json)"),
		),
		mcp.WithString("license_name",
			mcp.Description("License filter (all, cc, gpl, odb, other)"),
		),
		mcp.WithString("tag_ids",
			mcp.Description("Comma-separated tag IDs"),
		),
		mcp.WithString("user",
			mcp.Description("Filter by username"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of datasets per page (default: 20, max: 100)"),
		),
	)
	s.server.AddTool(searchDatasetsTool, s.handleSearchDatasets)

	datasetDetailsTool := mcp.NewTool("get_dataset_details",
		mcp.WithDescription("Get detailed information about a specific Kaggle dataset"),
		mcp.WithString("dataset_ref",
			mcp.Required(),
			mcp.Description("Dataset reference in format 'username/dataset-name'"),
		),
	)
	s.server.AddTool(datasetDetailsTool, s.handleGetDatasetDetails)

	downloadDatasetTool := mcp.NewTool("download_dataset",
		mcp.WithDescription("Download a Kaggle dataset to a specified directory"),
		mcp.WithString("dataset_ref",
			mcp.Required(),
			mcp.Description("Dataset reference in format 'username/dataset-name'"),
		),
		mcp.WithString("download_path",
			mcp.Description("Local directory to download files to (default: configured download path)"),
		),
		mcp.WithString("file_name",
			mcp.Description("Specific file to download (downloads all if not specified)"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Force download even if files exist (default: false)"),
		),
		mcp.WithBoolean("quiet",
			mcp.Description("Suppress download progress output (default: true)"),
		),
		mcp.WithBoolean("unzip",
			mcp.Description("Automatically unzip downloaded files (default: true)"),
		),
	)
	s.server.AddTool(downloadDatasetTool, s.handleDownloadDataset)

	listModelsTool := mcp.NewTool("list_models",
		mcp.WithDescription("List Kaggle models with filtering options"),
		mcp.WithString("search",
			mcp.Description("Search term to filter models"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort order (hottest, downloadCount, voteCount, createTime)"),
		),
		mcp.WithString("owner",
			mcp.Description("Filter by model owner"),
		),
		mcp.WithNumber("page",
			mcp.Description("Page number for pagination (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Number of models per page (default: 20, max: 100)"),
		),
	)
	s.server.AddTool(listModelsTool, s.handleListModels)
}

// registerResources registers the markdown report resources
func (s *Server) registerResources() {
	s.addReport("kaggle://competitions/active", "Active Competitions",
		"Currently active competitions", s.facade.ActiveCompetitionsReport)
	s.addReport("kaggle://datasets/popular", "Popular Datasets",
		"Popular datasets on the platform", s.facade.PopularDatasetsReport)
	s.addReport("kaggle://calendar/deadlines", "Upcoming Deadlines",
		"Competition deadlines in the next 60 days", s.facade.UpcomingDeadlinesReport)
	s.addReport("kaggle://meta/platform-stats", "Platform Statistics",
		"Aggregate platform statistics", s.facade.PlatformStatsReport)
	s.addReport("kaggle://trends/hot-topics", "Hot Topics",
		"Trending categories and dataset topics", s.facade.HotTopicsReport)
	s.addReport("kaggle://beginner/getting-started", "Getting Started",
		"Beginner-friendly competitions and datasets", s.facade.GettingStartedReport)
}

func (s *Server) addReport(uri, name, description string, build func(context.Context) string) {
	resource := mcp.NewResource(uri, name,
		mcp.WithResourceDescription(description),
		mcp.WithMIMEType("text/markdown"),
	)
	s.server.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		logger.Infow("resource read",
			logger.FieldResource, uri)
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     build(ctx),
			},
		}, nil
	})
}

// result serializes an envelope as the tool result. Error envelopes are
// returned as MCP tool errors carrying the same JSON payload.
func (s *Server) result(tool string, params map[string]any, start time.Time, resp facade.Response) (*mcp.CallToolResult, error) {
	logger.Infow("tool call",
		logger.FieldTool, tool,
		logger.FieldRequestID, uuid.NewString(),
		"params", logger.SafeParams(params),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
		logger.FieldErrorType, string(resp.ErrorKind()))

	payload, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if resp.IsError() {
		return mcp.NewToolResultError(string(payload)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// handleListCompetitions handles list_competitions tool calls
func (s *Server) handleListCompetitions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	req := facade.CompetitionListRequest{
		Search:   request.GetString("search", ""),
		Category: request.GetString("category", "all"),
		SortBy:   request.GetString("sort_by", "deadline"),
		Page:     request.GetInt("page", 0),
		PageSize: request.GetInt("page_size", 0),
	}
	resp := s.facade.ListCompetitions(ctx, req)
	return s.result("list_competitions", map[string]any{
		"search": req.Search, "category": req.Category, "sort_by": req.SortBy,
		"page": req.Page, "page_size": req.PageSize,
	}, start, resp)
}

// handleGetCompetitionDetails handles get_competition_details tool calls
func (s *Server) handleGetCompetitionDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	competitionID, err := request.RequireString("competition_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp := s.facade.GetCompetitionDetails(ctx, competitionID)
	return s.result("get_competition_details", map[string]any{
		"competition_id": competitionID,
	}, start, resp)
}

// handleDownloadCompetitionFiles handles download_competition_files tool calls
func (s *Server) handleDownloadCompetitionFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	competitionID, err := request.RequireString("competition_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := facade.CompetitionDownloadRequest{
		ID:       competitionID,
		Path:     request.GetString("download_path", ""),
		FileName: request.GetString("file_name", ""),
		Force:    request.GetBool("force", false),
		Quiet:    request.GetBool("quiet", true),
	}
	resp := s.facade.DownloadCompetitionFiles(ctx, req)
	return s.result("download_competition_files", map[string]any{
		"competition_id": req.ID, "download_path": req.Path, "file_name": req.FileName,
	}, start, resp)
}

// handleSearchDatasets handles search_datasets tool calls
func (s *Server) handleSearchDatasets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	req := facade.DatasetSearchRequest{
		Search:   request.GetString("search", ""),
		SortBy:   request.GetString("sort_by", "hottest"),
		Size:     request.GetString("size", ""),
		FileType: request.GetString("file_type", ""),
		License:  request.GetString("license_name", ""),
		TagIDs:   request.GetString("tag_ids", ""),
		User:     request.GetString("user", ""),
		Page:     request.GetInt("page", 0),
		PageSize: request.GetInt("page_size", 0),
	}
	resp := s.facade.SearchDatasets(ctx, req)
	return s.result("search_datasets", map[string]any{
		"search": req.Search, "sort_by": req.SortBy, "user": req.User,
		"page": req.Page, "page_size": req.PageSize,
	}, start, resp)
}

// handleGetDatasetDetails handles get_dataset_details tool calls
func (s *Server) handleGetDatasetDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	datasetRef, err := request.RequireString("dataset_ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resp := s.facade.GetDatasetDetails(ctx, datasetRef)
	return s.result("get_dataset_details", map[string]any{
		"dataset_ref": datasetRef,
	}, start, resp)
}

// handleDownloadDataset handles download_dataset tool calls
func (s *Server) handleDownloadDataset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	datasetRef, err := request.RequireString("dataset_ref")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	req := facade.DatasetDownloadRequest{
		Ref:      datasetRef,
		Path:     request.GetString("download_path", ""),
		FileName: request.GetString("file_name", ""),
		Force:    request.GetBool("force", false),
		Quiet:    request.GetBool("quiet", true),
		Unzip:    request.GetBool("unzip", true),
	}
	resp := s.facade.DownloadDataset(ctx, req)
	return s.result("download_dataset", map[string]any{
		"dataset_ref": req.Ref, "download_path": req.Path, "file_name": req.FileName,
	}, start, resp)
}

// handleListModels handles list_models tool calls
func (s *Server) handleListModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	req := facade.ModelListRequest{
		Search:   request.GetString("search", ""),
		SortBy:   request.GetString("sort_by", "hottest"),
		Owner:    request.GetString("owner", ""),
		Page:     request.GetInt("page", 0),
		PageSize: request.GetInt("page_size", 0),
	}
	resp := s.facade.ListModels(ctx, req)
	return s.result("list_models", map[string]any{
		"search": req.Search, "sort_by": req.SortBy, "owner": req.Owner,
		"page": req.Page, "page_size": req.PageSize,
	}, start, resp)
}
