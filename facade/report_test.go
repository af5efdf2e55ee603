package facade

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfold/kagglemcp/errors"
	"github.com/quantfold/kagglemcp/kaggle"
)

func reportFacade(t *testing.T) (*Facade, *fakeClient) {
	t.Helper()
	client := &fakeClient{
		competitions: []kaggle.Competition{
			{
				ID:       "urgent-comp",
				Title:    "Urgent Challenge",
				URL:      "https://www.kaggle.com/competitions/urgent-comp",
				Category: kaggle.CategoryFeatured,
				Reward:   "$10,000",
				Deadline: time.Now().Add(5 * 24 * time.Hour),
			},
			{
				ID:       "later-comp",
				Title:    "Later Challenge",
				URL:      "https://www.kaggle.com/competitions/later-comp",
				Category: kaggle.CategoryResearch,
				Reward:   "$25,000",
				Deadline: time.Now().Add(45 * 24 * time.Hour),
			},
			{
				ID:       "expired-comp",
				Title:    "Expired Challenge",
				Category: kaggle.CategoryPlayground,
				Reward:   "Knowledge",
				Deadline: time.Now().Add(-10 * 24 * time.Hour),
			},
			{
				ID:       "titanic",
				Title:    "Titanic - Machine Learning from Disaster",
				URL:      "https://www.kaggle.com/competitions/titanic",
				Category: kaggle.CategoryGettingStarted,
				Reward:   "Knowledge",
				Deadline: time.Now().Add(365 * 24 * time.Hour),
			},
		},
		datasets: sampleDatasets(),
		models: []kaggle.Model{
			{Ref: "google/gemma", Title: "Gemma"},
		},
	}
	return New(client, testConfig(t)), client
}

func TestActiveCompetitionsReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.ActiveCompetitionsReport(context.Background())
	assert.True(t, strings.HasPrefix(report, "# Active Kaggle Competitions"))
	assert.Contains(t, report, "Urgent Challenge")
	assert.Contains(t, report, "Later Challenge")
	assert.NotContains(t, report, "Expired Challenge")
	assert.Contains(t, report, "$10,000")
}

func TestPopularDatasetsReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.PopularDatasetsReport(context.Background())
	assert.Contains(t, report, "# Popular Kaggle Datasets")
	assert.Contains(t, report, "Titanic Passengers")
	assert.Contains(t, report, "1.0 MB")
	assert.Contains(t, report, "CC0-1.0")
}

func TestUpcomingDeadlinesReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.UpcomingDeadlinesReport(context.Background())
	assert.Contains(t, report, "# Upcoming Competition Deadlines")

	// The five-day deadline is urgent; the 45-day one lands past 30 days
	assert.Contains(t, report, "Urgent Challenge** (URGENT)")
	assert.Contains(t, report, "Later Challenge")
	assert.NotContains(t, report, "Expired Challenge")
}

func TestPlatformStatsReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.PlatformStatsReport(context.Background())
	assert.Contains(t, report, "# Kaggle Platform Statistics")
	assert.Contains(t, report, "**Total Active Competitions**: 4")
	assert.Contains(t, report, "**Total Prize Pool**: $35000")
	assert.Contains(t, report, "**Total Popular Datasets**: 1")
	assert.Contains(t, report, "**Total Available Models**: 1")
	assert.Contains(t, report, "featured: 1 competitions")
	assert.Contains(t, report, "**CC0-1.0**: 1 datasets")
}

func TestHotTopicsReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.HotTopicsReport(context.Background())
	assert.Contains(t, report, "# Hot Topics on Kaggle")
	assert.Contains(t, report, "**featured**: 1 active competitions")
	assert.Contains(t, report, "**gettingStarted**: 1 active competitions")
	assert.Contains(t, report, "**history**: 1 datasets")
	assert.Contains(t, report, "small (under 100 MB): 1 datasets")
	assert.Contains(t, report, "large (over 1 GB): 0 datasets")
}

func TestGettingStartedReport(t *testing.T) {
	f, _ := reportFacade(t)

	report := f.GettingStartedReport(context.Background())
	assert.Contains(t, report, "# Getting Started with Kaggle")
	assert.Contains(t, report, "Titanic - Machine Learning from Disaster")
	assert.NotContains(t, report, "Urgent Challenge", "only gettingStarted competitions qualify")
	assert.Contains(t, report, "Titanic Passengers")
	assert.Contains(t, report, "usability 0.88")
}

func TestGettingStartedReportEmptySections(t *testing.T) {
	client := &fakeClient{}
	f := New(client, testConfig(t))

	report := f.GettingStartedReport(context.Background())
	assert.Contains(t, report, "No getting-started competitions are currently listed.")
	assert.Contains(t, report, "No high-usability datasets found.")
}

func TestReportsRenderErrors(t *testing.T) {
	client := &fakeClient{err: errors.ErrUnauthorized}
	f := New(client, testConfig(t))

	report := f.ActiveCompetitionsReport(context.Background())
	require.True(t, strings.HasPrefix(report, "Error: "))
	assert.Contains(t, report, "Authentication failed")
}

func TestReportsShareTheCache(t *testing.T) {
	f, client := reportFacade(t)
	ctx := context.Background()

	f.ActiveCompetitionsReport(ctx)
	f.UpcomingDeadlinesReport(ctx)
	assert.Equal(t, 1, client.listCompetitionCalls, "both reports read the same cached listing")
}

func TestParsePrizeUSD(t *testing.T) {
	tests := []struct {
		reward string
		want   int
	}{
		{"$10,000", 10000},
		{"$1,000,000", 1000000},
		{"Knowledge", 0},
		{"Swag", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrizeUSD(tt.reward), tt.reward)
	}
}
