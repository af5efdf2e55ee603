package facade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Report builders render facade outputs as markdown for the MCP resource
// endpoints. They read the same envelopes the tools produce, so cached
// listings are reused.

func payloadItems(resp Response, field string) []map[string]any {
	raw, _ := resp[field].([]any)
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func timeField(m map[string]any, key string) (time.Time, bool) {
	s := stringField(m, key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ActiveCompetitionsReport renders currently active competitions as markdown.
func (f *Facade) ActiveCompetitionsReport(ctx context.Context) string {
	resp := f.ListCompetitions(ctx, CompetitionListRequest{})
	if resp.IsError() {
		return fmt.Sprintf("Error: %s", resp.ErrorMessage())
	}

	now := time.Now()
	var b strings.Builder
	b.WriteString("# Active Kaggle Competitions\n\n")

	count := 0
	for _, comp := range payloadItems(resp, "competitions") {
		if deadline, ok := timeField(comp, "deadline"); ok && deadline.Before(now) {
			continue
		}
		if count >= 20 {
			break
		}
		count++

		fmt.Fprintf(&b, "## %s\n", stringField(comp, "title"))
		fmt.Fprintf(&b, "- **ID**: %v\n", comp["id"])
		fmt.Fprintf(&b, "- **Category**: %s\n", stringField(comp, "category"))
		fmt.Fprintf(&b, "- **Reward**: %s\n", stringField(comp, "reward"))
		if deadline := stringField(comp, "deadline"); deadline != "" {
			fmt.Fprintf(&b, "- **Deadline**: %s\n", deadline)
		} else {
			b.WriteString("- **Deadline**: Not specified\n")
		}
		fmt.Fprintf(&b, "- **Teams**: %v\n", comp["total_teams"])
		fmt.Fprintf(&b, "- **URL**: %s\n\n", stringField(comp, "url"))
	}

	return b.String()
}

// PopularDatasetsReport renders the default dataset listing as markdown.
func (f *Facade) PopularDatasetsReport(ctx context.Context) string {
	resp := f.SearchDatasets(ctx, DatasetSearchRequest{SortBy: "hottest"})
	if resp.IsError() {
		return fmt.Sprintf("Error: %s", resp.ErrorMessage())
	}

	var b strings.Builder
	b.WriteString("# Popular Kaggle Datasets\n\n")

	for _, dataset := range payloadItems(resp, "datasets") {
		fmt.Fprintf(&b, "## %s\n", stringField(dataset, "title"))
		fmt.Fprintf(&b, "- **Reference**: %s\n", stringField(dataset, "ref"))
		fmt.Fprintf(&b, "- **Size**: %s\n", stringField(dataset, "size"))
		fmt.Fprintf(&b, "- **Downloads**: %v\n", dataset["download_count"])
		fmt.Fprintf(&b, "- **Votes**: %v\n", dataset["vote_count"])
		fmt.Fprintf(&b, "- **Usability**: %v\n", dataset["usability_rating"])
		fmt.Fprintf(&b, "- **License**: %s\n", stringField(dataset, "license_name"))
		if updated := stringField(dataset, "last_updated"); updated != "" {
			fmt.Fprintf(&b, "- **Last Updated**: %s\n", updated)
		} else {
			b.WriteString("- **Last Updated**: Unknown\n")
		}
		fmt.Fprintf(&b, "- **URL**: %s\n\n", stringField(dataset, "url"))
	}

	return b.String()
}

// UpcomingDeadlinesReport renders competitions closing within 60 days.
func (f *Facade) UpcomingDeadlinesReport(ctx context.Context) string {
	resp := f.ListCompetitions(ctx, CompetitionListRequest{})
	if resp.IsError() {
		return fmt.Sprintf("Error: %s", resp.ErrorMessage())
	}

	type upcoming struct {
		comp map[string]any
		days int
	}

	now := time.Now()
	var soon []upcoming
	for _, comp := range payloadItems(resp, "competitions") {
		deadline, ok := timeField(comp, "deadline")
		if !ok {
			continue
		}
		days := int(deadline.Sub(now).Hours() / 24)
		if days >= 0 && days <= 60 {
			soon = append(soon, upcoming{comp: comp, days: days})
		}
	}
	sort.Slice(soon, func(i, j int) bool { return soon[i].days < soon[j].days })

	var b strings.Builder
	b.WriteString("# Upcoming Competition Deadlines\n\n")

	b.WriteString("## Next 30 Days\n\n")
	for i, entry := range soon {
		if entry.days > 30 || i >= 10 {
			break
		}
		urgency := "Soon"
		if entry.days <= 7 {
			urgency = "URGENT"
		}
		fmt.Fprintf(&b, "- **%s** (%s)\n", stringField(entry.comp, "title"), urgency)
		fmt.Fprintf(&b, "  - Days left: %d\n", entry.days)
		fmt.Fprintf(&b, "  - Reward: %s\n", stringField(entry.comp, "reward"))
		fmt.Fprintf(&b, "  - Deadline: %s\n\n", stringField(entry.comp, "deadline"))
	}

	b.WriteString("## This Month\n\n")
	for _, entry := range soon {
		if entry.days <= 30 {
			continue
		}
		fmt.Fprintf(&b, "- **%s**\n", stringField(entry.comp, "title"))
		fmt.Fprintf(&b, "  - Days left: %d\n", entry.days)
		fmt.Fprintf(&b, "  - Reward: %s\n\n", stringField(entry.comp, "reward"))
	}

	return b.String()
}

// PlatformStatsReport renders aggregate platform statistics as markdown.
func (f *Facade) PlatformStatsReport(ctx context.Context) string {
	comps := f.ListCompetitions(ctx, CompetitionListRequest{})
	if comps.IsError() {
		return fmt.Sprintf("Error: %s", comps.ErrorMessage())
	}
	datasets := f.SearchDatasets(ctx, DatasetSearchRequest{})
	if datasets.IsError() {
		return fmt.Sprintf("Error: %s", datasets.ErrorMessage())
	}
	models := f.ListModels(ctx, ModelListRequest{})
	if models.IsError() {
		return fmt.Sprintf("Error: %s", models.ErrorMessage())
	}

	compItems := payloadItems(comps, "competitions")
	datasetItems := payloadItems(datasets, "datasets")
	modelItems := payloadItems(models, "models")

	categories := map[string]int{}
	totalPrizePool := 0
	for _, comp := range compItems {
		category := stringField(comp, "category")
		if category == "" {
			category = "unknown"
		}
		categories[category]++
		totalPrizePool += parsePrizeUSD(stringField(comp, "reward"))
	}

	licenses := map[string]int{}
	totalDownloads := 0
	for _, dataset := range datasetItems {
		license := stringField(dataset, "license_name")
		if license == "" {
			license = "Unknown"
		}
		licenses[license]++
		if n, ok := dataset["download_count"].(int); ok {
			totalDownloads += n
		}
	}

	var b strings.Builder
	b.WriteString("# Kaggle Platform Statistics\n\n")

	b.WriteString("## Competition Overview\n\n")
	fmt.Fprintf(&b, "- **Total Active Competitions**: %d\n", len(compItems))
	fmt.Fprintf(&b, "- **Total Prize Pool**: $%d\n", totalPrizePool)
	fmt.Fprintf(&b, "- **Categories**: %d\n\n", len(categories))
	for _, kv := range sortedByCount(categories) {
		fmt.Fprintf(&b, "  - %s: %d competitions\n", kv.key, kv.count)
	}

	b.WriteString("\n## Dataset Overview\n\n")
	fmt.Fprintf(&b, "- **Total Popular Datasets**: %d\n", len(datasetItems))
	fmt.Fprintf(&b, "- **Total Downloads**: %d\n", totalDownloads)

	b.WriteString("\n## Model Hub Overview\n\n")
	fmt.Fprintf(&b, "- **Total Available Models**: %d\n", len(modelItems))

	b.WriteString("\n## License Distribution\n\n")
	for i, kv := range sortedByCount(licenses) {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %d datasets\n", kv.key, kv.count)
	}

	return b.String()
}

// HotTopicsReport renders trending categories and dataset topics as markdown.
func (f *Facade) HotTopicsReport(ctx context.Context) string {
	comps := f.ListCompetitions(ctx, CompetitionListRequest{})
	if comps.IsError() {
		return fmt.Sprintf("Error: %s", comps.ErrorMessage())
	}
	datasets := f.SearchDatasets(ctx, DatasetSearchRequest{SortBy: "hottest"})
	if datasets.IsError() {
		return fmt.Sprintf("Error: %s", datasets.ErrorMessage())
	}

	categories := map[string]int{}
	for _, comp := range payloadItems(comps, "competitions") {
		category := stringField(comp, "category")
		if category == "" {
			category = "unknown"
		}
		categories[category]++
	}

	tags := map[string]int{}
	sizes := map[string]int{}
	for _, dataset := range payloadItems(datasets, "datasets") {
		for _, tag := range tagList(dataset) {
			tags[tag]++
		}
		sizes[sizeBucket(dataset)]++
	}

	var b strings.Builder
	b.WriteString("# Hot Topics on Kaggle\n\n")

	b.WriteString("## Trending Competition Categories\n\n")
	for _, kv := range sortedByCount(categories) {
		fmt.Fprintf(&b, "- **%s**: %d active competitions\n", kv.key, kv.count)
	}

	b.WriteString("\n## Popular Dataset Topics\n\n")
	for i, kv := range sortedByCount(tags) {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "- **%s**: %d datasets\n", kv.key, kv.count)
	}

	b.WriteString("\n## Dataset Size Distribution\n\n")
	for _, bucket := range sizeBuckets {
		fmt.Fprintf(&b, "- %s: %d datasets\n", bucket, sizes[bucket])
	}

	return b.String()
}

// GettingStartedReport renders a beginner's guide: entry-level competitions
// and high-usability datasets.
func (f *Facade) GettingStartedReport(ctx context.Context) string {
	comps := f.ListCompetitions(ctx, CompetitionListRequest{})
	if comps.IsError() {
		return fmt.Sprintf("Error: %s", comps.ErrorMessage())
	}
	datasets := f.SearchDatasets(ctx, DatasetSearchRequest{SortBy: "hottest"})
	if datasets.IsError() {
		return fmt.Sprintf("Error: %s", datasets.ErrorMessage())
	}

	var b strings.Builder
	b.WriteString("# Getting Started with Kaggle\n\n")

	b.WriteString("## Beginner-Friendly Competitions\n\n")
	count := 0
	for _, comp := range payloadItems(comps, "competitions") {
		if stringField(comp, "category") != "gettingStarted" {
			continue
		}
		if count >= 10 {
			break
		}
		count++
		fmt.Fprintf(&b, "### %s\n", stringField(comp, "title"))
		fmt.Fprintf(&b, "- **ID**: %v\n", comp["id"])
		fmt.Fprintf(&b, "- **Teams**: %v\n", comp["total_teams"])
		fmt.Fprintf(&b, "- **URL**: %s\n\n", stringField(comp, "url"))
	}
	if count == 0 {
		b.WriteString("No getting-started competitions are currently listed.\n\n")
	}

	b.WriteString("## High-Usability Datasets\n\n")
	shown := 0
	for _, dataset := range payloadItems(datasets, "datasets") {
		rating, _ := dataset["usability_rating"].(float64)
		if rating < 0.8 {
			continue
		}
		if shown >= 10 {
			break
		}
		shown++
		fmt.Fprintf(&b, "- **%s** (%s): usability %.2f, %s\n",
			stringField(dataset, "title"), stringField(dataset, "ref"),
			rating, stringField(dataset, "size"))
	}
	if shown == 0 {
		b.WriteString("No high-usability datasets found.\n")
	}

	return b.String()
}

var sizeBuckets = []string{
	"small (under 100 MB)",
	"medium (100 MB to 1 GB)",
	"large (over 1 GB)",
}

func sizeBucket(m map[string]any) string {
	bytes, _ := m["total_bytes"].(int64)
	switch {
	case bytes < 100*1024*1024:
		return sizeBuckets[0]
	case bytes < 1024*1024*1024:
		return sizeBuckets[1]
	default:
		return sizeBuckets[2]
	}
}

func tagList(m map[string]any) []string {
	raw, _ := m["tags"].([]any)
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if s, ok := tag.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

type keyCount struct {
	key   string
	count int
}

func sortedByCount(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, v := range m {
		out = append(out, keyCount{key: k, count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

// parsePrizeUSD extracts a dollar amount from reward strings like "$10,000".
// Non-monetary rewards ("Knowledge", "Swag") contribute zero.
func parsePrizeUSD(reward string) int {
	cleaned := strings.NewReplacer("$", "", ",", "", " Usd", "").Replace(reward)
	amount := 0
	for _, ch := range cleaned {
		if ch < '0' || ch > '9' {
			return 0
		}
		amount = amount*10 + int(ch-'0')
	}
	if cleaned == "" {
		return 0
	}
	return amount
}
