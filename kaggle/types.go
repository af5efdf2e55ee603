// Package kaggle provides the platform client for the Kaggle public API:
// record types, the Client interface consumed by the facade, and an HTTP
// implementation against https://www.kaggle.com/api/v1.
package kaggle

import (
	"time"
)

// Category classifies a competition.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryFeatured
	CategoryResearch
	CategoryRecruitment
	CategoryGettingStarted
	CategoryMasters
	CategoryPlayground
)

var categoryNames = map[Category]string{
	CategoryUnknown:        "unknown",
	CategoryFeatured:       "featured",
	CategoryResearch:       "research",
	CategoryRecruitment:    "recruitment",
	CategoryGettingStarted: "gettingStarted",
	CategoryMasters:        "masters",
	CategoryPlayground:     "playground",
}

// EnumName returns the wire name of the category. The facade normalizer
// serializes enumeration-like values through this method.
func (c Category) EnumName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCategory maps a wire name to a Category. Unrecognized names map to
// CategoryUnknown rather than failing; upstream adds categories over time.
func ParseCategory(name string) Category {
	for c, n := range categoryNames {
		if n == name {
			return c
		}
	}
	return CategoryUnknown
}

// Competition is a single competition record.
type Competition struct {
	ID                string
	Ref               string
	Title             string
	URL               string
	Description       string
	Category          Category
	Reward            string
	Deadline          time.Time
	EnabledDate       time.Time
	EvaluationEndDate time.Time
	MaxTeamSize       int
	EvaluationMetric  string
	TotalTeams        int
	UserHasEntered    bool
	Tags              []string
}

// Dataset is a single dataset record.
type Dataset struct {
	Ref             string
	Title           string
	Subtitle        string
	Description     string
	TotalBytes      int64
	LastUpdated     time.Time
	DownloadCount   int
	VoteCount       int
	UsabilityRating float64
	LicenseName     string
	Tags            []string
}

// DatasetFile describes one file inside a dataset.
type DatasetFile struct {
	Name         string
	TotalBytes   int64
	CreationDate time.Time
}

// Model is a single model record.
type Model struct {
	Ref         string
	Title       string
	Subtitle    string
	Author      string
	Slug        string
	IsPrivate   bool
	Description string
	PublishTime time.Time
}
