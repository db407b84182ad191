package models

import "time"

// AnalysisContent is one level's pre-computed analysis of an article.
type AnalysisContent struct {
	Title                  string            `json:"title"`
	Content                string            `json:"content"`
	WorstScenarioByContext map[string]string `json:"worst_scenarios,omitempty"`
	ActionTipByContext     map[string]string `json:"action_tips,omitempty"`
	// ActionBlurred is nil when the flag was never persisted.
	ActionBlurred *bool `json:"action_blurred,omitempty"`
}

// NewsArticle is a news item together with its per-level analyses.
type NewsArticle struct {
	ID              string                    `json:"id"`
	Title           string                    `json:"title"`
	URL             string                    `json:"url"`
	PublishedAt     time.Time                 `json:"published_at"`
	SourceName      string                    `json:"source_name"`
	Category        string                    `json:"category"`
	AnalysisByLevel map[Level]AnalysisContent `json:"analysis_by_level"`
}

// HasAnalysis reports whether any analysis record exists for the article.
func (a NewsArticle) HasAnalysis() bool {
	return len(a.AnalysisByLevel) > 0
}

// AnalysisAt returns the analysis for level l, or the zero value when the
// level's fields were never populated.
func (a NewsArticle) AnalysisAt(l Level) AnalysisContent {
	return a.AnalysisByLevel[l]
}

// NewsView is the level-agnostic response shape of a personalized article.
type NewsView struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	PublishedAt time.Time    `json:"published_at"`
	Category    string       `json:"category"`
	Source      string       `json:"source"`
	Analysis    AnalysisView `json:"analysis"`
}

// AnalysisView is the projection of one level's analysis for a single user.
type AnalysisView struct {
	Level          Level    `json:"level"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	WorstScenarios []string `json:"worst_scenarios"`
	ActionTips     []string `json:"action_tips"`
	ShouldBlur     bool     `json:"should_blur"`
}
