package models

import "time"

// ProficiencyLevel is a discrete tier summarizing historical accuracy
// and attempt volume on a concept.
type ProficiencyLevel string

const (
	ProficiencyUnknown    ProficiencyLevel = "unknown"
	ProficiencyWeak       ProficiencyLevel = "weak"
	ProficiencyDeveloping ProficiencyLevel = "developing"
	ProficiencyMedium     ProficiencyLevel = "medium"
	ProficiencyStrong     ProficiencyLevel = "strong"
	ProficiencyMastered   ProficiencyLevel = "mastered"
)

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

type ConceptStat struct {
	ID              int64            `json:"id"`
	UserID          int64            `json:"user_id"`
	ConceptID       int64            `json:"concept_id"`
	ConceptName     string           `json:"concept_name,omitempty"`
	TotalAttempts   int              `json:"total_attempts"`
	CorrectAttempts int              `json:"correct_attempts"`
	AvgTimeSeconds  float64          `json:"avg_time_seconds"`
	AccuracyRate    *float64         `json:"accuracy_rate,omitempty"`
	Proficiency     ProficiencyLevel `json:"proficiency_level"`
	NextReviewDate  *time.Time       `json:"next_review_date,omitempty"`
	ConfidenceScore int              `json:"confidence_score"`
	RecentTrend     Trend            `json:"recent_trend"`
	LastPracticed   *time.Time       `json:"last_practiced,omitempty"`
}

type ConceptStatsResponse struct {
	Stats []ConceptStat `json:"stats"`
	Total int           `json:"total"`
}
