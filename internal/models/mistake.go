package models

import "time"

// MasteryStatus is the per-mistake streak state, tracked per question.
// It is distinct from the per-concept proficiency level.
type MasteryStatus string

const (
	MasteryNotStarted MasteryStatus = "not_started"
	MasteryPracticing MasteryStatus = "practicing"
	MasteryMastered   MasteryStatus = "mastered"
)

type MistakeRecord struct {
	ID                 int64         `json:"id"`
	UserID             int64         `json:"user_id"`
	QuestionID         int64         `json:"question_id"`
	RetryCount         int           `json:"retry_count"`
	ConsecutiveCorrect int           `json:"consecutive_correct"`
	TotalCorrect       int           `json:"total_correct"`
	MasteryStatus      MasteryStatus `json:"mastery_status"`
	NextReviewDate     *time.Time    `json:"next_review_date,omitempty"`
	LastAttempted      *time.Time    `json:"last_attempted,omitempty"`
	TimeTakenAvg       float64       `json:"time_taken_avg"`
	IsResolved         bool          `json:"is_resolved"`
	CreatedAt          time.Time     `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type PracticeMistakeRequest struct {
	IsCorrect        bool    `json:"is_correct"`
	TimeTakenSeconds float64 `json:"time_taken_seconds"`
}

type RetryMistakeRequest struct {
	IsCorrect bool `json:"is_correct"`
}

// ── Response Types ───────────────────────────────────────

type PracticeMistakeResponse struct {
	MasteryStatus      MasteryStatus `json:"mastery_status"`
	ConsecutiveCorrect int           `json:"consecutive_correct"`
	NextReviewDate     *time.Time    `json:"next_review_date,omitempty"`
	ProgressMessage    string        `json:"progress_message"`
}

type RetryMistakeResponse struct {
	IsResolved bool `json:"is_resolved"`
	RetryCount int  `json:"retry_count"`
}

type MistakeListResponse struct {
	Mistakes []MistakeRecord `json:"mistakes"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
