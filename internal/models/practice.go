package models

import "time"

// Category is one of the four sourcing strategies blended into a session.
type Category string

const (
	CategoryNewTopic      Category = "new_topic"
	CategoryStrongArea    Category = "strong_area"
	CategoryMistake       Category = "mistake"
	CategoryTimeConsuming Category = "time_consuming"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

// PracticeConfig holds a user's per-category percentages.
// The four values must sum to exactly 100.
type PracticeConfig struct {
	NewTopicsPct     int `json:"new_topics"`
	StrongAreasPct   int `json:"strong_areas"`
	MistakesPct      int `json:"mistakes"`
	TimeConsumingPct int `json:"time_consuming"`
}

func (c PracticeConfig) Sum() int {
	return c.NewTopicsPct + c.StrongAreasPct + c.MistakesPct + c.TimeConsumingPct
}

// DefaultPracticeConfig is used for users who never saved a config.
var DefaultPracticeConfig = PracticeConfig{
	NewTopicsPct:     25,
	StrongAreasPct:   25,
	MistakesPct:      25,
	TimeConsumingPct: 25,
}

type PracticeSession struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	TotalQuestions    int           `json:"total_questions"`
	Status            SessionStatus `json:"status"`
	QuestionsAnswered int           `json:"questions_answered"`
	CorrectAnswers    int           `json:"correct_answers"`
	CreatedAt         time.Time     `json:"created_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

type SessionItem struct {
	ID               int64    `json:"id"`
	SessionID        int64    `json:"session_id"`
	QuestionID       int64    `json:"question_id"`
	Category         Category `json:"category"`
	OrderIndex       int      `json:"order_index"`
	IsAnswered       bool     `json:"is_answered"`
	IsCorrect        bool     `json:"is_correct"`
	IsSkipped        bool     `json:"is_skipped"`
	SelectedOption   *string  `json:"selected_option,omitempty"`
	TimeTakenSeconds *float64 `json:"time_taken_seconds,omitempty"`
}

// ── Request Types ────────────────────────────────────────

type GenerateSessionRequest struct {
	TotalQuestions int             `json:"total_questions"`
	Config         *PracticeConfig `json:"config,omitempty"`
}

type SubmitAnswer struct {
	ItemID           int64   `json:"item_id"`
	SelectedOption   *string `json:"selected_option"` // null means skipped
	TimeTakenSeconds float64 `json:"time_taken_seconds"`
}

type SubmitSessionRequest struct {
	Answers []SubmitAnswer `json:"answers"`
}

// ── Response Types ───────────────────────────────────────

type CategoryBreakdown struct {
	NewTopic      int `json:"new_topic"`
	StrongArea    int `json:"strong_area"`
	Mistake       int `json:"mistake"`
	TimeConsuming int `json:"time_consuming"`
}

func (b CategoryBreakdown) Total() int {
	return b.NewTopic + b.StrongArea + b.Mistake + b.TimeConsuming
}

type GenerateSessionResponse struct {
	SessionID      int64             `json:"session_id"`
	TotalQuestions int               `json:"total_questions"`
	Breakdown      CategoryBreakdown `json:"breakdown"`
}

type AnswerResult struct {
	ItemID        int64  `json:"item_id"`
	QuestionID    int64  `json:"question_id"`
	IsCorrect     bool   `json:"is_correct"`
	IsSkipped     bool   `json:"is_skipped"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

type SessionSummary struct {
	Answered int     `json:"answered"`
	Correct  int     `json:"correct"`
	Skipped  int     `json:"skipped"`
	Accuracy float64 `json:"accuracy"`
}

type SubmitSessionResponse struct {
	Results []AnswerResult `json:"results"`
	Summary SessionSummary `json:"summary"`
}

type SessionListResponse struct {
	Sessions []PracticeSession `json:"sessions"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// SessionItemDetail is a session item joined with its question content so a
// client can render the session without extra fetches. CorrectOption and
// Explanation stay empty until the session is completed.
type SessionItemDetail struct {
	SessionItem
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

type SessionDetailResponse struct {
	Session PracticeSession     `json:"session"`
	Items   []SessionItemDetail `json:"items"`
}
