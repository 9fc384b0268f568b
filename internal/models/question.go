package models

import "time"

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Topic struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subject_id"`
	Name      string `json:"name"`
}

// Concept is an atomic unit of knowledge linked to one or more questions.
// Learner performance aggregates per concept, below the topic level.
type Concept struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Question struct {
	ID            int64     `json:"id"`
	TopicID       int64     `json:"topic_id"`
	QuestionText  string    `json:"question_text"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	OptionC       string    `json:"option_c"`
	OptionD       string    `json:"option_d"`
	CorrectOption string    `json:"correct_option"`
	Explanation   string    `json:"explanation"`
	IsActive      bool      `json:"is_active"`
	TimesServed   int       `json:"times_served"`
	TimesCorrect  int       `json:"times_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

var ValidOptions = map[string]bool{"A": true, "B": true, "C": true, "D": true}
