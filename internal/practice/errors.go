package practice

import "errors"

var (
	// ErrConfigInvalid is returned when the four category percentages do
	// not sum to exactly 100, or the requested total is not positive.
	// It is raised before any store access.
	ErrConfigInvalid = errors.New("practice config percentages must sum to 100")

	// ErrNotFound covers sessions and items that do not exist or do not
	// belong to the calling user.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyCompleted is returned on resubmission of a completed session.
	ErrAlreadyCompleted = errors.New("session already completed")

	// ErrNoQuestions is returned when no servable questions exist at all.
	ErrNoQuestions = errors.New("no questions available for practice")

	// ErrInvalidAnswer is returned when a submitted option is not one of
	// A, B, C, D.
	ErrInvalidAnswer = errors.New("invalid answer option")
)
