package mistakes

import (
	"context"
	"errors"
	"time"

	"github.com/exam-prep/backend/internal/models"
)

// ErrNotFound covers mistake records that do not exist or belong to another
// user.
var ErrNotFound = errors.New("mistake record not found")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// RecordMiss is called by the session engine whenever a user answers a
// question incorrectly.
func (s *Service) RecordMiss(ctx context.Context, userID, questionID int64) error {
	return s.store.RecordMiss(ctx, userID, questionID)
}

// Practice processes one attempt on a similar question in mastery practice.
func (s *Service) Practice(ctx context.Context, userID, mistakeID int64, req models.PracticeMistakeRequest) (*models.PracticeMistakeResponse, error) {
	rec, err := s.store.UpdateRecord(ctx, mistakeID, userID, func(r *models.MistakeRecord) {
		applyPractice(r, req.IsCorrect, req.TimeTakenSeconds, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return &models.PracticeMistakeResponse{
		MasteryStatus:      rec.MasteryStatus,
		ConsecutiveCorrect: rec.ConsecutiveCorrect,
		NextReviewDate:     rec.NextReviewDate,
		ProgressMessage:    progressMessage(rec),
	}, nil
}

// Retry processes one direct re-attempt of the original missed question.
func (s *Service) Retry(ctx context.Context, userID, mistakeID int64, req models.RetryMistakeRequest) (*models.RetryMistakeResponse, error) {
	rec, err := s.store.UpdateRecord(ctx, mistakeID, userID, func(r *models.MistakeRecord) {
		applyRetry(r, req.IsCorrect, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return &models.RetryMistakeResponse{
		IsResolved: rec.IsResolved,
		RetryCount: rec.RetryCount,
	}, nil
}

func (s *Service) List(ctx context.Context, userID int64, resolved *bool, page, pageSize int) (*models.MistakeListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	records, total, err := s.store.ListMistakes(ctx, userID, resolved, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.MistakeRecord{}
	}
	return &models.MistakeListResponse{
		Mistakes: records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
