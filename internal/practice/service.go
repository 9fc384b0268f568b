package practice

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/exam-prep/backend/internal/models"
)

const (
	generateTimeout  = 30 * time.Second
	submitTimeout    = 30 * time.Second
	recomputeTimeout = 60 * time.Second
)

// MistakeRecorder is how the session engine reports wrong answers to the
// mistake tracker. Failures are logged, never surfaced to the submitter.
type MistakeRecorder interface {
	RecordMiss(ctx context.Context, userID, questionID int64) error
}

// StatsRecorder receives answer outcomes for concept proficiency tracking.
type StatsRecorder interface {
	EnqueueAnswer(userID, questionID int64, correct bool, timeTaken float64)
	RecomputeForQuestions(ctx context.Context, userID int64, questionIDs []int64) error
}

type Service struct {
	store    Store
	mistakes MistakeRecorder
	stats    StatsRecorder
}

func NewService(store Store, mistakes MistakeRecorder, stats StatsRecorder) *Service {
	return &Service{store: store, mistakes: mistakes, stats: stats}
}

// ── Config ──────────────────────────────────────────────

func (s *Service) GetConfig(ctx context.Context, userID int64) (models.PracticeConfig, error) {
	return s.store.GetPracticeConfig(ctx, userID)
}

func (s *Service) UpdateConfig(ctx context.Context, userID int64, cfg models.PracticeConfig) error {
	if cfg.Sum() != 100 {
		return fmt.Errorf("%w: percentages sum to %d, want 100", ErrConfigInvalid, cfg.Sum())
	}
	if cfg.NewTopicsPct < 0 || cfg.StrongAreasPct < 0 || cfg.MistakesPct < 0 || cfg.TimeConsumingPct < 0 {
		return fmt.Errorf("%w: percentages must be non-negative", ErrConfigInvalid)
	}
	return s.store.SavePracticeConfig(ctx, userID, cfg)
}

// ── Session Generation ──────────────────────────────────

// Generate builds a personalized session: allocate per-category targets from
// the user's config, gather candidates concurrently, deduplicate, backfill
// any shortfall from the general pool, shuffle, and persist.
func (s *Service) Generate(ctx context.Context, userID int64, req models.GenerateSessionRequest) (*models.GenerateSessionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	var cfg models.PracticeConfig
	if req.Config != nil {
		cfg = *req.Config
	} else {
		stored, err := s.store.GetPracticeConfig(ctx, userID)
		if err != nil {
			return nil, err
		}
		cfg = stored
	}

	targets, err := AllocateTargets(req.TotalQuestions, cfg)
	if err != nil {
		return nil, err
	}

	cands, err := s.selectCandidates(ctx, userID, targets)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}
	items, used := assemble(targets, cands)

	if len(items) < req.TotalQuestions {
		exclude := make([]int64, 0, len(used))
		for id := range used {
			exclude = append(exclude, id)
		}
		need := req.TotalQuestions - len(items)
		pool, err := s.store.RandomActiveQuestionIDs(ctx, exclude, need*2)
		if err != nil {
			log.Printf("WARN: fallback pool query failed for user %d: %v", userID, err)
		} else {
			items = fillFromPool(items, targets, pool, used)
		}
	}

	if len(items) == 0 {
		return nil, ErrNoQuestions
	}

	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	sessionID, err := s.store.CreateSession(ctx, userID, len(items))
	if err != nil {
		return nil, err
	}

	rows := make([]models.SessionItem, len(items))
	for i, it := range items {
		rows[i] = models.SessionItem{
			SessionID:  sessionID,
			QuestionID: it.QuestionID,
			Category:   it.Category,
			OrderIndex: i,
		}
	}
	if err := s.store.InsertSessionItems(ctx, sessionID, rows); err != nil {
		// Leave no half-built session behind.
		if delErr := s.store.DeleteSession(context.Background(), sessionID); delErr != nil {
			log.Printf("WARN: cleanup of session %d failed: %v", sessionID, delErr)
		}
		return nil, fmt.Errorf("persist session items: %w", err)
	}

	return &models.GenerateSessionResponse{
		SessionID:      sessionID,
		TotalQuestions: len(items),
		Breakdown:      breakdownOf(items),
	}, nil
}

// ── Session Submission ──────────────────────────────────

// Submit grades a batch of answers for one session. Each answer is persisted
// independently; answers for items already graded are ignored, so retrying a
// partially processed submission is safe. Mistake tracking and proficiency
// updates run as side channels that never fail the submission itself.
func (s *Service) Submit(ctx context.Context, userID, sessionID int64, req models.SubmitSessionRequest) (*models.SubmitSessionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	sess, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.SessionCompleted {
		return nil, ErrAlreadyCompleted
	}

	items, err := s.store.GetSessionItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[int64]*models.SessionItem, len(items))
	for i := range items {
		itemsByID[items[i].ID] = &items[i]
	}

	// Validate up front so a bad item id rejects the whole batch before any
	// grading happens. Duplicate item ids keep the first occurrence.
	seen := make(map[int64]bool, len(req.Answers))
	var answers []models.SubmitAnswer
	for _, a := range req.Answers {
		if _, ok := itemsByID[a.ItemID]; !ok {
			return nil, fmt.Errorf("%w: item %d not in session %d", ErrNotFound, a.ItemID, sessionID)
		}
		if seen[a.ItemID] {
			continue
		}
		seen[a.ItemID] = true
		answers = append(answers, a)
	}

	questionIDs := make([]int64, 0, len(answers))
	for _, a := range answers {
		questionIDs = append(questionIDs, itemsByID[a.ItemID].QuestionID)
	}
	questions, err := s.store.GetQuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	var results []models.AnswerResult
	var touchedQuestions []int64
	for _, a := range answers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("submit interrupted: %w", err)
		}

		item := itemsByID[a.ItemID]
		if item.IsAnswered {
			continue
		}
		q, ok := questions[item.QuestionID]
		if !ok {
			log.Printf("WARN: question %d missing for session item %d", item.QuestionID, item.ID)
			continue
		}

		skipped := a.SelectedOption == nil
		correct := false
		if !skipped {
			if !models.ValidOptions[*a.SelectedOption] {
				return nil, fmt.Errorf("%w: %q for item %d", ErrInvalidAnswer, *a.SelectedOption, a.ItemID)
			}
			correct = *a.SelectedOption == q.CorrectOption
		}

		// MarkItemAnswered only updates still-unanswered rows, so two
		// concurrent submits race on the claim and exactly one grades
		// each item. The loser's answer is dropped, not double-counted.
		claimed, err := s.store.MarkItemAnswered(ctx, item.ID, correct, skipped, a.SelectedOption, a.TimeTakenSeconds)
		if err != nil {
			return nil, err
		}
		if !claimed {
			continue
		}
		if err := s.store.RecordAnswerEvent(ctx, userID, item.QuestionID, correct, skipped, a.TimeTakenSeconds); err != nil {
			return nil, err
		}
		if err := s.store.IncrementQuestionCounters(ctx, item.QuestionID, correct); err != nil {
			log.Printf("WARN: counter update failed for question %d: %v", item.QuestionID, err)
		}

		// Skips count as misses for tracking purposes; only non-skipped
		// answers feed proficiency stats.
		if !correct {
			if err := s.mistakes.RecordMiss(ctx, userID, item.QuestionID); err != nil {
				log.Printf("WARN: mistake record failed for user %d question %d: %v", userID, item.QuestionID, err)
			}
		}
		if !skipped {
			s.stats.EnqueueAnswer(userID, item.QuestionID, correct, a.TimeTakenSeconds)
			touchedQuestions = append(touchedQuestions, item.QuestionID)
		}

		item.IsAnswered = true
		item.IsCorrect = correct
		item.IsSkipped = skipped

		results = append(results, models.AnswerResult{
			ItemID:        item.ID,
			QuestionID:    item.QuestionID,
			IsCorrect:     correct,
			IsSkipped:     skipped,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
		})
	}

	answered, correct, skippedCount := 0, 0, 0
	for i := range items {
		if !items[i].IsAnswered {
			continue
		}
		if items[i].IsSkipped {
			skippedCount++
			continue
		}
		answered++
		if items[i].IsCorrect {
			correct++
		}
	}

	if err := s.store.CompleteSession(ctx, sessionID, answered, correct); err != nil {
		return nil, err
	}

	if len(touchedQuestions) > 0 {
		go func(qids []int64) {
			rctx, rcancel := context.WithTimeout(context.Background(), recomputeTimeout)
			defer rcancel()
			if err := s.stats.RecomputeForQuestions(rctx, userID, qids); err != nil {
				log.Printf("WARN: proficiency recompute failed for user %d: %v", userID, err)
			}
		}(touchedQuestions)
	}

	accuracy := 0.0
	if answered > 0 {
		accuracy = float64(correct) / float64(answered) * 100
	}

	return &models.SubmitSessionResponse{
		Results: results,
		Summary: models.SessionSummary{
			Answered: answered,
			Correct:  correct,
			Skipped:  skippedCount,
			Accuracy: accuracy,
		},
	}, nil
}

// ── Session Queries ─────────────────────────────────────

func (s *Service) ListSessions(ctx context.Context, userID int64, page, pageSize int) (*models.SessionListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	sessions, total, err := s.store.ListSessions(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []models.PracticeSession{}
	}
	return &models.SessionListResponse{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *Service) SessionDetail(ctx context.Context, userID, sessionID int64) (*models.SessionDetailResponse, error) {
	sess, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.store.GetSessionItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]int64, 0, len(items))
	for i := range items {
		questionIDs = append(questionIDs, items[i].QuestionID)
	}
	questions, err := s.store.GetQuestionsByIDs(ctx, questionIDs)
	if err != nil {
		return nil, err
	}

	// Answers stay hidden while the session is still active so the detail
	// endpoint can't be used to peek before submitting.
	revealAnswers := sess.Status == models.SessionCompleted
	details := make([]models.SessionItemDetail, 0, len(items))
	for i := range items {
		d := models.SessionItemDetail{SessionItem: items[i]}
		if q, ok := questions[items[i].QuestionID]; ok {
			d.QuestionText = q.QuestionText
			d.OptionA = q.OptionA
			d.OptionB = q.OptionB
			d.OptionC = q.OptionC
			d.OptionD = q.OptionD
			if revealAnswers {
				d.CorrectOption = q.CorrectOption
				d.Explanation = q.Explanation
			}
		}
		details = append(details, d)
	}
	return &models.SessionDetailResponse{Session: *sess, Items: details}, nil
}
