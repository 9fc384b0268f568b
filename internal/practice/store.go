package practice

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/exam-prep/backend/internal/models"
)

// Store is the data access surface the session engine builds on. The SQL
// implementation below is the production one; tests substitute an in-memory
// fake.
type Store interface {
	GetPracticeConfig(ctx context.Context, userID int64) (models.PracticeConfig, error)
	SavePracticeConfig(ctx context.Context, userID int64, cfg models.PracticeConfig) error

	UnresolvedMistakeQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	SkippedQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	AverageAnswerTime(ctx context.Context, userID int64) (float64, error)
	SlowQuestionIDs(ctx context.Context, userID int64, threshold float64, limit int) ([]int64, error)
	DueStrongConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	UnseenConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error)
	QuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error)
	ReviewQuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error)
	RandomActiveQuestionIDs(ctx context.Context, exclude []int64, limit int) ([]int64, error)

	CreateSession(ctx context.Context, userID int64, totalQuestions int) (int64, error)
	InsertSessionItems(ctx context.Context, sessionID int64, items []models.SessionItem) error
	DeleteSession(ctx context.Context, sessionID int64) error
	GetSession(ctx context.Context, sessionID, userID int64) (*models.PracticeSession, error)
	GetSessionItems(ctx context.Context, sessionID int64) ([]models.SessionItem, error)
	ListSessions(ctx context.Context, userID int64, limit, offset int) ([]models.PracticeSession, int, error)
	GetQuestionsByIDs(ctx context.Context, ids []int64) (map[int64]models.Question, error)
	MarkItemAnswered(ctx context.Context, itemID int64, isCorrect, isSkipped bool, selected *string, timeTaken float64) (bool, error)
	RecordAnswerEvent(ctx context.Context, userID, questionID int64, isCorrect, isSkipped bool, timeTaken float64) error
	IncrementQuestionCounters(ctx context.Context, questionID int64, correct bool) error
	CompleteSession(ctx context.Context, sessionID int64, answered, correct int) error
}

type SQLStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// ── Config ──────────────────────────────────────────────

func (s *SQLStore) GetPracticeConfig(ctx context.Context, userID int64) (models.PracticeConfig, error) {
	var cfg models.PracticeConfig
	err := s.db.QueryRowContext(ctx,
		`SELECT new_topics_pct, strong_areas_pct, mistakes_pct, time_consuming_pct
		 FROM practice_configs WHERE user_id = $1`,
		userID,
	).Scan(&cfg.NewTopicsPct, &cfg.StrongAreasPct, &cfg.MistakesPct, &cfg.TimeConsumingPct)
	if err == sql.ErrNoRows {
		return models.DefaultPracticeConfig, nil
	}
	if err != nil {
		return models.PracticeConfig{}, fmt.Errorf("get practice config: %w", err)
	}
	return cfg, nil
}

func (s *SQLStore) SavePracticeConfig(ctx context.Context, userID int64, cfg models.PracticeConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_configs (user_id, new_topics_pct, strong_areas_pct, mistakes_pct, time_consuming_pct)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id)
		 DO UPDATE SET new_topics_pct = $2, strong_areas_pct = $3,
		               mistakes_pct = $4, time_consuming_pct = $5, updated_at = NOW()`,
		userID, cfg.NewTopicsPct, cfg.StrongAreasPct, cfg.MistakesPct, cfg.TimeConsumingPct,
	)
	if err != nil {
		return fmt.Errorf("save practice config: %w", err)
	}
	return nil
}

// ── Candidate Queries ───────────────────────────────────

func (s *SQLStore) UnresolvedMistakeQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return s.queryIDs(ctx,
		`SELECT m.question_id
		 FROM mistake_records m
		 JOIN questions q ON q.id = m.question_id
		 WHERE m.user_id = $1 AND m.is_resolved = FALSE AND q.is_active = TRUE
		 ORDER BY m.last_attempted DESC NULLS LAST
		 LIMIT $2`,
		userID, limit)
}

func (s *SQLStore) SkippedQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return s.queryIDs(ctx,
		`SELECT e.question_id
		 FROM answer_events e
		 JOIN questions q ON q.id = e.question_id
		 WHERE e.user_id = $1 AND e.is_skipped = TRUE AND q.is_active = TRUE
		 GROUP BY e.question_id
		 ORDER BY MAX(e.answered_at) DESC
		 LIMIT $2`,
		userID, limit)
}

func (s *SQLStore) AverageAnswerTime(ctx context.Context, userID int64) (float64, error) {
	var avg float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(time_taken_seconds), 0)
		 FROM answer_events
		 WHERE user_id = $1 AND is_skipped = FALSE AND time_taken_seconds > 0`,
		userID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average answer time: %w", err)
	}
	return avg, nil
}

// SlowQuestionIDs returns questions where any recorded attempt by this user
// exceeded the given threshold, slowest attempt first. A single struggle
// flags the question even when later attempts were quick.
func (s *SQLStore) SlowQuestionIDs(ctx context.Context, userID int64, threshold float64, limit int) ([]int64, error) {
	return s.queryIDs(ctx,
		`SELECT e.question_id
		 FROM answer_events e
		 JOIN questions q ON q.id = e.question_id
		 WHERE e.user_id = $1 AND e.is_skipped = FALSE AND q.is_active = TRUE
		 GROUP BY e.question_id
		 HAVING MAX(e.time_taken_seconds) > $2
		 ORDER BY MAX(e.time_taken_seconds) DESC
		 LIMIT $3`,
		userID, threshold, limit)
}

func (s *SQLStore) DueStrongConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return s.queryIDs(ctx,
		`SELECT concept_id
		 FROM concept_stats
		 WHERE user_id = $1
		   AND proficiency_level IN ('medium', 'strong', 'mastered')
		   AND next_review_date <= CURRENT_DATE
		 ORDER BY next_review_date ASC
		 LIMIT $2`,
		userID, limit)
}

func (s *SQLStore) UnseenConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return s.queryIDs(ctx,
		`SELECT c.id
		 FROM concepts c
		 LEFT JOIN concept_stats cs ON cs.concept_id = c.id AND cs.user_id = $1
		 WHERE cs.id IS NULL OR cs.total_attempts = 0
		 ORDER BY c.id
		 LIMIT $2`,
		userID, limit)
}

// QuestionIDsForConcepts picks active questions linked to any of the given
// concepts that the user has not answered before, least-served first. This
// is the new-topic path: the whole point is unseen material.
func (s *SQLStore) QuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error) {
	return s.conceptQuestionIDs(ctx, userID, conceptIDs, limit, true)
}

// ReviewQuestionIDsForConcepts picks active questions linked to the given
// concepts without excluding ones the user has answered. Spaced-repetition
// review deliberately re-serves old material; a user only gets strong in a
// concept by answering its questions, so the new-topic exclusion would
// starve this path entirely.
func (s *SQLStore) ReviewQuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error) {
	return s.conceptQuestionIDs(ctx, userID, conceptIDs, limit, false)
}

func (s *SQLStore) conceptQuestionIDs(ctx context.Context, userID int64, conceptIDs []int64, limit int, excludeAnswered bool) ([]int64, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}

	var args []interface{}
	exclusion := ""
	if excludeAnswered {
		args = append(args, userID)
		exclusion = `AND NOT EXISTS (
		       SELECT 1 FROM answer_events e
		       WHERE e.user_id = $1 AND e.question_id = q.id
		   )`
	}
	placeholders := make([]string, len(conceptIDs))
	for i, id := range conceptIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT DISTINCT q.id, q.times_served
		 FROM questions q
		 JOIN question_concepts qc ON qc.question_id = q.id
		 WHERE q.is_active = TRUE
		   AND qc.concept_id IN (%s)
		   %s
		 ORDER BY q.times_served ASC, q.id
		 LIMIT $%d`,
		strings.Join(placeholders, ","), exclusion, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("questions for concepts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var served int
		if err := rows.Scan(&id, &served); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) RandomActiveQuestionIDs(ctx context.Context, exclude []int64, limit int) ([]int64, error) {
	var args []interface{}
	query := `SELECT id FROM questions WHERE is_active = TRUE`
	if len(exclude) > 0 {
		placeholders := make([]string, len(exclude))
		for i, id := range exclude {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, id)
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(placeholders, ","))
	}
	query += fmt.Sprintf(" ORDER BY RANDOM() LIMIT $%d", len(exclude)+1)
	args = append(args, limit)

	return s.queryIDs(ctx, query, args...)
}

// ── Session Persistence ─────────────────────────────────

func (s *SQLStore) CreateSession(ctx context.Context, userID int64, totalQuestions int) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO practice_sessions (user_id, total_questions, status)
		 VALUES ($1, $2, $3) RETURNING id`,
		userID, totalQuestions, models.SessionActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *SQLStore) InsertSessionItems(ctx context.Context, sessionID int64, items []models.SessionItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_items (session_id, question_id, category, order_index)
			 VALUES ($1, $2, $3, $4)`,
			sessionID, it.QuestionID, it.Category, it.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("insert session item: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteSession(ctx context.Context, sessionID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM practice_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SQLStore) GetSession(ctx context.Context, sessionID, userID int64) (*models.PracticeSession, error) {
	var sess models.PracticeSession
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, total_questions, status, questions_answered,
		        correct_answers, created_at, completed_at
		 FROM practice_sessions WHERE id = $1 AND user_id = $2`,
		sessionID, userID,
	).Scan(&sess.ID, &sess.UserID, &sess.TotalQuestions, &sess.Status,
		&sess.QuestionsAnswered, &sess.CorrectAnswers, &sess.CreatedAt, &sess.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *SQLStore) GetSessionItems(ctx context.Context, sessionID int64) ([]models.SessionItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, question_id, category, order_index,
		        is_answered, is_correct, is_skipped, selected_option, time_taken_seconds
		 FROM session_items WHERE session_id = $1 ORDER BY order_index`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get session items: %w", err)
	}
	defer rows.Close()

	var items []models.SessionItem
	for rows.Next() {
		var it models.SessionItem
		if err := rows.Scan(&it.ID, &it.SessionID, &it.QuestionID, &it.Category,
			&it.OrderIndex, &it.IsAnswered, &it.IsCorrect, &it.IsSkipped,
			&it.SelectedOption, &it.TimeTakenSeconds); err != nil {
			return nil, fmt.Errorf("scan session item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLStore) ListSessions(ctx context.Context, userID int64, limit, offset int) ([]models.PracticeSession, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM practice_sessions WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, total_questions, status, questions_answered,
		        correct_answers, created_at, completed_at
		 FROM practice_sessions
		 WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.PracticeSession
	for rows.Next() {
		var sess models.PracticeSession
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.TotalQuestions, &sess.Status,
			&sess.QuestionsAnswered, &sess.CorrectAnswers, &sess.CreatedAt, &sess.CompletedAt); err != nil {
			return nil, 0, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, total, rows.Err()
}

func (s *SQLStore) GetQuestionsByIDs(ctx context.Context, ids []int64) (map[int64]models.Question, error) {
	if len(ids) == 0 {
		return map[int64]models.Question{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, topic_id, question_text, option_a, option_b, option_c, option_d,
		        correct_option, explanation, is_active, times_served, times_correct, created_at
		 FROM questions WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	questions := make(map[int64]models.Question, len(ids))
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.TopicID, &q.QuestionText,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectOption, &q.Explanation, &q.IsActive,
			&q.TimesServed, &q.TimesCorrect, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions[q.ID] = q
	}
	return questions, rows.Err()
}

// MarkItemAnswered grades an item only if no one has graded it yet. The
// returned bool reports whether this call won the claim; concurrent submits
// of the same session race here and exactly one writes each item.
func (s *SQLStore) MarkItemAnswered(ctx context.Context, itemID int64, isCorrect, isSkipped bool, selected *string, timeTaken float64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE session_items
		 SET is_answered = TRUE, is_correct = $1, is_skipped = $2,
		     selected_option = $3, time_taken_seconds = $4
		 WHERE id = $5 AND is_answered = FALSE`,
		isCorrect, isSkipped, selected, timeTaken, itemID,
	)
	if err != nil {
		return false, fmt.Errorf("mark item answered: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark item answered: %w", err)
	}
	return n > 0, nil
}

func (s *SQLStore) RecordAnswerEvent(ctx context.Context, userID, questionID int64, isCorrect, isSkipped bool, timeTaken float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answer_events (user_id, question_id, is_correct, is_skipped, time_taken_seconds)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, questionID, isCorrect, isSkipped, timeTaken,
	)
	if err != nil {
		return fmt.Errorf("record answer event: %w", err)
	}
	return nil
}

func (s *SQLStore) IncrementQuestionCounters(ctx context.Context, questionID int64, correct bool) error {
	correctIncrement := 0
	if correct {
		correctIncrement = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE questions
		 SET times_served = times_served + 1, times_correct = times_correct + $1
		 WHERE id = $2`,
		correctIncrement, questionID,
	)
	if err != nil {
		return fmt.Errorf("increment question counters: %w", err)
	}
	return nil
}

func (s *SQLStore) CompleteSession(ctx context.Context, sessionID int64, answered, correct int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE practice_sessions
		 SET status = $1, questions_answered = $2, correct_answers = $3, completed_at = NOW()
		 WHERE id = $4 AND status = 'active'`,
		models.SessionCompleted, answered, correct, sessionID,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	return nil
}

func (s *SQLStore) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
