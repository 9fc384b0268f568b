package concepts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/exam-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ConceptIDsForQuestions(ctx context.Context, questionIDs []int64) ([]int64, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(questionIDs))
	args := make([]interface{}, len(questionIDs))
	for i, id := range questionIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT concept_id FROM question_concepts
		 WHERE question_id IN (%s)`, strings.Join(placeholders, ",")),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("concepts for questions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan concept id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BumpRealtime folds one answer into the raw counters in a single upsert, so
// concurrent answers never lose increments. Derived fields (tier, trend,
// confidence, review date) are left for the batch recompute.
func (s *Store) BumpRealtime(ctx context.Context, userID, conceptID int64, correct bool, timeTaken float64) error {
	correctIncrement := 0
	if correct {
		correctIncrement = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO concept_stats (user_id, concept_id, total_attempts, correct_attempts, avg_time_seconds, last_practiced)
		 VALUES ($1, $2, 1, $3, $4, NOW())
		 ON CONFLICT (user_id, concept_id)
		 DO UPDATE SET
		     total_attempts   = concept_stats.total_attempts + 1,
		     correct_attempts = concept_stats.correct_attempts + $3,
		     avg_time_seconds = (concept_stats.avg_time_seconds * concept_stats.total_attempts + $4)
		                        / (concept_stats.total_attempts + 1),
		     last_practiced   = NOW()`,
		userID, conceptID, correctIncrement, timeTaken,
	)
	if err != nil {
		return fmt.Errorf("bump concept counters: %w", err)
	}
	return nil
}

// RecomputeStat derives tier, confidence, trend, and next review date from
// the raw counters. The row lock keeps overlapping batch recomputes from
// interleaving their reads and writes.
func (s *Store) RecomputeStat(ctx context.Context, userID, conceptID int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var total, correct int
	var prevAccuracy *float64
	err = tx.QueryRowContext(ctx,
		`SELECT total_attempts, correct_attempts, accuracy_rate
		 FROM concept_stats
		 WHERE user_id = $1 AND concept_id = $2
		 FOR UPDATE`,
		userID, conceptID,
	).Scan(&total, &correct, &prevAccuracy)
	if err == sql.ErrNoRows {
		// Nothing recorded yet; the realtime path creates the row first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("load concept stat: %w", err)
	}

	accuracy := AccuracyRate(correct, total)
	level := ProficiencyFor(accuracy, total)
	trend := ClassifyTrend(prevAccuracy, accuracy)
	confidence := ConfidenceScore(accuracy, total)
	nextReview := NextReviewDate(level, correct, now)

	_, err = tx.ExecContext(ctx,
		`UPDATE concept_stats
		 SET accuracy_rate = $1, proficiency_level = $2, recent_trend = $3,
		     confidence_score = $4, next_review_date = $5
		 WHERE user_id = $6 AND concept_id = $7`,
		accuracy, level, trend, confidence, nextReview, userID, conceptID,
	)
	if err != nil {
		return fmt.Errorf("update concept stat: %w", err)
	}
	return tx.Commit()
}

func (s *Store) ListStats(ctx context.Context, userID int64) ([]models.ConceptStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cs.id, cs.user_id, cs.concept_id, c.name, cs.total_attempts,
		        cs.correct_attempts, cs.avg_time_seconds, cs.accuracy_rate,
		        cs.proficiency_level, cs.next_review_date, cs.confidence_score,
		        cs.recent_trend, cs.last_practiced
		 FROM concept_stats cs
		 JOIN concepts c ON c.id = cs.concept_id
		 WHERE cs.user_id = $1
		 ORDER BY cs.confidence_score ASC, c.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list concept stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ConceptStat
	for rows.Next() {
		var st models.ConceptStat
		if err := rows.Scan(&st.ID, &st.UserID, &st.ConceptID, &st.ConceptName,
			&st.TotalAttempts, &st.CorrectAttempts, &st.AvgTimeSeconds, &st.AccuracyRate,
			&st.Proficiency, &st.NextReviewDate, &st.ConfidenceScore,
			&st.RecentTrend, &st.LastPracticed); err != nil {
			return nil, fmt.Errorf("scan concept stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
