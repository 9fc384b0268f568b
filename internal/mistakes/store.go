package mistakes

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/exam-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordMiss creates or refreshes the mistake record for a wrong answer.
// A repeat miss on an already-tracked question just bumps last_attempted;
// the streak reset happens through the practice pathway.
func (s *Store) RecordMiss(ctx context.Context, userID, questionID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mistake_records (user_id, question_id, last_attempted)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (user_id, question_id)
		 DO UPDATE SET last_attempted = NOW()`,
		userID, questionID,
	)
	if err != nil {
		return fmt.Errorf("record miss: %w", err)
	}
	return nil
}

// UpdateRecord loads the record under a row lock, applies fn, and writes the
// result back in the same transaction. Concurrent attempts on the same
// mistake serialize here instead of clobbering each other's streaks.
func (s *Store) UpdateRecord(ctx context.Context, mistakeID, userID int64, fn func(*models.MistakeRecord)) (*models.MistakeRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var rec models.MistakeRecord
	err = tx.QueryRowContext(ctx,
		`SELECT id, user_id, question_id, retry_count, consecutive_correct, total_correct,
		        mastery_status, next_review_date, last_attempted, time_taken_avg, is_resolved, created_at
		 FROM mistake_records
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		mistakeID, userID,
	).Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.RetryCount, &rec.ConsecutiveCorrect,
		&rec.TotalCorrect, &rec.MasteryStatus, &rec.NextReviewDate, &rec.LastAttempted,
		&rec.TimeTakenAvg, &rec.IsResolved, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load mistake record: %w", err)
	}

	fn(&rec)

	_, err = tx.ExecContext(ctx,
		`UPDATE mistake_records
		 SET retry_count = $1, consecutive_correct = $2, total_correct = $3,
		     mastery_status = $4, next_review_date = $5, last_attempted = $6,
		     time_taken_avg = $7, is_resolved = $8
		 WHERE id = $9`,
		rec.RetryCount, rec.ConsecutiveCorrect, rec.TotalCorrect,
		rec.MasteryStatus, rec.NextReviewDate, rec.LastAttempted,
		rec.TimeTakenAvg, rec.IsResolved, rec.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update mistake record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit mistake update: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListMistakes(ctx context.Context, userID int64, resolved *bool, limit, offset int) ([]models.MistakeRecord, int, error) {
	var total int
	var err error
	if resolved != nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM mistake_records WHERE user_id = $1 AND is_resolved = $2`,
			userID, *resolved,
		).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM mistake_records WHERE user_id = $1`, userID,
		).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count mistakes: %w", err)
	}

	selectCols := `id, user_id, question_id, retry_count, consecutive_correct, total_correct,
	        mastery_status, next_review_date, last_attempted, time_taken_avg, is_resolved, created_at`

	var rows *sql.Rows
	if resolved != nil {
		rows, err = s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT %s FROM mistake_records
			 WHERE user_id = $1 AND is_resolved = $2
			 ORDER BY last_attempted DESC NULLS LAST LIMIT $3 OFFSET $4`, selectCols),
			userID, *resolved, limit, offset,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			fmt.Sprintf(`SELECT %s FROM mistake_records
			 WHERE user_id = $1
			 ORDER BY last_attempted DESC NULLS LAST LIMIT $2 OFFSET $3`, selectCols),
			userID, limit, offset,
		)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list mistakes: %w", err)
	}
	defer rows.Close()

	var records []models.MistakeRecord
	for rows.Next() {
		var rec models.MistakeRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.QuestionID, &rec.RetryCount,
			&rec.ConsecutiveCorrect, &rec.TotalCorrect, &rec.MasteryStatus,
			&rec.NextReviewDate, &rec.LastAttempted, &rec.TimeTakenAvg,
			&rec.IsResolved, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan mistake record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
