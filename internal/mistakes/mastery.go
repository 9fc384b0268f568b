package mistakes

import (
	"fmt"
	"time"

	"github.com/exam-prep/backend/internal/models"
)

const (
	// masteryStreak is the number of consecutive correct practice attempts
	// required to master a mistake.
	masteryStreak = 3

	// reviewInterval is how far out the post-mastery review is scheduled.
	reviewInterval = 7 * 24 * time.Hour
)

// applyPractice advances the mastery state machine for one practice attempt.
// A correct answer extends the streak; at masteryStreak the record flips to
// mastered and gets a review date. Any wrong answer resets the streak and
// drops the record back to not_started. Note the asymmetry with applyRetry:
// practice never touches is_resolved, retries set it directly. The two
// pathways are intentionally kept separate.
func applyPractice(rec *models.MistakeRecord, isCorrect bool, timeTaken float64, now time.Time) {
	rec.RetryCount++
	rec.LastAttempted = &now

	if !isCorrect {
		rec.ConsecutiveCorrect = 0
		rec.MasteryStatus = models.MasteryNotStarted
		rec.NextReviewDate = nil
		return
	}

	rec.ConsecutiveCorrect++
	rec.TotalCorrect++

	// Running mean over correct attempts only; slow wrong answers say
	// nothing about how fast the user solves it once they get it.
	rec.TimeTakenAvg = rec.TimeTakenAvg + (timeTaken-rec.TimeTakenAvg)/float64(rec.TotalCorrect)

	if rec.ConsecutiveCorrect >= masteryStreak {
		rec.MasteryStatus = models.MasteryMastered
		review := now.Add(reviewInterval)
		rec.NextReviewDate = &review
	} else {
		rec.MasteryStatus = models.MasteryPracticing
	}
}

// applyRetry records a direct retry of the original question. Retries bypass
// the streak machinery entirely: the record is resolved or not based on this
// single attempt.
func applyRetry(rec *models.MistakeRecord, isCorrect bool, now time.Time) {
	rec.RetryCount++
	rec.IsResolved = isCorrect
	rec.LastAttempted = &now
}

func progressMessage(rec *models.MistakeRecord) string {
	switch rec.MasteryStatus {
	case models.MasteryMastered:
		return "Mastered! This question comes back for review in a week."
	case models.MasteryPracticing:
		remaining := masteryStreak - rec.ConsecutiveCorrect
		if remaining == 1 {
			return "One more correct answer to master this question."
		}
		return fmt.Sprintf("%d more correct answers to master this question.", remaining)
	default:
		return "Keep practicing. Three correct answers in a row masters this question."
	}
}
