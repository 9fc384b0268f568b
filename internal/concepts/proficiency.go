package concepts

import (
	"math"
	"time"

	"github.com/exam-prep/backend/internal/models"
)

// AccuracyRate returns percent correct, or 0 with no attempts.
func AccuracyRate(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// ProficiencyFor maps accuracy and attempt volume to a discrete tier. Volume
// gates each tier so a lucky 2-for-2 start does not read as mastery.
func ProficiencyFor(accuracy float64, attempts int) models.ProficiencyLevel {
	switch {
	case attempts < 2:
		return models.ProficiencyUnknown
	case accuracy >= 90 && attempts >= 10:
		return models.ProficiencyMastered
	case accuracy >= 75 && attempts >= 5:
		return models.ProficiencyStrong
	case accuracy >= 50 && attempts >= 3:
		return models.ProficiencyMedium
	case accuracy >= 25 && attempts >= 2:
		return models.ProficiencyDeveloping
	default:
		return models.ProficiencyWeak
	}
}

// ReviewBaseDays is the spaced-repetition base interval per tier. Stronger
// tiers wait longer before coming back around.
func ReviewBaseDays(level models.ProficiencyLevel) int {
	switch level {
	case models.ProficiencyMastered:
		return 30
	case models.ProficiencyStrong:
		return 14
	case models.ProficiencyMedium:
		return 7
	case models.ProficiencyDeveloping:
		return 3
	default:
		return 1
	}
}

// NextReviewDate schedules the next review: the tier's base interval plus a
// small bonus for accumulated correct answers, capped at 5 extra days.
func NextReviewDate(level models.ProficiencyLevel, correctAttempts int, now time.Time) time.Time {
	bonus := correctAttempts
	if bonus > 5 {
		bonus = 5
	}
	days := ReviewBaseDays(level) + bonus
	year, month, day := now.Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, days)
}

// ClassifyTrend compares the freshly computed accuracy against the previous
// one. Movements within the dead band of 5 points read as stable, as does a
// concept with no prior accuracy on record.
func ClassifyTrend(prev *float64, current float64) models.Trend {
	if prev == nil {
		return models.TrendStable
	}
	diff := current - *prev
	switch {
	case diff > 5:
		return models.TrendImproving
	case diff < -5:
		return models.TrendDeclining
	default:
		return models.TrendStable
	}
}

// ConfidenceScore blends accuracy with attempt volume: full weight at 20+
// attempts, half weight with near-zero history.
func ConfidenceScore(accuracy float64, attempts int) int {
	volume := float64(attempts) / 20
	if volume > 1 {
		volume = 1
	}
	score := int(math.Round(100 * (accuracy / 100) * (0.5 + 0.5*volume)))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
