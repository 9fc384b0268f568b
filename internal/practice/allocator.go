package practice

import (
	"math"

	"github.com/exam-prep/backend/internal/models"
)

// Targets holds the exact per-category question counts for one session.
type Targets struct {
	Mistakes      int
	TimeConsuming int
	StrongAreas   int
	NewTopics     int
}

func (t Targets) Total() int {
	return t.Mistakes + t.TimeConsuming + t.StrongAreas + t.NewTopics
}

// AllocateTargets converts a percentage config and a total question count
// into exact integer targets. The three weighted categories are rounded
// individually; whatever remains after rounding goes to new-topics, so the
// four targets always sum to total regardless of rounding drift. This biases
// new-topic counts upward under non-round percentages; the skew is inherited
// behavior and deliberately left as is. When rounding pushes the three
// weighted targets past total, the overshoot is trimmed back largest-first
// so no target ever goes negative.
func AllocateTargets(total int, cfg models.PracticeConfig) (Targets, error) {
	if total <= 0 {
		return Targets{}, ErrConfigInvalid
	}
	if cfg.Sum() != 100 {
		return Targets{}, ErrConfigInvalid
	}
	if cfg.NewTopicsPct < 0 || cfg.StrongAreasPct < 0 || cfg.MistakesPct < 0 || cfg.TimeConsumingPct < 0 {
		return Targets{}, ErrConfigInvalid
	}

	t := Targets{
		Mistakes:      roundShare(total, cfg.MistakesPct),
		TimeConsuming: roundShare(total, cfg.TimeConsumingPct),
		StrongAreas:   roundShare(total, cfg.StrongAreasPct),
	}
	t.NewTopics = total - t.Mistakes - t.TimeConsuming - t.StrongAreas

	// Odd totals with half-and-half configs can round all three up past
	// total. Walk the overshoot back off the largest buckets.
	for t.NewTopics < 0 {
		switch {
		case t.Mistakes >= t.TimeConsuming && t.Mistakes >= t.StrongAreas:
			t.Mistakes--
		case t.TimeConsuming >= t.StrongAreas:
			t.TimeConsuming--
		default:
			t.StrongAreas--
		}
		t.NewTopics++
	}

	return t, nil
}

func roundShare(total, pct int) int {
	return int(math.Round(float64(total) * float64(pct) / 100.0))
}
