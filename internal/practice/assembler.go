package practice

import "github.com/exam-prep/backend/internal/models"

// candidate is one selector hit: a question tagged with the category that
// sourced it.
type candidate struct {
	QuestionID int64
	Category   models.Category
}

// candidateSet holds the ordered output of all four selectors.
type candidateSet struct {
	Mistakes      []int64
	TimeConsuming []int64
	StrongAreas   []int64
	NewTopics     []int64
}

// assemble merges selector output into one list, honoring global question
// uniqueness. Selectors are consumed in fixed precedence order (mistakes →
// time-consuming → strong-area → new-topic); each contributes at most its
// target count, skipping questions already claimed. Partial fulfillment is
// expected, not an error.
func assemble(targets Targets, cands candidateSet) ([]candidate, map[int64]bool) {
	used := make(map[int64]bool)
	var items []candidate

	take := func(ids []int64, category models.Category, target int) {
		taken := 0
		for _, id := range ids {
			if taken >= target {
				break
			}
			if used[id] {
				continue
			}
			used[id] = true
			items = append(items, candidate{QuestionID: id, Category: category})
			taken++
		}
	}

	take(cands.Mistakes, models.CategoryMistake, targets.Mistakes)
	take(cands.TimeConsuming, models.CategoryTimeConsuming, targets.TimeConsuming)
	take(cands.StrongAreas, models.CategoryStrongArea, targets.StrongAreas)
	take(cands.NewTopics, models.CategoryNewTopic, targets.NewTopics)

	return items, used
}

// fillFromPool distributes fallback pool questions round-robin across the
// categories still short of their targets, in proportion to the unmet demand.
// It stops when either every shortfall is met or the pool runs out; the
// session then legitimately carries fewer questions than requested.
func fillFromPool(items []candidate, targets Targets, pool []int64, used map[int64]bool) []candidate {
	shortfalls := map[models.Category]int{
		models.CategoryMistake:       targets.Mistakes,
		models.CategoryTimeConsuming: targets.TimeConsuming,
		models.CategoryStrongArea:    targets.StrongAreas,
		models.CategoryNewTopic:      targets.NewTopics,
	}
	for _, it := range items {
		shortfalls[it.Category]--
	}

	// Fixed iteration order keeps the distribution deterministic for a
	// given pool.
	order := []models.Category{
		models.CategoryMistake,
		models.CategoryTimeConsuming,
		models.CategoryStrongArea,
		models.CategoryNewTopic,
	}

	next := 0
	for {
		assigned := false
		for _, cat := range order {
			if shortfalls[cat] <= 0 {
				continue
			}
			// Advance past pool entries already claimed.
			for next < len(pool) && used[pool[next]] {
				next++
			}
			if next >= len(pool) {
				return items
			}
			id := pool[next]
			next++
			used[id] = true
			items = append(items, candidate{QuestionID: id, Category: cat})
			shortfalls[cat]--
			assigned = true
		}
		if !assigned {
			return items
		}
	}
}

// breakdownOf counts assembled items per category.
func breakdownOf(items []candidate) models.CategoryBreakdown {
	var b models.CategoryBreakdown
	for _, it := range items {
		switch it.Category {
		case models.CategoryNewTopic:
			b.NewTopic++
		case models.CategoryStrongArea:
			b.StrongArea++
		case models.CategoryMistake:
			b.Mistake++
		case models.CategoryTimeConsuming:
			b.TimeConsuming++
		}
	}
	return b
}
