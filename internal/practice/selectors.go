package practice

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Over-fetch multipliers. Candidates collide across categories and get
// deduplicated at assembly, so each selector pulls more than its target.
const (
	mistakeOverFetch   = 3
	timeOverFetch      = 2
	strongOverFetch    = 2
	newTopicOverFetch  = 2
	slowTimeMultiplier = 1.5
)

// defaultMeanSeconds stands in for the user's mean answer time before any
// history exists.
const defaultMeanSeconds = 60.0

// selectCandidates runs the four category selectors concurrently and collects
// their output. Any selector failure fails the whole generation; a session
// built from a partial picture would silently misrepresent the user's plan.
func (s *Service) selectCandidates(ctx context.Context, userID int64, targets Targets) (candidateSet, error) {
	var cands candidateSet
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ids, err := s.mistakeCandidates(gctx, userID, targets.Mistakes*mistakeOverFetch)
		if err != nil {
			return fmt.Errorf("mistake selector: %w", err)
		}
		cands.Mistakes = ids
		return nil
	})

	g.Go(func() error {
		ids, err := s.timeConsumingCandidates(gctx, userID, targets.TimeConsuming*timeOverFetch)
		if err != nil {
			return fmt.Errorf("time-consuming selector: %w", err)
		}
		cands.TimeConsuming = ids
		return nil
	})

	g.Go(func() error {
		ids, err := s.strongAreaCandidates(gctx, userID, targets.StrongAreas*strongOverFetch)
		if err != nil {
			return fmt.Errorf("strong-area selector: %w", err)
		}
		cands.StrongAreas = ids
		return nil
	})

	g.Go(func() error {
		ids, err := s.newTopicCandidates(gctx, userID, targets.NewTopics*newTopicOverFetch)
		if err != nil {
			return fmt.Errorf("new-topic selector: %w", err)
		}
		cands.NewTopics = ids
		return nil
	})

	if err := g.Wait(); err != nil {
		return candidateSet{}, err
	}
	return cands, nil
}

// mistakeCandidates pulls the user's unresolved mistakes, most recently
// attempted first. When there are too few, previously skipped questions top
// up the list; a question the user bailed on is the next best struggle signal
// after one they got wrong.
func (s *Service) mistakeCandidates(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := s.store.UnresolvedMistakeQuestionIDs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) >= limit {
		return ids, nil
	}

	skipped, err := s.store.SkippedQuestionIDs(ctx, userID, limit-len(ids))
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	for _, id := range skipped {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// timeConsumingCandidates finds questions the user answers noticeably slower
// than their personal average, slowest first. A user with no timing history
// gets the 60-second default mean.
func (s *Service) timeConsumingCandidates(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	avg, err := s.store.AverageAnswerTime(ctx, userID)
	if err != nil {
		return nil, err
	}
	if avg == 0 {
		avg = defaultMeanSeconds
	}
	return s.store.SlowQuestionIDs(ctx, userID, avg*slowTimeMultiplier, limit)
}

// strongAreaCandidates serves spaced-repetition reviews: questions tied to
// concepts the user is strong in whose review date has come due. Reviews
// re-serve questions the user has answered before; excluding answered
// material here would leave mature users with nothing to review.
func (s *Service) strongAreaCandidates(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	conceptIDs, err := s.store.DueStrongConceptIDs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	return s.store.ReviewQuestionIDsForConcepts(ctx, userID, conceptIDs, limit)
}

// newTopicCandidates picks unanswered questions from concepts the user has
// never practiced. For a brand-new user every concept is unseen, so this
// selector alone can seed a first session.
func (s *Service) newTopicCandidates(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if limit <= 0 {
		return nil, nil
	}

	conceptIDs, err := s.store.UnseenConceptIDs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(conceptIDs) == 0 {
		return nil, nil
	}
	return s.store.QuestionIDsForConcepts(ctx, userID, conceptIDs, limit)
}
