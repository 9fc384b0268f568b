package concepts

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	aggregatorQueueSize = 256
	aggregatorWorkers   = 4
	bumpTimeout         = 10 * time.Second
)

type answerJob struct {
	userID     int64
	questionID int64
	correct    bool
	timeTaken  float64
}

// Aggregator keeps per-concept counters current without blocking answer
// submission. Answers are handed off to a small worker pool; if the queue is
// full the update is dropped with a warning, and the next batch recompute
// still sees the answer through the event log.
type Aggregator struct {
	store *Store
	jobs  chan answerJob
	wg    sync.WaitGroup
}

func NewAggregator(store *Store) *Aggregator {
	return &Aggregator{
		store: store,
		jobs:  make(chan answerJob, aggregatorQueueSize),
	}
}

// Start launches the worker pool. Workers drain the queue until ctx is
// canceled; Stop waits for in-flight jobs to finish.
func (a *Aggregator) Start(ctx context.Context) {
	for i := 0; i < aggregatorWorkers; i++ {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-a.jobs:
					a.process(job)
				}
			}
		}()
	}
	log.Printf("[concepts] aggregator started with %d workers", aggregatorWorkers)
}

func (a *Aggregator) Stop() {
	a.wg.Wait()
}

// EnqueueAnswer hands one graded answer to the pool. Never blocks.
func (a *Aggregator) EnqueueAnswer(userID, questionID int64, correct bool, timeTaken float64) {
	select {
	case a.jobs <- answerJob{userID: userID, questionID: questionID, correct: correct, timeTaken: timeTaken}:
	default:
		log.Printf("WARN: concept aggregator queue full, dropping update for user %d question %d", userID, questionID)
	}
}

func (a *Aggregator) process(job answerJob) {
	ctx, cancel := context.WithTimeout(context.Background(), bumpTimeout)
	defer cancel()

	conceptIDs, err := a.store.ConceptIDsForQuestions(ctx, []int64{job.questionID})
	if err != nil {
		log.Printf("WARN: concept lookup failed for question %d: %v", job.questionID, err)
		return
	}
	for _, cid := range conceptIDs {
		if err := a.store.BumpRealtime(ctx, job.userID, cid, job.correct, job.timeTaken); err != nil {
			log.Printf("WARN: concept counter update failed for user %d concept %d: %v", job.userID, cid, err)
		}
	}
}

// RecomputeForQuestions refreshes derived stats for every concept touched by
// the given questions. Called in the background after session submission.
func (a *Aggregator) RecomputeForQuestions(ctx context.Context, userID int64, questionIDs []int64) error {
	conceptIDs, err := a.store.ConceptIDsForQuestions(ctx, questionIDs)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, cid := range conceptIDs {
		if err := a.store.RecomputeStat(ctx, userID, cid, now); err != nil {
			return err
		}
	}
	return nil
}
