package practice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/exam-prep/backend/internal/models"
)

// fakeStore is an in-memory Store for exercising the session engine without
// a database.
type fakeStore struct {
	mu sync.Mutex

	config      *models.PracticeConfig
	mistakeIDs  []int64
	skippedIDs  []int64
	avgTime     float64
	slowIDs     []int64
	strongIDs   []int64
	unseenIDs   []int64
	conceptQs   map[int64][]int64 // concept id → question ids
	answered    map[int64]bool    // question ids the user already answered
	randomIDs   []int64
	questions   map[int64]models.Question
	failInsert  bool
	selectorErr error

	sessions      map[int64]*models.PracticeSession
	items         map[int64][]models.SessionItem
	nextSession   int64
	nextItem      int64
	deleted       []int64
	answerEvents  int
	afterGetItems func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conceptQs: map[int64][]int64{},
		answered:  map[int64]bool{},
		questions: map[int64]models.Question{},
		sessions:  map[int64]*models.PracticeSession{},
		items:     map[int64][]models.SessionItem{},
	}
}

func (f *fakeStore) addQuestion(id int64, correct string) {
	f.questions[id] = models.Question{
		ID:            id,
		QuestionText:  fmt.Sprintf("question %d", id),
		OptionA:       "a", OptionB: "b", OptionC: "c", OptionD: "d",
		CorrectOption: correct,
		Explanation:   "because",
		IsActive:      true,
	}
}

func (f *fakeStore) GetPracticeConfig(ctx context.Context, userID int64) (models.PracticeConfig, error) {
	if f.config != nil {
		return *f.config, nil
	}
	return models.DefaultPracticeConfig, nil
}

func (f *fakeStore) SavePracticeConfig(ctx context.Context, userID int64, cfg models.PracticeConfig) error {
	f.config = &cfg
	return nil
}

func (f *fakeStore) UnresolvedMistakeQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if f.selectorErr != nil {
		return nil, f.selectorErr
	}
	return capIDs(f.mistakeIDs, limit), nil
}

func (f *fakeStore) SkippedQuestionIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return capIDs(f.skippedIDs, limit), nil
}

func (f *fakeStore) AverageAnswerTime(ctx context.Context, userID int64) (float64, error) {
	return f.avgTime, nil
}

func (f *fakeStore) SlowQuestionIDs(ctx context.Context, userID int64, threshold float64, limit int) ([]int64, error) {
	return capIDs(f.slowIDs, limit), nil
}

func (f *fakeStore) DueStrongConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return capIDs(f.strongIDs, limit), nil
}

func (f *fakeStore) UnseenConceptIDs(ctx context.Context, userID int64, limit int) ([]int64, error) {
	return capIDs(f.unseenIDs, limit), nil
}

func (f *fakeStore) QuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error) {
	return f.conceptQuestions(conceptIDs, limit, true), nil
}

func (f *fakeStore) ReviewQuestionIDsForConcepts(ctx context.Context, userID int64, conceptIDs []int64, limit int) ([]int64, error) {
	return f.conceptQuestions(conceptIDs, limit, false), nil
}

func (f *fakeStore) conceptQuestions(conceptIDs []int64, limit int, excludeAnswered bool) []int64 {
	var out []int64
	seen := map[int64]bool{}
	for _, cid := range conceptIDs {
		for _, qid := range f.conceptQs[cid] {
			if excludeAnswered && f.answered[qid] {
				continue
			}
			if !seen[qid] {
				seen[qid] = true
				out = append(out, qid)
			}
		}
	}
	return capIDs(out, limit)
}

func (f *fakeStore) RandomActiveQuestionIDs(ctx context.Context, exclude []int64, limit int) ([]int64, error) {
	skip := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []int64
	for _, id := range f.randomIDs {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return capIDs(out, limit), nil
}

func (f *fakeStore) CreateSession(ctx context.Context, userID int64, totalQuestions int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSession++
	f.sessions[f.nextSession] = &models.PracticeSession{
		ID:             f.nextSession,
		UserID:         userID,
		TotalQuestions: totalQuestions,
		Status:         models.SessionActive,
	}
	return f.nextSession, nil
}

func (f *fakeStore) InsertSessionItems(ctx context.Context, sessionID int64, items []models.SessionItem) error {
	if f.failInsert {
		return errors.New("disk is full")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.nextItem++
		it.ID = f.nextItem
		f.items[sessionID] = append(f.items[sessionID], it)
	}
	return nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, sessionID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	delete(f.items, sessionID)
	f.deleted = append(f.deleted, sessionID)
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, sessionID, userID int64) (*models.PracticeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (f *fakeStore) GetSessionItems(ctx context.Context, sessionID int64) ([]models.SessionItem, error) {
	f.mu.Lock()
	snapshot := append([]models.SessionItem(nil), f.items[sessionID]...)
	f.mu.Unlock()
	if f.afterGetItems != nil {
		f.afterGetItems()
	}
	return snapshot, nil
}

func (f *fakeStore) ListSessions(ctx context.Context, userID int64, limit, offset int) ([]models.PracticeSession, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PracticeSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) GetQuestionsByIDs(ctx context.Context, ids []int64) (map[int64]models.Question, error) {
	out := map[int64]models.Question{}
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeStore) MarkItemAnswered(ctx context.Context, itemID int64, isCorrect, isSkipped bool, selected *string, timeTaken float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid := range f.items {
		for i := range f.items[sid] {
			if f.items[sid][i].ID == itemID {
				if f.items[sid][i].IsAnswered {
					return false, nil
				}
				f.items[sid][i].IsAnswered = true
				f.items[sid][i].IsCorrect = isCorrect
				f.items[sid][i].IsSkipped = isSkipped
				f.items[sid][i].SelectedOption = selected
				f.items[sid][i].TimeTakenSeconds = &timeTaken
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeStore) RecordAnswerEvent(ctx context.Context, userID, questionID int64, isCorrect, isSkipped bool, timeTaken float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answerEvents++
	return nil
}

func (f *fakeStore) IncrementQuestionCounters(ctx context.Context, questionID int64, correct bool) error {
	return nil
}

func (f *fakeStore) CompleteSession(ctx context.Context, sessionID int64, answered, correct int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := f.sessions[sessionID]
	if sess.Status != models.SessionActive {
		return nil
	}
	sess.Status = models.SessionCompleted
	sess.QuestionsAnswered = answered
	sess.CorrectAnswers = correct
	return nil
}

func capIDs(ids []int64, limit int) []int64 {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

type fakeMistakes struct {
	mu     sync.Mutex
	misses []int64
}

func (m *fakeMistakes) RecordMiss(ctx context.Context, userID, questionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses = append(m.misses, questionID)
	return nil
}

type fakeStats struct {
	mu       sync.Mutex
	enqueued []int64
}

func (s *fakeStats) EnqueueAnswer(userID, questionID int64, correct bool, timeTaken float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enqueued = append(s.enqueued, questionID)
}

func (s *fakeStats) RecomputeForQuestions(ctx context.Context, userID int64, questionIDs []int64) error {
	return nil
}

func newTestService(store *fakeStore) (*Service, *fakeMistakes, *fakeStats) {
	m := &fakeMistakes{}
	st := &fakeStats{}
	return NewService(store, m, st), m, st
}

// ── Generate ────────────────────────────────────────────

func TestGenerateZeroHistoryUser(t *testing.T) {
	store := newFakeStore()
	// Brand-new user: every concept unseen, nothing else has candidates.
	store.unseenIDs = []int64{1, 2}
	store.conceptQs[1] = []int64{101, 102, 103}
	store.conceptQs[2] = []int64{104, 105, 106}
	store.randomIDs = []int64{101, 102, 103, 104, 105, 106, 107, 108}
	for id := int64(101); id <= 108; id++ {
		store.addQuestion(id, "A")
	}

	svc, _, _ := newTestService(store)
	resp, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 8})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.TotalQuestions != 8 {
		t.Errorf("total = %d, want 8", resp.TotalQuestions)
	}
	if resp.Breakdown.Total() != 8 {
		t.Errorf("breakdown total = %d, want 8", resp.Breakdown.Total())
	}
	// Only the new-topic selector had real candidates; 2 come from it and
	// the fallback pool covers the rest.
	if resp.Breakdown.NewTopic < 2 {
		t.Errorf("new topic count = %d, want at least 2", resp.Breakdown.NewTopic)
	}

	items := store.items[resp.SessionID]
	if len(items) != 8 {
		t.Fatalf("persisted %d items, want 8", len(items))
	}
	seen := map[int64]bool{}
	for _, it := range items {
		if seen[it.QuestionID] {
			t.Fatalf("question %d persisted twice", it.QuestionID)
		}
		seen[it.QuestionID] = true
	}
}

func TestGenerateBreakdownMatchesPersisted(t *testing.T) {
	store := newFakeStore()
	store.mistakeIDs = []int64{1, 2, 3}
	store.skippedIDs = []int64{3, 4} // 3 collides with mistakes
	store.strongIDs = []int64{10}
	store.conceptQs[10] = []int64{5, 6}
	store.unseenIDs = []int64{11}
	store.conceptQs[11] = []int64{7, 8}
	store.randomIDs = []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	for id := int64(1); id <= 9; id++ {
		store.addQuestion(id, "B")
	}

	svc, _, _ := newTestService(store)
	resp, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 8})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	counts := models.CategoryBreakdown{}
	for _, it := range store.items[resp.SessionID] {
		switch it.Category {
		case models.CategoryNewTopic:
			counts.NewTopic++
		case models.CategoryStrongArea:
			counts.StrongArea++
		case models.CategoryMistake:
			counts.Mistake++
		case models.CategoryTimeConsuming:
			counts.TimeConsuming++
		}
	}
	if counts != resp.Breakdown {
		t.Errorf("reported %+v, persisted %+v", resp.Breakdown, counts)
	}
}

func TestGenerateInvalidConfig(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore())
	bad := models.PracticeConfig{NewTopicsPct: 50, StrongAreasPct: 50, MistakesPct: 50, TimeConsumingPct: 50}
	_, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 10, Config: &bad})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}

	_, err = svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 0})
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("zero total: got %v, want ErrConfigInvalid", err)
	}
}

func TestGenerateNoQuestionsAnywhere(t *testing.T) {
	svc, _, _ := newTestService(newFakeStore())
	_, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 10})
	if !errors.Is(err, ErrNoQuestions) {
		t.Errorf("got %v, want ErrNoQuestions", err)
	}
}

func TestGenerateFailsWhenSelectorErrors(t *testing.T) {
	store := newFakeStore()
	store.selectorErr = errors.New("db hiccup")
	store.unseenIDs = []int64{1}
	store.conceptQs[1] = []int64{201, 202}
	store.randomIDs = []int64{201, 202, 203, 204}
	for id := int64(201); id <= 204; id++ {
		store.addQuestion(id, "C")
	}

	// A failing selector fails the whole generation rather than silently
	// producing a session that ignores the user's plan.
	svc, _, _ := newTestService(store)
	_, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 4})
	if err == nil {
		t.Fatal("expected error when a selector fails")
	}
	if !errors.Is(err, store.selectorErr) {
		t.Errorf("got %v, want wrapped %v", err, store.selectorErr)
	}
	if len(store.sessions) != 0 {
		t.Errorf("%d sessions created despite selector failure", len(store.sessions))
	}
}

func TestStrongAreaCandidatesIncludeAnsweredQuestions(t *testing.T) {
	store := newFakeStore()
	store.strongIDs = []int64{10}
	store.conceptQs[10] = []int64{51, 52}
	store.unseenIDs = []int64{11}
	store.conceptQs[11] = []int64{53, 54}
	// The user has been through all of concept 10 already; that's exactly
	// what makes it due for review.
	store.answered[51] = true
	store.answered[52] = true
	store.answered[53] = true

	svc, _, _ := newTestService(store)

	ids, err := svc.strongAreaCandidates(context.Background(), 7, 4)
	if err != nil {
		t.Fatalf("strongAreaCandidates: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("strong-area ids = %v, want [51 52]", ids)
	}

	// New topics keep the answered exclusion: only 54 is fresh.
	ids, err = svc.newTopicCandidates(context.Background(), 7, 4)
	if err != nil {
		t.Fatalf("newTopicCandidates: %v", err)
	}
	if len(ids) != 1 || ids[0] != 54 {
		t.Errorf("new-topic ids = %v, want [54]", ids)
	}
}

func TestGenerateCleansUpOnPersistFailure(t *testing.T) {
	store := newFakeStore()
	store.unseenIDs = []int64{1}
	store.conceptQs[1] = []int64{301, 302}
	store.randomIDs = []int64{301, 302}
	store.addQuestion(301, "A")
	store.addQuestion(302, "A")
	store.failInsert = true

	svc, _, _ := newTestService(store)
	_, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: 2})
	if err == nil {
		t.Fatal("expected error when item insert fails")
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted %d sessions, want 1", len(store.deleted))
	}
	if len(store.sessions) != 0 {
		t.Errorf("%d sessions left behind", len(store.sessions))
	}
}

func TestMistakeCandidatesSupplementedBySkips(t *testing.T) {
	store := newFakeStore()
	store.mistakeIDs = []int64{1, 2}
	store.skippedIDs = []int64{2, 3, 4}

	svc, _, _ := newTestService(store)
	ids, err := svc.mistakeCandidates(context.Background(), 7, 4)
	if err != nil {
		t.Fatalf("mistakeCandidates: %v", err)
	}
	// Unresolved mistakes first, skips fill the remainder without repeats.
	want := []int64{1, 2, 3}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestTimeConsumingDefaultThreshold(t *testing.T) {
	store := newFakeStore()
	store.slowIDs = []int64{9}

	svc, _, _ := newTestService(store)
	ids, err := svc.timeConsumingCandidates(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("timeConsumingCandidates: %v", err)
	}
	// No history → 60s default mean still produces a usable threshold.
	if len(ids) != 1 || ids[0] != 9 {
		t.Errorf("got %v, want [9]", ids)
	}
}

// ── Submit ──────────────────────────────────────────────

func opt(s string) *string { return &s }

func setupSession(t *testing.T, store *fakeStore, svc *Service, total int) *models.GenerateSessionResponse {
	t.Helper()
	resp, err := svc.Generate(context.Background(), 7, models.GenerateSessionRequest{TotalQuestions: total})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return resp
}

func submitStore() *fakeStore {
	store := newFakeStore()
	store.unseenIDs = []int64{1}
	store.conceptQs[1] = []int64{401, 402, 403, 404}
	store.randomIDs = []int64{401, 402, 403, 404}
	store.addQuestion(401, "A")
	store.addQuestion(402, "B")
	store.addQuestion(403, "C")
	store.addQuestion(404, "D")
	return store
}

func TestSubmitGradesAndSummarizes(t *testing.T) {
	store := submitStore()
	svc, mistakes, stats := newTestService(store)
	sess := setupSession(t, store, svc, 4)

	items := store.items[sess.SessionID]
	answers := make([]models.SubmitAnswer, 0, 4)
	for _, it := range items {
		switch it.QuestionID {
		case 401:
			answers = append(answers, models.SubmitAnswer{ItemID: it.ID, SelectedOption: opt("A"), TimeTakenSeconds: 12})
		case 402:
			answers = append(answers, models.SubmitAnswer{ItemID: it.ID, SelectedOption: opt("C"), TimeTakenSeconds: 40}) // wrong
		case 403:
			answers = append(answers, models.SubmitAnswer{ItemID: it.ID, SelectedOption: nil}) // skipped
		case 404:
			answers = append(answers, models.SubmitAnswer{ItemID: it.ID, SelectedOption: opt("D"), TimeTakenSeconds: 20})
		}
	}

	resp, err := svc.Submit(context.Background(), 7, sess.SessionID, models.SubmitSessionRequest{Answers: answers})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if resp.Summary.Answered != 3 {
		t.Errorf("answered = %d, want 3", resp.Summary.Answered)
	}
	if resp.Summary.Correct != 2 {
		t.Errorf("correct = %d, want 2", resp.Summary.Correct)
	}
	if resp.Summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", resp.Summary.Skipped)
	}
	wantAcc := 2.0 / 3.0 * 100
	if resp.Summary.Accuracy < wantAcc-0.01 || resp.Summary.Accuracy > wantAcc+0.01 {
		t.Errorf("accuracy = %f, want %f", resp.Summary.Accuracy, wantAcc)
	}
	if len(resp.Results) != 4 {
		t.Errorf("results = %d, want 4", len(resp.Results))
	}

	// Wrong and skipped answers both land in the mistake tracker.
	mistakes.mu.Lock()
	missed := map[int64]bool{}
	for _, id := range mistakes.misses {
		missed[id] = true
	}
	if len(mistakes.misses) != 2 || !missed[402] || !missed[403] {
		t.Errorf("misses = %v, want {402, 403}", mistakes.misses)
	}
	mistakes.mu.Unlock()

	// Skipped answers stay out of proficiency tracking.
	stats.mu.Lock()
	if len(stats.enqueued) != 3 {
		t.Errorf("enqueued = %v, want 3 entries", stats.enqueued)
	}
	stats.mu.Unlock()

	if store.sessions[sess.SessionID].Status != models.SessionCompleted {
		t.Error("session not completed")
	}
}

func TestSubmitAlreadyCompleted(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	if _, err := svc.Submit(context.Background(), 7, sess.SessionID, models.SubmitSessionRequest{}); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	_, err := svc.Submit(context.Background(), 7, sess.SessionID, models.SubmitSessionRequest{})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("got %v, want ErrAlreadyCompleted", err)
	}
}

func TestSubmitUnknownSessionOrItem(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	if _, err := svc.Submit(context.Background(), 7, 9999, models.SubmitSessionRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown session: got %v, want ErrNotFound", err)
	}

	// Another user's session reads as missing, not as forbidden.
	if _, err := svc.Submit(context.Background(), 8, sess.SessionID, models.SubmitSessionRequest{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign session: got %v, want ErrNotFound", err)
	}

	req := models.SubmitSessionRequest{Answers: []models.SubmitAnswer{{ItemID: 777777, SelectedOption: opt("A")}}}
	if _, err := svc.Submit(context.Background(), 7, sess.SessionID, req); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item: got %v, want ErrNotFound", err)
	}
}

func TestSubmitDuplicateAnswersKeepFirst(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	items := store.items[sess.SessionID]
	q := store.questions[items[0].QuestionID]
	req := models.SubmitSessionRequest{Answers: []models.SubmitAnswer{
		{ItemID: items[0].ID, SelectedOption: opt(q.CorrectOption), TimeTakenSeconds: 10},
		{ItemID: items[0].ID, SelectedOption: opt("A"), TimeTakenSeconds: 99},
	}}

	resp, err := svc.Submit(context.Background(), 7, sess.SessionID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if !resp.Results[0].IsCorrect {
		t.Error("first answer should win, and it was correct")
	}
	if store.answerEvents != 1 {
		t.Errorf("answer events = %d, want 1", store.answerEvents)
	}
}

func TestSubmitSkipsItemsClaimedElsewhere(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	items := store.items[sess.SessionID]
	first, second := items[0], items[1]

	// Another submit grades the first item after this one snapshots the
	// session but before it grades. The claim on is_answered keeps this
	// submit from grading it a second time.
	store.afterGetItems = func() {
		store.afterGetItems = nil
		sel := "A"
		if _, err := store.MarkItemAnswered(context.Background(), first.ID, true, false, &sel, 5); err != nil {
			t.Errorf("concurrent mark: %v", err)
		}
	}

	q2 := store.questions[second.QuestionID]
	req := models.SubmitSessionRequest{Answers: []models.SubmitAnswer{
		{ItemID: first.ID, SelectedOption: opt("A"), TimeTakenSeconds: 10},
		{ItemID: second.ID, SelectedOption: opt(q2.CorrectOption), TimeTakenSeconds: 10},
	}}
	resp, err := svc.Submit(context.Background(), 7, sess.SessionID, req)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1 (lost claim is dropped)", len(resp.Results))
	}
	if resp.Results[0].ItemID != second.ID {
		t.Errorf("graded item %d, want %d", resp.Results[0].ItemID, second.ID)
	}
	if store.answerEvents != 1 {
		t.Errorf("answer events = %d, want 1", store.answerEvents)
	}
}

func TestSubmitInvalidOption(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	items := store.items[sess.SessionID]
	req := models.SubmitSessionRequest{Answers: []models.SubmitAnswer{
		{ItemID: items[0].ID, SelectedOption: opt("E")},
	}}
	if _, err := svc.Submit(context.Background(), 7, sess.SessionID, req); !errors.Is(err, ErrInvalidAnswer) {
		t.Errorf("got %v, want ErrInvalidAnswer", err)
	}
}

func TestSessionDetailHidesAnswersUntilCompleted(t *testing.T) {
	store := submitStore()
	svc, _, _ := newTestService(store)
	sess := setupSession(t, store, svc, 2)

	detail, err := svc.SessionDetail(context.Background(), 7, sess.SessionID)
	if err != nil {
		t.Fatalf("SessionDetail: %v", err)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(detail.Items))
	}
	for _, it := range detail.Items {
		if it.OptionA == "" && it.OptionB == "" && it.OptionC == "" && it.OptionD == "" {
			t.Errorf("item %d missing question content", it.ID)
		}
		if it.CorrectOption != "" || it.Explanation != "" {
			t.Errorf("item %d leaks the answer while session is active", it.ID)
		}
	}

	items := store.items[sess.SessionID]
	req := models.SubmitSessionRequest{Answers: []models.SubmitAnswer{
		{ItemID: items[0].ID, SelectedOption: opt("A"), TimeTakenSeconds: 5},
		{ItemID: items[1].ID, SelectedOption: opt("B"), TimeTakenSeconds: 5},
	}}
	if _, err := svc.Submit(context.Background(), 7, sess.SessionID, req); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	detail, err = svc.SessionDetail(context.Background(), 7, sess.SessionID)
	if err != nil {
		t.Fatalf("SessionDetail after submit: %v", err)
	}
	for _, it := range detail.Items {
		if it.CorrectOption == "" || it.Explanation == "" {
			t.Errorf("item %d should reveal the answer once completed", it.ID)
		}
	}
}

func TestUpdateConfigValidation(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(store)

	bad := models.PracticeConfig{NewTopicsPct: 90, StrongAreasPct: 20, MistakesPct: 0, TimeConsumingPct: 0}
	if err := svc.UpdateConfig(context.Background(), 7, bad); !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("got %v, want ErrConfigInvalid", err)
	}

	negative := models.PracticeConfig{NewTopicsPct: 120, StrongAreasPct: -20, MistakesPct: 0, TimeConsumingPct: 0}
	if err := svc.UpdateConfig(context.Background(), 7, negative); !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("negative pct: got %v, want ErrConfigInvalid", err)
	}

	good := models.PracticeConfig{NewTopicsPct: 40, StrongAreasPct: 30, MistakesPct: 20, TimeConsumingPct: 10}
	if err := svc.UpdateConfig(context.Background(), 7, good); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	got, _ := svc.GetConfig(context.Background(), 7)
	if got != good {
		t.Errorf("stored config = %+v, want %+v", got, good)
	}
}
