package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/event"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/monitoring"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

type PlanLoader interface {
	Load(ctx context.Context, planID string) (*guided.Plan, error)
}

type ProgressStore interface {
	Load(ctx context.Context, userID uint, planID string) (*model.ProgressRecord, error)
	Save(ctx context.Context, userID uint, planID string, rec *model.ProgressRecord) error
	ListByUser(ctx context.Context, userID uint) ([]*model.ProgressRecord, error)
}

// GuidedLearningService tracks a learner's walk through a plan.
type GuidedLearningService struct {
	Loader PlanLoader
	Store  ProgressStore
	Events event.Publisher

	mu     sync.RWMutex
	policy guided.Policy
}

func NewGuidedLearningService(loader PlanLoader, store ProgressStore, events event.Publisher, policy guided.Policy) *GuidedLearningService {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &GuidedLearningService{
		Loader: loader,
		Store:  store,
		Events: events,
		policy: policy,
	}
}

func (s *GuidedLearningService) Policy() guided.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

func (s *GuidedLearningService) SetPolicy(p guided.Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
}

// PlanDetail is a plan annotated with one learner's progress.
type PlanDetail struct {
	Plan     *guided.Plan          `json:"plan"`
	Progress *model.ProgressRecord `json:"progress"`
	Cursor   guided.Cursor         `json:"cursor"`
	Current  *guided.Question      `json:"currentQuestion,omitempty"`
	Started  bool                  `json:"started"`
}

type SubmitAnswerRequest struct {
	QuestionID        string   `json:"questionId" binding:"required"`
	SelectedOptionIDs []string `json:"selectedOptionIds"`
	// Used when no options are sent, e.g. the client graded the answer itself.
	IsCorrect *bool `json:"isCorrect"`
}

type SubmitResult struct {
	QuestionID        string                `json:"questionId"`
	Correct           bool                  `json:"correct"`
	Completed         bool                  `json:"completed"`
	CorrectOptionIDs  []string              `json:"correctOptionIds"`
	Progress          guided.Counts         `json:"progress"`
	Cursor            guided.Cursor         `json:"cursor"`
	Next              *guided.Question      `json:"nextQuestion,omitempty"`
	TopicCompleted    bool                  `json:"topicCompleted"`
	CategoryCompleted bool                  `json:"categoryCompleted"`
	CardCompleted     bool                  `json:"cardCompleted"`
	PlanCompleted     bool                  `json:"planCompleted"`
	Record            *model.ProgressRecord `json:"record"`
}

type PlanSummary struct {
	PlanID      string        `json:"planId"`
	Name        string        `json:"name"`
	Progress    guided.Counts `json:"progress"`
	Percent     float64       `json:"percent"`
	Status      guided.Status `json:"status"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

func (s *GuidedLearningService) loadPublished(ctx context.Context, planID string) (*guided.Plan, error) {
	tree, err := s.Loader.Load(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !tree.Published {
		return nil, util.ErrPlanNotPublished
	}
	return tree, nil
}

// GetPlanDetail never fails because of the progress store; unreadable
// progress is shown as none.
func (s *GuidedLearningService) GetPlanDetail(ctx context.Context, userID uint, planID string) (*PlanDetail, error) {
	tree, err := s.loadPublished(ctx, planID)
	if err != nil {
		return nil, err
	}

	rec, err := s.Store.Load(ctx, userID, planID)
	if err != nil {
		logger.Log.Warn("progress unavailable, showing plan without progress",
			zap.Uint("userID", userID),
			zap.String("planID", planID),
			zap.Error(err),
		)
		monitoring.ProgressFallbacks.WithLabelValues("store_unavailable").Inc()
		rec = nil
	}
	return buildDetail(tree, rec), nil
}

// StartPlan creates the learner's record at the first answerable question.
// An existing record is returned untouched.
func (s *GuidedLearningService) StartPlan(ctx context.Context, userID uint, planID string) (*PlanDetail, error) {
	tree, err := s.loadPublished(ctx, planID)
	if err != nil {
		return nil, err
	}

	rec, err := s.Store.Load(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return buildDetail(tree, rec), nil
	}

	rec = freshRecord(tree)
	if err := s.Store.Save(ctx, userID, planID, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, event.PlanStarted, map[string]interface{}{
		"userId": userID,
		"planId": planID,
	})
	return buildDetail(tree, rec), nil
}

func (s *GuidedLearningService) SubmitAnswer(ctx context.Context, userID uint, planID string, req SubmitAnswerRequest) (*SubmitResult, error) {
	tree, err := s.loadPublished(ctx, planID)
	if err != nil {
		return nil, err
	}

	pos, ok := guided.Locate(tree, req.QuestionID)
	if !ok {
		return nil, guided.ErrQuestionNotInPlan
	}
	q := tree.Question(pos)
	if !q.Answerable() {
		return nil, fmt.Errorf("%w: question %s has no options", util.ErrInvalidQuestion, q.ID)
	}

	correct := false
	switch {
	case len(req.SelectedOptionIDs) > 0:
		correct = q.Correct(req.SelectedOptionIDs)
	case req.IsCorrect != nil:
		correct = *req.IsCorrect
	}

	// A failed read must not be mistaken for "no progress" here, or the
	// save below would wipe the stored record.
	rec, err := s.Store.Load(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = freshRecord(tree)
	}

	completed := guided.NewSet(rec.CompletedQuestions...)
	before := guided.Aggregate(tree, completed)
	from := guided.Cursor{Status: guided.StatusInProgress, Position: rec.CurrentPosition}

	next, step, err := guided.Submit(tree, from, completed, guided.Answer{QuestionID: q.ID, Correct: correct}, s.Policy())
	if err != nil {
		return nil, err
	}

	aggregated := guided.Aggregate(tree, next)
	rollup := guided.Derive(aggregated)
	rec.CompletedQuestions = next.Slice()
	rec.CompletedTopics = rollup.Topics
	rec.CompletedCategories = rollup.Categories
	rec.CompletedCards = rollup.Cards
	rec.CurrentPosition = step.Cursor.Position
	rec.LastUpdated = time.Now().UTC()

	if err := s.Store.Save(ctx, userID, planID, rec); err != nil {
		return nil, err
	}

	finished := finishedLevels(before, aggregated, pos)
	monitoring.AnswersSubmitted.WithLabelValues(strconv.FormatBool(correct)).Inc()
	s.publish(ctx, event.AnswerSubmitted, map[string]interface{}{
		"userId":     userID,
		"planId":     planID,
		"questionId": q.ID,
		"correct":    correct,
	})
	if finished.Has(guided.BoundaryPlan) {
		monitoring.PlansCompleted.Inc()
		s.publish(ctx, event.PlanCompleted, map[string]interface{}{
			"userId": userID,
			"planId": planID,
		})
	}

	return &SubmitResult{
		QuestionID:        q.ID,
		Correct:           correct,
		Completed:         next.Has(q.ID),
		CorrectOptionIDs:  correctOptionIDs(q),
		Progress:          aggregated.Progress,
		Cursor:            step.Cursor,
		Next:              withoutAnswers(step.Current),
		TopicCompleted:    finished.Has(guided.BoundaryTopic),
		CategoryCompleted: finished.Has(guided.BoundaryCategory),
		CardCompleted:     finished.Has(guided.BoundaryCard),
		PlanCompleted:     finished.Has(guided.BoundaryPlan),
		Record:            rec,
	}, nil
}

// ResetPlan clears every completed question and puts the cursor back at the
// start. Unpublished plans can still be reset.
func (s *GuidedLearningService) ResetPlan(ctx context.Context, userID uint, planID string) (*PlanDetail, error) {
	tree, err := s.Loader.Load(ctx, planID)
	if err != nil {
		return nil, err
	}

	rec := freshRecord(tree)
	if err := s.Store.Save(ctx, userID, planID, rec); err != nil {
		return nil, err
	}
	s.publish(ctx, event.PlanReset, map[string]interface{}{
		"userId": userID,
		"planId": planID,
	})
	return buildDetail(tree, rec), nil
}

// ListMyPlans summarises every plan the learner has progress on. Plans that
// were deleted since are skipped.
func (s *GuidedLearningService) ListMyPlans(ctx context.Context, userID uint) ([]PlanSummary, error) {
	recs, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]PlanSummary, 0, len(recs))
	for _, rec := range recs {
		tree, err := s.Loader.Load(ctx, rec.PlanID)
		if errors.Is(err, util.ErrPlanNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		d := buildDetail(tree, rec)
		pct, _ := d.Plan.Progress.Percent()
		out = append(out, PlanSummary{
			PlanID:      tree.ID,
			Name:        tree.Name,
			Progress:    d.Plan.Progress,
			Percent:     pct,
			Status:      d.Cursor.Status,
			LastUpdated: rec.LastUpdated,
		})
	}
	return out, nil
}

func (s *GuidedLearningService) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.Events.Publish(ctx, eventType, payload); err != nil {
		logger.Log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func freshRecord(tree *guided.Plan) *model.ProgressRecord {
	rec := model.NewProgressRecord(tree.ID)
	rec.CurrentPosition = guided.Advance(tree, guided.Reset(), nil).Cursor.Position
	return rec
}

func buildDetail(tree *guided.Plan, rec *model.ProgressRecord) *PlanDetail {
	d := &PlanDetail{Started: rec != nil}
	if rec == nil {
		rec = freshRecord(tree)
	}

	completed := guided.NewSet(rec.CompletedQuestions...)
	d.Plan = hideAnswers(guided.Aggregate(tree, completed))

	// Rollups are derived data; recompute them instead of trusting the blob.
	rollup := guided.Derive(d.Plan)
	view := *rec
	view.CompletedTopics = rollup.Topics
	view.CompletedCategories = rollup.Categories
	view.CompletedCards = rollup.Cards
	d.Progress = &view

	step := guided.Advance(d.Plan, guided.Cursor{Status: guided.StatusInProgress, Position: rec.CurrentPosition}, completed)
	d.Cursor = step.Cursor
	d.Current = step.Current
	return d
}

func planDone(aggregated *guided.Plan) bool {
	return aggregated.Progress.TotalCount > 0 && aggregated.Progress.Done()
}

// finishedLevels reports which of the levels holding the question at pos went
// from open to done between the two aggregated trees.
func finishedLevels(before, after *guided.Plan, pos guided.Position) guided.Boundary {
	var b guided.Boundary
	turned := func(was, now guided.Counts) bool { return !was.Done() && now.Done() }

	bCard, aCard := &before.Cards[pos.CardIndex], &after.Cards[pos.CardIndex]
	bCat, aCat := &bCard.Categories[pos.CategoryIndex], &aCard.Categories[pos.CategoryIndex]
	bTopic, aTopic := &bCat.Topics[pos.TopicIndex], &aCat.Topics[pos.TopicIndex]

	if turned(bTopic.Progress, aTopic.Progress) {
		b |= guided.BoundaryTopic
	}
	if turned(bCat.Progress, aCat.Progress) {
		b |= guided.BoundaryCategory
	}
	if turned(bCard.Progress, aCard.Progress) {
		b |= guided.BoundaryCard
	}
	if !planDone(before) && planDone(after) {
		b |= guided.BoundaryPlan
	}
	return b
}

func correctOptionIDs(q *guided.Question) []string {
	ids := []string{}
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// hideAnswers clears IsCorrect on every option of the (already copied) tree.
func hideAnswers(p *guided.Plan) *guided.Plan {
	for ci := range p.Cards {
		for gi := range p.Cards[ci].Categories {
			for ti := range p.Cards[ci].Categories[gi].Topics {
				qs := p.Cards[ci].Categories[gi].Topics[ti].Questions
				for qi := range qs {
					qs[qi] = *withoutAnswers(&qs[qi])
				}
			}
		}
	}
	return p
}

func withoutAnswers(q *guided.Question) *guided.Question {
	if q == nil {
		return nil
	}
	out := *q
	out.Options = make([]guided.Option, len(q.Options))
	for i, o := range q.Options {
		out.Options[i] = guided.Option{ID: o.ID, Text: o.Text}
	}
	return &out
}
