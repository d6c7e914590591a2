package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"

	"gorm.io/gorm"
)

type PlanRequest struct {
	Name            string `json:"name" binding:"required,max=255"`
	Description     string `json:"description"`
	Duration        int    `json:"duration" binding:"min=0"`
	QuestionsPerDay int    `json:"questionsPerDay" binding:"min=0"`
}

type TopicInput struct {
	Name        string   `json:"name" binding:"required"`
	QuestionIDs []string `json:"questionIds"`
}

type CategoryInput struct {
	Name   string       `json:"name" binding:"required"`
	Topics []TopicInput `json:"topics" binding:"dive"`
}

type CardInput struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Categories  []CategoryInput `json:"categories" binding:"dive"`
}

// StructureRequest is the whole card/category/topic tree of a plan. Element
// order in the request becomes display order.
type StructureRequest struct {
	Cards []CardInput `json:"cards" binding:"dive"`
}

type PlanService struct {
	Plans     *repository.PlanRepository
	Questions *repository.QuestionRepository
	Progress  *repository.ProgressRepository
	Loader    *PlanTreeLoader
}

func NewPlanService(plans *repository.PlanRepository, questions *repository.QuestionRepository, progress *repository.ProgressRepository, loader *PlanTreeLoader) *PlanService {
	return &PlanService{Plans: plans, Questions: questions, Progress: progress, Loader: loader}
}

func (s *PlanService) Create(creatorID uint, req PlanRequest) (*model.Plan, error) {
	p := &model.Plan{
		Name:            req.Name,
		Description:     req.Description,
		Duration:        req.Duration,
		QuestionsPerDay: req.QuestionsPerDay,
		CreatorID:       creatorID,
	}
	if err := s.Plans.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the plan definition with its structure, unresolved.
func (s *PlanService) Get(ctx context.Context, id string) (*model.Plan, error) {
	p, err := s.Plans.FindWithStructure(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPlanNotFound
	}
	return p, err
}

// Preview resolves the plan exactly as learners will see it.
func (s *PlanService) Preview(ctx context.Context, id string) (*guided.Plan, error) {
	tree, err := s.Loader.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return guided.Aggregate(tree, nil), nil
}

func (s *PlanService) List(publishedOnly bool, page, limit int) ([]model.Plan, int64, error) {
	return s.Plans.List(publishedOnly, page, limit)
}

func (s *PlanService) Update(id string, req PlanRequest) (*model.Plan, error) {
	p, err := s.find(id)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Duration = req.Duration
	p.QuestionsPerDay = req.QuestionsPerDay
	if err := s.Plans.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PlanService) SetPublished(id string, published bool) (*model.Plan, error) {
	p, err := s.find(id)
	if err != nil {
		return nil, err
	}
	p.IsPublished = published
	if err := s.Plans.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the plan, its structure and all learner progress on it in
// one transaction.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(id); err != nil {
		return err
	}

	var evict func()
	err := s.Plans.Delete(ctx, id, func(tx *gorm.DB) error {
		var err error
		evict, err = s.Progress.DeleteByPlan(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	evict()
	return nil
}

// ReplaceStructure swaps the plan's hierarchy. Every referenced question must
// exist in the bank. Learner progress is kept; cursors are clamped on read.
func (s *PlanService) ReplaceStructure(ctx context.Context, id string, req StructureRequest) (*model.Plan, error) {
	if _, err := s.find(id); err != nil {
		return nil, err
	}

	var refs []string
	for _, card := range req.Cards {
		for _, cat := range card.Categories {
			for _, topic := range cat.Topics {
				refs = append(refs, topic.QuestionIDs...)
			}
		}
	}
	bank, err := s.Questions.FindByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if _, ok := bank[ref]; !ok {
			return nil, fmt.Errorf("%w: unknown question %s", util.ErrInvalidStructure, ref)
		}
	}

	if err := s.Plans.ReplaceStructure(ctx, id, buildCards(req)); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PlanService) find(id string) (*model.Plan, error) {
	p, err := s.Plans.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPlanNotFound
	}
	return p, err
}

func buildCards(req StructureRequest) []model.PlanCard {
	cards := make([]model.PlanCard, 0, len(req.Cards))
	for ci, in := range req.Cards {
		card := model.PlanCard{
			Title:       in.Title,
			Description: in.Description,
			SortOrder:   ci,
		}
		card.ID = model.NewID()
		for gi, cin := range in.Categories {
			cat := model.PlanCategory{
				CardID:    card.ID,
				Name:      cin.Name,
				SortOrder: gi,
			}
			cat.ID = model.NewID()
			for ti, tin := range cin.Topics {
				topic := model.PlanTopic{
					CategoryID:  cat.ID,
					Name:        tin.Name,
					SortOrder:   ti,
					QuestionIDs: dedupe(tin.QuestionIDs),
				}
				topic.ID = model.NewID()
				cat.Topics = append(cat.Topics, topic)
			}
			card.Categories = append(card.Categories, cat)
		}
		cards = append(cards, card)
	}
	return cards
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
