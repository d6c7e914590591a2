package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/guided"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"interview_prep_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlanTreeLoader materialises a plan definition and its question bank
// entries into a guided.Plan.
type PlanTreeLoader struct {
	Plans     *repository.PlanRepository
	Questions *repository.QuestionRepository
}

func NewPlanTreeLoader(plans *repository.PlanRepository, questions *repository.QuestionRepository) *PlanTreeLoader {
	return &PlanTreeLoader{Plans: plans, Questions: questions}
}

// Load returns util.ErrPlanNotFound for an unknown id. Question ids that do
// not resolve to an active question are left out of the tree.
func (l *PlanTreeLoader) Load(ctx context.Context, planID string) (*guided.Plan, error) {
	ctx, span := tracing.Tracer.Start(ctx, "plan_tree.load")
	defer span.End()

	p, err := l.Plans.FindWithStructure(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPlanNotFound
	}
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: load plan %s: %v", util.ErrStoreUnavailable, planID, err)
	}

	bank, err := l.Questions.FindByIDs(ctx, referencedQuestionIDs(p))
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, fmt.Errorf("%w: load questions of plan %s: %v", util.ErrStoreUnavailable, planID, err)
	}

	tree, dropped := buildTree(p, bank)
	if dropped > 0 {
		logger.Log.Debug("plan references missing questions",
			zap.String("planID", planID),
			zap.Int("dropped", dropped),
		)
	}
	return tree, nil
}

func referencedQuestionIDs(p *model.Plan) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, card := range p.Cards {
		for _, cat := range card.Categories {
			for _, topic := range cat.Topics {
				for _, id := range topic.QuestionIDs {
					if !seen[id] {
						seen[id] = true
						ids = append(ids, id)
					}
				}
			}
		}
	}
	return ids
}

func buildTree(p *model.Plan, bank map[string]*model.Question) (*guided.Plan, int) {
	dropped := 0
	tree := &guided.Plan{
		ID:              p.ID,
		Name:            p.Name,
		Duration:        p.Duration,
		QuestionsPerDay: p.QuestionsPerDay,
		Published:       p.IsPublished,
		Cards:           make([]guided.Card, 0, len(p.Cards)),
	}

	for _, card := range p.Cards {
		gc := guided.Card{
			ID:         card.ID,
			Title:      card.Title,
			Order:      card.SortOrder,
			Categories: make([]guided.Category, 0, len(card.Categories)),
		}
		for _, cat := range card.Categories {
			gcat := guided.Category{
				ID:     cat.ID,
				Name:   cat.Name,
				Order:  cat.SortOrder,
				Topics: make([]guided.Topic, 0, len(cat.Topics)),
			}
			for _, topic := range cat.Topics {
				gt := guided.Topic{
					ID:        topic.ID,
					Name:      topic.Name,
					Order:     topic.SortOrder,
					Questions: make([]guided.Question, 0, len(topic.QuestionIDs)),
				}
				inTopic := make(map[string]bool, len(topic.QuestionIDs))
				for _, id := range topic.QuestionIDs {
					q, ok := bank[id]
					if !ok || !q.IsActive || inTopic[id] {
						dropped++
						continue
					}
					inTopic[id] = true
					gt.Questions = append(gt.Questions, q.ToGuided())
				}
				gcat.Topics = append(gcat.Topics, gt)
			}
			gc.Categories = append(gc.Categories, gcat)
		}
		tree.Cards = append(tree.Cards, gc)
	}
	return tree, dropped
}
