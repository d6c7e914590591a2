package service

import (
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

type QuestionRequest struct {
	Title       string                 `json:"title" binding:"required,max=255"`
	Content     string                 `json:"content"`
	Type        string                 `json:"type" binding:"required,oneof=multiple-choice true-false open-ended code"`
	Category    string                 `json:"category" binding:"max=100"`
	Difficulty  string                 `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced"`
	Options     []model.QuestionOption `json:"options"`
	Explanation string                 `json:"explanation"`
	Points      int                    `json:"points" binding:"min=0"`
	Tags        []string               `json:"tags"`
	IsActive    *bool                  `json:"isActive"`
}

type QuestionService struct {
	Repo *repository.QuestionRepository
}

func NewQuestionService(repo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{Repo: repo}
}

func (s *QuestionService) Create(req QuestionRequest) (*model.Question, error) {
	q := &model.Question{IsActive: true}
	applyQuestionRequest(q, req)
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionService) Get(id string) (*model.Question, error) {
	q, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) List(f repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	return s.Repo.List(f, page, limit)
}

// ListPublic returns active questions with answers and explanations removed.
func (s *QuestionService) ListPublic(f repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	f.ActiveOnly = true
	qs, total, err := s.Repo.List(f, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range qs {
		qs[i].Explanation = ""
		opts := make([]model.QuestionOption, len(qs[i].Options))
		for j, o := range qs[i].Options {
			opts[j] = model.QuestionOption{ID: o.ID, Text: o.Text}
		}
		qs[i].Options = opts
	}
	return qs, total, nil
}

func (s *QuestionService) Update(id string, req QuestionRequest) (*model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	applyQuestionRequest(q, req)
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes the question from the bank. Plans that still reference it
// simply stop showing it.
func (s *QuestionService) Delete(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.Repo.Delete(id)
}

func applyQuestionRequest(q *model.Question, req QuestionRequest) {
	q.Title = strings.TrimSpace(req.Title)
	q.Content = req.Content
	q.Type = req.Type
	q.Category = req.Category
	q.Difficulty = req.Difficulty
	q.Options = req.Options
	q.Explanation = req.Explanation
	q.Points = req.Points
	q.Tags = req.Tags
	if req.IsActive != nil {
		q.IsActive = *req.IsActive
	}
}

// validateQuestion normalises defaults and checks the option rules of each
// question type.
func validateQuestion(q *model.Question) error {
	if q.Title == "" {
		return fmt.Errorf("%w: title is required", util.ErrInvalidQuestion)
	}
	if q.Difficulty == "" {
		q.Difficulty = model.DifficultyIntermediate
	}
	switch q.Difficulty {
	case model.DifficultyBeginner, model.DifficultyIntermediate, model.DifficultyAdvanced:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", util.ErrInvalidQuestion, q.Difficulty)
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = optionLetter(i)
		}
	}

	seen := make(map[string]bool, len(q.Options))
	correct := 0
	for _, o := range q.Options {
		if seen[o.ID] {
			return fmt.Errorf("%w: duplicate option id %q", util.ErrInvalidQuestion, o.ID)
		}
		seen[o.ID] = true
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("%w: option %q has no text", util.ErrInvalidQuestion, o.ID)
		}
		if o.IsCorrect {
			correct++
		}
	}

	switch q.Type {
	case model.QuestionMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: multiple-choice needs at least two options", util.ErrInvalidQuestion)
		}
	case model.QuestionTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("%w: true-false needs exactly two options", util.ErrInvalidQuestion)
		}
		if correct != 1 {
			return fmt.Errorf("%w: true-false needs exactly one correct option", util.ErrInvalidQuestion)
		}
	case model.QuestionOpenEnded, model.QuestionCode:
		if q.Options == nil {
			q.Options = []model.QuestionOption{}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", util.ErrInvalidQuestion, q.Type)
	}
	if correct == 0 {
		return fmt.Errorf("%w: at least one option must be correct", util.ErrInvalidQuestion)
	}
	return nil
}

func optionLetter(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprintf("o%d", i+1)
}
