package repository

import (
	"context"
	"interview_prep_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionFilter struct {
	Category   string
	Difficulty string
	Type       string
	Keyword    string
	ActiveOnly bool
}

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(q *model.Question) error {
	return r.DB.Create(q).Error
}

// CreateBatch inserts all questions in one transaction.
func (r *QuestionRepository) CreateBatch(qs []*model.Question) error {
	if len(qs) == 0 {
		return nil
	}
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(qs, 100).Error
	})
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.Where("id = ?", id).First(&q).Error
	return &q, err
}

// FindByIDs resolves ids against the bank. Ids without a row are simply
// absent from the result.
func (r *QuestionRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Question, error) {
	out := make(map[string]*model.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var qs []model.Question
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&qs).Error; err != nil {
		return nil, err
	}
	for i := range qs {
		out[qs[i].ID] = &qs[i]
	}
	return out, nil
}

func (r *QuestionRepository) List(f QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64

	query := r.DB.Model(&model.Question{})
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		query = query.Where("(title LIKE ? OR content LIKE ?)", like, like)
	}
	if f.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

func (r *QuestionRepository) Update(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Question{}).Error
}
