package repository

import (
	"context"
	"interview_prep_backend/internal/model"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func bySortOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order asc, created_at asc")
}

func (r *PlanRepository) Create(plan *model.Plan) error {
	return r.DB.Create(plan).Error
}

func (r *PlanRepository) FindByID(id string) (*model.Plan, error) {
	var p model.Plan
	err := r.DB.Where("id = ?", id).First(&p).Error
	return &p, err
}

// FindWithStructure loads the plan with its cards, categories and topics,
// each level in display order.
func (r *PlanRepository) FindWithStructure(ctx context.Context, id string) (*model.Plan, error) {
	var p model.Plan
	err := r.DB.WithContext(ctx).
		Preload("Cards", bySortOrder).
		Preload("Cards.Categories", bySortOrder).
		Preload("Cards.Categories.Topics", bySortOrder).
		Where("id = ?", id).
		First(&p).Error
	return &p, err
}

func (r *PlanRepository) List(publishedOnly bool, page, limit int) ([]model.Plan, int64, error) {
	var ps []model.Plan
	var total int64
	query := r.DB.Model(&model.Plan{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&ps).Error
	return ps, total, err
}

func (r *PlanRepository) Update(plan *model.Plan) error {
	return r.DB.Omit("Cards").Save(plan).Error
}

// ReplaceStructure drops the plan's current hierarchy and writes cards in its
// place, atomically.
func (r *PlanRepository) ReplaceStructure(ctx context.Context, planID string, cards []model.PlanCard) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteStructure(tx, planID); err != nil {
			return err
		}
		for i := range cards {
			cards[i].PlanID = planID
		}
		if len(cards) == 0 {
			return nil
		}
		return tx.Create(&cards).Error
	})
}

// Delete removes the plan and its structure. cascade, when set, runs in the
// same transaction so rows owned by other repositories go with the plan.
func (r *PlanRepository) Delete(ctx context.Context, id string, cascade func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteStructure(tx, id); err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&model.Plan{}).Error; err != nil {
			return err
		}
		if cascade != nil {
			return cascade(tx)
		}
		return nil
	})
}

func deleteStructure(tx *gorm.DB, planID string) error {
	cardIDs := tx.Model(&model.PlanCard{}).Select("id").Where("plan_id = ?", planID)
	categoryIDs := tx.Model(&model.PlanCategory{}).Select("id").Where("card_id IN (?)", cardIDs)

	if err := tx.Unscoped().Where("category_id IN (?)", categoryIDs).Delete(&model.PlanTopic{}).Error; err != nil {
		return err
	}
	if err := tx.Unscoped().Where("card_id IN (?)", cardIDs).Delete(&model.PlanCategory{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Where("plan_id = ?", planID).Delete(&model.PlanCard{}).Error
}
