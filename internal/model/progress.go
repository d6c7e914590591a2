package model

import (
	"time"

	"interview_prep_backend/internal/guided"
)

// ProgressRecord is the per-user, per-plan progress blob. The completed
// topic/category/card lists are derived data; readers recompute them from
// CompletedQuestions.
// swagger:model ProgressRecord
type ProgressRecord struct {
	PlanID              string          `json:"planId" validate:"required"`
	CompletedQuestions  []string        `json:"completedQuestions" validate:"dive,required"`
	CompletedTopics     []string        `json:"completedTopics"`
	CompletedCategories []string        `json:"completedCategories"`
	CompletedCards      []string        `json:"completedCards"`
	CurrentPosition     guided.Position `json:"currentPosition"`
	LastUpdated         time.Time       `json:"lastUpdated" validate:"required"`
}

// NewProgressRecord returns an empty record positioned at the start of the plan.
func NewProgressRecord(planID string) *ProgressRecord {
	return &ProgressRecord{
		PlanID:              planID,
		CompletedQuestions:  []string{},
		CompletedTopics:     []string{},
		CompletedCategories: []string{},
		CompletedCards:      []string{},
		LastUpdated:         time.Now().UTC(),
	}
}

// PlanProgress is the storage row holding a serialised ProgressRecord.
type PlanProgress struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_progress_user_plan;not null" json:"userId"`
	PlanID    string    `gorm:"uniqueIndex:idx_progress_user_plan;type:varchar(36);not null" json:"planId"`
	Data      string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (PlanProgress) TableName() string {
	return "guided_plan_progress"
}
