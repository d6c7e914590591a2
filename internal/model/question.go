package model

import "interview_prep_backend/internal/guided"

const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
	QuestionOpenEnded      = "open-ended"
	QuestionCode           = "code"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// swagger:model QuestionOption
type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is an entry of the question bank. Free-text questions carry no
// options.
// swagger:model Question
type Question struct {
	UUIDModel
	Title       string           `gorm:"size:255;not null" json:"title"`
	Content     string           `gorm:"type:text" json:"content"`
	Type        string           `gorm:"size:30;not null" json:"type"`
	Category    string           `gorm:"size:100;index" json:"category"`
	Difficulty  string           `gorm:"size:20;index" json:"difficulty"`
	Options     []QuestionOption `gorm:"serializer:json;type:json" json:"options"`
	Explanation string           `gorm:"type:text" json:"explanation"`
	Points      int              `gorm:"default:0" json:"points"`
	Tags        []string         `gorm:"serializer:json;type:json" json:"tags"`
	IsActive    bool             `gorm:"not null;index" json:"isActive"`
}

func (Question) TableName() string {
	return "questions"
}

func (q *Question) ToGuided() guided.Question {
	opts := make([]guided.Option, 0, len(q.Options))
	for _, o := range q.Options {
		opts = append(opts, guided.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return guided.Question{
		ID:         q.ID,
		Title:      q.Title,
		Content:    q.Content,
		Options:    opts,
		Difficulty: q.Difficulty,
		Points:     q.Points,
	}
}
