package model

// Plan is a guided-learning curriculum. Its structure is an ordered
// card -> category -> topic hierarchy; topics reference questions by id.
// swagger:model Plan
type Plan struct {
	UUIDModel
	Name            string     `gorm:"size:255;not null" json:"name"`
	Description     string     `gorm:"type:text" json:"description"`
	Duration        int        `gorm:"default:0" json:"duration"` // days
	QuestionsPerDay int        `gorm:"default:0" json:"questionsPerDay"`
	IsPublished     bool       `gorm:"default:false;index" json:"isPublished"`
	CreatorID       uint       `gorm:"index" json:"creatorId"`
	Cards           []PlanCard `gorm:"foreignKey:PlanID" json:"cards,omitempty"`
}

func (Plan) TableName() string {
	return "guided_plans"
}

// swagger:model PlanCard
type PlanCard struct {
	UUIDModel
	PlanID      string         `gorm:"index;type:varchar(36);not null" json:"planId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	SortOrder   int            `gorm:"default:0" json:"order"`
	Categories  []PlanCategory `gorm:"foreignKey:CardID" json:"categories,omitempty"`
}

func (PlanCard) TableName() string {
	return "guided_plan_cards"
}

// swagger:model PlanCategory
type PlanCategory struct {
	UUIDModel
	CardID    string      `gorm:"index;type:varchar(36);not null" json:"cardId"`
	Name      string      `gorm:"size:255;not null" json:"name"`
	SortOrder int         `gorm:"default:0" json:"order"`
	Topics    []PlanTopic `gorm:"foreignKey:CategoryID" json:"topics,omitempty"`
}

func (PlanCategory) TableName() string {
	return "guided_plan_categories"
}

// swagger:model PlanTopic
type PlanTopic struct {
	UUIDModel
	CategoryID  string   `gorm:"index;type:varchar(36);not null" json:"categoryId"`
	Name        string   `gorm:"size:255;not null" json:"name"`
	SortOrder   int      `gorm:"default:0" json:"order"`
	QuestionIDs []string `gorm:"serializer:json;type:json" json:"questionIds"`
}

func (PlanTopic) TableName() string {
	return "guided_plan_topics"
}
