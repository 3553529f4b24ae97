package models

// Tag is a short label attached to prompts. Slug is the case-folded
// lookup key; PromptCount is denormalized and recomputed by
// aggregation after each import.
type Tag struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Description string
	PromptCount int
}

func (Tag) TableName() string {
	return "prompt_tags"
}

// PromptTagRelation joins prompts and tags.
type PromptTagRelation struct {
	PromptID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false"`
}

func (PromptTagRelation) TableName() string {
	return "prompt_tag_relations"
}
