package models

import (
	"time"
)

// Prompt is one imported gallery record. CaseNumber is the durable
// business key across crawl runs; the import path never overwrites an
// existing case number.
type Prompt struct {
	ID          uint   `gorm:"primaryKey"`
	CaseNumber  int    `gorm:"uniqueIndex;not null"`
	Title       string `gorm:"not null"`
	PromptText  string
	SourceURL   string
	Thumbnail   string
	IsHidden    bool
	ViewCount   int
	PromptCount int
	AuthorID    *uint `gorm:"index"`
	CategoryID  *uint `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Prompt) TableName() string {
	return "prompts"
}

// PromptImage is one ordered local image path belonging to a prompt.
type PromptImage struct {
	ID           uint   `gorm:"primaryKey"`
	PromptID     uint   `gorm:"index;not null"`
	ImageURL     string `gorm:"not null"`
	DisplayOrder int
}

func (PromptImage) TableName() string {
	return "prompt_images"
}
