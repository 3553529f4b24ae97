package models

// Author is derived from attribution permalinks, never scraped
// directly. One row per unique username.
type Author struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Username    string `gorm:"uniqueIndex;not null"`
	Platform    string
	ProfileURL  string
	AvatarURL   string
	Bio         string
	PromptCount int
}

func (Author) TableName() string {
	return "authors"
}
