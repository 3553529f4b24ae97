package models

// Category is a self-referential tree. The importer never assigns
// categories; they are curated by hand and carried through migration.
type Category struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Slug         string `gorm:"index"`
	Description  string
	Icon         string
	Color        string
	DisplayOrder int
	IsActive     bool
	ParentID     *uint `gorm:"index"`
}

func (Category) TableName() string {
	return "categories"
}
