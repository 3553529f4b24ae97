package repository

import (
	"gorm.io/gorm"

	"github.com/mimirprompt/gallery-crawler/db/models"
)

// CategoryRepository defines the interface for category operations
type CategoryRepository interface {
	Create(category *models.Category) error
	FindAll() ([]models.Category, error)
}

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// FindAll returns categories parents-first so a migration can remap
// the self-referential tree in one pass.
func (r *GormCategoryRepository) FindAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("parent_id IS NOT NULL, id").Find(&categories).Error
	return categories, err
}
