package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mimirprompt/gallery-crawler/db/models"
)

// TagRepository defines the interface for tag operations
type TagRepository interface {
	Create(tag *models.Tag) error
	FindBySlug(slug string) (*models.Tag, error)
	FindAll() ([]models.Tag, error)
	RecountAll() error
}

// GormTagRepository implements TagRepository using GORM
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) Create(tag *models.Tag) error {
	return r.db.Create(tag).Error
}

func (r *GormTagRepository) FindBySlug(slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("slug = ?", slug).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *GormTagRepository) FindAll() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("id").Find(&tags).Error
	return tags, err
}

// RecountAll recomputes every tag's denormalized prompt count from
// the relation table in one statement.
func (r *GormTagRepository) RecountAll() error {
	return r.db.Exec(`
        UPDATE prompt_tags SET prompt_count = (
            SELECT COUNT(*) FROM prompt_tag_relations
            WHERE prompt_tag_relations.tag_id = prompt_tags.id
        )`).Error
}
