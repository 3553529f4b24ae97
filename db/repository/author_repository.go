package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mimirprompt/gallery-crawler/db/models"
)

// AuthorRepository defines the interface for author operations
type AuthorRepository interface {
	Create(author *models.Author) error
	FindByUsername(username string) (*models.Author, error)
	FindAll() ([]models.Author, error)
	RecountAll() error
}

// GormAuthorRepository implements AuthorRepository using GORM
type GormAuthorRepository struct {
	db *gorm.DB
}

// NewAuthorRepository creates a new author repository
func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &GormAuthorRepository{db: db}
}

func (r *GormAuthorRepository) Create(author *models.Author) error {
	return r.db.Create(author).Error
}

func (r *GormAuthorRepository) FindByUsername(username string) (*models.Author, error) {
	var author models.Author
	err := r.db.Where("username = ?", username).First(&author).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *GormAuthorRepository) FindAll() ([]models.Author, error) {
	var authors []models.Author
	err := r.db.Order("id").Find(&authors).Error
	return authors, err
}

// RecountAll recomputes every author's denormalized prompt count by
// aggregation over the final relationship state.
func (r *GormAuthorRepository) RecountAll() error {
	return r.db.Exec(`
        UPDATE authors SET prompt_count = (
            SELECT COUNT(*) FROM prompts
            WHERE prompts.author_id = authors.id
        )`).Error
}
