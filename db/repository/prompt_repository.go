package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mimirprompt/gallery-crawler/db/models"
)

var ErrPromptNotFound = errors.New("prompt not found")

// PromptRepository defines the interface for prompt operations
type PromptRepository interface {
	Create(prompt *models.Prompt) error
	ExistsByCaseNumber(caseNumber int) (bool, error)
	FindByID(id uint) (*models.Prompt, error)
	FindAll() ([]models.Prompt, error)
	FindWithSourceURL() ([]models.Prompt, error)
	FindAfterID(id uint) ([]models.Prompt, error)
	AddImage(image *models.PromptImage) error
	ImagesByPrompt(promptID uint) ([]models.PromptImage, error)
	LinkTag(promptID, tagID uint) error
	TagIDsByPrompt(promptID uint) ([]uint, error)
	SetAuthor(promptID, authorID uint) error
	UpdateTranslation(id uint, title, promptText string) error
	IncrementViewCount(id uint) (int, error)
}

// GormPromptRepository implements PromptRepository using GORM
type GormPromptRepository struct {
	db *gorm.DB
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &GormPromptRepository{db: db}
}

func (r *GormPromptRepository) Create(prompt *models.Prompt) error {
	return r.db.Create(prompt).Error
}

func (r *GormPromptRepository) ExistsByCaseNumber(caseNumber int) (bool, error) {
	var count int64
	err := r.db.Model(&models.Prompt{}).Where("case_number = ?", caseNumber).Count(&count).Error
	return count > 0, err
}

func (r *GormPromptRepository) FindByID(id uint) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.db.First(&prompt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPromptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

func (r *GormPromptRepository) FindAll() ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Order("id").Find(&prompts).Error
	return prompts, err
}

func (r *GormPromptRepository) FindWithSourceURL() ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Where("source_url <> ''").Order("id").Find(&prompts).Error
	return prompts, err
}

// FindAfterID returns prompts with an id strictly greater than id, in
// id order. Used by resumable passes.
func (r *GormPromptRepository) FindAfterID(id uint) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := r.db.Where("id > ?", id).Order("id").Find(&prompts).Error
	return prompts, err
}

func (r *GormPromptRepository) AddImage(image *models.PromptImage) error {
	return r.db.Create(image).Error
}

func (r *GormPromptRepository) ImagesByPrompt(promptID uint) ([]models.PromptImage, error) {
	var images []models.PromptImage
	err := r.db.Where("prompt_id = ?", promptID).Order("display_order").Find(&images).Error
	return images, err
}

// LinkTag attaches a tag to a prompt; an already-present pair is a
// no-op, not an error.
func (r *GormPromptRepository) LinkTag(promptID, tagID uint) error {
	rel := models.PromptTagRelation{PromptID: promptID, TagID: tagID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rel).Error
}

func (r *GormPromptRepository) TagIDsByPrompt(promptID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.PromptTagRelation{}).
		Where("prompt_id = ?", promptID).Pluck("tag_id", &ids).Error
	return ids, err
}

func (r *GormPromptRepository) SetAuthor(promptID, authorID uint) error {
	return r.db.Model(&models.Prompt{}).Where("id = ?", promptID).
		Update("author_id", authorID).Error
}

func (r *GormPromptRepository) UpdateTranslation(id uint, title, promptText string) error {
	return r.db.Model(&models.Prompt{}).Where("id = ?", id).
		Updates(map[string]any{"title": title, "prompt_text": promptText}).Error
}

// IncrementViewCount bumps the counter server-side and returns the
// new value. The increment happens in SQL, never from a
// client-supplied value.
func (r *GormPromptRepository) IncrementViewCount(id uint) (int, error) {
	res := r.db.Model(&models.Prompt{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrPromptNotFound
	}

	var count int
	err := r.db.Model(&models.Prompt{}).Where("id = ?", id).
		Pluck("view_count", &count).Error
	return count, err
}
