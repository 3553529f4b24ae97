package pocketbase

import (
	"context"
	"fmt"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Migrator copies the local store into a PocketBase instance. Target
// collections are dropped and rebuilt, then every row is re-inserted
// with its relations remapped to the new record ids.
type Migrator struct {
	client       *Client
	promptRepo   repository.PromptRepository
	tagRepo      repository.TagRepository
	authorRepo   repository.AuthorRepository
	categoryRepo repository.CategoryRepository
	email        string
	password     string
}

// NewMigrator wires a migrator from the repositories and PocketBase
// credentials in the config.
func NewMigrator(client *Client, promptRepo repository.PromptRepository, tagRepo repository.TagRepository, authorRepo repository.AuthorRepository, categoryRepo repository.CategoryRepository, cfg *config.Config) *Migrator {
	return &Migrator{
		client:       client,
		promptRepo:   promptRepo,
		tagRepo:      tagRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		email:        cfg.PocketBase.AdminEmail,
		password:     cfg.PocketBase.AdminPassword,
	}
}

// Migrate runs the full export. Schema failures abort; per-row failures
// are logged and skipped so one bad row never sinks the export.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.client.Authenticate(ctx, m.email, m.password); err != nil {
		return err
	}
	if err := m.recreateCollections(ctx); err != nil {
		return err
	}

	authorIDs, err := m.copyAuthors(ctx)
	if err != nil {
		return err
	}
	categoryIDs, err := m.copyCategories(ctx)
	if err != nil {
		return err
	}
	tagIDs, err := m.copyTags(ctx)
	if err != nil {
		return err
	}
	return m.copyPrompts(ctx, authorIDs, categoryIDs, tagIDs)
}

// recreateCollections drops and rebuilds the target schema. Prompts go
// first on delete because they hold relations into everything else;
// relation fields are patched in afterwards once target ids exist.
func (m *Migrator) recreateCollections(ctx context.Context) error {
	for _, name := range []string{"prompts", "prompt_tags", "categories", "authors"} {
		if err := m.client.DeleteCollection(ctx, name); err != nil {
			return err
		}
	}

	authors, err := m.client.CreateCollection(ctx, Collection{
		Name: "authors",
		Type: "base",
		Schema: []SchemaField{
			{Name: "name", Type: "text", Required: true},
			{Name: "username", Type: "text", Required: true},
			{Name: "platform", Type: "text"},
			{Name: "profile_url", Type: "url"},
			{Name: "avatar_url", Type: "url"},
			{Name: "bio", Type: "text"},
			{Name: "prompt_count", Type: "number"},
		},
	})
	if err != nil {
		return err
	}

	categories, err := m.client.CreateCollection(ctx, Collection{
		Name: "categories",
		Type: "base",
		Schema: []SchemaField{
			{Name: "name", Type: "text", Required: true},
			{Name: "slug", Type: "text", Required: true},
			{Name: "description", Type: "text"},
			{Name: "icon", Type: "text"},
			{Name: "color", Type: "text"},
			{Name: "display_order", Type: "number"},
			{Name: "is_active", Type: "bool"},
		},
	})
	if err != nil {
		return err
	}

	// self-relation needs the collection's own id, so patch it in
	categories.Schema = append(categories.Schema, relationField("parent", categories.ID, 1))
	if err := m.client.UpdateCollection(ctx, "categories", *categories); err != nil {
		return err
	}

	tags, err := m.client.CreateCollection(ctx, Collection{
		Name: "prompt_tags",
		Type: "base",
		Schema: []SchemaField{
			{Name: "name", Type: "text", Required: true},
			{Name: "slug", Type: "text", Required: true},
			{Name: "description", Type: "text"},
			{Name: "prompt_count", Type: "number"},
		},
	})
	if err != nil {
		return err
	}

	_, err = m.client.CreateCollection(ctx, Collection{
		Name: "prompts",
		Type: "base",
		Schema: []SchemaField{
			{Name: "case_number", Type: "number", Required: true},
			{Name: "title", Type: "text", Required: true},
			{Name: "prompt_text", Type: "text", Required: true},
			{Name: "source_url", Type: "url"},
			{Name: "thumbnail", Type: "text"},
			{Name: "images_list", Type: "json"},
			{Name: "is_hidden", Type: "bool"},
			{Name: "view_count", Type: "number"},
			{Name: "prompt_count", Type: "number"},
			relationField("author", authors.ID, 1),
			relationField("category", categories.ID, 1),
			relationField("tags", tags.ID, 0),
		},
	})
	return err
}

func relationField(name, collectionID string, maxSelect int) SchemaField {
	options := map[string]any{"collectionId": collectionID}
	if maxSelect > 0 {
		options["maxSelect"] = maxSelect
	}
	return SchemaField{Name: name, Type: "relation", Options: options}
}

func (m *Migrator) copyAuthors(ctx context.Context) (map[uint]string, error) {
	authors, err := m.authorRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %v", err)
	}
	ids := make(map[uint]string, len(authors))
	for _, author := range authors {
		id, err := m.client.CreateRecord(ctx, "authors", map[string]any{
			"name":         author.Name,
			"username":     author.Username,
			"platform":     author.Platform,
			"profile_url":  author.ProfileURL,
			"avatar_url":   author.AvatarURL,
			"bio":          author.Bio,
			"prompt_count": author.PromptCount,
		})
		if err != nil {
			logger.Logger.Printf("Skipping author %s: %v", author.Username, err)
			continue
		}
		ids[author.ID] = id
	}
	logger.Logger.Printf("Migrated %d/%d authors", len(ids), len(authors))
	return ids, nil
}

func (m *Migrator) copyCategories(ctx context.Context) (map[uint]string, error) {
	categories, err := m.categoryRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %v", err)
	}
	// FindAll orders parents first, so a parent's new id is always
	// known by the time its children are inserted.
	ids := make(map[uint]string, len(categories))
	for _, category := range categories {
		fields := map[string]any{
			"name":          category.Name,
			"slug":          category.Slug,
			"description":   category.Description,
			"icon":          category.Icon,
			"color":         category.Color,
			"display_order": category.DisplayOrder,
			"is_active":     category.IsActive,
		}
		if category.ParentID != nil {
			if parent, ok := ids[*category.ParentID]; ok {
				fields["parent"] = parent
			}
		}
		id, err := m.client.CreateRecord(ctx, "categories", fields)
		if err != nil {
			logger.Logger.Printf("Skipping category %s: %v", category.Name, err)
			continue
		}
		ids[category.ID] = id
	}
	logger.Logger.Printf("Migrated %d/%d categories", len(ids), len(categories))
	return ids, nil
}

func (m *Migrator) copyTags(ctx context.Context) (map[uint]string, error) {
	tags, err := m.tagRepo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %v", err)
	}
	ids := make(map[uint]string, len(tags))
	for _, tag := range tags {
		id, err := m.client.CreateRecord(ctx, "prompt_tags", map[string]any{
			"name":         tag.Name,
			"slug":         tag.Slug,
			"description":  tag.Description,
			"prompt_count": tag.PromptCount,
		})
		if err != nil {
			logger.Logger.Printf("Skipping tag %s: %v", tag.Slug, err)
			continue
		}
		ids[tag.ID] = id
	}
	logger.Logger.Printf("Migrated %d/%d tags", len(ids), len(tags))
	return ids, nil
}

func (m *Migrator) copyPrompts(ctx context.Context, authorIDs, categoryIDs, tagIDs map[uint]string) error {
	prompts, err := m.promptRepo.FindAll()
	if err != nil {
		return fmt.Errorf("failed to load prompts: %v", err)
	}
	migrated := 0
	for _, prompt := range prompts {
		images, err := m.promptRepo.ImagesByPrompt(prompt.ID)
		if err != nil {
			logger.Logger.Printf("Skipping prompt %d: %v", prompt.CaseNumber, err)
			continue
		}
		imageURLs := make([]string, 0, len(images))
		for _, image := range images {
			imageURLs = append(imageURLs, image.ImageURL)
		}

		fields := map[string]any{
			"case_number":  prompt.CaseNumber,
			"title":        prompt.Title,
			"prompt_text":  prompt.PromptText,
			"source_url":   prompt.SourceURL,
			"thumbnail":    prompt.Thumbnail,
			"images_list":  imageURLs,
			"is_hidden":    prompt.IsHidden,
			"view_count":   prompt.ViewCount,
			"prompt_count": prompt.PromptCount,
		}
		if prompt.AuthorID != nil {
			if id, ok := authorIDs[*prompt.AuthorID]; ok {
				fields["author"] = id
			}
		}
		if prompt.CategoryID != nil {
			if id, ok := categoryIDs[*prompt.CategoryID]; ok {
				fields["category"] = id
			}
		}

		localTagIDs, err := m.promptRepo.TagIDsByPrompt(prompt.ID)
		if err != nil {
			logger.Logger.Printf("Skipping prompt %d: %v", prompt.CaseNumber, err)
			continue
		}
		remoteTags := make([]string, 0, len(localTagIDs))
		for _, tagID := range localTagIDs {
			if id, ok := tagIDs[tagID]; ok {
				remoteTags = append(remoteTags, id)
			}
		}
		if len(remoteTags) > 0 {
			fields["tags"] = remoteTags
		}

		if _, err := m.client.CreateRecord(ctx, "prompts", fields); err != nil {
			logger.Logger.Printf("Skipping prompt %d: %v", prompt.CaseNumber, err)
			continue
		}
		migrated++
	}
	logger.Logger.Printf("Migrated %d/%d prompts", migrated, len(prompts))
	return nil
}
