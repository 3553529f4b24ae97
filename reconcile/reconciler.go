package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/db/models"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/download"
	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/logger"
	"github.com/mimirprompt/gallery-crawler/progress"
	"github.com/mimirprompt/gallery-crawler/utils"
)

// Summary reports what an import pass did.
type Summary struct {
	Imported int
	Skipped  int
	Errors   int
}

// Reconciler imports crawled records into the database. Imports are
// insert-only: a case number already present in the store is never
// touched, so manual edits survive re-imports.
type Reconciler struct {
	promptRepo   repository.PromptRepository
	tagRepo      repository.TagRepository
	authorRepo   repository.AuthorRepository
	imagesDir    string
	urlPrefix    string
	progressPath string
}

// NewReconciler creates a reconciler writing image URLs under urlPrefix
// and resolving local files against imagesDir.
func NewReconciler(promptRepo repository.PromptRepository, tagRepo repository.TagRepository, authorRepo repository.AuthorRepository, cfg *config.Config) *Reconciler {
	return &Reconciler{
		promptRepo:   promptRepo,
		tagRepo:      tagRepo,
		authorRepo:   authorRepo,
		imagesDir:    cfg.Paths.ImagesDir,
		urlPrefix:    strings.TrimRight(cfg.Store.ImagesURLPrefix, "/"),
		progressPath: filepath.Join(cfg.Paths.SaveLocation, ".import-progress.json"),
	}
}

// Reconcile imports every record with prompt text, links authors, and
// recomputes denormalized counters. Per-record failures are counted and
// logged but never abort the pass.
func (r *Reconciler) Reconcile(ctx context.Context, records []gallery.Record) (Summary, error) {
	var summary Summary

	state, err := progress.Load(r.progressPath)
	if err != nil {
		logger.Logger.Printf("Ignoring unreadable import progress: %v", err)
		state = progress.State{}
	}
	state.Total = len(records)

	resumeFrom := state.LastID
	if resumeFrom > 0 {
		logger.Logger.Printf("Resuming import after record %d (%d done)", resumeFrom, state.Count)
	}

	for i, record := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if resumeFrom > 0 && uint(record.Index) <= resumeFrom {
			summary.Skipped++
			continue
		}

		if strings.TrimSpace(record.PromptText) == "" {
			summary.Skipped++
			continue
		}

		imported, err := r.importRecord(record)
		if err != nil {
			logger.Logger.Printf("Failed to import record %d (%s): %v", record.Index, record.Title, err)
			summary.Errors++
		} else if imported {
			summary.Imported++
		} else {
			summary.Skipped++
		}

		state.LastID = uint(record.Index)
		state.Count = i + 1
		if err := progress.Save(r.progressPath, state); err != nil {
			logger.Logger.Printf("Failed to save import progress: %v", err)
		}
	}

	if err := r.linkAuthors(); err != nil {
		logger.Logger.Printf("Failed to link authors: %v", err)
		summary.Errors++
	}
	if err := r.tagRepo.RecountAll(); err != nil {
		logger.Logger.Printf("Failed to recount tags: %v", err)
		summary.Errors++
	}
	if err := r.authorRepo.RecountAll(); err != nil {
		logger.Logger.Printf("Failed to recount authors: %v", err)
		summary.Errors++
	}

	if err := progress.Clear(r.progressPath); err != nil {
		logger.Logger.Printf("Failed to clear import progress: %v", err)
	}

	logger.Logger.Printf("Import complete: %d imported, %d skipped, %d errors", summary.Imported, summary.Skipped, summary.Errors)
	return summary, nil
}

func (r *Reconciler) importRecord(record gallery.Record) (bool, error) {
	// No parseable case number means case 0; a title-less record must
	// never occupy a numbered slot a real case could claim later.
	caseNumber := gallery.ParseCaseNumber(record.Title)

	exists, err := r.promptRepo.ExistsByCaseNumber(caseNumber)
	if err != nil {
		return false, fmt.Errorf("failed to check case %d: %v", caseNumber, err)
	}
	if exists {
		return false, nil
	}

	prompt := &models.Prompt{
		CaseNumber:  caseNumber,
		Title:       record.Title,
		PromptText:  record.PromptText,
		SourceURL:   record.SourceURL,
		Thumbnail:   r.localImageURL(record.Title, record.Thumbnail, 0),
		PromptCount: record.PromptCount,
	}
	if err := r.promptRepo.Create(prompt); err != nil {
		return false, fmt.Errorf("failed to insert prompt: %v", err)
	}

	for i, imageURL := range record.Images {
		image := &models.PromptImage{
			PromptID:     prompt.ID,
			ImageURL:     r.localImageURL(record.Title, imageURL, i),
			DisplayOrder: i,
		}
		if err := r.promptRepo.AddImage(image); err != nil {
			return true, fmt.Errorf("failed to insert image %d: %v", i, err)
		}
	}

	for _, tag := range record.Tags {
		tagID, err := r.resolveTag(tag)
		if err != nil {
			return true, fmt.Errorf("failed to resolve tag %q: %v", tag, err)
		}
		if err := r.promptRepo.LinkTag(prompt.ID, tagID); err != nil {
			return true, fmt.Errorf("failed to link tag %q: %v", tag, err)
		}
	}

	return true, nil
}

// localImageURL maps a remote image URL to the served path of its
// downloaded copy. When the expected file is missing it probes a few
// naming variants the downloader may have produced; if nothing is on
// disk the expected name is used anyway so records stay consistent.
func (r *Reconciler) localImageURL(title, remoteURL string, index int) string {
	if remoteURL == "" {
		return ""
	}
	expected := download.ImageFilename(title, remoteURL, index)
	if r.imagesDir == "" {
		return r.urlPrefix + "/" + expected
	}

	candidates := []string{expected}
	base := config.SanitizeFilename(title)
	suffix := ""
	if index > 0 {
		suffix = fmt.Sprintf("_%d", index+1)
	}
	for _, ext := range []string{"jpeg", "jpg", "png", "webp"} {
		candidates = append(candidates, base+suffix+"."+ext)
	}
	if ext := utils.ExtFromURL(remoteURL); ext != "" {
		candidates = append(candidates, base+suffix+"."+ext)
	}

	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(r.imagesDir, name)); err == nil {
			return r.urlPrefix + "/" + name
		}
	}
	return r.urlPrefix + "/" + expected
}

// resolveTag finds or creates the tag for a name. On a create conflict
// (concurrent insert or a slug collision) the slug is re-queried.
func (r *Reconciler) resolveTag(name string) (uint, error) {
	slug := strings.ToLower(strings.TrimSpace(name))
	tag, err := r.tagRepo.FindBySlug(slug)
	if err != nil {
		return 0, err
	}
	if tag != nil {
		return tag.ID, nil
	}

	created := &models.Tag{Name: strings.TrimSpace(name), Slug: slug}
	if err := r.tagRepo.Create(created); err != nil {
		tag, findErr := r.tagRepo.FindBySlug(slug)
		if findErr == nil && tag != nil {
			return tag.ID, nil
		}
		return 0, err
	}
	return created.ID, nil
}

// linkAuthors extracts author handles from prompt permalinks and
// attaches each prompt to its author. The first prompt seen for a
// handle fixes the author row; later prompts just link to it.
func (r *Reconciler) linkAuthors() error {
	prompts, err := r.promptRepo.FindWithSourceURL()
	if err != nil {
		return err
	}

	authorIDs := make(map[string]uint)
	for _, prompt := range prompts {
		ref, ok := gallery.AuthorFromURL(prompt.SourceURL)
		if !ok {
			continue
		}

		id, seen := authorIDs[ref.Username]
		if !seen {
			existing, err := r.authorRepo.FindByUsername(ref.Username)
			if err != nil {
				return err
			}
			if existing != nil {
				id = existing.ID
			} else {
				author := &models.Author{
					Name:       ref.Name,
					Username:   ref.Username,
					Platform:   ref.Platform,
					ProfileURL: ref.ProfileURL,
				}
				if err := r.authorRepo.Create(author); err != nil {
					return err
				}
				id = author.ID
			}
			authorIDs[ref.Username] = id
		}

		if prompt.AuthorID != nil && *prompt.AuthorID == id {
			continue
		}
		if err := r.promptRepo.SetAuthor(prompt.ID, id); err != nil {
			return err
		}
	}
	return nil
}
