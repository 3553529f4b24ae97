package translate

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/gallery"
	"github.com/mimirprompt/gallery-crawler/logger"
	"github.com/mimirprompt/gallery-crawler/progress"
)

// maxChunkChars bounds a single translation request. Longer prompt
// texts are split on blank lines and translated piecewise.
const maxChunkChars = 10000

// minChunkChars is the shortest chunk worth a round trip; anything
// smaller is kept as is.
const minChunkChars = 10

var titlePrefixRe = regexp.MustCompile(`^(?:Case|案例)\s*(\d+)\s*[：:]\s*`)

// Pass translates stored prompts in place. It walks rows in id order,
// skips anything without Chinese text, and records progress after every
// row so an interrupted run resumes where it stopped.
type Pass struct {
	promptRepo   repository.PromptRepository
	translator   Translator
	delay        time.Duration
	progressPath string
}

// NewPass wires a translation pass over the prompt store.
func NewPass(promptRepo repository.PromptRepository, translator Translator, cfg *config.Config) *Pass {
	return &Pass{
		promptRepo:   promptRepo,
		translator:   translator,
		delay:        time.Duration(cfg.Translate.DelayMS) * time.Millisecond,
		progressPath: filepath.Join(cfg.Paths.SaveLocation, ".translate-progress.json"),
	}
}

// Run translates every untranslated prompt after the saved resume
// point. A failed translation keeps the original text and moves on.
func (p *Pass) Run(ctx context.Context) (int, error) {
	state, err := progress.Load(p.progressPath)
	if err != nil {
		logger.Logger.Printf("Ignoring unreadable translate progress: %v", err)
		state = progress.State{}
	}
	if state.LastID > 0 {
		logger.Logger.Printf("Resuming translation after prompt %d (%d done)", state.LastID, state.Count)
	}

	prompts, err := p.promptRepo.FindAfterID(state.LastID)
	if err != nil {
		return 0, fmt.Errorf("failed to load prompts: %v", err)
	}
	state.Total = state.Count + len(prompts)

	translated := 0
	for _, prompt := range prompts {
		select {
		case <-ctx.Done():
			return translated, ctx.Err()
		default:
		}

		if !gallery.ContainsCJK(prompt.Title) && !gallery.ContainsCJK(prompt.PromptText) {
			state.LastID = prompt.ID
			state.Count++
			continue
		}

		title := prompt.Title
		if gallery.ContainsCJK(title) {
			if out, err := p.translateTitle(ctx, title); err != nil {
				logger.Logger.Printf("Failed to translate title of prompt %d: %v", prompt.ID, err)
			} else {
				title = out
			}
		}

		text := prompt.PromptText
		if gallery.ContainsCJK(text) {
			if out, err := p.translateText(ctx, text); err != nil {
				logger.Logger.Printf("Failed to translate prompt %d: %v", prompt.ID, err)
			} else {
				text = out
			}
		}

		if title != prompt.Title || text != prompt.PromptText {
			if err := p.promptRepo.UpdateTranslation(prompt.ID, title, text); err != nil {
				logger.Logger.Printf("Failed to store translation of prompt %d: %v", prompt.ID, err)
			} else {
				translated++
			}
		}

		state.LastID = prompt.ID
		state.Count++
		if err := progress.Save(p.progressPath, state); err != nil {
			logger.Logger.Printf("Failed to save translate progress: %v", err)
		}

		if p.delay > 0 {
			select {
			case <-ctx.Done():
				return translated, ctx.Err()
			case <-time.After(p.delay):
			}
		}
	}

	if err := progress.Clear(p.progressPath); err != nil {
		logger.Logger.Printf("Failed to clear translate progress: %v", err)
	}
	logger.Logger.Printf("Translation pass complete: %d prompts updated", translated)
	return translated, nil
}

// translateTitle keeps the case number prefix intact and translates
// only the remainder.
func (p *Pass) translateTitle(ctx context.Context, title string) (string, error) {
	prefix := ""
	rest := title
	if m := titlePrefixRe.FindStringSubmatch(title); m != nil {
		prefix = "Case " + m[1] + ": "
		rest = title[len(m[0]):]
	}
	if !gallery.ContainsCJK(rest) {
		return prefix + rest, nil
	}
	out, err := p.translator.Translate(ctx, rest, true)
	if err != nil {
		return "", err
	}
	return prefix + out, nil
}

// translateText sends short texts whole and splits long ones into
// blank-line chunks, translating only the chunks that carry Chinese.
func (p *Pass) translateText(ctx context.Context, text string) (string, error) {
	if len(text) <= maxChunkChars {
		return p.translator.Translate(ctx, text, false)
	}

	chunks := strings.Split(text, "\n\n")
	for i, chunk := range chunks {
		if len(chunk) <= minChunkChars || !gallery.ContainsCJK(chunk) {
			continue
		}
		out, err := p.translator.Translate(ctx, chunk, false)
		if err != nil {
			return "", err
		}
		chunks[i] = out
	}
	return strings.Join(chunks, "\n\n"), nil
}
