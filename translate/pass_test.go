package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/db"
	"github.com/mimirprompt/gallery-crawler/db/models"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/logger"
)

func TestMain(m *testing.M) {
	logger.Logger = log.New(io.Discard, "", 0)
	os.Exit(m.Run())
}

// fakeTranslator records calls and maps inputs to canned outputs.
type fakeTranslator struct {
	calls   []string
	outputs map[string]string
	err     error
}

func (f *fakeTranslator) Translate(_ context.Context, text string, _ bool) (string, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return "", f.err
	}
	if out, ok := f.outputs[text]; ok {
		return out, nil
	}
	return "translated: " + text, nil
}

func newTestPass(t *testing.T, translator Translator) (*Pass, repository.PromptRepository, string) {
	t.Helper()
	dir := t.TempDir()

	database, err := db.NewDatabase(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{}
	cfg.Paths.SaveLocation = dir
	cfg.Translate.DelayMS = 0

	promptRepo := repository.NewPromptRepository(database.DB)
	return NewPass(promptRepo, translator, cfg), promptRepo, dir
}

func TestRunTranslatesChinesePrompts(t *testing.T) {
	translator := &fakeTranslator{outputs: map[string]string{
		"水晶球里的城市":        "City in a Crystal Ball",
		"一座微型城市漂浮在水晶球中": "A miniature city floats inside a crystal ball",
	}}
	pass, promptRepo, _ := newTestPass(t, translator)

	require.NoError(t, promptRepo.Create(&models.Prompt{
		CaseNumber: 857,
		Title:      "案例 857：水晶球里的城市",
		PromptText: "一座微型城市漂浮在水晶球中",
	}))
	require.NoError(t, promptRepo.Create(&models.Prompt{
		CaseNumber: 12,
		Title:      "Case 12: Tiny Desk Robot",
		PromptText: "A tiny robot on a desk",
	}))

	translated, err := pass.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, translated)

	prompts, err := promptRepo.FindAll()
	require.NoError(t, err)
	require.Equal(t, "Case 857: City in a Crystal Ball", prompts[0].Title)
	require.Equal(t, "A miniature city floats inside a crystal ball", prompts[0].PromptText)
	// already-English prompt untouched, no API calls for it
	require.Equal(t, "Case 12: Tiny Desk Robot", prompts[1].Title)
	require.Len(t, translator.calls, 2)
}

func TestRunKeepsOriginalOnFailure(t *testing.T) {
	translator := &fakeTranslator{err: errors.New("translation API error 500: boom")}
	pass, promptRepo, _ := newTestPass(t, translator)

	require.NoError(t, promptRepo.Create(&models.Prompt{
		CaseNumber: 1,
		Title:      "案例 1：测试",
		PromptText: "中文内容",
	}))

	translated, err := pass.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, translated)

	prompts, err := promptRepo.FindAll()
	require.NoError(t, err)
	require.Equal(t, "案例 1：测试", prompts[0].Title)
	require.Equal(t, "中文内容", prompts[0].PromptText)
}

func TestRunResumesAfterSavedID(t *testing.T) {
	translator := &fakeTranslator{}
	pass, promptRepo, dir := newTestPass(t, translator)

	first := &models.Prompt{CaseNumber: 1, Title: "案例 1：甲", PromptText: "内容一"}
	second := &models.Prompt{CaseNumber: 2, Title: "案例 2：乙", PromptText: "内容二"}
	require.NoError(t, promptRepo.Create(first))
	require.NoError(t, promptRepo.Create(second))

	// A previous run already handled the first prompt.
	progressPath := filepath.Join(dir, ".translate-progress.json")
	require.NoError(t, os.WriteFile(progressPath,
		[]byte(fmt.Sprintf(`{"lastId": %d, "count": 1, "total": 2}`, first.ID)), 0644))

	translated, err := pass.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, translated)

	for _, call := range translator.calls {
		require.NotContains(t, call, "一")
	}

	_, err = os.Stat(progressPath)
	require.True(t, os.IsNotExist(err))
}

func TestTranslateTextChunksLongInput(t *testing.T) {
	translator := &fakeTranslator{}
	pass, _, _ := newTestPass(t, translator)

	english := strings.Repeat("only english words here. ", 300)
	chinese := strings.Repeat("很长的中文段落。", 800)
	text := english + "\n\n" + chinese + "\n\n短"

	out, err := pass.translateText(context.Background(), text)
	require.NoError(t, err)

	// only the Chinese chunk crosses the wire
	require.Len(t, translator.calls, 1)
	require.Contains(t, out, english)
	require.Contains(t, out, "translated: ")
	require.True(t, strings.HasSuffix(out, "\n\n短"))
}
