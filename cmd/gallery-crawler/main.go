package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mimirprompt/gallery-crawler/api"
	"github.com/mimirprompt/gallery-crawler/browse"
	"github.com/mimirprompt/gallery-crawler/cmd"
	"github.com/mimirprompt/gallery-crawler/config"
	"github.com/mimirprompt/gallery-crawler/crawler"
	"github.com/mimirprompt/gallery-crawler/db"
	"github.com/mimirprompt/gallery-crawler/db/repository"
	"github.com/mimirprompt/gallery-crawler/download"
	"github.com/mimirprompt/gallery-crawler/logger"
	"github.com/mimirprompt/gallery-crawler/notifications"
	"github.com/mimirprompt/gallery-crawler/pocketbase"
	"github.com/mimirprompt/gallery-crawler/reconcile"
	"github.com/mimirprompt/gallery-crawler/translate"
	"github.com/mimirprompt/gallery-crawler/ui"
)

const version = "v1.2.0"

type app struct {
	cfg      *config.Config
	notifier *notifications.NotificationService
}

func main() {
	flags, subcommand := cmd.ParseFlags()

	if flags.Version {
		fmt.Printf("Gallery Crawler version %s\n", version)
		return
	}

	configPath := flags.ConfigPath
	if configPath == "" {
		configPath = config.GetConfigPath()
	}
	if err := config.EnsureConfigExists(configPath); err != nil {
		log.Fatal(err)
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v. Edit %s and try again.", err, configPath)
	}
	if err := logger.InitLogger(cfg); err != nil {
		log.Fatal(err)
	}

	a := &app{
		cfg:      cfg,
		notifier: notifications.NewNotificationService(cfg),
	}

	// First interrupt cancels the running pass so it can flush; a
	// second one bails out immediately.
	ctx, cancel := context.WithCancel(context.Background())
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		fmt.Println("Received interrupt signal. Finishing up...")
		cancel()
		<-signalChan
		os.Exit(1)
	}()

	switch subcommand {
	case "crawl":
		a.runCLI(ctx, ui.ActionCrawl)
	case "download":
		a.runCLI(ctx, ui.ActionDownload)
	case "import":
		a.runCLI(ctx, ui.ActionImport)
	case "translate":
		a.runCLI(ctx, ui.ActionTranslate)
	case "migrate":
		a.runCLI(ctx, ui.ActionMigrate)
	case "serve":
		a.runCLI(ctx, ui.ActionServe)
	case "":
		runner := func(action string) (string, error) {
			return a.run(ctx, action)
		}
		p := tea.NewProgram(ui.NewMainModel(runner, version))
		if _, err := p.Run(); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Printf("Unknown command %q. Available: crawl, download, import, translate, migrate, serve\n", subcommand)
		os.Exit(1)
	}
}

func (a *app) runCLI(ctx context.Context, action string) {
	summary, err := a.run(ctx, action)
	if err != nil {
		fmt.Printf("%s failed: %v\n", action, err)
		logger.Logger.Printf("%s failed: %v", action, err)
		if summary != "" {
			fmt.Println(summary)
		}
		os.Exit(1)
	}
	fmt.Println(summary)
	a.notifier.NotifyRunComplete(action, summary)
}

func (a *app) run(ctx context.Context, action string) (string, error) {
	switch action {
	case ui.ActionCrawl:
		return a.crawl(ctx)
	case ui.ActionDownload:
		return a.download(ctx)
	case ui.ActionImport:
		return a.importSnapshot(ctx)
	case ui.ActionTranslate:
		return a.translatePrompts(ctx)
	case ui.ActionMigrate:
		return a.migrate(ctx)
	case ui.ActionServe:
		return a.serve()
	}
	return "", fmt.Errorf("unknown action %q", action)
}

func (a *app) crawl(ctx context.Context) (string, error) {
	page := browse.NewStaticPage(a.cfg.Source.UserAgent)
	extractor := crawler.NewExtractor(page, crawler.DefaultSelectors())
	extractor.SetTimeouts(
		time.Duration(a.cfg.Crawl.ListTimeoutSec)*time.Second,
		time.Duration(a.cfg.Crawl.DetailTimeoutSec)*time.Second,
	)
	extractor.SetScroll(a.cfg.Crawl.ScrollStep, a.cfg.Crawl.MaxScrolls)

	writer := crawler.NewSnapshotWriter(a.cfg.Paths.SnapshotFile, a.cfg.Source.URL)
	c := crawler.New(page, extractor, writer, a.cfg.Source.URL, a.cfg.Crawl.FlushEvery)

	stats, err := c.Run(ctx)
	summary := fmt.Sprintf("%d items found, %d crawled, %d with prompts. Snapshot: %s",
		stats.TotalFound, stats.CrawledCount, stats.WithPrompts, a.cfg.Paths.SnapshotFile)
	if err != nil {
		return summary, err
	}
	return summary, nil
}

func (a *app) download(ctx context.Context) (string, error) {
	snap, err := crawler.LoadSnapshot(a.cfg.Paths.SnapshotFile)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot (run crawl first): %v", err)
	}

	items := download.PlanFromSnapshot(snap, a.cfg.Paths.ImagesDir)
	d := download.NewDownloader(a.cfg)
	result := d.DownloadAll(ctx, items)

	errorLogPath := filepath.Join(a.cfg.Paths.SaveLocation, "download-errors.log")
	if err := download.WriteErrorLog(errorLogPath, result.Errors); err != nil {
		logger.Logger.Printf("Failed to write download error log: %v", err)
	}

	summary := fmt.Sprintf("%d downloaded, %d skipped, %d failed", result.Downloaded, result.Skipped, result.Failed)
	if result.Failed > 0 {
		summary += ". Failures listed in " + errorLogPath
	}
	return summary, ctx.Err()
}

func (a *app) importSnapshot(ctx context.Context) (string, error) {
	snap, err := crawler.LoadSnapshot(a.cfg.Paths.SnapshotFile)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot (run crawl first): %v", err)
	}

	database, err := db.NewDatabase(a.cfg.Store.DSN)
	if err != nil {
		return "", err
	}
	defer database.Close()

	reconciler := reconcile.NewReconciler(
		repository.NewPromptRepository(database.DB),
		repository.NewTagRepository(database.DB),
		repository.NewAuthorRepository(database.DB),
		a.cfg,
	)
	summary, err := reconciler.Reconcile(ctx, snap.Prompts)
	text := fmt.Sprintf("%d imported, %d skipped, %d errors", summary.Imported, summary.Skipped, summary.Errors)
	return text, err
}

func (a *app) translatePrompts(ctx context.Context) (string, error) {
	if a.cfg.Translate.Endpoint == "" || a.cfg.Translate.APIKey == "" {
		return "", fmt.Errorf("translate.endpoint and translate.api_key must be set in the config")
	}

	database, err := db.NewDatabase(a.cfg.Store.DSN)
	if err != nil {
		return "", err
	}
	defer database.Close()

	pass := translate.NewPass(
		repository.NewPromptRepository(database.DB),
		translate.NewHTTPTranslator(a.cfg),
		a.cfg,
	)
	translated, err := pass.Run(ctx)
	return fmt.Sprintf("%d prompts translated", translated), err
}

func (a *app) migrate(ctx context.Context) (string, error) {
	if a.cfg.PocketBase.AdminEmail == "" || a.cfg.PocketBase.AdminPassword == "" {
		return "", fmt.Errorf("pocketbase.admin_email and pocketbase.admin_password must be set in the config")
	}

	database, err := db.NewDatabase(a.cfg.Store.DSN)
	if err != nil {
		return "", err
	}
	defer database.Close()

	migrator := pocketbase.NewMigrator(
		pocketbase.NewClient(a.cfg),
		repository.NewPromptRepository(database.DB),
		repository.NewTagRepository(database.DB),
		repository.NewAuthorRepository(database.DB),
		repository.NewCategoryRepository(database.DB),
		a.cfg,
	)
	if err := migrator.Migrate(ctx); err != nil {
		return "", err
	}
	return "Migration to " + a.cfg.PocketBase.URL + " complete", nil
}

func (a *app) serve() (string, error) {
	database, err := db.NewDatabase(a.cfg.Store.DSN)
	if err != nil {
		return "", err
	}
	defer database.Close()

	server := api.NewServer(repository.NewPromptRepository(database.DB), a.cfg)
	if err := server.Run(); err != nil {
		return "", err
	}
	return "Server stopped", nil
}
