package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/application/service"
	"github.com/presslane/docflow/internal/config"
	"github.com/presslane/docflow/internal/infrastructure/auth"
	"github.com/presslane/docflow/internal/infrastructure/ingest"
	"github.com/presslane/docflow/internal/infrastructure/persistence/repository"
	"github.com/presslane/docflow/pkg/database"
)

// Imports a manuscript file (PDF, txt or markdown) as a new draft
// document. Useful for seeding a deployment or testing ingest without
// going through the HTTP API.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	title := flag.String("title", "", "document title")
	author := flag.String("author", "", "author user ID")
	file := flag.String("file", "", "path to the manuscript file")
	flag.Parse()

	if *title == "" || *author == "" || *file == "" {
		fmt.Fprintln(os.Stderr, "usage: import-manuscript -title TITLE -author USER -file PATH [-config PATH]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	docRepo := repository.NewDocumentRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)

	disp := dispatcher.NewDispatcher()
	defer disp.Close()

	docService := service.NewDocumentService(
		docRepo,
		historyRepo,
		db,
		auth.NewStaticAuthorizer(cfg.Editorial.Reviewers, logger),
		disp,
		service.WithManuscriptExtractor(ingest.NewManuscriptReader(logger)),
	)

	view, err := docService.CreateFromManuscript(context.Background(), *title, *author, *file)
	if err != nil {
		log.Fatalf("Failed to import manuscript: %v", err)
	}

	fmt.Printf("Imported %q as document %d (public id %s), stage %s\n",
		*title, view.ID, view.PublicID, view.Stage)
}
