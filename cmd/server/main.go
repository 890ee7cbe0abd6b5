package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/presslane/docflow/internal/application/dispatcher"
	"github.com/presslane/docflow/internal/application/service"
	"github.com/presslane/docflow/internal/config"
	"github.com/presslane/docflow/internal/infrastructure/auth"
	"github.com/presslane/docflow/internal/infrastructure/external/lark"
	"github.com/presslane/docflow/internal/infrastructure/external/openai"
	"github.com/presslane/docflow/internal/infrastructure/ingest"
	"github.com/presslane/docflow/internal/infrastructure/persistence/repository"
	"github.com/presslane/docflow/internal/infrastructure/report"
	httpserver "github.com/presslane/docflow/internal/interfaces/http"
	"github.com/presslane/docflow/pkg/database"
	"github.com/presslane/docflow/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting document lifecycle service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Editorial.ReportOutputDir, 0755); err != nil {
		logger.Fatal("Failed to create report output directory", zap.Error(err))
	}

	docRepo := repository.NewDocumentRepository(db, logger)
	historyRepo := repository.NewHistoryRepository(db, logger)

	sugar := sugaredLogger{logger.Sugar()}

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(sugar))
	defer disp.Close()

	authorizer := auth.NewStaticAuthorizer(cfg.Editorial.Reviewers, logger)

	docOpts := []service.DocumentServiceOption{
		service.WithLogger(sugar),
		service.WithManuscriptExtractor(ingest.NewManuscriptReader(logger)),
	}
	if cfg.OpenAI.Enabled {
		docOpts = append(docOpts, service.WithCopyEditor(openai.NewCopyEditor(openai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.OpenAI.Temperature,
		}, logger)))
	}

	docService := service.NewDocumentService(docRepo, historyRepo, db, authorizer, disp, docOpts...)

	if cfg.Lark.Enabled {
		larkCfg := lark.Config{
			AppID:        cfg.Lark.AppID,
			AppSecret:    cfg.Lark.AppSecret,
			ReviewerIDs:  cfg.Lark.ReviewerIDs,
			AuthorIDType: cfg.Lark.AuthorIDType,
		}
		notifier := lark.NewNotifier(lark.NewClient(larkCfg, logger), larkCfg, logger)
		notificationService := service.NewNotificationService(docRepo, notifier, sugar)
		notificationService.RegisterHandlers(disp)
		logger.Info("Lark notifications enabled",
			zap.Int("reviewers", len(cfg.Lark.ReviewerIDs)))
	}

	reportService := service.NewReportService(
		docRepo,
		historyRepo,
		report.NewExcelWriter(logger),
		cfg.Editorial.ReportOutputDir,
		sugar,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, docService, reportService, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

// sugaredLogger adapts zap's sugared logger to the application layer's
// logging contracts
type sugaredLogger struct {
	sugar *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
