package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"casedocs/internal/broadcast"
	"casedocs/internal/config"
	"casedocs/internal/handler"
	"casedocs/internal/repository/postgres"
	postgresCasework "casedocs/internal/repository/postgres/casework"
	serviceCasework "casedocs/internal/service/casework"
	"casedocs/internal/storage/s3blob"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// In debug mode, tee logs into a timestamped file as well
	logOut := io.Writer(os.Stdout)
	if cfg.Debug {
		if f, err := config.SetupLogFile("logs", config.MaxLogFiles); err == nil {
			defer f.Close()
			logOut = io.MultiWriter(os.Stdout, f)
		} else {
			log.Printf("log file setup failed, logging to stdout only: %v", err)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx := context.Background()

	// Apply schema migrations before opening the pool
	if err := postgres.RunMigrations(ctx, cfg.DatabaseURL, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgresCasework.NewDocumentRepository(repoConfig)
	folderRepo := postgresCasework.NewFolderRepository(repoConfig)
	auditRepo := postgresCasework.NewAuditRepository(repoConfig)
	redactionRepo := postgresCasework.NewRedactionStatusRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Blob storage
	blobStore, err := s3blob.New(ctx, s3blob.Options{
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Endpoint:  cfg.S3Endpoint,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	// Reference data and domain services
	folderRegistry, err := serviceCasework.NewFolderRegistry()
	if err != nil {
		log.Fatalf("Failed to load folder catalogue: %v", err)
	}

	redactionResolver := serviceCasework.NewRedactionResolver(redactionRepo, cfg.RedactionCacheTTL, logger)
	formatter := serviceCasework.NewFormatter(redactionResolver)
	broadcaster := broadcast.NewLogBroadcaster(logger)

	docService := serviceCasework.NewDocumentService(
		docRepo,
		folderRepo,
		auditRepo,
		txManager,
		folderRegistry,
		redactionResolver,
		broadcaster,
		logger,
		cfg.BlobStorageHost,
		cfg.BlobStorageContainer,
		cfg.UploadConcurrency,
	)
	downloadService := serviceCasework.NewDownloadService(docRepo, blobStore, logger)

	logger.Info("services initialized")

	// HTTP routes
	docHandler := handler.NewDocumentHandler(docService, downloadService, auditRepo, formatter, logger)
	folderHandler := handler.NewFolderHandler(docService, formatter, logger)
	mux := handler.Routes(docHandler, folderHandler)

	// CORS wraps the whole mux to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
