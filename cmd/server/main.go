package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MyriadFlow/veritaschain-sub001/internal/config"
	"github.com/MyriadFlow/veritaschain-sub001/internal/database"
	"github.com/MyriadFlow/veritaschain-sub001/internal/handlers"
	"github.com/MyriadFlow/veritaschain-sub001/internal/logger"
	"github.com/MyriadFlow/veritaschain-sub001/internal/services"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := logger.New("veritas-api", cfg.LogLevel)

	factory, closeSource, err := newArticleSource(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up article source")
	}
	defer closeSource()

	router, err := handlers.NewRouter(handlers.NewArticlesHandler(factory, log, cfg.RequestTimeout), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up router")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithFields(logrus.Fields{
			"port":       cfg.Port,
			"source":     cfg.ArticleSource,
			"setup_time": time.Since(startTime).String(),
		}).Info("Server is running")

		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server stopped")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.WithField("uptime", time.Since(startTime).String()).Info("Server stopped")
}

// newArticleSource opens the configured data source and returns the per-request service factory.
func newArticleSource(cfg *config.Config, log *logger.Logger) (services.Factory, func(), error) {
	switch cfg.ArticleSource {
	case config.SourceIndexer:
		log.WithField("indexer_url", cfg.IndexerURL).Info("Using chain indexer")
		client := services.NewHTTPClient(cfg.IndexerTimeout)
		return services.IndexerFactory(cfg.IndexerURL, client), func() { client.CloseIdleConnections() }, nil
	default:
		db, err := database.Open(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}

		if cfg.SeedDatabase {
			if err := seed(db); err != nil {
				db.Close()
				return nil, nil, err
			}
			log.Info("Seeded article index")
		}

		log.WithField("database_path", cfg.DatabasePath).Info("Using local article index")
		return services.StoreFactory(db), func() { db.Close() }, nil
	}
}

func seed(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return database.Seed(ctx, db)
}
