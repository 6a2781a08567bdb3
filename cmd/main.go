package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/api/rest"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/config"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/repository/postgres"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/repository/sqlite"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/service"
	storage "github.com/MrPiglr/mrpiglr.com-sub001/internal/storage/minio"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	siteID, err := uuid.Parse(cfg.Site.ID)
	if err != nil {
		logger.Fatal("invalid site id in config", "site_id", cfg.Site.ID, "error", err)
	}

	local, err := sqlite.Open(cfg.Fallback.Path, logger)
	if err != nil {
		logger.Error("failed to open local fallback store", "path", cfg.Fallback.Path, "error", err)
		local = nil
	}

	var siteStore model.SiteStore
	var contentStore model.ContentStore
	var fallback model.ContentStore

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err == nil {
		// The pool opens lazily; a ping proves the database is actually
		// reachable before the fallback decision is made.
		if pingErr := db.Ping(ctx); pingErr != nil {
			db.Close()
			err = pingErr
		}
	}
	if err != nil {
		if local == nil {
			logger.Fatal("remote store unreachable and no local fallback", "error", err)
		}
		logger.Error("remote store unreachable, running on local fallback", "error", err)
		siteStore = local
		contentStore = local
	} else {
		defer db.Close()
		siteStore = postgres.NewSiteRepository(db)
		contentStore = postgres.NewContentRepository(db)
		if local != nil {
			fallback = local
		}
	}
	if local != nil {
		defer local.Close()
	}

	media := newMediaStorage(ctx, logger, cfg.Storage)

	resolver := service.NewSite(siteStore, logger)
	defer resolver.Close()

	if _, err := resolver.Initialize(ctx, siteID, cfg.Site.Name, nil); err != nil {
		logger.Error("site resolution failed, serving defaults", "error", err)
	}

	stores := make(map[string]*service.Content)
	for _, collection := range model.Collections() {
		stores[collection.Name] = service.NewContent(collection, resolver, contentStore, fallback, logger)
	}

	verifier := token.NewVerifier(cfg.JWT.Secret)
	router := rest.NewRouter(
		rest.NewSiteHandler(resolver, media, logger),
		rest.NewContentHandler(stores, logger),
		verifier,
		cfg.HTTP.AllowedOrigins,
		logger,
	)

	certFile, keyFile := "", ""
	if cfg.HTTP.EnableHTTPS {
		certFile = cfg.HTTP.CertFileName
		keyFile = cfg.HTTP.PrivateKeyFileName
	}
	server := rest.NewServer(router, cfg.HTTP.Port, certFile, keyFile, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Start(); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", server.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

// newMediaStorage is best-effort: a missing object store disables logo
// uploads but never blocks startup.
func newMediaStorage(ctx context.Context, logger *logger.Logger, cfg config.Storage) model.Storage {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Error("failed to create minio client, media uploads disabled", "error", err)
		return nil
	}

	client, err := storage.NewClient(ctx, minioClient, cfg.Bucket)
	if err != nil {
		logger.Error("failed to initialize media storage, uploads disabled", "error", err)
		return nil
	}

	return client
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
