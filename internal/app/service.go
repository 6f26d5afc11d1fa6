// Package app wires the stores, services and HTTP server into one process.
package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"clientkit/internal/auth"
	"clientkit/internal/config"
	apphttp "clientkit/internal/http"
	"clientkit/internal/onboarding"
	"clientkit/internal/payment"
	"clientkit/internal/repository/snapshot"
	"clientkit/internal/seed"
	"clientkit/internal/storage"
	"clientkit/internal/upload"
	"clientkit/pkg/markdown"
	"clientkit/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	serverAddrPrefix    = ":"
	maintenanceInterval = time.Minute

	gaugeOnboardingSessions = "onboarding_sessions"
)

type urlSweeper interface {
	SweepURLs() int
}

// Service is the running application.
type Service struct {
	config   *config.Config
	logger   *zap.Logger
	db       *snapshot.DB
	blobs    storage.BlobStore
	sessions *onboarding.Manager
	server   *apphttp.Server
}

// NewService opens the configured backends and builds the HTTP server. The
// demo data is seeded into an empty store when enabled.
func NewService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db := snapshot.New(store)

	blobs, err := OpenBlobStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	if cfg.App.SeedDemoData {
		if err := seedDemoData(ctx, db, cfg, logger); err != nil {
			db.Close()
			return nil, err
		}
	}

	users := snapshot.NewUserRepository(db)
	projects := snapshot.NewProjectRepository(db, cfg.App.PublicBaseURL)
	chats := snapshot.NewChatRepository(db)

	sessions := onboarding.NewManager(onboarding.ManagerConfig{
		Projects:  projects,
		Recorder:  onboarding.NewRecorder(projects, chats),
		Processor: payment.NewSimulated(cfg.App.PaymentDelay),
		TTL:       cfg.App.SessionTTL,
		Logger:    logger,
	})

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)

	var registry *metrics.Registry
	if cfg.App.MetricsEnabled {
		registry = metrics.New()
		registry.Gauge(gaugeOnboardingSessions, sessions.Len)
	}

	server := apphttp.NewServer(&apphttp.ServerDependencies{
		Config:         cfg,
		Logger:         logger,
		UserRepo:       users,
		ProjectRepo:    projects,
		ChatRepo:       chats,
		Sessions:       sessions,
		Uploads:        upload.NewService(blobs, cfg.App.MaxUploadSize, logger),
		Markdown:       markdown.New(),
		JWTService:     jwtService,
		AuthMiddleware: auth.NewMiddleware(jwtService, users),
		Metrics:        registry,
	})

	return &Service{
		config:   cfg,
		logger:   logger,
		db:       db,
		blobs:    blobs,
		sessions: sessions,
		server:   server,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server",
			zap.String("port", s.config.Server.Port),
			zap.String("store", s.config.Store.Driver),
			zap.String("blob", s.config.Blob.Driver),
		)
		err := s.server.Start(serverAddrPrefix + s.config.Server.Port)
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		s.maintain(ctx)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close cancels live onboarding sessions and releases the store.
func (s *Service) Close() error {
	s.sessions.CloseAll()
	return s.db.Close()
}

// maintain expires idle onboarding sessions and stale presigned URLs.
func (s *Service) maintain(ctx context.Context) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("expired onboarding sessions", zap.Int("count", n))
			}
			if sweeper, ok := s.blobs.(urlSweeper); ok {
				sweeper.SweepURLs()
			}
		}
	}
}

func seedDemoData(ctx context.Context, db *snapshot.DB, cfg *config.Config, logger *zap.Logger) error {
	fixtures, err := seed.Default()
	if err != nil {
		return err
	}

	res, err := seed.Seed(ctx, db, fixtures, seed.Options{PublicBaseURL: cfg.App.PublicBaseURL})
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.Debug("store not empty, demo data not seeded")
		return nil
	}

	logger.Info("seeded demo data",
		zap.Int("projects", res.Projects),
		zap.Int("rooms", res.Rooms),
		zap.Int("messages", res.Messages),
	)
	return nil
}
