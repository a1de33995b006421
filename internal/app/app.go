// Package app wires the studyboard collaborators for one workspace.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studyboard/internal/assistant"
	"studyboard/internal/blob"
	"studyboard/internal/config"
	"studyboard/internal/db"
	"studyboard/internal/domain"
	"studyboard/internal/engine"
	"studyboard/internal/identity"
	"studyboard/internal/logging"
	"studyboard/internal/metrics"
	"studyboard/internal/migrate"
	"studyboard/internal/repo"
	"studyboard/internal/store"
)

// Options tune Bootstrap. Zero values fall back to the workspace config and the wall clock.
type Options struct {
	Workspace string
	Config    *config.Config
	APIKey    string
	Now       func() time.Time
	Logger    logging.Logger
}

// App holds the collaborators built for one workspace.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Repo    repo.Repo
	Engine  engine.Engine
	Metrics *metrics.Metrics
	Logger  logging.Logger
}

// Bootstrap opens the workspace database, seeds the in-memory stores and
// resumes any persisted session.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.Workspace)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	logger := opts.Logger
	if logger == nil {
		if err := logging.SetLogLevel(cfg.App.LogLevel); err != nil {
			return nil, err
		}
		logger = logging.New("studyboard")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(db.Config{Workspace: opts.Workspace})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	r := repo.Repo{DB: conn, Now: now}

	actors, projects, activities := cfg.Seed.Build(domain.Today(now(), loc))
	st, err := store.New()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := st.Seed(projects, activities); err != nil {
		conn.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	blobs, err := blob.Open(ctx, cfg.Attachments)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("attachments: %w", err)
	}
	m, err := metrics.New()
	if err != nil {
		conn.Close()
		return nil, err
	}
	model, err := assistant.NewGoogleAI(ctx, opts.APIKey, cfg.Assistant.Model)
	if err != nil {
		logger.Warnf("assistant disabled: %v", err)
		model = nil
	}
	ai := assistant.New(model, assistant.Options{
		PromptTemplate: cfg.Assistant.Prompt,
		Logger:         logger.Named("assistant"),
		Metrics:        m,
	})

	ids := identity.NewStore(identity.NewRegistry(actors), r, cfg.App.SessionKey, logger.Named("identity"))
	e := engine.New(engine.Options{
		Identity:  ids,
		Store:     st,
		Blobs:     blobs,
		Assistant: ai,
		Metrics:   m,
		Logger:    logger.Named("engine"),
		Location:  loc,
	})
	e.Now = now
	if _, _, err := e.Restore(ctx); err != nil {
		logger.Warnf("restore session: %v", err)
	}
	return &App{
		Config:  cfg,
		DB:      conn,
		Repo:    r,
		Engine:  e,
		Metrics: m,
		Logger:  logger,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
