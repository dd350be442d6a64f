package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/inkdesk/internal/api/grpc/client"
	"github.com/dtroode/inkdesk/internal/api/grpc/security"
	"github.com/dtroode/inkdesk/internal/api/rest"
	"github.com/dtroode/inkdesk/internal/config"
	"github.com/dtroode/inkdesk/internal/credential"
	"github.com/dtroode/inkdesk/internal/logger"
	"github.com/dtroode/inkdesk/internal/model"
	"github.com/dtroode/inkdesk/internal/notify"
	"github.com/dtroode/inkdesk/internal/repository/file"
	"github.com/dtroode/inkdesk/internal/repository/memory"
	"github.com/dtroode/inkdesk/internal/repository/postgres"
	redistier "github.com/dtroode/inkdesk/internal/repository/redis"
	"github.com/dtroode/inkdesk/internal/service"
	storage "github.com/dtroode/inkdesk/internal/storage/minio"
	"github.com/dtroode/inkdesk/internal/token"
)

// App holds the components wired for one invocation.
type App struct {
	Store     *credential.Store
	Session   *service.Session
	Comments  *service.Comments
	Requests  *service.AuthorRequests
	Documents *storage.Client

	logger  *logger.Logger
	closers []func() error
}

// NewApp builds the credential tiers, the API transport and the services
// selected by cfg. Notifications are written to out.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger, out io.Writer) (*App, error) {
	app := &App{logger: log}

	persistent, err := app.persistentTier(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	ephemeral, err := app.ephemeralTier(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = credential.NewStore(persistent, ephemeral, log)

	api, err := app.transport(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.Storage.Enabled {
		documents, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		app.Documents = documents
	}

	notifier := notify.NewConsole(out, log)
	app.Session = service.NewSession(api, app.Store, token.NewInspector(), log)
	app.Comments = service.NewComments(api, app.Session, notifier, log)

	var linker model.DocumentLinker
	if app.Documents != nil {
		linker = app.Documents
	}
	app.Requests = service.NewAuthorRequests(api, app.Session, linker, notifier, log)

	log.Debug("App: initialized",
		"transport", cfg.API.Transport,
		"persistent", persistent.Name(),
		"ephemeral", ephemeral.Name(),
		"documents", app.Documents != nil)
	return app, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("App: failed to close resource",
				"error", err.Error())
		}
	}
	a.closers = nil
}

type apiClient interface {
	model.AuthService
	model.ModerationService
}

func (a *App) persistentTier(ctx context.Context, cfg *config.Config) (model.Tier, error) {
	switch cfg.Credentials.PersistentBackend {
	case "file":
		return file.NewTier(cfg.Credentials.FilePath, model.NamespaceDurable), nil
	case "postgres":
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize credential database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return postgres.NewCredentialRepository(db, model.NamespaceDurable), nil
	default:
		return nil, fmt.Errorf("unknown persistent credential backend %q", cfg.Credentials.PersistentBackend)
	}
}

func (a *App) ephemeralTier(ctx context.Context, cfg *config.Config) (model.Tier, error) {
	switch cfg.Credentials.EphemeralBackend {
	case "memory":
		return memory.NewTier(model.NamespaceSession), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redistier.NewTier(rdb, cfg.Redis.Prefix, model.NamespaceSession, cfg.Credentials.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown ephemeral credential backend %q", cfg.Credentials.EphemeralBackend)
	}
}

func (a *App) transport(cfg *config.Config) (apiClient, error) {
	switch cfg.API.Transport {
	case "http":
		return rest.New(cfg.API.BaseURL, nil, a.Store, a.logger), nil
	case "grpc":
		c, err := client.Dial(cfg.API.GRPCAddress, security.New(cfg.API.EnableTLS, cfg.API.CAFileName), a.Store, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownTransport, cfg.API.Transport)
	}
}

// restore re-establishes the stored session. Missing or rejected tokens
// leave the session anonymous and are not errors.
func (a *App) restore(ctx context.Context) {
	err := a.Session.Restore(ctx)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNoStoredToken), errors.Is(err, model.ErrSessionSuperseded):
	case errors.Is(err, model.ErrSessionExpired):
		a.logger.Info("App: stored session is no longer valid, signed out")
	default:
		a.logger.Warn("App: failed to restore session",
			"error", err.Error())
	}
}
