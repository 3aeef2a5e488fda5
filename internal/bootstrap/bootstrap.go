package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/omarkov/insight-session/internal/config"
	"github.com/omarkov/insight-session/internal/core/domain"
	"github.com/omarkov/insight-session/internal/core/reactor"
	"github.com/omarkov/insight-session/internal/core/store"
	"github.com/omarkov/insight-session/internal/core/usecase"
	"github.com/omarkov/insight-session/internal/infrastructure/manifest/badger"
	"github.com/omarkov/insight-session/internal/infrastructure/notify"
	"github.com/omarkov/insight-session/internal/infrastructure/pdfinfo"
	"github.com/omarkov/insight-session/internal/infrastructure/remote"
	"github.com/omarkov/insight-session/internal/infrastructure/renderer/embedview"
	"github.com/omarkov/insight-session/internal/infrastructure/resilience"
	"github.com/omarkov/insight-session/internal/infrastructure/storage/localfs"
	"github.com/omarkov/insight-session/internal/observability/metrics"
)

// App holds the wired component graph for one session process: the store,
// the remote client, the reactors that keep renderer and remote state in
// sync, and the inbound use cases the command surfaces call.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.SessionMetrics

	Store       *store.Store
	Remote      *remote.Client
	Credentials *badger.CredentialStore

	SessionUC  *usecase.SessionUseCase
	InsightsUC *usecase.InsightsUseCase

	Viewer     *reactor.Viewer
	Artifacts  *reactor.Generator
	Playback   *reactor.Playback
	Reconciler *reactor.Reconciler

	closeFn func()
}

// Options tunes bootstrap for the hosting command. The MCP server runs
// without the metrics endpoint.
type Options struct {
	Service      string
	WithRenderer bool
	WithMetrics  bool
}

func New(cfg config.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Service == "" {
		opts.Service = "session"
	}

	var m *metrics.SessionMetrics
	if opts.WithMetrics {
		m = metrics.NewSessionMetrics(opts.Service)
	}

	st := store.New(logger)
	st.SetObserver(func(action store.Action, _ domain.Session) {
		m.Dispatched(store.Name(action))
	})

	db, err := badger.Open(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest db: %w", err)
	}
	manifestStore := badger.NewManifestStore(db)
	credentials := badger.NewCredentialStore(db)

	cache, err := localfs.New(cfg.CachePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init content cache: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	client := remote.New(cfg.APIBaseURL, credentials, remote.Options{
		Timeout:            cfg.APITimeout,
		GenerationPerMin:   cfg.GenerationPerMin,
		ResilienceExecutor: executor,
	})

	notifier := notify.NewLogNotifier(logger)
	pages := pdfinfo.NewCounter()

	generator := reactor.NewGenerator(st, client, notifier, m, logger)
	reconciler := reactor.NewReconciler(st, client, credentials, m, logger, cfg.PollInterval)

	app := &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Store:       st,
		Remote:      client,
		Credentials: credentials,
		SessionUC:   usecase.NewSessionUseCase(st, client, manifestStore, cache, pages, logger),
		InsightsUC:  usecase.NewInsightsUseCase(st, client, logger),
		Artifacts:   generator,
		Reconciler:  reconciler,
	}

	if opts.WithRenderer {
		view := embedview.New(embedview.Config{
			ViewerURL: cfg.ViewerURL,
			Headless:  cfg.ViewerHeadless,
		}, logger)
		audio := embedview.NewAudioOutput(view)

		app.Viewer = reactor.NewViewer(st, client, view, cache, notifier, m, logger, reactor.ViewerConfig{
			ReadyAttempts: cfg.RendererReadyRetries,
			ReadyDelay:    cfg.RendererReadyDelay,
			SettleDelay:   cfg.HighlightSettle,
			FollowupDelay: cfg.HighlightFollowup,
		})
		app.Playback = reactor.NewPlayback(generator, audio, cache, client.FetchAudio, logger)

		app.closeFn = func() {
			view.Close()
			closeDB(db, logger)
		}
	} else {
		app.Playback = reactor.NewPlayback(generator, nil, cache, client.FetchAudio, logger)
		app.closeFn = func() { closeDB(db, logger) }
	}

	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func closeDB(db *badger.DB, logger *slog.Logger) {
	if err := db.GC(); err != nil {
		logger.Debug("manifest gc", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Warn("close manifest db", "error", err)
	}
}
