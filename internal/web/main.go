package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ai-scholar/scholar-admin/internal/announce"
	"github.com/ai-scholar/scholar-admin/internal/config"
	fiberlogger "github.com/ai-scholar/scholar-admin/internal/logger/adapter/fiber"
	"github.com/ai-scholar/scholar-admin/internal/retry"
	"github.com/ai-scholar/scholar-admin/internal/settings"
	"github.com/ai-scholar/scholar-admin/internal/store"
	"github.com/ai-scholar/scholar-admin/internal/web/handler/announcements"
	exporthandler "github.com/ai-scholar/scholar-admin/internal/web/handler/export"
	"github.com/ai-scholar/scholar-admin/internal/web/handler/notifications"
	settingshandler "github.com/ai-scholar/scholar-admin/internal/web/handler/settings"
	"github.com/ai-scholar/scholar-admin/internal/web/handler/status"
	"github.com/ai-scholar/scholar-admin/internal/web/handler/workflows"
	"github.com/ai-scholar/scholar-admin/internal/workflow"
)

// CheckAliveURI is the liveness probe path.
const CheckAliveURI = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB

	repo      *settings.Repository
	workflows *workflow.Service
	announcer *announce.Announcer
	pipeline  *retry.Pipeline
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// cancel any pending auto-save flush before the server goes away
	s.repo.Close()

	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// checkAlive reports liveness for the load balancer probe.
func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates a new web service with the given configuration. The blob
// store backs the settings repository; the database backs the workflow
// collection.
func New(cfg *config.Config, db *gorm.DB, st store.Store) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if st == nil {
		panic("store cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("percent", func(rate float64) string {
		return fmt.Sprintf("%.1f%%", rate)
	})

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	// access log with the same rolling-file setup as the main logger
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAliveURI,
	}))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     false,
			},
		),
	)

	announcer := announce.New()
	pipeline := retry.NewPipeline(retry.WithObserver(pipelineAnnouncer{announcer: announcer}))
	repo := settings.NewRepository(st, settings.WithNotifier(announcer))
	workflowService := workflow.NewService(db)

	// hydrate the settings record before the first request
	repo.Load()

	service := &Service{
		cfg:       cfg,
		App:       app,
		db:        db,
		repo:      repo,
		workflows: workflowService,
		announcer: announcer,
		pipeline:  pipeline,
	}
	service.alive.Store(true)

	app.Get(CheckAliveURI, service.checkAlive)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// init handlers (they register their own routes)
	initHandlers := []struct {
		name string
		init func() error
	}{
		{"settings", func() error { return settingshandler.Handler.Init(app, cfg, repo, pipeline) }},
		{"notifications", func() error { return notifications.Handler.Init(app, cfg, repo, pipeline) }},
		{"workflows", func() error { return workflows.Handler.Init(app, cfg, workflowService) }},
		{"export", func() error { return exporthandler.Handler.Init(app, cfg, repo) }},
		{"announcements", func() error { return announcements.Handler.Init(app, cfg, announcer) }},
		{"status", func() error { return status.Handler.Init(app, cfg, repo, workflowService, pipeline) }},
	}

	for _, h := range initHandlers {
		if err := h.init(); err != nil {
			log.Fatal().Err(err).Str("handler", h.name).Msg("handler init failed")
		}
	}

	// redirect root to the status page
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(status.Path)
	})

	return service
}
