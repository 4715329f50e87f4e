package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/config"
	"github.com/kaarshe/core/internal/middleware"
	"github.com/kaarshe/core/internal/modules/newsletter"
	pkgcron "github.com/kaarshe/core/internal/pkg/cron"
	"github.com/kaarshe/core/internal/pkg/mail"
	"github.com/kaarshe/core/internal/pkg/metrics"
	pkgredis "github.com/kaarshe/core/internal/pkg/redis"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	rc      *pkgredis.Client
	cms     *wp.Client
	mailer  *mail.Sender
	store   newsletter.Store
	sched   *pkgcron.Scheduler
	cancel  context.CancelFunc
	closers []func() error
}

// New wires config → redis → CMS client → mail → subscriber store → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{cfg: cfg, logger: logger, cancel: cancel}

	if cfg.RedisEnabled() {
		rc, err := pkgredis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			// Redis is optional.
			logger.Warn("redis unavailable, continuing without cache and rate limit", zap.Error(err))
		} else {
			a.rc = rc
			a.closers = append(a.closers, rc.Close)
		}
	}

	a.cms = wp.New(wp.Config{
		BaseURL:  cfg.WordPress.APIBase,
		User:     cfg.WordPress.AppUser,
		Password: cfg.WordPress.AppPassword,
		Timeout:  cfg.WordPress.Timeout,
	}, wp.WithLogger(logger))
	if err := a.cms.CanRead(); err != nil {
		logger.Warn("wordpress api base is not set; content and CMS-backed forms are disabled")
	}

	a.mailer = mail.New(mail.Config{
		Host:           cfg.Mail.Host,
		Port:           cfg.Mail.Port,
		User:           cfg.Mail.User,
		Pass:           cfg.Mail.Pass,
		From:           cfg.Mail.From,
		ReplyTo:        cfg.Mail.ReplyTo,
		ResendKey:      cfg.Mail.ResendKey,
		MailjetPublic:  cfg.Mail.MailjetPublic,
		MailjetPrivate: cfg.Mail.MailjetPrivate,
	}, logger.Named("mail"))
	if !a.mailer.Enabled() {
		logger.Warn("no mail provider configured; notifications are skipped")
	} else {
		logger.Info("mail provider selected", zap.String("provider", a.mailer.Provider()))
	}

	store, closeStore, err := openStore(ctx, cfg, a.cms, a.rc, logger)
	if err != nil {
		a.close()
		cancel()
		return nil, fmt.Errorf("newsletter store: %w", err)
	}
	a.store = store
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-broadcast-secret", "x-revalidate-secret", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length", "x-kaarshe-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))
	a.router = router

	a.sched = pkgcron.New(logger.Named("cron"))
	a.registerRoutes()
	go a.sched.Start(ctx)

	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and releases connections.
func (a *App) Shutdown() {
	a.cancel()
	a.sched.Stop()
	a.close()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close resource", zap.Error(err))
		}
	}
	a.closers = nil
}

var processStart = time.Now()
