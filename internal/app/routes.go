package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/middleware"
	"github.com/kaarshe/core/internal/modules/backup"
	"github.com/kaarshe/core/internal/modules/intake"
	"github.com/kaarshe/core/internal/modules/newsletter"
	"github.com/kaarshe/core/internal/modules/revalidate"
	"github.com/kaarshe/core/internal/modules/site"
	"github.com/kaarshe/core/internal/modules/tasks/crontask"
	"github.com/kaarshe/core/internal/pkg/jwt"
	"github.com/kaarshe/core/internal/pkg/metrics"
	"github.com/kaarshe/core/internal/pkg/response"
	"go.uber.org/zap"
)

const apiPrefix = "/api"

var appInfo = gin.H{
	"name":    "kaarshe-core",
	"version": "1.0.0",
}

func (a *App) registerRoutes() {
	r := a.router
	cfg := a.cfg
	logger := a.logger

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	authMW := middleware.AdminAuth(jwt.NewSigner(cfg.JWTSecret))
	formMW := []gin.HandlerFunc{
		middleware.RateLimit(a.rc, cfg.RateLimit.Max, cfg.RateLimit.Window, logger),
		middleware.Idempotence(a.rc),
	}
	httpCache := middleware.NewHTTPCache(a.rc, middleware.HTTPCacheOptions{
		TTL:             cfg.Cache.TTL,
		EnableCDNHeader: !cfg.IsDev(),
		Disable:         cfg.Cache.Disable || cfg.IsDev(),
	}, logger.Named("http-cache"))

	r.GET("/metrics", metrics.Handler())

	api := r.Group(apiPrefix)
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(processStart)
		c.JSON(http.StatusOK, gin.H{
			"timestamp": up.Milliseconds(),
			"humanize":  humanizeDuration(up),
		})
	})

	// Newsletter
	newsSvc := newsletter.NewService(a.store, a.mailer, newsletter.Settings{
		SiteURL:         cfg.Site.URL,
		SiteName:        cfg.Site.Name,
		OwnerEmail:      cfg.Site.OwnerEmail,
		BroadcastSecret: cfg.Secrets.Broadcast,
		BatchSize:       cfg.Newsletter.BatchSize,
		PageSize:        cfg.Newsletter.PageSize,
	}, logger)
	newsletter.NewHandler(newsSvc).RegisterRoutes(api, authMW, formMW...)

	// Contact and speaking requests
	intakeSvc := intake.NewService(a.cms, a.mailer, intake.Settings{
		OwnerEmail:       cfg.Site.OwnerEmail,
		ContactPostType:  cfg.WordPress.ContactPostType,
		SpeakingPostType: cfg.WordPress.SpeakingPostType,
	}, logger)
	intake.NewHandler(intakeSvc).RegisterRoutes(api, formMW...)

	// Read API and its invalidation
	siteSvc := site.NewService(a.cms, site.Settings{
		SiteName:         cfg.Site.Name,
		HomePageSlug:     cfg.WordPress.HomePageSlug,
		SettingsPageSlug: cfg.WordPress.SettingsPageSlug,
	}, logger)
	site.NewHandler(siteSvc).RegisterRoutes(api, httpCache.Middleware())
	revalidate.NewHandler(cfg.Secrets.Revalidate, httpCache, logger).RegisterRoutes(api)

	// Export
	var uploader backup.Uploader
	if cfg.Newsletter.Export.Bucket != "" {
		up, err := backup.NewS3Uploader(cfg.Newsletter.Export)
		if err != nil {
			logger.Warn("subscriber export storage disabled", zap.Error(err))
		} else {
			uploader = up
		}
	}
	exporter := backup.NewExporter(a.store, uploader, cfg.Newsletter.Export.Prefix, cfg.Newsletter.Export.Interval, logger)
	backup.NewHandler(exporter).RegisterRoutes(api, authMW)

	a.registerCronJobs(newsSvc, exporter)
	crontask.NewHandler(a.sched).RegisterRoutes(api, authMW)
}
