package app

import (
	"github.com/kaarshe/core/internal/modules/backup"
	"github.com/kaarshe/core/internal/modules/newsletter"
	"go.uber.org/zap"
)

// registerCronJobs registers the enabled background jobs.
func (a *App) registerCronJobs(newsSvc *newsletter.Service, exporter *backup.Exporter) {
	cfg := a.cfg.Newsletter
	cronLogger := a.logger.Named("CronService")

	if cfg.AutoBroadcast.Enable {
		var mark newsletter.Watermark = &newsletter.MemoryWatermark{}
		if a.rc != nil {
			mark = newsletter.NewRedisWatermark(a.rc)
		} else {
			cronLogger.Warn("auto broadcast watermark is process-local without redis")
		}
		job := newsletter.NewAutoBroadcaster(newsSvc, a.cms, mark,
			newsletter.ParseKind(cfg.AutoBroadcast.Kind), cfg.AutoBroadcast.Interval, a.logger).Job()
		a.sched.Register(job)
		cronLogger.Info("job registered", zap.String("job", job.Name), zap.String("every", humanizeDuration(job.Interval)))
	}

	if cfg.Export.Enable {
		job := exporter.Job()
		a.sched.Register(job)
		cronLogger.Info("job registered", zap.String("job", job.Name), zap.String("every", humanizeDuration(job.Interval)))
	}
}
