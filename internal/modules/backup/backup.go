// Package backup exports the subscriber list as CSV to object storage, on a
// schedule or on an admin trigger. Addresses never leave over HTTP.
package backup

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/modules/newsletter"
	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/kaarshe/core/internal/pkg/cron"
	"github.com/kaarshe/core/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	ExportJob           = "newsletter_export"
	defaultPathTemplate = "newsletter/{filename}"
	exportPageSize      = 500
)

var csvHeader = []string{"email", "source", "created_at"}

// Exporter streams the store into CSV.
type Exporter struct {
	store    newsletter.Store
	uploader Uploader
	prefix   string
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewExporter builds an exporter. A nil uploader makes Run fail as not
// configured.
func NewExporter(store newsletter.Store, uploader Uploader, prefix string, interval time.Duration, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		store:    store,
		uploader: uploader,
		prefix:   prefix,
		interval: interval,
		now:      time.Now,
		logger:   logger.Named("export"),
	}
}

// WriteCSV writes every subscriber to w and returns the row count.
func (e *Exporter) WriteCSV(ctx context.Context, w io.Writer) (int, error) {
	if err := e.store.Ready(); err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	rows := 0
	err := e.store.Each(ctx, exportPageSize, func(page []newsletter.Subscriber) error {
		for _, sub := range page {
			created := ""
			if !sub.CreatedAt.IsZero() {
				created = sub.CreatedAt.UTC().Format(time.RFC3339)
			}
			if err := cw.Write([]string{sub.Email, sub.Source, created}); err != nil {
				return err
			}
			rows++
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return rows, fmt.Errorf("export subscribers: %w", err)
	}
	cw.Flush()
	return rows, cw.Error()
}

// Run uploads a fresh export and returns its object key.
func (e *Exporter) Run(ctx context.Context) (string, int, error) {
	if e.uploader == nil {
		return "", 0, apperr.NotImplemented("Subscriber export storage is not configured")
	}
	var buf bytes.Buffer
	rows, err := e.WriteCSV(ctx, &buf)
	if err != nil {
		return "", rows, err
	}
	now := e.now()
	key := renderObjectKey(e.prefix, exportFilename(now), now)
	if err := e.uploader.Upload(ctx, key, buf.Bytes(), "text/csv; charset=utf-8"); err != nil {
		return "", rows, err
	}
	e.logger.Info("subscribers exported", zap.String("key", key), zap.Int("rows", rows))
	return key, rows, nil
}

func (e *Exporter) Job() cron.Job {
	return cron.Job{
		Name:        ExportJob,
		Description: "Upload a CSV of newsletter subscribers",
		Interval:    e.interval,
		Fn: func(ctx context.Context) error {
			_, _, err := e.Run(ctx)
			return err
		},
	}
}

func exportFilename(now time.Time) string {
	return "subscribers-" + now.UTC().Format("20060102-150405") + ".csv"
}

// renderObjectKey expands {Y} {m} {d} {H} {M} {s} and {filename} in prefix.
// A prefix without {filename} is treated as a directory.
func renderObjectKey(prefix, filename string, now time.Time) string {
	tpl := strings.TrimSpace(prefix)
	switch {
	case tpl == "":
		tpl = defaultPathTemplate
	case !strings.Contains(tpl, "{filename}"):
		tpl = strings.TrimRight(tpl, "/") + "/{filename}"
	}
	now = now.UTC()
	replacer := strings.NewReplacer(
		"{Y}", now.Format("2006"),
		"{m}", now.Format("01"),
		"{d}", now.Format("02"),
		"{H}", now.Format("15"),
		"{M}", now.Format("04"),
		"{s}", now.Format("05"),
		"{filename}", filename,
	)
	key := normalizeObjectKey(replacer.Replace(tpl))
	if key == "" {
		return filename
	}
	return key
}

// Handler serves the admin export endpoints.
type Handler struct {
	exp *Exporter
}

func NewHandler(exp *Exporter) *Handler { return &Handler{exp: exp} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/admin/newsletter/export", authMW)
	g.POST("", h.upload)
}

// POST /admin/newsletter/export
func (h *Handler) upload(c *gin.Context) {
	key, rows, err := h.exp.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"key": key, "rows": rows})
}
