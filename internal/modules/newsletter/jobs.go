package newsletter

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/kaarshe/core/internal/pkg/cron"
	"github.com/kaarshe/core/internal/pkg/redis"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

const (
	AutoBroadcastJob   = "newsletter_auto_broadcast"
	watermarkKey       = "kaarshe:newsletter:last_post_id"
	autoBroadcastLimit = 10
)

// Watermark remembers the newest post id already announced.
type Watermark interface {
	Load(ctx context.Context) (id int64, ok bool, err error)
	Save(ctx context.Context, id int64) error
}

type redisWatermark struct {
	client *redis.Client
}

func NewRedisWatermark(client *redis.Client) Watermark { return &redisWatermark{client: client} }

func (w *redisWatermark) Load(ctx context.Context) (int64, bool, error) {
	raw, err := w.client.Get(ctx, watermarkKey)
	if err != nil || raw == "" {
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

func (w *redisWatermark) Save(ctx context.Context, id int64) error {
	return w.client.Set(ctx, watermarkKey, strconv.FormatInt(id, 10), 0)
}

// MemoryWatermark is process-local; it restarts from scratch on boot.
type MemoryWatermark struct {
	mu sync.Mutex
	id int64
	ok bool
}

func (w *MemoryWatermark) Load(context.Context) (int64, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id, w.ok, nil
}

func (w *MemoryWatermark) Save(_ context.Context, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.id, w.ok = id, true
	return nil
}

// AutoBroadcaster announces newly published posts. The first run only
// records the newest id so existing posts are never mailed.
type AutoBroadcaster struct {
	svc      *Service
	posts    *wp.Client
	mark     Watermark
	kind     Kind
	interval time.Duration
	logger   *zap.Logger
}

func NewAutoBroadcaster(svc *Service, posts *wp.Client, mark Watermark, kind Kind, interval time.Duration, logger *zap.Logger) *AutoBroadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoBroadcaster{
		svc:      svc,
		posts:    posts,
		mark:     mark,
		kind:     kind,
		interval: interval,
		logger:   logger.Named("auto-broadcast"),
	}
}

func (a *AutoBroadcaster) Job() cron.Job {
	return cron.Job{
		Name:        AutoBroadcastJob,
		Description: "Email subscribers about newly published posts",
		Interval:    a.interval,
		Fn:          a.Run,
	}
}

func (a *AutoBroadcaster) Run(ctx context.Context) error {
	res, err := a.posts.ListItems(ctx, "posts", wp.ListParams{
		PerPage: autoBroadcastLimit,
		Order:   "desc",
		OrderBy: "date",
	})
	if err != nil {
		return err
	}
	if len(res.Items) == 0 {
		return nil
	}

	items := append([]wp.Item(nil), res.Items...)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	last, ok, err := a.mark.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		newest := items[len(items)-1].ID
		a.logger.Info("watermark initialized", zap.Int64("post_id", newest))
		return a.mark.Save(ctx, newest)
	}

	for i := range items {
		item := &items[i]
		if item.ID <= last {
			continue
		}
		excerpt := ""
		if item.Excerpt != nil {
			excerpt = wp.StripHTML(item.Excerpt.Rendered)
		}
		out, err := a.svc.broadcast(ctx, BroadcastMessage{
			Kind:    a.kind,
			Title:   item.PlainTitle(),
			URL:     item.Link,
			Excerpt: excerpt,
		})
		if err != nil {
			return err
		}
		a.logger.Info("post announced", zap.Int64("post_id", item.ID), zap.Int("sent", out.Sent))
		if err := a.mark.Save(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}
