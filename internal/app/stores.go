package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kaarshe/core/internal/config"
	"github.com/kaarshe/core/internal/database"
	"github.com/kaarshe/core/internal/modules/newsletter"
	pkgredis "github.com/kaarshe/core/internal/pkg/redis"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

// openStore builds the subscriber store named by newsletter.store. The
// returned closer, when non-nil, releases the backend.
func openStore(ctx context.Context, cfg *config.AppConfig, cms *wp.Client, rc *pkgredis.Client, logger *zap.Logger) (newsletter.Store, func() error, error) {
	switch cfg.Newsletter.Store {
	case config.StoreMySQL:
		db, err := database.Connect(cfg, true)
		if err != nil {
			return nil, nil, err
		}
		return newsletter.NewGormStore(db), func() error { return database.Close(db) }, nil

	case config.StoreMongo:
		client, coll, err := newsletter.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		st, err := newsletter.NewMongoStore(ctx, coll)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return st, func() error { return client.Disconnect(context.Background()) }, nil

	case config.StoreBadger:
		db, err := newsletter.OpenBadger(filepath.Join(cfg.DataDir(), "subscribers"))
		if err != nil {
			return nil, nil, err
		}
		return newsletter.NewBadgerStore(db), db.Close, nil

	case config.StoreCMS, "":
		var locker newsletter.Locker
		if rc != nil {
			locker = newsletter.NewRedisLocker(rc, logger)
		}
		return newsletter.NewCMSStore(cms, cfg.WordPress.NewsletterPostType, locker, logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Newsletter.Store)
	}
}
