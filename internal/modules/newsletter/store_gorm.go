package newsletter

import (
	"context"
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/kaarshe/core/internal/models"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// GormStore keeps subscribers in the subscribers table. The unique index on
// email makes Create atomic.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ready() error {
	if s.db == nil {
		return errors.New("database is not connected")
	}
	return nil
}

func (s *GormStore) Create(ctx context.Context, sub Subscriber) error {
	row := models.SubscriberModel{Email: sub.Email, Source: sub.Source}
	err := s.db.WithContext(ctx).Create(&row).Error
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

func (s *GormStore) DeleteByEmail(ctx context.Context, email string) (int, error) {
	res := s.db.WithContext(ctx).Where("email = ?", email).Delete(&models.SubscriberModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// Each pages by primary key. Ids are random UUIDs, so the cursor and the
// order must both be the id for every row to be visited once.
func (s *GormStore) Each(ctx context.Context, pageSize int, fn func([]Subscriber) error) error {
	if pageSize <= 0 {
		pageSize = searchPageSize
	}
	last := ""
	for {
		var rows []models.SubscriberModel
		q := s.db.WithContext(ctx).Order("id ASC").Limit(pageSize)
		if last != "" {
			q = q.Where("id > ?", last)
		}
		if err := q.Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		subs := make([]Subscriber, 0, len(rows))
		for _, r := range rows {
			subs = append(subs, Subscriber{ID: r.ID, Email: r.Email, Source: r.Source, CreatedAt: r.CreatedAt})
		}
		if err := fn(subs); err != nil {
			return err
		}
		if len(rows) < pageSize {
			return nil
		}
		last = rows[len(rows)-1].ID
	}
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.SubscriberModel{}).Count(&n).Error
	return n, err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysqldriver.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
