package newsletter

import (
	"context"
	"html"
	"strconv"
	"strings"

	"github.com/kaarshe/core/internal/pkg/emailaddr"
	"github.com/kaarshe/core/internal/pkg/wp"
	"go.uber.org/zap"
)

const searchPageSize = 100

// CMSStore keeps subscribers as CMS records of one post type whose title is
// the email. The CMS has no unique constraint, so Create serializes per
// email through a Locker before its duplicate search.
type CMSStore struct {
	client   *wp.Client
	postType string
	locker   Locker
	logger   *zap.Logger
}

func NewCMSStore(client *wp.Client, postType string, locker Locker, logger *zap.Logger) *CMSStore {
	if locker == nil {
		locker = NewKeyedMutex()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CMSStore{client: client, postType: postType, locker: locker, logger: logger}
}

// Ready maps missing CMS settings to configuration errors.
func (s *CMSStore) Ready() error {
	return wp.ConfigError(s.client.Configured(), "Newsletter")
}

func (s *CMSStore) Create(ctx context.Context, sub Subscriber) error {
	unlock, err := s.locker.Lock(ctx, sub.Email)
	if err != nil {
		return err
	}
	defer unlock()

	matches, err := s.findByEmail(ctx, sub.Email)
	switch {
	case err != nil:
		// proceed without the guard
		s.logger.Warn("duplicate check failed", zap.String("email", sub.Email), zap.Error(err))
	case len(matches) > 0:
		return ErrDuplicate
	}

	content := ""
	if sub.Source != "" {
		content = "source: " + sub.Source
	}
	_, err = s.client.CreateItem(ctx, s.postType, wp.CreateParams{
		Title:   sub.Email,
		Status:  "publish",
		Content: content,
	})
	return err
}

// DeleteByEmail removes exact matches from the first search page. A failed
// search counts as no matches; failed deletes are skipped.
func (s *CMSStore) DeleteByEmail(ctx context.Context, email string) (int, error) {
	matches, err := s.findByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("unsubscribe search failed", zap.String("email", email), zap.Error(err))
		return 0, nil
	}
	removed := 0
	for _, item := range matches {
		if item.ID == 0 {
			continue
		}
		if err := s.client.DeleteItem(ctx, s.postType, item.ID); err != nil {
			s.logger.Warn("subscriber delete failed", zap.Int64("id", item.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *CMSStore) Each(ctx context.Context, pageSize int, fn func([]Subscriber) error) error {
	if pageSize <= 0 || pageSize > searchPageSize {
		pageSize = searchPageSize
	}
	for page, totalPages := 1, 1; page <= totalPages; page++ {
		res, err := s.client.ListItems(ctx, s.postType, wp.ListParams{PerPage: pageSize, Page: page})
		if err != nil {
			return err
		}
		totalPages = res.TotalPages

		subs := make([]Subscriber, 0, len(res.Items))
		for _, item := range res.Items {
			email := itemEmail(item)
			if email == "" {
				continue
			}
			subs = append(subs, Subscriber{ID: strconv.FormatInt(item.ID, 10), Email: email})
		}
		if len(subs) == 0 {
			continue
		}
		if err := fn(subs); err != nil {
			return err
		}
	}
	return nil
}

func (s *CMSStore) Count(ctx context.Context) (int64, error) {
	res, err := s.client.ListItems(ctx, s.postType, wp.ListParams{PerPage: 1})
	if err != nil {
		return 0, err
	}
	return int64(res.Total), nil
}

// findByEmail runs the CMS full-text search and keeps exact identity matches.
func (s *CMSStore) findByEmail(ctx context.Context, email string) ([]wp.Item, error) {
	res, err := s.client.ListItems(ctx, s.postType, wp.ListParams{Search: email, PerPage: searchPageSize})
	if err != nil {
		return nil, err
	}
	want := emailaddr.Normalize(email)
	var out []wp.Item
	for _, item := range res.Items {
		if emailaddr.Normalize(itemEmail(item)) == want {
			out = append(out, item)
		}
	}
	return out, nil
}

func itemEmail(item wp.Item) string {
	return strings.TrimSpace(html.UnescapeString(item.Title.Rendered))
}
