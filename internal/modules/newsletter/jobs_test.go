package newsletter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kaarshe/core/internal/pkg/wp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postFeed struct {
	mu    sync.Mutex
	posts []map[string]any
}

func (f *postFeed) add(id int64, title, link string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append([]map[string]any{{
		"id":      id,
		"link":    link,
		"title":   map[string]string{"rendered": title},
		"excerpt": map[string]string{"rendered": "<p>About " + title + "</p>"},
	}}, f.posts...)
}

func (f *postFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(f.posts)
}

func TestAutoBroadcastAnnouncesOnlyNewPosts(t *testing.T) {
	feed := &postFeed{}
	feed.add(1, "Old post", "https://kaarshe.com/blog/old")
	srv := httptest.NewServer(feed)
	defer srv.Close()

	m := &fakeMailer{}
	svc := newTestService(seed(2), m)
	mark := &MemoryWatermark{}
	ab := NewAutoBroadcaster(svc, wp.New(wp.Config{BaseURL: srv.URL}), mark, KindBlog, 0, nil)
	ctx := context.Background()

	require.NoError(t, ab.Run(ctx))
	assert.Zero(t, m.count(), "first run only records the watermark")
	id, ok, _ := mark.Load(ctx)
	assert.True(t, ok)
	assert.EqualValues(t, 1, id)

	feed.add(2, "Fresh &amp; new", "https://kaarshe.com/blog/fresh")
	feed.add(3, "Newest", "https://kaarshe.com/blog/newest")
	require.NoError(t, ab.Run(ctx))
	require.Equal(t, 2, m.count())
	assert.Equal(t, "New blog post: Fresh & new", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].Text, "About Fresh & new")
	assert.Equal(t, "New blog post: Newest", m.sent[1].Subject)

	id, _, _ = mark.Load(ctx)
	assert.EqualValues(t, 3, id)

	require.NoError(t, ab.Run(ctx))
	assert.Equal(t, 2, m.count())
	assert.Equal(t, AutoBroadcastJob, ab.Job().Name)
}
