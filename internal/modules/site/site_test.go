package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/pkg/pagination"
	"github.com/kaarshe/core/internal/pkg/wp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePost = `{
	"id": 7,
	"slug": "hello-world",
	"date": "2024-03-05T10:00:00",
	"title": {"rendered": "Hello &amp; <em>World</em>"},
	"excerpt": {"rendered": "<p>Short   intro</p>"},
	"content": {"rendered": "<p>one two three</p>"},
	"_embedded": {
		"author": [{"id": 1, "name": "Kaarshe"}],
		"wp:featuredmedia": [{"id": 3, "source_url": "https://cdn/x.jpg", "alt_text": "X"}],
		"wp:term": [
			[{"id": 2, "name": "Research", "slug": "research", "taxonomy": "category"}],
			[{"id": 9, "name": "policy", "slug": "policy", "taxonomy": "post_tag"}]
		]
	}
}`

const homeFields = `{
	"hero": {"title": "Custom title", "description": "  ", "image": {"url": "https://cdn/hero.jpg", "alt": "Hero"}},
	"mission_text": "Mission from CMS",
	"policies": [
		{"icon": "a", "title": "First", "description": "d", "points": [{"point": "p1"}, {"text": "p2"}]},
		{"icon": "b", "title": "Second", "description": "d", "points": null}
	]
}`

const settingsFields = `{
	"seo": {"site_name": "KAARSHE Portal", "og_image": "https://cdn/og.jpg"},
	"header": {"nav": [{"label": "Home", "href": "/"}, {"title": "Blog", "url": "/blog"}, {"label": "broken"}]},
	"newsletter_modal": {"enabled": "", "delay_ms": "1500"},
	"social": {"twitter": "https://x.com/kaarshe"}
}`

func fakeCMS(t *testing.T, fail bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		q := r.URL.Query()
		switch r.URL.Path {
		case "/posts":
			if slug := q.Get("slug"); slug != "" && slug != "hello-world" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			w.Header().Set("X-WP-Total", "21")
			w.Header().Set("X-WP-TotalPages", "3")
			_, _ = w.Write([]byte(`[` + samplePost + `]`))
		case "/pages":
			switch q.Get("slug") {
			case "home":
				_, _ = w.Write([]byte(`[{"id": 1, "slug": "home", "title": {"rendered": "Home"}, "acf": ` + homeFields + `}]`))
			case "site-settings":
				_, _ = w.Write([]byte(`[{"id": 2, "slug": "site-settings", "title": {"rendered": "Settings"}, "acf": ` + settingsFields + `}]`))
			case "about":
				_, _ = w.Write([]byte(`[{"id": 3, "slug": "about", "title": {"rendered": "About"}, "content": {"rendered": "<p>Hi</p>"}, "acf": []}]`))
			default:
				_, _ = w.Write([]byte(`[]`))
			}
		case "/categories":
			assert.Equal(t, "true", q.Get("hide_empty"))
			_, _ = w.Write([]byte(`[{"id": 2, "name": "Research", "slug": "research", "count": 4}]`))
		case "/research_item":
			_, _ = w.Write([]byte(`[{"id": 11, "slug": "paper", "title": {"rendered": "Paper"}, "acf": {"pdf": "https://cdn/p.pdf"}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T, fail bool) *Service {
	srv := fakeCMS(t, fail)
	return NewService(wp.New(wp.Config{BaseURL: srv.URL}), Settings{}, nil)
}

func TestPostsMapsCards(t *testing.T) {
	svc := newService(t, false)
	cards, meta, err := svc.Posts(context.Background(), pagination.Query{Page: 2, Size: 10}, "", 0)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	c := cards[0]
	assert.Equal(t, "Hello & World", c.Title)
	assert.Equal(t, "Short intro", c.Excerpt)
	assert.Equal(t, "Research", c.Category)
	assert.Equal(t, []string{"policy"}, c.Tags)
	assert.Equal(t, "1 min read", c.ReadTime)
	assert.Equal(t, "https://cdn/x.jpg", c.Image)
	assert.EqualValues(t, 21, meta.Total)
	assert.Equal(t, 3, meta.TotalPage)
	assert.True(t, meta.HasNextPage)
}

func TestPostBySlug(t *testing.T) {
	svc := newService(t, false)
	post, err := svc.Post(context.Background(), "hello-world")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "Kaarshe", post.Author)
	assert.Equal(t, "<p>one two three</p>", post.Content)

	missing, err := svc.Post(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestItemsRejectsOddTypes(t *testing.T) {
	svc := newService(t, false)
	_, _, err := svc.Items(context.Background(), "../users", pagination.Query{Page: 1, Size: 5})
	require.Error(t, err)

	items, _, err := svc.Items(context.Background(), "research_item", pagination.Query{Page: 1, Size: 5})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"pdf":"https://cdn/p.pdf"}`, string(items[0].ACF))
}

func TestHomeResolvesFieldsWithFallbacks(t *testing.T) {
	home := newService(t, false).Home(context.Background())

	assert.Equal(t, "Custom title", home.Hero.Title)
	assert.Equal(t, defaultHero.Description, home.Hero.Description, "blank copy falls back")
	assert.Equal(t, "https://cdn/hero.jpg", home.Hero.Image.Src)
	assert.Equal(t, "Mission from CMS", home.Mission.Text)
	assert.Equal(t, defaultMission.Quote, home.Mission.Quote)

	require.Len(t, home.Policies.Policies, 2)
	assert.Equal(t, []string{"p1", "p2"}, home.Policies.Policies[0].Points)
	assert.Equal(t, defaultPolicies.Policies[1].Points, home.Policies.Policies[1].Points)
	assert.Len(t, home.Insights.Posts, 1)
}

func TestHomeFallsBackWhenCMSDown(t *testing.T) {
	home := newService(t, true).Home(context.Background())
	assert.Equal(t, defaultHero, home.Hero)
	assert.Equal(t, defaultPolicies, home.Policies)
	assert.Empty(t, home.Insights.Posts)
}

func TestSettingsResolvesFields(t *testing.T) {
	s := newService(t, false).Settings(context.Background())

	assert.Equal(t, "KAARSHE Portal", s.SEO.SiteName)
	assert.Equal(t, "https://cdn/og.jpg", s.SEO.OGImage.Src)
	assert.Equal(t, "KAARSHE Portal", s.SEO.OGImage.Alt)
	assert.Equal(t, defaultSiteDescription, s.SEO.Description)
	assert.Equal(t, []Link{{Label: "Home", Href: "/"}, {Label: "Blog", Href: "/blog"}}, s.Nav)
	assert.Equal(t, defaultLegal, s.Footer.Legal)
	assert.False(t, s.NewsletterModal.Enabled)
	assert.EqualValues(t, 1500, s.NewsletterModal.DelayMS)
	assert.Equal(t, "https://x.com/kaarshe", s.Social["twitter"])
	assert.Equal(t, defaultSocial["facebook"], s.Social["facebook"])
	assert.Nil(t, s.Branding.LogoImage)
}

func TestHandlerRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var tags []string
	tagSpy := func(c *gin.Context) {
		c.Next()
		if v, ok := c.Get("cache_tags"); ok {
			tags = v.([]string)
		}
	}
	NewHandler(newService(t, false)).RegisterRoutes(r.Group("/api"), tagSpy)

	get := func(path string) (int, map[string]any) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var out map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		return w.Code, out
	}

	code, out := get("/api/site/posts?page=1&per_page=5")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, out, "pagination")
	assert.Equal(t, []string{"wp:posts"}, tags)

	code, _ = get("/api/site/posts/hello-world")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"wp:post:hello-world"}, tags)

	code, _ = get("/api/site/posts/missing")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get("/api/site/pages/about")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"wp:page:about"}, tags)

	code, _ = get("/api/site/categories")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"wp:categories"}, tags)

	code, _ = get("/api/site/items/research_item")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"wp:cpt:research_item"}, tags)

	code, out = get("/api/site/home")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["ok"])
}

func TestHandlerSurfacesUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(newService(t, true)).RegisterRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/site/posts", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
