package wp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListItemsReadsTotalsAndParams(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("X-WP-Total", "7")
		w.Header().Set("X-WP-TotalPages", "4")
		_, _ = io.WriteString(w, `[{"id":1,"slug":"a","title":{"rendered":"A"}},{"id":2,"slug":"b","title":{"rendered":"B"}}]`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"})
	res, err := c.ListItems(context.Background(), "posts", ListParams{
		PerPage: 2, Page: 3, Search: "x", Exclude: []int64{4, 5}, Embed: true,
	})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 7, res.Total)
	assert.Equal(t, 4, res.TotalPages)

	require.NotNil(t, got)
	assert.Equal(t, "/posts", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "2", q.Get("per_page"))
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "x", q.Get("search"))
	assert.Equal(t, "4,5", q.Get("exclude"))
	assert.Equal(t, "true", q.Get("_embed"))
	_, _, hasAuth := got.BasicAuth()
	assert.False(t, hasAuth)
}

func TestListItemsDefaultsTotalsWithoutHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"slug":"a","title":{"rendered":"A"}}]`)
	}))
	defer srv.Close()

	res, err := New(Config{BaseURL: srv.URL}).ListItems(context.Background(), "posts", ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.TotalPages)
}

func TestGetItemBySlugReturnsNilWhenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nope", r.URL.Query().Get("slug"))
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	item, err := New(Config{BaseURL: srv.URL}).GetItemBySlug(context.Background(), "pages", "nope")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestCreateItemSendsBasicAuthAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "app pass", pass)

		var body CreateParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, CreateParams{Title: "jane@example.com", Status: "publish", Content: "footer"}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":42,"slug":"jane","title":{"rendered":"jane@example.com"}}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, User: "editor", Password: "app pass"})
	item, err := c.CreateItem(context.Background(), "newsletter_subscriber", CreateParams{
		Title: "jane@example.com", Status: "publish", Content: "footer",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 42, item.ID)
}

func TestCreateItemReturnsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"code":"rest_cannot_create"}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, User: "u", Password: "p"})
	_, err := c.CreateItem(context.Background(), "contact_message", CreateParams{Title: "t"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.Contains(t, se.Body, "rest_cannot_create")
}

func TestDeleteItemForces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/newsletter_subscriber/9", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("force"))
		_, _ = io.WriteString(w, `{"deleted":true}`)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, User: "u", Password: "p"})
	require.NoError(t, c.DeleteItem(context.Background(), "newsletter_subscriber", 9))
}

func TestConfiguredDistinguishesMissingPieces(t *testing.T) {
	assert.ErrorIs(t, New(Config{}).Configured(), ErrNoBaseURL)
	assert.ErrorIs(t, New(Config{BaseURL: "http://cms"}).Configured(), ErrNoCredentials)
	assert.NoError(t, New(Config{BaseURL: "http://cms", User: "u", Password: "p"}).Configured())
	assert.NoError(t, New(Config{BaseURL: "http://cms"}).CanRead())

	_, err := New(Config{}).ListItems(context.Background(), "posts", ListParams{})
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestCategoriesHidesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("hide_empty"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = io.WriteString(w, `[{"id":3,"name":"Essays","slug":"essays","count":4}]`)
	}))
	defer srv.Close()

	terms, err := New(Config{BaseURL: srv.URL}).Categories(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, terms, 1)
	assert.Equal(t, "essays", terms[0].Slug)
}

func TestCreateItemAcceptsAnySuccessBody(t *testing.T) {
	for _, body := range []string{"", "created", `{"id":12}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, body)
		}))

		c := New(Config{BaseURL: srv.URL, User: "editor", Password: "pw"})
		item, err := c.CreateItem(context.Background(), "contact_message", CreateParams{Title: "t", Status: "publish"})
		srv.Close()

		require.NoError(t, err, "body %q", body)
		require.NotNil(t, item)
		if body == `{"id":12}` {
			assert.EqualValues(t, 12, item.ID)
		} else {
			assert.Zero(t, item.ID)
		}
	}
}
