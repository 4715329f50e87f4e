package backup

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/kaarshe/core/internal/modules/newsletter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	key         string
	payload     []byte
	contentType string
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key string, payload []byte, contentType string) error {
	f.key, f.payload, f.contentType = key, payload, contentType
	return f.err
}

func seededStore(t *testing.T, emails ...string) newsletter.Store {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st := newsletter.NewBadgerStore(db)
	for _, e := range emails {
		require.NoError(t, st.Create(context.Background(), newsletter.Subscriber{Email: e, Source: "footer"}))
	}
	return st
}

func fixedExporter(st newsletter.Store, up Uploader, prefix string) *Exporter {
	exp := NewExporter(st, up, prefix, time.Hour, nil)
	exp.now = func() time.Time { return time.Date(2026, 3, 9, 8, 7, 6, 0, time.UTC) }
	return exp
}

func TestWriteCSV(t *testing.T) {
	exp := fixedExporter(seededStore(t, "b@example.com", "a@example.com"), nil, "")

	var sb strings.Builder
	rows, err := exp.WriteCSV(context.Background(), &sb)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"email", "source", "created_at"}, records[0])
	assert.Equal(t, "a@example.com", records[1][0])
	assert.Equal(t, "footer", records[1][1])
	_, err = time.Parse(time.RFC3339, records[1][2])
	assert.NoError(t, err)
}

func TestRunUploadsUnderRenderedKey(t *testing.T) {
	up := &fakeUploader{}
	exp := fixedExporter(seededStore(t, "a@example.com"), up, "exports/{Y}/{m}")

	key, rows, err := exp.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Equal(t, "exports/2026/03/subscribers-20260309-080706.csv", key)
	assert.Equal(t, key, up.key)
	assert.Equal(t, "text/csv; charset=utf-8", up.contentType)
	assert.True(t, strings.HasPrefix(string(up.payload), "email,source,created_at\n"))
}

func TestRunWithoutUploader(t *testing.T) {
	exp := fixedExporter(seededStore(t), nil, "")
	_, _, err := exp.Run(context.Background())
	require.Error(t, err)
}

func TestRunSurfacesUploadFailure(t *testing.T) {
	up := &fakeUploader{err: errors.New("access denied")}
	exp := fixedExporter(seededStore(t, "a@example.com"), up, "")
	_, _, err := exp.Run(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

func TestRenderObjectKey(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "newsletter/f.csv", renderObjectKey("", "f.csv", now))
	assert.Equal(t, "backups/f.csv", renderObjectKey("backups/", "f.csv", now))
	assert.Equal(t, "2026-01-02/030405-f.csv", renderObjectKey("{Y}-{m}-{d}/{H}{M}{s}-{filename}", "f.csv", now))
}

func TestHandlerUploadOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	up := &fakeUploader{}
	exp := fixedExporter(seededStore(t, "a@example.com"), up, "")

	r := gin.New()
	allow := func(c *gin.Context) { c.Next() }
	NewHandler(exp).RegisterRoutes(r.Group("/api"), allow)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/newsletter/export", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "a@example.com")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/admin/newsletter/export", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"key":"newsletter/subscribers-20260309-080706.csv","rows":1}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "a@example.com")
}
