package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ctxWithQuery(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Query{Page: 1, Size: 9}, FromContext(ctxWithQuery(""), 9))
	assert.Equal(t, Query{Page: 3, Size: 20}, FromContext(ctxWithQuery("page=3&per_page=20"), 9))
	assert.Equal(t, Query{Page: 2, Size: 5}, FromContext(ctxWithQuery("page=2&size=5"), 9))
	assert.Equal(t, Query{Page: 1, Size: MaxSize}, FromContext(ctxWithQuery("page=-4&per_page=500"), 9))
	assert.Equal(t, Query{Page: 1, Size: DefaultSize}, FromContext(ctxWithQuery("per_page=abc"), 0))
}

func TestMeta(t *testing.T) {
	m := Meta(Query{Page: 2, Size: 10}, 25, 0)
	assert.Equal(t, 3, m.TotalPage)
	assert.True(t, m.HasNextPage)

	m = Meta(Query{Page: 4, Size: 10}, 40, 4)
	assert.False(t, m.HasNextPage)
}
