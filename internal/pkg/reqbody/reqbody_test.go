package reqbody

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringAcceptsOnlyStrings(t *testing.T) {
	b := Parse([]byte(`{"email":"  a@b.co ","age":3,"nested":{"x":"y"},"nil":null}`))
	assert.Equal(t, "a@b.co", b.String("email"))
	assert.Empty(t, b.String("age"))
	assert.Empty(t, b.String("nested"))
	assert.Empty(t, b.String("nil"))
	assert.Empty(t, b.String("missing"))
}

func TestMalformedBodiesReadEmpty(t *testing.T) {
	for _, raw := range []string{``, `not json`, `[1,2]`, `"str"`, `{"email":`} {
		b := Parse([]byte(raw))
		assert.Empty(t, b.String("email"), raw)
		assert.Nil(t, b.Strings("paths"), raw)
	}
}

func TestStringsDropsNonStrings(t *testing.T) {
	b := Parse([]byte(`{"paths":["/a", 2, " ", null, " /b "],"tags":"wp:posts"}`))
	assert.Equal(t, []string{"/a", "/b"}, b.Strings("paths"))
	assert.Nil(t, b.Strings("tags"))
}

func TestDottedKeysAreLiteral(t *testing.T) {
	b := Parse([]byte(`{"a.b":"x","a":{"b":"y"}}`))
	assert.Equal(t, "x", b.String("a.b"))
}
