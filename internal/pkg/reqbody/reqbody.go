// Package reqbody reads JSON request bodies leniently: a malformed body or a
// field of the wrong type reads as empty instead of failing the request.
package reqbody

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// MaxBytes caps how much of a body is read.
const MaxBytes = 1 << 20

// Body is a parsed request body. The zero value reads as empty.
type Body struct {
	root gjson.Result
}

// Read consumes the request body. Non-object bodies read as empty.
func Read(c *gin.Context) Body {
	if c.Request == nil || c.Request.Body == nil {
		return Body{}
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBytes))
	if err != nil {
		return Body{}
	}
	return Parse(raw)
}

func Parse(raw []byte) Body {
	if !gjson.ValidBytes(raw) {
		return Body{}
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return Body{}
	}
	return Body{root: root}
}

// String returns the trimmed value of a top-level string field, or "".
func (b Body) String(key string) string {
	v := b.field(key)
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

// Strings returns the trimmed string entries of a top-level array field,
// dropping other types and blanks.
func (b Body) Strings(key string) []string {
	v := b.field(key)
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (b Body) field(key string) gjson.Result {
	if !b.root.Exists() {
		return gjson.Result{}
	}
	return b.root.Get(gjson.Escape(key))
}
