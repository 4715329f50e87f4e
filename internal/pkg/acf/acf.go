// Package acf reads loosely typed custom fields attached to CMS content.
//
// Every lookup takes an ordered list of dotted paths; the first path that
// resolves to a non-null value wins, otherwise the caller's fallback is used.
// This lets editors override any piece of copy without breaking a view when
// a field is missing or has an unexpected shape.
package acf

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultListKeys are tried, in order, when a list holds objects instead of strings.
var DefaultListKeys = []string{"text", "value", "label", "title", "name"}

// Image is a resolved image reference.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Get returns the first non-null value found at paths. The result does not
// exist when raw is not an object or no path resolves.
func Get(raw []byte, paths ...string) gjson.Result {
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return gjson.Result{}
	}
	for _, p := range paths {
		expr := escapePath(p)
		if expr == "" {
			continue
		}
		v := root.Get(expr)
		if v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// String returns the string at paths, or fallback when the value is absent,
// not a string, or blank. The value is returned untrimmed.
func String(raw []byte, paths []string, fallback string) string {
	v := Get(raw, paths...)
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return fallback
	}
	return v.Str
}

// StringList resolves a list of strings. See CoerceStringList for the
// accepted shapes; keys defaults to DefaultListKeys.
func StringList(raw []byte, paths []string, fallback []string, keys ...string) []string {
	v := Get(raw, paths...)
	if !v.Exists() {
		return fallback
	}
	if list, ok := CoerceStringList(v, keys...); ok {
		return list
	}
	return fallback
}

// CoerceStringList turns v into a list of strings. An array of only strings
// is returned as is. Otherwise each object row contributes the first
// non-blank string among keys, or failing that its first non-blank string
// value. ok is false when v is not an array or nothing was picked.
func CoerceStringList(v gjson.Result, keys ...string) ([]string, bool) {
	if !v.IsArray() {
		return nil, false
	}
	rows := v.Array()
	strs := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Type == gjson.String {
			strs = append(strs, row.Str)
		}
	}
	if len(strs) == len(rows) {
		return strs, true
	}

	if len(keys) == 0 {
		keys = DefaultListKeys
	}
	var picked []string
	for _, row := range rows {
		if !row.IsObject() {
			continue
		}
		if s := pickRow(row, keys); s != "" {
			picked = append(picked, s)
		}
	}
	return picked, len(picked) > 0
}

func pickRow(row gjson.Result, keys []string) string {
	for _, k := range keys {
		c := row.Get(gjson.Escape(k))
		if c.Type == gjson.String && strings.TrimSpace(c.Str) != "" {
			return c.Str
		}
	}
	var first string
	row.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String && strings.TrimSpace(value.Str) != "" {
			first = value.Str
			return false
		}
		return true
	})
	return first
}

// ResolveImage resolves an image given either as a URL string or as an object with
// url or src and an optional alt. ok is false when nothing usable was found,
// in which case fallback is returned.
func ResolveImage(raw []byte, paths []string, fallback Image) (Image, bool) {
	v := Get(raw, paths...)
	switch {
	case v.Type == gjson.String && v.Str != "":
		return Image{Src: v.Str, Alt: fallback.Alt}, true
	case v.IsObject():
		src := nonEmptyString(v.Get("url"))
		if src == "" {
			src = nonEmptyString(v.Get("src"))
		}
		alt := fallback.Alt
		if a := v.Get("alt"); a.Type == gjson.String {
			alt = a.Str
		}
		if src != "" {
			return Image{Src: src, Alt: alt}, true
		}
	}
	return fallback, false
}

// FileURL resolves a file field given either as a URL string or as an object with url.
func FileURL(raw []byte, paths []string, fallback string) string {
	v := Get(raw, paths...)
	switch {
	case v.Type == gjson.String:
		return v.Str
	case v.IsObject():
		if u := v.Get("url"); u.Type == gjson.String {
			return u.Str
		}
	}
	return fallback
}

func nonEmptyString(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return ""
}

// escapePath converts "hero.title" into a gjson path with each segment
// escaped. Empty segments are dropped.
func escapePath(p string) string {
	parts := strings.Split(p, ".")
	out := parts[:0]
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, gjson.Escape(part))
	}
	return strings.Join(out, ".")
}
