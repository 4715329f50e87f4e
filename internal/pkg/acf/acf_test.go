package acf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var fields = []byte(`{
	"hero": {"title": "Ideas that travel", "blank": "   ", "image": {"url": "https://cdn/h.jpg", "alt": "Stage"}},
	"hero_title": null,
	"cover": "https://cdn/c.jpg",
	"pillars": ["Research", "Writing"],
	"points": [{"text": "First"}, {"label": "Second"}, {"other": 3, "note": "Third"}, {"n": 1}],
	"mixed": ["a", {"title": "b"}],
	"deck": {"url": "https://cdn/deck.pdf"}
}`)

func TestStringFallsThroughPaths(t *testing.T) {
	assert.Equal(t, "Ideas that travel", String(fields, []string{"hero_title", "hero.title"}, "x"))
	assert.Equal(t, "x", String(fields, []string{"hero.blank"}, "x"))
	assert.Equal(t, "x", String(fields, []string{"pillars"}, "x"))
	assert.Equal(t, "x", String(fields, []string{"missing.deep.path"}, "x"))
	assert.Equal(t, "x", String([]byte(`null`), []string{"hero.title"}, "x"))
	assert.Equal(t, "x", String(nil, []string{"hero.title"}, "x"))
}

func TestGetSkipsNull(t *testing.T) {
	assert.False(t, Get(fields, "hero_title").Exists())
	assert.Equal(t, "Ideas that travel", Get(fields, "hero_title", "hero.title").String())
	assert.Equal(t, "Research", Get(fields, "pillars.0").String())
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"Research", "Writing"}, StringList(fields, []string{"pillars"}, nil))
	assert.Equal(t, []string{"First", "Second", "Third"}, StringList(fields, []string{"points"}, nil))
	assert.Equal(t, []string{"b"}, StringList(fields, []string{"mixed"}, nil))
	assert.Equal(t, []string{"fb"}, StringList(fields, []string{"hero"}, []string{"fb"}))
	assert.Equal(t, []string{"fb"}, StringList(fields, []string{"nope"}, []string{"fb"}))
	assert.Equal(t, []string{"Third"}, StringList([]byte(`{"p":[{"other":3,"note":"Third"}]}`), []string{"p"}, nil, "missing"))
}

func TestResolveImage(t *testing.T) {
	img, ok := ResolveImage(fields, []string{"hero.image"}, Image{Alt: "default"})
	assert.True(t, ok)
	assert.Equal(t, Image{Src: "https://cdn/h.jpg", Alt: "Stage"}, img)

	img, ok = ResolveImage(fields, []string{"cover"}, Image{Alt: "default"})
	assert.True(t, ok)
	assert.Equal(t, Image{Src: "https://cdn/c.jpg", Alt: "default"}, img)

	fb := Image{Src: "/fallback.jpg", Alt: "fb"}
	img, ok = ResolveImage(fields, []string{"deck.missing"}, fb)
	assert.False(t, ok)
	assert.Equal(t, fb, img)
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "https://cdn/deck.pdf", FileURL(fields, []string{"deck"}, ""))
	assert.Equal(t, "https://cdn/c.jpg", FileURL(fields, []string{"cover"}, ""))
	assert.Equal(t, "none", FileURL(fields, []string{"pillars"}, "none"))
}
