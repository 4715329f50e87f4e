package newsletter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindBlog, ParseKind(" Blog "))
	assert.Equal(t, KindResearch, ParseKind("research"))
	assert.Equal(t, KindGeneric, ParseKind(""))
	assert.Equal(t, KindGeneric, ParseKind("podcast"))
}

func TestResolveDefaults(t *testing.T) {
	cases := []struct {
		msg     BroadcastMessage
		subject string
		title   string
		action  string
	}{
		{BroadcastMessage{Kind: KindBlog}, "New blog post: New blog post from KAARSHE", "New blog post from KAARSHE", "Read the full article"},
		{BroadcastMessage{Kind: KindResearch, Title: "Soil"}, "New research published: Soil", "Soil", "Read the full research"},
		{BroadcastMessage{Kind: KindGeneric, Title: "  "}, "New update from KAARSHE", "New update from KAARSHE", "Read the full update"},
		{BroadcastMessage{Kind: "other", Title: "News"}, "News", "News", "Read the full update"},
	}
	for _, tc := range cases {
		d := tc.msg.resolve("KAARSHE", "https://kaarshe.com")
		assert.Equal(t, tc.subject, d.Subject)
		assert.Equal(t, tc.title, d.Title)
		assert.Equal(t, tc.action, d.ActionLabel)
		assert.Equal(t, "https://kaarshe.com", d.URL)
		assert.Equal(t, defaultExcerpt, d.Excerpt)
		assert.Equal(t, "https://kaarshe.com/unsubscribe", d.UnsubscribeURL)
	}

	d := BroadcastMessage{URL: "https://kaarshe.com/blog/x", Excerpt: "Short *intro*"}.resolve("KAARSHE", "https://kaarshe.com")
	assert.Equal(t, "https://kaarshe.com/blog/x", d.URL)
	assert.Equal(t, "Short *intro*", d.Excerpt)
}
