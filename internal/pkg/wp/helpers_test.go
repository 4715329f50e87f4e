package wp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"":                                    "",
		"<p>Hello <strong>world</strong></p>": "Hello world",
		"<p>One</p><p>Two</p>":                "One Two",
		"Fish &amp; chips &#039;n&#039; tea":  "Fish & chips 'n' tea",
		"<style>p{}</style><p>  spaced\n\nout </p>": "spaced out",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripHTML(in), in)
	}
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, "1 min read", ReadTime(""))
	assert.Equal(t, "1 min read", ReadTime("<p>short</p>"))
	assert.Equal(t, "3 min read", ReadTime("<p>"+strings.Repeat("word ", 500)+"</p>"))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Mar 05, 2025", FormatDate("2025-03-05T10:11:12"))
	assert.Equal(t, "Dec 31, 2024", FormatDate("2024-12-31T23:00:00Z"))
	assert.Equal(t, "not a date", FormatDate("not a date"))
}

func TestTermPickers(t *testing.T) {
	item := Item{Embedded: &Embedded{
		FeaturedMedia: []Media{{SourceURL: "https://cdn/x.jpg", AltText: "cover"}},
		Terms: [][]Term{
			{{ID: 1, Name: "Essays", Taxonomy: "category"}, {ID: 2, Name: "Notes", Taxonomy: "category"}},
			{{ID: 5, Name: "go", Taxonomy: "post_tag"}, {ID: 6, Name: "cms", Taxonomy: "post_tag"}},
		},
	}}

	assert.Equal(t, "https://cdn/x.jpg", item.FeaturedImageURL())
	assert.Equal(t, "cover", item.FeaturedImageAlt())
	if assert.NotNil(t, item.PrimaryCategory()) {
		assert.Equal(t, "Essays", item.PrimaryCategory().Name)
	}
	assert.Len(t, item.TagTerms(), 2)
	assert.Nil(t, item.FirstTermByTaxonomy("series"))

	var bare Item
	assert.Empty(t, bare.FeaturedImageURL())
	assert.Nil(t, bare.PrimaryCategory())
}
