package wp

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const wordsPerMinute = 200

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// StripHTML returns the visible text of an HTML fragment with entities
// decoded and runs of whitespace collapsed to one space.
func StripHTML(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return strings.Join(strings.Fields(input), " ")
	}
	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(&b, n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		// tags separate words
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode {
		b.WriteByte(' ')
	}
}

// ReadTime estimates reading time of rendered HTML, e.g. "4 min read".
func ReadTime(htmlBody string) string {
	words := len(strings.Fields(StripHTML(htmlBody)))
	minutes := int(math.Max(1, math.Round(float64(words)/wordsPerMinute)))
	return fmt.Sprintf("%d min read", minutes)
}

// FormatDate renders a WordPress date as "Jan 02, 2006". Unparseable input is
// returned unchanged.
func FormatDate(value string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("Jan 02, 2006")
		}
	}
	return value
}

// PlainTitle returns the title without markup.
func (it *Item) PlainTitle() string {
	return StripHTML(it.Title.Rendered)
}

// FeaturedImageURL returns the embedded featured media URL, if any.
func (it *Item) FeaturedImageURL() string {
	if it.Embedded == nil || len(it.Embedded.FeaturedMedia) == 0 {
		return ""
	}
	return it.Embedded.FeaturedMedia[0].SourceURL
}

func (it *Item) FeaturedImageAlt() string {
	if it.Embedded == nil || len(it.Embedded.FeaturedMedia) == 0 {
		return ""
	}
	return it.Embedded.FeaturedMedia[0].AltText
}

// FirstTermByTaxonomy returns the first embedded term of taxonomy, or nil.
func (it *Item) FirstTermByTaxonomy(taxonomy string) *Term {
	if it.Embedded == nil {
		return nil
	}
	for _, group := range it.Embedded.Terms {
		for i := range group {
			if group[i].Taxonomy == taxonomy {
				t := group[i]
				return &t
			}
		}
	}
	return nil
}

func (it *Item) PrimaryCategory() *Term {
	return it.FirstTermByTaxonomy("category")
}

// TagTerms returns every embedded post_tag term in order.
func (it *Item) TagTerms() []Term {
	if it.Embedded == nil {
		return nil
	}
	var tags []Term
	for _, group := range it.Embedded.Terms {
		for _, t := range group {
			if t.Taxonomy == "post_tag" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
