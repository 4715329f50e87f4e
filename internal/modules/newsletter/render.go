package newsletter

import (
	"strings"

	"github.com/kaarshe/core/internal/pkg/mail"
)

// Kind selects the wording of a broadcast.
type Kind string

const (
	KindBlog     Kind = "blog"
	KindResearch Kind = "research"
	KindGeneric  Kind = "generic"
)

const defaultExcerpt = "Visit the site to read the full update."

// ParseKind maps unknown or blank values to KindGeneric.
func ParseKind(raw string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindBlog, KindResearch:
		return k
	default:
		return KindGeneric
	}
}

// BroadcastMessage is an announcement before defaults are applied. Blank
// fields count as omitted.
type BroadcastMessage struct {
	Kind    Kind
	Title   string
	URL     string
	Excerpt string
}

type kindCopy struct {
	title   string
	subject func(title string) string
	action  string
}

var copies = map[Kind]kindCopy{
	KindBlog: {
		title:   "New blog post from KAARSHE",
		subject: func(t string) string { return "New blog post: " + t },
		action:  "Read the full article",
	},
	KindResearch: {
		title:   "New research published by KAARSHE",
		subject: func(t string) string { return "New research published: " + t },
		action:  "Read the full research",
	},
	KindGeneric: {
		title:   "New update from KAARSHE",
		subject: func(t string) string { return t },
		action:  "Read the full update",
	},
}

// resolve fills the defaults for m against the site settings.
func (m BroadcastMessage) resolve(siteName, siteURL string) mail.BroadcastData {
	c, ok := copies[m.Kind]
	if !ok {
		c = copies[KindGeneric]
	}
	title := firstNonBlank(m.Title, c.title)
	return mail.BroadcastData{
		Subject:        c.subject(title),
		SiteName:       siteName,
		Title:          title,
		URL:            firstNonBlank(m.URL, siteURL),
		Excerpt:        firstNonBlank(m.Excerpt, defaultExcerpt),
		ActionLabel:    c.action,
		UnsubscribeURL: siteURL + "/unsubscribe",
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
