package site

import (
	"encoding/json"

	"github.com/kaarshe/core/internal/pkg/acf"
	"github.com/kaarshe/core/internal/pkg/wp"
	"github.com/tidwall/gjson"
)

// PostCard is the list view of a post.
type PostCard struct {
	ID       int64    `json:"id"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Date     string   `json:"date"`
	ReadTime string   `json:"read_time"`
	Category string   `json:"category"`
	Image    string   `json:"image,omitempty"`
	ImageAlt string   `json:"image_alt,omitempty"`
	Tags     []string `json:"tags"`
}

// PostDetail adds the rendered body to a card.
type PostDetail struct {
	PostCard
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
}

type PageView struct {
	ID      int64           `json:"id"`
	Slug    string          `json:"slug"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	ACF     json.RawMessage `json:"acf,omitempty"`
}

// ItemView is a custom post type record with its fields passed through.
type ItemView struct {
	ID      int64           `json:"id"`
	Slug    string          `json:"slug"`
	Title   string          `json:"title"`
	Excerpt string          `json:"excerpt,omitempty"`
	Date    string          `json:"date"`
	Image   string          `json:"image,omitempty"`
	ACF     json.RawMessage `json:"acf,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type HomeView struct {
	Hero     Hero             `json:"hero"`
	Mission  Mission          `json:"mission"`
	Policies PolicyHighlights `json:"policy_highlights"`
	Insights Insights         `json:"insights"`
}

type Hero struct {
	Title           string    `json:"title"`
	TitleHighlight  string    `json:"title_highlight"`
	TitleSuffix     string    `json:"title_suffix"`
	TitleHighlight2 string    `json:"title_highlight_2"`
	Description     string    `json:"description"`
	Primary         CTA       `json:"cta_primary"`
	Secondary       CTA       `json:"cta_secondary"`
	Image           acf.Image `json:"image"`
}

type CTA struct {
	Label string `json:"label"`
	Href  string `json:"href"`
	Icon  string `json:"icon,omitempty"`
}

type Mission struct {
	Quote string `json:"quote"`
	Text  string `json:"text"`
}

type PolicyHighlights struct {
	Title    string   `json:"title"`
	Policies []Policy `json:"policies"`
}

type Policy struct {
	Icon        string   `json:"icon"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Points      []string `json:"points"`
}

type Insights struct {
	Badge string     `json:"badge"`
	Title string     `json:"title"`
	Posts []PostCard `json:"posts"`
}

type SettingsView struct {
	SEO             SEO               `json:"seo"`
	Branding        Branding          `json:"branding"`
	Nav             []Link            `json:"nav"`
	HeaderCTA       Link              `json:"header_cta"`
	Footer          Footer            `json:"footer"`
	NewsletterModal NewsletterModal   `json:"newsletter_modal"`
	Social          map[string]string `json:"social"`
}

type SEO struct {
	SiteName           string    `json:"site_name"`
	ShortName          string    `json:"short_name"`
	Description        string    `json:"description"`
	TwitterCreator     string    `json:"twitter_creator"`
	GoogleVerification string    `json:"google_verification,omitempty"`
	OGImage            acf.Image `json:"og_image"`
}

type Branding struct {
	LogoText  string     `json:"logo_text"`
	LogoImage *acf.Image `json:"logo_image"`
}

type Footer struct {
	QuickLinks []Link         `json:"quick_links"`
	Resources  []Link         `json:"resources"`
	Legal      []Link         `json:"legal"`
	Newsletter NewsletterCopy `json:"newsletter"`
	Copyright  string         `json:"copyright"`
}

type NewsletterCopy struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EmailPlaceholder string `json:"email_placeholder"`
	ButtonLabel      string `json:"button_label"`
}

type NewsletterModal struct {
	Enabled bool  `json:"enabled"`
	DelayMS int64 `json:"delay_ms"`
	NewsletterCopy
	SuccessMessage string `json:"success_message"`
}

func toCard(it *wp.Item) PostCard {
	card := PostCard{
		ID:       it.ID,
		Slug:     it.Slug,
		Title:    it.PlainTitle(),
		Date:     wp.FormatDate(it.Date),
		Category: "Insights",
		Image:    it.FeaturedImageURL(),
		ImageAlt: it.FeaturedImageAlt(),
		Tags:     []string{},
	}
	if it.Excerpt != nil {
		card.Excerpt = wp.StripHTML(it.Excerpt.Rendered)
	}
	if it.Content != nil {
		card.ReadTime = wp.ReadTime(it.Content.Rendered)
	}
	if cat := it.PrimaryCategory(); cat != nil {
		card.Category = cat.Name
	}
	for _, t := range it.TagTerms() {
		card.Tags = append(card.Tags, t.Name)
	}
	return card
}

func toDetail(it *wp.Item) PostDetail {
	d := PostDetail{PostCard: toCard(it)}
	if it.Content != nil {
		d.Content = it.Content.Rendered
	}
	if it.Embedded != nil && len(it.Embedded.Author) > 0 {
		d.Author = it.Embedded.Author[0].Name
	}
	return d
}

// links reads an array of {label|title|text, href|url|link} rows. ok is false
// when the field is absent or yields no usable link.
func links(raw []byte, paths ...string) ([]Link, bool) {
	v := acf.Get(raw, paths...)
	if !v.IsArray() {
		return nil, false
	}
	var out []Link
	v.ForEach(func(_, row gjson.Result) bool {
		label := firstString(row, "label", "title", "text", "name")
		href := firstString(row, "href", "url", "link")
		if label != "" && href != "" {
			out = append(out, Link{Label: label, Href: href})
		}
		return true
	})
	return out, len(out) > 0
}

func firstString(row gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := row.Get(k); v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}
