// Package site serves read-only views of CMS content for the public site.
package site

import (
	"context"
	"strings"

	"github.com/kaarshe/core/internal/pkg/acf"
	"github.com/kaarshe/core/internal/pkg/apperr"
	"github.com/kaarshe/core/internal/pkg/pagination"
	"github.com/kaarshe/core/internal/pkg/response"
	"github.com/kaarshe/core/internal/pkg/wp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	homeInsightsCount  = 3
	categoriesPageSize = 100
	defaultItemsSize   = 20
)

var policyPointKeys = []string{"text", "point", "value", "label"}

type Settings struct {
	SiteName         string
	HomePageSlug     string
	SettingsPageSlug string
}

type Service struct {
	cms      *wp.Client
	settings Settings
	logger   *zap.Logger
}

func NewService(cms *wp.Client, settings Settings, logger *zap.Logger) *Service {
	if settings.HomePageSlug == "" {
		settings.HomePageSlug = "home"
	}
	if settings.SettingsPageSlug == "" {
		settings.SettingsPageSlug = "site-settings"
	}
	if settings.SiteName == "" {
		settings.SiteName = "KAARSHE"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cms: cms, settings: settings, logger: logger.Named("site")}
}

// Posts lists one page of posts, optionally filtered by search or category.
func (s *Service) Posts(ctx context.Context, q pagination.Query, search string, category int64) ([]PostCard, response.Pagination, error) {
	res, err := s.cms.ListItems(ctx, "posts", wp.ListParams{
		PerPage:    q.Size,
		Page:       q.Page,
		Search:     search,
		Categories: category,
		Embed:      true,
	})
	if err != nil {
		return nil, response.Pagination{}, wp.ReadError(err, "posts")
	}
	cards := make([]PostCard, 0, len(res.Items))
	for i := range res.Items {
		cards = append(cards, toCard(&res.Items[i]))
	}
	return cards, pagination.Meta(q, int64(res.Total), res.TotalPages), nil
}

// Post returns the post with slug, or nil when there is none.
func (s *Service) Post(ctx context.Context, slug string) (*PostDetail, error) {
	it, err := s.cms.GetItemBySlug(ctx, "posts", slug)
	if err != nil {
		return nil, wp.ReadError(err, "post")
	}
	if it == nil {
		return nil, nil
	}
	d := toDetail(it)
	return &d, nil
}

func (s *Service) Categories(ctx context.Context) ([]wp.Term, error) {
	terms, err := s.cms.Categories(ctx, categoriesPageSize)
	if err != nil {
		return nil, wp.ReadError(err, "categories")
	}
	if terms == nil {
		terms = []wp.Term{}
	}
	return terms, nil
}

// Page returns the page with slug, or nil when there is none.
func (s *Service) Page(ctx context.Context, slug string) (*PageView, error) {
	it, err := s.cms.GetItemBySlug(ctx, "pages", slug)
	if err != nil {
		return nil, wp.ReadError(err, "page")
	}
	if it == nil {
		return nil, nil
	}
	v := &PageView{ID: it.ID, Slug: it.Slug, Title: it.PlainTitle(), ACF: it.ACF}
	if it.Content != nil {
		v.Content = it.Content.Rendered
	}
	return v, nil
}

// Items lists one page of a custom post type.
func (s *Service) Items(ctx context.Context, postType string, q pagination.Query) ([]ItemView, response.Pagination, error) {
	if !validPostType(postType) {
		return nil, response.Pagination{}, apperr.Validation("Invalid content type")
	}
	res, err := s.cms.ListItems(ctx, postType, wp.ListParams{PerPage: q.Size, Page: q.Page, Embed: true})
	if err != nil {
		return nil, response.Pagination{}, wp.ReadError(err, postType)
	}
	items := make([]ItemView, 0, len(res.Items))
	for i := range res.Items {
		it := &res.Items[i]
		v := ItemView{
			ID:    it.ID,
			Slug:  it.Slug,
			Title: it.PlainTitle(),
			Date:  wp.FormatDate(it.Date),
			Image: it.FeaturedImageURL(),
			ACF:   it.ACF,
		}
		if it.Excerpt != nil {
			v.Excerpt = wp.StripHTML(it.Excerpt.Rendered)
		}
		items = append(items, v)
	}
	return items, pagination.Meta(q, int64(res.Total), res.TotalPages), nil
}

// Home resolves the landing page copy. CMS failures fall back to the
// built-in copy.
func (s *Service) Home(ctx context.Context) HomeView {
	raw := s.pageFields(ctx, s.settings.HomePageSlug)

	str := func(paths []string, fallback string) string { return acf.String(raw, paths, fallback) }
	image, _ := acf.ResolveImage(raw, []string{"hero.image", "hero_image"}, defaultHero.Image)

	view := HomeView{
		Hero: Hero{
			Title:           str([]string{"hero.title", "hero_title"}, defaultHero.Title),
			TitleHighlight:  str([]string{"hero.title_highlight", "hero_title_highlight"}, defaultHero.TitleHighlight),
			TitleSuffix:     str([]string{"hero.title_suffix", "hero_title_suffix"}, defaultHero.TitleSuffix),
			TitleHighlight2: str([]string{"hero.title_highlight_2", "hero_title_highlight_2"}, defaultHero.TitleHighlight2),
			Description:     str([]string{"hero.description", "hero_description"}, defaultHero.Description),
			Primary: CTA{
				Label: str([]string{"hero.cta_primary_label", "cta_primary_label"}, defaultHero.Primary.Label),
				Href:  str([]string{"hero.cta_primary_href", "cta_primary_href"}, defaultHero.Primary.Href),
				Icon:  str([]string{"hero.cta_primary_icon", "cta_primary_icon"}, defaultHero.Primary.Icon),
			},
			Secondary: CTA{
				Label: str([]string{"hero.cta_secondary_label", "cta_secondary_label"}, defaultHero.Secondary.Label),
				Href:  str([]string{"hero.cta_secondary_href", "cta_secondary_href"}, defaultHero.Secondary.Href),
			},
			Image: image,
		},
		Mission: Mission{
			Quote: str([]string{"mission.quote_icon", "mission_quote_icon"}, defaultMission.Quote),
			Text:  str([]string{"mission.text", "mission_text"}, defaultMission.Text),
		},
		Policies: PolicyHighlights{
			Title:    str([]string{"policy_highlights.title", "policy_highlights_title"}, defaultPolicies.Title),
			Policies: policies(raw),
		},
		Insights: Insights{
			Badge: str([]string{"insights.badge", "insights_badge"}, ""),
			Title: str([]string{"insights.title", "insights_title"}, defaultInsightsTitle),
			Posts: []PostCard{},
		},
	}

	posts, _, err := s.Posts(ctx, pagination.Query{Page: 1, Size: homeInsightsCount}, "", 0)
	if err != nil {
		s.logger.Warn("load latest posts", zap.Error(err))
	} else {
		view.Insights.Posts = posts
	}
	return view
}

// Settings resolves site-wide copy from the settings page.
func (s *Service) Settings(ctx context.Context) SettingsView {
	raw := s.pageFields(ctx, s.settings.SettingsPageSlug)
	str := func(paths []string, fallback string) string { return acf.String(raw, paths, fallback) }

	siteName := str([]string{"seo.site_name"}, s.settings.SiteName)
	og, _ := acf.ResolveImage(raw, []string{"seo.og_image", "seo.ogImage"}, acf.Image{Src: defaultOGImage, Alt: siteName})

	view := SettingsView{
		SEO: SEO{
			SiteName:           siteName,
			ShortName:          str([]string{"seo.short_name"}, defaultShortName),
			Description:        str([]string{"seo.description"}, defaultSiteDescription),
			TwitterCreator:     str([]string{"seo.twitter_creator"}, defaultTwitterCreator),
			GoogleVerification: str([]string{"seo.google_verification"}, ""),
			OGImage:            og,
		},
		Branding: Branding{
			LogoText: str([]string{"branding.logo_text", "branding.logoText"}, ""),
		},
		Nav: linksOr(raw, defaultNav, "header.nav", "header_navigation", "nav"),
		HeaderCTA: Link{
			Label: str([]string{"header.cta_label", "header.ctaLabel"}, "Contact"),
			Href:  str([]string{"header.cta_href", "header.ctaHref"}, "/contact"),
		},
		Footer: Footer{
			QuickLinks: linksOr(raw, defaultQuickLinks, "footer.quick_links", "footer.quickLinks"),
			Resources:  linksOr(raw, defaultResources, "footer.resources", "footer.resource_links"),
			Legal:      linksOr(raw, defaultLegal, "footer.legal", "footer.legal_links"),
			Newsletter: NewsletterCopy{
				Title:            str([]string{"footer.newsletter.title"}, ""),
				Description:      str([]string{"footer.newsletter.description"}, ""),
				EmailPlaceholder: str([]string{"footer.newsletter.email_placeholder"}, ""),
				ButtonLabel:      str([]string{"footer.newsletter.button_label"}, ""),
			},
			Copyright: str([]string{"footer.copyright"}, defaultCopyright),
		},
		NewsletterModal: NewsletterModal{
			Enabled: truthy(acf.Get(raw, "newsletter_modal.enabled"), true),
			DelayMS: number(acf.Get(raw, "newsletter_modal.delay_ms"), defaultModalDelayMillis),
			NewsletterCopy: NewsletterCopy{
				Title:            str([]string{"newsletter_modal.title"}, ""),
				Description:      str([]string{"newsletter_modal.description"}, ""),
				EmailPlaceholder: str([]string{"newsletter_modal.email_placeholder"}, ""),
				ButtonLabel:      str([]string{"newsletter_modal.button_label"}, ""),
			},
			SuccessMessage: str([]string{"newsletter_modal.success_message"}, ""),
		},
		Social: make(map[string]string, len(defaultSocial)),
	}
	if logo, ok := acf.ResolveImage(raw, []string{"branding.logo_image", "branding.logoImage"}, acf.Image{}); ok {
		view.Branding.LogoImage = &logo
	}
	for network, fallback := range defaultSocial {
		view.Social[network] = str([]string{"social." + network}, fallback)
	}
	return view
}

// pageFields returns the custom fields of page slug, or nil when the page
// cannot be read.
func (s *Service) pageFields(ctx context.Context, slug string) []byte {
	it, err := s.cms.GetItemBySlug(ctx, "pages", slug)
	if err != nil {
		s.logger.Warn("load page fields", zap.String("slug", slug), zap.Error(err))
		return nil
	}
	if it == nil {
		return nil
	}
	return it.ACF
}

func policies(raw []byte) []Policy {
	v := acf.Get(raw, "policy_highlights.policies", "policies")
	if !v.IsArray() {
		return defaultPolicies.Policies
	}
	var out []Policy
	for i, row := range v.Array() {
		p := Policy{
			Icon:        firstString(row, "icon"),
			Title:       firstString(row, "title"),
			Description: firstString(row, "description"),
		}
		if points, ok := acf.CoerceStringList(row.Get("points"), policyPointKeys...); ok {
			p.Points = points
		} else if i < len(defaultPolicies.Policies) {
			p.Points = defaultPolicies.Policies[i].Points
		} else {
			p.Points = []string{}
		}
		out = append(out, p)
	}
	if out == nil {
		out = []Policy{}
	}
	return out
}

func linksOr(raw []byte, fallback []Link, paths ...string) []Link {
	if l, ok := links(raw, paths...); ok {
		return l
	}
	return fallback
}

// truthy follows loose boolean semantics: absent uses fallback, empty
// strings and zero are false.
func truthy(v gjson.Result, fallback bool) bool {
	if !v.Exists() {
		return fallback
	}
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.False:
		return false
	default:
		return true
	}
}

func number(v gjson.Result, fallback int64) int64 {
	switch v.Type {
	case gjson.Number:
		return v.Int()
	case gjson.String:
		if n := gjson.Parse(strings.TrimSpace(v.Str)); n.Type == gjson.Number {
			return n.Int()
		}
	}
	if v.Exists() {
		return 0
	}
	return fallback
}

func validPostType(t string) bool {
	if t == "" || len(t) > 64 {
		return false
	}
	for _, r := range t {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' && r != '-' {
			return false
		}
	}
	return true
}
