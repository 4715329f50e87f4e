package wp

import "encoding/json"

// Rendered is a WordPress field delivered as rendered HTML.
type Rendered struct {
	Rendered string `json:"rendered"`
}

type MediaSize struct {
	SourceURL string `json:"source_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type Media struct {
	ID           int64  `json:"id"`
	SourceURL    string `json:"source_url"`
	AltText      string `json:"alt_text,omitempty"`
	MediaDetails *struct {
		Width  int                  `json:"width,omitempty"`
		Height int                  `json:"height,omitempty"`
		Sizes  map[string]MediaSize `json:"sizes,omitempty"`
	} `json:"media_details,omitempty"`
}

type Author struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	AvatarURLs map[string]string `json:"avatar_urls,omitempty"`
}

// Term is a taxonomy term such as a category or tag.
type Term struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Taxonomy string `json:"taxonomy,omitempty"`
	Count    int    `json:"count,omitempty"`
}

type Embedded struct {
	Author        []Author `json:"author,omitempty"`
	FeaturedMedia []Media  `json:"wp:featuredmedia,omitempty"`
	Terms         [][]Term `json:"wp:term,omitempty"`
}

// Item is a post, page or custom post type record. ACF holds the loosely
// typed custom fields untouched; read it with the acf package.
type Item struct {
	ID            int64           `json:"id"`
	Slug          string          `json:"slug"`
	Status        string          `json:"status,omitempty"`
	Type          string          `json:"type,omitempty"`
	Link          string          `json:"link,omitempty"`
	Date          string          `json:"date,omitempty"`
	Title         Rendered        `json:"title"`
	Excerpt       *Rendered       `json:"excerpt,omitempty"`
	Content       *Rendered       `json:"content,omitempty"`
	FeaturedMedia int64           `json:"featured_media,omitempty"`
	Categories    []int64         `json:"categories,omitempty"`
	Tags          []int64         `json:"tags,omitempty"`
	Embedded      *Embedded       `json:"_embedded,omitempty"`
	ACF           json.RawMessage `json:"acf,omitempty"`
}

// ListParams are the collection query parameters understood by the REST API.
// Zero values are omitted from the request.
type ListParams struct {
	PerPage    int
	Page       int
	Search     string
	Slug       string
	Categories int64
	Exclude    []int64
	Order      string
	OrderBy    string
	Embed      bool
	HideEmpty  bool
}

// ListResult is one page of a collection with the totals reported in the
// X-WP-Total and X-WP-TotalPages headers.
type ListResult struct {
	Items      []Item
	Total      int
	TotalPages int
}

// CreateParams is the body of a new record.
type CreateParams struct {
	Title   string `json:"title"`
	Status  string `json:"status"`
	Content string `json:"content"`
}
