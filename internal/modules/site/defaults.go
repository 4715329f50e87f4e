package site

import "github.com/kaarshe/core/internal/pkg/acf"

// Copy served when the CMS page lacks a field.
var defaultHero = Hero{
	Title:           "Leading with ",
	TitleHighlight:  "Integrity",
	TitleSuffix:     ", Building for the ",
	TitleHighlight2: "Future",
	Description:     "A vision for sustainable leadership and innovative policy design, committed to building a resilient future for all through transparent governance.",
	Primary:         CTA{Label: "Read the Vision", Href: "/vision", Icon: "arrow_forward"},
	Secondary:       CTA{Label: "Latest Research", Href: "/research"},
	Image:           acf.Image{Src: "/images/hero-portrait.jpg", Alt: "Professional portrait of leader Kaarshe"},
}

var defaultMission = Mission{
	Quote: "format_quote",
	Text:  "To lead with unwavering integrity, fostering transparent governance and innovative solutions that empower communities and ensure long-term prosperity.",
}

var defaultPolicies = PolicyHighlights{
	Title: "Policy Highlights",
	Policies: []Policy{
		{
			Icon:        "insights",
			Title:       "Economic Reform",
			Description: "Implementing data-driven fiscal policies to stabilize emerging markets and promote sustainable investment in local industries.",
			Points:      []string{"Fiscal Transparency Initiatives", "Market Deregulation Strategies"},
		},
		{
			Icon:        "diversity_3",
			Title:       "Social Infrastructure",
			Description: "Building robust healthcare and education systems that provide equitable access to all citizens through public-private partnerships.",
			Points:      []string{"Universal Healthcare Access", "Digital Literacy Empowerment"},
		},
		{
			Icon:        "hub",
			Title:       "Infrastructure Modernization",
			Description: "Accelerating reliable transport, ports, and digital backbone projects to reduce costs, improve access, and unlock private-sector growth.",
			Points:      []string{"Priority Corridor Investments", "Digital Connectivity Expansion"},
		},
		{
			Icon:        "gpp_good",
			Title:       "Governance & Accountability",
			Description: "Strengthening institutions with transparent procurement, measurable targets, and public reporting to increase trust and outcomes.",
			Points:      []string{"Open Contracting Standards", "Performance Monitoring & Audits"},
		},
	},
}

const (
	defaultInsightsTitle    = "Latest Insights"
	defaultShortName        = "Kaarshe"
	defaultSiteDescription  = "Official Leadership Portal - Leading with Integrity, Building for the Future"
	defaultTwitterCreator   = "@kaarshe"
	defaultOGImage          = "https://kaarshe.com/og.jpg"
	defaultCopyright        = "© 2026 KAARSHE. All rights reserved."
	defaultModalDelayMillis = 800
)

var (
	defaultNav = []Link{
		{Label: "Home", Href: "/"},
		{Label: "About", Href: "/about"},
		{Label: "Vision", Href: "/vision"},
		{Label: "Research", Href: "/research"},
		{Label: "Blog", Href: "/blog"},
		{Label: "Contact", Href: "/contact"},
	}
	defaultQuickLinks = []Link{
		{Label: "About", Href: "/about"},
		{Label: "Vision", Href: "/vision"},
		{Label: "Contact", Href: "/contact"},
	}
	defaultResources = []Link{
		{Label: "Book Speaking", Href: "/book-speaking"},
		{Label: "Research", Href: "/research"},
		{Label: "Blog", Href: "/blog"},
	}
	defaultLegal = []Link{
		{Label: "Privacy Policy", Href: "/privacy-policy"},
		{Label: "Terms and Conditions", Href: "/terms-and-conditions"},
		{Label: "Disclaimer", Href: "/disclaimer"},
	}
	defaultSocial = map[string]string{
		"twitter":   "https://twitter.com/kaarshe",
		"linkedin":  "https://linkedin.com/company/kaarshe",
		"instagram": "https://instagram.com/kaarshe",
		"facebook":  "https://facebook.com/kaarshe",
	}
)
