package config

import (
	"strconv"
	"strings"
)

// Environment variables recognized on top of the YAML file. The names match
// the ones the site deployment already exports.
const (
	EnvPort               = "PORT"
	EnvJWTSecret          = "JWT_SECRET"
	EnvLogDir             = "KAARSHE_LOG_DIR"
	EnvWordPressAPIBase   = "WORDPRESS_API_BASE"
	EnvWordPressAppUser   = "WORDPRESS_APP_USER"
	EnvWordPressAppPass   = "WORDPRESS_APP_PASSWORD"
	EnvNewsletterPostType = "WORDPRESS_NEWSLETTER_POST_TYPE"
	EnvContactPostType    = "WORDPRESS_CONTACT_POST_TYPE"
	EnvSpeakingPostType   = "WORDPRESS_BOOK_SPEAKING_POST_TYPE"
	EnvHomePageSlug       = "WORDPRESS_HOME_PAGE_SLUG"
	EnvSettingsPageSlug   = "WORDPRESS_SITE_SETTINGS_PAGE_SLUG"
	EnvSiteOwnerEmail     = "SITE_OWNER_EMAIL"
	EnvSiteURL            = "SITE_URL"
	EnvPublicSiteURL      = "NEXT_PUBLIC_SITE_URL"
	EnvBroadcastSecret    = "NEWSLETTER_BROADCAST_SECRET"
	EnvRevalidateSecret   = "REVALIDATE_SECRET"
	EnvSMTPHost           = "SMTP_HOST"
	EnvSMTPPort           = "SMTP_PORT"
	EnvSMTPUser           = "SMTP_USER"
	EnvSMTPPass           = "SMTP_PASS"
	EnvSMTPFrom           = "SMTP_FROM"
	EnvResendKey          = "RESEND_API_KEY"
	EnvMailjetPublic      = "MAILJET_API_KEY_PUBLIC"
	EnvMailjetPrivate     = "MAILJET_API_KEY_PRIVATE"
	EnvNewsletterStore    = "NEWSLETTER_STORE"
	EnvDatabaseDSN        = "DATABASE_DSN"
	EnvMongoURI           = "MONGO_URI"
	EnvRedisURL           = "REDIS_URL"
)

func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	getInt := func(key string) int {
		n, err := strconv.Atoi(get(key))
		if err != nil {
			return 0
		}
		return n
	}

	setInt(&cfg.Port, getInt(EnvPort))
	setString(&cfg.JWTSecret, get(EnvJWTSecret))
	setString(&cfg.Paths.Logs, get(EnvLogDir))

	setString(&cfg.WordPress.APIBase, get(EnvWordPressAPIBase))
	setString(&cfg.WordPress.AppUser, get(EnvWordPressAppUser))
	setString(&cfg.WordPress.AppPassword, get(EnvWordPressAppPass))
	setString(&cfg.WordPress.NewsletterPostType, get(EnvNewsletterPostType))
	setString(&cfg.WordPress.ContactPostType, get(EnvContactPostType))
	setString(&cfg.WordPress.SpeakingPostType, get(EnvSpeakingPostType))
	setString(&cfg.WordPress.HomePageSlug, get(EnvHomePageSlug))
	setString(&cfg.WordPress.SettingsPageSlug, get(EnvSettingsPageSlug))

	setString(&cfg.Site.OwnerEmail, get(EnvSiteOwnerEmail))
	setString(&cfg.Site.URL, get(EnvPublicSiteURL), get(EnvSiteURL))

	setString(&cfg.Secrets.Broadcast, get(EnvBroadcastSecret))
	setString(&cfg.Secrets.Revalidate, get(EnvRevalidateSecret))

	setString(&cfg.Mail.Host, get(EnvSMTPHost))
	setInt(&cfg.Mail.Port, getInt(EnvSMTPPort))
	setString(&cfg.Mail.User, get(EnvSMTPUser))
	setString(&cfg.Mail.Pass, get(EnvSMTPPass))
	setString(&cfg.Mail.From, get(EnvSMTPFrom))
	setString(&cfg.Mail.ResendKey, get(EnvResendKey))
	setString(&cfg.Mail.MailjetPublic, get(EnvMailjetPublic))
	setString(&cfg.Mail.MailjetPrivate, get(EnvMailjetPrivate))

	setString(&cfg.Newsletter.Store, get(EnvNewsletterStore))
	setString(&cfg.Database.DSN, get(EnvDatabaseDSN))
	setString(&cfg.Mongo.URI, get(EnvMongoURI))
	setString(&cfg.Redis.URL, get(EnvRedisURL))
}
