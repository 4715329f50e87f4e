package config

import (
	"strings"
	"time"
)

type rawAppConfig struct {
	Port               int                 `yaml:"port"`
	Env                string              `yaml:"env"`
	NodeEnv            string              `yaml:"node_env"`
	Timezone           string              `yaml:"timezone"`
	TZ                 string              `yaml:"tz"`
	AllowedOrigins     []string            `yaml:"allowed_origins"`
	CORSAllowedOrigins []string            `yaml:"cors_allowed_origins"`
	JWTSecret          string              `yaml:"jwt_secret"`
	Paths              rawPathsConfig      `yaml:"paths"`
	LogDir             string              `yaml:"log_dir"`
	DataDir            string              `yaml:"data_dir"`
	Site               rawSiteConfig       `yaml:"site"`
	SiteURL            string              `yaml:"site_url"`
	OwnerEmail         string              `yaml:"owner_email"`
	WordPress          rawWordPressConfig  `yaml:"wordpress"`
	Secrets            rawSecretsConfig    `yaml:"secrets"`
	Mail               rawMailConfig       `yaml:"mail"`
	SMTP               rawMailConfig       `yaml:"smtp"`
	Newsletter         rawNewsletterConfig `yaml:"newsletter"`
	Database           rawDatabaseConfig   `yaml:"database"`
	DSN                string              `yaml:"dsn"`
	Mongo              rawMongoConfig      `yaml:"mongo"`
	Redis              rawRedisConfig      `yaml:"redis"`
	RedisURL           string              `yaml:"redis_url"`
	Cache              rawCacheConfig      `yaml:"cache"`
	RateLimit          rawRateLimitConfig  `yaml:"rate_limit"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
	Data string `yaml:"data"`
}

type rawSiteConfig struct {
	URL        string `yaml:"url"`
	Name       string `yaml:"name"`
	OwnerEmail string `yaml:"owner_email"`
}

type rawWordPressConfig struct {
	APIBase            string        `yaml:"api_base"`
	BaseURL            string        `yaml:"base_url"`
	AppUser            string        `yaml:"app_user"`
	User               string        `yaml:"user"`
	AppPassword        string        `yaml:"app_password"`
	Password           string        `yaml:"password"`
	NewsletterPostType string        `yaml:"newsletter_post_type"`
	ContactPostType    string        `yaml:"contact_post_type"`
	SpeakingPostType   string        `yaml:"speaking_post_type"`
	BookSpeakingType   string        `yaml:"book_speaking_post_type"`
	HomePageSlug       string        `yaml:"home_page_slug"`
	SettingsPageSlug   string        `yaml:"settings_page_slug"`
	Timeout            time.Duration `yaml:"timeout"`
}

type rawSecretsConfig struct {
	Broadcast  string `yaml:"broadcast"`
	Revalidate string `yaml:"revalidate"`
}

type rawMailConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Pass           string `yaml:"pass"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	ReplyTo        string `yaml:"reply_to"`
	ResendKey      string `yaml:"resend_key"`
	MailjetPublic  string `yaml:"mailjet_public_key"`
	MailjetPrivate string `yaml:"mailjet_private_key"`
}

type rawNewsletterConfig struct {
	Store         string                 `yaml:"store"`
	BatchSize     int                    `yaml:"batch_size"`
	PageSize      int                    `yaml:"page_size"`
	AutoBroadcast rawAutoBroadcastConfig `yaml:"auto_broadcast"`
	Export        rawExportConfig        `yaml:"export"`
}

type rawAutoBroadcastConfig struct {
	Enable   *bool         `yaml:"enable"`
	Interval time.Duration `yaml:"interval"`
	Kind     string        `yaml:"kind"`
}

type rawExportConfig struct {
	Enable          *bool         `yaml:"enable"`
	Interval        time.Duration `yaml:"interval"`
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint"`
	AccessKeyID     string        `yaml:"access_key_id"`
	SecretAccessKey string        `yaml:"secret_access_key"`
	Prefix          string        `yaml:"prefix"`
	PathStyle       *bool         `yaml:"path_style"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	URL       string            `yaml:"url"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Username  string            `yaml:"username"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	DBName    string            `yaml:"db_name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawMongoConfig struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawCacheConfig struct {
	Disable *bool         `yaml:"disable"`
	TTL     time.Duration `yaml:"ttl"`
}

type rawRateLimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

// setString assigns each non-blank candidate in order, so the last one wins.
func setString(dst *string, candidates ...string) {
	for _, c := range candidates {
		if v := strings.TrimSpace(c); v != "" {
			*dst = v
		}
	}
}

func setInt(dst *int, candidates ...int) {
	for _, c := range candidates {
		if c != 0 {
			*dst = c
		}
	}
}

func setDuration(dst *time.Duration, candidates ...time.Duration) {
	for _, c := range candidates {
		if c > 0 {
			*dst = c
		}
	}
}

func setBool(dst *bool, candidates ...*bool) {
	for _, c := range candidates {
		if c != nil {
			*dst = *c
		}
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	setInt(&cfg.Port, raw.Port)
	setString(&cfg.Env, raw.Env, raw.NodeEnv)
	setString(&cfg.Timezone, raw.Timezone, raw.TZ)
	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = raw.AllowedOrigins
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = raw.CORSAllowedOrigins
	}
	setString(&cfg.JWTSecret, raw.JWTSecret)
	setString(&cfg.Paths.Logs, raw.Paths.Logs, raw.LogDir)
	setString(&cfg.Paths.Data, raw.Paths.Data, raw.DataDir)

	setString(&cfg.Site.URL, raw.Site.URL, raw.SiteURL)
	setString(&cfg.Site.Name, raw.Site.Name)
	setString(&cfg.Site.OwnerEmail, raw.Site.OwnerEmail, raw.OwnerEmail)

	wp := &cfg.WordPress
	setString(&wp.APIBase, raw.WordPress.BaseURL, raw.WordPress.APIBase)
	setString(&wp.AppUser, raw.WordPress.User, raw.WordPress.AppUser)
	setString(&wp.AppPassword, raw.WordPress.Password, raw.WordPress.AppPassword)
	setString(&wp.NewsletterPostType, raw.WordPress.NewsletterPostType)
	setString(&wp.ContactPostType, raw.WordPress.ContactPostType)
	setString(&wp.SpeakingPostType, raw.WordPress.BookSpeakingType, raw.WordPress.SpeakingPostType)
	setString(&wp.HomePageSlug, raw.WordPress.HomePageSlug)
	setString(&wp.SettingsPageSlug, raw.WordPress.SettingsPageSlug)
	setDuration(&wp.Timeout, raw.WordPress.Timeout)

	setString(&cfg.Secrets.Broadcast, raw.Secrets.Broadcast)
	setString(&cfg.Secrets.Revalidate, raw.Secrets.Revalidate)

	for _, m := range []rawMailConfig{raw.SMTP, raw.Mail} {
		setString(&cfg.Mail.Host, m.Host)
		setInt(&cfg.Mail.Port, m.Port)
		setString(&cfg.Mail.User, m.User)
		setString(&cfg.Mail.Pass, m.Password, m.Pass)
		setString(&cfg.Mail.From, m.From)
		setString(&cfg.Mail.ReplyTo, m.ReplyTo)
		setString(&cfg.Mail.ResendKey, m.ResendKey)
		setString(&cfg.Mail.MailjetPublic, m.MailjetPublic)
		setString(&cfg.Mail.MailjetPrivate, m.MailjetPrivate)
	}

	nl := &cfg.Newsletter
	setString(&nl.Store, raw.Newsletter.Store)
	setInt(&nl.BatchSize, raw.Newsletter.BatchSize)
	setInt(&nl.PageSize, raw.Newsletter.PageSize)
	setBool(&nl.AutoBroadcast.Enable, raw.Newsletter.AutoBroadcast.Enable)
	setDuration(&nl.AutoBroadcast.Interval, raw.Newsletter.AutoBroadcast.Interval)
	setString(&nl.AutoBroadcast.Kind, raw.Newsletter.AutoBroadcast.Kind)
	ex := raw.Newsletter.Export
	setBool(&nl.Export.Enable, ex.Enable)
	setDuration(&nl.Export.Interval, ex.Interval)
	setString(&nl.Export.Bucket, ex.Bucket)
	setString(&nl.Export.Region, ex.Region)
	setString(&nl.Export.Endpoint, ex.Endpoint)
	setString(&nl.Export.AccessKeyID, ex.AccessKeyID)
	setString(&nl.Export.SecretAccessKey, ex.SecretAccessKey)
	setString(&nl.Export.Prefix, ex.Prefix)
	setBool(&nl.Export.PathStyle, ex.PathStyle)

	db := &cfg.Database
	setString(&db.DSN, raw.Database.URL, raw.Database.DSN, raw.DSN)
	setString(&db.Host, raw.Database.Host)
	setInt(&db.Port, raw.Database.Port)
	setString(&db.User, raw.Database.Username, raw.Database.User)
	setString(&db.Password, raw.Database.Password)
	setString(&db.Name, raw.Database.DBName, raw.Database.Name)
	setString(&db.Charset, raw.Database.Charset)
	setBool(&db.ParseTime, raw.Database.ParseTime)
	setString(&db.Loc, raw.Database.Loc)
	if raw.Database.Params != nil {
		db.Params = copyStringMap(raw.Database.Params)
	}

	setString(&cfg.Mongo.URI, raw.Mongo.URI)
	setString(&cfg.Mongo.Database, raw.Mongo.Database)
	setString(&cfg.Mongo.Collection, raw.Mongo.Collection)

	rd := &cfg.Redis
	setString(&rd.URL, raw.Redis.URL, raw.RedisURL)
	setString(&rd.Host, raw.Redis.Host)
	setInt(&rd.Port, raw.Redis.Port)
	setString(&rd.Username, raw.Redis.Username)
	setString(&rd.Password, raw.Redis.Password)
	if raw.Redis.DB != nil {
		rd.DB = *raw.Redis.DB
	}
	setBool(&rd.TLS, raw.Redis.TLS)

	setBool(&cfg.Cache.Disable, raw.Cache.Disable)
	setDuration(&cfg.Cache.TTL, raw.Cache.TTL)
	setInt(&cfg.RateLimit.Max, raw.RateLimit.Max)
	setDuration(&cfg.RateLimit.Window, raw.RateLimit.Window)
}
