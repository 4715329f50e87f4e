package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"

	defaultSiteURL  = "https://kaarshe.com"
	defaultSiteName = "KAARSHE"

	defaultNewsletterPostType = "newsletter_subscriber"
	defaultContactPostType    = "contact_message"
	defaultSpeakingPostType   = "speaking_request"
	defaultHomePageSlug       = "home"
	defaultSettingsPageSlug   = "site-settings"
	defaultWordPressTimeout   = 15 * time.Second

	defaultNewsletterStore     = StoreCMS
	defaultBroadcastBatchSize  = 50
	defaultRecipientPageSize   = 100
	defaultAutoBroadcastPeriod = 15 * time.Minute
	defaultExportPeriod        = 24 * time.Hour
	defaultExportPrefix        = "newsletter"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "kaarshe"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultRedisPort = 6379

	defaultMongoDatabase   = "kaarshe"
	defaultMongoCollection = "subscribers"

	defaultCacheTTL        = 60 * time.Second
	defaultRateLimitMax    = 60
	defaultRateLimitWindow = time.Minute
)

// Newsletter store backends.
const (
	StoreCMS    = "cms"
	StoreMySQL  = "mysql"
	StoreMongo  = "mongo"
	StoreBadger = "badger"
)

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int
	Env            string
	Timezone       string
	AllowedOrigins []string
	JWTSecret      string
	Paths          RuntimePathsConfig
	Site           SiteConfig
	WordPress      WordPressConfig
	Secrets        SecretsConfig
	Mail           MailConfig
	Newsletter     NewsletterConfig
	Database       DatabaseRuntimeConfig
	Mongo          MongoConfig
	Redis          RedisRuntimeConfig
	Cache          CacheConfig
	RateLimit      RateLimitConfig

	// DSN and RedisURL are derived from Database and Redis.
	DSN      string
	RedisURL string
}

type RuntimePathsConfig struct {
	Logs string
	Data string
}

type SiteConfig struct {
	URL        string
	Name       string
	OwnerEmail string
}

// WordPressConfig describes the headless CMS used as content source and record store.
type WordPressConfig struct {
	APIBase            string
	AppUser            string
	AppPassword        string
	NewsletterPostType string
	ContactPostType    string
	SpeakingPostType   string
	HomePageSlug       string
	SettingsPageSlug   string
	Timeout            time.Duration
}

type SecretsConfig struct {
	Broadcast  string
	Revalidate string
}

type MailConfig struct {
	Host           string
	Port           int
	User           string
	Pass           string
	From           string
	ReplyTo        string
	ResendKey      string
	MailjetPublic  string
	MailjetPrivate string
}

type NewsletterConfig struct {
	Store         string
	BatchSize     int
	PageSize      int
	AutoBroadcast AutoBroadcastConfig
	Export        ExportConfig
}

type AutoBroadcastConfig struct {
	Enable   bool
	Interval time.Duration
	Kind     string
}

// ExportConfig controls the periodic subscriber CSV export to S3-compatible storage.
type ExportConfig struct {
	Enable          bool
	Interval        time.Duration
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	PathStyle       bool
}

type DatabaseRuntimeConfig struct {
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Params    map[string]string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type RedisRuntimeConfig struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

type CacheConfig struct {
	Disable bool
	TTL     time.Duration
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

// Load reads the YAML file at configPath and overlays environment variables.
// A missing file at the default path is not an error.
func Load(configPath string) (*AppConfig, error) {
	return load(configPath, os.LookupEnv)
}

func load(configPath string, lookup func(string) (string, bool)) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		raw := rawAppConfig{}
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg, lookup)
	finalize(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Site: SiteConfig{
			URL:  defaultSiteURL,
			Name: defaultSiteName,
		},
		WordPress: WordPressConfig{
			NewsletterPostType: defaultNewsletterPostType,
			ContactPostType:    defaultContactPostType,
			SpeakingPostType:   defaultSpeakingPostType,
			HomePageSlug:       defaultHomePageSlug,
			SettingsPageSlug:   defaultSettingsPageSlug,
			Timeout:            defaultWordPressTimeout,
		},
		Newsletter: NewsletterConfig{
			Store:     defaultNewsletterStore,
			BatchSize: defaultBroadcastBatchSize,
			PageSize:  defaultRecipientPageSize,
			AutoBroadcast: AutoBroadcastConfig{
				Interval: defaultAutoBroadcastPeriod,
				Kind:     "blog",
			},
			Export: ExportConfig{
				Interval: defaultExportPeriod,
				Prefix:   defaultExportPrefix,
			},
		},
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Mongo: MongoConfig{
			Database:   defaultMongoDatabase,
			Collection: defaultMongoCollection,
		},
		Redis: RedisRuntimeConfig{
			Port: defaultRedisPort,
		},
		Cache: CacheConfig{
			TTL: defaultCacheTTL,
		},
		RateLimit: RateLimitConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitWindow,
		},
	}
}

func finalize(cfg *AppConfig) {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.AllowedOrigins = normalizeOrigins(cfg.AllowedOrigins)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Site = normalizeSiteConfig(cfg.Site)
	cfg.WordPress = normalizeWordPressConfig(cfg.WordPress)
	cfg.Newsletter = normalizeNewsletterConfig(cfg.Newsletter)
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = defaultCacheTTL
	}
	if cfg.RateLimit.Max <= 0 {
		cfg.RateLimit.Max = defaultRateLimitMax
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = defaultRateLimitWindow
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	switch c.Newsletter.Store {
	case StoreCMS, StoreMySQL, StoreMongo, StoreBadger:
	default:
		return fmt.Errorf("unknown newsletter.store %q", c.Newsletter.Store)
	}
	if c.Newsletter.Store == StoreMongo && c.Mongo.URI == "" {
		return errors.New("newsletter.store is mongo but mongo.uri is empty")
	}
	if c.Newsletter.Export.Enable && c.Newsletter.Export.Bucket == "" {
		return errors.New("newsletter.export is enabled but bucket is empty")
	}
	return nil
}

// IsDev reports whether the service runs in development mode.
func (c *AppConfig) IsDev() bool { return c.Env == "development" }

// RedisEnabled reports whether a redis endpoint was configured.
func (c *AppConfig) RedisEnabled() bool { return c.RedisURL != "" }

// LogDir returns the resolved log directory.
func (c *AppConfig) LogDir() string { return ResolveRuntimePath(c.Paths.Logs, "logs") }

// DataDir returns the resolved directory for embedded stores.
func (c *AppConfig) DataDir() string { return ResolveRuntimePath(c.Paths.Data, "data") }
