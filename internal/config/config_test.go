package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := load("", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "https://kaarshe.com", cfg.Site.URL)
	assert.Equal(t, "newsletter_subscriber", cfg.WordPress.NewsletterPostType)
	assert.Equal(t, "contact_message", cfg.WordPress.ContactPostType)
	assert.Equal(t, "speaking_request", cfg.WordPress.SpeakingPostType)
	assert.Equal(t, StoreCMS, cfg.Newsletter.Store)
	assert.Equal(t, 50, cfg.Newsletter.BatchSize)
	assert.Equal(t, 100, cfg.Newsletter.PageSize)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.yml"), envMap(nil))
	require.Error(t, err)
}

func TestLoadYAMLAndEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
port: 8080
site:
  url: https://staging.kaarshe.com/
  owner_email: owner@kaarshe.com
wordpress:
  api_base: https://cms.example.com/wp-json/wp/v2/
  app_user: editor
  timeout: 5s
newsletter:
  store: BADGER
  batch_size: 25
redis:
  host: cache.local
  db: 2
`)
	cfg, err := load(path, envMap(map[string]string{
		EnvWordPressAppPass: "abcd efgh",
		EnvBroadcastSecret:  "s3cret",
		EnvPublicSiteURL:    "https://kaarshe.com/",
		EnvSMTPPort:         "465",
	}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://kaarshe.com", cfg.Site.URL)
	assert.Equal(t, "owner@kaarshe.com", cfg.Site.OwnerEmail)
	assert.Equal(t, "https://cms.example.com/wp-json/wp/v2", cfg.WordPress.APIBase)
	assert.Equal(t, "editor", cfg.WordPress.AppUser)
	assert.Equal(t, "abcd efgh", cfg.WordPress.AppPassword)
	assert.Equal(t, 5*time.Second, cfg.WordPress.Timeout)
	assert.Equal(t, "s3cret", cfg.Secrets.Broadcast)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, StoreBadger, cfg.Newsletter.Store)
	assert.Equal(t, 25, cfg.Newsletter.BatchSize)
	assert.Equal(t, "redis://cache.local:6379/2", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
}

func TestSiteURLEnvPrecedence(t *testing.T) {
	cfg, err := load(writeConfig(t, "port: 3000\n"), envMap(map[string]string{
		EnvSiteURL:       "https://a.example",
		EnvPublicSiteURL: "https://b.example",
	}))
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", cfg.Site.URL)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := load(writeConfig(t, "prot: 3000\n"), envMap(nil))
	require.Error(t, err)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	_, err := load(writeConfig(t, "newsletter:\n  store: sqlite\n"), envMap(nil))
	require.ErrorContains(t, err, "newsletter.store")
}

func TestLoadMongoStoreNeedsURI(t *testing.T) {
	_, err := load(writeConfig(t, "newsletter:\n  store: mongo\n"), envMap(nil))
	require.ErrorContains(t, err, "mongo.uri")
}

func TestDSNValue(t *testing.T) {
	cfg := normalizeDatabaseConfig(DatabaseRuntimeConfig{
		Host:      "db",
		User:      "app",
		Password:  "pw",
		Name:      "site",
		ParseTime: true,
	})
	assert.Equal(t, "app:pw@tcp(db:3306)/site?charset=utf8mb4&loc=Local&parseTime=true", cfg.DSNValue())

	cfg.DSN = "custom"
	assert.Equal(t, "custom", cfg.DSNValue())
}

func TestRedisURLValue(t *testing.T) {
	assert.Equal(t, "", RedisRuntimeConfig{Port: 6379}.URLValue())
	assert.Equal(t, "redis://localhost:6379", RedisRuntimeConfig{URL: "localhost:6379"}.URLValue())
	assert.Equal(t, "rediss://:pw@r:6380/1", RedisRuntimeConfig{Host: "r", Port: 6380, DB: 1, Password: "pw", TLS: true}.URLValue())
}
