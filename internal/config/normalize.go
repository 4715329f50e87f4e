package config

import "strings"

func normalizeSiteConfig(cfg SiteConfig) SiteConfig {
	cfg.URL = strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if cfg.URL == "" {
		cfg.URL = defaultSiteURL
	}
	cfg.Name = strings.TrimSpace(cfg.Name)
	if cfg.Name == "" {
		cfg.Name = defaultSiteName
	}
	cfg.OwnerEmail = strings.TrimSpace(cfg.OwnerEmail)
	return cfg
}

func normalizeWordPressConfig(cfg WordPressConfig) WordPressConfig {
	cfg.APIBase = strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	cfg.AppUser = strings.TrimSpace(cfg.AppUser)
	// Application passwords are displayed with spaces; the REST API accepts both forms.
	cfg.AppPassword = strings.TrimSpace(cfg.AppPassword)
	if cfg.NewsletterPostType == "" {
		cfg.NewsletterPostType = defaultNewsletterPostType
	}
	if cfg.ContactPostType == "" {
		cfg.ContactPostType = defaultContactPostType
	}
	if cfg.SpeakingPostType == "" {
		cfg.SpeakingPostType = defaultSpeakingPostType
	}
	if cfg.HomePageSlug == "" {
		cfg.HomePageSlug = defaultHomePageSlug
	}
	if cfg.SettingsPageSlug == "" {
		cfg.SettingsPageSlug = defaultSettingsPageSlug
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultWordPressTimeout
	}
	return cfg
}

func normalizeNewsletterConfig(cfg NewsletterConfig) NewsletterConfig {
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.Store == "" {
		cfg.Store = defaultNewsletterStore
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBroadcastBatchSize
	}
	if cfg.PageSize <= 0 || cfg.PageSize > defaultRecipientPageSize {
		cfg.PageSize = defaultRecipientPageSize
	}
	if cfg.AutoBroadcast.Interval <= 0 {
		cfg.AutoBroadcast.Interval = defaultAutoBroadcastPeriod
	}
	if cfg.Export.Interval <= 0 {
		cfg.Export.Interval = defaultExportPeriod
	}
	cfg.Export.Prefix = strings.Trim(strings.TrimSpace(cfg.Export.Prefix), "/")
	if cfg.Export.Prefix == "" {
		cfg.Export.Prefix = defaultExportPrefix
	}
	return cfg
}

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Password == "" {
		cfg.Password = defaultDBPassword
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = strings.TrimSpace(paths.Logs)
	paths.Data = strings.TrimSpace(paths.Data)
	return paths
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
