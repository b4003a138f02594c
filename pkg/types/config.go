package types

// ProjectConfig is the parsed clientsync.yaml.
type ProjectConfig struct {
	Postgres *PostgresConfig `yaml:"postgres" json:"postgres"`
	Mirror   *MirrorConfig   `yaml:"mirror,omitempty" json:"mirror,omitempty"`
	Webhook  *WebhookConfig  `yaml:"webhook,omitempty" json:"webhook,omitempty"`
	Cache    *CacheConfig    `yaml:"cache,omitempty" json:"cache,omitempty"`
	Server   *ServerConfig   `yaml:"server,omitempty" json:"server,omitempty"`
}

// PostgresConfig locates the authoritative relational store. DSN may be a
// plain connection string or a secretsmanager:// reference.
type PostgresConfig struct {
	DSN string `yaml:"dsn" json:"dsn"`
}

// MirrorConfig locates the spreadsheet mirror. APIKey may be a plain value or
// a secretsmanager:// reference.
type MirrorConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
	APIKey  string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"`
	Sheet   string `yaml:"sheet,omitempty" json:"sheet,omitempty"`

	// RowIndexBase is the external position of the first data row after the
	// header and template rows. It is layout-specific: re-derive it from the
	// actual header/template row count of the target export. A wrong value
	// silently corrupts in-place cell updates.
	RowIndexBase int `yaml:"rowIndexBase,omitempty" json:"rowIndexBase,omitempty"`
}

// WebhookConfig configures the outbound CRM notification POST.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
}

// CacheConfig configures the read cache.
type CacheConfig struct {
	// Backend selects "memory" (default) or "redis".
	Backend string `yaml:"backend,omitempty" json:"backend,omitempty"`
	// TTLSeconds bounds staleness of cached reads. Default 30.
	TTLSeconds int `yaml:"ttlSeconds,omitempty" json:"ttlSeconds,omitempty"`
	// InvalidateDelayMillis defers invalidation of mirror-backed views after
	// a write, covering the mirror's propagation lag. Default 2000.
	InvalidateDelayMillis int    `yaml:"invalidateDelayMillis,omitempty" json:"invalidateDelayMillis,omitempty"`
	RedisAddr             string `yaml:"redisAddr,omitempty" json:"redisAddr,omitempty"`
	RedisPassword         string `yaml:"redisPassword,omitempty" json:"redisPassword,omitempty"`
	RedisDB               int    `yaml:"redisDb,omitempty" json:"redisDb,omitempty"`
	KeyPrefix             string `yaml:"keyPrefix,omitempty" json:"keyPrefix,omitempty"`
}

// ServerConfig configures the diagnostic HTTP listener (healthz + expvar).
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" json:"addr,omitempty"`
}
