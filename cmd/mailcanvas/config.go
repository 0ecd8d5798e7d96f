package main

import "time"

// Template store drivers.
const (
	storeMemory   = "memory"
	storeFile     = "file"
	storeRedis    = "redis"
	storeMongo    = "mongo"
	storePostgres = "postgres"
)

// Broadcast drivers.
const (
	broadcastMemory = "memory"
	broadcastRedis  = "redis"
)

const storageS3 = "s3"

type appConfig struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Name string `env:"APP_NAME" envDefault:"mailcanvas"`

	TemplateStore    string `env:"TEMPLATE_STORE" envDefault:"file"`
	TemplateStoreDir string `env:"TEMPLATE_STORE_DIR" envDefault:"kv"`
	Broadcast        string `env:"BROADCAST_DRIVER" envDefault:"memory"`

	CatalogFile       string        `env:"CATALOG_FILE"`
	CatalogWatch      bool          `env:"CATALOG_WATCH" envDefault:"true"`
	TemplateCacheSize int           `env:"TEMPLATE_CACHE_SIZE" envDefault:"64"`
	TemplateCacheTTL  time.Duration `env:"TEMPLATE_CACHE_TTL" envDefault:"10m"`
	TemplateFetchTTL  time.Duration `env:"TEMPLATE_FETCH_TIMEOUT" envDefault:"10s"`

	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT" envDefault:"2s"`
}
