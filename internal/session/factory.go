package session

import "fmt"

// Store types accepted by New.
const (
	TypeMemory = "memory"
	TypeFile   = "file"
	TypeRedis  = "redis"
	TypeSQLite = "sqlite"
)

// Config selects and configures a session store.
type Config struct {
	Type  string      `yaml:"type"`
	Dir   string      `yaml:"dir"`
	DSN   string      `yaml:"dsn"`
	Redis RedisConfig `yaml:"redis"`
}

// New creates a Store based on the configuration.
func New(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryStore(), nil
	case TypeFile:
		return NewFileStore(cfg.Dir)
	case TypeRedis:
		return NewRedisStore(cfg.Redis)
	case TypeSQLite:
		return NewSQLiteStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", cfg.Type)
	}
}
