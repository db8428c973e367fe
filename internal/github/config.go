package github

import (
	"errors"
	"fmt"
	"time"

	"github.com/flemzord/ghinline/internal/cache"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultAPIURL    = "https://api.github.com"
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Telegram-GitHub-Bot"
	DefaultPageSize  = 10
)

// Config holds GitHub API settings.
type Config struct {
	// Token is optional. Without it requests are unauthenticated and GitHub
	// applies a lower rate limit.
	Token     string        `yaml:"token"`
	APIURL    string        `yaml:"api_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Cache     CacheConfig   `yaml:"cache"`
}

// CacheConfig selects the lookup cache backing store.
type CacheConfig struct {
	Backend string            `yaml:"backend"` // "memory" (default), "redis" or "none"
	TTL     time.Duration     `yaml:"ttl"`
	Redis   cache.RedisConfig `yaml:"redis"`
}

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.DefaultTTL
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = cache.DefaultRedisPrefix
	}
}

// Validate checks the settings after defaults are applied.
func (c *Config) Validate() error {
	var errs []error
	switch c.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			errs = append(errs, errors.New("github.cache.redis.addr is required when backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("github.cache.backend %q: must be %q, %q or %q", c.Cache.Backend, CacheMemory, CacheRedis, CacheNone))
	}
	return errors.Join(errs...)
}
