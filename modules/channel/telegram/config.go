package telegram

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/flemzord/ghinline/internal/security"
)

// tokenPattern matches the Telegram bot token format: <digits>:<alphanum+dash>.
var tokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Delivery modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// DefaultCacheTime matches the GitHub response cache lifetime.
const DefaultCacheTime = 300

// Config holds the Telegram channel configuration.
type Config struct {
	Token          string                   `yaml:"token"`
	Mode           string                   `yaml:"mode"`
	PollingTimeout int                      `yaml:"polling_timeout"`
	WebhookURL     string                   `yaml:"webhook_url"`
	WebhookSecret  string                   `yaml:"webhook_secret"`
	AllowedUpdates []string                 `yaml:"allowed_updates"`
	AllowUsers     []string                 `yaml:"allow_users"`
	AllowGroups    []string                 `yaml:"allow_groups"`
	APIURL         string                   `yaml:"api_url"`
	CacheTime      int                      `yaml:"cache_time"`
	IsPersonal     bool                     `yaml:"is_personal"`
	RateLimit      security.RateLimitConfig `yaml:"rate_limit"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.Mode == "" {
		c.Mode = ModePolling
	}
	if c.PollingTimeout == 0 {
		c.PollingTimeout = 30
	}
	if c.AllowedUpdates == nil {
		c.AllowedUpdates = []string{"message", "inline_query"}
	}
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
	if c.CacheTime == 0 {
		c.CacheTime = DefaultCacheTime
	}
}

// validate checks configuration field constraints beyond basic presence checks.
// It is called from Telegram.Validate after defaults have been applied.
func (c *Config) validate() error {
	if c.Token != "" && !tokenPattern.MatchString(c.Token) {
		return fmt.Errorf("telegram: token format invalid (expected <bot_id>:<hash>)")
	}

	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
		}
	}

	if c.PollingTimeout < 0 || c.PollingTimeout > 50 {
		return fmt.Errorf("telegram: polling_timeout must be 0-50, got %d", c.PollingTimeout)
	}

	if c.CacheTime < 0 || c.CacheTime > 86400 {
		return fmt.Errorf("telegram: cache_time must be 0-86400, got %d", c.CacheTime)
	}

	if c.RateLimit.QueriesPerMin < 0 {
		return fmt.Errorf("telegram: rate_limit.queries_per_min must not be negative, got %d", c.RateLimit.QueriesPerMin)
	}

	return nil
}
