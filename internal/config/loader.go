package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name looked up in the search path.
const FileName = "ghinline.yaml"

// DefaultDocument is used when no configuration file exists. It reads the
// bot token and the optional GitHub token from the environment.
const DefaultDocument = `version: "1"
log_level: ${LOG_LEVEL:-info}
github:
  token: ${GITHUB_TOKEN:-}
modules:
  channel.telegram:
    token: ${BOT_TOKEN}
  gateway.http:
    bind: ${BIND:-:3000}
`

// envPattern matches ${VAR} and ${VAR:-default} expressions.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-((?:[^}\\]|\\.)*))?\}`)

// ErrNotFound is returned by Find when no configuration file exists.
var ErrNotFound = errors.New("config: no configuration file found")

// Load reads a YAML configuration file, expands environment variables,
// parses it into a Config struct and applies defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(raw, path)
}

// LoadDefault parses DefaultDocument.
func LoadDefault() (*Config, error) {
	return Parse([]byte(DefaultDocument), "built-in defaults")
}

// Parse expands environment variables in raw and decodes it. source names
// the document in error messages.
func Parse(raw []byte, source string) (*Config, error) {
	expanded, err := expandEnv(raw)
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", source, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", source, err)
	}

	SetDefaults(&cfg)
	return &cfg, nil
}

// SearchPaths returns the candidate configuration files in priority order.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "ghinline", FileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ghinline", FileName))
	}
	return append(paths, FileName)
}

// Find returns explicit when set, otherwise the first existing file from
// SearchPaths. It returns ErrNotFound when nothing exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", ErrNotFound
}

// LoadOrDefault loads the file Find selects, falling back to
// DefaultDocument. The returned source names what was loaded.
func LoadOrDefault(explicit string) (cfg *Config, source string, err error) {
	path, err := Find(explicit)
	if errors.Is(err, ErrNotFound) {
		cfg, err = LoadDefault()
		return cfg, "built-in defaults", err
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err = Load(path)
	return cfg, path, err
}

// expandEnv replaces ${VAR} and ${VAR:-default} patterns in raw YAML bytes.
// Returns an error listing all unresolved variables (no default, no env value).
func expandEnv(raw []byte) ([]byte, error) {
	var errs []error

	result := envPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		subs := envPattern.FindSubmatch(match)
		name := string(subs[1])
		hasDefault := len(subs) > 2 && subs[2] != nil

		if value, ok := os.LookupEnv(name); ok {
			return []byte(value)
		}
		if hasDefault {
			return subs[2]
		}

		errs = append(errs, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return result, errors.Join(errs...)
}
