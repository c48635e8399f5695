package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSoilCacheTTL       = 60 * time.Minute
	DefaultFacilitiesCacheTTL = 15 * time.Minute
)

type Config struct {
	Server     Server     `yaml:"server"`
	Cache      Cache      `yaml:"cache"`
	Soil       Soil       `yaml:"soil"`
	Facilities Facilities `yaml:"facilities"`
}

type Server struct {
	Address            string `yaml:"address"              env:"SERVER_ADDR"              env-default:":8080"`
	ReadTimeoutSec     int    `yaml:"read_timeout_sec"     env:"SERVER_READ_TIMEOUT"      env-default:"15"`
	WriteTimeoutSec    int    `yaml:"write_timeout_sec"    env:"SERVER_WRITE_TIMEOUT"     env-default:"30"`
	IdleTimeoutSec     int    `yaml:"idle_timeout_sec"     env:"SERVER_IDLE_TIMEOUT"      env-default:"60"`
	ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec" env:"SERVER_SHUTDOWN_TIMEOUT"  env-default:"15"`
}

type Cache struct {
	Driver     string `yaml:"driver"      env:"CACHE_DRIVER"      env-default:"memory"`
	Host       string `yaml:"host"        env:"CACHE_HOST"        env-default:"localhost"`
	Port       int    `yaml:"port"        env:"CACHE_PORT"        env-default:"6379"`
	Db         int    `yaml:"db"          env:"CACHE_DB"          env-default:"0"`
	Pass       string `yaml:"password"    env:"CACHE_PASSWORD"    env-default:""`
	Prefix     string `yaml:"prefix"      env:"CACHE_PREFIX"      env-default:"agrigeo"`
	MaxEntries int    `yaml:"max_entries" env:"CACHE_MAX_ENTRIES" env-default:"10000"`
}

type Soil struct {
	URL        string `yaml:"url"          env:"SOIL_API_URL"      env-default:"https://rest.isric.org/soilgrids/v2.0/properties/query"`
	Timeout    string `yaml:"timeout"      env:"SOIL_API_TIMEOUT"  env-default:"10s"`
	CacheTTLMs int64  `yaml:"cache_ttl_ms" env:"SOIL_CACHE_TTL_MS" env-default:"3600000"`
	Depth      string `yaml:"depth"        env:"SOIL_DEPTH"        env-default:"0-5cm"`
}

type Facilities struct {
	URL             string  `yaml:"url"               env:"FACILITIES_API_URL"           env-default:"https://overpass-api.de/api/interpreter"`
	Timeout         string  `yaml:"timeout"           env:"FACILITIES_API_TIMEOUT"       env-default:"25s"`
	CacheTTLMs      int64   `yaml:"cache_ttl_ms"      env:"FACILITIES_CACHE_TTL_MS"      env-default:"900000"`
	DefaultRadiusKm string  `yaml:"default_radius_km" env:"FACILITIES_DEFAULT_RADIUS_KM" env-default:"3"`
	MaxRadiusKm     float64 `yaml:"max_radius_km"     env:"FACILITIES_MAX_RADIUS_KM"     env-default:"50"`
	Limit           int     `yaml:"limit"             env:"FACILITIES_LIMIT"             env-default:"50"`
}

// CacheTTL returns the soil cache time-to-live, falling back to the default for non-positive values.
func (s Soil) CacheTTL() time.Duration {
	return msToTTL(s.CacheTTLMs, DefaultSoilCacheTTL)
}

func (s Soil) RequestTimeout() time.Duration {
	return parseTimeout(s.Timeout, 10*time.Second)
}

// CacheTTL returns the facilities cache time-to-live, falling back to the default for non-positive values.
func (f Facilities) CacheTTL() time.Duration {
	return msToTTL(f.CacheTTLMs, DefaultFacilitiesCacheTTL)
}

func (f Facilities) RequestTimeout() time.Duration {
	return parseTimeout(f.Timeout, 25*time.Second)
}

// Load reads configuration from a YAML file (or inline YAML content) and applies env overrides.
// A path that does not exist is not an error: env and defaults are used instead.
func Load(pathOrContent string) (*Config, error) {
	var cfg Config

	switch {
	case pathOrContent == "":
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	case isFile(pathOrContent):
		if err := cleanenv.ReadConfig(pathOrContent, &cfg); err != nil {
			return nil, fmt.Errorf("read config %q: %w", pathOrContent, err)
		}
		return &cfg, nil
	case looksLikeYAML(pathOrContent):
		// ReadEnv overrides from env and fills zero fields with defaults
		if err := yaml.Unmarshal([]byte(pathOrContent), &cfg); err != nil {
			return nil, fmt.Errorf("parse config content: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	}
}

// Pretty returns the YAML form of the config for startup logging.
func (c *Config) Pretty() (string, error) {
	b, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(b), nil
}

// Redacted returns a copy safe to log or expose on debug routes.
func (c *Config) Redacted() Config {
	out := *c
	if out.Cache.Pass != "" {
		out.Cache.Pass = "***"
	}
	return out
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func looksLikeYAML(s string) bool {
	return strings.Contains(s, "\n") ||
		strings.Contains(s, "server:") ||
		strings.Contains(s, "cache:") ||
		strings.Contains(s, "soil:") ||
		strings.Contains(s, "facilities:")
}

func msToTTL(ms int64, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func parseTimeout(val string, def time.Duration) time.Duration {
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil && d > 0 {
		return d
	}
	return def
}
