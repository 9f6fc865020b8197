package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                       string   `yaml:"port"`
	LogLevel                   string   `yaml:"logLevel"`
	SiteURL                    string   `yaml:"siteURL"`
	ArchiveURL                 string   `yaml:"archiveURL"`
	ArchiveSiteURL             string   `yaml:"archiveSiteURL"`
	ArchiveJWKSURL             string   `yaml:"archiveJwksURL"`
	GoogleAPIKey               string   `yaml:"googleAPIKey"`
	ImageModel                 string   `yaml:"imageModel"`
	GenerationTimeout          string   `yaml:"generationTimeout"`
	ArchiveTimeout             string   `yaml:"archiveTimeout"`
	JWTIssuer                  string   `yaml:"jwtIssuer"`
	JWTAudience                string   `yaml:"jwtAudience"`
	JWTLeeway                  string   `yaml:"jwtLeeway"`
	RedisAddr                  string   `yaml:"redisAddr"`
	RedisPassword              string   `yaml:"redisPassword"`
	TrustedProxyCIDRs          []string `yaml:"trustedProxyCidrs"`
	GenerateRateLimitPerMinute int      `yaml:"generateRateLimitPerMinute"`
	MaxUploadBytes             int64    `yaml:"maxUploadBytes"`
}

// Load reads config from path (defaults to ConfigPath).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("WEB_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		cfg.SiteURL = v
	}
	if v := os.Getenv("ARCHIVE_URL"); v != "" {
		cfg.ArchiveURL = v
	}
	if v := os.Getenv("ARCHIVE_SITE_URL"); v != "" {
		cfg.ArchiveSiteURL = v
	}
	if v := os.Getenv("ARCHIVE_JWKS_URL"); v != "" {
		cfg.ArchiveJWKSURL = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.GoogleAPIKey = v
	}
	if v := os.Getenv("GEMINI_IMAGE_MODEL"); v != "" {
		cfg.ImageModel = v
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("JWT_AUDIENCE"); v != "" {
		cfg.JWTAudience = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("WEB_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	if v := os.Getenv("WEB_GENERATE_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GenerateRateLimitPerMinute = n
		}
	}
	if v := os.Getenv("WEB_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
}

func applyDefaults(cfg *FileConfig) {
	cfg.ArchiveURL = strings.TrimRight(strings.TrimSpace(cfg.ArchiveURL), "/")
	cfg.ArchiveSiteURL = strings.TrimRight(strings.TrimSpace(cfg.ArchiveSiteURL), "/")
	if cfg.ArchiveSiteURL == "" {
		cfg.ArchiveSiteURL = cfg.ArchiveURL
	}
	if strings.TrimSpace(cfg.ArchiveJWKSURL) == "" && cfg.ArchiveURL != "" {
		cfg.ArchiveJWKSURL = cfg.ArchiveURL + "/auth/jwks"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or WEB_PORT)")
	}
	if cfg.ArchiveURL == "" {
		return errors.New("config: archiveURL is required (set in config.yaml or ARCHIVE_URL)")
	}
	if cfg.GenerateRateLimitPerMinute < 0 {
		return errors.New("config: generateRateLimitPerMinute must be >= 0")
	}
	for name, raw := range map[string]string{
		"generationTimeout": cfg.GenerationTimeout,
		"archiveTimeout":    cfg.ArchiveTimeout,
		"jwtLeeway":         cfg.JWTLeeway,
	} {
		if _, err := ParseDuration(name, raw); err != nil {
			return err
		}
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseDuration parses an optional duration field. Empty means zero.
func ParseDuration(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s duration: %w", field, err)
	}
	if dur < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", field)
	}
	return dur, nil
}
