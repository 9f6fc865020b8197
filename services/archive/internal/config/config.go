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

const (
	DriverPostgres = "postgres"
	DriverMinio    = "minio"
	DriverMemory   = "memory"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                string            `yaml:"port"`
	LogLevel            string            `yaml:"logLevel"`
	DatabaseDriver      string            `yaml:"databaseDriver"`
	DatabaseURL         string            `yaml:"databaseURL"`
	BlobDriver          string            `yaml:"blobDriver"`
	MinioEndpoint       string            `yaml:"minioEndpoint"`
	MinioAccessKey      string            `yaml:"minioAccessKey"`
	MinioSecretKey      string            `yaml:"minioSecretKey"`
	MinioBucket         string            `yaml:"minioBucket"`
	MinioUseSSL         bool              `yaml:"minioUseSSL"`
	RedisAddr           string            `yaml:"redisAddr"`
	RedisPassword       string            `yaml:"redisPassword"`
	JWTPrivateKeyPath   string            `yaml:"jwtPrivateKeyPath"`
	JWTPublicKeyPath    string            `yaml:"jwtPublicKeyPath"`
	JWTKeyID            string            `yaml:"jwtKeyId"`
	JWTVerifyPublicKeys map[string]string `yaml:"jwtVerifyPublicKeys"`
	JWTIssuer           string            `yaml:"jwtIssuer"`
	JWTAudience         string            `yaml:"jwtAudience"`
	JWTLeeway           string            `yaml:"jwtLeeway"`
	SessionTTL          string            `yaml:"sessionTTL"`
	ImageURLTTL         string            `yaml:"imageURLTTL"`
	UploadURLTTL        string            `yaml:"uploadURLTTL"`
	MaxUploadBytes      int64             `yaml:"maxUploadBytes"`
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
	if v := os.Getenv("ARCHIVE_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ARCHIVE_DATABASE_DRIVER"); v != "" {
		cfg.DatabaseDriver = v
	}
	if v := os.Getenv("ARCHIVE_BLOB_DRIVER"); v != "" {
		cfg.BlobDriver = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.MinioUseSSL = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("JWT_PRIVATE_KEY_PATH"); v != "" {
		cfg.JWTPrivateKeyPath = v
	}
	if v := os.Getenv("JWT_PUBLIC_KEY_PATH"); v != "" {
		cfg.JWTPublicKeyPath = v
	}
	if v := os.Getenv("ARCHIVE_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
}

func applyDefaults(cfg *FileConfig) {
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = DriverPostgres
	}
	cfg.BlobDriver = strings.ToLower(strings.TrimSpace(cfg.BlobDriver))
	if cfg.BlobDriver == "" {
		cfg.BlobDriver = DriverMinio
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or ARCHIVE_PORT)")
	}
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unsupported databaseDriver %q", cfg.DatabaseDriver)
	}
	switch cfg.BlobDriver {
	case DriverMinio:
		if cfg.MinioEndpoint == "" {
			return errors.New("config: minioEndpoint is required (set in config.yaml)")
		}
		if cfg.MinioAccessKey == "" {
			return errors.New("config: minioAccessKey is required (set in config.yaml)")
		}
		if cfg.MinioSecretKey == "" {
			return errors.New("config: minioSecretKey is required (set in config.yaml)")
		}
		if cfg.MinioBucket == "" {
			return errors.New("config: minioBucket is required (set in config.yaml)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unsupported blobDriver %q", cfg.BlobDriver)
	}
	for name, raw := range map[string]string{
		"jwtLeeway":    cfg.JWTLeeway,
		"sessionTTL":   cfg.SessionTTL,
		"imageURLTTL":  cfg.ImageURLTTL,
		"uploadURLTTL": cfg.UploadURLTTL,
	} {
		if _, err := ParseDuration(name, raw); err != nil {
			return err
		}
	}
	return nil
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
