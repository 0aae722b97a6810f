package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// ErrMisconfiguration is returned when the storage binding is incomplete at startup.
var ErrMisconfiguration = errors.New("storage binding misconfigured")

// Binding identifies the object store the gateway talks to.
// It is built once at process start and never mutated afterwards.
type Binding struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PathStyle bool
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are never logged.
type AppConfig struct {
	Port          string
	APIPrefix     string
	StaticDir     string
	BodyLimitMB   int
	MaxBatchFiles int
	// Driver selects the store client implementation: "minio" or "s3".
	Driver       string
	EnsureBucket bool
	Storage      Binding
	Log          LogConfig
}

var defaults = map[string]any{
	"PORT":                "3000",
	"API_PREFIX":          "/api",
	"STATIC_DIR":          "public",
	"BODY_LIMIT_MB":       100,
	"UPLOAD_MAX_FILES":    10,
	"S3_DRIVER":           "minio",
	"S3_ENSURE_BUCKET":    false,
	"S3_ENDPOINT":         "http://localhost:9000",
	"S3_REGION":           "us-east-1",
	"S3_ACCESS_KEY":       "minioadmin",
	"S3_SECRET_KEY":       "minioadmin",
	"S3_BUCKET":           "uploads",
	"S3_FORCE_PATH_STYLE": true,
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the defaults above.
func Load() *AppConfig {
	v := viper.New()
	for key, def := range defaults {
		v.SetDefault(key, def)
	}
	v.AutomaticEnv()

	return &AppConfig{
		Port:          v.GetString("PORT"),
		APIPrefix:     v.GetString("API_PREFIX"),
		StaticDir:     v.GetString("STATIC_DIR"),
		BodyLimitMB:   v.GetInt("BODY_LIMIT_MB"),
		MaxBatchFiles: v.GetInt("UPLOAD_MAX_FILES"),
		Driver:        strings.ToLower(v.GetString("S3_DRIVER")),
		EnsureBucket:  v.GetBool("S3_ENSURE_BUCKET"),
		Storage: Binding{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			Region:    v.GetString("S3_REGION"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			PathStyle: v.GetBool("S3_FORCE_PATH_STYLE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate reports every required field that is missing.
func (b Binding) Validate() error {
	var missing []string
	if b.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if b.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if b.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if b.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMisconfiguration, strings.Join(missing, ", "))
	}
	if _, err := b.EndpointURL(); err != nil {
		return err
	}
	return nil
}

// EndpointURL parses the endpoint. A bare host:port is treated as plain http.
func (b Binding) EndpointURL() (*url.URL, error) {
	raw := strings.TrimRight(b.Endpoint, "/")
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: endpoint: %v", ErrMisconfiguration, err)
	}
	if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: endpoint %q", ErrMisconfiguration, b.Endpoint)
	}
	return u, nil
}

// Secure reports whether the endpoint uses TLS.
func (b Binding) Secure() bool {
	u, err := b.EndpointURL()
	return err == nil && u.Scheme == "https"
}
