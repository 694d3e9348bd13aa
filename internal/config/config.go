package config

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the gateway's runtime configuration.
type Config struct {
	ListenAddr    string
	UploadTimeout time.Duration
	MaxMemory     int64

	FreeImage ProviderConfig
	ImgBB     ProviderConfig
	Gofile    ProviderConfig
}

// ProviderConfig is the endpoint and credential for one upstream host.
// KeyEnv and URLEnv name the variables the values came from so that
// configuration errors can point at them.
type ProviderConfig struct {
	URL      string
	Key      string
	FolderID string

	URLEnv      string
	KeyEnv      string
	KeyRequired bool
}

// Missing returns the names of required variables that are unset.
func (p ProviderConfig) Missing() []string {
	var missing []string
	if p.URL == "" {
		missing = append(missing, p.URLEnv)
	}
	if p.KeyRequired && p.Key == "" {
		missing = append(missing, p.KeyEnv)
	}
	return missing
}

// LogValue reports the provider settings without exposing the credential.
func (p ProviderConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", RedactURL(p.URL)),
		slog.Bool("key_set", p.Key != ""),
		slog.String("key_fingerprint", Fingerprint(p.Key)),
	)
}

// RedactURL strips the userinfo, query and fragment from raw. Hosts such
// as imgbb accept the API key as a query parameter.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.User = nil
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, reading from environment")
	}

	return &Config{
		ListenAddr:    getEnv("MIH_LISTEN_ADDR", ":8080"),
		UploadTimeout: getEnvDuration("MIH_UPLOAD_TIMEOUT", 0),
		MaxMemory:     int64(getEnvInt("MIH_MAX_MEMORY", 32<<20)),

		FreeImage: ProviderConfig{
			URL:         getEnv("FREEIMAGE_API_URL", ""),
			Key:         getEnv("FREEIMAGE_API_KEY", ""),
			URLEnv:      "FREEIMAGE_API_URL",
			KeyEnv:      "FREEIMAGE_API_KEY",
			KeyRequired: true,
		},
		ImgBB: ProviderConfig{
			URL:         getEnv("IMGBB_API_URL", ""),
			Key:         getEnv("IMGBB_API_KEY", ""),
			URLEnv:      "IMGBB_API_URL",
			KeyEnv:      "IMGBB_API_KEY",
			KeyRequired: true,
		},
		Gofile: ProviderConfig{
			URL:      getEnv("GOFILE_UPLOAD_URL", ""),
			Key:      getEnv("GOFILE_API_TOKEN", ""),
			FolderID: getEnv("GOFILE_FOLDER_ID", ""),
			URLEnv:   "GOFILE_UPLOAD_URL",
			KeyEnv:   "GOFILE_API_TOKEN",
		},
	}
}

// Fingerprint returns a short, non-reversible tag for a secret so logs can
// tell credentials apart without revealing them.
func Fingerprint(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	sum := sha256.Sum256([]byte(secret))
	return "sha256:" + hex.EncodeToString(sum[:4])
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	var result int
	for _, c := range v {
		if c < '0' || c > '9' {
			return defaultValue
		}
		result = result*10 + int(c-'0')
	}
	return result
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("ignoring invalid duration", "key", key, "value", v)
		return defaultValue
	}
	return d
}
