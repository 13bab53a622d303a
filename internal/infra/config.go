package infra

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"assetproxy/internal/assettype"
	"assetproxy/internal/domain"
)

const (
	FetchModeSingle  = "single"
	FetchModeMirrors = "mirrors"

	VerifyModeHead = "head"
	VerifyModeBody = "body"

	DeliveryModeRedirect = "redirect"
	DeliveryModePersist  = "persist"

	BlobBackendFS = "fs"
	BlobBackendS3 = "s3"
)

// DefaultFetchEndpoints are the CDN-style endpoints tried in mirrors mode.
var DefaultFetchEndpoints = []string{
	"https://assetdelivery.roblox.com/v1/asset",
	"https://www.roblox.com/asset/",
	"https://assetgame.roblox.com/asset/",
}

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	PublicBaseURL    string
	DatabaseURL      string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string

	CatalogBaseURL    string
	DeliveryBaseURL   string
	FetchEndpoints    []string
	FetchMode         string
	VerifyMode        string
	DeliveryMode      string
	AllowedTypes      []domain.AssetType
	FilenameTimestamp bool
	UpstreamTimeout   time.Duration
	MaxRedirects      int
	CookieName        string
	MaxPayloadBytes   int64
	BatchMax          int
	XMLEnrichment     bool

	BlobBackend string
	StoragePath string
	S3          S3Config
}

// S3Config holds the settings for the S3-compatible blob backend.
type S3Config struct {
	Bucket      string
	Region      string
	EndpointURL string
	AccessKey   string
	SecretKey   string
	Prefix      string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "3000")
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              port,
		PublicBaseURL:     strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		CORSOrigins:       getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CatalogBaseURL:    strings.TrimRight(getEnv("CATALOG_BASE_URL", "https://catalog.roblox.com"), "/"),
		DeliveryBaseURL:   strings.TrimRight(getEnv("ASSET_DELIVERY_BASE_URL", "https://assetdelivery.roblox.com"), "/"),
		FetchEndpoints:    getEnvList("FETCH_ENDPOINTS", DefaultFetchEndpoints),
		FetchMode:         strings.ToLower(getEnv("FETCH_MODE", FetchModeSingle)),
		VerifyMode:        strings.ToLower(getEnv("VERIFY_MODE", VerifyModeHead)),
		DeliveryMode:      strings.ToLower(getEnv("DELIVERY_MODE", DeliveryModeRedirect)),
		FilenameTimestamp: getEnvBool("FILENAME_TIMESTAMP", false),
		UpstreamTimeout:   time.Second * time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 10)),
		MaxRedirects:      getEnvInt("UPSTREAM_MAX_REDIRECTS", 5),
		CookieName:        getEnv("UPSTREAM_COOKIE_NAME", ".ROBLOSECURITY"),
		MaxPayloadBytes:   int64(getEnvInt("MAX_PAYLOAD_BYTES", 50<<20)),
		BatchMax:          getEnvInt("BATCH_MAX", 10),
		XMLEnrichment:     getEnvBool("XML_ENRICHMENT", true),
		BlobBackend:       strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendFS)),
		StoragePath:       getEnv("STORAGE_PATH", "./downloads"),
		S3: S3Config{
			Bucket:      os.Getenv("S3_BUCKET"),
			Region:      getEnv("S3_REGION", "us-east-1"),
			EndpointURL: os.Getenv("S3_ENDPOINT_URL"),
			AccessKey:   os.Getenv("S3_ACCESS_KEY"),
			SecretKey:   os.Getenv("S3_SECRET_KEY"),
			Prefix:      strings.Trim(os.Getenv("S3_PREFIX"), "/"),
		},
	}
	allowed, err := ParseAssetTypes(getEnvList("ALLOWED_ASSET_TYPES", nil))
	if err != nil {
		return nil, err
	}
	cfg.AllowedTypes = allowed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks mode switches and their combinations.
func (c *Config) Validate() error {
	switch c.FetchMode {
	case FetchModeSingle, FetchModeMirrors:
	default:
		return fmt.Errorf("FETCH_MODE must be %q or %q", FetchModeSingle, FetchModeMirrors)
	}
	switch c.VerifyMode {
	case VerifyModeHead, VerifyModeBody:
	default:
		return fmt.Errorf("VERIFY_MODE must be %q or %q", VerifyModeHead, VerifyModeBody)
	}
	switch c.DeliveryMode {
	case DeliveryModeRedirect, DeliveryModePersist:
	default:
		return fmt.Errorf("DELIVERY_MODE must be %q or %q", DeliveryModeRedirect, DeliveryModePersist)
	}
	if c.DeliveryMode == DeliveryModePersist && c.VerifyMode != VerifyModeBody {
		return fmt.Errorf("DELIVERY_MODE=persist requires VERIFY_MODE=body")
	}
	if len(c.FetchEndpoints) == 0 {
		return fmt.Errorf("FETCH_ENDPOINTS must list at least one endpoint")
	}
	if len(c.FetchEndpoints) > 3 {
		return fmt.Errorf("FETCH_ENDPOINTS accepts at most 3 endpoints, got %d", len(c.FetchEndpoints))
	}
	for _, e := range c.FetchEndpoints {
		u, err := url.Parse(e)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("FETCH_ENDPOINTS entry %q is not an http(s) url", e)
		}
	}
	if c.BatchMax <= 0 {
		return fmt.Errorf("BATCH_MAX must be positive")
	}
	switch c.BlobBackend {
	case BlobBackendFS:
	case BlobBackendS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when BLOB_BACKEND=s3")
		}
	default:
		return fmt.Errorf("BLOB_BACKEND must be %q or %q", BlobBackendFS, BlobBackendS3)
	}
	return nil
}

// ParseAssetTypes maps type names such as "audio" or "GamePass" onto tags.
// Names that match no known type are rejected.
func ParseAssetTypes(names []string) ([]domain.AssetType, error) {
	var out []domain.AssetType
	for _, name := range names {
		t := assettype.FromName(name)
		if t == domain.AssetTypeUnknown && !strings.EqualFold(strings.TrimSpace(name), "unknown") {
			return nil, fmt.Errorf("ALLOWED_ASSET_TYPES: unknown asset type %q", name)
		}
		out = append(out, t)
	}
	return out, nil
}

// ActiveEndpoints returns the endpoints the fetcher should try, in order.
func (c *Config) ActiveEndpoints() []string {
	if c.FetchMode == FetchModeSingle && len(c.FetchEndpoints) > 1 {
		return c.FetchEndpoints[:1]
	}
	return c.FetchEndpoints
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
