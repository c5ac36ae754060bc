package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig
	Polling   PollingConfig
	Session   SessionConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Zitadel   ZitadelConfig
	R2        R2Config
	RateLimit RateLimitConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string
}

// BackendConfig describes the content-repurposing backend every service
// wrapper talks to.
type BackendConfig struct {
	BaseURL        string
	ExtractPath    string
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	Strict         bool
}

// PollingConfig holds the status polling interval of each flow.
type PollingConfig struct {
	ContentKit    time.Duration
	Transcription time.Duration
	PDF           time.Duration
	SocialImport  time.Duration
}

type SessionConfig struct {
	Store string // memory, file or redis
	Path  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// ZitadelConfig locates the OIDC provider. Tokens must name ClientID in
// their audience when it is set.
type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

// IssuerURL returns Issuer, or the https origin of Domain when no issuer
// is configured. Empty means OIDC tokens are not accepted.
func (c ZitadelConfig) IssuerURL() string {
	if c.Issuer != "" {
		return strings.TrimRight(c.Issuer, "/")
	}
	if c.Domain == "" {
		return ""
	}
	domain := strings.TrimRight(c.Domain, "/")
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	URLExpiry       time.Duration
}

type RateLimitConfig struct {
	GeneratePerHour int
	UploadPerHour   int
	ImportPerHour   int
}

// GatewayConfig tunes the local studio gateway (kitd).
type GatewayConfig struct {
	AllowOrigins string
	BodyLimitMB  int
	// JobTimeout bounds a poller nobody subscribes to.
	JobTimeout time.Duration
	// TrustForwardedIdentity takes the user from X-User-* headers set by a
	// reverse proxy instead of verifying the token again.
	TrustForwardedIdentity bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.log_format", "LOG_FORMAT")
	_ = viper.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	_ = viper.BindEnv("backend.extract_path", "BACKEND_EXTRACT_PATH")
	_ = viper.BindEnv("backend.request_timeout", "BACKEND_REQUEST_TIMEOUT")
	_ = viper.BindEnv("backend.upload_timeout", "BACKEND_UPLOAD_TIMEOUT")
	_ = viper.BindEnv("backend.strict", "BACKEND_STRICT")
	_ = viper.BindEnv("polling.content_kit", "POLL_CONTENT_KIT")
	_ = viper.BindEnv("polling.transcription", "POLL_TRANSCRIPTION")
	_ = viper.BindEnv("polling.pdf", "POLL_PDF")
	_ = viper.BindEnv("polling.social_import", "POLL_SOCIAL_IMPORT")
	_ = viper.BindEnv("session.store", "SESSION_STORE")
	_ = viper.BindEnv("session.path", "SESSION_PATH")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = viper.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = viper.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.url_expiry", "R2_URL_EXPIRY")
	_ = viper.BindEnv("gateway.allow_origins", "GATEWAY_ALLOW_ORIGINS")
	_ = viper.BindEnv("gateway.body_limit_mb", "GATEWAY_BODY_LIMIT_MB")
	_ = viper.BindEnv("gateway.job_timeout", "GATEWAY_JOB_TIMEOUT")
	_ = viper.BindEnv("gateway.trust_forwarded_identity", "GATEWAY_TRUST_FORWARDED_IDENTITY")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.log_format", "console")
	viper.SetDefault("backend.base_url", "")
	viper.SetDefault("backend.extract_path", "/content/extract")
	viper.SetDefault("backend.request_timeout", 60*time.Second)
	viper.SetDefault("backend.upload_timeout", 10*time.Minute)
	viper.SetDefault("backend.strict", false)
	viper.SetDefault("session.store", "file")
	viper.SetDefault("session.path", defaultSessionPath())
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("r2.url_expiry", time.Hour)
	viper.SetDefault("ratelimit.generate_per_hour", 20)
	viper.SetDefault("ratelimit.upload_per_hour", 50)
	viper.SetDefault("ratelimit.import_per_hour", 10)
	viper.SetDefault("gateway.allow_origins", "*")
	viper.SetDefault("gateway.body_limit_mb", 600)
	viper.SetDefault("gateway.job_timeout", 30*time.Minute)

	// Polling defaults
	viper.SetDefault("polling.content_kit", time.Second)
	viper.SetDefault("polling.transcription", 5*time.Second)
	viper.SetDefault("polling.pdf", 5*time.Second)
	viper.SetDefault("polling.social_import", 3*time.Second)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			LogFormat: viper.GetString("server.log_format"),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(viper.GetString("backend.base_url"), "/"),
			ExtractPath:    viper.GetString("backend.extract_path"),
			RequestTimeout: viper.GetDuration("backend.request_timeout"),
			UploadTimeout:  viper.GetDuration("backend.upload_timeout"),
			Strict:         viper.GetBool("backend.strict"),
		},
		Polling: PollingConfig{
			ContentKit:    viper.GetDuration("polling.content_kit"),
			Transcription: viper.GetDuration("polling.transcription"),
			PDF:           viper.GetDuration("polling.pdf"),
			SocialImport:  viper.GetDuration("polling.social_import"),
		},
		Session: SessionConfig{
			Store: viper.GetString("session.store"),
			Path:  viper.GetString("session.path"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("jwt.secret"),
		},
		Zitadel: ZitadelConfig{
			Domain:   viper.GetString("zitadel.domain"),
			ClientID: viper.GetString("zitadel.client_id"),
			Issuer:   viper.GetString("zitadel.issuer"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			URLExpiry:       viper.GetDuration("r2.url_expiry"),
		},
		RateLimit: RateLimitConfig{
			GeneratePerHour: viper.GetInt("ratelimit.generate_per_hour"),
			UploadPerHour:   viper.GetInt("ratelimit.upload_per_hour"),
			ImportPerHour:   viper.GetInt("ratelimit.import_per_hour"),
		},
		Gateway: GatewayConfig{
			AllowOrigins: viper.GetString("gateway.allow_origins"),
			BodyLimitMB:  viper.GetInt("gateway.body_limit_mb"),
			JobTimeout:   viper.GetDuration("gateway.job_timeout"),

			TrustForwardedIdentity: viper.GetBool("gateway.trust_forwarded_identity"),
		},
	}

	return cfg, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".contentkit-session.json"
	}
	return filepath.Join(dir, "contentkit", "session.json")
}
