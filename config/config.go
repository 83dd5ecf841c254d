package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	defaultBcryptCost          = 10
	defaultAccessTTLMinutes    = 2880
	defaultRefreshTTLDays      = 30
	defaultActivationTTL       = 24 * time.Hour
	defaultResetTTL            = 24 * time.Hour
	defaultHeaderScheme        = "JWT"
	defaultPhoneRegion         = "IN"
	defaultStackLimit          = 6
	defaultRateLimit           = "20-M"
	defaultActivityStore       = "postgres"
	defaultBreakerMaxFailures  = 5
	defaultBreakerOpenInterval = 30 * time.Second
	defaultNotifierTimeout     = 10 * time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	App struct {
		// URL is the public base URL used in activation and reset links.
		URL  string `json:"url" yaml:"url"`
		Name string `json:"name" yaml:"name"`
	} `json:"app" yaml:"app"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		// TrustProxy takes the client IP from X-Forwarded-For.
		TrustProxy bool `json:"trustProxy" yaml:"trustProxy"`
		Timeouts   struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Migration struct {
		Auto bool `json:"auto" yaml:"auto"`
	} `json:"migration" yaml:"migration"`

	SecretKey struct {
		// Access signs access JWTs.
		Access string `json:"access" yaml:"access"`
		// Refresh keys the HMAC used to store refresh sessions.
		Refresh string `json:"refresh" yaml:"refresh"`
	} `json:"secretKey" yaml:"secretKey"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	OAuth *OAuthConfig `json:"oauth" yaml:"oauth"`

	Mail *MailConfig `json:"mail" yaml:"mail"`

	SMS *SMSConfig `json:"sms" yaml:"sms"`

	CircuitBreaker *CircuitBreakerConfig `json:"circuitBreaker" yaml:"circuitBreaker"`

	Activity *ActivityConfig `json:"activity" yaml:"activity"`

	Mongo *MongoConfig `json:"mongo" yaml:"mongo"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	// PubSub configuration for forwarding activity events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	Error struct {
		// StackLimit caps the number of stack lines rendered in development.
		StackLimit int `json:"stackLimit" yaml:"stackLimit"`
	} `json:"error" yaml:"error"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	BcryptCost            int           `json:"bcryptCost" yaml:"bcryptCost"`
	AccessTokenTTLMinutes int           `json:"accessTokenTTLMinutes" yaml:"accessTokenTTLMinutes"`
	RefreshTokenTTLDays   int           `json:"refreshTokenTTLDays" yaml:"refreshTokenTTLDays"`
	ActivationTTL         time.Duration `json:"activationTTL" yaml:"activationTTL"`
	ResetTTL              time.Duration `json:"resetTTL" yaml:"resetTTL"`
	HeaderScheme          string        `json:"headerScheme" yaml:"headerScheme"`
	// PhoneRegion is the default region for numbers supplied without a country code.
	PhoneRegion string `json:"phoneRegion" yaml:"phoneRegion"`
}

// OAuthProviderConfig holds the client credentials of one social provider.
type OAuthProviderConfig struct {
	ClientID     string   `json:"clientId" yaml:"clientId"`
	ClientSecret string   `json:"clientSecret" yaml:"clientSecret"`
	RedirectURL  string   `json:"redirectUrl" yaml:"redirectUrl"`
	Scopes       []string `json:"scopes" yaml:"scopes"`
}

// Enabled reports whether the provider has credentials configured.
func (c *OAuthProviderConfig) Enabled() bool {
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

type OAuthConfig struct {
	Google   *OAuthProviderConfig `json:"google" yaml:"google"`
	Facebook *OAuthProviderConfig `json:"facebook" yaml:"facebook"`
	Twitter  *OAuthProviderConfig `json:"twitter" yaml:"twitter"`
	LinkedIn *OAuthProviderConfig `json:"linkedin" yaml:"linkedin"`
	// StateTTL bounds how long a consent round trip may take.
	StateTTL time.Duration `json:"stateTTL" yaml:"stateTTL"`
}

// MailConfig selects and configures the outbound mail provider.
type MailConfig struct {
	// Provider type: "smtp", "brevo" or "log"
	Provider string        `json:"provider" yaml:"provider"`
	From     string        `json:"from" yaml:"from"`
	FromName string        `json:"fromName" yaml:"fromName"`
	Host     string        `json:"host" yaml:"host"`
	Port     int           `json:"port" yaml:"port"`
	User     string        `json:"user" yaml:"user"`
	Password string        `json:"password" yaml:"password"`
	APIKey   string        `json:"apiKey" yaml:"apiKey"`
	APIURL   string        `json:"apiUrl" yaml:"apiUrl"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SMSConfig selects and configures the outbound SMS provider.
type SMSConfig struct {
	// Provider type: "twilio" or "log"
	Provider   string        `json:"provider" yaml:"provider"`
	AccountSID string        `json:"accountSid" yaml:"accountSid"`
	AuthToken  string        `json:"authToken" yaml:"authToken"`
	From       string        `json:"from" yaml:"from"`
	APIURL     string        `json:"apiUrl" yaml:"apiUrl"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}

type CircuitBreakerConfig struct {
	MaxFailures  uint32        `json:"maxFailures" yaml:"maxFailures"`
	OpenInterval time.Duration `json:"openInterval" yaml:"openInterval"`
}

// ActivityConfig selects where activity records are stored.
type ActivityConfig struct {
	// Store type: "postgres" or "mongo"
	Store string `json:"store" yaml:"store"`
}

type MongoConfig struct {
	URI      string `json:"uri" yaml:"uri"`
	Database string `json:"database" yaml:"database"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// Enabled reports whether a redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c != nil && c.Addr != ""
}

type RateLimitConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Rate in limiter format, e.g. "20-M"
	Rate string `json:"rate" yaml:"rate"`
	// Store type: "memory" or "redis"
	Store string `json:"store" yaml:"store"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
	// File enables a rotating log file next to stdout when set.
	File         string        `json:"file" yaml:"file"`
	MaxAge       time.Duration `json:"maxAge" yaml:"maxAge"`
	RotationTime time.Duration `json:"rotationTime" yaml:"rotationTime"`
}

// PubSubConfig defines where activity events are forwarded
type PubSubConfig struct {
	// Provider type: "noop", "local", "google", "kafka" or "gocloud"
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Topic name (google and kafka providers)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// Kafka broker addresses (for kafka provider)
	Brokers []string `json:"brokers" yaml:"brokers"`

	// Portable topic URL such as mem://activities (for gocloud provider)
	TopicURL string `json:"topicUrl" yaml:"topicUrl"`
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env.Env, "development") || strings.EqualFold(c.Env.Env, "dev")
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
	if cfg.Error.StackLimit <= 0 {
		cfg.Error.StackLimit = defaultStackLimit
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if cfg.Auth.AccessTokenTTLMinutes <= 0 {
		cfg.Auth.AccessTokenTTLMinutes = defaultAccessTTLMinutes
	}
	if cfg.Auth.RefreshTokenTTLDays <= 0 {
		cfg.Auth.RefreshTokenTTLDays = defaultRefreshTTLDays
	}
	if cfg.Auth.ActivationTTL <= 0 {
		cfg.Auth.ActivationTTL = defaultActivationTTL
	}
	if cfg.Auth.ResetTTL <= 0 {
		cfg.Auth.ResetTTL = defaultResetTTL
	}
	if strings.TrimSpace(cfg.Auth.HeaderScheme) == "" {
		cfg.Auth.HeaderScheme = defaultHeaderScheme
	}
	if cfg.Auth.PhoneRegion == "" {
		cfg.Auth.PhoneRegion = defaultPhoneRegion
	}

	if cfg.OAuth == nil {
		cfg.OAuth = &OAuthConfig{}
	}
	if cfg.OAuth.StateTTL <= 0 {
		cfg.OAuth.StateTTL = 10 * time.Minute
	}

	if cfg.Mail == nil {
		cfg.Mail = &MailConfig{Provider: "log"}
	}
	if cfg.Mail.Timeout <= 0 {
		cfg.Mail.Timeout = defaultNotifierTimeout
	}
	if cfg.SMS == nil {
		cfg.SMS = &SMSConfig{Provider: "log"}
	}
	if cfg.SMS.Timeout <= 0 {
		cfg.SMS.Timeout = defaultNotifierTimeout
	}

	if cfg.CircuitBreaker == nil {
		cfg.CircuitBreaker = &CircuitBreakerConfig{}
	}
	if cfg.CircuitBreaker.MaxFailures == 0 {
		cfg.CircuitBreaker.MaxFailures = defaultBreakerMaxFailures
	}
	if cfg.CircuitBreaker.OpenInterval <= 0 {
		cfg.CircuitBreaker.OpenInterval = defaultBreakerOpenInterval
	}

	if cfg.Activity == nil {
		cfg.Activity = &ActivityConfig{}
	}
	if cfg.Activity.Store == "" {
		cfg.Activity.Store = defaultActivityStore
	}

	if cfg.RateLimit == nil {
		cfg.RateLimit = &RateLimitConfig{}
	}
	if cfg.RateLimit.Rate == "" {
		cfg.RateLimit.Rate = defaultRateLimit
	}

	if cfg.PubSub == nil {
		cfg.PubSub = &PubSubConfig{Provider: "noop"}
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
// Example: POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, POSTGRES_REPLICAS_0_USERNAME, POSTGRES_REPLICAS_0_PASSWORD
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			// No more replicas or incomplete configuration.
			break
		}

		replica := postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		}

		replicas = append(replicas, replica)
	}

	return replicas
}
