package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "cartforge"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "CARTFORGE_APP_ENV"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cart      CartConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CARTFORGE_APP_ENV" required:"true"`
	Port         string `envconfig:"CARTFORGE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CARTFORGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CARTFORGE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CARTFORGE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"CARTFORGE_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"CARTFORGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CARTFORGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CARTFORGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CARTFORGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CARTFORGE_REDIS_URL"`
	Address      string        `envconfig:"CARTFORGE_REDIS_ADDR"`
	Password     string        `envconfig:"CARTFORGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CARTFORGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CARTFORGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CARTFORGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CARTFORGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CARTFORGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CARTFORGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CARTFORGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CARTFORGE_JWT_ISSUER" default:"cartforge"`
	ExpirationMinutes int    `envconfig:"CARTFORGE_JWT_EXPIRATION_MINUTES" default:"60"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CARTFORGE_CORS_ALLOWED_ORIGINS"`
}

type RateLimitConfig struct {
	WriteWindow time.Duration `envconfig:"CARTFORGE_RATE_LIMIT_WRITE_WINDOW" default:"1m"`
	WriteLimit  int           `envconfig:"CARTFORGE_RATE_LIMIT_WRITE_LIMIT" default:"120"`
}

// CartConfig carries the cart engine's tunables. The two item ceilings are
// independent: merging quantity into an existing line is never rationed, only
// brand-new top-level lines count against them.
type CartConfig struct {
	MaxShoppingCartItems     int  `envconfig:"CARTFORGE_CART_MAX_SHOPPING_CART_ITEMS" default:"1000"`
	MaxWishlistItems         int  `envconfig:"CARTFORGE_CART_MAX_WISHLIST_ITEMS" default:"1000"`
	AutoAddRequiredProducts  bool `envconfig:"CARTFORGE_CART_AUTO_ADD_REQUIRED_PRODUCTS" default:"true"`
	AutoExpandBundleProducts bool `envconfig:"CARTFORGE_CART_AUTO_EXPAND_BUNDLE_PRODUCTS" default:"true"`
}

// MaxItemsFor returns the top-level line ceiling for the given cart type name.
func (c CartConfig) MaxItemsFor(cartType string) int {
	if cartType == "wishlist" {
		return c.MaxWishlistItems
	}
	return c.MaxShoppingCartItems
}
