package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/framedarchive/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Issuer    string `mapstructure:"issuer"     json:"issuer"`
	LogPath   string `mapstructure:"log_path"   json:"log_path"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Enabled        bool          `mapstructure:"enabled"         json:"enabled"`
	Host           string        `mapstructure:"host"            json:"host"`
	Port           int           `mapstructure:"port"            json:"port"`
	SampleRatio    float64       `mapstructure:"sample_ratio"    json:"sample_ratio"`
	ExportInterval time.Duration `mapstructure:"export_interval" json:"export_interval"`
}

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

type Payment struct {
	Provider  string        `mapstructure:"provider"   json:"provider"`
	BaseURL   string        `mapstructure:"base_url"   json:"base_url"`
	KeyID     string        `mapstructure:"key_id"     json:"key_id"`
	KeySecret string        `mapstructure:"key_secret" json:"-"`
	Currency  string        `mapstructure:"currency"   json:"currency"`
	Timeout   time.Duration `mapstructure:"timeout"    json:"timeout"`
}

type RateLimit struct {
	Store          string        `mapstructure:"store"           json:"store"`
	Limit          int           `mapstructure:"limit"           json:"limit"`
	Window         time.Duration `mapstructure:"window"          json:"window"`
	Capacity       int           `mapstructure:"capacity"        json:"capacity"`
	TrustedProxies []string      `mapstructure:"trusted_proxies" json:"trusted_proxies"`
}

type Location struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
}

type Cart struct {
	Storage  string        `mapstructure:"storage"   json:"storage"`
	GuestTTL time.Duration `mapstructure:"guest_ttl" json:"guest_ttl"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

type Admin struct {
	Emails []string `mapstructure:"emails" json:"emails"`
}

func (a Admin) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, e := range a.Emails {
		if strings.ToLower(strings.TrimSpace(e)) == email {
			return true
		}
	}
	return false
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Payment     `mapstructure:"payment"     json:"payment"`
	RateLimit   `mapstructure:"ratelimit"   json:"ratelimit"`
	Cart        `mapstructure:"cart"        json:"cart"`
	Admin       `mapstructure:"admin"       json:"admin"`
	Location    `mapstructure:"location"    json:"location"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "development")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.issuer", "framed-archive")
	v.SetDefault("application.log_path", "/var/log/framed-archive.log")
	v.SetDefault("db.migration_path", "file://migrations")
	v.SetDefault("db.max_connections", 10)
	v.SetDefault("db.min_connections", 2)
	v.SetDefault("cache.port", 6379)
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.export_interval", 5*time.Second)
	v.SetDefault("payment.provider", "razorpay")
	v.SetDefault("payment.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.timeout", 15*time.Second)
	v.SetDefault("ratelimit.store", "memory")
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("ratelimit.capacity", 10000)
	v.SetDefault("location.base_url", "https://api.postalpincode.in")
	v.SetDefault("location.timeout", 5*time.Second)
	v.SetDefault("cart.storage", "postgres")
	v.SetDefault("cart.guest_ttl", 30*24*time.Hour)
	v.SetDefault("cart.cache_ttl", time.Hour)
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		v := viper.New()
		v.SetConfigName(filename)
		v.AddConfigPath("./env")
		v.SetConfigType("yaml")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		setDefaults(v)

		logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
		logger.Info().Msg("reading config")
		err := v.ReadInConfig()
		if err != nil {
			err = fmt.Errorf("error when reading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("read config")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
		logger.Info().Msg("unmarshaling config")
		cfg := Config{}
		err = v.Unmarshal(&cfg)
		if err != nil {
			err = fmt.Errorf("error unmarshaling config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("unmarshaled config")
	})
	return config
}
