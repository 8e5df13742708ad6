package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Service         ServiceConfig        `mapstructure:"service"`
	Databases       DatabasesConfig      `mapstructure:"databases"`
	Auth            AuthConfig           `mapstructure:"auth"`
	ExternalClients ExternalClientConfig `mapstructure:"externalClients"`
	Ingestion       IngestionConfig      `mapstructure:"ingestion"`
	Secrets         SecretsConfig        `mapstructure:"secrets"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type              ServiceType `mapstructure:"type"`
	Port              string      `mapstructure:"port"`
	LogLevel          string      `mapstructure:"logLevel"`
	LogFile           string      `mapstructure:"logFile"`
	ReportingCurrency string      `mapstructure:"reportingCurrency"`
	DummyUserID       int64       `mapstructure:"dummyUserId"`
	AllowedOrigins    []string    `mapstructure:"allowedOrigins"`
}

type DatabasesConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Driver           string `mapstructure:"driver"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxConns         int32  `mapstructure:"maxConns"`
}

// RedisConfig points at the cache backend. An empty Host selects the
// in-process cache, which is only suitable for a single process.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

type AuthConfig struct {
	JWTSecret          string                    `mapstructure:"jwtSecret"`
	AccessTokenExpiry  time.Duration             `mapstructure:"accessTokenExpiry"`
	RefreshTokenExpiry time.Duration             `mapstructure:"refreshTokenExpiry"`
	Providers          map[string]ProviderConfig `mapstructure:"providers"`
}

type ProviderConfig struct {
	UserInfoURL string `mapstructure:"userInfoUrl"`
}

type ExternalClientConfig struct {
	Naver   NaverConfig   `mapstructure:"naver"`
	Polygon PolygonConfig `mapstructure:"polygon"`
}

type NaverConfig struct {
	WorldIndexURL     string        `mapstructure:"worldIndexUrl"`
	WorldStockURL     string        `mapstructure:"worldStockUrl"`
	DomesticStockURL  string        `mapstructure:"domesticStockUrl"`
	ExchangeRateURL   string        `mapstructure:"exchangeRateUrl"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Timeout           time.Duration `mapstructure:"timeout"`
	TranslationsFile  string        `mapstructure:"translationsFile"`
}

type PolygonConfig struct {
	WSURL         string   `mapstructure:"wsUrl"`
	APIKey        string   `mapstructure:"apiKey"`
	Subscriptions []string `mapstructure:"subscriptions"`
	BufferSize    int      `mapstructure:"bufferSize"`
}

type IngestionConfig struct {
	Interval             time.Duration `mapstructure:"interval"`
	ChunkSize            int           `mapstructure:"chunkSize"`
	Parallelism          int           `mapstructure:"parallelism"`
	StockCacheTTL        time.Duration `mapstructure:"stockCacheTtl"`
	MarketIndexCacheTTL  time.Duration `mapstructure:"marketIndexCacheTtl"`
	ExchangeRateCacheTTL time.Duration `mapstructure:"exchangeRateCacheTtl"`
	ExchangeRateCron     string        `mapstructure:"exchangeRateCron"`
	RollupCron           string        `mapstructure:"rollupCron"`
	WorldStockCodes      []string      `mapstructure:"worldStockCodes"`
	DomesticStockCodes   []string      `mapstructure:"domesticStockCodes"`
}

type SecretsConfig struct {
	AWSRegion   string `mapstructure:"awsRegion"`
	AWSSecretID string `mapstructure:"awsSecretId"`
	// AWSEndpoint overrides the Secrets Manager endpoint, e.g. localstack.
	AWSEndpoint string `mapstructure:"awsEndpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("service.logLevel", "info")
	v.SetDefault("service.reportingCurrency", "KRW")
	v.SetDefault("auth.accessTokenExpiry", time.Hour)
	v.SetDefault("auth.refreshTokenExpiry", 14*24*time.Hour)
	v.SetDefault("externalClients.naver.requestsPerSecond", 5.0)
	v.SetDefault("externalClients.naver.timeout", 10*time.Second)
	v.SetDefault("externalClients.polygon.bufferSize", 1024)
	v.SetDefault("ingestion.interval", 10*time.Second)
	v.SetDefault("ingestion.chunkSize", 20)
	v.SetDefault("ingestion.parallelism", 4)
	v.SetDefault("ingestion.stockCacheTtl", 20*time.Second)
	v.SetDefault("ingestion.marketIndexCacheTtl", 20*time.Second)
	v.SetDefault("ingestion.exchangeRateCacheTtl", 30*time.Minute)
	v.SetDefault("ingestion.exchangeRateCron", "@every 10m")
	v.SetDefault("ingestion.rollupCron", "30 16 * * 1-5")
}

// LoadConfig reads appsettings.yaml, or appsettings.<env>.yaml when env is
// given, from path. Environment variables override file values using the
// key path with dots replaced by underscores.
func LoadConfig(path string, env ...string) (*Config, error) {
	var cfg Config

	// .env is optional; the process environment is used as-is without it.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	name := "appsettings"
	if len(env) > 0 && env[0] != "" {
		name = "appsettings." + env[0]
	}
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Secrets.AWSSecretID != "" {
		if err := applySecrets(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
