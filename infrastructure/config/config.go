package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Scan      ScanConfig
	RateLimit RateLimitConfig
	LLM       LLMConfig
	Cors      CorsConfig
	Logger    LoggerConfig
	Sentry    SentryConfig
}

type ServerConfig struct {
	InternalPort string
	ExternalPort string
	RunMode      string
	Domain       string
	FrontEndURL  string
}

type LoggerConfig struct {
	Encoding string
	Level    string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DbName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         string
	Password     string
	Db           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PoolTimeout  time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PresignTTL bounds both download and upload credentials.
	PresignTTL time.Duration
}

type ScanConfig struct {
	// CallbackToken is the shared-secret bearer the scanner presents.
	CallbackToken string
}

type RateLimitConfig struct {
	// Upload credential issuance per client IP.
	UploadRequests int
	UploadWindow   time.Duration
}

type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

type CorsConfig struct {
	AllowOrigins string
	AllowMethods string
	AllowHeaders string
}

type SentryConfig struct {
	Dsn            string
	Debug          bool
	SendDefaultPII bool
}

func GetConfig() *Config {
	cfgPath := getConfigPath(os.Getenv("APP_ENV"))
	v, err := LoadConfig(cfgPath, "yml")
	if err != nil {
		log.Fatalf("Error in load config %v", err)
	}

	cfg, err := ParseConfig(v)
	if err != nil {
		log.Fatalf("Error in parse config %v", err)
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.ExternalPort = envPort
		log.Printf("Set external port from environment -> %s", cfg.Server.ExternalPort)
	}

	if token := os.Getenv("SCAN_CALLBACK_TOKEN"); token != "" {
		cfg.Scan.CallbackToken = token
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		log.Printf("Unable to parse config: %v", err)
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(filename string, fileType string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType(fileType)
	v.SetConfigName(filename)

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./infrastructure/config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	if wd, err := os.Getwd(); err == nil {
		v.AddConfigPath(filepath.Join(wd, "config"))
		v.AddConfigPath(filepath.Join(wd, "infrastructure", "config"))
	}

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		log.Printf("Unable to read config: %v", err)
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())
	return v, nil
}

func getConfigPath(env string) string {
	switch env {
	case "docker":
		return "config-docker"
	case "production":
		return "config-production"
	default:
		return "config-development"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.InternalPort == "" {
		return errors.New("server.internalPort is required")
	}
	if c.Server.ExternalPort == "" {
		return errors.New("server.externalPort is required")
	}

	if c.Postgres.Host == "" {
		return errors.New("postgres.host is required")
	}
	if c.Postgres.Port == "" {
		return errors.New("postgres.port is required")
	}
	if c.Postgres.DbName == "" {
		return errors.New("postgres.dbName is required")
	}

	if c.Storage.Endpoint == "" {
		return errors.New("storage.endpoint is required")
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}

	if c.Scan.CallbackToken == "" {
		return errors.New("scan.callbackToken is required")
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" {
			return errors.New("redis.host is required when redis is enabled")
		}
		if c.Redis.Port == "" {
			return errors.New("redis.port is required when redis is enabled")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Server.RunMode == "debug" || c.Server.RunMode == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.RunMode == "release" || c.Server.RunMode == "production"
}

func (c *Config) GetPostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host,
		c.Postgres.Port,
		c.Postgres.User,
		c.Postgres.Password,
		c.Postgres.DbName,
		c.Postgres.SSLMode,
	)
}

func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// PresignTTL returns the configured credential lifetime, defaulting to
// 300 seconds.
func (c *Config) GetPresignTTL() time.Duration {
	if c.Storage.PresignTTL <= 0 {
		return 300 * time.Second
	}
	return c.Storage.PresignTTL
}

// UploadRateLimit returns the per-IP upload issuance budget, defaulting
// to 30 requests per 60-second sliding window.
func (c *Config) UploadRateLimit() (int, time.Duration) {
	requests := c.RateLimit.UploadRequests
	if requests <= 0 {
		requests = 30
	}
	window := c.RateLimit.UploadWindow
	if window <= 0 {
		window = time.Minute
	}
	return requests, window
}
