package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

func (a App) IsProduction() bool { return strings.EqualFold(a.Env, "production") }

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Embedded bool   `mapstructure:"embedded"`
	TTLSec   int    `mapstructure:"ttlSec"`
}

func (r Redis) Enabled() bool { return r.Embedded || r.Addr != "" }

// DB.Driver selects the store: postgres, mysql, sqlite, mongo or memory.
type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mongo struct {
	URI        string
	Database   string
	TimeoutSec int
}

// Demo enables stub authentication and the seeded demo content. Never on in production.
type Demo struct {
	Enabled  bool
	Seed     bool
	Password string
}

type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

type Limits struct {
	RPS               float64
	Burst             int
	PerIPRPS          float64
	PerIPBurst        int
	MaxConcurrent     int64
	MaxBodyBytes      int64
	RequestTimeoutSec int
}

type CORS struct {
	Origins []string
}

type Config struct {
	App        App
	Log        Log
	JWT        JWT
	DB         DB
	Mongo      Mongo
	Redis      Redis `mapstructure:"redis"`
	Demo       Demo
	Pagination Pagination
	Limits     Limits
	CORS       CORS
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "go-gin-blog")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 4000)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 4001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/blog.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "go-gin-blog")
	v.SetDefault("jwt.accessTokenTTLMin", 7*24*60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:blog.db?_foreign_keys=on")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "blogdb")
	v.SetDefault("mongo.timeoutSec", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.embedded", false)
	v.SetDefault("redis.ttlSec", 300)

	v.SetDefault("demo.enabled", false)
	v.SetDefault("demo.seed", false)
	v.SetDefault("demo.password", "demo1234")

	v.SetDefault("pagination.defaultLimit", 10)
	v.SetDefault("pagination.maxLimit", 100)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 0)
	v.SetDefault("limits.perIPBurst", 0)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 16<<20)
	v.SetDefault("limits.requestTimeoutSec", 10)

	v.SetDefault("cors.origins", []string{"*"})
}

// LoadFrom reads path (if it exists), then APP_* environment overrides, then defaults.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Demo.Enabled && c.App.IsProduction() {
		return errors.New("demo mode is not allowed when app.env is production")
	}
	if c.JWT.Secret == "" && !c.Demo.Enabled {
		return errors.New("jwt.secret is required (set APP_JWT_SECRET)")
	}
	return nil
}

func Load(path string) *Config {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	c, err := LoadFrom(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
