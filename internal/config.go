package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	StoreDriver    string `env:"STORE_DRIVER,default=badger" validate:"oneof=badger sqlite"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLiteFilepath string `env:"SQLITE_FILEPATH,default=./data/dialog-hub.db"`

	JWTSecret string `env:"JWT_SECRET,required=true" validate:"min=16"`

	OutboundQueueSize   int           `env:"OUTBOUND_QUEUE_SIZE,default=64" validate:"min=1"`
	IdleTimeout         time.Duration `env:"IDLE_TIMEOUT,default=90s" validate:"gt=0"`
	WriteTimeout        time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
	ReaperInterval      time.Duration `env:"REAPER_INTERVAL,default=15s" validate:"gt=0"`
	MaxProtocolFailures int           `env:"MAX_PROTOCOL_FAILURES,default=5" validate:"min=1"`
	MaxBodyLength       int           `env:"MAX_BODY_LENGTH,default=5000" validate:"min=1"`
	RestartInterval     time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"gt=0"`
	RegistryShards      int           `env:"REGISTRY_SHARDS,default=32" validate:"min=1"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	PresenceTTL     time.Duration `env:"PRESENCE_TTL,default=2m" validate:"gt=0"`
	MonitorInterval time.Duration `env:"MONITOR_INTERVAL,default=10s" validate:"gt=0"`
	DebugPort       int           `env:"DEBUG_PORT,default=8081" validate:"min=1,max=65535"`
}

// LoadConfig reads the process environment. A .env file, if any, must
// already have been loaded by the caller.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
