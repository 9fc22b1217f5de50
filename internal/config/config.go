package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
		AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"false"` // 启动 api 时自动执行迁移
	} `envPrefix:"DATABASE_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"booking_events"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD,required"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Booking struct {
		LockExpiration int     `env:"LOCK_EXPIRATION" envDefault:"10"` // 秒
		RateLimit      float64 `env:"RATE_LIMIT" envDefault:"1"`       // 每个 IP 每秒允许的请求数
		RateBurst      int     `env:"RATE_BURST" envDefault:"5"`
		MaxPartySize   int32   `env:"MAX_PARTY_SIZE" envDefault:"20"`
	} `envPrefix:"BOOKING_"`
	Establishment struct {
		DefaultTimezone string `env:"DEFAULT_TIMEZONE" envDefault:"Asia/Shanghai"`
	} `envPrefix:"ESTABLISHMENT_"`
	Seed struct {
		OrganizationID string `env:"ORGANIZATION_ID" envDefault:"00000000-0000-0000-0000-000000000001"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
