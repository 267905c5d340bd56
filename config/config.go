package config

import (
	"github.com/kelseyhightower/envconfig"
	"time"
)

type Config struct {
	Api struct {
		Port uint16 `envconfig:"API_PORT" default:"8080" required:"true"`
		Path string `envconfig:"API_PATH" default:"/v1" required:"true"`
		Auth struct {
			Secret    string `envconfig:"API_AUTH_SECRET" required:"true"`
			AdminRole string `envconfig:"API_AUTH_ADMIN_ROLE" default:"admin" required:"true"`
		}
	}
	Chat ChatConfig
	Db   DbConfig
	Lock struct {
		Redis struct {
			Addr     string `envconfig:"LOCK_REDIS_ADDR" default:""`
			Password string `envconfig:"LOCK_REDIS_PASSWORD" default:""`
			Db       int    `envconfig:"LOCK_REDIS_DB" default:"0"`
		}
		Ttl time.Duration `envconfig:"LOCK_TTL" default:"10s" required:"true"`
	}
	Notify NotifyConfig
	Otel   struct {
		Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:""`
		ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"venue-chat"`
	}
	Log struct {
		Level int `envconfig:"LOG_LEVEL" default:"-4" required:"true"`
	}
}

type ChatConfig struct {
	CoolDown      time.Duration `envconfig:"CHAT_COOL_DOWN" default:"30m" required:"true"`
	MaxMessages   uint32        `envconfig:"CHAT_MAX_MESSAGES" default:"3" required:"true"`
	ExpiryWindow  time.Duration `envconfig:"CHAT_EXPIRY_WINDOW" default:"18h" required:"true"`
	SweepInterval time.Duration `envconfig:"CHAT_SWEEP_INTERVAL" default:"10m" required:"true"`
	Backoff       BackoffConfig
}

type BackoffConfig struct {
	Init       time.Duration `envconfig:"CHAT_BACKOFF_INIT" default:"10ms" required:"true"`
	MaxElapsed time.Duration `envconfig:"CHAT_BACKOFF_MAX_ELAPSED" default:"2s" required:"true"`
}

type DbConfig struct {
	Uri      string `envconfig:"DB_URI" default:"mongodb://localhost:27017/?retryWrites=true&w=majority" required:"true"`
	Name     string `envconfig:"DB_NAME" default:"venue-chat" required:"true"`
	UserName string `envconfig:"DB_USERNAME" default:""`
	Password string `envconfig:"DB_PASSWORD" default:""`
	Table    struct {
		Chats    string `envconfig:"DB_TABLE_NAME_CHATS" default:"chats" required:"true"`
		Messages string `envconfig:"DB_TABLE_NAME_MESSAGES" default:"messages" required:"true"`
		Blocks   string `envconfig:"DB_TABLE_NAME_BLOCKS" default:"blocks" required:"true"`
	}
	Tls struct {
		Enabled  bool `envconfig:"DB_TLS_ENABLED" default:"false" required:"true"`
		Insecure bool `envconfig:"DB_TLS_INSECURE" default:"false" required:"true"`
	}
}

type NotifyConfig struct {
	Kafka struct {
		Brokers []string `envconfig:"NOTIFY_KAFKA_BROKERS" default:"localhost:9092" required:"true"`
		Topic   string   `envconfig:"NOTIFY_KAFKA_TOPIC" default:"chat-notifications" required:"true"`
	}
	// Format is the CloudEvents encoding of the published notifications: "json" or "proto".
	Format   string `envconfig:"NOTIFY_FORMAT" default:"json" required:"true"`
	Source   string `envconfig:"NOTIFY_SOURCE" default:"venue-chat" required:"true"`
	QueueLen uint32 `envconfig:"NOTIFY_QUEUE_LEN" default:"1024" required:"true"`
	Backoff  struct {
		Init       time.Duration `envconfig:"NOTIFY_BACKOFF_INIT" default:"100ms" required:"true"`
		MaxElapsed time.Duration `envconfig:"NOTIFY_BACKOFF_MAX_ELAPSED" default:"30s" required:"true"`
	}
}

func NewConfigFromEnv() (cfg Config, err error) {
	err = envconfig.Process("", &cfg)
	return
}
