package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "ITEMS"

const (
	StoreMemory   = "memory"
	StoreDynamoDB = "dynamodb"
	StoreRedis    = "redis"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"

	MirrorNone   = "none"
	MirrorMemory = "memory"
	MirrorS3     = "s3"
	MirrorKafka  = "kafka"
)

type Config struct {
	ServiceName     string
	HTTPBindAddress string
	Store           string
	Mirror          string

	AWSEndpoint string
	AWSRegion   string
	Table       string
	Bucket      string

	RedisAddr     string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
	BoltPath      string
	KafkaBrokers  []string
	KafkaTopic    string

	LokiURL      string
	OTLPEndpoint string
	LogLevel     string

	Provision      bool
	RequestTimeout time.Duration
	ConnectRetries int
}

type option struct {
	key   string
	value any
	usage string
}

var options = []option{
	{"service-name", "items", "service name used for log streams and traces"},
	{"http-bind-address", ":5000", "bind address for the items http api"},
	{"store", StoreMemory, "items table backend: memory, dynamodb, redis, mongo, postgres or bolt"},
	{"mirror", MirrorNone, "blob mirror: none, memory, s3 or kafka"},
	{"aws-endpoint", "", "AWS endpoint override (e.g. http://localstack:4566)"},
	{"aws-region", "us-east-1", "AWS region"},
	{"table", "ItemsTable", "items table name"},
	{"bucket", "items-bucket", "blob mirror bucket name"},
	{"redis-addr", "localhost:6379", "redis address"},
	{"mongo-uri", "mongodb://localhost:27017", "mongo connection uri"},
	{"mongo-database", "items", "mongo database"},
	{"postgres-dsn", "postgres://localhost:5432/items?sslmode=disable", "postgres dsn"},
	{"bolt-path", "items.bolt", "path to boltdb file"},
	{"kafka-brokers", "localhost:9092", "comma separated kafka brokers"},
	{"kafka-topic", "items", "kafka topic for mirrored items"},
	{"loki-url", "", "loki base url; empty disables log shipping"},
	{"otlp-endpoint", "", "OTLP/HTTP trace endpoint; empty disables tracing"},
	{"log-level", "info", "log level"},
	{"provision", false, "create the table and bucket on startup"},
	{"request-timeout", 10 * time.Second, "per-request store timeout"},
	{"connect-retries", 5, "store ping attempts on startup"},
}

// NewViper returns a viper instance reading ITEMS_* environment variables with defaults applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, o := range options {
		v.SetDefault(o.key, o.value)
	}
	_ = v.BindEnv("aws-endpoint", EnvPrefix+"_AWS_ENDPOINT", "AWS_ENDPOINT_URL")
	_ = v.BindEnv("otlp-endpoint", EnvPrefix+"_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	return v
}

// BindFlags registers one flag per option and binds it to v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, o := range options {
		switch d := o.value.(type) {
		case string:
			flags.String(o.key, d, o.usage)
		case bool:
			flags.Bool(o.key, d, o.usage)
		case int:
			flags.Int(o.key, d, o.usage)
		case time.Duration:
			flags.Duration(o.key, d, o.usage)
		default:
			return fmt.Errorf("unsupported option type %T for %s", d, o.key)
		}
	}
	return v.BindPFlags(flags)
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		ServiceName:     v.GetString("service-name"),
		HTTPBindAddress: v.GetString("http-bind-address"),
		Store:           strings.ToLower(v.GetString("store")),
		Mirror:          strings.ToLower(v.GetString("mirror")),
		AWSEndpoint:     v.GetString("aws-endpoint"),
		AWSRegion:       v.GetString("aws-region"),
		Table:           v.GetString("table"),
		Bucket:          v.GetString("bucket"),
		RedisAddr:       v.GetString("redis-addr"),
		MongoURI:        v.GetString("mongo-uri"),
		MongoDatabase:   v.GetString("mongo-database"),
		PostgresDSN:     v.GetString("postgres-dsn"),
		BoltPath:        v.GetString("bolt-path"),
		KafkaBrokers:    splitList(v.GetString("kafka-brokers")),
		KafkaTopic:      v.GetString("kafka-topic"),
		LokiURL:         v.GetString("loki-url"),
		OTLPEndpoint:    v.GetString("otlp-endpoint"),
		LogLevel:        v.GetString("log-level"),
		Provision:       v.GetBool("provision"),
		RequestTimeout:  v.GetDuration("request-timeout"),
		ConnectRetries:  v.GetInt("connect-retries"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreDynamoDB, StoreRedis, StoreMongo, StorePostgres, StoreBolt:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	switch c.Mirror {
	case MirrorNone, MirrorMemory, MirrorS3, MirrorKafka:
	default:
		return fmt.Errorf("unknown mirror %q", c.Mirror)
	}
	if c.Table == "" {
		return fmt.Errorf("table is required")
	}
	if c.Mirror == MirrorS3 && c.Bucket == "" {
		return fmt.Errorf("bucket is required for the s3 mirror")
	}
	if c.Mirror == MirrorKafka && (len(c.KafkaBrokers) == 0 || c.KafkaTopic == "") {
		return fmt.Errorf("kafka brokers and topic are required for the kafka mirror")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
