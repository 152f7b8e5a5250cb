package api

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra/config"
	"github.com/giovaniif/items/infra/mirrors"
	"github.com/giovaniif/items/infra/repositories"
	"github.com/giovaniif/items/infra/retry"
	"github.com/giovaniif/items/protocols"
)

// Store is an items table that owns a connection.
type Store interface {
	item.Repository
	io.Closer
}

// Mirror is a blob mirror that owns a connection.
type Mirror interface {
	protocols.BlobMirror
	io.Closer
}

type provisioner interface {
	EnsureTable(ctx context.Context) error
}

type bucketProvisioner interface {
	EnsureBucket(ctx context.Context) error
}

// LoadAWSConfig resolves credentials from the default chain. With an endpoint
// override (localstack) and no credentials in the environment, static test
// credentials are used.
func LoadAWSConfig(ctx context.Context, cfg config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if cfg.AWSEndpoint != "" && os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func NewStore(ctx context.Context, cfg config.Config, log *zap.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Store {
	case config.StoreMemory:
		store = repositories.NewItemRepositoryMemory()
	case config.StoreDynamoDB:
		awsCfg, loadErr := LoadAWSConfig(ctx, cfg)
		if loadErr != nil {
			return nil, fmt.Errorf("load aws config: %w", loadErr)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			}
		})
		store = repositories.NewItemRepositoryDynamoDB(client, cfg.Table)
	case config.StoreRedis:
		store = repositories.NewItemRepositoryRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	case config.StoreMongo:
		client, connErr := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if connErr != nil {
			return nil, fmt.Errorf("connect mongo: %w", connErr)
		}
		store = repositories.NewItemRepositoryMongo(client, cfg.MongoDatabase, cfg.Table)
	case config.StorePostgres:
		store, err = repositories.OpenItemRepositoryPostgres(cfg.PostgresDSN, cfg.Table)
	case config.StoreBolt:
		store, err = repositories.OpenItemRepositoryBolt(cfg.BoltPath, cfg.Table)
	default:
		err = fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, err
	}

	policy := retry.DefaultPolicy()
	policy.MaxRetries = cfg.ConnectRetries
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("Store not ready, retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}
	err = retry.WithBackoff(ctx, policy, func(ctx context.Context) error {
		if cfg.Provision || cfg.Store == config.StorePostgres {
			if p, ok := store.(provisioner); ok {
				if err := p.EnsureTable(ctx); err != nil {
					return err
				}
			}
		}
		return store.Ping(ctx)
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store %s unavailable: %w", cfg.Store, err)
	}
	log.Info("Items table ready", zap.String("store", cfg.Store), zap.String("table", cfg.Table))
	return store, nil
}

func NewMirror(ctx context.Context, cfg config.Config, log *zap.Logger) (Mirror, error) {
	var mirror Mirror
	switch cfg.Mirror {
	case config.MirrorNone:
		mirror = mirrors.BlobMirrorNoop{}
	case config.MirrorMemory:
		mirror = mirrors.NewBlobMirrorMemory()
	case config.MirrorS3:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.AWSEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
				o.UsePathStyle = true
			}
		})
		mirror = mirrors.NewBlobMirrorS3(client, cfg.Bucket, cfg.AWSRegion)
	case config.MirrorKafka:
		mirror = mirrors.NewBlobMirrorKafka(mirrors.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	default:
		return nil, fmt.Errorf("unknown mirror %q", cfg.Mirror)
	}

	if cfg.Provision {
		if p, ok := mirror.(bucketProvisioner); ok {
			if err := p.EnsureBucket(ctx); err != nil {
				_ = mirror.Close()
				return nil, err
			}
		}
	}
	log.Info("Blob mirror ready", zap.String("mirror", cfg.Mirror))
	return mirror, nil
}
