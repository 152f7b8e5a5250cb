package mirrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultRegion = "us-east-1"

// S3API is the subset of *s3.Client used by the mirror.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// BlobMirrorS3 writes each payload to <bucket>/<item id> as JSON text.
type BlobMirrorS3 struct {
	client S3API
	bucket string
	region string
}

func NewBlobMirrorS3(client S3API, bucket, region string) *BlobMirrorS3 {
	return &BlobMirrorS3{client: client, bucket: bucket, region: region}
}

func (m *BlobMirrorS3) PutBlob(ctx context.Context, itemId string, payload []byte) error {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(itemId),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", m.bucket, itemId, err)
	}
	return nil
}

func (m *BlobMirrorS3) DeleteBlob(ctx context.Context, itemId string) error {
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(itemId),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", m.bucket, itemId, err)
	}
	return nil
}

// EnsureBucket creates the bucket, treating an existing bucket as success.
func (m *BlobMirrorS3) EnsureBucket(ctx context.Context) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(m.bucket)}
	if m.region != "" && m.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.region),
		}
	}
	_, err := m.client.CreateBucket(ctx, input)
	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if err != nil && !errors.As(err, &owned) && !errors.As(err, &exists) {
		return fmt.Errorf("s3 create bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *BlobMirrorS3) Close() error {
	return nil
}
