package backup

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	log "github.com/sirupsen/logrus"
)

type s3Store struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Store returns a store uploading to the given bucket. Credentials are
// read from the default AWS chain.
func NewS3Store(ctx context.Context, region, bucket string) (Store, error) {
	if len(region) <= 0 || len(bucket) <= 0 {
		return nil, fmt.Errorf("missing s3 region or bucket")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load aws config: %w", err)
	}

	return &s3Store{s3.NewFromConfig(cfg), bucket, region}, nil
}

func (s *s3Store) Upload(ctx context.Context, key string, body io.Reader) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	uploader := manager.NewUploader(s.client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	})
	return err
}

// ensureBucket creates the bucket with versioning enabled if missing.
func (s *s3Store) ensureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	}); err == nil {
		return nil
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}
	// us-east-1 rejects an explicit location constraint.
	if s.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("unable to create bucket %s: %w", s.bucket, err)
	}
	log.Infof("created bucket %s", s.bucket)

	if _, err := s.client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(s.bucket),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	}); err != nil {
		log.WithError(err).Warnf("failed to enable versioning on bucket %s", s.bucket)
	}
	return nil
}
