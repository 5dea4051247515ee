package export

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cryptogamefiverse/nftdash/internal/config"
	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/http"
)

// S3Sink uploads an export as a single PutObject.
type S3Sink struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Sink builds an S3 client sharing the proxy-aware HTTP client.
func NewS3Sink(ctx context.Context, cfg *config.Config, bucket, key string) (*S3Sink, error) {
	httpClient, err := http.CreateClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	// uploads are bounded by ctx, not the API request timeout
	httpClient.Timeout = 0

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
	}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	if ak, sk := os.Getenv(constants.S3AccessKeyEnvVar), os.Getenv(constants.S3SecretKeyEnvVar); ak != "" && sk != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, sk, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := os.Getenv(constants.S3EndpointEnvVar)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{client: client, bucket: bucket, key: key}, nil
}

func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	return uploadWithRetry(ctx, s, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(s.bucket),
			Key:           aws.String(s.key),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
			ContentType:   aws.String(constants.ExportContentType),
		})
		if err != nil {
			return fmt.Errorf("put %s: %w", s, err)
		}
		return nil
	})
}

func (s *S3Sink) String() string {
	return "s3://" + s.bucket + "/" + s.key
}
