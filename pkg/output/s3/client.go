package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"zabbup-hq/zabbup/pkg/config"
)

// API is the subset of the AWS SDK S3 client used by the sink.
type API interface {
	GetBucketVersioning(ctx context.Context, params *awss3.GetBucketVersioningInput, optFns ...func(*awss3.Options)) (*awss3.GetBucketVersioningOutput, error)
	PutBucketVersioning(ctx context.Context, params *awss3.PutBucketVersioningInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketVersioningOutput, error)
	PutBucketLifecycleConfiguration(ctx context.Context, params *awss3.PutBucketLifecycleConfigurationInput, optFns ...func(*awss3.Options)) (*awss3.PutBucketLifecycleConfigurationOutput, error)
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

var _ API = (*awss3.Client)(nil)

// NewClient creates an S3 client for the configured endpoint with static
// credentials and path-style addressing.
func NewClient(ctx context.Context, cfg *config.S3Config) (*awss3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := EndpointURL(cfg.URL, cfg.Secure == nil || *cfg.Secure)
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}), nil
}

// EndpointURL adds a scheme to endpoints given as host[:port].
func EndpointURL(raw string, secure bool) string {
	if strings.Contains(raw, "://") {
		return strings.TrimSuffix(raw, "/")
	}
	scheme := "https"
	if !secure {
		scheme = "http"
	}
	return scheme + "://" + strings.TrimSuffix(raw, "/")
}
