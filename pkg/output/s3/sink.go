package s3

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"zabbup-hq/zabbup/pkg/config"
	"zabbup-hq/zabbup/pkg/export"
	"zabbup-hq/zabbup/pkg/output"
	"zabbup-hq/zabbup/pkg/telemetry/logging"
)

// SinkName identifies the S3 sink in logs, metrics and errors.
const SinkName = "s3"

// LifecycleRuleID is the id of the lifecycle rule managed by the sink.
const LifecycleRuleID = "zabbup-delete-old-backups"

// Sink uploads a batch to an S3-compatible bucket.
type Sink struct {
	cfg     *config.S3Config
	dryRun  bool
	encoder *output.Encoder
	client  API
	logger  *slog.Logger
	now     func() time.Time
}

// NewSink creates an S3 sink. The client is only built when the sink is
// enabled.
func NewSink(ctx context.Context, cfg *config.S3Config, dryRun bool, encoder *output.Encoder, logger *slog.Logger) (*Sink, error) {
	if cfg == nil {
		return nil, errors.New("s3 config cannot be nil")
	}

	var client API
	if cfg.Enable {
		c, err := NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return NewSinkWithClient(cfg, dryRun, encoder, client, logger)
}

// NewSinkWithClient creates an S3 sink using client.
func NewSinkWithClient(cfg *config.S3Config, dryRun bool, encoder *output.Encoder, client API, logger *slog.Logger) (*Sink, error) {
	if cfg == nil {
		return nil, errors.New("s3 config cannot be nil")
	}
	if encoder == nil {
		return nil, errors.New("encoder cannot be nil")
	}
	if cfg.Enable && client == nil {
		return nil, errors.New("s3 client cannot be nil")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Sink{
		cfg:     cfg,
		dryRun:  dryRun,
		encoder: encoder,
		client:  client,
		logger:  logger.With("component", SinkName),
		now:     time.Now,
	}, nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return SinkName
}

// Write prepares the bucket and uploads every artifact of the batch.
// The first failure stops the upload and is returned as *output.SinkError.
func (s *Sink) Write(ctx context.Context, batch *export.Batch) error {
	logger := logging.FromContext(ctx, s.logger).With("bucket", s.cfg.Bucket)

	if !s.cfg.Enable {
		logger.Debug("s3 output disabled")
		return nil
	}
	if s.dryRun {
		logger.Info("dry run enabled, skipping s3 output")
		return nil
	}

	logger.Info("writing to s3", "objects", batch.Len())

	if err := s.ensureVersioning(ctx, logger); err != nil {
		return err
	}
	if err := s.putLifecycle(ctx); err != nil {
		return err
	}

	retainUntil := s.now().UTC().AddDate(0, 0, s.cfg.Retention.Days)
	for _, o := range batch.Objects {
		key := output.ObjectKey(s.cfg.BucketPath, o, batch.Format)

		data, err := s.encoder.Encode(o)
		if err != nil {
			return s.fail("encode", key, err)
		}

		logger.Debug("uploading object", "key", key, "size", len(data))
		sum := md5.Sum(data)
		_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
			Bucket:                    aws.String(s.cfg.Bucket),
			Key:                       aws.String(key),
			Body:                      bytes.NewReader(data),
			ContentLength:             aws.Int64(int64(len(data))),
			ContentMD5:                aws.String(base64.StdEncoding.EncodeToString(sum[:])),
			ObjectLockMode:            types.ObjectLockModeGovernance,
			ObjectLockRetainUntilDate: aws.Time(retainUntil),
		})
		if err != nil {
			return s.fail("put object", key, err)
		}
	}

	logger.Info("uploaded objects", "objects", batch.Len(), "retain_until", retainUntil)
	return nil
}

func (s *Sink) ensureVersioning(ctx context.Context, logger *slog.Logger) error {
	out, err := s.client.GetBucketVersioning(ctx, &awss3.GetBucketVersioningInput{
		Bucket: aws.String(s.cfg.Bucket),
	})
	if err != nil {
		return s.fail("get bucket versioning", "", err)
	}
	if out.Status == types.BucketVersioningStatusEnabled {
		logger.Debug("bucket versioning is enabled")
		return nil
	}

	logger.Warn("bucket versioning is not enabled, enabling it", "status", string(out.Status))
	_, err = s.client.PutBucketVersioning(ctx, &awss3.PutBucketVersioningInput{
		Bucket: aws.String(s.cfg.Bucket),
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	})
	if err != nil {
		return s.fail("enable bucket versioning", "", err)
	}
	return nil
}

func (s *Sink) putLifecycle(ctx context.Context) error {
	_, err := s.client.PutBucketLifecycleConfiguration(ctx, &awss3.PutBucketLifecycleConfigurationInput{
		Bucket: aws.String(s.cfg.Bucket),
		LifecycleConfiguration: &types.BucketLifecycleConfiguration{
			Rules: []types.LifecycleRule{LifecycleRule(s.cfg.Lifecycle.Days)},
		},
	})
	if err != nil {
		return s.fail("put bucket lifecycle", "", err)
	}
	return nil
}

// LifecycleRule returns the bucket-wide rule expiring noncurrent versions
// after days and aborting multipart uploads left incomplete for a day.
func LifecycleRule(days int) types.LifecycleRule {
	return types.LifecycleRule{
		ID:     aws.String(LifecycleRuleID),
		Status: types.ExpirationStatusEnabled,
		Filter: &types.LifecycleRuleFilterMemberPrefix{Value: ""},
		NoncurrentVersionExpiration: &types.NoncurrentVersionExpiration{
			NoncurrentDays: aws.Int32(int32(days)),
		},
		AbortIncompleteMultipartUpload: &types.AbortIncompleteMultipartUpload{
			DaysAfterInitiation: aws.Int32(1),
		},
	}
}

func (s *Sink) fail(op, key string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		s.logger.Debug("s3 api error", "op", op, "code", apiErr.ErrorCode(), "message", apiErr.ErrorMessage())
	}
	return &output.SinkError{Sink: SinkName, Op: op, Key: key, Cause: err}
}
