package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3API is the subset of *s3.Client that S3Publisher depends on, narrowed
// so tests can substitute a fake instead of talking to AWS.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// S3Publisher uploads artifacts to a single S3 bucket/prefix.
type S3Publisher struct {
	Client S3API
	Bucket string
	Prefix string
}

// NewS3Publisher builds an S3Publisher from the standard AWS config chain
// (env vars, shared config, IAM role), optionally overridden by static
// credentials and an explicit endpoint for S3-compatible stores (e.g.
// MinIO).
func NewS3Publisher(ctx context.Context, bucket, prefix, endpoint, accessKey, secretKey string) (*S3Publisher, error) {
	opts := []func(*config.LoadOptions) error{}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", ErrPublishFailed, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Publisher{Client: client, Bucket: bucket, Prefix: prefix}, nil
}

// Publish implements Publisher. The published key is keyed by task id and
// the artifact's own basename; originalFilename is accepted to satisfy the
// Publisher contract but does not affect the key.
func (p *S3Publisher) Publish(ctx context.Context, artifactPath, originalFilename, taskID string) (string, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrPublishFailed, artifactPath, err)
	}
	defer f.Close()

	key := path.Join(p.Prefix, taskID, path.Base(artifactPath))
	_, err = p.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			return "", fmt.Errorf("%w: put %s/%s: %s: %s", ErrPublishFailed, p.Bucket, key, ae.ErrorCode(), ae.ErrorMessage())
		}
		return "", fmt.Errorf("%w: put %s/%s: %v", ErrPublishFailed, p.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", p.Bucket, key), nil
}
