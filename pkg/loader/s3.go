package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/vango-dev/vnav/pkg/component"
)

// DefaultMaxTemplateSize caps the size of a template object.
const DefaultMaxTemplateSize = 1 << 20

// ObjectGetter is the subset of the S3 client used by S3Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Option configures an S3Loader.
type S3Option func(*S3Loader)

// WithPrefix sets the key prefix for template objects.
func WithPrefix(prefix string) S3Option {
	return func(l *S3Loader) {
		l.prefix = prefix
	}
}

// WithMaxSize sets the maximum template size in bytes.
func WithMaxSize(n int64) S3Option {
	return func(l *S3Loader) {
		l.maxSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) S3Option {
	return func(l *S3Loader) {
		l.logger = logger
	}
}

// S3Loader registers components whose markup is stored as HTML objects in an
// S3 bucket. The object for component "user-card" is "<prefix>user-card.html".
type S3Loader struct {
	client   ObjectGetter
	bucket   string
	prefix   string
	maxSize  int64
	registry *component.Registry
	logger   *slog.Logger
}

// NewS3 creates a loader that registers templates in reg.
func NewS3(client ObjectGetter, bucket string, reg *component.Registry, opts ...S3Option) *S3Loader {
	l := &S3Loader{
		client:   client,
		bucket:   bucket,
		maxSize:  DefaultMaxTemplateSize,
		registry: reg,
		logger:   slog.Default().With("component", "loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key returns the object key for a component.
func (l *S3Loader) Key(name string) string {
	return path.Join(l.prefix, name+".html")
}

// Import returns the hook for a component.
func (l *S3Loader) Import(name string) Func {
	return func(ctx context.Context) error {
		return l.load(ctx, name)
	}
}

func (l *S3Loader) load(ctx context.Context, name string) error {
	key := l.Key(name)
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: s3://%s/%s", ErrNotFound, l.bucket, key)
		}
		return fmt.Errorf("loader: get s3://%s/%s: %w", l.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, l.maxSize+1))
	if err != nil {
		return fmt.Errorf("loader: read s3://%s/%s: %w", l.bucket, key, err)
	}
	if int64(len(body)) > l.maxSize {
		return fmt.Errorf("loader: s3://%s/%s exceeds %d bytes", l.bucket, key, l.maxSize)
	}

	l.registry.Register(name, component.Template(name, string(body)))
	l.logger.Info("component template loaded", "component", name, "key", key, "bytes", len(body))
	return nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// NewS3Client builds an S3 client from the default AWS configuration chain
// (environment, shared config and credentials files, SSO, container and
// instance roles). A non-empty region overrides the configured one, and a
// non-empty endpoint selects an S3-compatible service with path-style
// addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var optFns []func(*config.LoadOptions) error
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("loader: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

var _ ObjectGetter = (*s3.Client)(nil)
