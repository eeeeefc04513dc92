// Package archive stores exported backup documents outside the device.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/config"
)

// Sink receives one named document.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) error
	Name() string
}

func cleanName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("empty archive name")
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("invalid archive name %q", name)
	}
	return filepath.ToSlash(filepath.Clean(name)), nil
}

// DirSink writes documents under a local directory.
type DirSink struct {
	root string
}

// NewDirSink creates root when needed.
func NewDirSink(root string) (*DirSink, error) {
	if root == "" {
		return nil, errors.New("archive directory required")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &DirSink{root: root}, nil
}

func (d *DirSink) Name() string { return "dir:" + d.root }

// Put writes atomically through a temporary file.
func (d *DirSink) Put(_ context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	target := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create archive subdir: %w", err)
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", target, err)
	}
	return nil
}

// S3Sink uploads documents to a bucket; works with MinIO through a custom endpoint.
type S3Sink struct {
	client *s3.Client
	bucket string
}

// NewS3Sink builds the client from the backup configuration. Explicit keys
// take precedence over the default credential chain.
func NewS3Sink(ctx context.Context, cfg config.BackupConfig) (*S3Sink, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3PathStyle
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})
	return &S3Sink{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *S3Sink) Name() string { return "s3:" + s.bucket }

func (s *S3Sink) Put(ctx context.Context, name string, data []byte) error {
	key, err := cleanName(name)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// Multi fans a document out to several sinks and reports every failure.
type Multi []Sink

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

func (m Multi) Put(ctx context.Context, name string, data []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Put(ctx, name, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds every sink that is configured. It returns nil when
// neither a directory nor a bucket is set.
func FromConfig(ctx context.Context, cfg config.BackupConfig, logger *zap.Logger) (Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sinks Multi
	if cfg.Dir != "" {
		d, err := NewDirSink(cfg.Dir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, d)
	}
	if cfg.S3Bucket != "" {
		s, err := NewS3Sink(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		logger.Info("no backup archive configured")
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
