// Package media stages multipart uploads on local disk and publishes them to
// the media host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Uploader publishes a local file and returns its public URL. Implementations
// remove the local file whether or not the upload succeeds.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

var ErrNoFile = errors.New("no file to upload")

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the base URL objects are served from. Derived from the
	// endpoint or the AWS virtual-hosted style when empty.
	PublicURL string
	KeyPrefix string
	Timeout   time.Duration
}

type S3Uploader struct {
	client *s3.Client
	cfg    S3Config
	log    *zap.Logger
	now    func() time.Time
}

var _ Uploader = (*S3Uploader)(nil)

// NewS3Uploader builds an S3 client from cfg. A non-empty Endpoint selects an
// S3 compatible server (MinIO) with path-style addressing.
func NewS3Uploader(ctx context.Context, cfg S3Config, log *zap.Logger) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3UploaderWithClient(client, cfg, log), nil
}

func NewS3UploaderWithClient(client *s3.Client, cfg S3Config, log *zap.Logger) *S3Uploader {
	return &S3Uploader{client: client, cfg: cfg, log: log, now: time.Now}
}

func (u *S3Uploader) Upload(ctx context.Context, localPath string) (_ string, err error) {
	if localPath == "" {
		return "", ErrNoFile
	}
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !os.IsNotExist(rmErr) {
			u.log.Warn("remove staged file", zap.String("path", localPath), zap.Error(rmErr))
		}
	}()

	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat staged file: %w", err)
	}

	contentType, err := sniffContentType(f)
	if err != nil {
		return "", err
	}

	key := u.objectKey(filepath.Ext(localPath))
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		u.log.Error("upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("put object: %w", err)
	}

	u.log.Debug("uploaded", zap.String("key", key), zap.Int64("size", info.Size()))
	return u.publicURL(key), nil
}

func sniffContentType(f *os.File) (string, error) {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read staged file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind staged file: %w", err)
	}
	return http.DetectContentType(buf[:n]), nil
}

func (u *S3Uploader) objectKey(ext string) string {
	d := u.now().UTC()
	return path.Join(u.cfg.KeyPrefix, fmt.Sprintf("%d/%02d/%02d", d.Year(), d.Month(), d.Day()), uuid.NewString()+strings.ToLower(ext))
}

func (u *S3Uploader) publicURL(key string) string {
	switch {
	case u.cfg.PublicURL != "":
		return strings.TrimRight(u.cfg.PublicURL, "/") + "/" + key
	case u.cfg.Endpoint != "":
		return strings.TrimRight(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, key)
	}
}
