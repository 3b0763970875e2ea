// Package storage はS3互換のオブジェクトストレージへの保存を提供します。
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	httpclient "profile_backend/internal/platform/http"
)

// ErrNotConfigured はバケットまたはリージョンが未設定の場合に返されます。
var ErrNotConfigured = errors.New("storage: s3 is not configured")

const uploadTimeout = 30 * time.Second

// Config はS3の設定です。
//   - Endpoint: MinIOなどS3互換サービスのURL。設定時はパス形式のアドレッシングを使います。
//   - PublicBaseURL: 公開URLのベース（CDNなど）。未設定の場合はバケットのURLを使います。
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	PublicBaseURL   string
}

// LoadConfig は環境変数からS3の設定を読み込みます。
func LoadConfig() Config {
	return Config{
		Region:          os.Getenv("AWS_REGION"),
		Bucket:          os.Getenv("AWS_BUCKET_NAME"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Endpoint:        os.Getenv("S3_ENDPOINT"),
		PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
	}
}

// Configured はバケットとリージョンが揃っているかを返します。
func (c Config) Configured() bool {
	return c.Region != "" && c.Bucket != ""
}

// putObjectAPI はS3クライアントのうち利用する操作です。
type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage はS3にオブジェクトを保存し、公開URLを返します。
type S3Storage struct {
	client  putObjectAPI
	bucket  string
	baseURL string
}

// NewS3Storage は設定からS3クライアントを生成します。
// アクセスキーが指定されていない場合はSDKの既定の認証情報チェーンを使います。
func NewS3Storage(ctx context.Context, cfg Config) (*S3Storage, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpclient.NewHTTPClient(uploadTimeout, httpclient.WithMaxIdleConnsPerHost(32))),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL(cfg)}, nil
}

// publicBaseURL はオブジェクトの公開URLのベースを決めます。
func publicBaseURL(cfg Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// URL はキーに対応する公開URLを返します。
func (s *S3Storage) URL(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/" + strings.Join(segments, "/")
}

// Put はオブジェクトを保存し、公開URLを返します。
func (s *S3Storage) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put %s: %w", key, err)
	}

	slog.Info("object stored", "bucket", s.bucket, "key", key, "bytes", len(body))
	return s.URL(key), nil
}
