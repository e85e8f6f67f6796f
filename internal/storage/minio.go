package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"resumeHub/internal/config"
	"resumeHub/internal/metrics"
)

// Client 封装 MinIO 客户端，面向单个公开可读的 Bucket。
type Client struct {
	internalClient *minio.Client
	bucketName     string
	publicBaseURL  string
	logger         *zap.Logger
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(cfg config.MinIOConfig, logger *zap.Logger) (*Client, error) {
	bucketLookup := minio.BucketLookupAuto
	switch strings.ToLower(strings.TrimSpace(cfg.BucketLookup)) {
	case "", "auto":
		bucketLookup = minio.BucketLookupAuto
	case "dns":
		bucketLookup = minio.BucketLookupDNS
	case "path":
		bucketLookup = minio.BucketLookupPath
	default:
		return nil, fmt.Errorf("invalid minio bucket lookup %q", cfg.BucketLookup)
	}

	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: bucketLookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	publicBase, err := publicBaseURL(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		internalClient: internalClient,
		bucketName:     cfg.Bucket,
		publicBaseURL:  publicBase,
		logger:         logger,
	}, nil
}

// publicBaseURL 未显式配置时回落到 <scheme>://<endpoint>/<bucket>。
func publicBaseURL(cfg config.MinIOConfig) (string, error) {
	base := strings.TrimSpace(cfg.PublicBaseURL)
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse minio public base url: %w", err)
	}
	if parsed.Host == "" {
		return "", errors.New("invalid minio public base url, host missing")
	}
	return strings.TrimRight(base, "/"), nil
}

// UploadFile 将对象上传到 Bucket，并返回上传结果。
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	start := time.Now()
	opts := minio.PutObjectOptions{ContentType: contentType}
	info, err := c.internalClient.PutObject(ctx, c.bucketName, objectName, reader, size, opts)
	metrics.ObserveUpstream("storage", "put_object", start, err)
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// PublicURL 返回对象的公开访问链接。
func (c *Client) PublicURL(objectKey string) string {
	segments := strings.Split(objectKey, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.publicBaseURL + "/" + strings.Join(segments, "/")
}

// ObjectExists 判断对象键是否已被占用。
func (c *Client) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	start := time.Now()
	_, err := c.internalClient.StatObject(ctx, c.bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil && IsNoSuchKey(err) {
		metrics.ObserveUpstream("storage", "stat_object", start, nil)
		return false, nil
	}
	metrics.ObserveUpstream("storage", "stat_object", start, err)
	if err != nil {
		return false, fmt.Errorf("stat object %q: %w", objectKey, err)
	}
	return true, nil
}

// ListObjects 列出指定前缀下的对象元数据。
// 列举协程随 ctx 结束，因此任何返回路径都会取消它。
func (c *Client) ListObjects(ctx context.Context, prefix string) ([]ObjectMeta, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objCh := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	result := make([]ObjectMeta, 0, 64)
	for object := range objCh {
		if object.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		result = append(result, ObjectMeta{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return result, nil
}

// DeleteObject 删除指定对象。
// 若对象不存在会被视为成功（幂等）。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	start := time.Now()
	err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil && IsNoSuchKey(err) {
		err = nil
	}
	metrics.ObserveUpstream("storage", "remove_object", start, err)
	if err != nil {
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// DeleteObjects 删除全部指定对象，失败会聚合返回。
func (c *Client) DeleteObjects(ctx context.Context, keys []string) error {
	errs := make([]error, 0)
	for _, key := range keys {
		if err := c.DeleteObject(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	c.logger.Error("delete minio objects failed",
		zap.Int("requested", len(keys)),
		zap.Int("failed_count", len(errs)),
	)
	return fmt.Errorf("delete %d objects: %w", len(errs), errors.Join(errs...))
}
