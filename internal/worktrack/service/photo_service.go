package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitfantasy/worktrack/internal/config"
	"github.com/minio/minio-go/v7"
)

// MaxPhotoSize 单张完成照片的大小上限
const MaxPhotoSize = 5 * 1024 * 1024

// allowedPhotoTypes 完成照片允许的MIME类型
var allowedPhotoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
	"image/webp": true,
}

// PhotoService 步骤完成照片的对象存储服务
//
// 对象键为 <stepID>/<毫秒时间戳>.<扩展名>，步骤维度隔离；
// 桶为公开读，返回的URL可直接被前端引用。
type PhotoService struct {
	client *minio.Client
	bucket string
	// baseURL 公网访问前缀，形如 http(s)://<endpoint>
	baseURL string
}

// NewPhotoService 创建照片服务
func NewPhotoService(client *minio.Client, cfg config.MinIOConfig) *PhotoService {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	baseURL := cfg.PublicURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}
	return &PhotoService{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// EnsureBucket 幂等创建照片桶并设置公开读策略
func (s *PhotoService) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			// 并发启动时桶可能已被创建
			exists, existsErr := s.client.BucketExists(ctx, s.bucket)
			if existsErr != nil || !exists {
				return fmt.Errorf("make bucket: %w", err)
			}
		}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Upload 上传一张完成照片并返回公开URL
//
// 超出5MB或不在MIME白名单内的文件直接拒绝。
func (s *PhotoService) Upload(ctx context.Context, stepID string, reader io.Reader, size int64, contentType, filename string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	if size > MaxPhotoSize {
		return "", fmt.Errorf("photo exceeds size limit of %d bytes: %w", MaxPhotoSize, ErrInvalid)
	}
	if !allowedPhotoTypes[contentType] {
		return "", fmt.Errorf("unsupported photo type %s: %w", contentType, ErrInvalid)
	}

	ext := filepath.Ext(filename)
	objectName := fmt.Sprintf("%s/%d%s", stepID, time.Now().UnixMilli(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "max-age=3600",
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectName), nil
}

// photoObjectKey 从公开URL还原对象键，取URL的最后两段（stepID/文件名）
func photoObjectKey(url string) (string, error) {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid photo url %s: %w", url, ErrInvalid)
	}
	return strings.Join(parts[len(parts)-2:], "/"), nil
}

// Delete 按公开URL删除照片
func (s *PhotoService) Delete(ctx context.Context, url string) error {
	if s.client == nil {
		return fmt.Errorf("object storage not configured")
	}

	objectName, err := photoObjectKey(url)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}
