package file

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/flowmart/flowmart/internal/errs"
	"github.com/flowmart/flowmart/internal/model"
)

const (
	// 签名 URL 有效期，由存储端强制执行
	signedURLTTL = time.Hour
	// 缓存有效期略短于签名有效期，保证取到的 URL 一定仍然可用
	signedURLCacheTTL = 55 * time.Minute
)

// FileDownload 单文件取回结果
type FileDownload struct {
	File        *model.WorkflowFile `json:"file"`
	DownloadURL string              `json:"download_url"`
}

// GetFileDownload 单文件取回
// 授权通过后优先返回新签发的限时 URL；签名失败时降级为记录中的静态 URL
func (s *Service) GetFileDownload(ctx context.Context, requester *model.User, fileID string) (*FileDownload, error) {
	file, err := s.files.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: file %s", errs.ErrNotFound, fileID)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	workflow, err := s.workflows.GetByID(file.WorkflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: workflow %s", errs.ErrNotFound, file.WorkflowID)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if !canRead(workflow, requester) {
		return nil, fmt.Errorf("%w: workflow is not published", errs.ErrAccessDenied)
	}

	downloadURL := file.FileURL
	if file.StorageKey != "" {
		if signed, err := s.signedURL(ctx, file.StorageKey); err != nil {
			log.Printf("failed to sign url for %s, falling back to static url: %v", file.StorageKey, err)
		} else {
			downloadURL = signed
		}
	}

	if err := s.workflows.IncrementDownloads(file.WorkflowID); err != nil {
		return nil, fmt.Errorf("failed to increment downloads: %w", err)
	}

	return &FileDownload{
		File:        file,
		DownloadURL: downloadURL,
	}, nil
}

// signedURL 签发限时 URL，带 redis 缓存
// 缓存只是优化：redis 不可用或未命中时直接签发，任何缓存错误都不影响请求
func (s *Service) signedURL(ctx context.Context, key string) (string, error) {
	cacheKey := "signedurl:" + key

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			return cached, nil
		} else if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("signed url cache read failed for %s: %v", key, err)
		}
	}

	signed, err := s.store.SignedURL(ctx, key, signedURLTTL)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, signed, signedURLCacheTTL).Err(); err != nil {
			log.Printf("signed url cache write failed for %s: %v", key, err)
		}
	}
	return signed, nil
}
