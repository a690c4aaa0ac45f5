// Package storage 封装对象存储访问
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore 对象存储接口
type ObjectStore interface {
	// Put 写入对象，返回可直接访问的 URL
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	// Get 读取对象内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete 删除对象
	Delete(ctx context.Context, key string) error
	// List 列出指定前缀下的所有对象键
	List(ctx context.Context, prefix string) ([]string, error)
	// SignedURL 生成限时访问 URL
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Bucket 返回 bucket 名称
	Bucket() string
}
