package file

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/flowmart/flowmart/internal/errs"
	"github.com/flowmart/flowmart/internal/model"
	"github.com/flowmart/flowmart/internal/storage"
)

var archiveNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Archive 打包结果
type Archive struct {
	FileName string
	Data     []byte
}

// DownloadArchive 将工作流目录下的全部对象打包为一个 zip
// 单个对象读取失败会被跳过，全部失败才算打包失败；下载计数整包只加一次
func (s *Service) DownloadArchive(ctx context.Context, requester *model.User, workflowID string) (*Archive, error) {
	workflow, err := s.workflows.GetByID(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: workflow %s", errs.ErrNotFound, workflowID)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if !canRead(workflow, requester) {
		return nil, fmt.Errorf("%w: workflow is not published", errs.ErrAccessDenied)
	}

	data, err := s.assembleZip(ctx, workflow.AuthorID, workflow.ID)
	if err != nil {
		return nil, err
	}

	if err := s.workflows.IncrementDownloads(workflow.ID); err != nil {
		return nil, fmt.Errorf("failed to increment downloads: %w", err)
	}

	return &Archive{
		FileName: archiveNameChars.ReplaceAllString(workflow.Title, "_") + ".zip",
		Data:     data,
	}, nil
}

// assembleZip 列出目录下所有对象并流式写入 zip
func (s *Service) assembleZip(ctx context.Context, ownerID, workflowID string) ([]byte, error) {
	prefix := storage.FolderPrefix(ownerID, workflowID)

	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorageRead, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: workflow %s has no stored objects", errs.ErrNoFilesFound, workflowID)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	var added int
	for _, key := range keys {
		// 打包受请求超时约束，超时必须显式失败而不是返回截断的 zip
		if err := ctx.Err(); err != nil {
			zw.Close()
			return nil, fmt.Errorf("%w: %v", errs.ErrArchiveAssembly, err)
		}

		content, err := s.fetchObject(ctx, key)
		if err != nil {
			log.Printf("skipping object %s in archive: %v", key, err)
			continue
		}

		// 条目名去掉目录前缀，zip 内是平铺的文件名
		entry, err := zw.Create(strings.TrimPrefix(key, prefix))
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("%w: %v", errs.ErrArchiveAssembly, err)
		}
		if _, err := entry.Write(content); err != nil {
			zw.Close()
			return nil, fmt.Errorf("%w: %v", errs.ErrArchiveAssembly, err)
		}
		added++
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrArchiveAssembly, err)
	}
	if added == 0 {
		return nil, fmt.Errorf("%w: none of %d objects could be fetched", errs.ErrArchiveAssembly, len(keys))
	}

	return buf.Bytes(), nil
}

// fetchObject 完整读取单个对象
// 先读完再写入 zip，读取中途失败不会在包里留下残缺条目
func (s *Service) fetchObject(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return content, nil
}
