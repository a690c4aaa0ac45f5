// Package file 实现工作流附件的上传、取回、打包与清理
//
// 一致性约定：
//   - 上传时先写对象存储、后写数据库行，中途失败只会留下可回收的孤儿对象，
//     绝不会留下指向空 blob 的记录
//   - 删除时先尽力删除对象、后删除数据库行，行的删除是提交点，
//     存储侧失败只记录日志，不阻塞数据库删除
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/errs"
	"github.com/flowmart/flowmart/internal/model"
	"github.com/flowmart/flowmart/internal/storage"
)

// WorkflowStore 工作流元数据访问
type WorkflowStore interface {
	GetByID(id string) (*model.Workflow, error)
	SetFolderPath(id, folderPath string) error
	IncrementDownloads(id string) error
}

// FileStore 附件元数据访问
type FileStore interface {
	Create(file *model.WorkflowFile) error
	GetByID(id string) (*model.WorkflowFile, error)
	ListByWorkflowID(workflowID string) ([]*model.WorkflowFile, error)
	Delete(id string) error
}

// UserStore 用户元数据访问
type UserStore interface {
	UpdateAvatar(id, avatarURL string) error
}

// Service 附件服务
type Service struct {
	workflows WorkflowStore
	files     FileStore
	users     UserStore
	store     storage.ObjectStore
	cache     *redis.Client // 可为 nil，仅用于签名 URL 缓存
	limits    *config.UploadConfig
	now       func() time.Time
}

// NewService 创建附件服务
func NewService(workflows WorkflowStore, files FileStore, users UserStore, store storage.ObjectStore, cache *redis.Client, limits *config.UploadConfig) *Service {
	return &Service{
		workflows: workflows,
		files:     files,
		users:     users,
		store:     store,
		cache:     cache,
		limits:    limits,
		now:       time.Now,
	}
}

// UploadRequest 上传附件请求
type UploadRequest struct {
	WorkflowID  string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadFile 上传附件
// 顺序固定：写对象 -> 写记录 -> 刷新目录前缀
func (s *Service) UploadFile(ctx context.Context, requester *model.User, req *UploadRequest) (*model.WorkflowFile, error) {
	if requester == nil {
		return nil, errs.ErrUnauthenticated
	}
	if req.FileName == "" || req.Reader == nil {
		return nil, fmt.Errorf("%w: no file provided", errs.ErrValidation)
	}
	if s.limits.MaxFileSize > 0 && req.Size > s.limits.MaxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", errs.ErrValidation, s.limits.MaxFileSize)
	}

	workflow, err := s.workflows.GetByID(req.WorkflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: workflow %s", errs.ErrNotFound, req.WorkflowID)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow.AuthorID != requester.ID && !requester.IsAdmin() {
		return nil, fmt.Errorf("%w: not the workflow author", errs.ErrPermissionDenied)
	}

	// 纳秒时间戳做唯一后缀，同名文件重复上传不会覆盖
	key := storage.ObjectKey(workflow.AuthorID, workflow.ID, req.FileName, s.now().UnixNano())

	fileURL, err := s.store.Put(ctx, key, req.Reader, req.Size, req.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrStorageWrite, err)
	}

	workflowFile := &model.WorkflowFile{
		ID:          uuid.New().String(),
		WorkflowID:  workflow.ID,
		FileName:    req.FileName,
		FileURL:     fileURL,
		FileType:    req.ContentType,
		ContentType: req.ContentType,
		FileSize:    req.Size,
		BucketName:  s.store.Bucket(),
		StorageKey:  key,
	}

	if err := s.files.Create(workflowFile); err != nil {
		// 记录写入失败，回收刚写入的对象；失败也只是留下孤儿对象
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			log.Printf("failed to clean up object %s after db error: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to save file record: %w", err)
	}

	folderPath := storage.FolderPrefix(workflow.AuthorID, workflow.ID)
	if err := s.workflows.SetFolderPath(workflow.ID, folderPath); err != nil {
		return nil, fmt.Errorf("failed to update folder path: %w", err)
	}

	return workflowFile, nil
}

// ListFiles 列出工作流的所有附件
func (s *Service) ListFiles(ctx context.Context, workflowID string) ([]*model.WorkflowFile, error) {
	files, err := s.files.ListByWorkflowID(workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// DeleteFile 删除附件
// 对象删除是尽力而为；记录删除是提交点。重复删除时第二次得到 ErrNotFound
func (s *Service) DeleteFile(ctx context.Context, requester *model.User, fileID string) error {
	if requester == nil {
		return errs.ErrUnauthenticated
	}

	file, err := s.files.GetByID(fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: file %s", errs.ErrNotFound, fileID)
		}
		return fmt.Errorf("failed to get file: %w", err)
	}

	workflow, err := s.workflows.GetByID(file.WorkflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: workflow %s", errs.ErrNotFound, file.WorkflowID)
		}
		return fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow.AuthorID != requester.ID && !requester.IsAdmin() {
		return fmt.Errorf("%w: not the workflow author", errs.ErrPermissionDenied)
	}

	if file.StorageKey != "" {
		if err := s.store.Delete(ctx, file.StorageKey); err != nil {
			log.Printf("failed to delete object %s, continuing with db deletion: %v", file.StorageKey, err)
		}
	}

	if err := s.files.Delete(fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}
	return nil
}

// RemoveWorkflowObjects 清理工作流目录下的所有对象
// 逐个尝试删除全部对象，单个失败只记录日志，绝不提前中止
func (s *Service) RemoveWorkflowObjects(ctx context.Context, ownerID, workflowID string) {
	prefix := storage.FolderPrefix(ownerID, workflowID)

	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		log.Printf("failed to list objects under %s, leaving them as orphans: %v", prefix, err)
		return
	}

	var failed int
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			failed++
			log.Printf("failed to delete object %s: %v", key, err)
		}
	}
	if failed > 0 {
		log.Printf("workflow %s cleanup: %d of %d objects left as orphans", workflowID, failed, len(keys))
	}
}

// AvatarRequest 上传头像请求
type AvatarRequest struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// UploadAvatar 上传管理员头像
func (s *Service) UploadAvatar(ctx context.Context, requester *model.User, req *AvatarRequest) (string, error) {
	if requester == nil {
		return "", errs.ErrUnauthenticated
	}
	if !requester.IsAdmin() {
		return "", fmt.Errorf("%w: admin role required", errs.ErrAccessDenied)
	}
	if req.FileName == "" || req.Reader == nil {
		return "", fmt.Errorf("%w: no file provided", errs.ErrValidation)
	}
	if !strings.HasPrefix(req.ContentType, "image/") {
		return "", fmt.Errorf("%w: file must be an image", errs.ErrValidation)
	}
	if s.limits.MaxAvatarSize > 0 && req.Size > s.limits.MaxAvatarSize {
		return "", fmt.Errorf("%w: avatar exceeds %d bytes", errs.ErrValidation, s.limits.MaxAvatarSize)
	}

	ext := filepath.Ext(req.FileName)
	key := storage.AvatarKey(requester.ID, ext, s.now().UnixMilli())

	avatarURL, err := s.store.Put(ctx, key, req.Reader, req.Size, req.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrStorageWrite, err)
	}

	if err := s.users.UpdateAvatar(requester.ID, avatarURL); err != nil {
		return "", fmt.Errorf("failed to update avatar: %w", err)
	}
	return avatarURL, nil
}

// canRead 读取授权规则，单文件取回与整包下载共用
// 已发布，或请求者是作者，或请求者是管理员
func canRead(workflow *model.Workflow, requester *model.User) bool {
	if workflow.IsPublished {
		return true
	}
	if requester == nil {
		return false
	}
	return workflow.AuthorID == requester.ID || requester.IsAdmin()
}
