// Package workflow 提供工作流的增删改查
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"gorm.io/gorm"

	"github.com/flowmart/flowmart/internal/errs"
	"github.com/flowmart/flowmart/internal/model"
	"github.com/flowmart/flowmart/internal/repository"
)

// FolderCleaner 工作流删除时清理对象存储目录
// 由 file 服务实现，清理为尽力而为，绝不阻塞数据库删除
type FolderCleaner interface {
	RemoveWorkflowObjects(ctx context.Context, ownerID, workflowID string)
}

// Service 工作流服务
type Service struct {
	repo    *repository.Repositories
	cleaner FolderCleaner
}

// NewService 创建工作流服务
func NewService(repo *repository.Repositories, cleaner FolderCleaner) *Service {
	return &Service{repo: repo, cleaner: cleaner}
}

// CreateRequest 创建工作流请求
type CreateRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Content     string   `json:"content" binding:"required"`
	Platform    string   `json:"platform"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Price       float64  `json:"price"`
	IsPaid      bool     `json:"is_paid"`
}

// UpdateRequest 更新工作流请求
type UpdateRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	Platform    *string  `json:"platform"`
	Category    *string  `json:"category"`
	Difficulty  *string  `json:"difficulty"`
	Price       *float64 `json:"price"`
	IsPaid      *bool    `json:"is_paid"`
	IsPublished *bool    `json:"is_published"`
}

// normalizeContent 规范化工作流 JSON 定义
// n8n 导出的 JSON 常被手工编辑过，先用 jsonrepair 修复再校验
func normalizeContent(content string) (string, error) {
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return "", fmt.Errorf("%w: workflow content is not valid JSON", errs.ErrValidation)
	}
	if !json.Valid([]byte(repaired)) {
		return "", fmt.Errorf("%w: workflow content is not valid JSON", errs.ErrValidation)
	}
	return repaired, nil
}

// Create 创建工作流
func (s *Service) Create(ctx context.Context, authorID string, req *CreateRequest) (*model.Workflow, error) {
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	platform := req.Platform
	if platform == "" {
		platform = "n8n"
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "beginner"
	}

	workflow := &model.Workflow{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Content:     content,
		Platform:    platform,
		Category:    req.Category,
		Difficulty:  difficulty,
		Price:       req.Price,
		IsPaid:      req.IsPaid,
	}

	if err := s.repo.Workflow.Create(workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}
	return workflow, nil
}

// Get 获取工作流并递增浏览计数
func (s *Service) Get(ctx context.Context, id string) (*model.Workflow, error) {
	workflow, err := s.repo.Workflow.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: workflow %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if err := s.repo.Workflow.IncrementViews(id); err != nil {
		return nil, fmt.Errorf("failed to increment views: %w", err)
	}
	workflow.Views++

	return workflow, nil
}

// List 分页查询工作流
// 只有管理员可以看到未发布的工作流
func (s *Service) List(ctx context.Context, requester *model.User, filter *repository.ListFilter) ([]*model.Workflow, int64, error) {
	if filter.IncludeUnpublished && (requester == nil || !requester.IsAdmin()) {
		filter.IncludeUnpublished = false
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 10
	}

	workflows, total, err := s.repo.Workflow.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list workflows: %w", err)
	}
	return workflows, total, nil
}

// Update 更新工作流，仅限作者本人
func (s *Service) Update(ctx context.Context, requester *model.User, id string, req *UpdateRequest) (*model.Workflow, error) {
	workflow, err := s.repo.Workflow.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: workflow %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow.AuthorID != requester.ID {
		return nil, fmt.Errorf("%w: not the workflow author", errs.ErrPermissionDenied)
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Content != nil {
		content, err := normalizeContent(*req.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if req.Platform != nil {
		fields["platform"] = *req.Platform
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Difficulty != nil {
		fields["difficulty"] = *req.Difficulty
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.IsPaid != nil {
		fields["is_paid"] = *req.IsPaid
	}
	if req.IsPublished != nil {
		fields["is_published"] = *req.IsPublished
	}

	if len(fields) > 0 {
		if err := s.repo.Workflow.Update(id, fields); err != nil {
			return nil, fmt.Errorf("failed to update workflow: %w", err)
		}
	}

	return s.repo.Workflow.GetByID(id)
}

// Delete 删除工作流，作者本人或管理员
// 先尽力清理对象存储目录，再删除附件记录与工作流记录；数据库删除是提交点
func (s *Service) Delete(ctx context.Context, requester *model.User, id string) error {
	workflow, err := s.repo.Workflow.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: workflow %s", errs.ErrNotFound, id)
		}
		return fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow.AuthorID != requester.ID && !requester.IsAdmin() {
		return fmt.Errorf("%w: not the workflow author", errs.ErrPermissionDenied)
	}

	s.cleaner.RemoveWorkflowObjects(ctx, workflow.AuthorID, workflow.ID)

	if err := s.repo.File.DeleteByWorkflowID(id); err != nil {
		return fmt.Errorf("failed to delete workflow files: %w", err)
	}
	if err := s.repo.Workflow.Delete(id); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}
