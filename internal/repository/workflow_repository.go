package repository

import (
	"github.com/flowmart/flowmart/internal/model"
	"gorm.io/gorm"
)

// WorkflowRepository 工作流数据访问
type WorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository 创建工作流仓库
func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create 创建工作流
func (r *WorkflowRepository) Create(workflow *model.Workflow) error {
	return r.db.Create(workflow).Error
}

// GetByID 获取工作流
func (r *WorkflowRepository) GetByID(id string) (*model.Workflow, error) {
	var workflow model.Workflow
	err := r.db.Where("id = ?", id).First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

// ListFilter 列表查询条件
type ListFilter struct {
	Category           string
	AuthorID           string
	IncludeUnpublished bool
	Page               int
	PageSize           int
}

// List 分页查询工作流
func (r *WorkflowRepository) List(filter *ListFilter) ([]*model.Workflow, int64, error) {
	query := r.db.Model(&model.Workflow{})

	if !filter.IncludeUnpublished {
		query = query.Where("is_published = ?", true)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.AuthorID != "" {
		query = query.Where("author_id = ?", filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workflows []*model.Workflow
	offset := (filter.Page - 1) * filter.PageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(filter.PageSize).Find(&workflows).Error
	if err != nil {
		return nil, 0, err
	}
	return workflows, total, nil
}

// Update 更新工作流字段
func (r *WorkflowRepository) Update(id string, fields map[string]interface{}) error {
	return r.db.Model(&model.Workflow{}).Where("id = ?", id).Updates(fields).Error
}

// SetFolderPath 设置对象存储目录前缀
func (r *WorkflowRepository) SetFolderPath(id, folderPath string) error {
	return r.db.Model(&model.Workflow{}).Where("id = ?", id).Update("folder_path", folderPath).Error
}

// IncrementViews 原子递增浏览计数
func (r *WorkflowRepository) IncrementViews(id string) error {
	return r.db.Model(&model.Workflow{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// IncrementDownloads 原子递增下载计数
// 并发递增依赖数据库的原子更新，应用层不做读改写
func (r *WorkflowRepository) IncrementDownloads(id string) error {
	return r.db.Model(&model.Workflow{}).Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
}

// Delete 删除工作流
func (r *WorkflowRepository) Delete(id string) error {
	return r.db.Delete(&model.Workflow{}, "id = ?", id).Error
}
