package repository

import (
	"github.com/flowmart/flowmart/internal/model"
	"gorm.io/gorm"
)

// FileRepository 工作流附件数据访问
type FileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建附件仓库
func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create 创建附件记录
func (r *FileRepository) Create(file *model.WorkflowFile) error {
	return r.db.Create(file).Error
}

// GetByID 根据ID获取附件
func (r *FileRepository) GetByID(id string) (*model.WorkflowFile, error) {
	var file model.WorkflowFile
	err := r.db.Where("id = ?", id).First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByWorkflowID 列出工作流的所有附件
func (r *FileRepository) ListByWorkflowID(workflowID string) ([]*model.WorkflowFile, error) {
	var files []*model.WorkflowFile
	err := r.db.Where("workflow_id = ?", workflowID).Order("created_at DESC").Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Delete 删除附件记录
func (r *FileRepository) Delete(id string) error {
	return r.db.Delete(&model.WorkflowFile{}, "id = ?", id).Error
}

// DeleteByWorkflowID 删除工作流的所有附件记录
func (r *FileRepository) DeleteByWorkflowID(workflowID string) error {
	return r.db.Delete(&model.WorkflowFile{}, "workflow_id = ?", workflowID).Error
}
