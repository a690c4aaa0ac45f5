package model

import "time"

// WorkflowFile 工作流附件
// 行的存在是文件存在的唯一依据；对象存储中的 blob 以 StorageKey 为准
type WorkflowFile struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkflowID  string    `gorm:"index;size:36;not null" json:"workflow_id"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FileURL     string    `gorm:"size:1000" json:"file_url"`
	FileType    string    `gorm:"size:100" json:"file_type"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	FileSize    int64     `json:"file_size"`
	BucketName  string    `gorm:"size:255" json:"bucket_name"`
	StorageKey  string    `gorm:"uniqueIndex;size:1000" json:"storage_key"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (WorkflowFile) TableName() string {
	return "workflow_files"
}
