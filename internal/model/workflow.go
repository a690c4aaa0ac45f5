package model

import "time"

// Workflow 工作流
type Workflow struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	AuthorID    string    `gorm:"index;size:36;not null" json:"author_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Content     string    `gorm:"type:text" json:"content"` // 规范化后的工作流 JSON 定义
	Platform    string    `gorm:"size:50;default:n8n" json:"platform"`
	Category    string    `gorm:"index;size:100" json:"category"`
	Difficulty  string    `gorm:"size:20;default:beginner" json:"difficulty"`
	Price       float64   `gorm:"default:0" json:"price"`
	IsPaid      bool      `gorm:"default:false" json:"is_paid"`
	IsPublished bool      `gorm:"index;default:false" json:"is_published"`
	FolderPath  string    `gorm:"size:500" json:"folder_path"` // 对象存储中的目录前缀
	Views       int64     `gorm:"default:0" json:"views"`
	Downloads   int64     `gorm:"default:0" json:"downloads"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Files []WorkflowFile `gorm:"foreignKey:WorkflowID" json:"files,omitempty"`
}

// TableName 指定表名
func (Workflow) TableName() string {
	return "workflows"
}
