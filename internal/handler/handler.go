package handler

import (
	"github.com/flowmart/flowmart/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Workflow *WorkflowHandler
	File     *FileHandler
	Admin    *AdminHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc),
		Workflow: NewWorkflowHandler(svc),
		File:     NewFileHandler(svc),
		Admin:    NewAdminHandler(svc),
	}
}
