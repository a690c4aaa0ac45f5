package service

import (
	"github.com/redis/go-redis/v9"

	"github.com/flowmart/flowmart/internal/config"
	"github.com/flowmart/flowmart/internal/repository"
	"github.com/flowmart/flowmart/internal/service/auth"
	"github.com/flowmart/flowmart/internal/service/file"
	"github.com/flowmart/flowmart/internal/service/workflow"
	"github.com/flowmart/flowmart/internal/storage"
)

// Services 服务集合
type Services struct {
	Auth     *auth.Service
	Workflow *workflow.Service
	File     *file.Service

	Config *config.Config
}

// NewServices 创建所有服务
// 对象存储客户端与数据库连接都在进程启动时构造一次，作为依赖注入各服务
func NewServices(repos *repository.Repositories, cfg *config.Config, store storage.ObjectStore, redisClient *redis.Client) (*Services, error) {
	fileSvc := file.NewService(repos.Workflow, repos.File, repos.User, store, redisClient, &cfg.Upload)

	return &Services{
		Auth:     auth.NewService(repos, &cfg.JWT),
		Workflow: workflow.NewService(repos, fileSvc),
		File:     fileSvc,
		Config:   cfg,
	}, nil
}
