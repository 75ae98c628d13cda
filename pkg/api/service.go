package api

import (
	"context"

	"urlsnap/internal/config"
	"urlsnap/internal/logger"
	"urlsnap/internal/service"
	"urlsnap/internal/storage"
	"urlsnap/pkg/model"
)

// Service 服务接口
type Service interface {
	// Fetch 抓取一批 URL 并返回每个 URL 的快照结果
	Fetch(ctx context.Context, urls []string) (model.Report, error)
}

// NewService 创建并返回服务接口实现；store 为 nil 时不持久化会话结果
func NewService(cfg *config.Config, store *storage.Store, l logger.Logger) Service {
	return service.New(cfg, store, l)
}
