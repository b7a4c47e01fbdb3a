package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/worktrack/internal/config"
	"github.com/bitfantasy/worktrack/internal/worktrack/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// ErrInvalid 业务校验失败（非法状态迁移、枚举取值、步骤序号等），
// 处理层据此映射为参数错误响应
var ErrInvalid = errors.New("invalid request")

// Services 服务集合
type Services struct {
	Work     *WorkService
	Workflow *WorkflowService
	Photo    *PhotoService
	Stats    *StatsService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			// 对象存储不可用时照常启动，照片接口返回错误
			minioClient = nil
		}
	}

	photoSvc := NewPhotoService(minioClient, cfg.MinIO)
	statsSvc := NewStatsService(repos.Work, repos.Workflow, repos.Step, rdb)

	return &Services{
		Work:     NewWorkService(repos.Work, repos.Workflow, rdb),
		Workflow: NewWorkflowService(repos.Work, repos.Workflow, repos.Step, rdb),
		Photo:    photoSvc,
		Stats:    statsSvc,
	}
}

// statsCacheKey 看板统计缓存键，由各写路径失效
const statsCacheKey = "worktrack:stats:overview"

// clearStatsCache 写操作后使统计缓存失效
func clearStatsCache(ctx context.Context, rdb *redis.Client) {
	if rdb != nil {
		rdb.Del(ctx, statsCacheKey)
	}
}
