package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/worktrack/internal/worktrack/repository"
	"github.com/redis/go-redis/v9"
)

// statsCacheTTL 看板统计缓存时长
const statsCacheTTL = 30 * time.Second

// StatsService 看板统计服务
type StatsService struct {
	workRepo     *repository.WorkRepository
	workflowRepo *repository.WorkflowRepository
	stepRepo     *repository.StepRepository
	rdb          *redis.Client
}

// NewStatsService 创建统计服务
func NewStatsService(
	workRepo *repository.WorkRepository,
	workflowRepo *repository.WorkflowRepository,
	stepRepo *repository.StepRepository,
	rdb *redis.Client,
) *StatsService {
	return &StatsService{
		workRepo:     workRepo,
		workflowRepo: workflowRepo,
		stepRepo:     stepRepo,
		rdb:          rdb,
	}
}

// DashboardStats 看板统计结果
type DashboardStats struct {
	Works          map[string]int64 `json:"works"`
	Workflows      map[string]int64 `json:"workflows"`
	StepsCompleted int64            `json:"steps_completed"`
	StepsTotal     int64            `json:"steps_total"`
}

// Overview 汇总各集合的状态计数，结果缓存30秒，写路径负责失效
func (s *StatsService) Overview(ctx context.Context) (*DashboardStats, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, statsCacheKey).Result(); err == nil && cached != "" {
			var stats DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	workCounts, err := s.workRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count works: %w", err)
	}
	workflowCounts, err := s.workflowRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count workflows: %w", err)
	}
	completed, total, err := s.stepRepo.CountCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("count steps: %w", err)
	}

	stats := &DashboardStats{
		Works:          workCounts,
		Workflows:      workflowCounts,
		StepsCompleted: completed,
		StepsTotal:     total,
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}

	return stats, nil
}
