package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/worktrack/internal/worktrack/entity"
	"github.com/bitfantasy/worktrack/internal/worktrack/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HoursPerDay 步骤工时折算为工作流天数的除数
const HoursPerDay = 24

// WorkflowService 工作流构建与进度服务
type WorkflowService struct {
	workRepo     *repository.WorkRepository
	workflowRepo *repository.WorkflowRepository
	stepRepo     *repository.StepRepository
	rdb          *redis.Client
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(
	workRepo *repository.WorkRepository,
	workflowRepo *repository.WorkflowRepository,
	stepRepo *repository.StepRepository,
	rdb *redis.Client,
) *WorkflowService {
	return &WorkflowService{
		workRepo:     workRepo,
		workflowRepo: workflowRepo,
		stepRepo:     stepRepo,
		rdb:          rdb,
	}
}

// DraftStep 激活前在工作集中组装的步骤草稿
type DraftStep struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration" binding:"required,min=1"` // 小时
	Order       int    `json:"order"`
}

// AddStepRequest 追加步骤请求
type AddStepRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Duration    int    `json:"duration" binding:"required,min=1"`
	Order       int    `json:"order"`
}

// UpdateStepRequest 步骤进度更新请求
//
// 照片列表与定位信息整体替换，不做合并——调用方在自己的工作副本里
// 增删后整包提交。
type UpdateStepRequest struct {
	Status           string           `json:"status"`
	CompletionPhotos []string         `json:"completion_photos"`
	LocationData     *entity.Location `json:"location_data"`
}

// RemoveDraftStep 从草稿工作集中移除指定下标的步骤，
// 其余步骤的 order 重排为连续的零基序号（保持原有相对顺序）
func RemoveDraftStep(steps []DraftStep, index int) ([]DraftStep, error) {
	if index < 0 || index >= len(steps) {
		return nil, fmt.Errorf("step index out of range: %d", index)
	}
	remaining := make([]DraftStep, 0, len(steps)-1)
	for i, step := range steps {
		if i == index {
			continue
		}
		step.Order = len(remaining)
		remaining = append(remaining, step)
	}
	return remaining, nil
}

// EstimateDurationDays 聚合时长：步骤工时总和按天向上取整
func EstimateDurationDays(steps []DraftStep) int {
	total := 0
	for _, step := range steps {
		total += step.Duration
	}
	return (total + HoursPerDay - 1) / HoursPerDay
}

// List 获取工作流列表（含步骤）
func (s *WorkflowService) List(ctx context.Context, filters map[string]interface{}) ([]entity.Workflow, error) {
	workflows, err := s.workflowRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return workflows, nil
}

// Get 获取工作流详情
func (s *WorkflowService) Get(ctx context.Context, id string) (*entity.Workflow, error) {
	workflow, err := s.workflowRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return workflow, nil
}

// GetStep 获取单个步骤
func (s *WorkflowService) GetStep(ctx context.Context, id string) (*entity.WorkflowStep, error) {
	step, err := s.stepRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find step: %w", err)
	}
	return step, nil
}

// Activate 以草稿工作集为工单激活一条工作流
//
// 单个事务内：创建 active 工作流、按工作集顺序落库全部步骤
// （pending、空照片、无定位、无完成时间）、工单推进到 in_progress。
// 空工作集直接拒绝——没有步骤的工作流不允许激活。
func (s *WorkflowService) Activate(ctx context.Context, workID string, steps []DraftStep) (*entity.Workflow, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow requires at least one step: %w", ErrInvalid)
	}

	work, err := s.workRepo.FindByID(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("find work: %w", err)
	}
	if work.Status == entity.WorkStatusCompleted {
		return nil, fmt.Errorf("cannot activate workflow for completed work: %w", ErrInvalid)
	}

	now := time.Now()
	workflow := &entity.Workflow{
		ID:          uuid.New().String()[:32],
		WorkID:      work.ID,
		Title:       entity.WorkflowTitlePrefix + work.Title,
		Description: "Workflow created for work: " + work.Description,
		Duration:    EstimateDurationDays(steps),
		Status:      entity.WorkflowStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.workRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workflow).Error; err != nil {
			return fmt.Errorf("create workflow: %w", err)
		}

		records := make([]entity.WorkflowStep, 0, len(steps))
		for i, step := range steps {
			records = append(records, entity.WorkflowStep{
				ID:               uuid.New().String()[:32],
				WorkflowID:       workflow.ID,
				Title:            step.Title,
				Description:      step.Description,
				Duration:         step.Duration,
				StepOrder:        i,
				Status:           entity.StepStatusPending,
				CompletionPhotos: entity.StringArray{},
				LocationData:     nil,
				CompletedAt:      nil,
				CreatedAt:        now,
			})
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("create steps: %w", err)
		}
		workflow.Steps = records

		if work.Status == entity.WorkStatusPending {
			if err := tx.Model(&entity.Work{}).
				Where("id = ?", work.ID).
				Updates(map[string]interface{}{
					"status":     entity.WorkStatusInProgress,
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("update work status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	clearStatsCache(ctx, s.rdb)
	return workflow, nil
}

// AddStep 向已持久化的工作流追加步骤，只允许尾部追加：
// order 必须等于当前已有步骤数
func (s *WorkflowService) AddStep(ctx context.Context, workflowID string, req *AddStepRequest) (*entity.WorkflowStep, error) {
	if _, err := s.workflowRepo.FindByID(ctx, workflowID); err != nil {
		return nil, fmt.Errorf("find workflow: %w", err)
	}

	count, err := s.stepRepo.CountByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("count steps: %w", err)
	}
	if req.Order != int(count) {
		return nil, fmt.Errorf("step order must be %d, got %d: %w", count, req.Order, ErrInvalid)
	}

	step := &entity.WorkflowStep{
		ID:               uuid.New().String()[:32],
		WorkflowID:       workflowID,
		Title:            req.Title,
		Description:      req.Description,
		Duration:         req.Duration,
		StepOrder:        req.Order,
		Status:           entity.StepStatusPending,
		CompletionPhotos: entity.StringArray{},
		CreatedAt:        time.Now(),
	}
	if err := s.stepRepo.Create(ctx, step); err != nil {
		return nil, fmt.Errorf("create step: %w", err)
	}

	clearStatsCache(ctx, s.rdb)
	return step, nil
}

// UpdateStep 更新步骤进度
//
// completed_at 只在进入 completed 的那次迁移写入；已完成状态下重复
// 保存不改动它；离开 completed 时清空，保证时间戳与状态始终一致。
func (s *WorkflowService) UpdateStep(ctx context.Context, stepID string, req *UpdateStepRequest) (*entity.WorkflowStep, error) {
	step, err := s.stepRepo.FindByID(ctx, stepID)
	if err != nil {
		return nil, fmt.Errorf("find step: %w", err)
	}

	if req.Status != "" {
		if !entity.ValidStepStatus(req.Status) {
			return nil, fmt.Errorf("invalid step status %s: %w", req.Status, ErrInvalid)
		}
		if req.Status == entity.StepStatusCompleted && step.Status != entity.StepStatusCompleted {
			now := time.Now()
			step.CompletedAt = &now
		} else if req.Status != entity.StepStatusCompleted {
			step.CompletedAt = nil
		}
		step.Status = req.Status
	}

	step.CompletionPhotos = entity.StringArray(req.CompletionPhotos)
	if step.CompletionPhotos == nil {
		step.CompletionPhotos = entity.StringArray{}
	}
	step.LocationData = req.LocationData

	if err := s.stepRepo.Update(ctx, step); err != nil {
		return nil, fmt.Errorf("update step: %w", err)
	}

	clearStatsCache(ctx, s.rdb)
	return step, nil
}

// ChangeStatus 更新工作流状态
//
// 工作流到达 completed 时，经 work_id 外键定位所属工单并把它推进到
// completed（单向链，已完成的工单保持不动）。激活方向上，空工作流
// 不允许切到 active。
func (s *WorkflowService) ChangeStatus(ctx context.Context, workflowID, newStatus string) (*entity.Workflow, error) {
	if !entity.ValidWorkflowStatus(newStatus) {
		return nil, fmt.Errorf("invalid workflow status %s: %w", newStatus, ErrInvalid)
	}

	workflow, err := s.workflowRepo.FindByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("find workflow: %w", err)
	}

	if newStatus == entity.WorkflowStatusActive {
		steps, err := s.stepRepo.ListByWorkflow(ctx, workflowID)
		if err != nil {
			return nil, fmt.Errorf("list steps: %w", err)
		}
		if len(steps) == 0 {
			return nil, fmt.Errorf("cannot activate workflow without steps: %w", ErrInvalid)
		}
	}

	workflow.Status = newStatus
	workflow.UpdatedAt = time.Now()
	if err := s.workflowRepo.Update(ctx, workflow); err != nil {
		return nil, fmt.Errorf("update workflow: %w", err)
	}

	if newStatus == entity.WorkflowStatusCompleted {
		work, err := s.workRepo.FindByID(ctx, workflow.WorkID)
		if err != nil {
			return nil, fmt.Errorf("find owning work: %w", err)
		}
		if entity.CanWorkTransition(work.Status, entity.WorkStatusCompleted) {
			if err := s.workRepo.UpdateStatus(ctx, work.ID, entity.WorkStatusCompleted); err != nil {
				return nil, fmt.Errorf("complete work: %w", err)
			}
		}
	}

	clearStatsCache(ctx, s.rdb)
	return workflow, nil
}
