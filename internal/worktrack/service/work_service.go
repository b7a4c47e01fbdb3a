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

// WorkService 工单生命周期服务
//
// 工单独占其名下的工作流，工作流独占其步骤。级联删除与深度复制
// 在单个事务内完成，避免部分失败后三张表互相不一致。
type WorkService struct {
	workRepo     *repository.WorkRepository
	workflowRepo *repository.WorkflowRepository
	rdb          *redis.Client
}

// NewWorkService 创建工单服务
func NewWorkService(workRepo *repository.WorkRepository, workflowRepo *repository.WorkflowRepository, rdb *redis.Client) *WorkService {
	return &WorkService{
		workRepo:     workRepo,
		workflowRepo: workflowRepo,
		rdb:          rdb,
	}
}

// CreateWorkRequest 创建工单请求
type CreateWorkRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	AssignedTo  string     `json:"assigned_to" binding:"required"`
	Role        string     `json:"role"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date" binding:"required"`
}

// UpdateWorkRequest 更新工单请求（部分字段合并）
type UpdateWorkRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
}

// List 获取工单列表
func (s *WorkService) List(ctx context.Context, filters map[string]interface{}) ([]entity.Work, error) {
	works, err := s.workRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	return works, nil
}

// Get 获取工单详情
func (s *WorkService) Get(ctx context.Context, id string) (*entity.Work, error) {
	work, err := s.workRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find work: %w", err)
	}
	return work, nil
}

// Create 创建工单，role/priority 缺省为 clerk/medium，状态始于 pending
func (s *WorkService) Create(ctx context.Context, req *CreateWorkRequest) (*entity.Work, error) {
	role := req.Role
	if role == "" {
		role = entity.WorkRoleClerk
	}
	if !entity.ValidWorkRole(role) {
		return nil, fmt.Errorf("invalid role %s: %w", role, ErrInvalid)
	}
	priority := req.Priority
	if priority == "" {
		priority = entity.WorkPriorityMedium
	}
	if !entity.ValidWorkPriority(priority) {
		return nil, fmt.Errorf("invalid priority %s: %w", priority, ErrInvalid)
	}

	now := time.Now()
	work := &entity.Work{
		ID:          uuid.New().String()[:32],
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Role:        role,
		Status:      entity.WorkStatusPending,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.workRepo.Create(ctx, work); err != nil {
		return nil, fmt.Errorf("create work: %w", err)
	}

	clearStatsCache(ctx, s.rdb)
	return work, nil
}

// Update 合并部分字段并刷新更新时间
//
// 状态走单向链校验：编辑入口与工作流驱动入口共用同一迁移规则，
// 不允许从任何入口把工单状态往回拨。
func (s *WorkService) Update(ctx context.Context, id string, req *UpdateWorkRequest) (*entity.Work, error) {
	work, err := s.workRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find work: %w", err)
	}

	if req.Title != "" {
		work.Title = req.Title
	}
	if req.Description != "" {
		work.Description = req.Description
	}
	if req.AssignedTo != "" {
		work.AssignedTo = req.AssignedTo
	}
	if req.Role != "" {
		if !entity.ValidWorkRole(req.Role) {
			return nil, fmt.Errorf("invalid role %s: %w", req.Role, ErrInvalid)
		}
		work.Role = req.Role
	}
	if req.Priority != "" {
		if !entity.ValidWorkPriority(req.Priority) {
			return nil, fmt.Errorf("invalid priority %s: %w", req.Priority, ErrInvalid)
		}
		work.Priority = req.Priority
	}
	if req.DueDate != nil {
		work.DueDate = req.DueDate
	}
	if req.Status != "" && req.Status != work.Status {
		if !entity.CanWorkTransition(work.Status, req.Status) {
			return nil, fmt.Errorf("invalid status transition %s -> %s: %w", work.Status, req.Status, ErrInvalid)
		}
		work.Status = req.Status
	}

	work.UpdatedAt = time.Now()

	if err := s.workRepo.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("update work: %w", err)
	}

	clearStatsCache(ctx, s.rdb)
	return work, nil
}

// Delete 级联删除工单及其全部工作流和步骤
//
// 删除顺序为 步骤 → 工作流 → 工单，满足外键依赖；整个级联在
// 单个事务内执行，中途失败全部回滚。
func (s *WorkService) Delete(ctx context.Context, id string) error {
	if _, err := s.workRepo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("find work: %w", err)
	}

	err := s.workRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workflowIDs []string
		if err := tx.Model(&entity.Workflow{}).
			Where("work_id = ?", id).
			Pluck("id", &workflowIDs).Error; err != nil {
			return fmt.Errorf("list workflows: %w", err)
		}

		if len(workflowIDs) > 0 {
			if err := tx.Where("workflow_id IN ?", workflowIDs).
				Delete(&entity.WorkflowStep{}).Error; err != nil {
				return fmt.Errorf("delete steps: %w", err)
			}
			if err := tx.Where("id IN ?", workflowIDs).
				Delete(&entity.Workflow{}).Error; err != nil {
				return fmt.Errorf("delete workflows: %w", err)
			}
		}

		if err := tx.Where("id = ?", id).Delete(&entity.Work{}).Error; err != nil {
			return fmt.Errorf("delete work: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	clearStatsCache(ctx, s.rdb)
	return nil
}

// Duplicate 深度复制工单：新工单标题加 " (Copy)" 后缀、状态重置为 pending，
// 名下工作流复制为 draft，步骤复制为 pending 且清空照片/定位/完成时间。
// 仅新增记录，源数据不做任何修改。
func (s *WorkService) Duplicate(ctx context.Context, id string) (*entity.Work, error) {
	source, err := s.workRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find work: %w", err)
	}

	workflows, err := s.workflowRepo.ListByWork(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}

	now := time.Now()
	newWork := &entity.Work{
		ID:          uuid.New().String()[:32],
		Title:       source.Title + " (Copy)",
		Description: source.Description,
		AssignedTo:  source.AssignedTo,
		Role:        source.Role,
		Status:      entity.WorkStatusPending,
		Priority:    source.Priority,
		DueDate:     source.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.workRepo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(newWork).Error; err != nil {
			return fmt.Errorf("create work copy: %w", err)
		}

		for _, wf := range workflows {
			newWorkflow := &entity.Workflow{
				ID:          uuid.New().String()[:32],
				WorkID:      newWork.ID,
				Title:       entity.WorkflowTitlePrefix + newWork.Title,
				Description: "Workflow created for work: " + newWork.Description,
				Duration:    wf.Duration,
				Status:      entity.WorkflowStatusDraft,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := tx.Create(newWorkflow).Error; err != nil {
				return fmt.Errorf("create workflow copy: %w", err)
			}

			if len(wf.Steps) == 0 {
				continue
			}
			newSteps := make([]entity.WorkflowStep, 0, len(wf.Steps))
			for _, step := range wf.Steps {
				newSteps = append(newSteps, entity.WorkflowStep{
					ID:               uuid.New().String()[:32],
					WorkflowID:       newWorkflow.ID,
					Title:            step.Title,
					Description:      step.Description,
					Duration:         step.Duration,
					StepOrder:        step.StepOrder,
					Status:           entity.StepStatusPending,
					CompletionPhotos: entity.StringArray{},
					LocationData:     nil,
					CompletedAt:      nil,
					CreatedAt:        now,
				})
			}
			if err := tx.Create(&newSteps).Error; err != nil {
				return fmt.Errorf("create step copies: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	clearStatsCache(ctx, s.rdb)
	return newWork, nil
}
