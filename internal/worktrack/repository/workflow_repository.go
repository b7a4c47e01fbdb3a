package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/worktrack/internal/worktrack/entity"
	"gorm.io/gorm"
)

// WorkflowRepository 工作流仓库
type WorkflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository 创建工作流仓库
func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// FindByID 根据ID查找工作流（含步骤，按序号升序）
func (r *WorkflowRepository) FindByID(ctx context.Context, id string) (*entity.Workflow, error) {
	var workflow entity.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("id = ?", id).
		First(&workflow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &workflow, nil
}

// ListByWork 获取工单名下的全部工作流（含步骤）
func (r *WorkflowRepository) ListByWork(ctx context.Context, workID string) ([]entity.Workflow, error) {
	var workflows []entity.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("work_id = ?", workID).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

// List 获取工作流列表，按创建时间倒序
//
// keyword 为大小写不敏感的标题子串匹配——历史上它还是工单↔工作流的归属机制，
// 现在归属走 work_id，子串查询仅服务列表筛选。
func (r *WorkflowRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Workflow, error) {
	var workflows []entity.Workflow

	query := r.db.WithContext(ctx).Model(&entity.Workflow{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("title ILIKE ?", "%"+keyword+"%")
	}

	err := query.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Order("created_at DESC").
		Find(&workflows).Error
	return workflows, err
}

// Create 创建工作流
func (r *WorkflowRepository) Create(ctx context.Context, workflow *entity.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

// Update 更新工作流
func (r *WorkflowRepository) Update(ctx context.Context, workflow *entity.Workflow) error {
	return r.db.WithContext(ctx).Save(workflow).Error
}

// CountByStatus 按状态统计工作流数量
func (r *WorkflowRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Workflow{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(results))
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, nil
}
