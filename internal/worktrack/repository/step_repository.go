package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/worktrack/internal/worktrack/entity"
	"gorm.io/gorm"
)

// StepRepository 工作流步骤仓库
type StepRepository struct {
	db *gorm.DB
}

// NewStepRepository 创建步骤仓库
func NewStepRepository(db *gorm.DB) *StepRepository {
	return &StepRepository{db: db}
}

// FindByID 根据ID查找步骤
func (r *StepRepository) FindByID(ctx context.Context, id string) (*entity.WorkflowStep, error) {
	var step entity.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &step, nil
}

// ListByWorkflow 获取工作流的步骤列表，按序号升序
func (r *StepRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]entity.WorkflowStep, error) {
	var steps []entity.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("step_order ASC").
		Find(&steps).Error
	return steps, err
}

// CountByWorkflow 统计工作流的步骤数量
func (r *StepRepository) CountByWorkflow(ctx context.Context, workflowID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.WorkflowStep{}).
		Where("workflow_id = ?", workflowID).
		Count(&count).Error
	return count, err
}

// Create 创建步骤
func (r *StepRepository) Create(ctx context.Context, step *entity.WorkflowStep) error {
	return r.db.WithContext(ctx).Create(step).Error
}

// Update 更新步骤
func (r *StepRepository) Update(ctx context.Context, step *entity.WorkflowStep) error {
	return r.db.WithContext(ctx).Save(step).Error
}

// CountCompleted 统计全部步骤中已完成/总数
func (r *StepRepository) CountCompleted(ctx context.Context) (completed, total int64, err error) {
	if err = r.db.WithContext(ctx).
		Model(&entity.WorkflowStep{}).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).
		Model(&entity.WorkflowStep{}).
		Where("status = ?", entity.StepStatusCompleted).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return completed, total, nil
}
