package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/worktrack/internal/worktrack/entity"
	"gorm.io/gorm"
)

// WorkRepository 工单仓库
type WorkRepository struct {
	db *gorm.DB
}

// NewWorkRepository 创建工单仓库
func NewWorkRepository(db *gorm.DB) *WorkRepository {
	return &WorkRepository{db: db}
}

// DB 暴露底层连接（跨仓库事务用）
func (r *WorkRepository) DB() *gorm.DB {
	return r.db
}

// FindByID 根据ID查找工单
func (r *WorkRepository) FindByID(ctx context.Context, id string) (*entity.Work, error) {
	var work entity.Work
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&work).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &work, nil
}

// List 获取工单列表，按创建时间倒序
func (r *WorkRepository) List(ctx context.Context, filters map[string]interface{}) ([]entity.Work, error) {
	var works []entity.Work

	query := r.db.WithContext(ctx).Model(&entity.Work{})

	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("title ILIKE ? OR assigned_to ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	err := query.
		Order("created_at DESC").
		Find(&works).Error
	return works, err
}

// Create 创建工单
func (r *WorkRepository) Create(ctx context.Context, work *entity.Work) error {
	return r.db.WithContext(ctx).Create(work).Error
}

// Update 更新工单
func (r *WorkRepository) Update(ctx context.Context, work *entity.Work) error {
	return r.db.WithContext(ctx).Save(work).Error
}

// UpdateStatus 更新工单状态
func (r *WorkRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Work{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountByStatus 按状态统计工单数量
func (r *WorkRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Work{}).
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
