package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	Work     *WorkRepository
	Workflow *WorkflowRepository
	Step     *StepRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Work:     NewWorkRepository(db),
		Workflow: NewWorkflowRepository(db),
		Step:     NewStepRepository(db),
	}
}
