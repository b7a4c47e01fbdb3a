package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringArray jsonb字符串数组类型
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}
	return json.Unmarshal(bytes, a)
}

// Location 步骤完成时采集的GPS定位
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

func (l *Location) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Location: %v", value)
	}
	return json.Unmarshal(bytes, l)
}

// Workflow 工作流实体，通过 work_id 外键归属于唯一工单
//
// 历史实现通过标题子串匹配（"Workflow for: <工单标题>" 包含工单标题）推断归属，
// 标题互为子串的两个工单会互相误删对方的工作流。外键字段取代了该机制，
// 标题前缀约定仅作为展示惯例保留。
type Workflow struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	WorkID      string    `json:"work_id" gorm:"size:32;not null;index"`
	Title       string    `json:"title" gorm:"size:256;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Duration    int       `json:"duration" gorm:"not null;default:0"` // 天
	Status      string    `json:"status" gorm:"size:16;not null;default:draft"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Work  *Work          `json:"work,omitempty" gorm:"foreignKey:WorkID"`
	Steps []WorkflowStep `json:"workflow_steps,omitempty" gorm:"foreignKey:WorkflowID"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// WorkflowTitlePrefix 工作流标题展示惯例
const WorkflowTitlePrefix = "Workflow for: "

// WorkflowStatus 工作流状态
const (
	WorkflowStatusDraft     = "draft"
	WorkflowStatusActive    = "active"
	WorkflowStatusCompleted = "completed"
)

// ValidWorkflowStatus 校验工作流状态取值
func ValidWorkflowStatus(s string) bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusActive, WorkflowStatusCompleted:
		return true
	}
	return false
}

// WorkflowStep 工作流步骤实体
type WorkflowStep struct {
	ID               string      `json:"id" gorm:"primaryKey;size:32"`
	WorkflowID       string      `json:"workflow_id" gorm:"size:32;not null;index"`
	Title            string      `json:"title" gorm:"size:256;not null"`
	Description      string      `json:"description" gorm:"type:text"`
	Duration         int         `json:"duration" gorm:"not null;default:1"` // 小时
	StepOrder        int         `json:"order" gorm:"column:step_order;not null;default:0"`
	Status           string      `json:"status" gorm:"size:16;not null;default:pending"`
	CompletionPhotos StringArray `json:"completion_photos" gorm:"type:jsonb"`
	LocationData     *Location   `json:"location_data" gorm:"type:jsonb"`
	CompletedAt      *time.Time  `json:"completed_at"`
	CreatedAt        time.Time   `json:"created_at"`
}

func (WorkflowStep) TableName() string {
	return "workflow_steps"
}

// StepStatus 步骤状态（允许任意方向切换，区别于工单的单向链）
const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
)

// ValidStepStatus 校验步骤状态取值
func ValidStepStatus(s string) bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusCompleted:
		return true
	}
	return false
}
