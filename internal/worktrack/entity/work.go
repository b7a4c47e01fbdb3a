package entity

import (
	"time"
)

// Work 工单实体
type Work struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Title       string     `json:"title" gorm:"size:256;not null"`
	Description string     `json:"description" gorm:"type:text;not null"`
	AssignedTo  string     `json:"assigned_to" gorm:"size:128;not null"`
	Role        string     `json:"role" gorm:"size:16;not null;default:clerk"`
	Status      string     `json:"status" gorm:"size:16;not null;default:pending"`
	Priority    string     `json:"priority" gorm:"size:16;not null;default:medium"`
	DueDate     *time.Time `json:"due_date" gorm:"type:date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// 关联
	Workflows []Workflow `json:"workflows,omitempty" gorm:"foreignKey:WorkID"`
}

func (Work) TableName() string {
	return "works"
}

// WorkStatus 工单状态
const (
	WorkStatusPending    = "pending"
	WorkStatusInProgress = "in_progress"
	WorkStatusCompleted  = "completed"
)

// WorkPriority 工单优先级
const (
	WorkPriorityLow    = "low"
	WorkPriorityMedium = "medium"
	WorkPriorityHigh   = "high"
)

// WorkRole 工单角色
const (
	WorkRoleAdmin     = "admin"
	WorkRoleClerk     = "clerk"
	WorkRoleOfficer   = "officer"
	WorkRoleDeveloper = "developer"
)

// workStatusRank 工单状态只能沿 pending → in_progress → completed 单向推进
var workStatusRank = map[string]int{
	WorkStatusPending:    0,
	WorkStatusInProgress: 1,
	WorkStatusCompleted:  2,
}

// CanWorkTransition 校验工单状态迁移（仅允许向前）
func CanWorkTransition(from, to string) bool {
	fromRank, ok := workStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := workStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ValidWorkStatus 校验工单状态取值
func ValidWorkStatus(s string) bool {
	_, ok := workStatusRank[s]
	return ok
}

// ValidWorkPriority 校验优先级取值
func ValidWorkPriority(p string) bool {
	return p == WorkPriorityLow || p == WorkPriorityMedium || p == WorkPriorityHigh
}

// ValidWorkRole 校验角色取值
func ValidWorkRole(r string) bool {
	switch r {
	case WorkRoleAdmin, WorkRoleClerk, WorkRoleOfficer, WorkRoleDeveloper:
		return true
	}
	return false
}
