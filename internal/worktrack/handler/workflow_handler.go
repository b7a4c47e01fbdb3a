package handler

import (
	"github.com/bitfantasy/worktrack/internal/worktrack/service"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler 工作流处理器
type WorkflowHandler struct {
	svc *service.WorkflowService
}

// NewWorkflowHandler 创建工作流处理器
func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// ActivateRequest 激活工作流请求
type ActivateRequest struct {
	Steps []service.DraftStep `json:"steps" binding:"required,min=1,dive"`
}

// ChangeStatusRequest 工作流状态变更请求
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListWorkflows 获取工作流列表
// GET /api/v1/workflows
func (h *WorkflowHandler) ListWorkflows(c *gin.Context) {
	filters := map[string]interface{}{
		"status":  c.Query("status"),
		"keyword": c.Query("keyword"),
	}

	workflows, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, workflows)
}

// GetWorkflow 获取工作流详情
// GET /api/v1/workflows/:id
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Workflow ID is required")
		return
	}

	workflow, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, workflow)
}

// ActivateWorkflow 以草稿步骤为工单激活工作流
// POST /api/v1/works/:id/workflows
func (h *WorkflowHandler) ActivateWorkflow(c *gin.Context) {
	workID := c.Param("id")
	if workID == "" {
		BadRequest(c, "Work ID is required")
		return
	}

	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	workflow, err := h.svc.Activate(c.Request.Context(), workID, req.Steps)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, workflow)
}

// ChangeWorkflowStatus 工作流状态变更
// PUT /api/v1/workflows/:id/status
func (h *WorkflowHandler) ChangeWorkflowStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Workflow ID is required")
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	workflow, err := h.svc.ChangeStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, workflow)
}

// AddStep 向工作流追加步骤
// POST /api/v1/workflows/:id/steps
func (h *WorkflowHandler) AddStep(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Workflow ID is required")
		return
	}

	var req service.AddStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	step, err := h.svc.AddStep(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, step)
}

// UpdateStep 更新步骤进度
// PUT /api/v1/steps/:id
func (h *WorkflowHandler) UpdateStep(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Step ID is required")
		return
	}

	var req service.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	step, err := h.svc.UpdateStep(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, step)
}
