package handler

import (
	"github.com/bitfantasy/worktrack/internal/worktrack/service"
	"github.com/gin-gonic/gin"
)

// WorkHandler 工单处理器
type WorkHandler struct {
	svc *service.WorkService
}

// NewWorkHandler 创建工单处理器
func NewWorkHandler(svc *service.WorkService) *WorkHandler {
	return &WorkHandler{svc: svc}
}

// ListWorks 获取工单列表
// GET /api/v1/works
func (h *WorkHandler) ListWorks(c *gin.Context) {
	filters := map[string]interface{}{
		"status":  c.Query("status"),
		"keyword": c.Query("keyword"),
	}

	works, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, works)
}

// GetWork 获取工单详情
// GET /api/v1/works/:id
func (h *WorkHandler) GetWork(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work ID is required")
		return
	}

	work, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, work)
}

// CreateWork 创建工单
// POST /api/v1/works
func (h *WorkHandler) CreateWork(c *gin.Context) {
	var req service.CreateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	work, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Created(c, work)
}

// UpdateWork 更新工单
// PUT /api/v1/works/:id
func (h *WorkHandler) UpdateWork(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work ID is required")
		return
	}

	var req service.UpdateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	work, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	Success(c, work)
}

// DeleteWork 级联删除工单
// DELETE /api/v1/works/:id
func (h *WorkHandler) DeleteWork(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work ID is required")
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	Success(c, gin.H{"deleted": id})
}

// DuplicateWork 深度复制工单
// POST /api/v1/works/:id/duplicate
func (h *WorkHandler) DuplicateWork(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Work ID is required")
		return
	}

	work, err := h.svc.Duplicate(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, work)
}
