package handler

import (
	"github.com/bitfantasy/worktrack/internal/worktrack/service"
	"github.com/gin-gonic/gin"
)

// PhotoHandler 步骤完成照片处理器
type PhotoHandler struct {
	photoSvc    *service.PhotoService
	workflowSvc *service.WorkflowService
}

// NewPhotoHandler 创建照片处理器
func NewPhotoHandler(photoSvc *service.PhotoService, workflowSvc *service.WorkflowService) *PhotoHandler {
	return &PhotoHandler{photoSvc: photoSvc, workflowSvc: workflowSvc}
}

// DeletePhotoRequest 照片删除请求
type DeletePhotoRequest struct {
	URL string `json:"url" binding:"required"`
}

// UploadPhoto 上传步骤完成照片
// POST /api/v1/steps/:id/photos
//
// 只负责对象存储写入并返回公开 URL；照片列表由客户端
// 随后通过 PUT /api/v1/steps/:id 整体更新。
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	stepID := c.Param("id")
	if stepID == "" {
		BadRequest(c, "Step ID is required")
		return
	}

	// 步骤必须存在，避免孤儿对象
	if _, err := h.workflowSvc.GetStep(c.Request.Context(), stepID); err != nil {
		RespondError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "No photo file in request: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Failed to read uploaded file: "+err.Error())
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.photoSvc.Upload(c.Request.Context(), stepID, src, fileHeader.Size, contentType, fileHeader.Filename)
	if err != nil {
		RespondError(c, err)
		return
	}

	Created(c, gin.H{
		"url":      url,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	})
}

// DeletePhoto 删除步骤完成照片
// DELETE /api/v1/steps/:id/photos
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	stepID := c.Param("id")
	if stepID == "" {
		BadRequest(c, "Step ID is required")
		return
	}

	var req DeletePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.photoSvc.Delete(c.Request.Context(), req.URL); err != nil {
		RespondError(c, err)
		return
	}

	Success(c, gin.H{"deleted": req.URL})
}
