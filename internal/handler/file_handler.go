package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flowmart/flowmart/internal/middleware"
	"github.com/flowmart/flowmart/internal/service"
	filesvc "github.com/flowmart/flowmart/internal/service/file"
)

// FileHandler 附件处理器
type FileHandler struct {
	svc *service.Services
}

// NewFileHandler 创建附件处理器
func NewFileHandler(svc *service.Services) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload 上传附件
// @Summary      上传工作流附件
// @Tags         附件
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "工作流ID"
// @Param        file formData file   true "文件"
// @Router       /workflows/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "no file provided")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		Error(c, err)
		return
	}
	defer f.Close()

	requester := middleware.GetCurrentUser(c)
	workflowFile, err := h.svc.File.UploadFile(c.Request.Context(), requester, &filesvc.UploadRequest{
		WorkflowID:  c.Param("id"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      f,
	})
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, workflowFile)
}

// List 列出附件
// @Summary      工作流附件列表
// @Tags         附件
// @Produce      json
// @Param        id path string true "工作流ID"
// @Router       /workflows/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.svc.File.ListFiles(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, files)
}

// Get 获取附件下载信息
// @Summary      附件元数据与限时下载 URL
// @Tags         附件
// @Produce      json
// @Param        id     path string true "工作流ID"
// @Param        fileId path string true "附件ID"
// @Router       /workflows/{id}/files/{fileId} [get]
func (h *FileHandler) Get(c *gin.Context) {
	requester := middleware.GetCurrentUser(c)
	download, err := h.svc.File.GetFileDownload(c.Request.Context(), requester, c.Param("fileId"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, download)
}

// Delete 删除附件
// @Summary      删除附件
// @Tags         附件
// @Produce      json
// @Param        id     path string true "工作流ID"
// @Param        fileId path string true "附件ID"
// @Router       /workflows/{id}/files/{fileId} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	requester := middleware.GetCurrentUser(c)
	if err := h.svc.File.DeleteFile(c.Request.Context(), requester, c.Param("fileId")); err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{"message": "File deleted successfully"})
}

// Download 整包下载
// @Summary      下载工作流全部附件的 zip 包
// @Tags         附件
// @Produce      application/zip
// @Param        id path string true "工作流ID"
// @Router       /workflows/{id}/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	requester := middleware.GetCurrentUser(c)
	archive, err := h.svc.File.DownloadArchive(c.Request.Context(), requester, c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+archive.FileName+`"`)
	c.Header("Content-Length", strconv.Itoa(len(archive.Data)))
	c.Data(200, "application/zip", archive.Data)
}
