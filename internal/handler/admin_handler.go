package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flowmart/flowmart/internal/middleware"
	"github.com/flowmart/flowmart/internal/service"
	filesvc "github.com/flowmart/flowmart/internal/service/file"
)

// AdminHandler 管理端处理器
type AdminHandler struct {
	svc *service.Services
}

// NewAdminHandler 创建管理端处理器
func NewAdminHandler(svc *service.Services) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// UploadAvatar 上传管理员头像
// @Summary      上传头像
// @Tags         管理端
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "图片文件"
// @Router       /admin/avatar [post]
func (h *AdminHandler) UploadAvatar(c *gin.Context) {
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
	avatarURL, err := h.svc.File.UploadAvatar(c.Request.Context(), requester, &filesvc.AvatarRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      f,
	})
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{"image_url": avatarURL})
}
