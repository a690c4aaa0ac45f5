package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flowmart/flowmart/internal/middleware"
	"github.com/flowmart/flowmart/internal/repository"
	"github.com/flowmart/flowmart/internal/service"
	workflowsvc "github.com/flowmart/flowmart/internal/service/workflow"
)

// WorkflowHandler 工作流处理器
type WorkflowHandler struct {
	svc *service.Services
}

// NewWorkflowHandler 创建工作流处理器
func NewWorkflowHandler(svc *service.Services) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

// List 列出工作流
// @Summary      工作流列表
// @Tags         工作流
// @Produce      json
// @Param        page      query int    false "页码"
// @Param        limit     query int    false "每页数量"
// @Param        category  query string false "分类"
// @Param        author_id query string false "作者ID"
// @Router       /workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := &repository.ListFilter{
		Category:           c.Query("category"),
		AuthorID:           c.Query("author_id"),
		IncludeUnpublished: c.Query("include_unpublished") == "true",
		Page:               page,
		PageSize:           limit,
	}

	requester := middleware.GetCurrentUser(c)
	workflows, total, err := h.svc.Workflow.List(c.Request.Context(), requester, filter)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, workflows, total, filter.Page, filter.PageSize)
}

// Create 创建工作流
// @Summary      创建工作流
// @Tags         工作流
// @Accept       json
// @Produce      json
// @Router       /workflows [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req workflowsvc.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requester := middleware.GetCurrentUser(c)
	workflow, err := h.svc.Workflow.Create(c.Request.Context(), requester.ID, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, workflow)
}

// Get 获取工作流
// @Summary      工作流详情
// @Tags         工作流
// @Produce      json
// @Param        id path string true "工作流ID"
// @Router       /workflows/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	workflow, err := h.svc.Workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, workflow)
}

// Update 更新工作流
// @Summary      更新工作流
// @Tags         工作流
// @Accept       json
// @Produce      json
// @Param        id path string true "工作流ID"
// @Router       /workflows/{id} [put]
func (h *WorkflowHandler) Update(c *gin.Context) {
	var req workflowsvc.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requester := middleware.GetCurrentUser(c)
	workflow, err := h.svc.Workflow.Update(c.Request.Context(), requester, c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, workflow)
}

// Delete 删除工作流
// @Summary      删除工作流
// @Tags         工作流
// @Produce      json
// @Param        id path string true "工作流ID"
// @Router       /workflows/{id} [delete]
func (h *WorkflowHandler) Delete(c *gin.Context) {
	requester := middleware.GetCurrentUser(c)
	if err := h.svc.Workflow.Delete(c.Request.Context(), requester, c.Param("id")); err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{"message": "Workflow deleted successfully"})
}
