package api

import (
	"context"
	"time"

	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// DirectoryHandler 赞助商、通讯录、实物捐赠、志愿者、子活动、分类
type DirectoryHandler struct {
	svc   *service.LedgerService
	email *service.EmailService
}

// NewDirectoryHandler 创建处理器
func NewDirectoryHandler(svc *service.LedgerService, email *service.EmailService) *DirectoryHandler {
	return &DirectoryHandler{svc: svc, email: email}
}

func listItems[T any](list func(ctx context.Context, editionID string) ([]T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := list(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err, "获取列表失败")
			return
		}
		Success(c, items)
	}
}

func createItem[T any](create func(ctx context.Context, editionID string, item T) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			bindError(c, err)
			return
		}
		created, err := create(c.Request.Context(), c.Param("id"), item)
		if err != nil {
			respondError(c, err, "创建失败")
			return
		}
		SuccessWithMessage(c, "创建成功", created)
	}
}

func updateItem[T any](update func(ctx context.Context, editionID, itemID string, item T) (*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			bindError(c, err)
			return
		}
		updated, err := update(c.Request.Context(), c.Param("id"), c.Param("itemId"), item)
		if err != nil {
			respondError(c, err, "更新失败")
			return
		}
		SuccessWithMessage(c, "更新成功", updated)
	}
}

func deleteItem(del func(ctx context.Context, editionID, itemID string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := del(c.Request.Context(), c.Param("id"), c.Param("itemId")); err != nil {
			respondError(c, err, "删除失败")
			return
		}
		SuccessWithMessage(c, "删除成功", nil)
	}
}

// RegisterCRUD 注册赞助商、联系人、实物捐赠、志愿者、子活动的增删改查以及分类路由
// 请求体即记录本身，id 由服务端生成
func (h *DirectoryHandler) RegisterCRUD(g *gin.RouterGroup) {
	sponsors := g.Group("/sponsors")
	sponsors.GET("", listItems(h.svc.Sponsors))
	sponsors.POST("", createItem(h.svc.CreateSponsor))
	sponsors.PUT("/:itemId", updateItem(h.svc.UpdateSponsor))
	sponsors.DELETE("/:itemId", deleteItem(h.svc.DeleteSponsor))
	sponsors.POST("/:itemId/remind", h.RemindSponsor)

	contacts := g.Group("/contacts")
	contacts.GET("", h.Contacts)
	contacts.POST("", createItem(h.svc.CreateContact))
	contacts.PUT("/:itemId", updateItem(h.svc.UpdateContact))
	contacts.DELETE("/:itemId", deleteItem(h.svc.DeleteContact))

	contributions := g.Group("/contributions")
	contributions.GET("", h.Contributions)
	contributions.POST("", createItem(h.svc.CreateContribution))
	contributions.PUT("/:itemId", updateItem(h.svc.UpdateContribution))
	contributions.DELETE("/:itemId", deleteItem(h.svc.DeleteContribution))

	volunteers := g.Group("/volunteers")
	volunteers.GET("", listItems(h.svc.Volunteers))
	volunteers.POST("", createItem(h.svc.CreateVolunteer))
	volunteers.PUT("/:itemId", updateItem(h.svc.UpdateVolunteer))
	volunteers.DELETE("/:itemId", deleteItem(h.svc.DeleteVolunteer))

	events := g.Group("/events")
	events.GET("", listItems(h.svc.Events))
	events.POST("", createItem(h.svc.CreateEvent))
	events.PUT("/:itemId", updateItem(h.svc.UpdateEvent))
	events.DELETE("/:itemId", deleteItem(h.svc.DeleteEvent))

	categories := g.Group("/categories/:type")
	categories.GET("", h.Categories)
	categories.POST("", h.AddCategory)
	categories.DELETE("", h.DeleteCategory)
}

// Contacts 联系人列表
// @Summary 联系人列表
// @Tags 通讯录
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param search query string false "按姓名、机构、角色搜索"
// @Success 200 {object} Response{data=[]models.Contact} "获取成功"
// @Router /api/v1/editions/{id}/contacts [get]
func (h *DirectoryHandler) Contacts(c *gin.Context) {
	list, err := h.svc.Contacts(c.Request.Context(), c.Param("id"), c.Query("search"))
	if err != nil {
		respondError(c, err, "获取联系人失败")
		return
	}
	Success(c, list)
}

// Contributions 实物捐赠列表及折算合计
// @Summary 实物捐赠
// @Tags 通讯录
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Success 200 {object} Response{data=service.ContributionsView} "获取成功"
// @Router /api/v1/editions/{id}/contributions [get]
func (h *DirectoryHandler) Contributions(c *gin.Context) {
	view, err := h.svc.Contributions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取实物捐赠失败")
		return
	}
	Success(c, view)
}

// RemindSponsor 发送付款提醒邮件并记录提醒日期
// @Summary 赞助商催款
// @Tags 通讯录
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param itemId path string true "赞助商ID"
// @Success 200 {object} Response{data=models.Sponsor} "发送成功"
// @Failure 400 {object} Response "赞助商没有邮箱"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/v1/editions/{id}/sponsors/{itemId}/remind [post]
func (h *DirectoryHandler) RemindSponsor(c *gin.Context) {
	ctx := c.Request.Context()
	editionID, sponsorID := c.Param("id"), c.Param("itemId")

	meta, err := h.svc.GetEdition(ctx, editionID)
	if err != nil {
		respondError(c, err, "获取届次失败")
		return
	}
	data, err := h.svc.Snapshot(ctx, editionID)
	if err != nil {
		respondError(c, err, "读取数据失败")
		return
	}
	sp, err := h.svc.GetSponsor(ctx, editionID, sponsorID)
	if err != nil {
		respondError(c, err, "获取赞助商失败")
		return
	}
	if err := h.email.SendSponsorReminder(*sp, meta.Name, data.BudgetYear); err != nil {
		respondError(c, err, "发送邮件失败")
		return
	}
	updated, err := h.svc.MarkSponsorReminded(ctx, editionID, sponsorID, time.Now().Format("2006-01-02"))
	if err != nil {
		respondError(c, err, "记录提醒日期失败")
		return
	}
	SuccessWithMessage(c, "发送成功", updated)
}

// CategoryRequest 新增分类
type CategoryRequest struct {
	Name string `json:"name" binding:"required" example:"Sonorisation"`
}

// Categories 收支分类
// @Summary 收支分类
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param type path string true "income / expense"
// @Success 200 {object} Response{data=[]string} "获取成功"
// @Router /api/v1/editions/{id}/categories/{type} [get]
func (h *DirectoryHandler) Categories(c *gin.Context) {
	list, err := h.svc.Categories(c.Request.Context(), c.Param("id"), models.TransactionType(c.Param("type")))
	if err != nil {
		respondError(c, err, "获取分类失败")
		return
	}
	Success(c, list)
}

// AddCategory 新增收支分类
// @Summary 新增收支分类
// @Tags 分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param type path string true "income / expense"
// @Param request body CategoryRequest true "分类名"
// @Success 200 {object} Response{data=[]string} "创建成功"
// @Router /api/v1/editions/{id}/categories/{type} [post]
func (h *DirectoryHandler) AddCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.AddCategory(c.Request.Context(), c.Param("id"), models.TransactionType(c.Param("type")), req.Name)
	if err != nil {
		respondError(c, err, "新增分类失败")
		return
	}
	SuccessWithMessage(c, "创建成功", list)
}

// DeleteCategory 删除收支分类
// @Summary 删除收支分类
// @Description 已有收支的分类字段保持不变
// @Tags 分类
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param type path string true "income / expense"
// @Param name query string true "分类名"
// @Success 200 {object} Response{data=[]string} "删除成功"
// @Router /api/v1/editions/{id}/categories/{type} [delete]
func (h *DirectoryHandler) DeleteCategory(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		BadRequest(c, "name 必填")
		return
	}
	list, err := h.svc.DeleteCategory(c.Request.Context(), c.Param("id"), models.TransactionType(c.Param("type")), name)
	if err != nil {
		respondError(c, err, "删除分类失败")
		return
	}
	SuccessWithMessage(c, "删除成功", list)
}
