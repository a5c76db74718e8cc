package api

import (
	"io"

	"eventledger/config"
	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// EditionHandler 届次处理器
type EditionHandler struct {
	svc *service.LedgerService
}

// NewEditionHandler 创建届次处理器
func NewEditionHandler(svc *service.LedgerService) *EditionHandler {
	return &EditionHandler{svc: svc}
}

// CreateEditionRequest 新建届次请求
type CreateEditionRequest struct {
	Name string `json:"name" binding:"required" example:"Trail des Crêtes 2026"`
}

// EditionView 届次元信息及完整数据
type EditionView struct {
	Edition *models.EditionMeta `json:"edition"`
	Data    *models.EditionData `json:"data"`
}

// List 届次列表
// @Summary 届次列表
// @Description 按创建时间倒序
// @Tags 届次
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.EditionMeta} "获取成功"
// @Router /api/v1/editions [get]
func (h *EditionHandler) List(c *gin.Context) {
	list, err := h.svc.ListEditions(c.Request.Context())
	if err != nil {
		respondError(c, err, "获取届次失败")
		return
	}
	Success(c, list)
}

// Create 新建届次
// @Summary 新建届次
// @Description 新届带默认预算行和分类
// @Tags 届次
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEditionRequest true "届次名称"
// @Success 200 {object} Response{data=models.EditionMeta} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/editions [post]
func (h *EditionHandler) Create(c *gin.Context) {
	var req CreateEditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	meta, err := h.svc.CreateEdition(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err, "创建届次失败")
		return
	}
	SuccessWithMessage(c, "创建成功", meta)
}

// Get 届次完整数据
// @Summary 届次数据
// @Tags 届次
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Success 200 {object} Response{data=EditionView} "获取成功"
// @Failure 404 {object} Response "届次不存在"
// @Router /api/v1/editions/{id} [get]
func (h *EditionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	meta, err := h.svc.GetEdition(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "获取届次失败")
		return
	}
	data, err := h.svc.Snapshot(ctx, meta.ID)
	if err != nil {
		respondError(c, err, "读取数据失败")
		return
	}
	Success(c, EditionView{Edition: meta, Data: data})
}

// Stream 以 SSE 推送届次数据
// 连接建立后先推送一次完整快照，此后每次数据变化都推送新的完整快照
// @Summary 订阅届次数据
// @Tags 届次
// @Produce text/event-stream
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param token query string false "无法设置请求头时通过查询参数传递 token"
// @Success 200 {string} string "snapshot 事件流"
// @Failure 404 {object} Response "届次不存在"
// @Router /api/v1/editions/{id}/stream [get]
func (h *EditionHandler) Stream(c *gin.Context) {
	snaps, err := h.svc.Watch(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "订阅失败")
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		snap, ok := <-snaps
		if !ok {
			return false
		}
		if snap.Err != nil {
			c.SSEvent("error", gin.H{"message": config.SafeErrorMessage(snap.Err, "读取数据失败")})
			return true
		}
		c.SSEvent("snapshot", snap.Data)
		return true
	})
}
