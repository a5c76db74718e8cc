package api

import (
	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 收支记录处理器
type TransactionHandler struct {
	svc *service.LedgerService
}

// NewTransactionHandler 创建收支记录处理器
func NewTransactionHandler(svc *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// TransactionListRequest 收支列表筛选
type TransactionListRequest struct {
	Year    int    `form:"year" example:"2026"`
	Type    string `form:"type" example:"expense"`
	Status  string `form:"status" example:"realized"`
	EventID string `form:"event_id"`
}

// List 收支列表
// @Summary 收支列表
// @Description 按日期倒序，可按年份、类型、状态、子活动筛选
// @Tags 收支
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param year query int false "年份"
// @Param type query string false "income / expense"
// @Param status query string false "realized / pending"
// @Param event_id query string false "子活动ID"
// @Success 200 {object} Response{data=[]models.Transaction} "获取成功"
// @Router /api/v1/editions/{id}/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), service.TransactionFilter{
		Year:    req.Year,
		Type:    models.TransactionType(req.Type),
		Status:  models.TransactionStatus(req.Status),
		EventID: req.EventID,
	})
	if err != nil {
		respondError(c, err, "获取收支失败")
		return
	}
	Success(c, list)
}

// Create 新增收支
// @Summary 新增收支
// @Description 志愿工时记录的金额 = 工时 × 时薪，忽略传入的 amount
// @Tags 收支
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body service.TransactionInput true "收支信息"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Router /api/v1/editions/{id}/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.svc.CreateTransaction(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "创建收支失败")
		return
	}
	SuccessWithMessage(c, "创建成功", tx)
}

// Update 修改收支
// @Summary 修改收支
// @Tags 收支
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param txId path string true "收支ID"
// @Param request body service.TransactionInput true "收支信息"
// @Success 200 {object} Response{data=models.Transaction} "更新成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/editions/{id}/transactions/{txId} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	tx, err := h.svc.UpdateTransaction(c.Request.Context(), c.Param("id"), c.Param("txId"), req)
	if err != nil {
		respondError(c, err, "更新收支失败")
		return
	}
	SuccessWithMessage(c, "更新成功", tx)
}

// Delete 删除收支
// @Summary 删除收支
// @Description 同时解除引用该记录的银行流水
// @Tags 收支
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param txId path string true "收支ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "记录不存在"
// @Router /api/v1/editions/{id}/transactions/{txId} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteTransaction(c.Request.Context(), c.Param("id"), c.Param("txId")); err != nil {
		respondError(c, err, "删除收支失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}
