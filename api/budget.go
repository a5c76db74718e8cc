package api

import (
	"strconv"

	"eventledger/ledger"
	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct {
	svc *service.LedgerService
}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler(svc *service.LedgerService) *BudgetHandler {
	return &BudgetHandler{svc: svc}
}

// BudgetYearRequest 设置预算年份
type BudgetYearRequest struct {
	Year int `json:"year" binding:"required,min=1900,max=2999" example:"2026"`
}

// RenameCategoryRequest 重命名预算分类
type RenameCategoryRequest struct {
	Section models.BudgetSection `json:"section" binding:"required"`
	OldName string               `json:"oldName" binding:"required"`
	NewName string               `json:"newName" binding:"required"`
}

// queryYear 解析 ?year=，缺省返回 0
func queryYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	return year, err == nil
}

// Comparison 预算 N / N-1 对比
// @Summary 预算对比
// @Description N-1 依次取本届 N-1 年实时合计、N-1 年归档、手工录入值
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param year query int false "年份，缺省为届次预算年份"
// @Success 200 {object} Response{data=ledger.Comparison} "获取成功"
// @Router /api/v1/editions/{id}/budget/comparison [get]
func (h *BudgetHandler) Comparison(c *gin.Context) {
	year, ok := queryYear(c)
	if !ok {
		BadRequest(c, "年份格式错误")
		return
	}
	cmp, err := h.svc.BudgetComparison(c.Request.Context(), c.Param("id"), year)
	if err != nil {
		respondError(c, err, "计算预算对比失败")
		return
	}
	Success(c, cmp)
}

// SetYear 设置预算年份
// @Summary 预算年份
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body BudgetYearRequest true "年份"
// @Success 200 {object} Response "设置成功"
// @Router /api/v1/editions/{id}/budget/year [put]
func (h *BudgetHandler) SetYear(c *gin.Context) {
	var req BudgetYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.SetBudgetYear(c.Request.Context(), c.Param("id"), req.Year); err != nil {
		respondError(c, err, "设置预算年份失败")
		return
	}
	SuccessWithMessage(c, "设置成功", nil)
}

// AddLine 新增预算行
// @Summary 新增预算行
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body service.BudgetLineInput true "分区、分类、名称"
// @Success 200 {object} Response{data=models.BudgetLine} "创建成功"
// @Router /api/v1/editions/{id}/budget/lines [post]
func (h *BudgetHandler) AddLine(c *gin.Context) {
	var req service.BudgetLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	line, err := h.svc.AddBudgetLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "新增预算行失败")
		return
	}
	SuccessWithMessage(c, "创建成功", line)
}

// UpdateLine 修改预算行名称或手工上年金额
// @Summary 修改预算行
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "预算行ID"
// @Param request body ledger.LineUpdate true "只修改传入的字段"
// @Success 200 {object} Response "更新成功"
// @Failure 404 {object} Response "预算行不存在"
// @Router /api/v1/editions/{id}/budget/lines/{lineId} [put]
func (h *BudgetHandler) UpdateLine(c *gin.Context) {
	var req ledger.LineUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.UpdateBudgetLine(c.Request.Context(), c.Param("id"), c.Param("lineId"), req); err != nil {
		respondError(c, err, "更新预算行失败")
		return
	}
	SuccessWithMessage(c, "更新成功", nil)
}

// DeleteLine 删除预算行
// @Summary 删除预算行
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "预算行ID"
// @Success 200 {object} Response "删除成功"
// @Router /api/v1/editions/{id}/budget/lines/{lineId} [delete]
func (h *BudgetHandler) DeleteLine(c *gin.Context) {
	if err := h.svc.DeleteBudgetLine(c.Request.Context(), c.Param("id"), c.Param("lineId")); err != nil {
		respondError(c, err, "删除预算行失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// AddCategory 新增预算分类
// @Summary 新增预算分类
// @Description 同时生成一行默认预算行
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body service.BudgetLineInput true "分区、分类"
// @Success 200 {object} Response{data=models.BudgetLine} "创建成功"
// @Router /api/v1/editions/{id}/budget/categories [post]
func (h *BudgetHandler) AddCategory(c *gin.Context) {
	var req service.BudgetLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	line, err := h.svc.AddBudgetCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "新增预算分类失败")
		return
	}
	SuccessWithMessage(c, "创建成功", line)
}

// RenameCategory 重命名预算分类
// @Summary 重命名预算分类
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body RenameCategoryRequest true "原名与新名"
// @Success 200 {object} Response "更新成功"
// @Router /api/v1/editions/{id}/budget/categories [put]
func (h *BudgetHandler) RenameCategory(c *gin.Context) {
	var req RenameCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.RenameBudgetCategory(c.Request.Context(), c.Param("id"), req.Section, req.OldName, req.NewName); err != nil {
		respondError(c, err, "重命名预算分类失败")
		return
	}
	SuccessWithMessage(c, "更新成功", nil)
}

// DeleteCategory 删除预算分类及其全部预算行
// @Summary 删除预算分类
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param section query string true "分区"
// @Param category query string true "分类"
// @Success 200 {object} Response "删除成功"
// @Router /api/v1/editions/{id}/budget/categories [delete]
func (h *BudgetHandler) DeleteCategory(c *gin.Context) {
	section, category := c.Query("section"), c.Query("category")
	if section == "" || category == "" {
		BadRequest(c, "section 和 category 必填")
		return
	}
	if err := h.svc.DeleteBudgetCategory(c.Request.Context(), c.Param("id"), models.BudgetSection(section), category); err != nil {
		respondError(c, err, "删除预算分类失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// ImportPriorYear 导入上年实际
// @Summary 导入上年实际
// @Description CSV 首行为表头，之后每行 Section;Categorie;Libelle;Montant，按分区+分类+名称匹配预算行
// @Tags 预算
// @Accept plain
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param file formData file false "CSV 文件"
// @Success 200 {object} Response "导入成功"
// @Failure 400 {object} Response "没有匹配的行"
// @Router /api/v1/editions/{id}/budget/prior-year [post]
func (h *BudgetHandler) ImportPriorYear(c *gin.Context) {
	raw, err := readStatement(c)
	if err != nil {
		BadRequest(c, "读取 CSV 失败")
		return
	}
	matched, err := h.svc.ImportPriorYear(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		respondError(c, err, "导入上年实际失败")
		return
	}
	SuccessWithMessage(c, "导入成功", gin.H{"matched": matched})
}
