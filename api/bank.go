package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"eventledger/ledger"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// 对账单上传大小上限
const maxStatementSize = 5 << 20

// BankHandler 银行流水与对账处理器
type BankHandler struct {
	svc *service.LedgerService
}

// NewBankHandler 创建银行流水处理器
func NewBankHandler(svc *service.LedgerService) *BankHandler {
	return &BankHandler{svc: svc}
}

// LinkRequest 关联请求
type LinkRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

// LastReconciledRequest 设置最后对账日期
type LastReconciledRequest struct {
	Date string `json:"date" example:"2026-02-28"` // 为空表示清除
}

// List 流水列表及对账汇总
// @Summary 银行流水
// @Tags 对账
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Success 200 {object} Response{data=service.BankView} "获取成功"
// @Router /api/v1/editions/{id}/bank-lines [get]
func (h *BankHandler) List(c *gin.Context) {
	view, err := h.svc.BankLines(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取流水失败")
		return
	}
	Success(c, view)
}

// Add 手工添加流水
// @Summary 添加流水
// @Tags 对账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body service.BankLineInput true "流水"
// @Success 200 {object} Response{data=models.BankLine} "创建成功"
// @Router /api/v1/editions/{id}/bank-lines [post]
func (h *BankHandler) Add(c *gin.Context) {
	var req service.BankLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	line, err := h.svc.AddBankLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "添加流水失败")
		return
	}
	SuccessWithMessage(c, "创建成功", line)
}

// readStatement 读取上传的对账单：multipart 的 file 字段或整个请求体
func readStatement(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", err
		}
		f, err := fh.Open()
		if err != nil {
			return "", err
		}
		defer f.Close()
		return readLimited(f, maxStatementSize)
	}
	return readLimited(c.Request.Body, maxStatementSize)
}

// errTooLarge 上传内容超过大小上限
var errTooLarge = errors.New("文件超过大小上限")

// readLimited 读取至多 limit 字节，超出时报错而不是截断
func readLimited(r io.Reader, limit int64) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > limit {
		return "", errTooLarge
	}
	return string(raw), nil
}

// Import 导入对账单
// @Summary 导入对账单
// @Description 每行 日期;摘要;借方;贷方 或 日期;摘要;金额，分号或制表符分隔。日期不晚于最后对账日期的行视为重复。
// @Tags 对账
// @Accept plain
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param file formData file false "对账单文件"
// @Success 200 {object} Response{data=ledger.ImportResult} "导入成功"
// @Failure 400 {object} Response{data=ledger.ImportResult} "没有可导入的行"
// @Router /api/v1/editions/{id}/bank-lines/import [post]
func (h *BankHandler) Import(c *gin.Context) {
	raw, err := readStatement(c)
	if errors.Is(err, errTooLarge) {
		BadRequest(c, fmt.Sprintf("对账单超过 %d MB", maxStatementSize>>20))
		return
	}
	if err != nil {
		BadRequest(c, "读取对账单失败")
		return
	}
	res, err := h.svc.ImportStatement(c.Request.Context(), c.Param("id"), raw)
	if errors.Is(err, ledger.ErrNothingToImport) {
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: err.Error(), Data: res})
		return
	}
	if err != nil {
		respondError(c, err, "导入对账单失败")
		return
	}
	SuccessWithMessage(c, "导入成功", res)
}

// Clear 清空流水
// @Summary 清空流水
// @Tags 对账
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param reconciled query bool false "只删除已关联的流水"
// @Success 200 {object} Response "删除成功"
// @Router /api/v1/editions/{id}/bank-lines/clear [post]
func (h *BankHandler) Clear(c *gin.Context) {
	reconciledOnly, _ := strconv.ParseBool(c.Query("reconciled"))
	removed, err := h.svc.ClearBankLines(c.Request.Context(), c.Param("id"), reconciledOnly)
	if err != nil {
		respondError(c, err, "清空流水失败")
		return
	}
	SuccessWithMessage(c, "删除成功", gin.H{"removed": removed})
}

// Delete 删除单条流水
// @Summary 删除流水
// @Tags 对账
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "流水ID"
// @Success 200 {object} Response "删除成功"
// @Failure 404 {object} Response "流水不存在"
// @Router /api/v1/editions/{id}/bank-lines/{lineId} [delete]
func (h *BankHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteBankLine(c.Request.Context(), c.Param("id"), c.Param("lineId")); err != nil {
		respondError(c, err, "删除流水失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Candidates 可关联的收支
// @Summary 候选收支
// @Description 未被其他流水引用的收支，amountMatch 表示金额一致
// @Tags 对账
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "流水ID"
// @Success 200 {object} Response{data=[]ledger.Candidate} "获取成功"
// @Router /api/v1/editions/{id}/bank-lines/{lineId}/candidates [get]
func (h *BankHandler) Candidates(c *gin.Context) {
	list, err := h.svc.Candidates(c.Request.Context(), c.Param("id"), c.Param("lineId"))
	if err != nil {
		respondError(c, err, "获取候选收支失败")
		return
	}
	Success(c, list)
}

// Link 关联流水与收支
// @Summary 关联
// @Description 收支置为已实现，日期改为流水日期
// @Tags 对账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "流水ID"
// @Param request body LinkRequest true "收支ID"
// @Success 200 {object} Response "关联成功"
// @Failure 409 {object} Response "收支已关联到其他流水"
// @Router /api/v1/editions/{id}/bank-lines/{lineId}/link [post]
func (h *BankHandler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.Link(c.Request.Context(), c.Param("id"), c.Param("lineId"), req.TransactionID); err != nil {
		respondError(c, err, "关联失败")
		return
	}
	SuccessWithMessage(c, "关联成功", nil)
}

// Unlink 解除关联
// @Summary 解除关联
// @Description 收支回到待定状态，日期不恢复
// @Tags 对账
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "流水ID"
// @Success 200 {object} Response "已解除"
// @Failure 409 {object} Response "流水未关联"
// @Router /api/v1/editions/{id}/bank-lines/{lineId}/unlink [post]
func (h *BankHandler) Unlink(c *gin.Context) {
	if err := h.svc.Unlink(c.Request.Context(), c.Param("id"), c.Param("lineId")); err != nil {
		respondError(c, err, "解除关联失败")
		return
	}
	SuccessWithMessage(c, "已解除", nil)
}

// CreateTransaction 由流水生成收支并关联
// @Summary 由流水生成收支
// @Tags 对账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param lineId path string true "流水ID"
// @Param request body ledger.CreateRequest true "分类与预算行"
// @Success 200 {object} Response{data=models.Transaction} "创建成功"
// @Router /api/v1/editions/{id}/bank-lines/{lineId}/create-transaction [post]
func (h *BankHandler) CreateTransaction(c *gin.Context) {
	var req ledger.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.BankLineID = c.Param("lineId")
	tx, err := h.svc.CreateFromBankLine(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "创建收支失败")
		return
	}
	SuccessWithMessage(c, "创建成功", tx)
}

// SetLastReconciledDate 设置最后对账日期
// @Summary 最后对账日期
// @Tags 对账
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body LastReconciledRequest true "日期，YYYY-MM-DD 或 DD/MM/YYYY"
// @Success 200 {object} Response "设置成功"
// @Router /api/v1/editions/{id}/last-reconciled-date [put]
func (h *BankHandler) SetLastReconciledDate(c *gin.Context) {
	var req LastReconciledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.svc.SetLastReconciledDate(c.Request.Context(), c.Param("id"), req.Date); err != nil {
		respondError(c, err, "设置失败")
		return
	}
	SuccessWithMessage(c, "设置成功", nil)
}
