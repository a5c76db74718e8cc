package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	svc    *service.LedgerService
	export *service.ExportService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(svc *service.LedgerService, export *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc, export: export}
}

// Export 导出文件
// @Summary 导出
// @Description {view}.csv 导出分号分隔的 CSV（transactions, bank-lines, budget, sponsors, contacts, contributions）；report.xlsx 导出 Excel 报表
// @Tags 导出
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param file path string true "如 transactions.csv 或 report.xlsx"
// @Param year query int false "报表年份，缺省为届次预算年份"
// @Success 200 {file} file "导出文件"
// @Failure 404 {object} Response "不支持的视图"
// @Router /api/v1/editions/{id}/export/{file} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	file := c.Param("file")
	if file == "report.xlsx" {
		h.report(c)
		return
	}
	view, ok := strings.CutSuffix(file, ".csv")
	if !ok || !h.export.HasView(view) {
		NotFound(c, service.ErrUnknownView.Error())
		return
	}

	data, err := h.svc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "读取数据失败")
		return
	}
	var buf bytes.Buffer
	if err := h.export.WriteCSV(&buf, view, data); err != nil {
		respondError(c, err, "导出失败")
		return
	}
	filename := fmt.Sprintf("%s_%s.csv", view, time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) report(c *gin.Context) {
	year, ok := queryYear(c)
	if !ok {
		BadRequest(c, "年份格式错误")
		return
	}
	data, err := h.svc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "读取数据失败")
		return
	}
	var buf bytes.Buffer
	if err := h.export.WriteReport(&buf, data, year); err != nil {
		respondError(c, err, "生成报表失败")
		return
	}
	if year == 0 {
		year = data.BudgetYear
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=bilan_%d.xlsx", year))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
