package api

import (
	"errors"
	"fmt"
	"net/http"

	"eventledger/models"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// 备份文件大小上限
const maxBackupSize = 50 << 20

// ArchiveHandler 归档、概览、备份
type ArchiveHandler struct {
	svc *service.LedgerService
}

// NewArchiveHandler 创建处理器
func NewArchiveHandler(svc *service.LedgerService) *ArchiveHandler {
	return &ArchiveHandler{svc: svc}
}

// CreateArchiveRequest 归档请求
type CreateArchiveRequest struct {
	Name string `json:"name" example:"Clôture 2025"` // 为空时使用 "Archive {年份}"
}

// List 归档列表
// @Summary 归档列表
// @Tags 归档
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Success 200 {object} Response{data=[]models.Archive} "获取成功"
// @Router /api/v1/editions/{id}/archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	list, err := h.svc.Archives(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "获取归档失败")
		return
	}
	Success(c, list)
}

// Create 归档当前数据
// @Summary 创建归档
// @Tags 归档
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body CreateArchiveRequest false "归档名称"
// @Success 200 {object} Response{data=models.Archive} "创建成功"
// @Router /api/v1/editions/{id}/archives [post]
func (h *ArchiveHandler) Create(c *gin.Context) {
	var req CreateArchiveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}
	a, err := h.svc.CreateArchive(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err, "创建归档失败")
		return
	}
	SuccessWithMessage(c, "创建成功", a)
}

// Delete 删除归档
// @Summary 删除归档
// @Tags 归档
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param archiveId path string true "归档ID"
// @Success 200 {object} Response "删除成功"
// @Router /api/v1/editions/{id}/archives/{archiveId} [delete]
func (h *ArchiveHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteArchive(c.Request.Context(), c.Param("id"), c.Param("archiveId")); err != nil {
		respondError(c, err, "删除归档失败")
		return
	}
	SuccessWithMessage(c, "删除成功", nil)
}

// Load 用归档覆盖当前数据
// @Summary 载入归档
// @Description 当前数据被归档内容覆盖，归档列表保留
// @Tags 归档
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param archiveId path string true "归档ID"
// @Success 200 {object} Response "载入成功"
// @Router /api/v1/editions/{id}/archives/{archiveId}/load [post]
func (h *ArchiveHandler) Load(c *gin.Context) {
	if err := h.svc.LoadArchive(c.Request.Context(), c.Param("id"), c.Param("archiveId")); err != nil {
		respondError(c, err, "载入归档失败")
		return
	}
	SuccessWithMessage(c, "载入成功", nil)
}

// Dashboard 年度概览
// @Summary 年度概览
// @Tags 概览
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param year query int false "年份，缺省为届次预算年份"
// @Success 200 {object} Response{data=ledger.Dashboard} "获取成功"
// @Router /api/v1/editions/{id}/dashboard [get]
func (h *ArchiveHandler) Dashboard(c *gin.Context) {
	year, ok := queryYear(c)
	if !ok {
		BadRequest(c, "年份格式错误")
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), c.Param("id"), year)
	if err != nil {
		respondError(c, err, "获取概览失败")
		return
	}
	Success(c, d)
}

// Backup 下载 JSON 备份
// @Summary 下载备份
// @Tags 备份
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Success 200 {object} models.EditionData "备份文件"
// @Router /api/v1/editions/{id}/backup [get]
func (h *ArchiveHandler) Backup(c *gin.Context) {
	raw, err := h.svc.Dump(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "生成备份失败")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=backup_%s.json", c.Param("id")))
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// Restore 从 JSON 备份恢复
// @Summary 恢复备份
// @Description 整份覆盖当前数据；文件结构不合法时返回 400 且不写入任何字段
// @Tags 备份
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "届次ID"
// @Param request body models.EditionData true "备份内容"
// @Success 200 {object} Response "恢复成功"
// @Failure 400 {object} Response "备份文件格式错误"
// @Router /api/v1/editions/{id}/backup [put]
func (h *ArchiveHandler) Restore(c *gin.Context) {
	raw, err := readLimited(c.Request.Body, maxBackupSize)
	if errors.Is(err, errTooLarge) {
		BadRequest(c, fmt.Sprintf("备份文件超过 %d MB", maxBackupSize>>20))
		return
	}
	if err != nil {
		BadRequest(c, "读取备份失败")
		return
	}
	if _, err := h.svc.Restore(c.Request.Context(), c.Param("id"), []byte(raw)); err != nil {
		var decErr *models.DecodeError
		if errors.As(err, &decErr) {
			BadRequest(c, "备份文件格式错误: "+decErr.Error())
			return
		}
		respondError(c, err, "恢复备份失败")
		return
	}
	SuccessWithMessage(c, "恢复成功", nil)
}
