package api

import (
	"errors"
	"net/http"

	"eventledger/config"
	"eventledger/ledger"
	"eventledger/models"
	"eventledger/repository"
	"eventledger/service"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// statusOf 业务错误对应的 HTTP 状态码，未识别的一律 500
func statusOf(err error) int {
	var decErr *models.DecodeError
	switch {
	case errors.Is(err, repository.ErrEditionNotFound),
		errors.Is(err, ledger.ErrBankLineNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrBudgetLineNotFound),
		errors.Is(err, ledger.ErrCategoryNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrAlreadyLinked),
		errors.Is(err, ledger.ErrNotLinked):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, ledger.ErrNothingToImport),
		errors.Is(err, ledger.ErrNoPriorYearMatch),
		errors.Is(err, service.ErrNoRecipient),
		errors.As(err, &decErr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmailDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError 按错误类型返回；存储层错误在 release 模式下只返回 fallback
func respondError(c *gin.Context, err error, fallback string) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		InternalError(c, config.SafeErrorMessage(err, fallback))
		return
	}
	Error(c, code, err.Error())
}

// bindError 参数绑定失败
func bindError(c *gin.Context, err error) {
	BadRequest(c, config.SafeErrorMessage(err, "参数错误"))
}
