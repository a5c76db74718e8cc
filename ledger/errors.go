package ledger

import "errors"

var (
	ErrBankLineNotFound    = errors.New("银行流水不存在")
	ErrTransactionNotFound = errors.New("交易不存在")
	ErrAlreadyLinked       = errors.New("该交易已关联到其他银行流水")
	ErrNotLinked           = errors.New("银行流水未关联交易")
	ErrNothingToImport     = errors.New("没有可导入的流水")
	ErrBudgetLineNotFound  = errors.New("预算行不存在")
	ErrCategoryNotFound    = errors.New("预算分类不存在")
	ErrNoPriorYearMatch    = errors.New("CSV 中没有与当前预算匹配的行")
	ErrInvalidInput        = errors.New("参数错误")
)
