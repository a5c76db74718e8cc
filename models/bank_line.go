package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BankLine 银行对账单行，金额有符号：贷方为正，借方为负
type BankLine struct {
	ID            string          `json:"id"`
	Date          string          `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId,omitempty"`
}

// IsLinked 是否已关联收支记录
func (b BankLine) IsLinked() bool {
	return b.TransactionID != ""
}

// Validate 校验必填字段
func (b BankLine) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("bank line: 缺少 id")
	}
	return nil
}
