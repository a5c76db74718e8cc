package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType 收支类型
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid 是否为合法的收支类型
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// TransactionStatus 收支状态：realized 已入账/已支付，pending 已承诺/待结算
type TransactionStatus string

const (
	StatusRealized TransactionStatus = "realized"
	StatusPending  TransactionStatus = "pending"
)

// Transaction 收支记录
type Transaction struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"` // YYYY-MM-DD
	Description  string            `json:"description"`
	Category     string            `json:"category"`
	Amount       decimal.Decimal   `json:"amount"` // 无符号金额，方向由 Type 决定
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	BudgetLineID string            `json:"budgetLineId,omitempty"`
	EventID      string            `json:"eventId,omitempty"`
	IsVolunteer  bool              `json:"isVolunteer,omitempty"`
	Hours        *decimal.Decimal  `json:"hours,omitempty"`
	HourlyRate   *decimal.Decimal  `json:"hourlyRate,omitempty"`
}

// Year 返回日期中的年份，无法解析时返回 0
func (t Transaction) Year() int {
	return DateYear(t.Date)
}

// IsRealizedOrLegacy 旧数据没有 status 字段，视为已入账
func (t Transaction) IsRealizedOrLegacy() bool {
	return t.Status == StatusRealized || t.Status == ""
}

// Validate 校验枚举字段
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("transaction %s: 未知类型 %q", t.ID, t.Type)
	}
	switch t.Status {
	case StatusRealized, StatusPending, "":
	default:
		return fmt.Errorf("transaction %s: 未知状态 %q", t.ID, t.Status)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %s: 金额不能为负", t.ID)
	}
	return nil
}

// DateYear 取 YYYY-MM-DD 字符串的年份部分
func DateYear(date string) int {
	head, _, _ := strings.Cut(date, "-")
	y, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return y
}
