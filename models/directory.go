package models

import (
	"github.com/shopspring/decimal"
)

// Contact 通讯录联系人
type Contact struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Organization string `json:"organization,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	Notes        string `json:"notes,omitempty"`
}

// Contribution 实物捐赠
type Contribution struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitValue   decimal.Decimal `json:"unitValue"`
	Beneficiary string          `json:"beneficiary"`
}

// Value 折算金额 = 数量 × 单价
func (c Contribution) Value() decimal.Decimal {
	return c.Quantity.Mul(c.UnitValue)
}

// Volunteer 志愿者
type Volunteer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	IsOrganizer bool   `json:"isOrganizer"`
	CreatedAt   int64  `json:"createdAt"` // 毫秒时间戳
}

// AppEvent 一届活动中的子活动
type AppEvent struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Color string `json:"color"`
}

// DefaultEventColor 子活动默认颜色
const DefaultEventColor = "#3B82F6"
