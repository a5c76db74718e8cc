package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SponsorStatus 赞助状态
type SponsorStatus string

const (
	SponsorPending  SponsorStatus = "pending"
	SponsorAccepted SponsorStatus = "accepted"
	SponsorRefused  SponsorStatus = "refused"
)

// SponsorYear 赞助商某一年的承诺/到账
type SponsorYear struct {
	AmountPromised decimal.Decimal `json:"amountPromised"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	DatePaid       string          `json:"datePaid,omitempty"`
}

// Sponsor 赞助商
type Sponsor struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Contact        string                 `json:"contact"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone,omitempty"`
	AmountPromised decimal.Decimal        `json:"amountPromised"`
	AmountPaid     decimal.Decimal        `json:"amountPaid"`
	DatePaid       string                 `json:"datePaid,omitempty"`
	DateSent       string                 `json:"dateSent,omitempty"`
	DateReminder   string                 `json:"dateReminder,omitempty"`
	Notes          string                 `json:"notes,omitempty"`
	LastYearTotal  *decimal.Decimal       `json:"lastYearTotal,omitempty"`
	Status         SponsorStatus          `json:"status"`
	YearlyData     map[string]SponsorYear `json:"yearlyData,omitempty"`
}

// Outstanding 承诺未到账部分，不小于 0
func (s Sponsor) Outstanding() decimal.Decimal {
	return decimal.Max(decimal.Zero, s.AmountPromised.Sub(s.AmountPaid))
}

// Validate 校验状态
func (s Sponsor) Validate() error {
	switch s.Status {
	case SponsorPending, SponsorAccepted, SponsorRefused:
		return nil
	}
	return fmt.Errorf("sponsor %s: 未知状态 %q", s.ID, s.Status)
}
