package ledger

import (
	"sort"
	"strconv"
	"strings"

	"eventledger/models"

	"github.com/shopspring/decimal"
)

// SponsorCategory 仪表盘中赞助收入的分类名
const SponsorCategory = "Partenaires & Sponsors"

// CategoryAmount 分类金额
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dashboard 年度概览
type Dashboard struct {
	Year              int              `json:"year"`
	IncomeRealized    decimal.Decimal  `json:"incomeRealized"`
	IncomePending     decimal.Decimal  `json:"incomePending"`
	ExpenseRealized   decimal.Decimal  `json:"expenseRealized"`
	ExpensePending    decimal.Decimal  `json:"expensePending"`
	SponsorsRealized  decimal.Decimal  `json:"sponsorsRealized"`
	SponsorsPending   decimal.Decimal  `json:"sponsorsPending"`
	Balance           decimal.Decimal  `json:"balance"`
	ProjectedBalance  decimal.Decimal  `json:"projectedBalance"`
	IncomeByCategory  []CategoryAmount `json:"incomeByCategory"`
	ExpenseByCategory []CategoryAmount `json:"expenseByCategory"`
}

// SponsorForYear 赞助商在某年的到账与待收金额
// 有 yearlyData 时只看对应年份；没有 yearlyData 的旧数据使用根字段，到账按 datePaid 年份过滤
func SponsorForYear(s models.Sponsor, year int) (paid, pending decimal.Decimal) {
	y := strconv.Itoa(year)
	if s.YearlyData != nil {
		yd, ok := s.YearlyData[y]
		if !ok {
			return decimal.Zero, decimal.Zero
		}
		if yd.DatePaid != "" {
			paid = yd.AmountPaid
		} else {
			paid = decimal.Zero
		}
		return paid, decimal.Max(decimal.Zero, yd.AmountPromised.Sub(yd.AmountPaid))
	}
	paid = decimal.Zero
	if s.DatePaid != "" && strings.HasPrefix(s.DatePaid, y) {
		paid = s.AmountPaid
	}
	return paid, s.Outstanding()
}

// BuildDashboard 计算某年的收支概览
// 状态为空的旧交易按已实现统计
func BuildDashboard(data *models.EditionData, year int) *Dashboard {
	d := &Dashboard{
		Year:             year,
		IncomeRealized:   decimal.Zero,
		IncomePending:    decimal.Zero,
		ExpenseRealized:  decimal.Zero,
		ExpensePending:   decimal.Zero,
		SponsorsRealized: decimal.Zero,
		SponsorsPending:  decimal.Zero,
	}
	incomeCats := map[string]decimal.Decimal{}
	expenseCats := map[string]decimal.Decimal{}

	for _, t := range data.Transactions {
		if t.Year() != year {
			continue
		}
		realized := t.IsRealizedOrLegacy()
		switch t.Type {
		case models.TransactionIncome:
			if realized {
				d.IncomeRealized = d.IncomeRealized.Add(t.Amount)
			} else {
				d.IncomePending = d.IncomePending.Add(t.Amount)
			}
			incomeCats[t.Category] = incomeCats[t.Category].Add(t.Amount)
		case models.TransactionExpense:
			if realized {
				d.ExpenseRealized = d.ExpenseRealized.Add(t.Amount)
			} else {
				d.ExpensePending = d.ExpensePending.Add(t.Amount)
			}
			expenseCats[t.Category] = expenseCats[t.Category].Add(t.Amount)
		}
	}

	for _, s := range data.Sponsors {
		paid, pending := SponsorForYear(s, year)
		d.SponsorsRealized = d.SponsorsRealized.Add(paid)
		d.SponsorsPending = d.SponsorsPending.Add(pending)
	}
	if sponsors := d.SponsorsRealized.Add(d.SponsorsPending); sponsors.IsPositive() {
		incomeCats[SponsorCategory] = incomeCats[SponsorCategory].Add(sponsors)
	}

	totalIncome := d.IncomeRealized.Add(d.SponsorsRealized)
	d.Balance = totalIncome.Sub(d.ExpenseRealized)
	d.ProjectedBalance = totalIncome.Add(d.IncomePending).Add(d.SponsorsPending).
		Sub(d.ExpenseRealized).Sub(d.ExpensePending)
	d.IncomeByCategory = sortedAmounts(incomeCats)
	d.ExpenseByCategory = sortedAmounts(expenseCats)
	return d
}

func sortedAmounts(m map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for k, v := range m {
		out = append(out, CategoryAmount{Category: k, Amount: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
