package ledger

import (
	"testing"
	"time"

	"eventledger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsorForYear(t *testing.T) {
	tests := []struct {
		name    string
		sponsor models.Sponsor
		paid    string
		pending string
	}{
		{
			name: "yearly data paid",
			sponsor: models.Sponsor{YearlyData: map[string]models.SponsorYear{
				"2025": {AmountPromised: dec("500"), AmountPaid: dec("300"), DatePaid: "2025-04-01"},
			}},
			paid: "300", pending: "200",
		},
		{
			name: "yearly data without payment date",
			sponsor: models.Sponsor{YearlyData: map[string]models.SponsorYear{
				"2025": {AmountPromised: dec("500"), AmountPaid: dec("300")},
			}},
			paid: "0", pending: "200",
		},
		{
			name: "yearly data for another year",
			sponsor: models.Sponsor{YearlyData: map[string]models.SponsorYear{
				"2024": {AmountPromised: dec("500")},
			}},
			paid: "0", pending: "0",
		},
		{
			name:    "legacy root fields",
			sponsor: models.Sponsor{AmountPromised: dec("100"), AmountPaid: dec("150"), DatePaid: "2025-02-02"},
			paid:    "150", pending: "0",
		},
		{
			name:    "legacy paid another year",
			sponsor: models.Sponsor{AmountPromised: dec("100"), AmountPaid: dec("40"), DatePaid: "2024-02-02"},
			paid:    "0", pending: "60",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paid, pending := SponsorForYear(tt.sponsor, 2025)
			assert.True(t, paid.Equal(dec(tt.paid)), paid.String())
			assert.True(t, pending.Equal(dec(tt.pending)), pending.String())
		})
	}
}

func TestBuildDashboard(t *testing.T) {
	data := models.NewEditionData(2025)
	data.Transactions = []models.Transaction{
		{ID: "1", Date: "2025-01-10", Category: "Inscriptions", Amount: dec("1000"), Type: models.TransactionIncome, Status: models.StatusRealized},
		{ID: "2", Date: "2025-01-11", Category: "Buvette", Amount: dec("200"), Type: models.TransactionIncome, Status: models.StatusPending},
		{ID: "3", Date: "2025-01-12", Category: "Logistique", Amount: dec("300"), Type: models.TransactionExpense},
		{ID: "4", Date: "2025-01-13", Category: "Logistique", Amount: dec("50"), Type: models.TransactionExpense, Status: models.StatusPending},
		{ID: "5", Date: "2024-12-31", Category: "Logistique", Amount: dec("9999"), Type: models.TransactionExpense, Status: models.StatusRealized},
	}
	data.Sponsors = []models.Sponsor{{
		ID: "s1", Status: models.SponsorAccepted,
		YearlyData: map[string]models.SponsorYear{"2025": {AmountPromised: dec("500"), AmountPaid: dec("400"), DatePaid: "2025-03-01"}},
	}}

	d := BuildDashboard(data, 2025)
	assert.True(t, d.IncomeRealized.Equal(dec("1000")))
	assert.True(t, d.IncomePending.Equal(dec("200")))
	assert.True(t, d.ExpenseRealized.Equal(dec("300")), "状态为空按已实现统计")
	assert.True(t, d.ExpensePending.Equal(dec("50")))
	assert.True(t, d.SponsorsRealized.Equal(dec("400")))
	assert.True(t, d.SponsorsPending.Equal(dec("100")))
	assert.True(t, d.Balance.Equal(dec("1100")), d.Balance.String())
	assert.True(t, d.ProjectedBalance.Equal(dec("1350")), d.ProjectedBalance.String())

	require.Len(t, d.IncomeByCategory, 3)
	assert.Equal(t, "Inscriptions", d.IncomeByCategory[0].Category)
	assert.Equal(t, SponsorCategory, d.IncomeByCategory[1].Category)
	require.Len(t, d.ExpenseByCategory, 1)
	assert.True(t, d.ExpenseByCategory[0].Amount.Equal(dec("350")))
}

func TestSnapshotAndArchives(t *testing.T) {
	data := models.NewEditionData(2025)
	data.Transactions = []models.Transaction{{ID: "t1", Amount: dec("1"), Type: models.TransactionIncome}}
	data.Archives = []models.Archive{{ID: "old"}}

	now := time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)
	a := Snapshot(data, "Clôture 2025", now, seqID("a"))
	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, "2025-12-31T18:00:00Z", a.DateArchived)
	assert.Nil(t, a.Data.Archives)
	assert.Equal(t, 2025, a.Data.BudgetYear)

	// 快照与原数据互不影响
	data.Transactions[0].Description = "modifié"
	assert.Empty(t, a.Data.Transactions[0].Description)

	archives := append(data.Archives, a)
	found, ok := FindArchive(archives, "a1")
	require.True(t, ok)
	assert.Equal(t, "Clôture 2025", found.Name)

	rest, ok := RemoveArchive(archives, "old")
	assert.True(t, ok)
	assert.Len(t, rest, 1)
	_, ok = RemoveArchive(archives, "missing")
	assert.False(t, ok)
}
