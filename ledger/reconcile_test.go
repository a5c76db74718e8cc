package ledger

import (
	"testing"

	"eventledger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func fixtures() ([]models.BankLine, []models.Transaction) {
	lines := []models.BankLine{
		{ID: "b1", Date: "2025-03-10", Description: "CB SONO", Amount: dec("-150")},
		{ID: "b2", Date: "2025-03-12", Description: "VIR MAIRIE", Amount: dec("1500")},
		{ID: "b3", Date: "2025-03-15", Description: "CB BUVETTE", Amount: dec("-40")},
	}
	txs := []models.Transaction{
		{ID: "t1", Date: "2025-03-01", Category: "Son", Amount: dec("150"), Type: models.TransactionExpense, Status: models.StatusPending},
		{ID: "t2", Date: "2025-02-20", Category: "Subvention", Amount: dec("1500"), Type: models.TransactionIncome, Status: models.StatusPending},
		{ID: "t3", Date: "2025-03-14", Category: "Buvette", Amount: dec("40"), Type: models.TransactionExpense, Status: models.StatusPending},
	}
	return lines, txs
}

func TestLinkThenUnlink(t *testing.T) {
	lines, txs := fixtures()

	lines2, txs2, err := Link(lines, txs, "b1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", lines2[0].TransactionID)
	assert.Equal(t, models.StatusRealized, txs2[0].Status)
	assert.Equal(t, "2025-03-10", txs2[0].Date)

	// 入参不被修改
	assert.Empty(t, lines[0].TransactionID)
	assert.Equal(t, "2025-03-01", txs[0].Date)

	lines3, txs3, err := Unlink(lines2, txs2, "b1")
	require.NoError(t, err)
	assert.Empty(t, lines3[0].TransactionID)
	assert.Equal(t, models.StatusPending, txs3[0].Status)
	assert.Equal(t, "2025-03-10", txs3[0].Date, "取消关联不恢复日期")
}

func TestLink_Errors(t *testing.T) {
	lines, txs := fixtures()

	_, _, err := Link(lines, txs, "nope", "t1")
	assert.ErrorIs(t, err, ErrBankLineNotFound)
	_, _, err = Link(lines, txs, "b1", "nope")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	lines, txs, err = Link(lines, txs, "b1", "t1")
	require.NoError(t, err)
	_, _, err = Link(lines, txs, "b2", "t1")
	assert.ErrorIs(t, err, ErrAlreadyLinked)

	// 同一流水重复关联同一交易是允许的
	_, _, err = Link(lines, txs, "b1", "t1")
	assert.NoError(t, err)

	_, _, err = Unlink(lines, txs, "b2")
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestCandidates_ExcludeLinkedElsewhere(t *testing.T) {
	lines, txs := fixtures()
	lines, txs, err := Link(lines, txs, "b1", "t1")
	require.NoError(t, err)

	for _, other := range []string{"b2", "b3"} {
		cands, err := Candidates(lines, txs, other)
		require.NoError(t, err)
		for _, c := range cands {
			assert.NotEqual(t, "t1", c.Transaction.ID, "流水 %s 的候选中出现已关联交易", other)
		}
		assert.Len(t, cands, 2)
	}

	// 自身已关联的交易仍在候选中
	cands, err := Candidates(lines, txs, "b1")
	require.NoError(t, err)
	assert.Len(t, cands, 3)

	_, err = Candidates(lines, txs, "nope")
	assert.ErrorIs(t, err, ErrBankLineNotFound)
}

func TestCandidates_AmountMatchIsAdvisory(t *testing.T) {
	lines, txs := fixtures()
	cands, err := Candidates(lines, txs, "b3")
	require.NoError(t, err)
	require.Len(t, cands, 3)

	matches := map[string]bool{}
	for _, c := range cands {
		matches[c.Transaction.ID] = c.AmountMatch
	}
	assert.Equal(t, map[string]bool{"t1": false, "t2": false, "t3": true}, matches)
}

func TestCreateFromBankLine(t *testing.T) {
	lines := []models.BankLine{{ID: "b1", Date: "2025-05-02", Description: "CB PAPETERIE", Amount: dec("-7.00")}}

	lines2, txs2, tx, err := CreateFromBankLine(lines, nil, CreateRequest{
		BankLineID: "b1", Category: "Fournitures", BudgetLineID: "exp2",
	}, seqID("t"))
	require.NoError(t, err)

	assert.Equal(t, "t1", tx.ID)
	assert.True(t, tx.Amount.Equal(dec("7")))
	assert.Equal(t, models.TransactionExpense, tx.Type)
	assert.Equal(t, models.StatusRealized, tx.Status)
	assert.Equal(t, "2025-05-02", tx.Date)
	assert.Equal(t, "CB PAPETERIE", tx.Description)
	assert.Equal(t, "exp2", tx.BudgetLineID)
	assert.Equal(t, "t1", lines2[0].TransactionID)
	require.Len(t, txs2, 1)
	assert.Equal(t, *tx, txs2[0])
}

func TestCreateFromBankLine_IncomeAndErrors(t *testing.T) {
	lines := []models.BankLine{{ID: "b1", Date: "2025-05-02", Description: "VIR", Amount: dec("0")}}

	_, _, tx, err := CreateFromBankLine(lines, nil, CreateRequest{
		BankLineID: "b1", Category: "Dons", BudgetLineID: "inc3", Description: "Don anonyme",
	}, seqID("t"))
	require.NoError(t, err)
	assert.Equal(t, models.TransactionIncome, tx.Type)
	assert.Equal(t, "Don anonyme", tx.Description)

	_, _, _, err = CreateFromBankLine(lines, nil, CreateRequest{BankLineID: "x", Category: "a", BudgetLineID: "b"}, seqID("t"))
	assert.ErrorIs(t, err, ErrBankLineNotFound)
	_, _, _, err = CreateFromBankLine(lines, nil, CreateRequest{BankLineID: "b1"}, seqID("t"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBulkOperations(t *testing.T) {
	lines, txs := fixtures()
	lines, _, err := Link(lines, txs, "b2", "t2")
	require.NoError(t, err)

	kept := ClearReconciled(lines)
	require.Len(t, kept, 2)
	for _, l := range kept {
		assert.False(t, l.IsLinked())
	}
	assert.Empty(t, ClearAll())

	rest, err := DeleteBankLine(lines, "b1")
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Len(t, lines, 3)
	_, err = DeleteBankLine(lines, "zz")
	assert.ErrorIs(t, err, ErrBankLineNotFound)

	added := AddBankLine(lines, models.BankLine{ID: "b4", Amount: dec("1")})
	assert.Len(t, added, 4)
}

func TestSummarize(t *testing.T) {
	lines, txs := fixtures()
	lines, _, err := Link(lines, txs, "b2", "t2")
	require.NoError(t, err)

	s := Summarize(lines)
	assert.Equal(t, 3, s.Lines)
	assert.Equal(t, 1, s.Linked)
	assert.Equal(t, 2, s.Unlinked)
	assert.True(t, s.Balance.Equal(dec("1310")))
	assert.True(t, s.UnlinkedAmount.Equal(dec("-190")))
}
