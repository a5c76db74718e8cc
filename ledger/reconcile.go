package ledger

import (
	"fmt"
	"slices"

	"eventledger/models"

	"github.com/shopspring/decimal"
)

// Candidate 可关联的交易；AmountMatch 仅作提示
type Candidate struct {
	Transaction models.Transaction `json:"transaction"`
	AmountMatch bool               `json:"amountMatch"`
}

func findBankLine(lines []models.BankLine, id string) int {
	return slices.IndexFunc(lines, func(l models.BankLine) bool { return l.ID == id })
}

func findTransaction(txs []models.Transaction, id string) int {
	return slices.IndexFunc(txs, func(t models.Transaction) bool { return t.ID == id })
}

// linkedElsewhere 交易是否已被 bankID 以外的流水引用
func linkedElsewhere(lines []models.BankLine, bankID, txID string) bool {
	for _, l := range lines {
		if l.ID != bankID && l.TransactionID == txID {
			return true
		}
	}
	return false
}

// Candidates 返回可与流水 bankID 关联的交易：未被其他流水引用的全部交易
func Candidates(lines []models.BankLine, txs []models.Transaction, bankID string) ([]Candidate, error) {
	i := findBankLine(lines, bankID)
	if i < 0 {
		return nil, ErrBankLineNotFound
	}
	target := lines[i].Amount.Abs()

	out := make([]Candidate, 0, len(txs))
	for _, t := range txs {
		if linkedElsewhere(lines, bankID, t.ID) {
			continue
		}
		out = append(out, Candidate{Transaction: t, AmountMatch: t.Amount.Equal(target)})
	}
	return out, nil
}

// Link 关联流水与交易
// 交易状态置为已实现，日期被流水日期覆盖；取消关联时不会恢复原日期。
// 返回新的切片，入参不被修改。
func Link(lines []models.BankLine, txs []models.Transaction, bankID, txID string) ([]models.BankLine, []models.Transaction, error) {
	bi := findBankLine(lines, bankID)
	if bi < 0 {
		return nil, nil, ErrBankLineNotFound
	}
	ti := findTransaction(txs, txID)
	if ti < 0 {
		return nil, nil, ErrTransactionNotFound
	}
	if linkedElsewhere(lines, bankID, txID) {
		return nil, nil, ErrAlreadyLinked
	}

	lines = slices.Clone(lines)
	txs = slices.Clone(txs)
	lines[bi].TransactionID = txID
	txs[ti].Status = models.StatusRealized
	txs[ti].Date = lines[bi].Date
	return lines, txs, nil
}

// Unlink 解除关联，交易回到待定状态
func Unlink(lines []models.BankLine, txs []models.Transaction, bankID string) ([]models.BankLine, []models.Transaction, error) {
	bi := findBankLine(lines, bankID)
	if bi < 0 {
		return nil, nil, ErrBankLineNotFound
	}
	txID := lines[bi].TransactionID
	if txID == "" {
		return nil, nil, ErrNotLinked
	}

	lines = slices.Clone(lines)
	txs = slices.Clone(txs)
	lines[bi].TransactionID = ""
	// 交易可能已被删除，此时只解除流水一侧
	if ti := findTransaction(txs, txID); ti >= 0 {
		txs[ti].Status = models.StatusPending
	}
	return lines, txs, nil
}

// CreateRequest 由流水直接生成交易的参数
type CreateRequest struct {
	BankLineID   string `json:"-"`
	Category     string `json:"category" binding:"required"`
	BudgetLineID string `json:"budgetLineId" binding:"required"`
	Description  string `json:"description"`
}

// CreateFromBankLine 依据流水生成一笔已实现交易并立即关联
// 金额取绝对值，流水金额 >= 0 为收入，否则为支出
func CreateFromBankLine(lines []models.BankLine, txs []models.Transaction, req CreateRequest, newID func() string) ([]models.BankLine, []models.Transaction, *models.Transaction, error) {
	bi := findBankLine(lines, req.BankLineID)
	if bi < 0 {
		return nil, nil, nil, ErrBankLineNotFound
	}
	if req.Category == "" || req.BudgetLineID == "" {
		return nil, nil, nil, fmt.Errorf("%w: 分类和预算行必填", ErrInvalidInput)
	}
	line := lines[bi]

	typ := models.TransactionIncome
	if line.Amount.IsNegative() {
		typ = models.TransactionExpense
	}
	desc := req.Description
	if desc == "" {
		desc = line.Description
	}
	tx := models.Transaction{
		ID:           newID(),
		Date:         line.Date,
		Description:  desc,
		Category:     req.Category,
		Amount:       line.Amount.Abs(),
		Type:         typ,
		Status:       models.StatusRealized,
		BudgetLineID: req.BudgetLineID,
	}

	lines = slices.Clone(lines)
	lines[bi].TransactionID = tx.ID
	txs = append(slices.Clone(txs), tx)
	return lines, txs, &tx, nil
}

// AddBankLine 手工添加流水
func AddBankLine(lines []models.BankLine, line models.BankLine) []models.BankLine {
	return append(slices.Clone(lines), line)
}

// DeleteBankLine 删除单条流水，关联的交易保持不变
func DeleteBankLine(lines []models.BankLine, id string) ([]models.BankLine, error) {
	if findBankLine(lines, id) < 0 {
		return nil, ErrBankLineNotFound
	}
	return slices.DeleteFunc(slices.Clone(lines), func(l models.BankLine) bool { return l.ID == id }), nil
}

// ClearAll 清空全部流水
func ClearAll() []models.BankLine {
	return []models.BankLine{}
}

// ClearReconciled 删除已关联交易的流水
func ClearReconciled(lines []models.BankLine) []models.BankLine {
	out := make([]models.BankLine, 0, len(lines))
	for _, l := range lines {
		if !l.IsLinked() {
			out = append(out, l)
		}
	}
	return out
}

// ReconcileSummary 对账汇总
type ReconcileSummary struct {
	Lines          int             `json:"lines"`
	Linked         int             `json:"linked"`
	Unlinked       int             `json:"unlinked"`
	Balance        decimal.Decimal `json:"balance"`
	UnlinkedAmount decimal.Decimal `json:"unlinkedAmount"`
}

// Summarize 统计流水的对账情况
func Summarize(lines []models.BankLine) ReconcileSummary {
	s := ReconcileSummary{Lines: len(lines), Balance: decimal.Zero, UnlinkedAmount: decimal.Zero}
	for _, l := range lines {
		s.Balance = s.Balance.Add(l.Amount)
		if l.IsLinked() {
			s.Linked++
			continue
		}
		s.Unlinked++
		s.UnlinkedAmount = s.UnlinkedAmount.Add(l.Amount)
	}
	return s
}
