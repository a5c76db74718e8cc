package service

import (
	"context"
	"fmt"
	"strings"

	"eventledger/ledger"
	"eventledger/models"

	"github.com/shopspring/decimal"
)

// BankView 银行流水列表及对账汇总
type BankView struct {
	Lines              []models.BankLine       `json:"lines"`
	Summary            ledger.ReconcileSummary `json:"summary"`
	LastReconciledDate string                  `json:"lastReconciledDate"`
}

// BankLines 列出流水
func (s *LedgerService) BankLines(ctx context.Context, editionID string) (*BankView, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return &BankView{
		Lines:              data.BankLines,
		Summary:            ledger.Summarize(data.BankLines),
		LastReconciledDate: data.LastReconciledDate,
	}, nil
}

// BankLineInput 手工录入流水
type BankLineInput struct {
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// AddBankLine 手工添加一条流水
func (s *LedgerService) AddBankLine(ctx context.Context, editionID string, in BankLineInput) (*models.BankLine, error) {
	if strings.TrimSpace(in.Date) == "" {
		return nil, fmt.Errorf("%w: 日期必填", ledger.ErrInvalidInput)
	}
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	line := models.BankLine{
		ID:          s.newID(),
		Date:        ledger.NormalizeDate(in.Date),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
	}
	if err := s.repo.SaveBankLines(ctx, editionID, ledger.AddBankLine(data.BankLines, line)); err != nil {
		return nil, err
	}
	return &line, nil
}

// ImportStatement 导入对账单文本，追加到现有流水之后
// 没有可导入的行时返回 ledger.ErrNothingToImport，汇总照常返回
func (s *LedgerService) ImportStatement(ctx context.Context, editionID, raw string) (*ledger.ImportResult, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	res, err := ledger.ParseStatement(raw, data.LastReconciledDate, s.newID)
	if err != nil {
		return res, err
	}
	lines := append(data.BankLines, res.Lines...)
	if err := s.repo.SaveBankLines(ctx, editionID, lines); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteBankLine 删除单条流水
func (s *LedgerService) DeleteBankLine(ctx context.Context, editionID, lineID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	lines, err := ledger.DeleteBankLine(data.BankLines, lineID)
	if err != nil {
		return err
	}
	return s.repo.SaveBankLines(ctx, editionID, lines)
}

// ClearBankLines 清空流水；reconciledOnly 为 true 时只删除已关联的
func (s *LedgerService) ClearBankLines(ctx context.Context, editionID string, reconciledOnly bool) (int, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return 0, err
	}
	lines := ledger.ClearAll()
	if reconciledOnly {
		lines = ledger.ClearReconciled(data.BankLines)
	}
	if err := s.repo.SaveBankLines(ctx, editionID, lines); err != nil {
		return 0, err
	}
	return len(data.BankLines) - len(lines), nil
}

// Candidates 可关联的交易
func (s *LedgerService) Candidates(ctx context.Context, editionID, lineID string) ([]ledger.Candidate, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	return ledger.Candidates(data.BankLines, data.Transactions, lineID)
}

// Link 关联流水与交易；先写流水，再写交易
func (s *LedgerService) Link(ctx context.Context, editionID, lineID, txID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	lines, txs, err := ledger.Link(data.BankLines, data.Transactions, lineID, txID)
	if err != nil {
		return err
	}
	if err := s.repo.SaveBankLines(ctx, editionID, lines); err != nil {
		return err
	}
	return s.repo.SaveTransactions(ctx, editionID, txs)
}

// Unlink 解除关联；先写流水，再写交易
func (s *LedgerService) Unlink(ctx context.Context, editionID, lineID string) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	lines, txs, err := ledger.Unlink(data.BankLines, data.Transactions, lineID)
	if err != nil {
		return err
	}
	if err := s.repo.SaveBankLines(ctx, editionID, lines); err != nil {
		return err
	}
	return s.repo.SaveTransactions(ctx, editionID, txs)
}

// CreateFromBankLine 由流水生成交易；先写交易，再写流水
func (s *LedgerService) CreateFromBankLine(ctx context.Context, editionID string, req ledger.CreateRequest) (*models.Transaction, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	lines, txs, tx, err := ledger.CreateFromBankLine(data.BankLines, data.Transactions, req, s.newID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveTransactions(ctx, editionID, txs); err != nil {
		return nil, err
	}
	if err := s.repo.SaveBankLines(ctx, editionID, lines); err != nil {
		return nil, err
	}
	return tx, nil
}

// SetLastReconciledDate 设置最后对账日期，导入时早于等于该日期的行视为重复
func (s *LedgerService) SetLastReconciledDate(ctx context.Context, editionID, date string) error {
	if _, err := s.repo.GetEdition(ctx, editionID); err != nil {
		return err
	}
	return s.repo.SaveLastReconciledDate(ctx, editionID, ledger.NormalizeDate(date))
}
