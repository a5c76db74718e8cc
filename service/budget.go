package service

import (
	"context"

	"eventledger/ledger"
	"eventledger/models"
)

// BudgetComparison 预算对比；year 为 0 时使用届次的预算年份
func (s *LedgerService) BudgetComparison(ctx context.Context, editionID string, year int) (*ledger.Comparison, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	if year == 0 {
		year = data.BudgetYear
	}
	return ledger.CompareBudget(data.Budget, data.Transactions, data.Archives, year), nil
}

// SetBudgetYear 设置预算年份
func (s *LedgerService) SetBudgetYear(ctx context.Context, editionID string, year int) error {
	if _, err := s.repo.GetEdition(ctx, editionID); err != nil {
		return err
	}
	return s.repo.SaveBudgetYear(ctx, editionID, year)
}

// BudgetLineInput 新增预算行或分类
type BudgetLineInput struct {
	Section  models.BudgetSection `json:"section" binding:"required"`
	Category string               `json:"category" binding:"required"`
	Label    string               `json:"label"`
}

// AddBudgetLine 在分类下新增预算行
func (s *LedgerService) AddBudgetLine(ctx context.Context, editionID string, in BudgetLineInput) (*models.BudgetLine, error) {
	return s.addBudgetLine(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, *models.BudgetLine, error) {
		return ledger.AddLine(lines, in.Section, in.Category, in.Label, s.newID)
	})
}

// AddBudgetCategory 新增分类（附带一行默认预算行）
func (s *LedgerService) AddBudgetCategory(ctx context.Context, editionID string, in BudgetLineInput) (*models.BudgetLine, error) {
	return s.addBudgetLine(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, *models.BudgetLine, error) {
		return ledger.AddCategory(lines, in.Section, in.Category, s.newID)
	})
}

func (s *LedgerService) addBudgetLine(ctx context.Context, editionID string, add func([]models.BudgetLine) ([]models.BudgetLine, *models.BudgetLine, error)) (*models.BudgetLine, error) {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return nil, err
	}
	lines, line, err := add(data.Budget)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveBudget(ctx, editionID, lines); err != nil {
		return nil, err
	}
	return line, nil
}

// editBudget 读取预算、修改并整体写回
func (s *LedgerService) editBudget(ctx context.Context, editionID string, edit func([]models.BudgetLine) ([]models.BudgetLine, error)) error {
	data, err := s.repo.Load(ctx, editionID)
	if err != nil {
		return err
	}
	lines, err := edit(data.Budget)
	if err != nil {
		return err
	}
	return s.repo.SaveBudget(ctx, editionID, lines)
}

// RenameBudgetCategory 重命名分类
func (s *LedgerService) RenameBudgetCategory(ctx context.Context, editionID string, section models.BudgetSection, oldName, newName string) error {
	return s.editBudget(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, error) {
		return ledger.RenameCategory(lines, section, oldName, newName)
	})
}

// DeleteBudgetCategory 删除分类及其全部行
func (s *LedgerService) DeleteBudgetCategory(ctx context.Context, editionID string, section models.BudgetSection, category string) error {
	return s.editBudget(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, error) {
		return ledger.DeleteCategory(lines, section, category)
	})
}

// UpdateBudgetLine 修改标签或手工上年金额
func (s *LedgerService) UpdateBudgetLine(ctx context.Context, editionID, lineID string, u ledger.LineUpdate) error {
	return s.editBudget(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, error) {
		return ledger.UpdateLine(lines, lineID, u)
	})
}

// DeleteBudgetLine 删除预算行
func (s *LedgerService) DeleteBudgetLine(ctx context.Context, editionID, lineID string) error {
	return s.editBudget(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, error) {
		return ledger.DeleteLine(lines, lineID)
	})
}

// ImportPriorYear 导入上年实际 CSV，返回匹配行数
func (s *LedgerService) ImportPriorYear(ctx context.Context, editionID, raw string) (int, error) {
	var matched int
	err := s.editBudget(ctx, editionID, func(lines []models.BudgetLine) ([]models.BudgetLine, error) {
		out, n, err := ledger.ImportPriorYear(lines, raw)
		matched = n
		return out, err
	})
	return matched, err
}
