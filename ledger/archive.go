package ledger

import (
	"slices"
	"time"

	"eventledger/models"
)

// Snapshot 生成当前数据的归档；归档列表本身不进入快照
func Snapshot(data *models.EditionData, name string, now time.Time, newID func() string) models.Archive {
	cp := *data
	cp.Transactions = slices.Clone(data.Transactions)
	cp.BankLines = slices.Clone(data.BankLines)
	cp.Budget = slices.Clone(data.Budget)
	cp.Sponsors = slices.Clone(data.Sponsors)
	cp.Contacts = slices.Clone(data.Contacts)
	cp.Contributions = slices.Clone(data.Contributions)
	cp.Volunteers = slices.Clone(data.Volunteers)
	cp.Events = slices.Clone(data.Events)
	cp.CategoriesIncome = slices.Clone(data.CategoriesIncome)
	cp.CategoriesExpense = slices.Clone(data.CategoriesExpense)
	cp.Archives = nil
	return models.Archive{
		ID:           newID(),
		DateArchived: now.UTC().Format(time.RFC3339),
		Name:         name,
		Data:         cp,
	}
}

// RemoveArchive 删除指定归档
func RemoveArchive(archives []models.Archive, id string) ([]models.Archive, bool) {
	match := func(a models.Archive) bool { return a.ID == id }
	if !slices.ContainsFunc(archives, match) {
		return archives, false
	}
	return slices.DeleteFunc(slices.Clone(archives), match), true
}

// FindArchive 按 id 查找归档
func FindArchive(archives []models.Archive, id string) (*models.Archive, bool) {
	i := slices.IndexFunc(archives, func(a models.Archive) bool { return a.ID == id })
	if i < 0 {
		return nil, false
	}
	return &archives[i], true
}
