package ledger

import (
	"fmt"
	"slices"
	"strings"

	"eventledger/models"

	"github.com/shopspring/decimal"
)

// PriorSource 上年金额的来源
type PriorSource string

const (
	PriorLive    PriorSource = "live"
	PriorArchive PriorSource = "archive"
	PriorManual  PriorSource = "manual"
)

const (
	DefaultLineLabel     = "Nouveau libellé"
	DefaultCategoryLabel = "Ligne par défaut"
)

// ComparisonRow 单个预算行的 N / N-1 对比
type ComparisonRow struct {
	Line        models.BudgetLine `json:"line"`
	Current     decimal.Decimal   `json:"current"`
	Prior       decimal.Decimal   `json:"prior"`
	PriorSource PriorSource       `json:"priorSource"`
	Gap         decimal.Decimal   `json:"gap"`
}

// Subtotal 分区或分类小计
type Subtotal struct {
	Section  models.BudgetSection `json:"section"`
	Category string               `json:"category,omitempty"`
	Current  decimal.Decimal      `json:"current"`
	Prior    decimal.Decimal      `json:"prior"`
}

// Comparison 预算对比结果
// Result 为收入减支出，实物折算不计入
type Comparison struct {
	Year          int             `json:"year"`
	Rows          []ComparisonRow `json:"rows"`
	Categories    []Subtotal      `json:"categories"`
	Sections      []Subtotal      `json:"sections"`
	ResultCurrent decimal.Decimal `json:"resultCurrent"`
	ResultPrior   decimal.Decimal `json:"resultPrior"`
	ArchiveFound  bool            `json:"archiveFound"`
}

// RealizedForLine 指定年份已实现交易在该预算行上的合计
func RealizedForLine(lineID string, txs []models.Transaction, year int) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.BudgetLineID == lineID && t.Status == models.StatusRealized && t.Year() == year {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// PriorYearArchive 找到预算年份为 year-1 的第一个归档
func PriorYearArchive(archives []models.Archive, year int) *models.Archive {
	for i := range archives {
		if archives[i].Data.BudgetYear == year-1 {
			return &archives[i]
		}
	}
	return nil
}

// archivedRealized 归档中与 line 同分区、同分类、同标签的预算行的实现合计
// 归档中状态为空的交易按已实现处理
func archivedRealized(line models.BudgetLine, archive *models.Archive) (decimal.Decimal, bool) {
	if archive == nil {
		return decimal.Zero, false
	}
	i := slices.IndexFunc(archive.Data.Budget, line.SameSlot)
	if i < 0 {
		return decimal.Zero, false
	}
	archivedID := archive.Data.Budget[i].ID
	sum := decimal.Zero
	for _, t := range archive.Data.Transactions {
		if t.BudgetLineID == archivedID && t.IsRealizedOrLegacy() {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, true
}

// PriorYear 上年金额：本届 N-1 实时合计非零则取之，否则取 N-1 归档，最后取手工录入值
func PriorYear(line models.BudgetLine, txs []models.Transaction, archive *models.Archive, year int) (decimal.Decimal, PriorSource) {
	if live := RealizedForLine(line.ID, txs, year-1); !live.IsZero() {
		return live, PriorLive
	}
	if v, ok := archivedRealized(line, archive); ok {
		return v, PriorArchive
	}
	return line.PriorYearAmount, PriorManual
}

// CompareBudget 计算全部预算行的 N / N-1 对比及小计
func CompareBudget(lines []models.BudgetLine, txs []models.Transaction, archives []models.Archive, year int) *Comparison {
	archive := PriorYearArchive(archives, year)
	c := &Comparison{
		Year:          year,
		Rows:          make([]ComparisonRow, 0, len(lines)),
		ResultCurrent: decimal.Zero,
		ResultPrior:   decimal.Zero,
		ArchiveFound:  archive != nil,
	}

	catIndex := map[string]int{}
	secIndex := map[models.BudgetSection]int{}
	for _, s := range models.Sections() {
		secIndex[s] = len(c.Sections)
		c.Sections = append(c.Sections, Subtotal{Section: s, Current: decimal.Zero, Prior: decimal.Zero})
	}

	for _, line := range lines {
		cur := RealizedForLine(line.ID, txs, year)
		prior, src := PriorYear(line, txs, archive, year)
		c.Rows = append(c.Rows, ComparisonRow{
			Line: line, Current: cur, Prior: prior, PriorSource: src, Gap: cur.Sub(prior),
		})

		key := string(line.Section) + "\x00" + line.Category
		ci, ok := catIndex[key]
		if !ok {
			ci = len(c.Categories)
			catIndex[key] = ci
			c.Categories = append(c.Categories, Subtotal{
				Section: line.Section, Category: line.Category, Current: decimal.Zero, Prior: decimal.Zero,
			})
		}
		c.Categories[ci].Current = c.Categories[ci].Current.Add(cur)
		c.Categories[ci].Prior = c.Categories[ci].Prior.Add(prior)

		if si, ok := secIndex[line.Section]; ok {
			c.Sections[si].Current = c.Sections[si].Current.Add(cur)
			c.Sections[si].Prior = c.Sections[si].Prior.Add(prior)
		}
	}

	inc, exp := c.Sections[secIndex[models.SectionIncome]], c.Sections[secIndex[models.SectionExpense]]
	c.ResultCurrent = inc.Current.Sub(exp.Current)
	c.ResultPrior = inc.Prior.Sub(exp.Prior)
	return c
}

// AddLine 在已有分类下新增一行
func AddLine(lines []models.BudgetLine, section models.BudgetSection, category, label string, newID func() string) ([]models.BudgetLine, *models.BudgetLine, error) {
	if !section.Valid() || category == "" {
		return nil, nil, fmt.Errorf("%w: 分区或分类无效", ErrInvalidInput)
	}
	if label == "" {
		label = DefaultLineLabel
	}
	line := models.BudgetLine{ID: newID(), Section: section, Category: category, Label: label, PriorYearAmount: decimal.Zero}
	return append(slices.Clone(lines), line), &line, nil
}

// AddCategory 新增分类，附带一行默认预算行
func AddCategory(lines []models.BudgetLine, section models.BudgetSection, category string, newID func() string) ([]models.BudgetLine, *models.BudgetLine, error) {
	return AddLine(lines, section, strings.TrimSpace(category), DefaultCategoryLabel, newID)
}

// RenameCategory 重命名分区内的分类
func RenameCategory(lines []models.BudgetLine, section models.BudgetSection, oldName, newName string) ([]models.BudgetLine, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: 分类名不能为空", ErrInvalidInput)
	}
	out := slices.Clone(lines)
	found := false
	for i := range out {
		if out[i].Section == section && out[i].Category == oldName {
			out[i].Category = newName
			found = true
		}
	}
	if !found {
		return nil, ErrCategoryNotFound
	}
	return out, nil
}

// DeleteLine 删除预算行；关联的交易保留原 budgetLineId
func DeleteLine(lines []models.BudgetLine, id string) ([]models.BudgetLine, error) {
	if !slices.ContainsFunc(lines, func(l models.BudgetLine) bool { return l.ID == id }) {
		return nil, ErrBudgetLineNotFound
	}
	return slices.DeleteFunc(slices.Clone(lines), func(l models.BudgetLine) bool { return l.ID == id }), nil
}

// DeleteCategory 删除分区内的分类及其全部行
func DeleteCategory(lines []models.BudgetLine, section models.BudgetSection, category string) ([]models.BudgetLine, error) {
	match := func(l models.BudgetLine) bool { return l.Section == section && l.Category == category }
	if !slices.ContainsFunc(lines, match) {
		return nil, ErrCategoryNotFound
	}
	return slices.DeleteFunc(slices.Clone(lines), match), nil
}

// LineUpdate 预算行可修改字段，nil 表示不变
type LineUpdate struct {
	Label           *string          `json:"label"`
	PriorYearAmount *decimal.Decimal `json:"priorYearAmount"`
}

// UpdateLine 修改标签或手工上年金额
func UpdateLine(lines []models.BudgetLine, id string, u LineUpdate) ([]models.BudgetLine, error) {
	i := slices.IndexFunc(lines, func(l models.BudgetLine) bool { return l.ID == id })
	if i < 0 {
		return nil, ErrBudgetLineNotFound
	}
	out := slices.Clone(lines)
	if u.Label != nil {
		out[i].Label = *u.Label
	}
	if u.PriorYearAmount != nil {
		out[i].PriorYearAmount = *u.PriorYearAmount
	}
	return out, nil
}

// ImportPriorYear 从 Section;Category;Label;Amount 格式的 CSV 写入手工上年金额
// 首行视为表头；无匹配行时返回 ErrNoPriorYearMatch
func ImportPriorYear(lines []models.BudgetLine, raw string) ([]models.BudgetLine, int, error) {
	out := slices.Clone(lines)
	matched := 0
	rows := strings.Split(strings.TrimPrefix(raw, utf8BOM), "\n")
	for _, row := range rows[1:] {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		cols := strings.Split(row, ";")
		if len(cols) < 4 {
			continue
		}
		for i := range cols {
			cols[i] = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(cols[i]), `"`), `"`)
		}
		amount, ok := parseAmount(cols[3])
		if !ok {
			continue
		}
		slot := models.BudgetLine{Section: models.BudgetSection(cols[0]), Category: cols[1], Label: cols[2]}
		if i := slices.IndexFunc(out, slot.SameSlot); i >= 0 {
			out[i].PriorYearAmount = amount
			matched++
		}
	}
	if matched == 0 {
		return nil, 0, ErrNoPriorYearMatch
	}
	return out, matched, nil
}
