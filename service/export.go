package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"eventledger/ledger"
	"eventledger/models"

	"github.com/xuri/excelize/v2"
)

// ErrUnknownView 不支持导出的视图
var ErrUnknownView = errors.New("不支持导出该视图")

const utf8BOM = "\xEF\xBB\xBF"

// csvView 每个视图固定的列顺序
type csvView struct {
	header []string
	rows   func(data *models.EditionData) [][]string
}

var csvViews = map[string]csvView{
	"transactions": {
		header: []string{"date", "type", "status", "category", "description", "amount"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.Transactions))
			for _, t := range d.Transactions {
				out = append(out, []string{t.Date, string(t.Type), string(t.Status), t.Category, t.Description, t.Amount.StringFixed(2)})
			}
			return out
		},
	},
	// 五列：导入时按 日期;摘要;带符号金额 读取，可原样重新导入
	"bank-lines": {
		header: []string{"date", "description", "amount", "status", "transactionId"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.BankLines))
			for _, l := range d.BankLines {
				status := "unlinked"
				if l.IsLinked() {
					status = "linked"
				}
				out = append(out, []string{l.Date, l.Description, l.Amount.StringFixed(2), status, l.TransactionID})
			}
			return out
		},
	},
	// 与上年导入格式一致，可直接作为下一届的 N-1 数据
	"budget": {
		header: []string{"Section", "Categorie", "Libelle", "RealiseN"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.Budget))
			for _, l := range d.Budget {
				realized := ledger.RealizedForLine(l.ID, d.Transactions, d.BudgetYear)
				out = append(out, []string{string(l.Section), l.Category, l.Label, realized.StringFixed(2)})
			}
			return out
		},
	},
	"sponsors": {
		header: []string{"name", "contact", "email", "phone", "status", "amountPromised", "amountPaid", "datePaid", "dateSent", "dateReminder"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.Sponsors))
			for _, s := range d.Sponsors {
				out = append(out, []string{
					s.Name, s.Contact, s.Email, s.Phone, string(s.Status),
					s.AmountPromised.StringFixed(2), s.AmountPaid.StringFixed(2),
					s.DatePaid, s.DateSent, s.DateReminder,
				})
			}
			return out
		},
	},
	"contacts": {
		header: []string{"name", "organization", "role", "email", "phone", "notes"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.Contacts))
			for _, c := range d.Contacts {
				out = append(out, []string{c.Name, c.Organization, c.Role, c.Email, c.Phone, c.Notes})
			}
			return out
		},
	},
	"contributions": {
		header: []string{"description", "quantity", "unitValue", "value", "beneficiary"},
		rows: func(d *models.EditionData) [][]string {
			out := make([][]string, 0, len(d.Contributions))
			for _, c := range d.Contributions {
				out = append(out, []string{c.Description, c.Quantity.String(), c.UnitValue.StringFixed(2), c.Value().StringFixed(2), c.Beneficiary})
			}
			return out
		},
	},
}

// ExportService 导出服务
type ExportService struct{}

// NewExportService 创建导出服务
func NewExportService() *ExportService {
	return &ExportService{}
}

// HasView 视图是否支持 CSV 导出
func (s *ExportService) HasView(view string) bool {
	_, ok := csvViews[view]
	return ok
}

// WriteCSV 以分号分隔导出视图，带 BOM 以便 Excel 正确识别 UTF-8
func (s *ExportService) WriteCSV(w io.Writer, view string, data *models.EditionData) error {
	v, ok := csvViews[view]
	if !ok {
		return ErrUnknownView
	}
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if err := writer.Write(v.header); err != nil {
		return err
	}
	if err := writer.WriteAll(v.rows(data)); err != nil {
		return fmt.Errorf("生成 CSV 失败: %w", err)
	}
	return nil
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
}

type reportStyles struct {
	header, data, money, summary int
}

func newReportStyles(f *excelize.File) (*reportStyles, error) {
	var st reportStyles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if st.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	moneyFmt := "#,##0.00"
	if st.money, err = f.NewStyle(&excelize.Style{
		Border:       thinBorder,
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return nil, err
	}
	if st.summary, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Border:       thinBorder,
		CustomNumFmt: &moneyFmt,
	}); err != nil {
		return nil, err
	}
	return &st, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, sheet string, st *reportStyles, headers []string) {
	for i, h := range headers {
		cell := cellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, st.header)
	}
}

// WriteReport 生成可打印的 Excel 报表：交易明细 + 预算对比
func (s *ExportService) WriteReport(w io.Writer, data *models.EditionData, year int) error {
	if year == 0 {
		year = data.BudgetYear
	}
	f := excelize.NewFile()
	defer f.Close()

	st, err := newReportStyles(f)
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}

	txSheet := "Transactions"
	f.SetSheetName("Sheet1", txSheet)
	f.SetColWidth(txSheet, "A", "C", 12)
	f.SetColWidth(txSheet, "D", "D", 20)
	f.SetColWidth(txSheet, "E", "E", 40)
	f.SetColWidth(txSheet, "F", "F", 14)
	writeHeader(f, txSheet, st, []string{"Date", "Type", "Statut", "Catégorie", "Description", "Montant"})

	row := 2
	for _, t := range data.Transactions {
		if t.Year() != year {
			continue
		}
		amount, _ := t.Amount.Float64()
		f.SetCellValue(txSheet, cellName(1, row), t.Date)
		f.SetCellValue(txSheet, cellName(2, row), string(t.Type))
		f.SetCellValue(txSheet, cellName(3, row), string(t.Status))
		f.SetCellValue(txSheet, cellName(4, row), t.Category)
		f.SetCellValue(txSheet, cellName(5, row), t.Description)
		f.SetCellValue(txSheet, cellName(6, row), amount)
		f.SetCellStyle(txSheet, cellName(1, row), cellName(5, row), st.data)
		f.SetCellStyle(txSheet, cellName(6, row), cellName(6, row), st.money)
		row++
	}
	f.SetCellValue(txSheet, cellName(1, row), "Total")
	f.MergeCell(txSheet, cellName(1, row), cellName(5, row))
	f.SetCellFormula(txSheet, cellName(6, row), "SUM(F2:F"+strconv.Itoa(max(row-1, 2))+")")
	f.SetCellStyle(txSheet, cellName(1, row), cellName(6, row), st.summary)

	cmp := ledger.CompareBudget(data.Budget, data.Transactions, data.Archives, year)
	budgetSheet := "Bilan " + strconv.Itoa(year)
	if _, err := f.NewSheet(budgetSheet); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetColWidth(budgetSheet, "A", "A", 12)
	f.SetColWidth(budgetSheet, "B", "C", 28)
	f.SetColWidth(budgetSheet, "D", "G", 14)
	writeHeader(f, budgetSheet, st, []string{"Section", "Catégorie", "Libellé", "N", "N-1", "Source N-1", "Écart"})

	row = 2
	for _, r := range cmp.Rows {
		cur, _ := r.Current.Float64()
		prior, _ := r.Prior.Float64()
		gap, _ := r.Gap.Float64()
		f.SetCellValue(budgetSheet, cellName(1, row), string(r.Line.Section))
		f.SetCellValue(budgetSheet, cellName(2, row), r.Line.Category)
		f.SetCellValue(budgetSheet, cellName(3, row), r.Line.Label)
		f.SetCellValue(budgetSheet, cellName(4, row), cur)
		f.SetCellValue(budgetSheet, cellName(5, row), prior)
		f.SetCellValue(budgetSheet, cellName(6, row), string(r.PriorSource))
		f.SetCellValue(budgetSheet, cellName(7, row), gap)
		f.SetCellStyle(budgetSheet, cellName(1, row), cellName(3, row), st.data)
		f.SetCellStyle(budgetSheet, cellName(4, row), cellName(5, row), st.money)
		f.SetCellStyle(budgetSheet, cellName(6, row), cellName(6, row), st.data)
		f.SetCellStyle(budgetSheet, cellName(7, row), cellName(7, row), st.money)
		row++
	}
	resCur, _ := cmp.ResultCurrent.Float64()
	resPrior, _ := cmp.ResultPrior.Float64()
	f.SetCellValue(budgetSheet, cellName(1, row), "Résultat")
	f.MergeCell(budgetSheet, cellName(1, row), cellName(3, row))
	f.SetCellValue(budgetSheet, cellName(4, row), resCur)
	f.SetCellValue(budgetSheet, cellName(5, row), resPrior)
	f.SetCellStyle(budgetSheet, cellName(1, row), cellName(7, row), st.summary)

	return f.Write(w)
}
