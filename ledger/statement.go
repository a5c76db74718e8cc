package ledger

import (
	"regexp"
	"strings"

	"eventledger/models"

	"github.com/shopspring/decimal"
)

var (
	frenchDate   = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	columnSplit  = regexp.MustCompile(`[;\t]`)
	nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)
)

// utf8BOM Excel 另存的 CSV 以及本服务导出的 CSV 都以它开头
const utf8BOM = "\ufeff"

// ImportResult 流水导入汇总
type ImportResult struct {
	Lines      []models.BankLine `json:"lines"`
	Accepted   int               `json:"accepted"`
	Skipped    int               `json:"skipped"`
	Duplicates int               `json:"duplicates"`
}

// ParseStatement 解析银行对账单文本
// 每行一条记录，列以分号或制表符分隔：日期;摘要;借方;贷方 或 日期;摘要;带符号金额。
// 四列格式中借方、贷方为空按 0 计。
// 无法解析的行计入 Skipped；日期不晚于 lastReconciled 的行计入 Duplicates。
// 没有任何行被接受时返回 ErrNothingToImport，汇总照常返回。
func ParseStatement(raw, lastReconciled string, newID func() string) (*ImportResult, error) {
	res := &ImportResult{Lines: []models.BankLine{}}
	raw = strings.TrimPrefix(raw, utf8BOM)
	for _, row := range strings.Split(raw, "\n") {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		line, ok := parseStatementRow(row)
		if !ok {
			res.Skipped++
			continue
		}
		if lastReconciled != "" && line.Date <= lastReconciled {
			res.Duplicates++
			continue
		}
		line.ID = newID()
		res.Lines = append(res.Lines, line)
	}
	res.Accepted = len(res.Lines)
	if res.Accepted == 0 {
		return res, ErrNothingToImport
	}
	return res, nil
}

func parseStatementRow(row string) (models.BankLine, bool) {
	cols := columnSplit.Split(row, -1)
	if len(cols) < 3 {
		return models.BankLine{}, false
	}

	var amount decimal.Decimal
	if len(cols) == 4 {
		debit, okDebit := parseAmount(cols[2])
		credit, okCredit := parseAmount(cols[3])
		if (!okDebit && strings.TrimSpace(cols[2]) != "") || (!okCredit && strings.TrimSpace(cols[3]) != "") {
			return models.BankLine{}, false
		}
		amount = credit.Sub(debit.Abs())
	} else {
		a, ok := parseAmount(cols[2])
		if !ok {
			return models.BankLine{}, false
		}
		amount = a
	}

	return models.BankLine{
		Date:        NormalizeDate(cols[0]),
		Description: strings.TrimSpace(cols[1]),
		Amount:      amount,
	}, true
}

// NormalizeDate 将 DD/MM/YYYY 转为 YYYY-MM-DD，其他格式原样返回
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if m := frenchDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return s
}

// parseAmount 解析金额字段：逗号视为小数点，去掉非数字字符
// Unicode 减号和会计括号 (12,50) 均表示负数；空字段返回 (0, false)
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	s = strings.ReplaceAll(s, "\u2212", "-")
	negative := false
	if inner, ok := strings.CutPrefix(s, "("); ok {
		if inner, ok = strings.CutSuffix(inner, ")"); ok {
			s, negative = inner, true
		}
	}
	s = nonNumericRe.ReplaceAllString(s, "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Abs().Neg()
	}
	return d, true
}
