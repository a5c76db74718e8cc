package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func TestParseStatement_FourColumns(t *testing.T) {
	res, err := ParseStatement("01/01/2025;Rent;12.50;0", "", seqID("b"))
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)

	line := res.Lines[0]
	assert.Equal(t, "b1", line.ID)
	assert.Equal(t, "2025-01-01", line.Date)
	assert.Equal(t, "Rent", line.Description)
	assert.True(t, line.Amount.Equal(decimal.RequireFromString("-12.50")), line.Amount.String())
	assert.Equal(t, 1, res.Accepted)
}

func TestParseStatement_Rows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		ok     bool
		date   string
		amount string
	}{
		{"credit only", "02/03/2025;VIR MAIRIE;;1500,00", true, "2025-03-02", "1500"},
		{"debit only", "02/03/2025;CB SONO;89,90;", true, "2025-03-02", "-89.9"},
		{"negative debit", "02/03/2025;CB;-10;", true, "2025-03-02", "-10"},
		{"signed three columns", "2025-04-01\tREMISE CHQ\t-45,5", true, "2025-04-01", "-45.5"},
		{"currency stripped", "05/04/2025;Don;+ 20,00 €", true, "2025-04-05", "20"},
		{"five columns use third field", "05/04/2025;Don;7;x;y", true, "2025-04-05", "7"},
		{"odd date kept", "2025/4/5;Don;7", true, "2025/4/5", "7"},
		{"too few columns", "05/04/2025;Don", false, "", ""},
		{"empty debit and credit count as zero", "05/04/2025;Frais offerts;;", true, "2025-04-05", "0"},
		{"unicode minus", "04/02/2025;CB;\u221212,50", true, "2025-02-04", "-12.5"},
		{"accounting parentheses", "04/02/2025;CB;(12,50)", true, "2025-02-04", "-12.5"},
		{"parentheses in debit column", "04/02/2025;CB;(3,00);", true, "2025-02-04", "-3"},
		{"empty signed amount", "05/04/2025;Don;", false, "", ""},
		{"header row", "Date;Libellé;Débit;Crédit", false, "", ""},
		{"unparsable", "05/04/2025;Don;abc", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := parseStatementRow(tt.row)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.date, line.Date)
			assert.True(t, line.Amount.Equal(decimal.RequireFromString(tt.amount)), line.Amount.String())
		})
	}
}

func TestParseStatement_SummaryAndDedup(t *testing.T) {
	raw := "Date;Libellé;Débit;Crédit\r\n" +
		"30/12/2024;Ancien;10;\r\n" +
		"31/12/2024;Le jour même;;5\r\n" +
		"\r\n" +
		"02/01/2025;Nouveau;;100\r\n" +
		"03/01/2025;Cotisation;20;\r\n" +
		"pas une ligne\r\n"

	res, err := ParseStatement(raw, "2024-12-31", seqID("b"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 2, res.Duplicates)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, "Nouveau", res.Lines[0].Description)
	assert.Equal(t, "Cotisation", res.Lines[1].Description)
}

func TestParseStatement_NothingToImport(t *testing.T) {
	res, err := ParseStatement("01/01/2024;Vieux;1;\n", "2024-06-30", seqID("b"))
	assert.ErrorIs(t, err, ErrNothingToImport)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Duplicates)
	assert.Empty(t, res.Lines)

	_, err = ParseStatement("", "", seqID("b"))
	assert.ErrorIs(t, err, ErrNothingToImport)
}

func TestParseStatement_LeadingBOM(t *testing.T) {
	raw := "\ufeff03/02/2025;Première ligne;;10,00\n04/02/2025;Seconde;2;\n"

	res, err := ParseStatement(raw, "", seqID("b"))
	require.NoError(t, err)
	require.Len(t, res.Lines, 2)
	assert.Equal(t, "2025-02-03", res.Lines[0].Date)
	assert.True(t, res.Lines[0].Amount.Equal(decimal.RequireFromString("10")))

	// 去掉 BOM 后才能与最后对账日期比较
	res, err = ParseStatement(raw, "2025-02-03", seqID("b"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Duplicates)
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "Seconde", res.Lines[0].Description)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-12-31", NormalizeDate(" 31/12/2025 "))
	assert.Equal(t, "2025-12-31", NormalizeDate("2025-12-31"))
	assert.Equal(t, "1/2/2025", NormalizeDate("1/2/2025"))
}
