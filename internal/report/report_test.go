package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluxo/internal/models"
	"fluxo/internal/services"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in       string
		absolute bool
		want     string
	}{
		{"1234.56", false, "R$ 1.234,56"},
		{"-30", false, "-R$ 30,00"},
		{"-30", true, "R$ 30,00"},
		{"0", false, "R$ 0,00"},
		{"1000000.5", false, "R$ 1.000.000,50"},
	}
	for _, tc := range cases {
		got := FormatBRL(decimal.RequireFromString(tc.in), tc.absolute)
		assert.Equal(t, tc.want, got, "FormatBRL(%s, %t)", tc.in, tc.absolute)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	data := &services.PDFReport{
		GeneratedAt: day,
		SecondaryBoxes: []services.PDFSection{{
			Title: "Carteira",
			Lines: []services.PDFLine{
				{Date: day, Description: "Almoço", Category: "Alimentação", Kind: models.MovementKindOutflow, Amount: decimal.RequireFromString("-30")},
			},
			Total: decimal.RequireFromString("-30"),
		}},
		PrincipalCategories: []services.PDFSection{{
			Title: models.CategoryIncome,
			Lines: []services.PDFLine{
				{Date: day, Description: "Salário", Category: models.CategoryIncome, Kind: models.MovementKindInflow, Amount: decimal.RequireFromString("100")},
			},
			Total: decimal.RequireFromString("100"),
		}},
		SystemTotal: decimal.RequireFromString("70"),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "missing PDF magic")
	assert.Greater(t, buf.Len(), 500)
}

func TestRenderEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &services.PDFReport{GeneratedAt: time.Now()}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "Entrada", kindLabel(models.MovementKindInflow))
	assert.Equal(t, "Saída", kindLabel(models.MovementKindOutflow))
}
