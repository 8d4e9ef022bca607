// Package report renders the ledger PDF export.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"fluxo/internal/models"
	"fluxo/internal/services"
)

// Title is printed in the header of every page.
const Title = "Relatório de Movimentações Financeiras"

const (
	pageMargin = 10.0
	lineHeight = 6.0
	font       = "Helvetica"
)

// Column widths of a movement row on an A4 portrait page.
var columns = [...]float64{22, 72, 36, 22, 38}

// labelWidth spans every column before the amount.
const labelWidth = 22 + 72 + 36 + 22

// Render writes data as an A4 PDF to w.
func Render(w io.Writer, data *services.PDFReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("{nb}")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	r := &renderer{pdf: pdf, tr: tr, absolute: data.AbsoluteAmounts}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(font, "B", 14)
		pdf.CellFormat(0, 8, tr(Title), "", 1, "C", false, 0, "")
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 5, tr("Gerado em "+data.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(font, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	r.heading("Caixas Secundários")
	if len(data.SecondaryBoxes) == 0 {
		r.note("Nenhuma movimentação registrada.")
	}
	for _, section := range data.SecondaryBoxes {
		r.section(section)
	}

	r.heading("Caixa Principal por Categoria")
	if len(data.PrincipalCategories) == 0 {
		r.note("Nenhuma movimentação registrada.")
	}
	for _, section := range data.PrincipalCategories {
		r.section(section)
	}

	pdf.Ln(4)
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(labelWidth, 8, tr("Total Geral do Sistema"), "T", 0, "L", false, 0, "")
	pdf.CellFormat(columns[len(columns)-1], 8, tr(FormatBRL(data.SystemTotal, false)), "T", 1, "R", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

type renderer struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	absolute bool
}

func (r *renderer) heading(text string) {
	r.pdf.SetFont(font, "B", 12)
	r.pdf.SetFillColor(230, 230, 230)
	r.pdf.CellFormat(0, 8, r.tr(text), "", 1, "L", true, 0, "")
	r.pdf.Ln(2)
}

func (r *renderer) note(text string) {
	r.pdf.SetFont(font, "I", 9)
	r.pdf.CellFormat(0, lineHeight, r.tr(text), "", 1, "L", false, 0, "")
	r.pdf.Ln(2)
}

func (r *renderer) section(s services.PDFSection) {
	r.pdf.SetFont(font, "B", 10)
	r.pdf.CellFormat(0, 7, r.tr(s.Title), "B", 1, "L", false, 0, "")

	r.pdf.SetFont(font, "B", 8)
	for i, h := range []string{"Data", "Descrição", "Categoria", "Tipo", "Valor"} {
		align := "L"
		if i == len(columns)-1 {
			align = "R"
		}
		r.pdf.CellFormat(columns[i], lineHeight, r.tr(h), "", 0, align, false, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont(font, "", 8)
	for _, line := range s.Lines {
		r.pdf.CellFormat(columns[0], lineHeight, line.Date.Format("02/01/2006"), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(columns[1], lineHeight, r.tr(truncate(line.Description, 46)), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(columns[2], lineHeight, r.tr(truncate(line.Category, 22)), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(columns[3], lineHeight, r.tr(kindLabel(line.Kind)), "", 0, "L", false, 0, "")
		r.amount(line.Amount, "", 1)
	}

	r.pdf.SetFont(font, "B", 9)
	r.pdf.CellFormat(labelWidth, lineHeight, "Total", "T", 0, "R", false, 0, "")
	r.amount(s.Total, "T", 1)
	r.pdf.Ln(3)
}

// amount prints a value in the last column, red when negative.
func (r *renderer) amount(v decimal.Decimal, border string, ln int) {
	if v.IsNegative() {
		r.pdf.SetTextColor(180, 30, 30)
	}
	r.pdf.CellFormat(columns[len(columns)-1], lineHeight, r.tr(FormatBRL(v, r.absolute)), border, ln, "R", false, 0, "")
	r.pdf.SetTextColor(0, 0, 0)
}

func kindLabel(k models.MovementKind) string {
	if k == models.MovementKindInflow {
		return "Entrada"
	}
	return "Saída"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
