package report

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"condomanager/internal/money"
)

var columns = []struct {
	title string
	width float64
	align string
}{
	{"Data", 22, "L"},
	{"Descrizione", 62, "L"},
	{"Categoria", 26, "L"},
	{"Importo", 24, "R"},
	{"Stato", 20, "L"},
	{"Creato da", 36, "L"},
}

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
	rowHeight      = 7.0
)

// PDFRenderer renders documents as A4 PDF.
type PDFRenderer struct{}

// NewPDFRenderer returns a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// ContentType implements Renderer.
func (*PDFRenderer) ContentType() string {
	return "application/pdf"
}

// Render implements Renderer.
func (r *PDFRenderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(doc.Title), false)
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(95, 6, tr("Generato il "+doc.GeneratedAt.Format(dateTimeLayout)), "", 0, "L", false, 0, "")
		pdf.CellFormat(95, 6, fmt.Sprintf("Pagina %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	h := doc.Header
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, tr(h.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(h.Address), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s (%s) - CAP %s", h.City, h.Province, h.PostalCode)), "", 1, "L", false, 0, "")
	if period := periodLabel(doc); period != "" {
		pdf.CellFormat(0, 6, tr(period), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Riepilogo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, t := range doc.Totals {
		pdf.CellFormat(60, 6, tr(t.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(money.FormatEuro(t.Amount)), "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("  (%d)", t.Count), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	r.tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	if len(doc.Lines) == 0 {
		pdf.CellFormat(0, rowHeight, tr("Nessuna spesa nel periodo selezionato"), "1", 1, "C", false, 0, "")
	}
	for _, l := range doc.Lines {
		if pdf.GetY()+rowHeight > 297-18 {
			pdf.AddPage()
			r.tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		cells := []string{
			l.Date.Format(dateLayout),
			l.Description,
			l.Category,
			money.FormatEuro(l.Amount),
			l.Status,
			l.CreatedBy,
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, rowHeight, fit(pdf, tr(cells[i]), c.width-2), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to build pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, rowHeight, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

// fit truncates s with an ellipsis so it fits in width millimetres.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func periodLabel(doc Document) string {
	switch {
	case doc.From != nil && doc.To != nil:
		return fmt.Sprintf("Periodo: dal %s al %s", doc.From.Format(dateLayout), doc.To.Format(dateLayout))
	case doc.From != nil:
		return "Periodo: dal " + doc.From.Format(dateLayout)
	case doc.To != nil:
		return "Periodo: fino al " + doc.To.Format(dateLayout)
	}
	return ""
}
