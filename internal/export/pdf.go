package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfFont        = "Helvetica"
	pdfHeadingSize = 14
	pdfBodySize    = 10
	pdfURLSize     = 8
)

// renderPDF lays out the resolved groups directly; an empty selection still
// yields one blank page so the file opens in every viewer.
func renderPDF(groups []ResolvedGroup) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Firefox tabs", true)
	pdf.SetCreator("tabsalvage", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	for i, g := range groups {
		if i > 0 {
			pdf.Ln(4)
		}
		pdf.SetFont(pdfFont, "B", pdfHeadingSize)
		pdf.SetTextColor(0, 0, 0)
		pdf.MultiCell(0, 8, tr(oneLine(g.Info.Name)), "", "L", false)

		for _, tab := range g.Window.Tabs {
			pdf.SetFont(pdfFont, "U", pdfBodySize)
			pdf.SetTextColor(20, 70, 180)
			title := fitWidth(pdf, tr(oneLine(tabTitle(tab))), width)
			pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, tab.URL)

			pdf.SetFont(pdfFont, "", pdfURLSize)
			pdf.SetTextColor(110, 110, 110)
			pdf.MultiCell(0, 4, tr(tab.URL), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrConversionFailed, err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", ErrConversionFailed, err)
	}
	return buf.Bytes(), nil
}

// fitWidth shortens s with an ellipsis until it fits on one line.
func fitWidth(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	const ellipsis = "..."
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+ellipsis) > width {
		r = r[:len(r)-1]
	}
	return string(r) + ellipsis
}
