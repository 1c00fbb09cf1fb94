// package pdf renders extracted quotes into the downloadable report.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"quotescout/m/v2/app/models"

	"github.com/go-pdf/fpdf"
)

const (
	brandName = "QuoteScout"

	// fallback when a record carries no theme label
	defaultTheme = "Literary Device"

	pageMargin = 72
	lineHeight = 14
)

// Renderer builds the quote report. Output is deterministic for identical
// inputs apart from the embedded date, which comes from now.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render assembles the whole document in memory and returns it once complete.
func (r *Renderer) Render(records []models.QuoteRecord, title, author string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetCreationDate(r.now())
	doc.SetModificationDate(r.now())
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := doc.GetPageSize()
	contentWidth := pageWidth - 2*pageMargin

	if title == "" {
		title = "Text Analysis"
	}

	// header block
	doc.SetFont("Helvetica", "B", 10)
	doc.SetTextColor(79, 70, 229)
	doc.CellFormat(contentWidth, 12, brandName, "", 1, "L", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(26, 26, 46)
	doc.MultiCell(contentWidth, 28, tr(title), "", "L", false)

	if author != "" {
		doc.SetFont("Helvetica", "I", 12)
		doc.SetTextColor(107, 114, 128)
		doc.CellFormat(contentWidth, 16, tr("by "+author), "", 1, "L", false, 0, "")
	}

	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(156, 163, 175)
	doc.CellFormat(contentWidth, 12, r.now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	doc.Ln(10)

	doc.SetDrawColor(79, 70, 229)
	doc.SetLineWidth(2)
	doc.Line(pageMargin, doc.GetY(), pageWidth-pageMargin, doc.GetY())
	doc.Ln(16)

	for i, record := range records {
		theme := record.Theme
		if theme == "" {
			theme = defaultTheme
		}

		doc.SetFont("Helvetica", "B", 9)
		doc.SetTextColor(255, 255, 255)
		doc.SetFillColor(79, 70, 229)
		label := tr("Theme: " + theme)
		doc.CellFormat(doc.GetStringWidth(label)+16, 17, label, "", 1, "C", true, 0, "")
		doc.Ln(8)

		doc.SetFont("Helvetica", "I", 12)
		doc.SetTextColor(30, 41, 59)
		doc.SetX(pageMargin + 20)
		doc.MultiCell(contentWidth-40, 16, tr(fmt.Sprintf("“%s”", record.Quote)), "", "L", false)
		doc.Ln(8)

		doc.SetFont("Helvetica", "", 10)
		doc.SetTextColor(75, 85, 99)
		doc.MultiCell(contentWidth, lineHeight, tr(record.Analysis), "", "L", false)
		doc.Ln(16)

		if i < len(records)-1 {
			doc.SetDrawColor(229, 231, 235)
			doc.SetLineWidth(0.5)
			doc.Line(pageMargin, doc.GetY(), pageWidth-pageMargin, doc.GetY())
			doc.Ln(14)
		}
	}

	var buffer bytes.Buffer
	if err := doc.Output(&buffer); err != nil {
		return nil, fmt.Errorf("Render: failed to build document: %w", err)
	}
	return buffer.Bytes(), nil
}
