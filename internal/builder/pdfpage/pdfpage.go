package pdfpage

import (
	"bytes"
	"fmt"
	"strings"

	"invoice-builder/internal/builder/export"
	"invoice-builder/internal/builder/models"

	"github.com/jung-kurt/gofpdf"
)

// ============================================================
// gofpdf page renderer
// ============================================================

const (
	fontFamily      = "Helvetica"
	tableFontSize   = 10.0
	tableRowHeight  = 8.0
	tableCellInset  = 2.0
	tableTextOffset = 5.0
)

var (
	tableHeaderFill = models.RGB{R: 240, G: 240, B: 240}
	tableStripeFill = models.RGB{R: 250, G: 250, B: 250}
	headerRule      = models.RGB{R: 200, G: 200, B: 200}
	rowRule         = models.RGB{R: 230, G: 230, B: 230}
)

// tableColumns: доли ширины, с которых начинаются колонки таблицы.
var tableColumns = []float64{0, 0.4, 0.6, 0.8}

// Renderer пишет страницу через gofpdf в миллиметрах.
type Renderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

var _ export.PageRenderer = (*Renderer)(nil)

func New(page models.PageSize) *Renderer {
	if page.Width <= 0 || page.Height <= 0 {
		page = models.A4MM
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("invoice-builder", true)
	return &Renderer{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// Factory подходит для export.NewDriver.
func Factory(page models.PageSize) export.PageRenderer {
	return New(page)
}

func (r *Renderer) NewPage() {
	r.pdf.AddPage()
	r.pdf.SetFont(fontFamily, "", 12)
}

func (r *Renderer) DrawText(text string, x, y float64, opts export.TextOptions) {
	size := opts.FontSize
	if size <= 0 {
		size = 12
	}
	r.pdf.SetFont(fontFamily, fontStyle(opts), size)
	r.pdf.SetTextColor(int(opts.Color.R), int(opts.Color.G), int(opts.Color.B))

	line := r.tr(text)
	if opts.MaxWidth > 0 && r.pdf.GetStringWidth(line) > opts.MaxWidth {
		line = r.fit(line, opts.MaxWidth)
	}

	w := r.pdf.GetStringWidth(line)
	switch opts.Align {
	case "center":
		x -= w / 2
	case "right":
		x -= w
	}
	r.pdf.Text(x, y, line)
}

// fit обрезает строку по ширине, оставляя первую строку переноса.
func (r *Renderer) fit(line string, width float64) string {
	parts := r.pdf.SplitLines([]byte(line), width)
	if len(parts) == 0 {
		return line
	}
	return strings.TrimRight(string(parts[0]), " ")
}

func (r *Renderer) DrawRect(x, y, w, h float64, opts export.RectOptions) {
	style := ""
	if opts.Fill != nil {
		r.pdf.SetFillColor(int(opts.Fill.R), int(opts.Fill.G), int(opts.Fill.B))
		style += "F"
	}
	if opts.Stroke != nil {
		r.pdf.SetDrawColor(int(opts.Stroke.R), int(opts.Stroke.G), int(opts.Stroke.B))
		if opts.StrokeWidth > 0 {
			r.pdf.SetLineWidth(opts.StrokeWidth)
		}
		style += "D"
	}
	if style == "" {
		return
	}
	r.pdf.Rect(x, y, w, h, style)
}

func (r *Renderer) DrawLine(x1, y1, x2, y2 float64, opts export.LineOptions) {
	r.pdf.SetDrawColor(int(opts.Color.R), int(opts.Color.G), int(opts.Color.B))
	if opts.Width > 0 {
		r.pdf.SetLineWidth(opts.Width)
	}
	r.pdf.Line(x1, y1, x2, y2)
}

// DrawTable рисует шапку с заливкой и строки с чередующимся фоном.
func (r *Renderer) DrawTable(x, y, width float64, headers []string, rows [][]string) {
	header := tableHeaderFill
	r.DrawRect(x, y, width, tableRowHeight, export.RectOptions{Fill: &header})
	r.tableRow(x, y+tableTextOffset, width, headers)
	r.DrawLine(x, y+tableRowHeight, x+width, y+tableRowHeight, export.LineOptions{Color: headerRule, Width: 0.2})

	for i, cells := range rows {
		rowY := y + 12 + float64(i)*tableRowHeight
		if i%2 == 0 {
			stripe := tableStripeFill
			r.DrawRect(x, rowY-4, width, tableRowHeight, export.RectOptions{Fill: &stripe})
		}
		r.tableRow(x, rowY, width, cells)
		r.DrawLine(x, rowY+4, x+width, rowY+4, export.LineOptions{Color: rowRule, Width: 0.2})
	}
}

func (r *Renderer) tableRow(x, baseline, width float64, cells []string) {
	for i, cell := range cells {
		offset := width * float64(i) / float64(len(cells))
		if len(cells) == len(tableColumns) {
			offset = width * tableColumns[i]
		}
		if i == 0 {
			offset = tableCellInset
		}
		r.DrawText(cell, x+offset, baseline, export.TextOptions{FontSize: tableFontSize, Align: "left", Color: models.Black})
	}
}

func (r *Renderer) Finalize() ([]byte, error) {
	if err := r.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func fontStyle(opts export.TextOptions) string {
	style := ""
	if opts.Bold {
		style += "B"
	}
	if opts.Italic {
		style += "I"
	}
	return style
}
