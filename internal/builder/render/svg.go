package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"
)

// ============================================================
// SVG Renderer
// ============================================================

const (
	placeholderFill = "#f0f0f0"
	placeholderText = "#969696"
	tableHeaderFill = "#f3f4f6"
	tableStripeFill = "#f9fafb"
	selectionStroke = "#3b82f6"
	handleRadius    = 6.0
	tableRowHeight  = 22.0
)

type Renderer struct {
	page     models.PageSize
	viewport models.Viewport
}

func NewRenderer(page models.PageSize, viewport models.Viewport) *Renderer {
	if viewport.Zoom <= 0 {
		viewport.Zoom = 1
	}
	return &Renderer{page: page, viewport: viewport}
}

// Render собирает SVG страницы из экранных узлов.
// Страница сдвигается на panOffset и масштабируется на zoomLevel: обратное к geometry.ToCanvasSpace.
func (r *Renderer) Render(nodes []Node) (string, error) {
	if r.page.Width <= 0 || r.page.Height <= 0 {
		return "", fmt.Errorf("page size is not set")
	}

	corner := geometry.ToScreenSpace(models.Point{X: r.page.Width, Y: r.page.Height}, r.viewport.Zoom, r.viewport.Pan)
	width := max(corner.X, 1)
	height := max(corner.Y, 1)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s">`,
		formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`  <g transform="scale(%s) translate(%s %s)">`,
		formatFloat(r.viewport.Zoom), formatFloat(r.viewport.Pan.X), formatFloat(r.viewport.Pan.Y)))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`    <rect x="0" y="0" width="%s" height="%s" fill="#fff" />`,
		formatFloat(r.page.Width), formatFloat(r.page.Height)))
	builder.WriteString("\n")

	for _, n := range nodes {
		for _, elem := range r.renderNode(n) {
			builder.WriteString("    ")
			builder.WriteString(elem)
			builder.WriteString("\n")
		}
	}

	builder.WriteString("  </g>\n")
	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Node renderers
// ============================================================

func (r *Renderer) renderNode(n Node) []string {
	var out []string
	out = append(out, fmt.Sprintf(`<g id="%s">`, html.EscapeString(n.ID)))

	switch n.Kind {
	case KindText:
		out = append(out, r.renderText(n, n.Lines, "")...)
	case KindList:
		out = append(out, r.renderText(n, n.Lines, ListBullet)...)
	case KindBox:
		out = append(out, r.renderBox(n))
	case KindTable:
		out = append(out, r.renderTable(n)...)
	case KindPlaceholder:
		out = append(out, r.renderPlaceholder(n)...)
	}

	if n.State == StateEdit {
		out = append(out, r.renderSelection(n)...)
	}
	out = append(out, `</g>`)
	return out
}

func (r *Renderer) renderText(n Node, lines []string, prefix string) []string {
	el := models.Element{Type: n.Type, Style: n.Style}
	size := FontSize(el)
	lineHeight := size * LineHeightEm

	x, anchor := n.Box.X, "start"
	switch n.Style.Align() {
	case "center":
		x, anchor = n.Box.X+n.Box.Width/2, "middle"
	case "right":
		x, anchor = n.Box.X+n.Box.Width, "end"
	}

	attrs := fmt.Sprintf(`font-size="%s" fill="%s" text-anchor="%s"`,
		formatFloat(size), n.Style.Color(models.StyleColor, models.Black).Hex(), anchor)
	if n.Style.Bold() {
		attrs += ` font-weight="bold"`
	}
	if n.Style.Italic() {
		attrs += ` font-style="italic"`
	}

	var out []string
	for i, line := range lines {
		y := n.Box.Y + float64(i+1)*lineHeight
		out = append(out, fmt.Sprintf(`<text x="%s" y="%s" %s>%s</text>`,
			formatFloat(x), formatFloat(y), attrs, html.EscapeString(prefix+line)))
	}
	return out
}

func (r *Renderer) renderBox(n Node) string {
	fill := n.Style.Color(models.StyleBackgroundColor, models.LightGrey).Hex()
	stroke := n.Style.Color(models.StyleBorderColor, models.Black).Hex()
	strokeWidth := n.Style.Number(models.StyleBorderWidth, 1)
	radius := n.Style.Number(models.StyleBorderRadius, 0)
	return fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" rx="%s" fill="%s" stroke="%s" stroke-width="%s" />`,
		formatFloat(n.Box.X), formatFloat(n.Box.Y), formatFloat(n.Box.Width), formatFloat(n.Box.Height),
		formatFloat(radius), fill, stroke, formatFloat(strokeWidth))
}

func (r *Renderer) renderTable(n Node) []string {
	if n.Table == nil {
		return nil
	}
	cols := len(n.Table.Headers)
	if cols == 0 {
		return nil
	}
	colWidth := n.Box.Width / float64(cols)

	var out []string
	row := func(y float64, cells []string, fill string, bold bool) {
		out = append(out, fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="#e5e7eb" />`,
			formatFloat(n.Box.X), formatFloat(y), formatFloat(n.Box.Width), formatFloat(tableRowHeight), fill))
		weight := ""
		if bold {
			weight = ` font-weight="bold"`
		}
		for i, cell := range cells {
			x := n.Box.X + float64(i)*colWidth + 4
			out = append(out, fmt.Sprintf(`<text x="%s" y="%s" font-size="11"%s>%s</text>`,
				formatFloat(x), formatFloat(y+15), weight, html.EscapeString(cell)))
		}
	}

	row(n.Box.Y, n.Table.Headers, tableHeaderFill, true)
	for i, cells := range n.Table.Rows {
		fill := "#fff"
		if i%2 == 1 {
			fill = tableStripeFill
		}
		row(n.Box.Y+float64(i+1)*tableRowHeight, cells, fill, false)
	}
	return out
}

func (r *Renderer) renderPlaceholder(n Node) []string {
	cx := n.Box.X + n.Box.Width/2
	cy := n.Box.Y + n.Box.Height/2
	return []string{
		fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="%s" />`,
			formatFloat(n.Box.X), formatFloat(n.Box.Y), formatFloat(n.Box.Width), formatFloat(n.Box.Height), placeholderFill),
		fmt.Sprintf(`<text x="%s" y="%s" font-size="12" fill="%s" text-anchor="middle">%s</text>`,
			formatFloat(cx), formatFloat(cy), placeholderText, html.EscapeString(n.Label)),
	}
}

// ============================================================
// Selection overlay
// ============================================================

func (r *Renderer) renderSelection(n Node) []string {
	out := []string{
		fmt.Sprintf(`<rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="2" />`,
			formatFloat(n.Box.X), formatFloat(n.Box.Y), formatFloat(n.Box.Width), formatFloat(n.Box.Height), selectionStroke),
	}
	for _, dir := range n.Handles {
		p := HandlePoint(n.Box, dir)
		out = append(out, fmt.Sprintf(`<circle class="resize-handle" data-dir="%s" cx="%s" cy="%s" r="%s" fill="%s" />`,
			dir, formatFloat(p.X), formatFloat(p.Y), formatFloat(handleRadius/r.viewport.Zoom), selectionStroke))
	}
	return out
}

// HandlePoint: положение маркера dir на рамке r.
func HandlePoint(r models.Rect, dir geometry.Direction) models.Point {
	p := models.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	d := string(dir)
	if strings.Contains(d, "w") {
		p.X = r.X
	}
	if strings.Contains(d, "e") {
		p.X = r.X + r.Width
	}
	if strings.Contains(d, "n") {
		p.Y = r.Y
	}
	if strings.Contains(d, "s") {
		p.Y = r.Y + r.Height
	}
	return p
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
