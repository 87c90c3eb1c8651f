package export

import "invoice-builder/internal/builder/models"

// ============================================================
// Page renderer contract
// ============================================================

// Координаты и размеры в миллиметрах, начало в левом верхнем углу страницы.
// Ошибки рисования копятся внутри рендерера и возвращаются из Finalize.
// В DrawText x: точка привязки по Align, y: базовая линия.
type PageRenderer interface {
	NewPage()
	DrawText(text string, x, y float64, opts TextOptions)
	DrawRect(x, y, w, h float64, opts RectOptions)
	DrawLine(x1, y1, x2, y2 float64, opts LineOptions)
	DrawTable(x, y, width float64, headers []string, rows [][]string)
	Finalize() ([]byte, error)
}

// RendererFactory создаёт рендерер для страницы заданного размера (мм).
type RendererFactory func(page models.PageSize) PageRenderer

type TextOptions struct {
	MaxWidth float64
	Align    string // left, center, right
	FontSize float64
	Bold     bool
	Italic   bool
	Color    models.RGB
}

type RectOptions struct {
	Fill        *models.RGB
	Stroke      *models.RGB
	StrokeWidth float64
}

type LineOptions struct {
	Color models.RGB
	Width float64
}
