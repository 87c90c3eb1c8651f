package export

import (
	"context"
	"errors"
	"fmt"
	"log"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/models"
	"invoice-builder/internal/builder/render"
)

// ============================================================
// Units
// ============================================================

const (
	// PixelsToMM переводит пиксели холста (96 dpi) в миллиметры.
	PixelsToMM = 0.264583
	// PointToMM переводит типографские пункты в миллиметры.
	PointToMM = 25.4 / 72
)

var (
	placeholderFill = models.RGB{R: 240, G: 240, B: 240}
	placeholderText = models.RGB{R: 150, G: 150, B: 150}
)

// ExportError: сбой рендерера при выводе элемента. Частичный результат не возвращается.
type ExportError struct {
	ElementID string
	Err       error
}

func (e *ExportError) Error() string {
	if e.ElementID == "" {
		return fmt.Sprintf("export failed: %v", e.Err)
	}
	return fmt.Sprintf("export failed at element %s: %v", e.ElementID, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ============================================================
// Driver
// ============================================================

type Driver struct {
	newRenderer RendererFactory
	scale       float64
}

type Option func(*Driver)

// WithDPI задаёт плотность холста; без неё действует PixelsToMM.
func WithDPI(dpi float64) Option {
	return func(d *Driver) {
		if dpi > 0 {
			d.scale = 25.4 / dpi
		}
	}
}

func NewDriver(factory RendererFactory, opts ...Option) *Driver {
	d := &Driver{newRenderer: factory, scale: PixelsToMM}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Scale() float64 {
	return d.scale
}

// Export выводит документ на одну страницу pageSize (мм) и возвращает готовые байты.
// Без записи заказа таблицы выводятся заглушками, экспорт всё равно успешен.
func (d *Driver) Export(ctx context.Context, doc document.Document, record models.Record, pageSize models.PageSize) ([]byte, error) {
	if d.newRenderer == nil {
		return nil, &ExportError{Err: errors.New("no page renderer configured")}
	}
	if pageSize.Width <= 0 || pageSize.Height <= 0 {
		pageSize = models.A4MM
	}

	blocks := render.LayoutDocument(doc, record)
	log.Printf("[EXPORT] Exporting %d elements", len(blocks))

	var pr PageRenderer
	if err := d.guard("", func() {
		pr = d.newRenderer(pageSize)
		pr.NewPage()
	}); err != nil {
		return nil, err
	}

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, &ExportError{ElementID: b.Element.ID, Err: err}
		}
		if err := d.guard(b.Element.ID, func() { d.drawBlock(pr, b) }); err != nil {
			log.Printf("[EXPORT] Renderer failed: %v", err)
			return nil, err
		}
	}

	var (
		out       []byte
		finishErr error
	)
	if err := d.guard("", func() { out, finishErr = pr.Finalize() }); err != nil {
		return nil, err
	}
	if finishErr != nil {
		log.Printf("[EXPORT] Renderer failed: %v", finishErr)
		return nil, &ExportError{Err: finishErr}
	}
	return out, nil
}

// guard превращает панику рендерера в ExportError.
func (d *Driver) guard(elementID string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExportError{ElementID: elementID, Err: fmt.Errorf("renderer panic: %v", r)}
		}
	}()
	fn()
	return nil
}

// ============================================================
// Block drawing
// ============================================================

func (d *Driver) drawBlock(pr PageRenderer, b render.Block) {
	el := b.Element
	x, y := el.X*d.scale, el.Y*d.scale
	w, h := el.Width*d.scale, el.Height*d.scale

	switch b.Kind {
	case render.KindText:
		d.drawLines(pr, b.Lines, "", x, y, w, textOptions(el, w))
	case render.KindList:
		opts := textOptions(el, w)
		opts.Align = "left"
		d.drawLines(pr, b.Lines, render.ListBullet, x, y, w, opts)
	case render.KindBox:
		fill := el.Style.Color(models.StyleBackgroundColor, models.LightGrey)
		stroke := el.Style.Color(models.StyleBorderColor, models.Black)
		pr.DrawRect(x, y, w, h, RectOptions{
			Fill:        &fill,
			Stroke:      &stroke,
			StrokeWidth: el.Style.Number(models.StyleBorderWidth, 1) * d.scale,
		})
	case render.KindTable:
		pr.DrawTable(x, y, w, b.Table.Headers, b.Table.Rows)
	case render.KindPlaceholder:
		fill := placeholderFill
		pr.DrawRect(x, y, w, h, RectOptions{Fill: &fill})
		pr.DrawText(b.Label, x+w/2, y+h/2, TextOptions{
			MaxWidth: w,
			Align:    "center",
			FontSize: render.BodySizePx,
			Color:    placeholderText,
		})
	}
}

func (d *Driver) drawLines(pr PageRenderer, lines []string, prefix string, x, y, w float64, opts TextOptions) {
	lineHeight := LineHeight(opts.FontSize)
	for i, line := range lines {
		pr.DrawText(prefix+line, anchorX(x, w, opts.Align), y+float64(i+1)*lineHeight, opts)
	}
}

func textOptions(el models.Element, width float64) TextOptions {
	return TextOptions{
		MaxWidth: width,
		Align:    el.Style.Align(),
		FontSize: render.FontSize(el),
		Bold:     el.Style.Bold(),
		Italic:   el.Style.Italic(),
		Color:    el.Style.Color(models.StyleColor, models.Black),
	}
}

// LineHeight: шаг строк в мм для кегля size (пункты).
func LineHeight(size float64) float64 {
	return size * PointToMM * render.LineHeightEm
}

func anchorX(x, w float64, align string) float64 {
	switch align {
	case "center":
		return x + w/2
	case "right":
		return x + w
	}
	return x
}
