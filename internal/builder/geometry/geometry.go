package geometry

import (
	"math"
	"strings"

	"invoice-builder/internal/builder/models"
)

// ============================================================
// Coordinate spaces
// ============================================================

// ToCanvasSpace переводит координаты указателя в координаты холста.
// Обратное к ToScreenSpace: страница сдвигается на pan, затем масштабируется на zoom.
func ToCanvasSpace(p models.Point, zoom float64, pan models.Point) models.Point {
	zoom = safeZoom(zoom)
	return models.Point{
		X: p.X/zoom - pan.X,
		Y: p.Y/zoom - pan.Y,
	}
}

// ToScreenSpace переводит координаты холста в координаты экрана.
func ToScreenSpace(c models.Point, zoom float64, pan models.Point) models.Point {
	zoom = safeZoom(zoom)
	return models.Point{
		X: (c.X + pan.X) * zoom,
		Y: (c.Y + pan.Y) * zoom,
	}
}

// ClampZoom ограничивает масштаб диапазоном [MinZoom, MaxZoom].
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) {
		return 1
	}
	return clamp(zoom, models.MinZoom, models.MaxZoom)
}

// ZoomAt меняет масштаб так, чтобы точка холста под anchor осталась под anchor.
func ZoomAt(vp models.Viewport, zoom float64, anchor models.Point) models.Viewport {
	c := ToCanvasSpace(anchor, vp.Zoom, vp.Pan)
	zoom = ClampZoom(zoom)
	return models.Viewport{
		Zoom: zoom,
		Pan: models.Point{
			X: anchor.X/zoom - c.X,
			Y: anchor.Y/zoom - c.Y,
		},
	}
}

func safeZoom(zoom float64) float64 {
	if zoom <= 0 || math.IsNaN(zoom) {
		return 1
	}
	return zoom
}

// ============================================================
// Drag
// ============================================================

// ClampDrag удерживает элемент целиком внутри страницы.
func ClampDrag(el models.Element, x, y float64, page models.PageSize) (float64, float64) {
	return clampAxis(x, page.Width-el.Width), clampAxis(y, page.Height-el.Height)
}

func clampAxis(v, max float64) float64 {
	return math.Max(0, math.Min(v, max))
}

// ============================================================
// Resize
// ============================================================

type Direction string

const (
	North     Direction = "n"
	South     Direction = "s"
	East      Direction = "e"
	West      Direction = "w"
	NorthEast Direction = "ne"
	NorthWest Direction = "nw"
	SouthEast Direction = "se"
	SouthWest Direction = "sw"
)

// Directions: восемь маркеров изменения размера.
var Directions = []Direction{NorthWest, North, NorthEast, East, SouthEast, South, SouthWest, West}

func (d Direction) Valid() bool {
	for _, dir := range Directions {
		if d == dir {
			return true
		}
	}
	return false
}

func (d Direction) has(c byte) bool {
	return strings.IndexByte(string(d), c) >= 0
}

// Resize считает новую рамку для маркера dir и смещения (dx, dy).
// Края w и n двигаются на ограниченное смещение, противоположный край стоит на месте.
func Resize(el models.Element, dir Direction, dx, dy, minSize float64) models.Rect {
	return resize(el.Bounds(), dir, dx, dy, minSize, math.Inf(1), math.Inf(1))
}

// ResizeWithin: Resize с дополнительным ограничением правого и нижнего краёв страницей.
func ResizeWithin(el models.Element, dir Direction, dx, dy, minSize float64, page models.PageSize) models.Rect {
	return resize(el.Bounds(), dir, dx, dy, minSize, page.Width, page.Height)
}

func resize(r models.Rect, dir Direction, dx, dy, minSize, maxRight, maxBottom float64) models.Rect {
	if minSize <= 0 {
		minSize = models.MinSize
	}
	r.X, r.Width = resizeAxis(r.X, r.Width, dx, minSize, maxRight, dir.has('w'), dir.has('e'))
	r.Y, r.Height = resizeAxis(r.Y, r.Height, dy, minSize, maxBottom, dir.has('n'), dir.has('s'))
	return r
}

// resizeAxis обрабатывает одну ось: near: ближний край (w/n), far: дальний (e/s).
func resizeAxis(pos, size, delta, minSize, limit float64, near, far bool) (float64, float64) {
	if far {
		size = math.Max(minSize, math.Min(size+delta, limit-pos))
	}
	if near {
		edge := pos + size
		d := clamp(delta, -pos, size-minSize)
		pos += d
		size -= d
		if size < minSize {
			size = minSize
			pos = math.Max(0, edge-minSize)
		}
	}
	return pos, size
}

// ============================================================
// Grid snapping
// ============================================================

// Snap округляет значение до ближайшего узла сетки.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapWithin округляет до сетки, не выходя за [0, max].
func SnapWithin(v, grid, max float64) float64 {
	s := Snap(v, grid)
	if grid <= 0 {
		return s
	}
	if s > max {
		s -= grid
	}
	if s < 0 {
		s = 0
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
