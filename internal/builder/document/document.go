package document

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"

	"github.com/google/uuid"
)

// ============================================================
// Document
// ============================================================

// Document: упорядоченный набор элементов одной сессии редактирования.
// Все операции возвращают новый Document; старые снимки остаются валидными.
type Document struct {
	page     models.PageSize
	elements []models.Element
}

// DuplicateOffset: смещение копии относительно оригинала.
const DuplicateOffset = 20.0

// New создаёт документ на странице page из копий переданных элементов;
// геометрия копий приводится к инвариантам.
func New(page models.PageSize, elements ...models.Element) Document {
	if page.Width <= 0 || page.Height <= 0 {
		page = models.DefaultPage
	}
	out := make([]models.Element, 0, len(elements))
	for _, el := range elements {
		out = append(out, normalize(el.Clone()))
	}
	return Document{page: page, elements: out}
}

func (d Document) Page() models.PageSize {
	if d.page.Width <= 0 || d.page.Height <= 0 {
		return models.DefaultPage
	}
	return d.page
}

func (d Document) Len() int {
	return len(d.elements)
}

// Elements возвращает элементы в порядке вставки.
func (d Document) Elements() []models.Element {
	out := make([]models.Element, len(d.elements))
	for i, el := range d.elements {
		out[i] = el.Clone()
	}
	return out
}

// Sorted возвращает элементы по возрастанию zIndex; равные остаются в порядке вставки.
func (d Document) Sorted() []models.Element {
	out := d.Elements()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

func (d Document) Find(id string) (models.Element, bool) {
	i := d.index(id)
	if i < 0 {
		return models.Element{}, false
	}
	return d.elements[i].Clone(), true
}

func (d Document) index(id string) int {
	for i, el := range d.elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}

func (d Document) MaxZ() int {
	if len(d.elements) == 0 {
		return 0
	}
	z := math.MinInt
	for _, el := range d.elements {
		z = max(z, el.ZIndex)
	}
	return z
}

func (d Document) MinZ() int {
	if len(d.elements) == 0 {
		return 0
	}
	z := math.MaxInt
	for _, el := range d.elements {
		z = min(z, el.ZIndex)
	}
	return z
}

// ============================================================
// Mutations
// ============================================================

// AddElement создаёт элемент типа t со свойствами по умолчанию в точке pos.
func (d Document) AddElement(t models.ElementType, pos models.Point) (Document, models.Element, error) {
	if !t.Known() {
		return d, models.Element{}, fmt.Errorf("unknown element type %q", t)
	}

	def := defaultsFor(t)
	el := models.Element{
		ID:      uuid.NewString(),
		Type:    t,
		Width:   def.width,
		Height:  def.height,
		ZIndex:  d.MaxZ() + 1,
		Content: def.content.Clone(),
		Style:   def.style.Clone(),
	}
	switch t {
	case models.TypeDataField:
		el.DataField = DefaultDataField
	case models.TypeTable:
		el.DataField = DefaultTablePath
	}
	el.X, el.Y = geometry.ClampDrag(el, pos.X, pos.Y, d.Page())

	return d.appendElement(el), el.Clone(), nil
}

// AddDataField создаёт dataField, привязанный к path, с содержимым "{path}".
func (d Document) AddDataField(path, displayName string, pos models.Point) (Document, models.Element) {
	if path == "" {
		path = DefaultDataField
	}
	next, el, _ := d.AddElement(models.TypeDataField, pos)
	el.DataField = path
	el.DisplayName = displayName
	el.Content = models.TextContent("{" + path + "}")
	return next.ReplaceElement(el), el
}

// Append добавляет готовый элемент как есть (загрузка шаблона, вставка).
func (d Document) Append(el models.Element) Document {
	return d.appendElement(normalize(el.Clone()))
}

func (d Document) appendElement(el models.Element) Document {
	out := make([]models.Element, len(d.elements), len(d.elements)+1)
	copy(out, d.elements)
	out = append(out, el)
	return Document{page: d.page, elements: out}
}

// ReplaceElement заменяет элемент с тем же id целиком. Неизвестный id: no-op.
func (d Document) ReplaceElement(el models.Element) Document {
	i := d.index(el.ID)
	if i < 0 {
		return d
	}
	out := make([]models.Element, len(d.elements))
	copy(out, d.elements)
	out[i] = normalize(el.Clone())
	return Document{page: d.page, elements: out}
}

// UpdateElement применяет patch к одному элементу. Неизвестный id: no-op.
func (d Document) UpdateElement(id string, patch Patch) Document {
	el, ok := d.Find(id)
	if !ok {
		return d
	}
	return d.ReplaceElement(patch.Apply(el))
}

func (d Document) RemoveElement(id string) Document {
	i := d.index(id)
	if i < 0 {
		return d
	}
	out := make([]models.Element, 0, len(d.elements)-1)
	out = append(out, d.elements[:i]...)
	out = append(out, d.elements[i+1:]...)
	return Document{page: d.page, elements: out}
}

func (d Document) BringToFront(id string) Document {
	z := d.MaxZ() + 1
	return d.UpdateElement(id, Patch{ZIndex: &z})
}

func (d Document) SendToBack(id string) Document {
	z := d.MinZ() - 1
	return d.UpdateElement(id, Patch{ZIndex: &z})
}

// Duplicate клонирует элемент с новым id и сдвигом, не выходя за страницу.
func (d Document) Duplicate(id string) (Document, models.Element, error) {
	src, ok := d.Find(id)
	if !ok {
		return d, models.Element{}, fmt.Errorf("duplicate %s: %w", id, models.ErrElementNotFound)
	}
	el := src.Clone()
	el.ID = uuid.NewString()
	el.ZIndex = d.MaxZ() + 1
	el.X, el.Y = geometry.ClampDrag(el, src.X+DuplicateOffset, src.Y+DuplicateOffset, d.Page())
	return d.appendElement(el), el.Clone(), nil
}

// RebindField переводит dataField на новый путь и переписывает токены {old} -> {new}.
func (d Document) RebindField(id, path string) Document {
	el, ok := d.Find(id)
	if !ok || path == "" {
		return d
	}
	switch {
	case el.Type == models.TypeTable:
		el.Content = models.TextContent(path)
	case el.DataField != "" && !el.Content.List:
		el.Content = models.TextContent(strings.ReplaceAll(el.Content.Text, "{"+el.DataField+"}", "{"+path+"}"))
	default:
		el.Content = models.TextContent("{" + path + "}")
	}
	el.DataField = path
	return d.ReplaceElement(el)
}

// normalize поддерживает инварианты геометрии: x,y >= 0, размеры >= MinSize.
func normalize(el models.Element) models.Element {
	el.X = math.Max(0, el.X)
	el.Y = math.Max(0, el.Y)
	el.Width = math.Max(models.MinSize, el.Width)
	el.Height = math.Max(models.MinSize, el.Height)
	return el
}
