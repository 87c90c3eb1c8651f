package render

import (
	"encoding/json"
	"errors"
	"log"
	"strings"

	"invoice-builder/internal/builder/binding"
	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/models"
)

// ============================================================
// Blocks (shared by screen and export)
// ============================================================

type Kind string

const (
	KindText        Kind = "text"
	KindBox         Kind = "box"
	KindList        Kind = "list"
	KindTable       Kind = "table"
	KindPlaceholder Kind = "placeholder"
)

const (
	ImageLabel    = "Image"
	ListBullet    = "• "
	lineMarker    = `\n`
	LineHeightEm  = 1.2
	HeadingSizePx = 18.0
	BodySizePx    = 12.0
)

// Block: результат диспетчеризации по типу элемента в режиме Display.
type Block struct {
	Element models.Element
	Kind    Kind
	Lines   []string
	Table   *binding.TableData
	Label   string
}

// Layout раскладывает один элемент. Ошибка: только *models.MalformedElementError.
func Layout(el models.Element, record models.Record) (Block, error) {
	if err := el.Validate(); err != nil {
		return Block{}, &models.MalformedElementError{ID: el.ID, Reason: err.Error()}
	}

	b := Block{Element: el}
	switch el.Type {
	case models.TypeHeading, models.TypeText:
		b.Kind = KindText
		b.Lines = SplitLines(EditSource(el))
	case models.TypeDataField:
		b.Kind = KindText
		b.Lines = SplitLines(binding.ResolveContent(el, record))
	case models.TypeImage:
		b.Kind = KindPlaceholder
		b.Label = ImageLabel
	case models.TypeRectangle:
		b.Kind = KindBox
	case models.TypeList:
		b.Kind = KindList
		b.Lines = ListItems(el.Content)
	case models.TypeTable:
		table := binding.ResolveTable(el, record)
		b.Table = &table
		b.Kind = KindTable
		if table.NoData {
			b.Kind = KindPlaceholder
			b.Label = binding.NoDataLabel
		}
	}
	return b, nil
}

// LayoutDocument раскладывает документ в порядке zIndex, пропуская битые элементы.
func LayoutDocument(doc document.Document, record models.Record) []Block {
	sorted := doc.Sorted()
	out := make([]Block, 0, len(sorted))
	for i, el := range sorted {
		b, err := Layout(el, record)
		if err != nil {
			var me *models.MalformedElementError
			if errors.As(err, &me) {
				me.Index = i
			}
			log.Printf("[RENDER] Skipping element: %v", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// ============================================================
// Content helpers
// ============================================================

// SplitLines делит текст по переводам строк и по литеральному маркеру "\n".
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, lineMarker, "\n")
	return strings.Split(s, "\n")
}

// ListItems возвращает пункты списка; неразбираемое содержимое даёт ["Item 1"].
// Пустой список рисуется так же, как неразобранный.
func ListItems(c models.Content) []string {
	if c.List && len(c.Items) == 0 {
		return []string{"Item 1"}
	}
	if c.List {
		return append([]string{}, c.Items...)
	}
	var items []string
	if err := json.Unmarshal([]byte(c.Text), &items); err == nil && items != nil {
		return items
	}
	return []string{"Item 1"}
}

// FontSize: размер шрифта элемента из стиля или по умолчанию для типа.
func FontSize(el models.Element) float64 {
	def := BodySizePx
	if el.Type == models.TypeHeading {
		def = HeadingSizePx
	}
	size := el.Style.Number(models.StyleFontSize, def)
	if size <= 0 {
		return def
	}
	return size
}

// EditSource: сырой текст для поля редактирования (шаблон, не подстановка).
func EditSource(el models.Element) string {
	if el.Content.List {
		return strings.Join(el.Content.Items, "\n")
	}
	return el.Content.Text
}
