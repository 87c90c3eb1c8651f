package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================
// Page & geometry primitives
// ============================================================

// MinSize: минимальная ширина и высота элемента в пикселях холста.
const MinSize = 20.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultPage: логический размер холста (A4 при 72dpi).
var DefaultPage = PageSize{Width: 595, Height: 842}

// A4MM: физический размер страницы A4 в миллиметрах.
var A4MM = PageSize{Width: 210, Height: 297}

// ============================================================
// Elements
// ============================================================

type ElementType string

const (
	TypeHeading   ElementType = "heading"
	TypeText      ElementType = "text"
	TypeImage     ElementType = "image"
	TypeRectangle ElementType = "rectangle"
	TypeList      ElementType = "list"
	TypeDataField ElementType = "dataField"
	TypeTable     ElementType = "table"
)

var knownTypes = map[ElementType]bool{
	TypeHeading:   true,
	TypeText:      true,
	TypeImage:     true,
	TypeRectangle: true,
	TypeList:      true,
	TypeDataField: true,
	TypeTable:     true,
}

// Known сообщает, входит ли тип в закрытый набор типов элементов.
func (t ElementType) Known() bool {
	return knownTypes[t]
}

// Bindable: типы, читающие данные из внешней записи.
func (t ElementType) Bindable() bool {
	return t == TypeDataField || t == TypeTable
}

type Element struct {
	ID          string       `json:"id"`
	Type        ElementType  `json:"type"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	ZIndex      int          `json:"zIndex"`
	Content     Content      `json:"content"`
	Style       Style        `json:"style,omitempty"`
	DataField   string       `json:"dataField,omitempty"`
	DisplayName string       `json:"displayName,omitempty"`
	TableConfig *TableConfig `json:"tableConfig,omitempty"`
}

func (e Element) Bounds() Rect {
	return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// WithBounds возвращает копию элемента с новой геометрией.
func (e Element) WithBounds(r Rect) Element {
	e.X, e.Y, e.Width, e.Height = r.X, r.Y, r.Width, r.Height
	return e
}

// Clone делает глубокую копию, чтобы снимки документа не делили изменяемые данные.
func (e Element) Clone() Element {
	e.Content = e.Content.Clone()
	e.Style = e.Style.Clone()
	if e.TableConfig != nil {
		cfg := *e.TableConfig
		cfg.Columns = append([]TableColumn(nil), e.TableConfig.Columns...)
		e.TableConfig = &cfg
	}
	return e
}

// Validate проверяет обязательные поля элемента.
func (e Element) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("missing id")
	case !e.Type.Known():
		return fmt.Errorf("unknown type %q", e.Type)
	case e.Width <= 0 || e.Height <= 0:
		return fmt.Errorf("invalid size %gx%g", e.Width, e.Height)
	}
	return nil
}

// ============================================================
// Content
// ============================================================

// Content хранит либо строку (heading, text, dataField, table),
// либо упорядоченный список строк (list).
type Content struct {
	Text  string
	Items []string
	List  bool
}

func TextContent(s string) Content {
	return Content{Text: s}
}

func ListContent(items ...string) Content {
	return Content{Items: append([]string{}, items...), List: true}
}

func (c Content) Clone() Content {
	if c.Items != nil {
		c.Items = append([]string{}, c.Items...)
	}
	return c
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.List {
		items := c.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON не отвергает элемент из-за формы content: список не из строк
// остаётся пустым списком (пункты по умолчанию), скаляр становится текстом.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []string
		if err := json.Unmarshal(trimmed, &items); err != nil {
			*c = Content{List: true}
			return nil
		}
		*c = Content{Items: items, List: true}
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("content: %w", err)
		}
		*c = Content{Text: text}
	case '{':
		*c = Content{}
	default:
		*c = Content{Text: string(trimmed)}
	}
	return nil
}

// ============================================================
// Table configuration
// ============================================================

type TableColumn struct {
	Key       string `json:"key"`
	DataField string `json:"dataField,omitempty"`
	Header    string `json:"header"`
	Format    string `json:"format,omitempty"` // text, currency
}

type TableConfig struct {
	Columns []TableColumn `json:"columns"`
}

// ============================================================
// Templates & records
// ============================================================

const TemplateTypeInvoice = "invoice"

type Template struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Elements []Element `json:"elements"`
}

// Record: внешняя запись заказа, только для чтения.
type Record map[string]any

// ============================================================
// Viewport
// ============================================================

const (
	MinZoom = 0.25
	MaxZoom = 3.0
)

type Viewport struct {
	Zoom float64 `json:"zoomLevel"`
	Pan  Point   `json:"panOffset"`
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}
