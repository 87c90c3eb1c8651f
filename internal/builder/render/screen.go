package render

import (
	"strings"

	"invoice-builder/internal/builder/binding"
	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"
)

// ============================================================
// Screen nodes
// ============================================================

type State string

const (
	StateDisplay State = "display"
	StateEdit    State = "edit"
)

// Node: экранное представление одного элемента.
type Node struct {
	ID      string               `json:"id"`
	Type    models.ElementType   `json:"type"`
	Title   string               `json:"title"`
	State   State                `json:"state"`
	Box     models.Rect          `json:"box"`
	ZIndex  int                  `json:"zIndex"`
	Kind    Kind                 `json:"kind"`
	Lines   []string             `json:"lines,omitempty"`
	Table   *binding.TableData   `json:"table,omitempty"`
	Label   string               `json:"label,omitempty"`
	Style   models.Style         `json:"style,omitempty"`
	Source  string               `json:"source,omitempty"`
	Handles []geometry.Direction `json:"handles,omitempty"`
}

// Screen строит узлы для холста. Выделенный элемент в состоянии Edit
// рисуется последним и поверх остальных; его zIndex в документе не меняется.
func Screen(doc document.Document, record models.Record, selectedID string) []Node {
	blocks := LayoutDocument(doc, record)
	top := doc.MaxZ() + 1

	nodes := make([]Node, 0, len(blocks))
	var selected *Node
	for _, b := range blocks {
		n := nodeFor(b)
		if b.Element.ID == selectedID && selectedID != "" {
			n.State = StateEdit
			n.ZIndex = top
			n.Source = EditSource(b.Element)
			n.Handles = append([]geometry.Direction{}, geometry.Directions...)
			selected = &n
			continue
		}
		nodes = append(nodes, n)
	}
	if selected != nil {
		nodes = append(nodes, *selected)
	}
	return nodes
}

func nodeFor(b Block) Node {
	el := b.Element
	return Node{
		ID:     el.ID,
		Type:   el.Type,
		Title:  Title(el),
		State:  StateDisplay,
		Box:    el.Bounds(),
		ZIndex: el.ZIndex,
		Kind:   b.Kind,
		Lines:  b.Lines,
		Table:  b.Table,
		Label:  b.Label,
		Style:  el.Style,
	}
}

// Title: подпись над выделенным элементом.
func Title(el models.Element) string {
	if el.Type == models.TypeDataField {
		if el.DisplayName != "" {
			return el.DisplayName
		}
		return "Data Field"
	}
	s := string(el.Type)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
