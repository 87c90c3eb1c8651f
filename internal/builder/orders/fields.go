package orders

import (
	"strings"

	"invoice-builder/internal/builder/models"
)

// ============================================================
// Data field catalog
// ============================================================

type Field struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type FieldGroup struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

var catalog = []FieldGroup{
	{Name: "order", Fields: []Field{
		{Label: "Order Number", Path: "id"},
		{Label: "Order Date", Path: "orderDate"},
		{Label: "Status", Path: "status"},
	}},
	{Name: "customer", Fields: []Field{
		{Label: "Customer Name", Path: "customerName"},
		{Label: "Customer Address", Path: "customerAddress"},
	}},
	{Name: "shipping", Fields: []Field{
		{Label: "Ship To", Path: "shipTo"},
		{Label: "Ship Date", Path: "shipDate"},
		{Label: "Ship Via", Path: "shipVia"},
		{Label: "Weight", Path: "weight"},
		{Label: "Origin Country", Path: "origin"},
	}},
	{Name: "payment", Fields: []Field{
		{Label: "Subtotal", Path: "subtotal"},
		{Label: "Tax", Path: "tax"},
		{Label: "Shipping Cost", Path: "shipping"},
		{Label: "Total", Path: "total"},
		{Label: "Currency", Path: "currency"},
		{Label: "Terms", Path: "terms"},
	}},
	{Name: "items", Fields: []Field{
		{Label: "Line Items Table", Path: "items"},
	}},
}

// Fields возвращает каталог полей, отфильтрованный по search (подстрока
// метки или пути без учёта регистра). Exists отмечает поля, присутствующие в record.
func Fields(record models.Record, search string) []FieldGroup {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]FieldGroup, 0, len(catalog))
	for _, g := range catalog {
		var fields []Field
		for _, f := range g.Fields {
			if search != "" &&
				!strings.Contains(strings.ToLower(f.Label), search) &&
				!strings.Contains(strings.ToLower(f.Path), search) {
				continue
			}
			f.Exists = Exists(record, f.Path)
			fields = append(fields, f)
		}
		if len(fields) > 0 {
			out = append(out, FieldGroup{Name: g.Name, Fields: fields})
		}
	}
	return out
}

// Exists сообщает, есть ли ключ по пути path. Значение null считается присутствующим.
func Exists(record models.Record, path string) bool {
	if record == nil || path == "" {
		return false
	}
	var cur any = map[string]any(record)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			if r, isRecord := cur.(models.Record); isRecord {
				m, ok = r, true
			}
		}
		if !ok {
			return false
		}
		if cur, ok = m[seg]; !ok {
			return false
		}
	}
	return true
}
