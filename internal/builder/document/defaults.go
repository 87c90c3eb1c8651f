package document

import "invoice-builder/internal/builder/models"

// ============================================================
// Default element properties
// ============================================================

type defaults struct {
	width, height float64
	content       models.Content
	style         models.Style
}

// DefaultDataField: путь привязки для нового dataField без явного пути.
const DefaultDataField = "id"

// DefaultTablePath: путь к строкам таблицы по умолчанию.
const DefaultTablePath = "items"

func defaultsFor(t models.ElementType) defaults {
	switch t {
	case models.TypeHeading:
		return defaults{300, 50, models.TextContent("Document Heading"),
			models.Style{"fontWeight": "bold", "fontSize": "18px", "textAlign": "center"}}
	case models.TypeText:
		return defaults{200, 100, models.TextContent("Text content goes here"),
			models.Style{"fontSize": "14px"}}
	case models.TypeTable:
		return defaults{500, 200, models.TextContent(DefaultTablePath), nil}
	case models.TypeImage:
		return defaults{200, 150, models.TextContent(""), nil}
	case models.TypeRectangle:
		return defaults{150, 100, models.TextContent(""),
			models.Style{"backgroundColor": "#e2e8f0"}}
	case models.TypeList:
		return defaults{200, 150, models.ListContent("Item 1", "Item 2", "Item 3"), nil}
	case models.TypeDataField:
		return defaults{200, 30, models.TextContent("{" + DefaultDataField + "}"),
			models.Style{"fontSize": "14px"}}
	}
	return defaults{150, 100, models.TextContent(""), nil}
}
