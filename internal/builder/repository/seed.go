package repository

import "invoice-builder/internal/builder/models"

// DefaultTemplate кладётся в пустое хранилище при первом запуске.
var DefaultTemplate = models.Template{
	ID:   "template-1",
	Name: "Standard Invoice",
	Type: models.TemplateTypeInvoice,
	Elements: []models.Element{
		{
			ID: "1", Type: models.TypeHeading, X: 50, Y: 50, Width: 300, Height: 40, ZIndex: 1,
			Content: models.TextContent("COMMERCIAL INVOICE"),
			Style:   models.Style{"fontWeight": "bold", "fontSize": "24px"},
		},
		{
			ID: "2", Type: models.TypeDataField, X: 50, Y: 110, Width: 250, Height: 30, ZIndex: 2,
			DataField: "customerName", Content: models.TextContent("Customer: {customerName}"),
			Style: models.Style{"fontWeight": "bold"},
		},
		{
			ID: "3", Type: models.TypeDataField, X: 50, Y: 140, Width: 250, Height: 60, ZIndex: 3,
			DataField: "customerAddress", Content: models.TextContent("{customerAddress}"),
		},
		{
			ID: "4", Type: models.TypeDataField, X: 400, Y: 110, Width: 150, Height: 30, ZIndex: 4,
			DataField: "id", Content: models.TextContent("Order #: {id}"),
			Style: models.Style{"fontWeight": "bold"},
		},
		{
			ID: "5", Type: models.TypeDataField, X: 400, Y: 140, Width: 150, Height: 30, ZIndex: 5,
			DataField: "orderDate", Content: models.TextContent("Date: {orderDate}"),
		},
		{
			ID: "6", Type: models.TypeTable, X: 50, Y: 220, Width: 500, Height: 300, ZIndex: 6,
			DataField: "items", Content: models.TextContent("items"),
			TableConfig: &models.TableConfig{Columns: []models.TableColumn{
				{Key: "name", DataField: "name", Header: "Item"},
				{Key: "quantity", DataField: "quantity", Header: "Qty"},
				{Key: "unitPrice", DataField: "unitPrice", Header: "Unit Price"},
				{Key: "total", DataField: "total", Header: "Total"},
			}},
		},
		{
			ID: "7", Type: models.TypeDataField, X: 400, Y: 540, Width: 150, Height: 30, ZIndex: 7,
			DataField: "subtotal", Content: models.TextContent("Subtotal: ${subtotal}"),
			Style: models.Style{"textAlign": "right"},
		},
		{
			ID: "8", Type: models.TypeDataField, X: 400, Y: 570, Width: 150, Height: 30, ZIndex: 8,
			DataField: "tax", Content: models.TextContent("Tax: ${tax}"),
			Style: models.Style{"textAlign": "right"},
		},
		{
			ID: "9", Type: models.TypeDataField, X: 400, Y: 600, Width: 150, Height: 40, ZIndex: 9,
			DataField: "total", Content: models.TextContent("Total: ${total}"),
			Style: models.Style{"fontWeight": "bold", "textAlign": "right", "fontSize": "18px"},
		},
	},
}
