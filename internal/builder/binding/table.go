package binding

import (
	"fmt"

	"invoice-builder/internal/builder/models"
)

// ============================================================
// Table binding
// ============================================================

const (
	FormatText     = "text"
	FormatCurrency = "currency"
)

// NoDataLabel: подпись таблицы без данных.
const NoDataLabel = "Table data will appear here"

// DefaultColumns: колонки строки заказа {name, quantity, unitPrice, total}.
var DefaultColumns = []models.TableColumn{
	{Key: "name", DataField: "name", Header: "Item", Format: FormatText},
	{Key: "quantity", DataField: "quantity", Header: "Qty", Format: FormatText},
	{Key: "unitPrice", DataField: "unitPrice", Header: "Price", Format: FormatCurrency},
	{Key: "total", DataField: "total", Header: "Total", Format: FormatCurrency},
}

// TableData: отформатированная таблица; NoData означает «данных нет».
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	NoData  bool       `json:"noData"`
}

// TablePath возвращает путь к строкам таблицы.
func TablePath(el models.Element) string {
	if el.DataField != "" {
		return el.DataField
	}
	if !el.Content.List && el.Content.Text != "" {
		return el.Content.Text
	}
	return "items"
}

// Columns возвращает колонки элемента; формат наследуется от колонки по умолчанию с тем же ключом.
func Columns(el models.Element) []models.TableColumn {
	if el.TableConfig == nil || len(el.TableConfig.Columns) == 0 {
		return DefaultColumns
	}
	out := make([]models.TableColumn, 0, len(el.TableConfig.Columns))
	for _, col := range el.TableConfig.Columns {
		if col.DataField == "" {
			col.DataField = col.Key
		}
		if col.Header == "" {
			col.Header = col.Key
		}
		if col.Format == "" {
			col.Format = FormatText
			for _, def := range DefaultColumns {
				if def.Key == col.Key {
					col.Format = def.Format
				}
			}
		}
		out = append(out, col)
	}
	return out
}

// ResolveTable строит строки таблицы из массива по пути элемента.
// Не массив или отсутствующее значение: NoData, без ошибки.
func ResolveTable(el models.Element, record models.Record) TableData {
	cols := Columns(el)
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.Header
	}

	items, ok := ResolvePath(record, TablePath(el)).([]any)
	if !ok {
		return TableData{Headers: headers, NoData: true}
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, len(cols))
		obj, _ := item.(map[string]any)
		for i, col := range cols {
			row[i] = formatCell(ResolvePath(obj, col.DataField), col.Format)
		}
		rows = append(rows, row)
	}
	return TableData{Headers: headers, Rows: rows}
}

func formatCell(v any, format string) string {
	if v == nil {
		return ""
	}
	if format == FormatCurrency {
		if f, ok := number(v); ok {
			return fmt.Sprintf("$%.2f", f)
		}
	}
	return FormatValue(v)
}
