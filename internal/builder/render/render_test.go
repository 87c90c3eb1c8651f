package render

import (
	"strings"
	"testing"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"

	"github.com/google/go-cmp/cmp"
)

func testDoc() document.Document {
	return document.New(models.DefaultPage,
		models.Element{ID: "h", Type: models.TypeHeading, X: 10, Y: 10, Width: 300, Height: 50, ZIndex: 1, Content: models.TextContent("INVOICE")},
		models.Element{ID: "t", Type: models.TypeText, X: 10, Y: 70, Width: 200, Height: 80, ZIndex: 3, Content: models.TextContent(`From:\nAcme\nNYC`)},
		models.Element{ID: "d", Type: models.TypeDataField, X: 10, Y: 160, Width: 200, Height: 30, ZIndex: 2, DataField: "total", Content: models.TextContent("Total: {total}")},
		models.Element{ID: "bad", Type: "video", X: 0, Y: 0, Width: 40, Height: 40, ZIndex: 0},
		models.Element{ID: "tbl", Type: models.TypeTable, X: 10, Y: 200, Width: 500, Height: 200, ZIndex: 4, DataField: "items", Content: models.TextContent("items")},
	)
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("a\\nb\nc\r\nd")
	if d := cmp.Diff([]string{"a", "b", "c", "d"}, got); d != "" {
		t.Error(d)
	}
}

func TestListItems(t *testing.T) {
	cases := []struct {
		name string
		in   models.Content
		want []string
	}{
		{"list", models.ListContent("a", "b"), []string{"a", "b"}},
		{"json text", models.TextContent(`["x","y"]`), []string{"x", "y"}},
		{"garbage", models.TextContent("not a list"), []string{"Item 1"}},
		{"empty", models.TextContent(""), []string{"Item 1"}},
		{"unparsed list", models.Content{List: true}, []string{"Item 1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if d := cmp.Diff(tc.want, ListItems(tc.in)); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestLayoutDispatch(t *testing.T) {
	rec := models.Record{"total": 236.32}
	cases := []struct {
		el    models.Element
		kind  Kind
		lines []string
		label string
	}{
		{models.Element{ID: "1", Type: models.TypeHeading, Width: 50, Height: 50, Content: models.TextContent("A\nB")}, KindText, []string{"A", "B"}, ""},
		{models.Element{ID: "2", Type: models.TypeDataField, Width: 50, Height: 50, DataField: "total", Content: models.TextContent("Total: {total}")}, KindText, []string{"Total: 236.32"}, ""},
		{models.Element{ID: "3", Type: models.TypeImage, Width: 50, Height: 50}, KindPlaceholder, nil, ImageLabel},
		{models.Element{ID: "4", Type: models.TypeRectangle, Width: 50, Height: 50}, KindBox, nil, ""},
		{models.Element{ID: "5", Type: models.TypeList, Width: 50, Height: 50, Content: models.ListContent("x")}, KindList, []string{"x"}, ""},
		{models.Element{ID: "6", Type: models.TypeTable, Width: 50, Height: 50, DataField: "items"}, KindPlaceholder, nil, "Table data will appear here"},
	}
	for _, tc := range cases {
		t.Run(string(tc.el.Type), func(t *testing.T) {
			b, err := Layout(tc.el, rec)
			if err != nil {
				t.Fatal(err)
			}
			if b.Kind != tc.kind || b.Label != tc.label {
				t.Errorf("kind %s label %q", b.Kind, b.Label)
			}
			if d := cmp.Diff(tc.lines, b.Lines); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestLayoutHeadingWithListContent(t *testing.T) {
	el := models.Element{ID: "h", Type: models.TypeHeading, Width: 50, Height: 50, Content: models.ListContent("A", "B")}
	b, err := Layout(el, nil)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"A", "B"}, b.Lines); d != "" {
		t.Error(d)
	}
}

func TestLayoutMalformed(t *testing.T) {
	_, err := Layout(models.Element{ID: "x", Type: "video", Width: 10, Height: 10}, nil)
	if _, ok := err.(*models.MalformedElementError); !ok {
		t.Errorf("err = %v", err)
	}
	_, err = Layout(models.Element{ID: "y", Type: models.TypeText, Width: 0, Height: 10}, nil)
	if err == nil {
		t.Error("zero width accepted")
	}
}

func TestScreenOrderAndSelection(t *testing.T) {
	nodes := Screen(testDoc(), nil, "h")

	var order []string
	for _, n := range nodes {
		order = append(order, n.ID)
	}
	if d := cmp.Diff([]string{"d", "t", "tbl", "h"}, order); d != "" {
		t.Error(d)
	}

	last := nodes[len(nodes)-1]
	if last.State != StateEdit || last.ZIndex != 5 || len(last.Handles) != 8 || last.Source != "INVOICE" {
		t.Errorf("selected node: %+v", last)
	}
	for _, n := range nodes[:len(nodes)-1] {
		if n.State != StateDisplay || n.Handles != nil {
			t.Errorf("node %s should be in display state", n.ID)
		}
	}

	el, _ := testDoc().Find("h")
	if el.ZIndex != 1 {
		t.Error("selection changed stored zIndex")
	}
}

func TestScreenEditShowsRawTemplate(t *testing.T) {
	nodes := Screen(testDoc(), models.Record{"total": 5.0}, "d")
	last := nodes[len(nodes)-1]
	if last.Source != "Total: {total}" {
		t.Errorf("source = %q", last.Source)
	}
	if d := cmp.Diff([]string{"Total: 5"}, last.Lines); d != "" {
		t.Error(d)
	}
}

func TestScreenWithoutRecordShowsPlaceholders(t *testing.T) {
	for _, n := range Screen(testDoc(), nil, "") {
		switch n.ID {
		case "d":
			if d := cmp.Diff([]string{"Total: {total}"}, n.Lines); d != "" {
				t.Error(d)
			}
		case "tbl":
			if n.Kind != KindPlaceholder || n.Table == nil || !n.Table.NoData {
				t.Errorf("table should degrade to no data: %+v", n)
			}
		}
	}
}

func TestSVGRender(t *testing.T) {
	rec := models.Record{
		"total": 236.32,
		"items": []any{map[string]any{"name": "Widget <A>", "quantity": 5.0, "unitPrice": 10.99, "total": 54.95}},
	}
	nodes := Screen(testDoc(), rec, "t")
	svg, err := NewRenderer(models.DefaultPage, models.Viewport{Zoom: 2, Pan: models.Point{X: 10, Y: 5}}).Render(nodes)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`width="1210" height="1694"`,
		`transform="scale(2) translate(10 5)"`,
		"Total: 236.32",
		"Widget &lt;A&gt;",
		"$54.95",
		`class="resize-handle" data-dir="nw"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg lacks %q", want)
		}
	}
	if strings.Contains(svg, `id="bad"`) {
		t.Error("malformed element rendered")
	}
}

func TestHandlePoint(t *testing.T) {
	r := models.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	cases := map[string]models.Point{
		"nw": {X: 10, Y: 20},
		"n":  {X: 60, Y: 20},
		"se": {X: 110, Y: 70},
		"w":  {X: 10, Y: 45},
	}
	for dir, want := range cases {
		if d := cmp.Diff(want, HandlePoint(r, geometry.Direction(dir))); d != "" {
			t.Errorf("%s: %s", dir, d)
		}
	}
}
