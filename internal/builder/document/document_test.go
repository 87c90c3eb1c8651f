package document

import (
	"errors"
	"testing"

	"invoice-builder/internal/builder/models"

	"github.com/google/go-cmp/cmp"
)

func sample() Document {
	return New(models.DefaultPage,
		models.Element{ID: "a", Type: models.TypeHeading, X: 10, Y: 10, Width: 100, Height: 40, ZIndex: 2, Content: models.TextContent("A")},
		models.Element{ID: "b", Type: models.TypeText, X: 20, Y: 60, Width: 100, Height: 40, ZIndex: 1, Content: models.TextContent("B")},
		models.Element{ID: "c", Type: models.TypeList, X: 30, Y: 90, Width: 100, Height: 40, ZIndex: 2, Content: models.ListContent("x", "y")},
	)
}

func ids(els []models.Element) []string {
	var out []string
	for _, el := range els {
		out = append(out, el.ID)
	}
	return out
}

func TestAddElementDefaults(t *testing.T) {
	doc := sample()
	next, el, err := doc.AddElement(models.TypeHeading, models.Point{X: 100, Y: 200})
	if err != nil {
		t.Fatal(err)
	}
	if el.ID == "" {
		t.Fatal("missing id")
	}
	if el.ZIndex != 3 {
		t.Errorf("zIndex = %d, want 3", el.ZIndex)
	}
	if el.Width != 300 || el.Height != 50 || el.Content.Text != "Document Heading" {
		t.Errorf("unexpected defaults: %+v", el)
	}
	if next.Len() != 4 || doc.Len() != 3 {
		t.Errorf("lengths: next %d, old %d", next.Len(), doc.Len())
	}

	_, list, _ := doc.AddElement(models.TypeList, models.Point{})
	if d := cmp.Diff([]string{"Item 1", "Item 2", "Item 3"}, list.Content.Items); d != "" {
		t.Error(d)
	}

	_, table, _ := doc.AddElement(models.TypeTable, models.Point{X: 400, Y: 0})
	if table.DataField != "items" || table.X != 95 {
		t.Errorf("table not clamped or unbound: %+v", table)
	}

	if _, _, err := doc.AddElement("video", models.Point{}); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestAddElementIDsUnique(t *testing.T) {
	doc := New(models.DefaultPage)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		var el models.Element
		doc, el, _ = doc.AddElement(models.TypeText, models.Point{})
		if seen[el.ID] {
			t.Fatalf("duplicate id %s", el.ID)
		}
		seen[el.ID] = true
	}
}

func TestAddDataField(t *testing.T) {
	doc, el := New(models.DefaultPage).AddDataField("customerName", "Customer", models.Point{X: 5, Y: 5})
	got, _ := doc.Find(el.ID)
	if got.Content.Text != "{customerName}" || got.DataField != "customerName" || got.DisplayName != "Customer" {
		t.Errorf("unexpected data field: %+v", got)
	}
}

func TestUpdateElementCopyOnWrite(t *testing.T) {
	doc := sample()
	x := 250.0
	next := doc.UpdateElement("b", Patch{X: &x, Style: models.Style{"color": "#ff0000"}})

	old, _ := doc.Find("b")
	updated, _ := next.Find("b")
	if old.X != 20 || old.Style != nil {
		t.Errorf("original snapshot mutated: %+v", old)
	}
	if updated.X != 250 || updated.Style["color"] != "#ff0000" {
		t.Errorf("update not applied: %+v", updated)
	}

	a1, _ := doc.Find("a")
	a2, _ := next.Find("a")
	if d := cmp.Diff(a1, a2); d != "" {
		t.Errorf("untouched element changed: %s", d)
	}

	same := doc.UpdateElement("missing", Patch{X: &x})
	if d := cmp.Diff(ids(doc.Elements()), ids(same.Elements())); d != "" {
		t.Error(d)
	}
}

func TestUpdateElementKeepsInvariants(t *testing.T) {
	neg, tiny := -5.0, 3.0
	doc := sample().UpdateElement("a", Patch{X: &neg, Width: &tiny, Height: &tiny})
	el, _ := doc.Find("a")
	if el.X != 0 || el.Width != models.MinSize || el.Height != models.MinSize {
		t.Errorf("invariants violated: %+v", el)
	}
}

func TestStylePatchRemovesNilKeys(t *testing.T) {
	doc := sample().UpdateElement("a", Patch{Style: models.Style{"color": "#000", "padding": "4px"}})
	doc = doc.UpdateElement("a", Patch{Style: models.Style{"color": nil}})
	el, _ := doc.Find("a")
	if d := cmp.Diff(models.Style{"padding": "4px"}, el.Style); d != "" {
		t.Error(d)
	}
}

func TestSortedIsStable(t *testing.T) {
	if d := cmp.Diff([]string{"b", "a", "c"}, ids(sample().Sorted())); d != "" {
		t.Error(d)
	}
}

func TestZOrderOperations(t *testing.T) {
	doc := sample().BringToFront("b")
	b, _ := doc.Find("b")
	if b.ZIndex != 3 {
		t.Errorf("front: zIndex = %d", b.ZIndex)
	}
	doc = doc.SendToBack("a")
	a, _ := doc.Find("a")
	if a.ZIndex != 1 {
		t.Errorf("back: zIndex = %d", a.ZIndex)
	}
	if d := cmp.Diff([]string{"a", "c", "b"}, ids(doc.Sorted())); d != "" {
		t.Error(d)
	}
}

func TestRemoveElement(t *testing.T) {
	doc := sample()
	next := doc.RemoveElement("a")
	if d := cmp.Diff([]string{"b", "c"}, ids(next.Elements())); d != "" {
		t.Error(d)
	}
	if doc.Len() != 3 {
		t.Error("original changed")
	}
}

func TestDuplicate(t *testing.T) {
	doc := New(models.DefaultPage,
		models.Element{ID: "edge", Type: models.TypeRectangle, X: 540, Y: 800, Width: 50, Height: 40, ZIndex: 5},
		models.Element{ID: "mid", Type: models.TypeList, X: 100, Y: 100, Width: 50, Height: 40, ZIndex: 1, Content: models.ListContent("q")},
	)

	next, dup, err := doc.Duplicate("edge")
	if err != nil {
		t.Fatal(err)
	}
	if dup.ID == "edge" || dup.X != 545 || dup.Y != 802 || dup.ZIndex != 6 {
		t.Errorf("unexpected duplicate: %+v", dup)
	}
	if next.Len() != 3 {
		t.Errorf("len = %d", next.Len())
	}

	next, dup, _ = next.Duplicate("mid")
	if dup.X != 120 || dup.Y != 120 {
		t.Errorf("offset not applied: %+v", dup)
	}
	dup.Content.Items[0] = "changed"
	orig, _ := next.Find("mid")
	if orig.Content.Items[0] != "q" {
		t.Error("duplicate shares list storage with original")
	}

	if _, _, err := doc.Duplicate("nope"); !errors.Is(err, models.ErrElementNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestRebindField(t *testing.T) {
	doc, el := New(models.DefaultPage).AddDataField("total", "", models.Point{})
	body := models.TextContent("Total: {total} ({total})")
	doc = doc.UpdateElement(el.ID, Patch{Content: &body})

	doc = doc.RebindField(el.ID, "subtotal")
	got, _ := doc.Find(el.ID)
	if got.Content.Text != "Total: {subtotal} ({subtotal})" || got.DataField != "subtotal" {
		t.Errorf("rebind: %+v", got)
	}
}
