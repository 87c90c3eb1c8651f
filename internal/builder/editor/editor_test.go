package editor

import (
	"errors"
	"sync"
	"testing"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func newEditorWith(t *testing.T, els ...models.Element) *Editor {
	t.Helper()
	ed := New(Options{Page: models.DefaultPage})
	errs := ed.Load(models.Template{ID: "t", Elements: els})
	if len(errs) != 0 {
		t.Fatal(errs)
	}
	return ed
}

func box(id string, x, y, w, h float64) models.Element {
	return models.Element{ID: id, Type: models.TypeRectangle, X: x, Y: y, Width: w, Height: h}
}

func find(t *testing.T, ed *Editor, id string) models.Element {
	t.Helper()
	doc, _, _ := ed.Snapshot()
	el, ok := doc.Find(id)
	if !ok {
		t.Fatalf("element %s not found", id)
	}
	return el
}

func TestDragPreservesOffset(t *testing.T) {
	ed := newEditorWith(t, box("a", 100, 100, 50, 50))

	if err := ed.PointerDown(models.Point{X: 110, Y: 120}, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	ed.PointerMove(models.Point{X: 210, Y: 170})
	ed.PointerUp()

	el := find(t, ed, "a")
	if d := cmp.Diff(models.Rect{X: 200, Y: 150, Width: 50, Height: 50}, el.Bounds(), approx); d != "" {
		t.Error(d)
	}
	if ed.View().Selected != "a" {
		t.Error("pointer down did not select the element")
	}
}

func TestDragClampedToPage(t *testing.T) {
	ed := newEditorWith(t, box("a", 0, 0, 50, 50))
	if err := ed.PointerDown(models.Point{}, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	ed.PointerMove(models.Point{X: 700, Y: 900})
	ed.PointerMove(models.Point{X: -40, Y: 900})
	ed.PointerUp()

	el := find(t, ed, "a")
	if el.X != 0 || el.Y != 792 {
		t.Errorf("got (%v, %v)", el.X, el.Y)
	}
}

func TestDragUnderZoomAndPan(t *testing.T) {
	ed := newEditorWith(t, box("a", 100, 100, 50, 50))
	ed.Zoom(2, models.Point{})

	start := geometry.ToScreenSpace(models.Point{X: 110, Y: 110}, 2, models.Point{})
	if err := ed.PointerDown(start, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	ed.PointerMove(models.Point{X: start.X + 40, Y: start.Y})
	ed.PointerUp()

	if el := find(t, ed, "a"); el.X != 120 || el.Y != 100 {
		t.Errorf("got (%v, %v)", el.X, el.Y)
	}
}

func TestDragSnapsToGrid(t *testing.T) {
	ed := New(Options{Page: models.DefaultPage, Grid: 10})
	ed.Load(models.Template{Elements: []models.Element{box("a", 0, 0, 50, 50)}})

	if err := ed.PointerDown(models.Point{}, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	ed.PointerMove(models.Point{X: 23, Y: 548})
	ed.PointerUp()

	if el := find(t, ed, "a"); el.X != 20 || el.Y != 550 {
		t.Errorf("got (%v, %v)", el.X, el.Y)
	}
}

func TestResizeFromHandle(t *testing.T) {
	ed := newEditorWith(t, box("a", 100, 100, 100, 100))

	if err := ed.PointerDown(models.Point{X: 100, Y: 100}, Target{ID: "a", Handle: geometry.NorthWest}); err != nil {
		t.Fatal(err)
	}
	ed.PointerMove(models.Point{X: 150, Y: 150})
	ed.PointerMove(models.Point{X: 190, Y: 190})
	ed.PointerUp()

	el := find(t, ed, "a")
	want := models.Rect{X: 180, Y: 180, Width: 20, Height: 20}
	if d := cmp.Diff(want, el.Bounds(), approx); d != "" {
		t.Error(d)
	}
}

func TestResizeUsesRelativeMovement(t *testing.T) {
	ed := newEditorWith(t, box("a", 100, 100, 100, 100))
	ed.Zoom(2, models.Point{})

	if err := ed.PointerDown(models.Point{X: 400, Y: 400}, Target{ID: "a", Handle: geometry.SouthEast}); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 10; i++ {
		ed.PointerMove(models.Point{X: 400 + float64(i)*2, Y: 400})
	}
	ed.PointerUp()

	if el := find(t, ed, "a"); el.Width != 110 || el.Height != 100 {
		t.Errorf("got %vx%v", el.Width, el.Height)
	}
}

func TestPanning(t *testing.T) {
	ed := newEditorWith(t)
	ed.Zoom(2, models.Point{})

	if err := ed.PointerDown(models.Point{X: 10, Y: 10}, Target{}); err != nil {
		t.Fatal(err)
	}
	v := ed.PointerMove(models.Point{X: 30, Y: 50})
	if v.Session != SessionPanning {
		t.Errorf("session = %s", v.Session)
	}
	if ended := ed.PointerUp(); ended != SessionPanning {
		t.Errorf("ended = %s", ended)
	}

	if d := cmp.Diff(models.Point{X: 10, Y: 20}, ed.Viewport().Pan, approx); d != "" {
		t.Error(d)
	}
}

func TestSingleSessionSlot(t *testing.T) {
	ed := newEditorWith(t, box("a", 0, 0, 50, 50), box("b", 100, 0, 50, 50))

	if err := ed.PointerDown(models.Point{}, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	for _, target := range []Target{{ID: "b"}, {ID: "a", Handle: geometry.East}, {}} {
		if err := ed.PointerDown(models.Point{}, target); !errors.Is(err, ErrSessionActive) {
			t.Errorf("target %+v: err = %v", target, err)
		}
	}
	ed.PointerUp()
	if err := ed.PointerDown(models.Point{}, Target{}); err != nil {
		t.Errorf("new session after pointer up: %v", err)
	}
}

func TestMoveWithoutSessionIsNoop(t *testing.T) {
	ed := newEditorWith(t, box("a", 10, 10, 50, 50))
	ed.PointerMove(models.Point{X: 300, Y: 300})
	if el := find(t, ed, "a"); el.X != 10 || el.Y != 10 {
		t.Error("element moved without a session")
	}
}

func TestPointerDownErrors(t *testing.T) {
	ed := newEditorWith(t, box("a", 0, 0, 50, 50))
	if err := ed.PointerDown(models.Point{}, Target{ID: "zzz"}); !errors.Is(err, models.ErrElementNotFound) {
		t.Errorf("err = %v", err)
	}
	if err := ed.PointerDown(models.Point{}, Target{ID: "a", Handle: "up"}); err == nil {
		t.Error("invalid handle accepted")
	}
	if ed.View().Session != SessionNone {
		t.Error("failed pointer down left a session")
	}
}

func TestZoomKeepsAnchor(t *testing.T) {
	ed := newEditorWith(t)
	anchor := models.Point{X: 300, Y: 200}
	before := geometry.ToCanvasSpace(anchor, 1, models.Point{})

	vp := ed.Zoom(2.5, anchor)
	after := geometry.ToCanvasSpace(anchor, vp.Zoom, vp.Pan)
	if d := cmp.Diff(before, after, approx); d != "" {
		t.Error(d)
	}
	if vp := ed.Zoom(10, anchor); vp.Zoom != models.MaxZoom {
		t.Errorf("zoom = %v", vp.Zoom)
	}
	if vp := ed.ResetView(); vp.Zoom != 1 || vp.Pan != (models.Point{}) {
		t.Errorf("reset = %+v", vp)
	}
}

func TestPendingEditCommittedBeforeSnapshot(t *testing.T) {
	ed := newEditorWith(t, models.Element{ID: "t", Type: models.TypeText, Width: 100, Height: 40, Content: models.TextContent("old")})

	if err := ed.Select("t"); err != nil {
		t.Fatal(err)
	}
	if err := ed.SetEditText("new text"); err != nil {
		t.Fatal(err)
	}
	if got := ed.View().Elements[0].Content.Text; got != "old" {
		t.Errorf("view shows uncommitted text %q", got)
	}

	doc, _, _ := ed.Snapshot()
	el, _ := doc.Find("t")
	if el.Content.Text != "new text" {
		t.Errorf("snapshot = %q", el.Content.Text)
	}
}

func TestPendingEditCommittedOnDeselect(t *testing.T) {
	ed := newEditorWith(t,
		models.Element{ID: "l", Type: models.TypeList, Width: 100, Height: 40, Content: models.ListContent("a")},
		box("b", 0, 0, 50, 50),
	)
	ed.Select("l")
	ed.SetEditText("one\n\ntwo\n")
	if err := ed.Select("b"); err != nil {
		t.Fatal(err)
	}

	el := find(t, ed, "l")
	if d := cmp.Diff(models.ListContent("one", "two"), el.Content); d != "" {
		t.Error(d)
	}
}

func TestSetEditTextRequiresSelection(t *testing.T) {
	ed := newEditorWith(t)
	if err := ed.SetEditText("x"); !errors.Is(err, ErrNoSelection) {
		t.Errorf("err = %v", err)
	}
}

func TestMutations(t *testing.T) {
	ed := newEditorWith(t, box("a", 0, 0, 50, 50))

	added, err := ed.AddElement(models.TypeHeading, models.Point{X: 10, Y: 10})
	if err != nil {
		t.Fatal(err)
	}
	if ed.View().Selected != added.ID {
		t.Error("new element not selected")
	}
	if _, err := ed.AddElement("video", models.Point{}); err == nil {
		t.Error("unknown type accepted")
	}

	field := ed.AddDataField("customer.name", "Customer Name", models.Point{X: 5, Y: 5})
	if field.Content.Text != "{customer.name}" {
		t.Errorf("content = %q", field.Content.Text)
	}

	back, err := ed.SendToBack(field.ID)
	if err != nil || back.ZIndex >= 0 {
		t.Errorf("send to back: %+v %v", back, err)
	}
	front, err := ed.BringToFront("a")
	if err != nil || front.ZIndex <= added.ZIndex {
		t.Errorf("bring to front: %+v %v", front, err)
	}

	rebound, err := ed.Rebind(field.ID, "total")
	if err != nil || rebound.Content.Text != "{total}" || rebound.DataField != "total" {
		t.Errorf("rebind: %+v %v", rebound, err)
	}

	w := 80.0
	updated, err := ed.Update("a", document.Patch{Width: &w, Style: models.Style{"backgroundColor": "#ff0000"}})
	if err != nil || updated.Width != 80 || updated.Style.String("backgroundColor", "") != "#ff0000" {
		t.Errorf("update: %+v %v", updated, err)
	}

	dup, err := ed.Duplicate("a")
	if err != nil || dup.ID == "a" || dup.X != 20 {
		t.Errorf("duplicate: %+v %v", dup, err)
	}

	if err := ed.Remove(dup.ID); err != nil {
		t.Fatal(err)
	}
	if ed.View().Selected != "" {
		t.Error("removed element still selected")
	}
	for _, err := range []error{
		ed.Remove("missing"),
		ed.Select("missing"),
	} {
		if !errors.Is(err, models.ErrElementNotFound) {
			t.Errorf("err = %v", err)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	ed := newEditorWith(t, models.Element{ID: "t", Type: models.TypeText, Width: 100, Height: 40, Content: models.TextContent("a")})
	ed.Select("t")
	ed.SetEditText("saved text")

	tpl := ed.Save("Mine")
	if len(tpl.Elements) != 1 || tpl.Elements[0].Content.Text != "saved text" {
		t.Fatalf("template = %+v", tpl)
	}

	other := New(Options{})
	errs := other.Load(models.Template{Elements: append(tpl.Elements, models.Element{ID: "bad", Type: "video"})})
	if len(errs) != 1 {
		t.Errorf("errs = %v", errs)
	}
	if v := other.View(); len(v.Elements) != 1 || v.Page != models.DefaultPage {
		t.Errorf("view = %+v", v)
	}
}

func TestRecordLastWriteWins(t *testing.T) {
	ed := newEditorWith(t)
	ed.SetRecord("A", models.Record{"id": "A"})
	ed.SetRecord("B", models.Record{"id": "B"})
	_, _, rec := ed.Snapshot()
	if ed.OrderID() != "B" || rec["id"] != "B" {
		t.Errorf("order %s record %v", ed.OrderID(), rec)
	}
}

func TestConcurrentMoves(t *testing.T) {
	ed := newEditorWith(t, box("a", 0, 0, 50, 50))
	if err := ed.PointerDown(models.Point{}, Target{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ed.PointerMove(models.Point{X: float64(i * 10), Y: float64(i * 10)})
		}(i)
	}
	wg.Wait()
	ed.PointerUp()

	el := find(t, ed, "a")
	if el.X < 0 || el.X > 545 || el.Y < 0 || el.Y > 792 {
		t.Errorf("out of bounds: %+v", el.Bounds())
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(Options{Page: models.DefaultPage})
	token, ed := reg.Open()
	if got, ok := reg.Resolve(token); !ok || got != ed {
		t.Error("token did not resolve")
	}
	if _, ok := reg.Resolve("nope"); ok {
		t.Error("unknown token resolved")
	}
	other, _ := reg.Open()
	if other == token || reg.Len() != 2 {
		t.Error("tokens not unique")
	}
	if !reg.Close(token) || reg.Close(token) {
		t.Error("close semantics")
	}
}
