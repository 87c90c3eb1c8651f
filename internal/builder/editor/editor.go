package editor

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"
	"invoice-builder/internal/builder/template"
)

var (
	ErrSessionActive = errors.New("interaction session already active")
	ErrNoSelection   = errors.New("no element selected")
)

// ============================================================
// Interaction session
// ============================================================

type SessionKind string

const (
	SessionNone     SessionKind = "none"
	SessionDragging SessionKind = "dragging"
	SessionResizing SessionKind = "resizing"
	SessionPanning  SessionKind = "panning"
)

// session: единственный слот текущего жеста. Поля значимы только для своего kind.
type session struct {
	kind   SessionKind
	id     string
	offset models.Point // dragging: указатель минус левый верхний угол, в координатах холста
	dir    geometry.Direction
	last   models.Point // resizing, panning: предыдущая позиция указателя на экране
}

// Target: то, что оказалось под указателем при нажатии.
// Пустой ID означает фон холста.
type Target struct {
	ID     string             `json:"elementId,omitempty"`
	Handle geometry.Direction `json:"handle,omitempty"`
}

// ============================================================
// Editor
// ============================================================

// Editor владеет документом одной сессии редактирования.
// Все изменения сериализуются мьютексом.
type Editor struct {
	mu       sync.Mutex
	doc      document.Document
	selected string
	viewport models.Viewport
	grid     float64
	current  session
	pending  *pendingEdit
	orderID  string
	record   models.Record
}

type pendingEdit struct {
	id   string
	text string
}

type Options struct {
	Page models.PageSize
	Grid float64
}

func New(opts Options) *Editor {
	return &Editor{
		doc:      document.New(opts.Page),
		viewport: models.DefaultViewport(),
		grid:     opts.Grid,
		current:  session{kind: SessionNone},
	}
}

// View: согласованный снимок состояния редактора.
type View struct {
	Elements []models.Element `json:"elements"`
	Selected string           `json:"selectedElement,omitempty"`
	Viewport models.Viewport  `json:"viewport"`
	Session  SessionKind      `json:"session"`
	Page     models.PageSize  `json:"page"`
	OrderID  string           `json:"orderId,omitempty"`
	Record   models.Record    `json:"orderData,omitempty"`
}

// Snapshot фиксирует незавершённую правку и возвращает документ для отрисовки или экспорта.
func (e *Editor) Snapshot() (document.Document, string, models.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked()
	return e.doc, e.selected, e.record
}

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Editor) viewLocked() View {
	return View{
		Elements: e.doc.Elements(),
		Selected: e.selected,
		Viewport: e.viewport,
		Session:  e.current.kind,
		Page:     e.doc.Page(),
		OrderID:  e.orderID,
		Record:   e.record,
	}
}

func (e *Editor) Viewport() models.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// ============================================================
// Selection & edit text
// ============================================================

// Select переводит элемент в состояние Edit; пустой id снимает выделение.
// Незафиксированный текст предыдущего элемента фиксируется.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectLocked(id)
}

func (e *Editor) selectLocked(id string) error {
	if id != "" {
		if _, ok := e.doc.Find(id); !ok {
			return fmt.Errorf("select %s: %w", id, models.ErrElementNotFound)
		}
	}
	if id != e.selected {
		e.commitLocked()
	}
	e.selected = id
	return nil
}

// SetEditText запоминает текст поля редактирования выделенного элемента.
func (e *Editor) SetEditText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected == "" {
		return ErrNoSelection
	}
	e.pending = &pendingEdit{id: e.selected, text: text}
	return nil
}

func (e *Editor) Commit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commitLocked()
}

func (e *Editor) commitLocked() {
	if e.pending == nil {
		return
	}
	p := e.pending
	e.pending = nil

	el, ok := e.doc.Find(p.id)
	if !ok {
		return
	}
	content := models.TextContent(p.text)
	if el.Content.List || el.Type == models.TypeList {
		content = models.ListContent(splitItems(p.text)...)
	}
	e.doc = e.doc.UpdateElement(p.id, document.Patch{Content: &content})
}

func splitItems(text string) []string {
	var items []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// ============================================================
// Document mutations
// ============================================================

// AddElement добавляет элемент в точке холста pos и выделяет его.
func (e *Editor) AddElement(t models.ElementType, pos models.Point) (models.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked()
	next, el, err := e.doc.AddElement(t, pos)
	if err != nil {
		return models.Element{}, err
	}
	e.doc = next
	e.selected = el.ID
	return el, nil
}

func (e *Editor) AddDataField(path, displayName string, pos models.Point) models.Element {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked()
	next, el := e.doc.AddDataField(path, displayName, pos)
	e.doc = next
	e.selected = el.ID
	return el
}

func (e *Editor) Update(id string, patch document.Patch) (models.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.doc.Find(id); !ok {
		return models.Element{}, fmt.Errorf("update %s: %w", id, models.ErrElementNotFound)
	}
	if e.pending != nil && e.pending.id == id && patch.Content != nil {
		e.pending = nil
	}
	e.doc = e.doc.UpdateElement(id, patch)
	el, _ := e.doc.Find(id)
	return el, nil
}

func (e *Editor) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.doc.Find(id); !ok {
		return fmt.Errorf("remove %s: %w", id, models.ErrElementNotFound)
	}
	if e.pending != nil && e.pending.id == id {
		e.pending = nil
	}
	if e.current.id == id {
		e.current = session{kind: SessionNone}
	}
	e.doc = e.doc.RemoveElement(id)
	if e.selected == id {
		e.selected = ""
	}
	return nil
}

func (e *Editor) BringToFront(id string) (models.Element, error) {
	return e.mutate(id, "bring to front", func(d document.Document) document.Document {
		return d.BringToFront(id)
	})
}

func (e *Editor) SendToBack(id string) (models.Element, error) {
	return e.mutate(id, "send to back", func(d document.Document) document.Document {
		return d.SendToBack(id)
	})
}

func (e *Editor) Rebind(id, path string) (models.Element, error) {
	if path == "" {
		return models.Element{}, fmt.Errorf("rebind %s: empty data field", id)
	}
	return e.mutate(id, "rebind", func(d document.Document) document.Document {
		return d.RebindField(id, path)
	})
}

func (e *Editor) mutate(id, op string, fn func(document.Document) document.Document) (models.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.doc.Find(id); !ok {
		return models.Element{}, fmt.Errorf("%s %s: %w", op, id, models.ErrElementNotFound)
	}
	e.commitLocked()
	e.doc = fn(e.doc)
	el, _ := e.doc.Find(id)
	return el, nil
}

// Duplicate копирует элемент и выделяет копию.
func (e *Editor) Duplicate(id string) (models.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked()
	next, el, err := e.doc.Duplicate(id)
	if err != nil {
		return models.Element{}, err
	}
	e.doc = next
	e.selected = el.ID
	return el, nil
}

// ============================================================
// Pointer sessions
// ============================================================

// PointerDown начинает жест: перетаскивание элемента, изменение размера за маркер
// или панорамирование фона. p: координаты экрана.
func (e *Editor) PointerDown(p models.Point, target Target) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current.kind != SessionNone {
		return ErrSessionActive
	}

	if target.ID == "" {
		e.current = session{kind: SessionPanning, last: p}
		return nil
	}

	el, ok := e.doc.Find(target.ID)
	if !ok {
		return fmt.Errorf("pointer down on %s: %w", target.ID, models.ErrElementNotFound)
	}
	if err := e.selectLocked(el.ID); err != nil {
		return err
	}

	if target.Handle != "" {
		if !target.Handle.Valid() {
			return fmt.Errorf("unknown resize handle %q", target.Handle)
		}
		e.current = session{kind: SessionResizing, id: el.ID, dir: target.Handle, last: p}
		return nil
	}

	c := geometry.ToCanvasSpace(p, e.viewport.Zoom, e.viewport.Pan)
	e.current = session{
		kind:   SessionDragging,
		id:     el.ID,
		offset: models.Point{X: c.X - el.X, Y: c.Y - el.Y},
	}
	return nil
}

// PointerMove применяет одно ограниченное обновление геометрии для текущего жеста.
// Без активного жеста ничего не делает.
func (e *Editor) PointerMove(p models.Point) View {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.current.kind {
	case SessionDragging:
		e.drag(p)
	case SessionResizing:
		e.resize(p)
	case SessionPanning:
		zoom := e.viewport.Zoom
		e.viewport.Pan.X += (p.X - e.current.last.X) / zoom
		e.viewport.Pan.Y += (p.Y - e.current.last.Y) / zoom
		e.current.last = p
	}
	return e.viewLocked()
}

func (e *Editor) drag(p models.Point) {
	el, ok := e.doc.Find(e.current.id)
	if !ok {
		e.current = session{kind: SessionNone}
		return
	}
	page := e.doc.Page()
	c := geometry.ToCanvasSpace(p, e.viewport.Zoom, e.viewport.Pan)
	x, y := geometry.ClampDrag(el, c.X-e.current.offset.X, c.Y-e.current.offset.Y, page)
	if e.grid > 0 {
		x = geometry.SnapWithin(x, e.grid, page.Width-el.Width)
		y = geometry.SnapWithin(y, e.grid, page.Height-el.Height)
	}
	e.doc = e.doc.UpdateElement(el.ID, document.Patch{X: &x, Y: &y})
}

func (e *Editor) resize(p models.Point) {
	el, ok := e.doc.Find(e.current.id)
	if !ok {
		e.current = session{kind: SessionNone}
		return
	}
	zoom := e.viewport.Zoom
	dx := (p.X - e.current.last.X) / zoom
	dy := (p.Y - e.current.last.Y) / zoom
	e.current.last = p

	r := geometry.ResizeWithin(el, e.current.dir, dx, dy, models.MinSize, e.doc.Page())
	e.doc = e.doc.UpdateElement(el.ID, document.GeometryPatch(r))
}

// PointerUp завершает текущий жест.
func (e *Editor) PointerUp() SessionKind {
	e.mu.Lock()
	defer e.mu.Unlock()

	ended := e.current.kind
	e.current = session{kind: SessionNone}
	return ended
}

// ============================================================
// Viewport
// ============================================================

// Zoom меняет масштаб вокруг экранной точки anchor.
func (e *Editor) Zoom(zoom float64, anchor models.Point) models.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.viewport = geometry.ZoomAt(e.viewport, zoom, anchor)
	return e.viewport
}

func (e *Editor) ResetView() models.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.viewport = models.DefaultViewport()
	return e.viewport
}

// ============================================================
// Order data & templates
// ============================================================

// SetRecord подставляет запись заказа. Последняя запись побеждает.
func (e *Editor) SetRecord(orderID string, record models.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.orderID = orderID
	e.record = record
}

func (e *Editor) OrderID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderID
}

// Load заменяет документ содержимым шаблона. Битые элементы пропускаются.
func (e *Editor) Load(tpl models.Template) []error {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc, errs := template.Deserialize(tpl, e.doc.Page())
	for _, err := range errs {
		log.Printf("[EDITOR] Template %s: %v", tpl.ID, err)
	}
	e.doc = doc
	e.selected = ""
	e.pending = nil
	e.current = session{kind: SessionNone}
	return errs
}

// Save снимает шаблон с текущего документа.
func (e *Editor) Save(name string) models.Template {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.commitLocked()
	return template.Serialize(e.doc, name)
}
