package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/editor"
	"invoice-builder/internal/builder/export"
	"invoice-builder/internal/builder/geometry"
	"invoice-builder/internal/builder/models"
	"invoice-builder/internal/builder/orders"
	"invoice-builder/internal/builder/render"
	"invoice-builder/internal/builder/storage"

	"github.com/gofiber/fiber/v3"
)

// TemplateStore хранит сохранённые шаблоны.
type TemplateStore interface {
	Save(ctx context.Context, tpl models.Template) (models.Template, error)
	List(ctx context.Context) ([]models.Template, error)
	Get(ctx context.Context, id string) (models.Template, error)
}

const requestTimeout = 15 * time.Second

// ============================================================
// Builder Handler
// ============================================================

type BuilderHandler struct {
	editors   *editor.Registry
	templates TemplateStore
	orders    orders.Source
	exporter  *export.Driver
	storage   *storage.FileStorage
	pdfPage   models.PageSize
}

type Deps struct {
	Editors   *editor.Registry
	Templates TemplateStore
	Orders    orders.Source
	Exporter  *export.Driver
	Storage   *storage.FileStorage
	PDFPage   models.PageSize
}

func NewBuilderHandler(d Deps) *BuilderHandler {
	if d.PDFPage.Width <= 0 || d.PDFPage.Height <= 0 {
		d.PDFPage = models.A4MM
	}
	return &BuilderHandler{
		editors:   d.Editors,
		templates: d.Templates,
		orders:    d.Orders,
		exporter:  d.Exporter,
		storage:   d.Storage,
		pdfPage:   d.PDFPage,
	}
}

// Mount регистрирует маршруты редактора.
func (h *BuilderHandler) Mount(r fiber.Router) {
	r.Post("/documents", h.OpenDocument)
	r.Get("/documents/:id", h.GetDocument)
	r.Delete("/documents/:id", h.CloseDocument)

	r.Post("/documents/:id/elements", h.AddElement)
	r.Patch("/documents/:id/elements/:eid", h.UpdateElement)
	r.Delete("/documents/:id/elements/:eid", h.RemoveElement)
	r.Post("/documents/:id/elements/:eid/front", h.BringToFront)
	r.Post("/documents/:id/elements/:eid/back", h.SendToBack)
	r.Post("/documents/:id/elements/:eid/duplicate", h.Duplicate)
	r.Post("/documents/:id/elements/:eid/rebind", h.Rebind)

	r.Post("/documents/:id/select", h.Select)
	r.Post("/documents/:id/pointer/down", h.PointerDown)
	r.Post("/documents/:id/pointer/move", h.PointerMove)
	r.Post("/documents/:id/pointer/up", h.PointerUp)
	r.Post("/documents/:id/zoom", h.Zoom)
	r.Put("/documents/:id/edit", h.SetEditText)
	r.Post("/documents/:id/edit/commit", h.CommitEdit)

	r.Post("/documents/:id/order", h.LoadOrder)
	r.Get("/documents/:id/render", h.Render)
	r.Get("/documents/:id/preview.svg", h.PreviewSVG)
	r.Get("/documents/:id/export.pdf", h.ExportPDF)

	r.Post("/documents/:id/templates", h.SaveTemplate)
	r.Post("/documents/:id/load", h.LoadTemplate)
	r.Get("/templates", h.ListTemplates)
	r.Get("/templates/:tid", h.GetTemplate)
	r.Get("/fields", h.Fields)
}

// ============================================================
// Documents
// ============================================================

type openRequest struct {
	TemplateID string `json:"templateId"`
}

type openResponse struct {
	ID       string      `json:"id"`
	Document editor.View `json:"document"`
	Warnings []string    `json:"warnings,omitempty"`
}

// OpenDocument создаёт сессию редактирования, при необходимости из шаблона.
func (h *BuilderHandler) OpenDocument(c fiber.Ctx) error {
	var req openRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	var tpl *models.Template
	if req.TemplateID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		found, err := h.templates.Get(ctx, req.TemplateID)
		if err != nil {
			return fail(c, err)
		}
		tpl = &found
	}

	token, ed := h.editors.Open()
	var warnings []string
	if tpl != nil {
		warnings = messages(ed.Load(*tpl))
	}
	log.Printf("[EDITOR] Opened document %s (template %q)", token, req.TemplateID)

	return c.Status(http.StatusCreated).JSON(openResponse{
		ID:       token,
		Document: ed.View(),
		Warnings: warnings,
	})
}

func (h *BuilderHandler) GetDocument(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ed.View())
}

func (h *BuilderHandler) CloseDocument(c fiber.Ctx) error {
	if !h.editors.Close(c.Params("id")) {
		return fail(c, errDocumentNotFound)
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Elements
// ============================================================

type addRequest struct {
	Type        models.ElementType `json:"type"`
	X           float64            `json:"x"`
	Y           float64            `json:"y"`
	DataField   string             `json:"dataField"`
	DisplayName string             `json:"displayName"`
}

func (h *BuilderHandler) AddElement(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req addRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	pos := models.Point{X: req.X, Y: req.Y}
	var el models.Element
	if req.Type == models.TypeDataField && req.DataField != "" {
		el = ed.AddDataField(req.DataField, req.DisplayName, pos)
	} else {
		el, err = ed.AddElement(req.Type, pos)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.Status(http.StatusCreated).JSON(el)
}

func (h *BuilderHandler) UpdateElement(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var patch document.Patch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	el, err := ed.Update(c.Params("eid"), patch)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(el)
}

func (h *BuilderHandler) RemoveElement(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}
	if err := ed.Remove(c.Params("eid")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *BuilderHandler) BringToFront(c fiber.Ctx) error {
	return h.elementOp(c, (*editor.Editor).BringToFront)
}

func (h *BuilderHandler) SendToBack(c fiber.Ctx) error {
	return h.elementOp(c, (*editor.Editor).SendToBack)
}

func (h *BuilderHandler) Duplicate(c fiber.Ctx) error {
	return h.elementOp(c, (*editor.Editor).Duplicate)
}

func (h *BuilderHandler) elementOp(c fiber.Ctx, op func(*editor.Editor, string) (models.Element, error)) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}
	el, err := op(ed, c.Params("eid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(el)
}

type rebindRequest struct {
	DataField string `json:"dataField"`
}

func (h *BuilderHandler) Rebind(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req rebindRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.DataField == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "dataField required"})
	}
	el, err := ed.Rebind(c.Params("eid"), req.DataField)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(el)
}

// ============================================================
// Interaction
// ============================================================

type selectRequest struct {
	ElementID string `json:"elementId"`
}

func (h *BuilderHandler) Select(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req selectRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}
	if err := ed.Select(req.ElementID); err != nil {
		return fail(c, err)
	}
	return c.JSON(ed.View())
}

type pointerRequest struct {
	X         float64            `json:"x"`
	Y         float64            `json:"y"`
	ElementID string             `json:"elementId"`
	Handle    geometry.Direction `json:"handle"`
}

func (h *BuilderHandler) PointerDown(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req pointerRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	target := editor.Target{ID: req.ElementID, Handle: req.Handle}
	if err := ed.PointerDown(models.Point{X: req.X, Y: req.Y}, target); err != nil {
		return fail(c, err)
	}
	return c.JSON(ed.View())
}

func (h *BuilderHandler) PointerMove(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req pointerRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return c.JSON(ed.PointerMove(models.Point{X: req.X, Y: req.Y}))
}

func (h *BuilderHandler) PointerUp(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}
	ended := ed.PointerUp()
	return c.JSON(fiber.Map{"ended": ended, "document": ed.View()})
}

type zoomRequest struct {
	Zoom  float64 `json:"zoomLevel"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Reset bool    `json:"reset"`
}

func (h *BuilderHandler) Zoom(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req zoomRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Reset {
		return c.JSON(ed.ResetView())
	}
	if req.Zoom <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "zoomLevel must be positive"})
	}
	return c.JSON(ed.Zoom(req.Zoom, models.Point{X: req.X, Y: req.Y}))
}

type editRequest struct {
	Text string `json:"text"`
}

func (h *BuilderHandler) SetEditText(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req editRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if err := ed.SetEditText(req.Text); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(http.StatusAccepted)
}

func (h *BuilderHandler) CommitEdit(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}
	ed.Commit()
	return c.JSON(ed.View())
}

// ============================================================
// Order data
// ============================================================

type orderRequest struct {
	OrderID string `json:"orderId"`
}

// LoadOrder подтягивает запись заказа в документ.
func (h *BuilderHandler) LoadOrder(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req orderRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.OrderID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "orderId required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	record, err := h.orders.FetchByID(ctx, req.OrderID)
	if err != nil {
		log.Printf("[ORDERS] Fetch %s failed: %v", req.OrderID, err)
		return fail(c, err)
	}

	ed.SetRecord(req.OrderID, record)
	return c.JSON(fiber.Map{"orderId": req.OrderID, "orderData": record})
}

// ============================================================
// Rendering & export
// ============================================================

type renderResponse struct {
	Nodes    []render.Node   `json:"nodes"`
	Viewport models.Viewport `json:"viewport"`
	Page     models.PageSize `json:"page"`
}

func (h *BuilderHandler) Render(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	doc, selected, record := ed.Snapshot()
	return c.JSON(renderResponse{
		Nodes:    render.Screen(doc, record, selected),
		Viewport: ed.Viewport(),
		Page:     doc.Page(),
	})
}

func (h *BuilderHandler) PreviewSVG(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	doc, selected, record := ed.Snapshot()
	svg, err := render.NewRenderer(doc.Page(), ed.Viewport()).Render(render.Screen(doc, record, selected))
	if err != nil {
		log.Printf("[RENDER] Preview failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "render failed"})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// ExportPDF выводит документ в PDF, сохраняет копию в каталог экспорта и отдаёт файл.
func (h *BuilderHandler) ExportPDF(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	doc, _, record := ed.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	data, err := h.exporter.Export(ctx, doc, record, h.pdfPage)
	if err != nil {
		return fail(c, err)
	}

	orderID := ed.OrderID()
	if h.storage != nil {
		path, err := h.storage.SavePDF(orderID, data)
		if err != nil {
			log.Printf("[EXPORT] Failed to store pdf: %v", err)
		} else {
			log.Printf("[EXPORT] Stored %s (%d bytes)", path, len(data))
		}
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, storage.FileName(orderID)))
	return c.Send(data)
}

// ============================================================
// Templates & catalog
// ============================================================

type saveTemplateRequest struct {
	Name string `json:"name"`
}

func (h *BuilderHandler) SaveTemplate(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req saveTemplateRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	saved, err := h.templates.Save(ctx, ed.Save(req.Name))
	if err != nil {
		log.Printf("[TEMPLATES] Save failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save template"})
	}
	return c.Status(http.StatusCreated).JSON(saved)
}

type loadTemplateRequest struct {
	TemplateID string `json:"templateId"`
}

func (h *BuilderHandler) LoadTemplate(c fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return fail(c, err)
	}

	var req loadTemplateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil || req.TemplateID == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "templateId required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	tpl, err := h.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return fail(c, err)
	}

	warnings := messages(ed.Load(tpl))
	return c.JSON(fiber.Map{"document": ed.View(), "warnings": warnings})
}

func (h *BuilderHandler) ListTemplates(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	list, err := h.templates.List(ctx)
	if err != nil {
		log.Printf("[TEMPLATES] List failed: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list templates"})
	}
	return c.JSON(list)
}

func (h *BuilderHandler) GetTemplate(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	tpl, err := h.templates.Get(ctx, c.Params("tid"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tpl)
}

// Fields отдаёт каталог полей; ?document= отмечает поля, присутствующие в записи документа.
func (h *BuilderHandler) Fields(c fiber.Ctx) error {
	var record models.Record
	if token := c.Query("document"); token != "" {
		ed, ok := h.editors.Resolve(token)
		if !ok {
			return fail(c, errDocumentNotFound)
		}
		_, _, record = ed.Snapshot()
	}
	return c.JSON(orders.Fields(record, c.Query("search")))
}

// ============================================================
// Helpers
// ============================================================

var errDocumentNotFound = errors.New("document not found")

func (h *BuilderHandler) editor(c fiber.Ctx) (*editor.Editor, error) {
	ed, ok := h.editors.Resolve(c.Params("id"))
	if !ok {
		return nil, errDocumentNotFound
	}
	return ed, nil
}

// fail переводит ошибку домена в HTTP-ответ.
func fail(c fiber.Ctx, err error) error {
	var exportErr *export.ExportError
	switch {
	case errors.Is(err, errDocumentNotFound),
		errors.Is(err, models.ErrElementNotFound),
		errors.Is(err, models.ErrTemplateNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, editor.ErrSessionActive),
		errors.Is(err, editor.ErrNoSelection):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrSourceUnavailable):
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "order source unavailable"})
	case errors.As(err, &exportErr):
		log.Printf("[EXPORT] %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "export failed", "elementId": exportErr.ElementID})
	}
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
