package template

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"invoice-builder/internal/builder/document"
	"invoice-builder/internal/builder/models"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ============================================================
// Serialization
// ============================================================

const idPrefix = "template-"

// NewID выдаёт идентификатор шаблона. ULID монотонен внутри процесса,
// поэтому быстрые повторные сохранения не дают одинаковых id.
func NewID() string {
	return idPrefix + strings.ToLower(ulid.Make().String())
}

// Serialize снимает шаблон с документа; элементы копируются как есть.
func Serialize(doc document.Document, name string) models.Template {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled Template"
	}
	return models.Template{
		ID:       NewID(),
		Name:     name,
		Type:     models.TemplateTypeInvoice,
		Elements: doc.Elements(),
	}
}

// Deserialize строит документ из шаблона. Битые элементы отбрасываются
// и возвращаются списком ошибок; повторяющиеся id перевыпускаются.
func Deserialize(tpl models.Template, page models.PageSize) (document.Document, []error) {
	var errs []error
	seen := make(map[string]bool, len(tpl.Elements))
	kept := make([]models.Element, 0, len(tpl.Elements))

	for i, el := range tpl.Elements {
		if err := el.Validate(); err != nil {
			errs = append(errs, &models.MalformedElementError{Index: i, ID: el.ID, Reason: err.Error()})
			continue
		}
		if seen[el.ID] {
			old := el.ID
			el.ID = uuid.NewString()
			log.Printf("[TEMPLATES] Duplicate element id %s reissued as %s", old, el.ID)
		}
		seen[el.ID] = true
		kept = append(kept, el)
	}

	return document.New(page, kept...), errs
}

// ============================================================
// Wire format
// ============================================================

type envelope struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Elements []json.RawMessage `json:"elements"`
}

// Decode разбирает JSON шаблона поэлементно: ошибка одного элемента
// попадает в список и не мешает остальным. Ошибка возвращается только
// для нечитаемого конверта.
func Decode(data []byte) (models.Template, []error, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return models.Template{}, nil, fmt.Errorf("decode template: %w", err)
	}

	tpl := models.Template{ID: env.ID, Name: env.Name, Type: env.Type}
	if tpl.Type == "" {
		tpl.Type = models.TemplateTypeInvoice
	}

	var errs []error
	tpl.Elements = make([]models.Element, 0, len(env.Elements))
	for i, raw := range env.Elements {
		var el models.Element
		if err := json.Unmarshal(raw, &el); err != nil {
			errs = append(errs, &models.MalformedElementError{Index: i, Reason: err.Error()})
			continue
		}
		tpl.Elements = append(tpl.Elements, el)
	}
	return tpl, errs, nil
}

func Encode(tpl models.Template) ([]byte, error) {
	if tpl.Elements == nil {
		tpl.Elements = []models.Element{}
	}
	data, err := json.Marshal(tpl)
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return data, nil
}
