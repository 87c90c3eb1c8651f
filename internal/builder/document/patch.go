package document

import "invoice-builder/internal/builder/models"

// Patch: частичное обновление элемента. nil-поля не меняются.
type Patch struct {
	X           *float64            `json:"x,omitempty"`
	Y           *float64            `json:"y,omitempty"`
	Width       *float64            `json:"width,omitempty"`
	Height      *float64            `json:"height,omitempty"`
	ZIndex      *int                `json:"zIndex,omitempty"`
	Content     *models.Content     `json:"content,omitempty"`
	Style       models.Style        `json:"style,omitempty"`
	DataField   *string             `json:"dataField,omitempty"`
	DisplayName *string             `json:"displayName,omitempty"`
	TableConfig *models.TableConfig `json:"tableConfig,omitempty"`
}

// GeometryPatch собирает patch из рамки.
func GeometryPatch(r models.Rect) Patch {
	return Patch{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height}
}

// Apply возвращает обновлённую копию el.
func (p Patch) Apply(el models.Element) models.Element {
	el = el.Clone()
	if p.X != nil {
		el.X = *p.X
	}
	if p.Y != nil {
		el.Y = *p.Y
	}
	if p.Width != nil {
		el.Width = *p.Width
	}
	if p.Height != nil {
		el.Height = *p.Height
	}
	if p.ZIndex != nil {
		el.ZIndex = *p.ZIndex
	}
	if p.Content != nil {
		el.Content = p.Content.Clone()
	}
	if p.Style != nil {
		el.Style = el.Style.Merge(p.Style)
	}
	if p.DataField != nil {
		el.DataField = *p.DataField
	}
	if p.DisplayName != nil {
		el.DisplayName = *p.DisplayName
	}
	if p.TableConfig != nil {
		el.TableConfig = p.TableConfig
	}
	return el
}
