package models

import (
	"strconv"
	"strings"
)

// ============================================================
// Style
// ============================================================

// Style: открытый набор визуальных свойств элемента.
// Значения приходят из JSON как строки ("18px") или числа.
type Style map[string]any

const (
	StyleFontSize        = "fontSize"
	StyleFontWeight      = "fontWeight"
	StyleFontStyle       = "fontStyle"
	StyleTextAlign       = "textAlign"
	StyleColor           = "color"
	StyleBackgroundColor = "backgroundColor"
	StylePadding         = "padding"
	StyleBorderWidth     = "borderWidth"
	StyleBorderColor     = "borderColor"
	StyleBorderStyle     = "borderStyle"
	StyleBorderRadius    = "borderRadius"
)

func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge возвращает новый стиль; nil в patch удаляет ключ.
func (s Style) Merge(patch Style) Style {
	out := s.Clone()
	if out == nil {
		out = Style{}
	}
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func (s Style) String(key, def string) string {
	raw, ok := s[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return def
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return def
}

// Number разбирает числовое свойство: 18, "18", "18px".
func (s Style) Number(key string, def float64) float64 {
	raw, ok := s[key]
	if !ok || raw == nil {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "px"))
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func (s Style) Bold() bool {
	w := s.String(StyleFontWeight, "normal")
	return w == "bold" || w == "bolder" || w == "700" || w == "800" || w == "900"
}

func (s Style) Italic() bool {
	return s.String(StyleFontStyle, "normal") == "italic"
}

// Align нормализует textAlign к left, center или right.
func (s Style) Align() string {
	switch s.String(StyleTextAlign, "left") {
	case "center":
		return "center"
	case "right":
		return "right"
	}
	return "left"
}

// ============================================================
// Colors
// ============================================================

type RGB struct {
	R, G, B uint8
}

var (
	Black     = RGB{0, 0, 0}
	LightGrey = RGB{200, 200, 200}
)

// ParseHexColor разбирает #rgb и #rrggbb.
func ParseHexColor(s string) (RGB, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return RGB{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

func (c RGB) Hex() string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}

// Color возвращает цвет свойства или def, если значение не разбирается.
func (s Style) Color(key string, def RGB) RGB {
	if c, ok := ParseHexColor(s.String(key, "")); ok {
		return c
	}
	return def
}
