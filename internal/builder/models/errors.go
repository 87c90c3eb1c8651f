package models

import (
	"errors"
	"fmt"
)

// ============================================================
// Errors
// ============================================================

var (
	ErrElementNotFound   = errors.New("element not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrSourceUnavailable = errors.New("order source unavailable")
)

// MalformedElementError описывает элемент, который нельзя отрисовать или загрузить.
type MalformedElementError struct {
	Index  int
	ID     string
	Reason string
}

func (e *MalformedElementError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("malformed element %d (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("malformed element %d: %s", e.Index, e.Reason)
}
