package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ============================================================
// Export Storage
// ============================================================

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileStorage складывает готовые PDF в каталог экспорта.
type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

// FileName: имя файла для заказа: invoice_<orderId>.pdf.
func FileName(orderID string) string {
	id := unsafeChars.ReplaceAllString(orderID, "_")
	if id == "" || id == "." || id == ".." {
		id = "draft"
	}
	return fmt.Sprintf("invoice_%s.pdf", id)
}

func (s *FileStorage) PDFPath(orderID string) string {
	return filepath.Join(s.root, FileName(orderID))
}

func (s *FileStorage) EnsureDir() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("mkdir export dir: %w", err)
	}
	return nil
}

// SavePDF записывает PDF атомарно и возвращает путь к файлу.
func (s *FileStorage) SavePDF(orderID string, data []byte) (string, error) {
	if err := s.EnsureDir(); err != nil {
		return "", err
	}
	target := s.PDFPath(orderID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("store pdf: %w", err)
	}
	return target, nil
}
