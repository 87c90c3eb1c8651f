package editor

import (
	"sync"

	"github.com/google/uuid"
)

// ============================================================
// Registry
// ============================================================

// Registry хранит открытые редакторы по токену документа.
type Registry struct {
	mu      sync.Mutex
	editors map[string]*Editor
	opts    Options
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		editors: make(map[string]*Editor),
		opts:    opts,
	}
}

// Open создаёт пустой редактор и возвращает его токен.
func (r *Registry) Open() (string, *Editor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := uuid.NewString()
	ed := New(r.opts)
	r.editors[token] = ed
	return token, ed
}

func (r *Registry) Resolve(token string) (*Editor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ed, ok := r.editors[token]
	return ed, ok
}

func (r *Registry) Close(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.editors[token]; !ok {
		return false
	}
	delete(r.editors, token)
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}
