package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"invoice-builder/internal/builder/models"
	"invoice-builder/internal/builder/template"
)

//go:embed migrations/001_init_templates.sql
var initMigration string

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init применяет миграцию и кладёт стандартный шаблон, если его ещё нет.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, initMigration); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return r.ensureDefaultTemplate(ctx)
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save сохраняет шаблон; пустой id заменяется новым.
func (r *Repository) Save(ctx context.Context, tpl models.Template) (models.Template, error) {
	if tpl.ID == "" {
		tpl.ID = template.NewID()
	}
	if tpl.Type == "" {
		tpl.Type = models.TemplateTypeInvoice
	}

	body, err := template.Encode(tpl)
	if err != nil {
		return models.Template{}, err
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO templates (id, name, type, body)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            type = excluded.type,
            body = excluded.body,
            updated_at = CURRENT_TIMESTAMP
    `, tpl.ID, tpl.Name, tpl.Type, string(body))
	if err != nil {
		return models.Template{}, fmt.Errorf("save template %s: %w", tpl.ID, err)
	}
	return tpl, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.Template, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT body
        FROM templates
        WHERE id = ?
    `, id)

	var body string
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, fmt.Errorf("template %s: %w", id, models.ErrTemplateNotFound)
		}
		return models.Template{}, err
	}
	return decode(id, body)
}

// List возвращает шаблоны в порядке создания.
func (r *Repository) List(ctx context.Context) ([]models.Template, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, body
        FROM templates
        ORDER BY created_at, rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := []models.Template{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		tpl, err := decode(id, body)
		if err != nil {
			log.Printf("[TEMPLATES] Skipping unreadable template %s: %v", id, err)
			continue
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, models.ErrTemplateNotFound)
	}
	return nil
}

func decode(id, body string) (models.Template, error) {
	tpl, errs, err := template.Decode([]byte(body))
	if err != nil {
		return models.Template{}, err
	}
	for _, e := range errs {
		log.Printf("[TEMPLATES] Template %s: %v", id, e)
	}
	tpl.ID = id
	return tpl, nil
}

// ============================================================
// Seeding
// ============================================================

func (r *Repository) ensureDefaultTemplate(ctx context.Context) error {
	_, err := r.Get(ctx, DefaultTemplate.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrTemplateNotFound) {
		return err
	}

	if _, err := r.Save(ctx, DefaultTemplate); err != nil {
		return fmt.Errorf("seed template: %w", err)
	}
	log.Printf("[TEMPLATES] Seeded %q", DefaultTemplate.Name)
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
