package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"invoice-builder/internal/builder/editor"
	"invoice-builder/internal/builder/export"
	"invoice-builder/internal/builder/handlers"
	"invoice-builder/internal/builder/models"
	"invoice-builder/internal/builder/orders"
	"invoice-builder/internal/builder/pdfpage"
	"invoice-builder/internal/builder/repository"
	"invoice-builder/internal/builder/storage"
	"invoice-builder/internal/common/config"
	"invoice-builder/internal/common/middleware"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Invoice Builder Service
// ============================================================

func main() {
	cfg := config.Load()

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	probes := map[string]handlers.Pinger{"templates": repo}

	// ============================================================
	// Order Source
	// ============================================================

	var source orders.Source = orders.NewHTTPSource(cfg.OrderAPIURL, cfg.OrderTimeout)
	if cfg.RedisAddr != "" {
		cache := orders.NewRedisCache(cfg.RedisAddr)
		defer cache.Close()
		source = orders.NewCachedSource(source, cache, cfg.RedisTTL)
		probes["orderCache"] = cache
		log.Printf("[ORDERS] Caching order records in redis %s (ttl %s)", cfg.RedisAddr, cfg.RedisTTL)
	}
	source = orders.NewFallbackSource(source)
	if cfg.OrderAPIURL == "" {
		log.Printf("[ORDERS] ORDER_API_URL not set, serving mock orders")
	}

	// ============================================================
	// Editor & Export
	// ============================================================

	page := models.PageSize{Width: cfg.PageWidth, Height: cfg.PageHeight}
	registry := editor.NewRegistry(editor.Options{Page: page, Grid: cfg.GridSize})

	var exportOpts []export.Option
	if cfg.ExportDPI > 0 {
		exportOpts = append(exportOpts, export.WithDPI(cfg.ExportDPI))
	}
	exporter := export.NewDriver(pdfpage.Factory, exportOpts...)

	fileStorage := storage.NewFileStorage(cfg.ExportDir)
	if err := fileStorage.EnsureDir(); err != nil {
		log.Fatalf("export dir: %v", err)
	}

	builderHandler := handlers.NewBuilderHandler(handlers.Deps{
		Editors:   registry,
		Templates: repo,
		Orders:    source,
		Exporter:  exporter,
		Storage:   fileStorage,
		PDFPage:   models.A4MM,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Invoice Builder",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Routes
	// ============================================================

	handlers.NewHealthHandler(probes).Mount(app)

	api := app.Group("/api/v1")
	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Invoice Builder v1",
			"status":  "ok",
		})
	})
	builderHandler.Mount(api)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Invoice Builder on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Canvas %gx%g, export scale %g mm/px", page.Width, page.Height, exporter.Scale())

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
