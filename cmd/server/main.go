package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"lattice-cms/internal/admin"
	"lattice-cms/internal/config"
	"lattice-cms/internal/engine"
	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, driver: %s)", cfg.Server.Port, cfg.Database.Driver)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Bootstrap system tables
	if err := db.Bootstrap(ctx); err != nil {
		log.Fatalf("Failed to bootstrap system tables: %v", err)
	}
	log.Println("System tables ready")

	// 4. Load templates into the type registry
	types := template.NewRegistry()
	if err := template.LoadAll(ctx, db.DB, types); err != nil {
		log.Printf("WARN: Failed to load templates: %v", err)
	}

	// 5. Compile the current template set and apply it
	compiler := schema.NewCompiler(types)
	sch, err := compiler.Compile()
	if err != nil {
		log.Fatalf("Schema compile failed: %v", err)
	}
	migrator := store.NewMigrator(db)
	if err := migrator.Apply(ctx, sch); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}
	tables := schema.NewTableRegistry(sch)

	// 6. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 7. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 8. Admin routes: template management and compile trigger
	adminHandler := admin.NewHandler(db, types, tables, migrator)
	admin.RegisterAdminRoutes(app, adminHandler)

	// 9. Content routes: hydrated reads
	engineHandler := engine.NewHandler(db, types, tables, cfg.Hydrate.MaxDepth)
	engine.RegisterContentRoutes(app, engineHandler)

	// 10. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
