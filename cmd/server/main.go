package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"user-management/internal/api"
	"user-management/internal/config"
	"user-management/internal/repo"
	"user-management/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s/%s)", cfg.Server.Port, cfg.Database.Driver, cfg.Database.Name)

	// 2. Ensure database and tables, connect. Serving without a ready
	// schema is not an option.
	schema := store.NewSchemaManager(cfg.Database)
	db, err := schema.Setup(ctx)
	if err != nil {
		log.Fatalf("Failed to set up database (state: %s): %v", schema.State(), err)
	}
	defer db.Close()

	// 3. Repositories and handlers
	usersHandler := api.NewUsersHandler(repo.NewUsers(db))
	groupsHandler := api.NewGroupsHandler(repo.NewGroups(db))
	membershipsHandler := api.NewMembershipsHandler(repo.NewMemberships(db))

	// 4. Fiber app with terminal error handler
	app := fiber.New(fiber.Config{
		ErrorHandler: api.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
	}))
	app.Use(compress.New())

	// 5. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 6. Entity routes
	api.RegisterRoutes(app, usersHandler, groupsHandler, membershipsHandler)

	// 7. Serve until interrupted, then drain
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("Shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
