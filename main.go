package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"pelpmr_backend/internals/configs"
	database "pelpmr_backend/internals/databases"
	paymentService "pelpmr_backend/internals/features/payments/service"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
	middlewares "pelpmr_backend/internals/middlewares"
	routes "pelpmr_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.ErrorHandler,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             20 * 1024 * 1024, // Excel + foto tertanam bisa besar
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrasi + seed inventori kavling
	database.ConnectDB()
	database.TunePool()
	database.Migrate()
	if err := database.SeedKavling(database.DB); err != nil {
		log.Fatalf("❌ Gagal seed kavling: %v", err)
	}

	// ✅ MIDTRANS
	paymentService.InitMidtrans(configs.MidtransServerKey,
		configs.GetEnv("MIDTRANS_ENV") == "production")

	// 📦 penyimpanan file upload (staging + permanen)
	fileStorage := storage.NewLocalStorage(configs.UploadsDir)
	app.Static("/uploads", configs.UploadsDir)

	// 🧹 reaper sesi staging yang ditinggalkan
	reaperStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed, err := fileStorage.ReapStaleSessions(24 * time.Hour); err != nil {
					log.Printf("[WARN] reap sesi staging gagal: %v", err)
				} else if removed > 0 {
					log.Printf("🧹 %d sesi staging kedaluwarsa dibersihkan", removed)
				}
			case <-reaperStop:
				return
			}
		}
	}()

	// ❤️ Health check (anti-cold start)
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// ✅ Routes
	routes.SetupRoutes(app, database.DB, fileStorage)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 30 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(reaperStop)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
