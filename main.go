package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	fiberprometheus "github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"notes-server/configs"
	"notes-server/controllers"
	"notes-server/middlewares"
	"notes-server/repository"
	"notes-server/routes"
	"notes-server/services"
	"notes-server/utils"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()
	cfg := configs.Load()

	logger, err := configs.NewLogger(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	client, err := configs.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("MongoDB connection failed", zap.Error(err))
	}
	logger.Info("Connected to MongoDB")

	keyStore := utils.NewPublicKeyStore()
	if err := keyStore.LoadKeys(cfg.JWTPublicKeyDir); err != nil {
		logger.Fatal("Failed to load JWT public keys",
			zap.String("dir", cfg.JWTPublicKeyDir), zap.Error(err))
	}
	logger.Info("Loaded JWT public keys", zap.Int("count", keyStore.Len()))
	verifier := utils.NewJWTVerifier(keyStore)

	collection := client.Database(cfg.MongoDBName).Collection("notes")
	noteRepo := repository.NewNoteRepository(collection)
	noteService := services.NewNoteService(noteRepo, logger)
	noteController := controllers.NewNoteController(noteService, logger)

	app := fiber.New(fiber.Config{AppName: cfg.ServiceName})

	p := fiberprometheus.New(cfg.ServiceName)
	p.RegisterAt(app, "/metrics")

	app.Use(recover.New())
	app.Use(p.Middleware)
	app.Use(middlewares.RequestLogger(logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
	}))

	routes.NoteRoutes(app, noteController, verifier)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": cfg.ServiceName,
		})
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Notes API",
			"version": version,
		})
	})

	if cfg.ConsulAddress != "" {
		port, _ := strconv.Atoi(cfg.Port)
		healthURL := "http://" + cfg.ServiceAddress + ":" + cfg.Port + "/health"
		if err := configs.RegisterService(ctx, cfg.ConsulAddress, cfg.ServiceName, cfg.ServiceAddress, port, healthURL); err != nil {
			logger.Warn("Consul service registration failed", zap.Error(err))
		} else {
			logger.Info("Registered with Consul", zap.String("service", cfg.ServiceName))
		}
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Error("MongoDB disconnect failed", zap.Error(err))
	}
}
