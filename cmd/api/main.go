package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"stockly-api/internal/handler"
	"stockly-api/internal/middleware"
	"stockly-api/internal/model"
	"stockly-api/internal/repository"
	"stockly-api/internal/service"
	"stockly-api/internal/ws"
	"stockly-api/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	db.AutoMigrate(&model.User{}, &model.Product{})

	// 3. Setup WebSocket Hub for low-stock alerts
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)

	authService := service.NewAuthService(userRepo)
	invService := service.NewInventoryService(productRepo, wsHub)
	insightsService := service.NewInsightsService(productRepo)

	authHandler := handler.NewAuthHandler(authService)
	invHandler := handler.NewInventoryHandler(invService)
	insightsHandler := handler.NewInsightsHandler(insightsService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Stockly API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(middleware.CORS(middleware.AllowedOrigins()))

	// 6. Routes

	// ============ PUBLIC ROUTES ============
	auth := app.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/session", authHandler.Session)

	// WebSocket Route (alert stream, registered before the auth guard)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// ============ PROTECTED ROUTES ============
	protected := app.Group("", middleware.RequireAuth(userRepo))

	protected.Get("/products", invHandler.GetProducts)
	protected.Post("/products", invHandler.CreateProduct)
	protected.Put("/products/:id", invHandler.UpdateProduct)
	protected.Delete("/products/:id", invHandler.DeleteProduct)

	protected.Get("/insights", insightsHandler.GetInsights)

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
	wsHub.Stop()

	log.Println("Server exited")
}
