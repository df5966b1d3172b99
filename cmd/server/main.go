package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/freightlens/backend/internal/application/services"
	"github.com/freightlens/backend/internal/infrastructure/database"
	"github.com/freightlens/backend/internal/infrastructure/insight"
	"github.com/freightlens/backend/internal/infrastructure/persistence"
	"github.com/freightlens/backend/internal/interfaces/middleware"
	"github.com/freightlens/backend/internal/interfaces/rest"
)

func main() {
	// Load environment from .env when present
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			log.Printf("📋 Loaded environment from %s", p)
			break
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	if err := persistence.InitializeSchema(db.DB()); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	client := insight.NewHTTPClient()
	svcMgr := services.NewServiceManager(db, client)
	log.Println("🔧 Service manager initialized")

	if err := svcMgr.Scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	authHandler := rest.NewAuthHandler(svcMgr)
	widgetHandler := rest.NewWidgetHandler(svcMgr)
	dashboardHandler := rest.NewDashboardHandler(svcMgr)
	investigatorHandler := rest.NewInvestigatorHandler(svcMgr)
	knowledgeHandler := rest.NewKnowledgeHandler(svcMgr)

	requireAuth := middleware.RequireAuth(svcMgr.Auth)
	requireAdmin := middleware.RequireAdmin()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", requireAuth, authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetMe)
			auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
		}

		users := api.Group("/users")
		users.Use(requireAuth, requireAdmin)
		{
			users.GET("", authHandler.ListUsers)
			users.POST("", authHandler.CreateUser)
			users.PUT("/:id", authHandler.UpdateUser)
			users.DELETE("/:id", authHandler.DeleteUser)
		}

		widgets := api.Group("/widgets")
		widgets.Use(requireAuth)
		{
			widgets.GET("/catalog", widgetHandler.Catalog)
			widgets.POST("/suggest", widgetHandler.Suggest)
			widgets.POST("/execute", widgetHandler.Execute)
			widgets.GET("", widgetHandler.List)
			widgets.POST("", widgetHandler.Publish)
			widgets.GET("/:id", widgetHandler.Get)
			widgets.PUT("/:id", widgetHandler.Update)
			widgets.DELETE("/:id", widgetHandler.Delete)
		}

		dashboards := api.Group("/dashboards")
		dashboards.Use(requireAuth)
		{
			dashboards.GET("", dashboardHandler.List)
			dashboards.POST("", dashboardHandler.Create)
			dashboards.GET("/:id", dashboardHandler.Get)
			dashboards.PUT("/:id", dashboardHandler.Update)
			dashboards.DELETE("/:id", dashboardHandler.Delete)
			dashboards.POST("/:id/widgets", dashboardHandler.AttachWidget)
			dashboards.DELETE("/:id/widgets/:widgetId", dashboardHandler.DetachWidget)
		}

		investigator := api.Group("/investigator")
		investigator.Use(requireAuth)
		{
			investigator.POST("/ask", investigatorHandler.Ask)
			investigator.GET("/conversations", investigatorHandler.ListConversations)
			investigator.GET("/conversations/:id", investigatorHandler.GetConversation)
			investigator.POST("/conversations/:id/clear", investigatorHandler.ClearConversation)
			investigator.DELETE("/conversations/:id", investigatorHandler.DeleteConversation)
		}

		knowledge := api.Group("/knowledge")
		knowledge.Use(requireAuth)
		{
			knowledge.GET("/terms", knowledgeHandler.ListTerms)
			knowledge.POST("/terms", requireAdmin, knowledgeHandler.CreateTerm)
			knowledge.PUT("/terms/:id", requireAdmin, knowledgeHandler.UpdateTerm)
			knowledge.DELETE("/terms/:id", requireAdmin, knowledgeHandler.DeleteTerm)

			knowledge.GET("/documents", knowledgeHandler.ListDocuments)
			knowledge.GET("/documents/:id", knowledgeHandler.GetDocument)
			knowledge.POST("/documents", requireAdmin, knowledgeHandler.UploadDocument)
			knowledge.DELETE("/documents/:id", requireAdmin, knowledgeHandler.DeleteDocument)
		}
	}

	log.Printf("\n📍 Server:           http://localhost:%s", port)
	log.Printf("🔐 Auth API:         http://localhost:%s/api/auth", port)
	log.Printf("📊 Widget API:       http://localhost:%s/api/widgets", port)
	log.Printf("🔎 Investigator API: http://localhost:%s/api/investigator", port)
	log.Printf("📚 Knowledge API:    http://localhost:%s/api/knowledge", port)
	log.Printf("💚 Health check:     http://localhost:%s/health\n", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.Scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
