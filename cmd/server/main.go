package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/elfworks/santa-api-go/pkg/auth"
	"github.com/elfworks/santa-api-go/pkg/database"
	"github.com/elfworks/santa-api-go/pkg/handlers"
	"github.com/elfworks/santa-api-go/pkg/logging"
	"github.com/elfworks/santa-api-go/pkg/mail"
	"github.com/elfworks/santa-api-go/pkg/storage"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	logging.Setup()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	store := openStore()
	defer store.Close()

	if err := auth.EnsureAdminExists(context.Background(), store); err != nil {
		slog.Error("could not ensure admin account", "error", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	perMinute, _ := strconv.Atoi(os.Getenv("MAIL_RATE"))
	dispatcher := mail.NewDispatcher(mail.SenderFromEnv(), perMinute, baseURL)

	h := &handlers.Handler{Store: store, Mail: dispatcher, BaseURL: baseURL}

	r := gin.Default()

	// Web interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	// Routes
	r.GET("/", h.Index)
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Secret Santa API",
			"version": "1.2.0",
		})
	})

	r.POST("/groups", h.CreateGroup)
	r.GET("/groups/:code", h.GetGroup)
	r.GET("/groups/:code/participant/:id", h.RevealParticipant)

	// Organizer Endpoints
	organizer := r.Group("/groups/:code")
	organizer.Use(h.OrganizerMiddleware())
	{
		organizer.PUT("", h.UpdateGroup)
		organizer.PUT("/participants", h.ReplaceParticipants)
		organizer.POST("/regenerate", h.RegenerateAssignments)
		organizer.POST("/notify", h.NotifyGroup)
		organizer.DELETE("", h.DeleteGroup)
	}

	// Admin Endpoints
	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.GET("/groups", h.ListGroups)
		admin.DELETE("/groups/:id", h.AdminDeleteGroup)
		admin.GET("/stats", h.GetStats)
	}

	slog.Info("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("could not run server", "error", err)
		os.Exit(1)
	}
}

// openStore selects the persistence backend: flat files when
// STORE_BACKEND=file, otherwise gorm over SQLite/Postgres.
func openStore() storage.Store {
	if os.Getenv("STORE_BACKEND") == "file" {
		dir := os.Getenv("FILE_STORE_PATH")
		if dir == "" {
			dir = "data"
		}
		store, err := storage.NewFileStore(dir)
		if err != nil {
			slog.Error("could not open file store", "dir", dir, "error", err)
			os.Exit(1)
		}
		slog.Info("using file store", "dir", dir)
		return store
	}

	db := database.InitDB()
	slog.Info("using relational store")
	return storage.NewGormStore(db)
}
