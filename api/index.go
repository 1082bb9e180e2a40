package handler

import (
	"context"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/elfworks/santa-api-go/pkg/auth"
	"github.com/elfworks/santa-api-go/pkg/database"
	"github.com/elfworks/santa-api-go/pkg/handlers"
	"github.com/elfworks/santa-api-go/pkg/mail"
	"github.com/elfworks/santa-api-go/pkg/storage"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize storage
	db := database.InitDB()
	store := storage.NewGormStore(db)
	_ = auth.EnsureAdminExists(context.Background(), store)

	baseURL := os.Getenv("BASE_URL")
	perMinute, _ := strconv.Atoi(os.Getenv("MAIL_RATE"))
	dispatcher := mail.NewDispatcher(mail.SenderFromEnv(), perMinute, baseURL)

	h := &handlers.Handler{Store: store, Mail: dispatcher, BaseURL: baseURL}

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Static files served from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	// Routes
	r.GET("/", h.Index)
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Secret Santa API (Vercel)",
			"version": "1.2.0",
		})
	})

	r.POST("/groups", h.CreateGroup)
	r.GET("/groups/:code", h.GetGroup)
	r.GET("/groups/:code/participant/:id", h.RevealParticipant)

	organizer := r.Group("/groups/:code")
	organizer.Use(h.OrganizerMiddleware())
	{
		organizer.PUT("", h.UpdateGroup)
		organizer.PUT("/participants", h.ReplaceParticipants)
		organizer.POST("/regenerate", h.RegenerateAssignments)
		organizer.POST("/notify", h.NotifyGroup)
		organizer.DELETE("", h.DeleteGroup)
	}

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.GET("/groups", h.ListGroups)
		admin.DELETE("/groups/:id", h.AdminDeleteGroup)
		admin.GET("/stats", h.GetStats)
	}
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
