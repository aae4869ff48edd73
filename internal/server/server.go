package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/showgoers/showgoers/config"
	"github.com/showgoers/showgoers/internal/handlers"
	"github.com/showgoers/showgoers/internal/middleware"
	"github.com/showgoers/showgoers/internal/notify"
	"github.com/showgoers/showgoers/internal/ws"
)

// Comment posting is the only write a user can spam; one post every three
// seconds per IP matches the pace of an actual conversation.
const (
	commentRateRPS   = 1.0 / 3.0
	commentRateBurst = 1
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()

	notifier := notify.NewMailer()

	r := gin.Default()

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	setupRoutes(r, db, hub, notifier)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %v", err)
	}

	log.Println("Server exiting")
	return nil
}

func setupRoutes(r *gin.Engine, db *gorm.DB, hub *ws.Hub, notifier notify.Notifier) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.NotifierMiddleware(notifier))
	r.Use(middleware.HubMiddleware(hub))

	commentLimiter := middleware.NewIPRateLimiter(rate.Limit(commentRateRPS), commentRateBurst)

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		concertPublic := public.Group("/concerts")
		concertPublic.Use(middleware.OptionalAuthMiddleware())
		{
			concertPublic.GET("", handlers.ListConcerts)
			concertPublic.GET("/:id", handlers.GetConcert)
			concertPublic.GET("/:id/comments", handlers.ListComments)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)

		protected.POST("/concerts/:id/interest", handlers.ToggleInterest)
		protected.POST("/concerts/:id/comments",
			middleware.RateLimitMiddleware(commentLimiter), handlers.CreateComment)
		protected.DELETE("/comments/:id", handlers.DeleteComment)

		admin := protected.Group("")
		admin.Use(middleware.AdminRequired())
		{
			admin.POST("/concerts", handlers.CreateConcert)
			admin.PUT("/concerts/:id", handlers.UpdateConcert)
			admin.DELETE("/concerts/:id", handlers.DeleteConcert)
			admin.GET("/concerts/:id/interests", handlers.ListInterests)
		}
	}

	r.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(hub, c.Writer, c.Request)
	})
}
