package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/hqasem/studycircle/docs"
	"github.com/hqasem/studycircle/internal/config"
	"github.com/hqasem/studycircle/internal/course"
	"github.com/hqasem/studycircle/internal/database"
	"github.com/hqasem/studycircle/internal/group"
	"github.com/hqasem/studycircle/internal/invite"
	"github.com/hqasem/studycircle/internal/notification"
	"github.com/hqasem/studycircle/internal/user"
	mw "github.com/hqasem/studycircle/pkg/middleware"
)

// @title        StudyCircle API
// @version      1.0
// @description  Course companion backend: study groups, membership and invites
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	// User feature (doubles as the User Directory)
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Course feature
	courseRepo := course.NewRepository(db)
	courseService := course.NewService(courseRepo)
	courseHandler := course.NewHandler(courseService)

	// Notification feature (doubles as the Notifier collaborator)
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// Group feature: membership store, permission policy and join workflows
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, userService, notificationService, logger)
	groupHandler := group.NewHandler(groupService)

	// Invite registry
	inviteRepo := invite.NewRepository(db)
	inviteService := invite.NewService(inviteRepo, groupRepo, logger)
	inviteHandler := invite.NewHandler(inviteService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RequireUser)

		r.Mount("/users", userHandler.Routes())
		r.Mount("/courses", courseHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/invites", inviteHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
