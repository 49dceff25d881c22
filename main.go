package main

import (
	"context"
	"fmt"
	"log"

	"stashbox/config"
	"stashbox/database"
	"stashbox/handlers"
	"stashbox/logger"
	"stashbox/mailer"
	"stashbox/middleware"
	"stashbox/models"
	"stashbox/repositories"
	"stashbox/services"
	"stashbox/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("starting stashbox service")

	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	database.DB.AutoMigrate(
		&models.User{},
		&models.File{},
	)
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	blobs, err := storage.NewS3Store(context.Background(), &cfg.S3)
	if err != nil {
		log.Fatalf("init object storage failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	mail := mailer.NewDevConsoleMailer(cfg.Auth.DevMailEnabled)
	serviceContainer := services.NewContainer(repoContainer, blobs, mail)
	handlers.SetServices(serviceContainer)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r, serviceContainer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine, svc *services.Container) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/sign-up", handlers.SignUp)
		auth.POST("/sign-in", handlers.SignIn)
		auth.POST("/verify-otp", handlers.VerifyOTP)
		auth.POST("/sign-out", handlers.SignOut)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(svc.User))
	{
		protected.GET("/auth/me", handlers.Me)

		protected.GET("/files", handlers.ListFiles)
		protected.POST("/files/upload", handlers.UploadFile)
		protected.GET("/files/:id/download", handlers.DownloadFile)
		protected.PUT("/files/:id/rename", handlers.RenameFile)
		protected.PUT("/files/:id/share", handlers.ShareFile)
		protected.DELETE("/files/:id", handlers.DeleteFile)

		protected.GET("/usage/quota", handlers.GetQuotaSummary)
		protected.GET("/usage/summary", handlers.GetCategorySummary)
	}
}
