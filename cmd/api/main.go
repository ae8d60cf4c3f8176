package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"vidstream/internal/config"
	"vidstream/internal/database"
	"vidstream/internal/middleware"
	"vidstream/internal/modules/auth"
	"vidstream/internal/modules/upload"
	jwtsvc "vidstream/internal/pkg/jwt"
	"vidstream/internal/repository"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&upload.Upload{}); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	codec := jwtsvc.NewCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTTL, cfg.RefreshTTL)

	storage, err := buildStorage(cfg)
	if err != nil {
		log.Fatal(err)
	}
	uploadSvc := upload.NewService(upload.NewRepository(db), storage)

	authService := auth.NewService(userRepo, codec)
	authHandler := auth.NewHandler(authService, uploadSvc, cfg)
	uploadHandler := upload.NewHandler(uploadSvc)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	if cfg.UploadBackend == "local" {
		r.Static(cfg.StaticBase, cfg.UploadDir)
	}

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(codec))
		{
			authHandler.RegisterProtectedRoutes(protected)
			uploadHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

func buildStorage(cfg *config.Config) (upload.Storage, error) {
	if cfg.UploadBackend == "s3" {
		return upload.NewS3Storage(context.Background(), upload.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return upload.NewLocalStorage(cfg.UploadDir, cfg.StaticBase), nil
}
