package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"accounts/internal/config"
	"accounts/internal/database"
	"accounts/internal/middleware"
	"accounts/internal/modules/account"
	jwtsvc "accounts/internal/pkg/jwt"
	"accounts/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	signer := jwtsvc.New(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	tokens := account.NewTokenService(signer, tokenRepo)
	authn := account.NewAuthenticator(tokens)

	service := account.NewService(userRepo, tokens)
	handler := account.NewHandler(service, authn)

	r := gin.New()
	r.Use(middleware.CORS(), middleware.ErrorLogger(), gin.Recovery())

	v1 := r.Group("/api/v1")
	handler.RegisterRoutes(v1)

	log.Printf("listening on %s env=%s", cfg.HTTPAddr, cfg.AppEnv)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
