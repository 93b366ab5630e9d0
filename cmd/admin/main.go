// Команда admin создаёт первого администратора. Дальше роли назначаются
// через API управления ролями.
//
//	CONFIG_PATH=./config/local.yaml admin -email root@example.com -username root -password ...
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/trading-academy/internal/config"
	"github.com/magabrotheeeer/trading-academy/internal/lib/jwt"
	"github.com/magabrotheeeer/trading-academy/internal/lib/logger"
	"github.com/magabrotheeeer/trading-academy/internal/lib/sl"
	"github.com/magabrotheeeer/trading-academy/internal/migrations"
	"github.com/magabrotheeeer/trading-academy/internal/models"
	authservice "github.com/magabrotheeeer/trading-academy/internal/services/auth"
	"github.com/magabrotheeeer/trading-academy/internal/storage"
)

func main() {
	var req models.DummyUser
	flag.StringVar(&req.Email, "email", "", "admin email")
	flag.StringVar(&req.Username, "username", "", "admin username")
	flag.StringVar(&req.Password, "password", "", "admin password")
	flag.Parse()

	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	if err := validator.New().Struct(req); err != nil {
		fmt.Fprintln(os.Stderr, "invalid arguments:", err)
		flag.Usage()
		os.Exit(2)
	}

	id, err := run(cfg, req, log)
	if err != nil {
		log.Error("failed to create admin", sl.Err(err))
		os.Exit(1)
	}
	fmt.Println(id)
}

func run(cfg *config.Config, req models.DummyUser, log *slog.Logger) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return "", err
	}
	defer db.Close()

	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return "", err
	}

	auth := authservice.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), log)
	return auth.RegisterAdmin(ctx, req)
}
