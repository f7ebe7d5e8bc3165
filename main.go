package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"bistro-api/config"
	"bistro-api/handlers"
	"bistro-api/middleware"
	"bistro-api/models"
	"bistro-api/payment"
	"bistro-api/routes"
	"bistro-api/store"

	"github.com/gin-gonic/gin"
	logging "github.com/op/go-logging"
)

var logger = logging.MustGetLogger("main")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	initLogging(cfg.LogLevel)

	// Set Gin mode
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := store.Open(ctx, cfg.DB)
	if err == nil {
		err = db.Ping(ctx)
	}
	cancel()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	logger.Infof("Pinged your deployment. Successfully connected to %s!", cfg.DB.Driver)

	// promote <email> bootstraps the first admin
	if len(os.Args) > 1 && os.Args[1] == "promote" {
		if len(os.Args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: bistro-api promote <email>")
			db.Close()
			os.Exit(2)
		}
		err := promote(db, os.Args[2])
		db.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "promote:", err)
			os.Exit(1)
		}
		return
	}

	defer db.Close()

	auth := middleware.NewAuth([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL, db)
	h := handlers.New(db, auth, payment.NewStripe(cfg.Stripe.SecretKey))

	r := gin.New()
	r.Use(gin.Logger(), middleware.Recovery(), middleware.CORS(cfg.CORS))

	// Register all routes
	routes.SetupRoutes(r, h, auth)

	logger.Infof("Bistro Boss is sitting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func initLogging(level string) {
	var formatter = logging.MustStringFormatter(
		`[%{level:.4s}] %{time:2006-01-02 15:04:05.000} %{module} %{shortfile} %{message}`,
	)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, formatter)
	backendLeveled := logging.AddModuleLevel(backendFormatter)

	lvl, err := logging.LogLevel(level)
	if err != nil {
		lvl = logging.INFO
	}
	backendLeveled.SetLevel(lvl, "")
	logging.SetBackend(backendLeveled)
}

func promote(db store.Store, email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := db.FindUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	res, err := db.SetUserRole(ctx, user.ID, models.RoleAdmin)
	if err != nil {
		return err
	}
	logger.Infof("promoted %s to admin (matched %d, modified %d)", email, res.MatchedCount, res.ModifiedCount)
	return nil
}
