package main

import (
	"context"
	"time"

	"github.com/cppla/schoolsite/config"
	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/routes"
	"github.com/cppla/schoolsite/services"
	"github.com/cppla/schoolsite/storage"
	"github.com/cppla/schoolsite/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	db := config.InitDatabase(models.All()...)

	created, err := services.NewUserService(db).EnsureAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		utils.Sugar.Fatalf("bootstrap admin: %v", err)
	}
	if created {
		utils.Sugar.Infow("bootstrap admin created", "email", cfg.AdminEmail)
	}

	files := storage.NewLocal(cfg.PublicDir)
	r := routes.SetupRouter(db, files)

	// released uploads are swept in the background until shutdown
	cleanerCtx, stopCleaner := context.WithCancel(context.Background())
	utils.StartFileCleaner(cleanerCtx, time.Duration(cfg.FileCleanupMinutes)*time.Minute, func(ctx context.Context) (int, error) {
		return files.Sweep(ctx, db)
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	err = utils.GraceServer(":"+cfg.AppPort, r, utils.ServerOptions{
		ReadTimeout:     time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second,
		OnShutdown:      []func(){stopCleaner},
	})
	if err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
