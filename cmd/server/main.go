package main

import (
	"context"

	"github.com/VasiliiKletkin/yatube-main/internal/config"
	"github.com/VasiliiKletkin/yatube-main/internal/db"
	"github.com/VasiliiKletkin/yatube-main/internal/router"
	"github.com/VasiliiKletkin/yatube-main/internal/services"
	"github.com/VasiliiKletkin/yatube-main/internal/storage"
	"github.com/VasiliiKletkin/yatube-main/internal/store"
	"github.com/VasiliiKletkin/yatube-main/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer utils.Logger.Sync()

	gin.SetMode(cfg.GinMode)
	ctx := context.Background()

	database, err := db.Open(cfg)
	if err != nil {
		utils.Logger.Fatal("failed to open database", zap.Error(err))
	}

	media, err := storage.New(ctx, cfg)
	if err != nil {
		utils.Logger.Fatal("failed to initialise media storage", zap.String("backend", cfg.MediaBackend), zap.Error(err))
	}

	s := store.New(database, media)
	if _, err := db.SeedGroups(ctx, s, cfg.GroupsFile); err != nil {
		utils.Logger.Fatal("failed to seed groups", zap.Error(err))
	}

	r, err := router.New(router.Deps{
		Config:  cfg,
		Store:   s,
		Captcha: services.NewMathCaptcha(),
	})
	if err != nil {
		utils.Logger.Fatal("failed to build router", zap.Error(err))
	}

	utils.Sugar.Infof("Yatube server starting on :%s", cfg.Port)
	if err := utils.GraceServer(":"+cfg.Port, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
