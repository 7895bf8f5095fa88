package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"voiceguard/audio-api/api"
	"voiceguard/audio-api/config"
	"voiceguard/audio-api/db"
	"voiceguard/audio-api/pkg/security"
	"voiceguard/audio-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	database, err := db.New()
	if err != nil {
		panic(err)
	}

	blobs, err := storage.NewS3()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter(&api.Deps{
		DB:     database,
		Store:  blobs,
		Hasher: security.New(),
	})
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler: a.Router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("Server crashed", zap.Error(err))
		}
	}()

	zap.L().Info("Server starting", zap.Int("port", viper.GetInt("host.port")))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down cleanly", zap.Error(err))
	}

	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
}
