package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Atomized-titan/qri/internal/config"
	qrigrpc "github.com/Atomized-titan/qri/internal/grpc"
	"github.com/Atomized-titan/qri/internal/handler"
	"github.com/Atomized-titan/qri/internal/keys"
	"github.com/Atomized-titan/qri/internal/ledger"
	"github.com/Atomized-titan/qri/internal/service"
	pkglog "github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/pubsub"
	"github.com/Atomized-titan/qri/pkg/qri"
	"github.com/Atomized-titan/qri/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "qri-service",
	})
	logger := pkglog.L()
	ctx := pkglog.WithLogger(context.Background(), logger)

	logger.Info().Msg("starting qri-service")

	// Load key material
	keyStore, err := storage.New(ctx, cfg.Keys.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open key storage")
	}
	keyring, err := keys.Load(ctx, keyStore, cfg.Keys)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load keys")
	}

	// Initialize issuance ledger
	issued, err := ledger.New(ctx, cfg.Ledger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create issuance ledger")
	}
	defer issued.Close()

	// Initialize event publisher
	publisher, err := pubsub.NewPublisher(ctx, cfg.Events)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create event publisher")
	}
	defer publisher.Close()

	// Initialize service
	var genOpts []qri.Option
	if cfg.QRI.UTC {
		genOpts = append(genOpts, qri.WithUTC())
	}
	if cfg.QRI.SignatureLength > 0 {
		genOpts = append(genOpts, qri.WithSignatureLength(cfg.QRI.SignatureLength))
	}
	validator := qri.Validator{
		RequireSignature: cfg.QRI.RequireSignature,
		SignatureLength:  cfg.QRI.SignatureLength,
	}
	qriService := service.NewQRIService(qri.NewGenerator(genOpts...), validator, keyring, issued, publisher, cfg.Events.Channel, cfg.QRI.BatchMax)

	// Start gRPC server
	grpcAddr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	grpcServer, err := qrigrpc.StartGRPCServer(grpcAddr, qriService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start grpc server")
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.NewHandler(qriService).RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", server.Addr).
			Bool("utc", cfg.QRI.UTC).
			Bool("require_signature", cfg.QRI.RequireSignature).
			Str("ledger", cfg.Ledger.Driver).
			Str("events", cfg.Events.Driver).
			Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down qri-service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	grpcServer.GracefulStop()
	logger.Info().Msg("qri-service stopped")
}
