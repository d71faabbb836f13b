package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hevruta/hevruta/config"
	"hevruta/hevruta/controllers"
	"hevruta/hevruta/routes"
	"hevruta/hevruta/services/airtable"
	"hevruta/hevruta/services/assistant"
	"hevruta/hevruta/services/pdf"
	"hevruta/hevruta/sources/cache"
	"hevruta/hevruta/sources/psql"
	"hevruta/hevruta/sources/psql/dao"
	"hevruta/hevruta/sources/storage"
	"hevruta/hevruta/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	userDAO := dao.NewUserDAO(db.DB)
	threadDAO := dao.NewThreadDAO(db.DB)
	messageDAO := dao.NewMessageDAO(db.DB)
	feedbackDAO := dao.NewFeedbackDAO(db.DB)

	threadCache := cache.NewThreadCache(cfg, 5*time.Minute)
	assistantClient := assistant.NewClient(cfg)
	airtableClient := airtable.NewClient(cfg)

	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		os.Exit(1)
	}

	pdfOpts, err := pdf.LoadOptions(cfg.PDFPresetPath)
	if err != nil {
		logging.ErrorLogger.Error("pdf preset load error", zap.Error(err))
		os.Exit(1)
	}
	renderer, err := pdf.NewRenderer(pdfOpts)
	if err != nil {
		logging.ErrorLogger.Error("pdf renderer init error", zap.Error(err))
		os.Exit(1)
	}
	defer renderer.Close()

	authCtrl := controllers.NewAuthController(userDAO, cfg)
	userCtrl := controllers.NewUserController(userDAO)
	chatCtrl := controllers.NewChatController(threadDAO, messageDAO, assistantClient, threadCache)
	feedbackCtrl := controllers.NewFeedbackController(feedbackDAO, airtableClient)
	pdfCtrl := controllers.NewPDFController(renderer, minioClient)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/users", routes.UserRoutes(userCtrl, cfg))
	r.Mount("/chat", routes.ChatRoutes(chatCtrl, cfg))
	r.Mount("/feedback", routes.FeedbackRoutes(feedbackCtrl, cfg))
	r.Mount("/pdf", routes.PDFRoutes(pdfCtrl, cfg))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
