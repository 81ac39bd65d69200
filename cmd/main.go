package main

import (
	"context"
	"linerelay/internal/api"
	"linerelay/internal/billing"
	"linerelay/internal/chatgpt"
	"linerelay/internal/conversation"
	"linerelay/internal/dispatch"
	"linerelay/internal/gate"
	"linerelay/internal/line"
	"linerelay/pkg/config"
	"linerelay/pkg/db"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("Ошибка при подключении к базе данных: %v", err)
	}
	defer database.Close()

	conversationRepo := conversation.NewRepository(database)
	conversationService := conversation.NewService(conversationRepo)

	billingService := billing.NewService(cfg)
	gateService := gate.NewService(cfg, billingService, conversationService)
	chatgptService := chatgpt.NewService(cfg, conversationService)

	lineClient, err := line.NewClient(cfg)
	if err != nil {
		logrus.Fatalf("Ошибка при инициализации LINE клиента: %v", err)
	}

	pool, err := dispatch.NewPool(cfg.Workers, cfg.QueueSize)
	if err != nil {
		logrus.Fatalf("Ошибка при создании пула обработчиков: %v", err)
	}

	controller := dispatch.NewController(cfg, pool, lineClient, gateService, chatgptService, conversationService)
	lineHandler := line.NewHandler(lineClient, controller)

	apiHandler := api.NewHandler(database)

	mux := http.NewServeMux()
	mux.HandleFunc("/", apiHandler.RootHandler)
	mux.HandleFunc("/callback", lineHandler.HandleWebhook)
	mux.HandleFunc("/health", apiHandler.HealthHandler)

	server := &http.Server{
		Addr:		":" + cfg.ServerPort,
		Handler:	mux,
	}

	go func() {
		logrus.Infof("Сервер запущен на порту %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Ошибка при запуске сервера: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Завершение работы сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// сначала останавливаем приём вебхуков, затем дорабатываем очередь
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Ошибка при остановке сервера: %v", err)
	}

	if err := pool.Shutdown(ctx); err != nil {
		logrus.Errorf("Пул обработчиков не успел доработать очередь: %v", err)
	}

	logrus.Info("Сервер остановлен")
}
