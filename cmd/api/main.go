package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/davronx1/leadgate/internal/handoff"
	"github.com/davronx1/leadgate/internal/infra/cache"
	"github.com/davronx1/leadgate/internal/infra/database"
	"github.com/davronx1/leadgate/internal/infra/http/handlers"
	"github.com/davronx1/leadgate/internal/infra/http/middleware"
	"github.com/davronx1/leadgate/internal/infra/integration/telegram"
	"github.com/davronx1/leadgate/internal/infra/mail"
	"github.com/davronx1/leadgate/internal/infra/queue"
	"github.com/davronx1/leadgate/internal/infra/worker"
	"github.com/davronx1/leadgate/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"),
		envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Storage
	store := database.NewSQLStore(db)
	handoffStore := newHandoffStore()
	rejections := cache.NewRejectionStateStore()

	// 2. Gateways and adapters
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	chatClient := telegram.NewClient(os.Getenv("TELEGRAM_BOT_TOKEN"))
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), envOrInt("MAIL_PORT", 587),
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"), os.Getenv("MAIL_FROM"),
	)

	// 3. Workers
	notificationWorker := queue.NewWorker(
		rabbitMQ.Ch, store, chatClient, mailSender,
		os.Getenv("TELEGRAM_GROUP_ID"),
		os.Getenv("TELEGRAM_CHANNEL"),
		os.Getenv("SALES_EMAIL"),
	)
	notificationWorker.Start(queue.QueueName)

	// 4. Use cases
	reminders := usecase.NewReminderScheduler(store)
	submitUC := usecase.NewSubmitLeadUseCase(store, producer, botURL())
	linkUC := usecase.NewLinkIdentityUseCase(store, handoffStore, submitUC, producer, reminders)
	decideUC := usecase.NewDecideLeadUseCase(store, producer, rejections, reminders)

	reminderWorker := worker.NewReminderWorker(reminders, producer)
	go reminderWorker.Start(ctx)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(submitUC)
	handoffHandler := handlers.NewHandoffHandler(handoffStore)
	webhookHandler := handlers.NewTelegramWebhookHandler(linkUC, decideUC, reminders)
	healthHandler := handlers.NewHealthHandler(db)

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Post("/api/leads", leadHandler.Handle)
	r.Post("/api/leads/handoff", handoffHandler.Handle)
	r.Post("/api/telegram/webhook", webhookHandler.Handle)
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("🔥 leadgate API listening on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal(err)
	}
}

// newHandoffStore picks Redis when REDIS_ADDR is set, otherwise the
// in-process store.
func newHandoffStore() handoff.Store {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("[handoff] REDIS_ADDR not set, using in-memory store")
		return cache.NewMemoryHandoffStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return cache.NewRedisHandoffStore(client)
}

func botURL() string {
	if username := os.Getenv("TELEGRAM_BOT_USERNAME"); username != "" {
		return "https://t.me/" + username
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
