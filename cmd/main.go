package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/bankledger/account-processing/internal/cache"
	"github.com/bankledger/account-processing/internal/config"
	"github.com/bankledger/account-processing/internal/consumer"
	"github.com/bankledger/account-processing/internal/events"
	"github.com/bankledger/account-processing/internal/handler"
	"github.com/bankledger/account-processing/internal/jobs"
	"github.com/bankledger/account-processing/internal/middleware"
	"github.com/bankledger/account-processing/internal/repository"
	"github.com/bankledger/account-processing/internal/service"
)

func main() {
	cfg := config.Load()

	// PostgreSQL (write store / source of truth)
	store, err := repository.Open(cfg.DatabaseURL, cfg.StoreTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	// Redis (message streams)
	redisClient, err := events.NewClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- service wiring ---
	janitor := cache.NewJanitor(cfg.CacheSweepInterval)

	accountSvc := service.NewAccountService(store, service.AccountCacheTTLs{
		ByID:     cfg.AccountByIDTTL,
		ByClient: cfg.AccountByClientTTL,
		ByStatus: cfg.AccountByStatusTTL,
		Active:   cfg.AccountActiveTTL,
	}, janitor)
	cardSvc := service.NewCardService(store)
	paymentSvc := service.NewPaymentService(store)
	transactionSvc := service.NewTransactionService(store)
	fraudDetector := service.NewFraudDetector(store, accountSvc, cardSvc, service.FraudConfig{
		MaxTransactions: cfg.FraudMaxTransactions,
		Window:          cfg.FraudWindow,
		MaxAmount:       cfg.FraudMaxAmount,
	})
	transactionProcessor := service.NewTransactionProcessor(
		store, fraudDetector, accountSvc, cardSvc,
		cfg.ScheduleMonths, cfg.PaymentGraceDays,
	)
	paymentProcessor := service.NewPaymentProcessor(store)

	go janitor.Start(ctx)

	// --- stream consumers ---
	publisher := events.NewPublisher(redisClient)

	subscribers := []events.SubscriberConfig{
		{
			Group:    "account-processing-group",
			Consumer: "transaction-consumer-1",
			Stream:   events.TransactionsStream,
			Handler:  consumer.NewTransactionConsumer(transactionProcessor, publisher).Handle,
		},
		{
			Group:    "account-processing-group",
			Consumer: "payment-consumer-1",
			Stream:   events.PaymentsStream,
			Handler:  consumer.NewPaymentConsumer(paymentProcessor, publisher).Handle,
		},
		{
			Group:    "account-processing-group",
			Consumer: "card-consumer-1",
			Stream:   events.CardCreationStream,
			Handler:  consumer.NewCardConsumer(cardSvc).Handle,
		},
	}
	for _, sc := range subscribers {
		sub := events.NewSubscriber(redisClient, sc)
		go func() {
			if err := sub.Start(ctx); err != nil {
				log.Printf("Subscriber stopped: %v", err)
			}
		}()
	}

	// --- background jobs ---
	expiryJob := jobs.NewPaymentExpiryJob(paymentSvc, cfg.PaymentExpirySchedule)
	if err := expiryJob.Start(); err != nil {
		log.Fatalf("Failed to start payment expiry job: %v", err)
	}
	defer expiryJob.Stop()

	// --- HTTP ops surface ---
	cardHandler := handler.NewCardHandler(cardSvc)
	accountHandler := handler.NewAccountHandler(accountSvc, paymentSvc, transactionSvc)

	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/cards", cardHandler.CreateCard)
		v1.GET("/cards/:cardCode", cardHandler.GetCard)
		v1.POST("/cards/:cardCode/block", cardHandler.BlockCard)
		v1.POST("/cards/:cardCode/activate", cardHandler.ActivateCard)

		v1.GET("/accounts", accountHandler.ListAccountsByClient)
		v1.GET("/accounts/:accountId", accountHandler.GetAccount)
		v1.GET("/accounts/:accountId/payments", accountHandler.ListPayments)
		v1.GET("/accounts/:accountId/debt", accountHandler.GetTotalDebt)
		v1.GET("/accounts/:accountId/transactions", accountHandler.ListTransactions)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Account processing service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
