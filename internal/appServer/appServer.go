package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/config"
	repository "github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/database/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/service"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/transport"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/worker"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/lock"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/postgres"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/queue"
	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	locationRepo := repository.NewLocationRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Shared lock registry for all services
	locks := lock.NewKeyedMutex()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis queue for delayed expiry tasks
	var redisQueue *queue.RedisQueue
	var taskPublisher service.TaskPublisher

	if cfg.Redis.Host != "" {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()

		redisQueue, err = queue.NewRedisQueue(redisClient, queue.DefaultRedisQueueConfig())
		if err != nil {
			logrus.Errorf("Failed to initialize Redis queue: %v. Continuing without queue...", err)
		} else {
			taskPublisher = service.NewQueuePublisher(redisQueue)
			logrus.Info("Redis queue initialized")
		}
	}

	// Initialize services
	inventoryService := service.NewInventoryService(locationRepo, bookingRepo, locks)
	bookingService := service.NewBookingService(
		bookingRepo, userRepo, locationRepo,
		inventoryService, taskPublisher, locks,
		cfg.Booking.ExpiryThreshold,
	)
	settlementService := service.NewSettlementService(userRepo, bookingRepo, paymentRepo, locks)
	feedbackService := service.NewFeedbackService(bookingRepo, userRepo, locks)
	userService := service.NewUserService(userRepo)

	// Start queue consumer if queue is available
	if redisQueue != nil {
		taskHandler := worker.NewTaskHandler(bookingService)
		if err := redisQueue.Subscribe(ctx, taskHandler.Handle); err != nil {
			logrus.Errorf("Queue subscriber error: %v", err)
		}
		defer redisQueue.Close()
	}

	// Start background expiry sweep
	expiryWorker := worker.NewExpiryWorker(bookingService, cfg.Worker.SweepInterval)
	go expiryWorker.Start(ctx)

	// Initialize handlers
	handlers := &transport.Handlers{
		Location: transport.NewLocationHandler(inventoryService),
		Booking:  transport.NewBookingHandler(bookingService),
		Payment:  transport.NewPaymentHandler(settlementService),
		Feedback: transport.NewFeedbackHandler(feedbackService),
		User:     transport.NewUserHandler(userService),
		Users:    userService,
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handlers)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
