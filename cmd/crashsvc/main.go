package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/astra-games/crash-services/configs"
	"github.com/astra-games/crash-services/internal/crashsvc/admin"
	"github.com/astra-games/crash-services/internal/crashsvc/broker"
	"github.com/astra-games/crash-services/internal/crashsvc/engine"
	"github.com/astra-games/crash-services/internal/crashsvc/handlers"
	"github.com/astra-games/crash-services/internal/crashsvc/store"
	"github.com/astra-games/crash-services/internal/crashsvc/wallet"
	"github.com/astra-games/crash-services/internal/db"
	natscli "github.com/astra-games/crash-services/internal/nats"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "crash"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
	rand.Seed(time.Now().UnixNano())
}

func main() {
	// pg connection
	dbpool, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo connection for game history records
	mongoDB, cancelMongo, err := db.ConnectMongo()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	log.Printf("mongo connection established successfully")

	ledgerStore := store.NewLedgerStore(dbpool)
	walletService := wallet.NewService(ledgerStore)

	userStore := store.NewUserStore(dbpool)
	historyStore := store.NewGameHistoryStore(mongoDB)

	// Connect to NATS
	n, err := natscli.Connect()
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// init message broker and round engine; the broker doubles as the
	// engine's broadcast boundary
	b := broker.NewBroker(n.Conn, walletService, userStore, historyStore)
	eng := engine.New(walletService, historyStore, b, engine.DefaultConfig())
	b.Engine = eng

	// subscribe to socket service
	topic := "socket.service"
	sub, err := b.SubscribSocketService(topic)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// periodic round-start trigger
	engineCtx, stopEngine := context.WithCancel(context.Background())
	go eng.Run(engineCtx)

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	adminService := admin.NewService(historyStore, ledgerStore, userStore)
	h := handlers.NewHandler(eng, historyStore, walletService, adminService)
	handlers.InitAuth()
	handlers.SetRoutes(r, h)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("CRASH_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	stopEngine()
	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
