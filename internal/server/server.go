package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/brocante/apiserver/config"
	"github.com/brocante/apiserver/internal/db"
	"github.com/brocante/apiserver/internal/handlers"
	"github.com/brocante/apiserver/internal/mq"
	"github.com/brocante/apiserver/internal/payment"
	"github.com/brocante/apiserver/internal/services"
	"github.com/brocante/apiserver/internal/storage"
	"github.com/brocante/apiserver/internal/store"
)

// Server wraps the HTTP server, router, and owned connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	log        *zap.Logger
}

// New constructs a Server: opens the store, selects the storage and
// broker backends from config, and wires services and routes. All
// collaborator handles flow in through cfg; nothing is package-global.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	media, err := newMediaStorage(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newBroker(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	offerRepo := store.NewOfferRepository(dbConn)

	accountService := services.NewAccountService(userRepo, media, log)

	var events services.EventPublisher
	if broker != nil {
		events = broker
	}
	listingService := services.NewListingService(offerRepo, media, events, cfg.MQ.OfferTopic, log)

	processor := payment.NewClient(
		cfg.Payment,
		payment.NewHTTPClient(time.Duration(cfg.Payment.TimeoutSeconds)*time.Second),
	)

	authMiddleware := handlers.RequireAuth(accountService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	router.Get("/", handlers.Welcome)
	router.NotFound(handlers.NotFound)
	handlers.UserRouter(router, accountService, authMiddleware)
	handlers.OfferRouter(router, listingService, authMiddleware)
	handlers.PaymentRouter(router, processor)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes owned connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return err
}

func newMediaStorage(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	var backend storage.ObjectStorage
	switch cfg.Storage.Backend {
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		backend = client
	default:
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		backend = client
	}

	media := storage.NewStorage(backend, cfg.Media.PublicBaseURL)
	if err := media.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return media, nil
}

func newBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}
