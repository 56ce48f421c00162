package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/clients"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/events"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/repository"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/server"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/service"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	logger := logging.New("storefront")
	instanceID := uuid.NewString()

	logger.Info("Starting storefront", logging.Fields{
		"port":        cfg.Server.Port,
		"api_url":     cfg.API.BaseURL,
		"instance_id": instanceID,
	})

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", logging.Fields{"error": err.Error()})
	}
	defer db.Close()

	sessionRepo := repository.NewPostgresSessionRepository(db)
	if err := sessionRepo.EnsureSchema(context.Background()); err != nil {
		logger.Fatal("Failed to prepare session schema", logging.Fields{"error": err.Error()})
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	defer redisClient.Close()
	viewCache := repository.NewRedisViewCache(redisClient, cfg.Checkout.DraftTTL)

	m := metrics.New()

	api := clients.NewAPIClient(cfg.API, m)
	cartClient := clients.NewHTTPCartClient(api)
	orderClient := clients.NewHTTPOrderClient(api)
	userClient := clients.NewHTTPUserClient(api)
	addressClient := clients.NewHTTPAddressClient(api)
	productClient := clients.NewHTTPProductClient(api)
	imageClient := clients.NewHTTPImageClient(api)
	authClient := clients.NewHTTPAuthClient(api)

	var orderEvents events.Publisher = events.NoopPublisher{}
	var countEvents events.Publisher
	var kafkaPublisher *events.KafkaPublisher
	if cfg.Features.EnableEvents || cfg.Features.EnableCartBroadcast {
		kafkaPublisher = events.NewKafkaPublisher(cfg.Kafka, instanceID)
		defer kafkaPublisher.Close()
		if cfg.Features.EnableEvents {
			orderEvents = kafkaPublisher
		}
		if cfg.Features.EnableCartBroadcast {
			countEvents = kafkaPublisher
		}
	}

	counter := service.NewCartCounter(cartClient, viewCache, countEvents, m)

	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Cart:      cartClient,
		Orders:    orderClient,
		Users:     userClient,
		Addresses: addressClient,
		Images:    imageClient,
		Store:     viewCache,
		Counter:   counter,
		Publisher: orderEvents,
		Metrics:   m,
	}, cfg)

	h := handlers.NewHandlers(handlers.Services{
		Cart:     service.NewCartService(cartClient, imageClient, counter, cfg.Catalog.ImageConcurrency),
		Counter:  counter,
		Checkout: checkoutService,
		Payment:  service.NewPaymentService(orderClient, orderEvents, m),
		Orders:   service.NewOrderService(orderClient, viewCache, orderEvents, m),
		Catalog:  service.NewCatalogService(productClient, imageClient, cartClient, counter, cfg.Catalog.ImageConcurrency, cfg.Catalog.DefaultPageSize),
		Account:  service.NewAccountService(authClient, userClient, addressClient, sessionRepo, counter),
		Admin:    service.NewAdminService(productClient, orderClient, userClient, imageClient),
	}, cfg, m,
		handlers.ReadinessCheck{Name: "postgres", Ping: db.PingContext},
		handlers.ReadinessCheck{Name: "redis", Ping: viewCache.Ping},
	)

	srv := server.New(h, sessionRepo, cfg)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":           cfg.Server.Port,
			"events":         cfg.Features.EnableEvents,
			"cart_broadcast": cfg.Features.EnableCartBroadcast,
			"admin":          cfg.Features.EnableAdmin,
			"image_fanout":   cfg.Catalog.ImageConcurrency,
			"redirect_delay": cfg.Checkout.RedirectDelay.String(),
		})
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var consumer *events.KafkaConsumer
	if cfg.Features.EnableCartBroadcast {
		consumer = events.NewKafkaConsumer(cfg.Kafka, instanceID, counter)
		go func() {
			if err := consumer.Start(context.Background()); err != nil {
				logger.Error("Event consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if consumer != nil {
		consumer.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := repository.OpenPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	logging.New("storefront").Info("Database connected", logging.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	})
	return db, nil
}
