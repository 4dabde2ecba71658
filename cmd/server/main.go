package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrishop-be/internal/auth"
	"agrishop-be/internal/cache"
	"agrishop-be/internal/checkout"
	"agrishop-be/internal/config"
	"agrishop-be/internal/content"
	"agrishop-be/internal/db"
	"agrishop-be/internal/events"
	"agrishop-be/internal/graph"
	"agrishop-be/internal/httpapi"
	"agrishop-be/internal/logger"
	"agrishop-be/internal/metrics"
	"agrishop-be/internal/middleware"
	"agrishop-be/internal/order"
	"agrishop-be/internal/product"
	"agrishop-be/internal/store"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDBFunc(cfg)
	defer database.Close()

	m := metrics.New()
	deps := connectOptional(ctx, cfg, m)
	defer deps.close()

	router, err := newServer(ctx, cfg, database, m, deps)
	if err != nil {
		return err
	}

	logger.L().Info("server starting", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
	return startServerFunc(ctx, ":"+cfg.AppPort, router)
}

// optional holds the backing services the shop can run without.
type optional struct {
	cache     product.Cache
	publisher checkout.Publisher
	closers   []func() error
}

func (o optional) close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			logger.L().Warn("failed to close dependency", zap.Error(err))
		}
	}
}

// connectOptional dials redis and rabbitmq when configured. A failed dial
// is logged and the feature is disabled.
func connectOptional(ctx context.Context, cfg *config.Config, m *metrics.Metrics) optional {
	var o optional
	log := logger.L()

	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("catalog cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			o.closers = append(o.closers, client.Close)
			o.cache = cache.NewRedis(client, "agrishop:", m)
		}
	}

	if cfg.RabbitMQURL != "" {
		conn, pub, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Warn("order events disabled", zap.Error(err))
		} else {
			o.closers = append(o.closers, conn.Close)
			o.publisher = pub
		}
	}

	return o
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, m *metrics.Metrics, deps optional) (http.Handler, error) {
	productSvc := product.NewService(product.NewRepository(database), deps.cache, cfg.CatalogCacheTTL)
	orderSvc := order.NewService(order.NewRepository(database))
	coordinator := checkout.NewCoordinator(store.NewTransactor(database), productSvc, deps.publisher, m)

	aboutUs := content.NewService(content.AboutUsSchema.Kind, content.NewRepository(database, content.AboutUsSchema))
	services := content.NewService(content.ServicesSchema.Kind, content.NewRepository(database, content.ServicesSchema))
	projects := content.NewService(content.ProjectsSchema.Kind, content.NewRepository(database, content.ProjectsSchema))

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, auth.DefaultTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	schema, err := graph.NewSchema(&graph.Resolver{
		Products: productSvc,
		AboutUs:  aboutUs,
		Services: services,
		Projects: projects,
	})
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}

	limiter := middleware.NewRateLimiter(httpapi.RateTier)
	go limiter.Run(ctx)

	h := &httpapi.Handler{
		Products: productSvc,
		Orders:   orderSvc,
		Checkout: coordinator,
		Auth:     auth.NewAuthenticator(cfg.AdminUsername, cfg.AdminPasswordHash, tokens),
		AboutUs:  aboutUs,
		Services: services,
		Projects: projects,
	}

	return httpapi.NewRouter(h, httpapi.RouterConfig{
		Tokens:     tokens,
		Limiter:    limiter,
		Metrics:    m,
		GraphQL:    graph.Handler(schema),
		CORSOrigin: cfg.CORSOrigin,
	}), nil
}

// startServer serves until ctx is cancelled, then drains in-flight requests.
func startServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
