package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mkrupp/storefront/internal/infra/config"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/infra/metrics"
	http_ "github.com/mkrupp/storefront/internal/infra/transport/http"
	"github.com/mkrupp/storefront/internal/repo/cart"
	"github.com/mkrupp/storefront/internal/repo/catalog"
	"github.com/mkrupp/storefront/internal/repo/order"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
	"github.com/mkrupp/storefront/internal/repo/user"
	"github.com/mkrupp/storefront/internal/svc/authsvc"
	"github.com/mkrupp/storefront/internal/svc/cartsvc"
	"github.com/mkrupp/storefront/internal/svc/catalogsvc"
	"github.com/mkrupp/storefront/internal/svc/ordersvc"
)

const appName = "storefront"

type Config struct {
	config.EnvConfig

	Log     logging.LoggerConfig      `envPrefix:"LOG_"`
	Auth    authsvc.AuthConfig        `envPrefix:"AUTH_"`
	Store   sqldb.Config              `envPrefix:"STORE_"`
	Catalog catalogsvc.CatalogConfig  `envPrefix:"CATALOG_"`
	Order   ordersvc.OrderConfig      `envPrefix:"ORDER_"`
	HTTP    http_.HTTPTransportConfig `envPrefix:"HTTP_"`
}

func main() {
	var cfg Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.Parse(ctx, &cfg, strings.ToUpper(appName)); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2) //nolint:gocritic
	}

	logging.Configure(ctx, cfg.Log, appName)

	if err := run(ctx, cfg); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) (err error) {
	log := logging.GetLogger("cmd.storefront")

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "error", logging.Err(err))

			return
		}

		log.InfoContext(ctx, "shutdown")
	}()

	db, err := sqldb.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	defer func() {
		err = errors.Join(err, db.Close())
	}()

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(resource.NewSchemaless(
		attribute.String("service.name", appName),
	)))
	otel.SetTracerProvider(tp)

	defer func() {
		err = errors.Join(err, tp.Shutdown(context.WithoutCancel(ctx)))
	}()

	var (
		users    = user.NewSQLUserRepository(db)
		products = catalog.NewSQLCatalogRepository(db)
		carts    = cart.NewSQLCartRepository(db)
		orders   = order.NewSQLOrderRepository(db)
		registry = metrics.NewRegistry(appName)
	)

	authSvc, err := authsvc.NewAuthService(users, cfg.Auth)
	if err != nil {
		return fmt.Errorf("new auth service: %w", err)
	}

	transports := []http_.HTTPTransport{
		authsvc.NewHTTPTransport(authSvc),
		catalogsvc.NewHTTPTransport(catalogsvc.NewCatalogService(products, cfg.Catalog), authSvc),
		cartsvc.NewHTTPTransport(cartsvc.NewCartService(carts, products), authSvc),
		ordersvc.NewHTTPTransport(
			ordersvc.NewCheckoutService(db, carts, products, orders, cfg.Order, registry),
			ordersvc.NewOrderService(orders, cfg.Order),
			authSvc,
		),
	}

	mux := http.NewServeMux()
	for _, transport := range transports {
		transport.RegisterRoutes(mux)
	}

	mux.Handle("GET /metrics", registry.Handler())

	log.InfoContext(ctx, "starting", "driver", db.Driver(), "signing_method", cfg.Auth.SigningMethod)

	if err := http_.ListenAndServe(ctx, mux, cfg.HTTP, registry); err != nil {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}
