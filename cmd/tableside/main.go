package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/appetiteclub/tableside/internal/catalog"
	"github.com/appetiteclub/tableside/internal/fanout"
	"github.com/appetiteclub/tableside/internal/mongo"
	"github.com/appetiteclub/tableside/internal/order"
	"github.com/appetiteclub/tableside/pkg"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/middleware"
)

const (
	appNamespace = "TABLESIDE"
	appName      = "tableside"
	appVersion   = "0.1.0"
)

func main() {
	config, err := aqm.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := aqm.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	lifecycle := []interface{}{}

	baseRepo := mongo.NewBaseRepo(config, logger)
	lifecycle = append(lifecycle, baseRepo)

	catalogRepos := mongo.NewCatalogRepos(baseRepo)
	orderRepo := mongo.NewOrderRepo(baseRepo)
	counterRepo := mongo.NewCounterRepo(baseRepo)
	store := catalog.NewStore(catalogRepos)

	hub := fanout.NewHub(logger)
	var sink fanout.Sink = hub
	var publisher events.Publisher

	natsURL, _ := config.GetString("nats.url")
	if natsURL != "" {
		natsPublisher, err := pkg.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("Cannot connect to NATS publisher: %v", err)
		}
		natsSubscriber, err := pkg.NewNATSSubscriber(natsURL)
		if err != nil {
			log.Fatalf("Cannot connect to NATS subscriber: %v", err)
		}
		publisher = natsPublisher

		relay := fanout.NewRelay(hub, natsPublisher, natsSubscriber, logger)
		sink = relay

		lifecycle = append(lifecycle, relay, aqm.LifecycleHooks{
			OnStop: func(context.Context) error {
				_ = natsSubscriber.Close()
				return natsPublisher.Close()
			},
		})
		logger.Info("Fanout relay enabled", "nats_url", natsURL)
	} else {
		logger.Info("NATS not configured, fanout is local to this instance")
	}

	dispatcher := fanout.NewDispatcher(sink,
		configInt(config, "fanout.workers", 0),
		configInt(config, "fanout.queue.size", 0),
		logger,
	)
	lifecycle = append(lifecycle, dispatcher)

	tzName, _ := config.GetString("orders.timezone")
	loc, err := order.LoadLocation(tzName)
	if err != nil {
		log.Fatalf("Cannot setup %s(%s): %v", appName, appVersion, err)
	}
	prefix, _ := config.GetString("orders.number.prefix")
	identity := order.NewIdentityGenerator(counterRepo, loc, prefix)

	secret, _ := config.GetString("auth.jwt.secret")
	if secret == "" {
		logger.Info("auth.jwt.secret not set, staff endpoints will reject every request")
	}
	issuer, _ := config.GetString("auth.jwt.issuer")
	verifier := auth.NewTokenVerifier([]byte(secret), issuer)

	intake := order.NewIntake(order.IntakeDeps{
		Catalog:   store,
		Orders:    orderRepo,
		Identity:  identity,
		Notifier:  dispatcher,
		Publisher: publisher,
	}, logger)
	statusManager := order.NewStatusManager(orderRepo, dispatcher, logger)

	orderHandler := order.NewHandler(order.HandlerDeps{
		Intake:   intake,
		Status:   statusManager,
		Orders:   orderRepo,
		Resolver: verifier,
	}, logger)
	catalogHandler := catalog.NewHandler(store, logger)
	sseHandler := fanout.NewSSEHandler(hub, verifier,
		configInt(config, "fanout.subscriber.buffer", fanout.DefaultSubscriberBuffer), logger)

	demoEnabled, _ := config.GetString("seeding.demo")
	if demoEnabled == "true" {
		logger.Info("Demo catalog seeding enabled")
		lifecycle = append(lifecycle, aqm.LifecycleHooks{
			OnStart: catalog.SeedingFunc(seedCtx, catalogRepos, baseRepo, logger),
			OnStop:  catalog.StopFunc(cancelSeeds),
		})
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	options := []aqm.Option{
		aqm.WithConfig(config),
		aqm.WithLogger(logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", orderHandler, catalogHandler, sseHandler),
		aqm.WithLifecycle(lifecycle...),
		aqm.WithHealthChecks(appName),
	}

	ms := aqm.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		log.Fatalf("%s(%s) stopped with error: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}

func configInt(config *aqm.Config, key string, def int) int {
	raw, _ := config.GetString(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
