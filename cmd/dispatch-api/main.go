// README: Entry point; loads config, wires storage and events, starts HTTP server and the conflict audit.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"fleetdispatch/internal/config"
	"fleetdispatch/internal/events"
	httptransport "fleetdispatch/internal/http"
	"fleetdispatch/internal/infra"
	"fleetdispatch/internal/logger"
	"fleetdispatch/internal/modules/booking"
	"fleetdispatch/internal/modules/dispatch"
	"fleetdispatch/internal/modules/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("load config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := dispatch.PolicyFromConfig(cfg.Policy)
	if err != nil {
		fatal("build policy", err)
	}
	var fileRoutes []routes.Entry
	if cfg.Policy.RoutesFile != "" {
		if fileRoutes, err = routes.LoadFile(cfg.Policy.RoutesFile); err != nil {
			fatal("load routes file", err)
		}
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		fatal("connect postgres", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		conn, err := infra.NewNATS(cfg.NATS.URL)
		if err != nil {
			fatal("connect nats", err)
		}
		publisher = events.NewNATSPublisher(conn)
	}
	defer publisher.Close()

	routeSvc := routes.NewService(policy.Routes, fileRoutes, routes.NewStore(redisClient))
	if err := routeSvc.Refresh(ctx); err != nil {
		logger.Warn("route overrides unavailable, using built-in table", "error", err)
	}

	bookingSvc := booking.NewService(booking.NewStore(dbPool))
	dispatchSvc := dispatch.NewService(bookingSvc, routeSvc, dispatch.NewRedisLocker(redisClient), publisher, policy, cfg.Dispatch)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Dispatch: dispatchSvc,
		Routes:   routeSvc,
	})

	go dispatchSvc.RunConflictAudit(ctx)

	if err := httptransport.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		fatal("http server", err)
	}
	logger.Info("shutdown complete")
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
