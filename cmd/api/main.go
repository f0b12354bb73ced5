package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/docblog/internal/auth"
	"github.com/geocoder89/docblog/internal/blog"
	"github.com/geocoder89/docblog/internal/config"
	httpx "github.com/geocoder89/docblog/internal/http"
	"github.com/geocoder89/docblog/internal/http/handlers"
	"github.com/geocoder89/docblog/internal/http/middlewares"
	"github.com/geocoder89/docblog/internal/observability"
	"github.com/geocoder89/docblog/internal/redisclient"
	"github.com/geocoder89/docblog/internal/uploads"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	if cfg.OTelEnabled {
		shutdownTracer, err := observability.InitTracer(context.Background(), "docblog-api", cfg.OTelEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	// storage
	bootCtx, cancelBoot := config.WithTimeout(15 * time.Second)
	st, err := openStores(bootCtx, cfg, prom, log)
	if err != nil {
		cancelBoot()
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.close()

	err = st.seed(bootCtx, cfg)
	cancelBoot()
	if err != nil {
		log.Error("seeding failed", "err", err)
		os.Exit(1)
	}

	checks := map[string]handlers.PingFunc{}
	if st.ping != nil {
		checks["db"] = st.ping
	}

	// redis backs the auth rate limiter when configured
	var counter middlewares.CounterStore
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		counter = rdb
		checks["redis"] = rdb.Ping
	}

	images, err := uploads.NewImageStore(cfg.UploadDir, cfg.MaxUploadBytes())
	if err != nil {
		log.Error("upload dir init failed", "dir", cfg.UploadDir, "err", err)
		os.Exit(1)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())
	authSvc := auth.NewService(st.users, jwtManager)
	blogSvc := blog.NewService(st.posts, st.categories, st.users)

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Auth:     authSvc,
		Blog:     blogSvc,
		Images:   images,
		Prom:     prom,
		Gatherer: reg,
		Counter:  counter,
		Checks:   checks,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
