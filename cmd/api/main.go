package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/paywise/internal/bootstrap"
	"github.com/nimasrn/paywise/internal/config"
	"github.com/nimasrn/paywise/internal/handlers"
	xhttp "github.com/nimasrn/paywise/pkg/http"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	defer logger.Sync()
	logger.Named(config.Get().AppName, "api")
	logger.Info("starting paywise api", "version", version, "commit", commit, "date", date)

	if addr := config.Get().AppDebugMetricsAddr; addr != "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		if err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed to create prometheus metrics", "error", err)
			return
		}
		go prom.ListenAndServer(addr, config.Get().AppDebugMetricsURI)
	}

	app, err := bootstrap.New(context.Background(), config.Get())
	if err != nil {
		logger.Error("failed to wire services", "error", err)
		return
	}
	defer app.Close()

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(config.Get().HttpRequestTimeout))
	s.Use(xhttp.CORSMiddleware(config.Get().HttpAllowOrigin))
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	checks := map[string]handlers.HealthCheck{
		"database": app.DB.Ping,
	}
	if app.Redis != nil {
		checks["redis"] = app.Redis.Ping
	}

	// v1 handlers
	clientHandler := handlers.NewClientHandler(app.Clients, app.Payments)
	paymentHandler := handlers.NewPaymentHandler(app.Payments)
	healthHandler := handlers.NewHealthHandler(checks, app.Providers.Stats...)

	g := s.Router.Group("/api/v1")
	handlers.RegisterClientRoutes(g, clientHandler)
	handlers.RegisterPaymentRoutes(g, paymentHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	logger.Info("shutting down")
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
