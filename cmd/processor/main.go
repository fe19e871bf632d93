package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nimasrn/paywise/internal/bootstrap"
	"github.com/nimasrn/paywise/internal/config"
	"github.com/nimasrn/paywise/internal/processor"
	"github.com/nimasrn/paywise/internal/queue"
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
	logger.Named(config.Get().AppName, "processor")
	logger.Info("starting paywise processor", "version", version, "commit", commit, "date", date)

	app, err := bootstrap.New(context.Background(), config.Get())
	if err != nil {
		logger.Error("failed to wire services", "error", err)
		return
	}
	defer app.Close()

	if app.Redis == nil {
		logger.Error("the processor needs redis, set REDIS_ADDR")
		return
	}

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	metricsAddr := config.Get().AppDebugMetricsAddr
	if metricsAddr == "" {
		metricsAddr = ":9100"
	}
	go func() {
		prom.ListenAndServer(metricsAddr, config.Get().AppDebugMetricsURI)
	}()

	consumerName := config.Get().EventsConsumerName
	if consumerName == "" {
		consumerName = hostname
	}

	service := processor.NewProcessorService(app.Redis, processor.Config{
		Queue: queue.QueueConfig{
			Name:          config.Get().EventsStream,
			ConsumerGroup: config.Get().EventsConsumerGroup,
			ConsumerName:  consumerName,
			MaxRetries:    config.Get().EventsMaxRetries,
			PollInterval:  config.Get().EventsPollInterval,
			BatchSize:     config.Get().EventsBatchSize,
			MaxLen:        config.Get().EventsMaxLen,
			EnableDLQ:     true,
		},
		Workers:        config.Get().EventsWorkers,
		ReportInterval: config.Get().MetricsReportInterval,
	})

	idempotencyService := processor.NewIdempotencyService(app.Redis, processor.DefaultIdempotencyConfig())
	service.RegisterProcessor(processor.NewEventProcessor(app.Audit, idempotencyService))

	sweeper := processor.NewExpirySweeper(app.Payments, config.Get().ExpirySweepInterval)
	service.RegisterTask(sweeper.Run)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		err := service.Start()
		if err != nil {
			logger.Error("failed to start processor", "error", err)
		}
	}()

	<-c
	service.Stop()
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
