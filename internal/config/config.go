package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every configuration value of the service. Only this struct
// must be used to read configuration, no direct access to env or any other
// config source should be made.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=paywise"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:5000"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=30s"`
	HttpAllowOrigin    string        `env:"HTTP_ALLOW_ORIGIN,default=*"`

	DBDriver  string `env:"DB_DRIVER,default=sqlite"`
	DBDebug   bool   `env:"DB_DEBUG,default=false"`
	SQLiteDSN string `env:"SQLITE_DSN,default=file:paywise?mode=memory&cache=shared"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE,default=0"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX"`

	PromNamespace string `env:"PROM_NAMESPACE,default=paywise"`

	EventsStream          string        `env:"EVENTS_STREAM,default=paywise:events"`
	EventsConsumerGroup   string        `env:"EVENTS_CONSUMER_GROUP,default=paywise-processor"`
	EventsConsumerName    string        `env:"EVENTS_CONSUMER_NAME"`
	EventsMaxRetries      int           `env:"EVENTS_MAX_RETRIES,default=3"`
	EventsPollInterval    time.Duration `env:"EVENTS_POLL_INTERVAL,default=500ms"`
	EventsBatchSize       int64         `env:"EVENTS_BATCH_SIZE,default=50"`
	EventsMaxLen          int64         `env:"EVENTS_MAX_LEN,default=100000"`
	EventsWorkers         int           `env:"EVENTS_WORKERS,default=4"`
	ExpirySweepInterval   time.Duration `env:"EXPIRY_SWEEP_INTERVAL,default=1h"`
	MetricsReportInterval time.Duration `env:"METRICS_REPORT_INTERVAL,default=15s"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`

	SMSProviderURL string `env:"SMS_PROVIDER_URL"`

	ElasticEmailAPIKey    string `env:"ELASTIC_EMAIL_API_KEY"`
	ElasticEmailFromEmail string `env:"ELASTIC_EMAIL_FROM_EMAIL"`
	ElasticEmailBaseURL   string `env:"ELASTIC_EMAIL_BASE_URL,default=https://api.elasticemail.com"`
	EmailFromName         string `env:"EMAIL_FROM_NAME,default=PayWise Team"`

	PaymentGatewayURL  string `env:"PAYMENT_GATEWAY_URL"`
	PaymentLinkBaseURL string `env:"PAYMENT_LINK_BASE_URL,default=https://example.com/payment-link"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL,default=gemini-1.5-flash"`

	CurrencySymbol string `env:"CURRENCY_SYMBOL,default=₹"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = c.validate(); err != nil {
		return err
	}

	config = c
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case pg.DriverSQLite:
	case pg.DriverPostgres:
		if c.PostgresWriteHost == "" || c.PostgresWriteDatabase == "" {
			return errors.New("DB_DRIVER=postgres requires POSTGRES_WRITE_HOST and POSTGRES_WRITE_DBNAME")
		}
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ElasticEmailAPIKey != "" && c.ElasticEmailFromEmail == "" {
		return errors.New("ELASTIC_EMAIL_FROM_EMAIL is required when ELASTIC_EMAIL_API_KEY is set")
	}
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration, tests use it to avoid touching the environment.
func Set(c *Config) {
	config = c
}

func (c *Config) PostgresRead() pg.Config {
	if c.PostgresReadHost == "" {
		return c.PostgresWrite()
	}
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func (c *Config) PostgresWrite() pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}
