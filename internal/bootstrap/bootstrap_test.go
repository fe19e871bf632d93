package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/nimasrn/paywise/internal/config"
	gateway "github.com/nimasrn/paywise/internal/gateways"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppName:            "paywise-test",
		DBDriver:           "sqlite",
		SQLiteDSN:          "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		EventsStream:       "paywise:events",
		EventsMaxLen:       1000,
		ProviderTimeout:    time.Second,
		PaymentLinkBaseURL: gateway.DefaultPaymentLinkBase,
		EmailFromName:      "PayWise Team",
		CurrencySymbol:     "₹",
	}
}

func TestNew_MockProvidersWithoutRedis(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig())
	require.NoError(t, err)
	t.Cleanup(app.Close)

	assert.Nil(t, app.Redis)
	assert.Empty(t, app.Providers.Stats)
	assert.Equal(t, "mock", app.Refresher.Provider())
	require.NoError(t, app.DB.Ping(ctx))

	created, err := app.Clients.Create(ctx, model.ClientCreateRequest{
		Name:  "Asha",
		Email: "asha@example.com",
		Phone: "+919800000001",
	})
	require.NoError(t, err)
	assert.Empty(t, created.Warnings)
	assert.True(t, created.Client.HasInsights())

	res, err := app.Payments.Request(ctx, model.PaymentCreateRequest{
		ClientID:            created.Client.ID,
		Amount:              1500,
		Description:         "Invoice 42",
		DueDate:             time.Now().Add(72 * time.Hour),
		CommunicationMethod: model.CommunicationBoth,
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusLinkSent, res.Payment.Status)
	assert.True(t, strings.HasPrefix(res.Payment.PaymentLinkURL, gateway.DefaultPaymentLinkBase+"?ref="))
	assert.Equal(t, "Payment link created for Asha. SMS sent. Email sent.", res.Message)
}

func TestNew_PublishesEventsWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	require.NotNil(t, app.Redis)

	_, err = app.Clients.Create(ctx, model.ClientCreateRequest{Name: "Ravi", Email: "ravi@example.com", Phone: "+919800000002"})
	require.NoError(t, err)

	entries, err := mr.Stream(cfg.EventsStream)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestNewProviders_LiveWhenConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.SMSProviderURL = "http://sms.local"
	cfg.ElasticEmailAPIKey = "key"
	cfg.ElasticEmailFromEmail = "billing@example.com"
	cfg.ElasticEmailBaseURL = "http://email.local"
	cfg.PaymentGatewayURL = "http://links.local"

	p := NewProviders(cfg)

	assert.IsType(t, &gateway.OperatorClient{}, p.SMS)
	assert.IsType(t, &gateway.ElasticEmailClient{}, p.Email)
	assert.IsType(t, &gateway.PaymentLinkClient{}, p.Links)
	require.Len(t, p.Stats, 3)
	assert.Equal(t, "http://links.local", p.Stats[2].Stats().URL)
}

func TestNewProviders_EmailNeedsSender(t *testing.T) {
	cfg := testConfig()
	cfg.ElasticEmailAPIKey = "key"

	p := NewProviders(cfg)

	assert.IsType(t, &gateway.MockEmailSender{}, p.Email)
	assert.Empty(t, p.Stats)
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.DBDriver = "mysql"

	_, err := OpenDB(context.Background(), cfg)
	assert.Error(t, err)
}
