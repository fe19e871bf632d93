package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func TestElasticEmailClient_Send(t *testing.T) {
	c := NewElasticEmailClient(ElasticEmailConfig{
		Config:    Config{BaseURL: testBaseURL, Timeout: time.Second},
		APIKey:    "secret",
		FromEmail: "billing@paywise.test",
	})

	var (
		got    elasticEmailPayload
		apiKey string
	)
	serveInmemory(t, c.httpClient, func(ctx *fasthttp.RequestCtx) {
		assert.Equal(t, elasticEmailSendPath, string(ctx.Path()))
		apiKey = string(ctx.Request.Header.Peek(elasticEmailKeyHeader))
		assert.NoError(t, json.Unmarshal(ctx.PostBody(), &got))
		ctx.SetBodyString(`{"TransactionID":"t-1","MessageID":"m-1"}`)
	})

	err := c.Send(context.Background(), model.Email{
		To:       "ada@example.com",
		Subject:  "Payment Request: Invoice 7",
		HTMLBody: "<p>Dear Ada</p><p>If you have any questions, please contact us.</p>",
		FromName: "PayWise Team",
	})
	require.NoError(t, err)

	assert.Equal(t, "secret", apiKey)
	assert.Equal(t, []string{"ada@example.com"}, got.Recipients.To)
	assert.Equal(t, "PayWise Team <billing@paywise.test>", got.Content.From)
	assert.Equal(t, "Payment Request: Invoice 7", got.Content.Subject)
	require.Len(t, got.Content.Body, 2)
	assert.Equal(t, "HTML", got.Content.Body[0].ContentType)
	assert.Equal(t, "Dear AdaIf you have any questions, please contact us.", got.Content.Body[1].Content)
	assert.True(t, got.Options.IsTransactional)
}

func TestElasticEmailClient_SendRejected(t *testing.T) {
	c := NewElasticEmailClient(ElasticEmailConfig{
		Config:    Config{BaseURL: testBaseURL, Timeout: time.Second},
		APIKey:    "bad",
		FromEmail: "billing@paywise.test",
	})
	serveInmemory(t, c.httpClient, func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString(`{"Error":"Invalid API key"}`)
	})

	err := c.Send(context.Background(), model.Email{To: "ada@example.com", Subject: "s", HTMLBody: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestNewElasticEmailClient_DefaultBaseURL(t *testing.T) {
	c := NewElasticEmailClient(ElasticEmailConfig{APIKey: "k", FromEmail: "f@x.io"})
	assert.Equal(t, DefaultElasticEmailURL, c.Stats().URL)
}

func TestFromAddress(t *testing.T) {
	assert.Equal(t, "a@b.io", FromAddress("", "a@b.io"))
	assert.Equal(t, "Team <a@b.io>", FromAddress("Team", "a@b.io"))
}
