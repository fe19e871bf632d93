package gateway

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const testBaseURL = "http://provider.test"

// serveInmemory points c at an in-memory fasthttp server running handler.
func serveInmemory(t *testing.T, c *httpClient, handler fasthttp.RequestHandler) {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := &fasthttp.Server{Handler: handler}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})
	c.client.Dial = func(string) (net.Conn, error) { return ln.Dial() }
}

func TestProviderMetrics_RecordSuccess(t *testing.T) {
	metrics := NewProviderMetrics()

	metrics.RecordSuccess(100)
	metrics.RecordSuccess(200)

	assert.Equal(t, int64(2), metrics.TotalRequests.Load())
	assert.Equal(t, int64(2), metrics.SuccessfulReqs.Load())
	assert.Equal(t, int64(0), metrics.FailedReqs.Load())
	assert.Equal(t, float64(1.0), metrics.SuccessRate())
	assert.Equal(t, int64(150), metrics.AvgLatencyMs())
}

func TestProviderMetrics_RecordFailure(t *testing.T) {
	metrics := NewProviderMetrics()

	metrics.RecordSuccess(100)
	metrics.RecordFailure()
	metrics.RecordFailure()

	assert.Equal(t, int64(3), metrics.TotalRequests.Load())
	assert.Equal(t, int64(1), metrics.SuccessfulReqs.Load())
	assert.Equal(t, int64(2), metrics.FailedReqs.Load())
	assert.InDelta(t, 0.333, metrics.SuccessRate(), 0.01)
	assert.Equal(t, int32(2), metrics.ConsecutiveFails.Load())
	assert.Equal(t, int64(100), metrics.AvgLatencyMs())
}

func TestProviderMetrics_P95Latency(t *testing.T) {
	metrics := NewProviderMetrics()

	for i := int64(0); i < 100; i++ {
		metrics.RecordSuccess(i * 10)
	}

	p95 := metrics.P95LatencyMs()
	assert.GreaterOrEqual(t, p95, int64(900))
	assert.LessOrEqual(t, p95, int64(990))
}

func TestOperatorClient_Send(t *testing.T) {
	t.Run("delivered", func(t *testing.T) {
		c := NewOperatorClient(Config{BaseURL: testBaseURL, Timeout: time.Second})
		var got SendRequest
		serveInmemory(t, c.httpClient, func(ctx *fasthttp.RequestCtx) {
			assert.Equal(t, smsSendPath, string(ctx.Path()))
			assert.Equal(t, fasthttp.MethodPost, string(ctx.Method()))
			assert.NoError(t, json.Unmarshal(ctx.PostBody(), &got))
			ctx.SetContentType("application/json")
			_ = json.NewEncoder(ctx).Encode(SendResponse{
				MessageID:   got.MessageID,
				Status:      StatusDelivered,
				OperatorID:  "op-1",
				ProcessedAt: time.Now(),
			})
		})

		err := c.Send(context.Background(), "+15550001", "hello")
		require.NoError(t, err)
		assert.Equal(t, "+15550001", got.PhoneNumber)
		assert.Equal(t, "hello", got.Content)
		assert.Equal(t, defaultPriority, got.Priority)
		assert.NotEmpty(t, got.MessageID)
		assert.Equal(t, int64(1), c.Stats().SuccessfulReqs)
	})

	t.Run("operator reports failure", func(t *testing.T) {
		c := NewOperatorClient(Config{BaseURL: testBaseURL, Timeout: time.Second})
		serveInmemory(t, c.httpClient, func(ctx *fasthttp.RequestCtx) {
			_ = json.NewEncoder(ctx).Encode(SendResponse{
				Status:    StatusFailed,
				ErrorCode: "NETWORK_ERROR",
				ErrorMsg:  "temporary network failure",
			})
		})

		err := c.Send(context.Background(), "+15550001", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NETWORK_ERROR")
	})

	t.Run("http error", func(t *testing.T) {
		c := NewOperatorClient(Config{BaseURL: testBaseURL, Timeout: time.Second})
		serveInmemory(t, c.httpClient, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("boom")
		})

		err := c.Send(context.Background(), "+15550001", "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")

		stats := c.Stats()
		assert.Equal(t, int64(1), stats.FailedReqs)
		assert.Equal(t, int32(1), stats.ConsecutiveFails)
		assert.Equal(t, "sms-operator", stats.Name)
	})
}

func TestNewHTTPClient_DefaultTimeout(t *testing.T) {
	c := newHTTPClient("x", Config{BaseURL: testBaseURL})
	assert.Equal(t, DefaultTimeout, c.timeout)
}
