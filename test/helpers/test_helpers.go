package helpers

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/repository"
	xhttp "github.com/nimasrn/paywise/pkg/http"
	"github.com/nimasrn/paywise/pkg/pg"
	"github.com/nimasrn/paywise/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// SetupTestDB returns a migrated in-memory sqlite store.
func SetupTestDB(t *testing.T) *pg.DB {
	return repository.NewTestDB(t)
}

// SetupTestRedis starts a miniredis and connects an adapter under a
// connection name unique to the test.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr := miniredis.RunT(t)

	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redis.Close(connName) })

	return mr, adapter
}

// ServeInmemory runs the engine on an in-memory listener and returns a
// client dialing it. Requests may use any host.
func ServeInmemory(t *testing.T, e *xhttp.Engine) *fasthttp.Client {
	require.NoError(t, e.DoRouting())

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = e.Server.Serve(ln) }()
	t.Cleanup(func() {
		_ = e.Server.Shutdown()
		_ = ln.Close()
	})

	return &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	}
}

func CreateTestClient(t *testing.T, db *pg.DB, name, email, phone string) *model.Client {
	c, err := repository.NewClientRepository(db).Create(context.Background(), model.ClientCreateRequest{
		Name:  name,
		Email: email,
		Phone: phone,
	})
	require.NoError(t, err)
	return c
}

func CreateTestPayment(t *testing.T, db *pg.DB, client *model.Client, amount float64, due time.Time, status model.PaymentStatus) *model.Payment {
	p, err := repository.NewPaymentRepository(db).Create(context.Background(), &model.Payment{
		ClientID:            client.ID,
		ClientName:          client.Name,
		Amount:              amount,
		Description:         "Test payment",
		Status:              status,
		PaymentLinkURL:      "https://example.com/payment-link?ref=test",
		DueDate:             due,
		CommunicationMethod: model.CommunicationSMS,
	})
	require.NoError(t, err)
	return p
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
