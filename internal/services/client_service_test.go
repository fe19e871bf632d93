package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/paywise/internal/insight"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newClientService() (*ClientService, *MockClientRepository, *MockPaymentRepository, *MockRefresher, *MockEventPublisher) {
	clients := new(MockClientRepository)
	payments := new(MockPaymentRepository)
	refresher := new(MockRefresher)
	events := new(MockEventPublisher)
	return NewClientService(clients, payments, refresher, events), clients, payments, refresher, events
}

func sampleInsights() model.Insights {
	return model.Insights{PredictionScore: 20, RiskFactors: "none", PaymentSummary: "pays on time"}
}

func withInsights(c *model.Client, in model.Insights) *model.Client {
	cp := *c
	cp.PredictionScore = &in.PredictionScore
	cp.RiskFactors = &in.RiskFactors
	cp.PaymentSummary = &in.PaymentSummary
	return &cp
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		svc, clients, _, _, _ := newClientService()

		_, err := svc.Create(ctx, model.ClientCreateRequest{Name: "Ada", Email: " ", Phone: "1"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "email is required")
		clients.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("refreshes insights", func(t *testing.T) {
		svc, clients, _, refresher, events := newClientService()
		created := &model.Client{ID: "c1", Name: "Ada", PaymentHistory: model.NoPaymentHistory}
		in := sampleInsights()

		clients.On("Create", ctx, model.ClientCreateRequest{Name: "Ada", Email: "ada@x.io", Phone: "555"}).Return(created, nil)
		events.On("PublishEvent", ctx, eventOfType(model.EventClientCreated)).Return(nil)
		refresher.On("Refresh", ctx, created).Return(in, nil)
		clients.On("SetInsights", ctx, "c1", in).Return(withInsights(created, in), nil)

		res, err := svc.Create(ctx, model.ClientCreateRequest{Name: " Ada ", Email: "ada@x.io", Phone: "555"})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assert.True(t, res.Client.HasInsights())
		assert.Equal(t, 20.0, *res.Client.PredictionScore)
		clients.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("refresh failure is a warning", func(t *testing.T) {
		svc, clients, _, refresher, events := newClientService()
		created := &model.Client{ID: "c1", Name: "Ada"}

		clients.On("Create", ctx, mock.Anything).Return(created, nil)
		events.On("PublishEvent", ctx, mock.Anything).Return(errors.New("redis down"))
		refresher.On("Refresh", ctx, created).Return(model.Insights{}, &insight.RefreshError{ClientID: "c1", Err: errors.New("quota")})

		res, err := svc.Create(ctx, model.ClientCreateRequest{Name: "Ada", Email: "ada@x.io", Phone: "555"})
		require.NoError(t, err)
		assert.Same(t, created, res.Client)
		assert.False(t, res.Client.HasInsights())
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "quota")
		clients.AssertNotCalled(t, "SetInsights", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClientService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, clients, _, _, _ := newClientService()

	clients.On("Get", ctx, "missing").Return(nil, repository.ErrClientNotFound)
	name := "Bob"
	clients.On("Update", ctx, "missing", model.ClientUpdateRequest{Name: &name}).Return(nil, repository.ErrClientNotFound)

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, "missing", model.ClientUpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.RefreshAI(ctx, "missing")
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_UpdateValidation(t *testing.T) {
	svc, clients, _, _, _ := newClientService()
	empty := ""

	_, err := svc.Update(context.Background(), "c1", model.ClientUpdateRequest{Phone: &empty})
	assert.ErrorIs(t, err, ErrValidation)
	clients.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to payments", func(t *testing.T) {
		svc, clients, payments, _, events := newClientService()
		payments.On("DeleteByClient", ctx, "c1").Return(int64(2), nil)
		clients.On("Delete", ctx, "c1").Return(true, nil)
		events.On("PublishEvent", ctx, eventOfType(model.EventClientDeleted)).Return(nil)

		require.NoError(t, svc.Delete(ctx, "c1"))
		payments.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		svc, clients, payments, _, events := newClientService()
		payments.On("DeleteByClient", ctx, "nope").Return(int64(0), nil)
		clients.On("Delete", ctx, "nope").Return(false, nil)

		err := svc.Delete(ctx, "nope")
		assert.ErrorIs(t, err, ErrClientNotFound)
		events.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything)
	})
}

func TestClientService_RefreshAI(t *testing.T) {
	ctx := context.Background()
	c := &model.Client{ID: "c1", Name: "Ada"}

	t.Run("provider failure is returned", func(t *testing.T) {
		svc, clients, _, refresher, _ := newClientService()
		clients.On("Get", ctx, "c1").Return(c, nil)
		refresher.On("Refresh", ctx, c).Return(model.Insights{}, &insight.RefreshError{ClientID: "c1", Err: errors.New("boom")})

		_, err := svc.RefreshAI(ctx, "c1")
		var refreshErr *AIRefreshError
		require.ErrorAs(t, err, &refreshErr)
		assert.Equal(t, "c1", refreshErr.ClientID)
	})

	t.Run("stores insights", func(t *testing.T) {
		svc, clients, _, refresher, _ := newClientService()
		in := sampleInsights()
		clients.On("Get", ctx, "c1").Return(c, nil)
		refresher.On("Refresh", ctx, c).Return(in, nil)
		clients.On("SetInsights", ctx, "c1", in).Return(withInsights(c, in), nil)

		got, err := svc.RefreshAI(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "pays on time", *got.PaymentSummary)
	})
}

func TestClientService_AddTransaction(t *testing.T) {
	ctx := context.Background()
	svc, clients, _, refresher, _ := newClientService()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.AddTransaction(ctx, "c1", model.TransactionCreateRequest{Amount: 10, Status: "lost"})
	assert.ErrorIs(t, err, ErrValidation)

	updated := &model.Client{ID: "c1", PaymentHistory: "Date: 2024-03-10, Amount: 10, Status: paid, Desc: cash"}
	clients.On("AppendTransaction", ctx, "c1", &model.Transaction{
		Amount:      10,
		Date:        now,
		Status:      model.TransactionStatusPaid,
		Description: "cash",
	}).Return(updated, nil)
	refresher.On("Refresh", ctx, updated).Return(model.Insights{}, errors.New("offline"))

	res, err := svc.AddTransaction(ctx, "c1", model.TransactionCreateRequest{Amount: 10, Status: model.TransactionStatusPaid, Description: " cash "})
	require.NoError(t, err)
	assert.Equal(t, updated, res.Client)
	assert.Len(t, res.Warnings, 1)
}

func TestClientService_NilPublisher(t *testing.T) {
	ctx := context.Background()
	clients := new(MockClientRepository)
	payments := new(MockPaymentRepository)
	svc := NewClientService(clients, payments, new(MockRefresher), nil)

	payments.On("DeleteByClient", ctx, "c1").Return(int64(0), nil)
	clients.On("Delete", ctx, "c1").Return(true, nil)

	assert.NoError(t, svc.Delete(ctx, "c1"))
}
