package insight

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProviderStub struct {
	mock.Mock
}

func (m *MockProviderStub) Name() string { return "stub" }

func (m *MockProviderStub) Predict(ctx context.Context, in PredictionInput) (*Prediction, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Prediction), args.Error(1)
}

func (m *MockProviderStub) Summarize(ctx context.Context, in SummaryInput) (*Summary, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Summary), args.Error(1)
}

func testClient(txs ...*model.Transaction) *model.Client {
	return &model.Client{
		ID:             "c1",
		Name:           "Acme",
		Email:          "billing@acme.test",
		Phone:          "+15550100",
		PaymentHistory: model.FormatPaymentHistory(txs),
		Transactions:   txs,
		CreatedAt:      time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	}
}

func fixedRefresher(p Provider) *Refresher {
	r := NewRefresher(p)
	r.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestRefresher_PredictionInput(t *testing.T) {
	r := fixedRefresher(NewMockProvider())

	t.Run("outstanding amount", func(t *testing.T) {
		in := r.PredictionInput(testClient(
			&model.Transaction{Amount: 100, Status: model.TransactionStatusPending},
			&model.Transaction{Amount: 40, Status: model.TransactionStatusOverdue},
			&model.Transaction{Amount: 900, Status: model.TransactionStatusPaid},
		))
		assert.Equal(t, 140.0, in.TransactionAmount)
	})

	t.Run("single pending transaction", func(t *testing.T) {
		in := r.PredictionInput(testClient(&model.Transaction{Amount: 100, Status: model.TransactionStatusPending}))
		assert.Equal(t, 100.0, in.TransactionAmount)
	})

	t.Run("defaults when nothing outstanding", func(t *testing.T) {
		in := r.PredictionInput(testClient(&model.Transaction{Amount: 900, Status: model.TransactionStatusPaid}))
		assert.Equal(t, float64(DefaultTransactionAmount), in.TransactionAmount)

		in = r.PredictionInput(testClient())
		assert.Equal(t, float64(DefaultTransactionAmount), in.TransactionAmount)
		assert.Equal(t, model.NoPaymentHistory, in.PaymentHistory)
	})

	t.Run("due date and details", func(t *testing.T) {
		in := r.PredictionInput(testClient())
		assert.Equal(t, "2024-07-01T00:00:00Z", in.DueDate)
		assert.Equal(t, "Client since 2024-01-15. Email: billing@acme.test, Phone: +15550100", in.ClientDetails)
		assert.Equal(t, "c1", in.ClientID)
	})
}

func TestRefresher_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("merges both results and clamps the score", func(t *testing.T) {
		p := new(MockProviderStub)
		p.On("Predict", mock.Anything, mock.AnythingOfType("PredictionInput")).Return(&Prediction{PredictionScore: 140, RiskFactors: "late"}, nil)
		p.On("Summarize", mock.Anything, SummaryInput{ClientID: "c1", PaymentHistory: model.NoPaymentHistory}).Return(&Summary{Summary: "new"}, nil)

		got, err := fixedRefresher(p).Refresh(ctx, testClient())
		require.NoError(t, err)
		assert.Equal(t, 100.0, got.PredictionScore)
		assert.Equal(t, "late", got.RiskFactors)
		assert.Equal(t, "new", got.PaymentSummary)
		p.AssertExpectations(t)
	})

	t.Run("either failure fails the refresh", func(t *testing.T) {
		cause := errors.New("quota exceeded")
		p := new(MockProviderStub)
		p.On("Predict", mock.Anything, mock.Anything).Return(&Prediction{PredictionScore: 10}, nil)
		p.On("Summarize", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := fixedRefresher(p).Refresh(ctx, testClient())
		var rerr *RefreshError
		require.ErrorAs(t, err, &rerr)
		assert.Equal(t, "c1", rerr.ClientID)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil result is an error", func(t *testing.T) {
		p := new(MockProviderStub)
		p.On("Predict", mock.Anything, mock.Anything).Return(nil, nil)
		p.On("Summarize", mock.Anything, mock.Anything).Return(&Summary{Summary: "x"}, nil).Maybe()

		_, err := fixedRefresher(p).Refresh(ctx, testClient())
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-5))
	assert.Equal(t, 55.5, ClampScore(55.5))
	assert.Equal(t, 100.0, ClampScore(101))
}
