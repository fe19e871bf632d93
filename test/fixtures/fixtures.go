package fixtures

import (
	"time"

	"github.com/nimasrn/paywise/internal/model"
)

var (
	ClientAsha = model.ClientCreateRequest{
		Name:  "Asha Verma",
		Email: "asha@example.com",
		Phone: "+919800000001",
	}

	ClientRavi = model.ClientCreateRequest{
		Name:  "Ravi Kumar",
		Email: "ravi@example.com",
		Phone: "+919800000002",
	}
)

var (
	InvalidClientRequests = map[string]model.ClientCreateRequest{
		"missing name":  {Email: "a@example.com", Phone: "+919800000003"},
		"missing email": {Name: "A", Phone: "+919800000003"},
		"missing phone": {Name: "A", Email: "a@example.com"},
		"blank name":    {Name: "   ", Email: "a@example.com", Phone: "+919800000003"},
	}

	AllPaymentStatuses = []model.PaymentStatus{
		model.PaymentStatusPendingLink,
		model.PaymentStatusLinkSent,
		model.PaymentStatusPaid,
		model.PaymentStatusFailed,
		model.PaymentStatusExpired,
	}
)

func NewPaymentCreateRequest(clientID string, amount float64, due time.Time, method model.CommunicationMethod) model.PaymentCreateRequest {
	return model.PaymentCreateRequest{
		ClientID:            clientID,
		Amount:              amount,
		Description:         "Invoice for services",
		DueDate:             due,
		CommunicationMethod: method,
	}
}

// PaymentBody is the JSON body of POST /api/v1/payments with a date-only due date.
func PaymentBody(clientID string, amount float64, due time.Time, method model.CommunicationMethod) map[string]any {
	return map[string]any{
		"client_id":            clientID,
		"amount":               amount,
		"description":          "Invoice for services",
		"due_date":             due.Format("2006-01-02"),
		"communication_method": method,
	}
}

func NewTransactionCreateRequest(amount float64, status model.TransactionStatus, description string) model.TransactionCreateRequest {
	return model.TransactionCreateRequest{
		Amount:      amount,
		Status:      status,
		Description: description,
	}
}
