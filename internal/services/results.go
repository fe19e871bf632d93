package services

import "github.com/nimasrn/paywise/internal/model"

// ClientResult is a client mutation outcome. Warnings lists best-effort steps
// that failed without failing the mutation.
type ClientResult struct {
	Client   *model.Client
	Warnings []string
}

type PaymentRequestResult struct {
	Payment       *model.Payment
	Notifications []model.NotificationResult
	Message       string
	Warnings      []string
}

type PaymentStatusResult struct {
	Payment  *model.Payment
	Client   *model.Client // nil unless a transaction was appended
	Warnings []string
}

type ExpiryResult struct {
	Expired []*model.Payment
}
