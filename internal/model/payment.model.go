package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type PaymentStatus string

const (
	// PaymentStatusPendingLink is kept for wire compatibility, nothing produces it.
	PaymentStatusPendingLink PaymentStatus = "pending_link"
	PaymentStatusLinkSent    PaymentStatus = "link_sent"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
	PaymentStatusExpired     PaymentStatus = "expired"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPendingLink, PaymentStatusLinkSent, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusExpired:
		return true
	}
	return false
}

// TransactionStatus maps a resolved payment status to the ledger status it
// produces. ok is false for statuses that do not append a transaction.
func (s PaymentStatus) TransactionStatus() (status TransactionStatus, ok bool) {
	switch s {
	case PaymentStatusPaid:
		return TransactionStatusPaid, true
	case PaymentStatusFailed:
		return TransactionStatusFailed, true
	case PaymentStatusPendingLink, PaymentStatusLinkSent, PaymentStatusExpired:
		return "", false
	}
	return "", false
}

type CommunicationMethod string

const (
	CommunicationSMS   CommunicationMethod = "sms"
	CommunicationEmail CommunicationMethod = "email"
	CommunicationBoth  CommunicationMethod = "both"
)

func (m CommunicationMethod) IsValid() bool {
	switch m {
	case CommunicationSMS, CommunicationEmail, CommunicationBoth:
		return true
	}
	return false
}

func (m CommunicationMethod) UsesSMS() bool {
	return m == CommunicationSMS || m == CommunicationBoth
}

func (m CommunicationMethod) UsesEmail() bool {
	return m == CommunicationEmail || m == CommunicationBoth
}

// Payment is a request for money sent to one client. ClientName is a snapshot
// taken at creation and is not updated when the client is renamed.
type Payment struct {
	ID                  string              `json:"id"`
	ClientID            string              `json:"client_id"`
	ClientName          string              `json:"client_name"`
	Amount              float64             `json:"amount"`
	Description         string              `json:"description"`
	Status              PaymentStatus       `json:"status"`
	PaymentLinkURL      string              `json:"payment_link_url,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	DueDate             time.Time           `json:"due_date"`
	CommunicationMethod CommunicationMethod `json:"communication_method"`
}

type PaymentCreateRequest struct {
	ClientID            string              `json:"client_id"`
	Amount              float64             `json:"amount"`
	Description         string              `json:"description"`
	DueDate             time.Time           `json:"due_date"`
	CommunicationMethod CommunicationMethod `json:"communication_method"`
}

func (p PaymentCreateRequest) Validate() error {
	if p.ClientID == "" {
		return errors.New("client_id is required")
	}
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	if p.DueDate.IsZero() {
		return errors.New("due_date is required")
	}
	if !p.CommunicationMethod.IsValid() {
		return fmt.Errorf("invalid communication_method %q", p.CommunicationMethod)
	}
	return nil
}

type PaymentStatusUpdateRequest struct {
	Status PaymentStatus `json:"status"`
}

func (p PaymentStatusUpdateRequest) Validate() error {
	if p.Status == "" {
		return errors.New("missing status in payload")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid payment status %q", p.Status)
	}
	return nil
}

// PaymentFilter controls List queries.
type PaymentFilter struct {
	ClientID  string          // equals
	Statuses  []PaymentStatus // IN (...)
	DueBefore *time.Time      // due_date < value
}

func (f PaymentFilter) Validate() error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return fmt.Errorf("invalid payment status %q", s)
		}
	}
	return nil
}

// NotificationResult is the outcome of one notification channel.
type NotificationResult struct {
	Channel string `json:"channel"`
	Sent    bool   `json:"sent"`
	Error   string `json:"error,omitempty"`
}
