package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusPaid    TransactionStatus = "paid"
	TransactionStatusFailed  TransactionStatus = "failed"
	TransactionStatusOverdue TransactionStatus = "overdue"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusPaid, TransactionStatusFailed, TransactionStatusOverdue:
		return true
	}
	return false
}

// Outstanding reports whether the amount is still owed.
func (s TransactionStatus) Outstanding() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusOverdue:
		return true
	case TransactionStatusPaid, TransactionStatusFailed:
		return false
	}
	return false
}

type Transaction struct {
	ID          string            `json:"id"`
	Amount      float64           `json:"amount"`
	Date        time.Time         `json:"date"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
}

// TransactionCreateRequest appends a manual ledger entry to a client.
type TransactionCreateRequest struct {
	Amount      float64           `json:"amount"`
	Date        *time.Time        `json:"date,omitempty"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
}

func (p TransactionCreateRequest) Validate() error {
	if err := validateAmount(p.Amount); err != nil {
		return err
	}
	if p.Status == "" {
		return errors.New("status is required")
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid transaction status %q", p.Status)
	}
	return nil
}

// validateAmount accepts positive amounts with at most two decimal places,
// the precision of the NUMERIC(14,2) columns.
func validateAmount(amount float64) error {
	if amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if d := decimal.NewFromFloat(amount); d.Exponent() < -2 {
		return errors.New("amount must have at most two decimal places")
	}
	return nil
}

// FormatAmount renders an amount without trailing zeros, 1500 stays "1500"
// and 99.5 stays "99.5".
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// FormatPaymentHistory renders the transactions in stored order, one line each.
func FormatPaymentHistory(txs []*Transaction) string {
	if len(txs) == 0 {
		return NoPaymentHistory
	}
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, fmt.Sprintf("Date: %s, Amount: %s, Status: %s, Desc: %s",
			t.Date.Format(HistoryDateLayout), FormatAmount(t.Amount), t.Status, t.Description))
	}
	return strings.Join(lines, "\n")
}

// OutstandingAmount sums pending and overdue transactions.
func OutstandingAmount(txs []*Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Status.Outstanding() {
			sum = sum.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return sum
}
