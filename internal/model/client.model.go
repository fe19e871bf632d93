package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NoPaymentHistory is the payment history text of a client without transactions.
const NoPaymentHistory = "No payment history."

// HistoryDateLayout is the date format used when rendering transactions.
const HistoryDateLayout = "2006-01-02"

type Client struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone"`
	PaymentHistory  string         `json:"payment_history"`
	Transactions    []*Transaction `json:"transactions"`
	PredictionScore *float64       `json:"prediction_score,omitempty"`
	RiskFactors     *string        `json:"risk_factors,omitempty"`
	PaymentSummary  *string        `json:"payment_summary,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// HasInsights reports whether an AI refresh has populated the client.
func (c *Client) HasInsights() bool {
	return c.PredictionScore != nil && c.RiskFactors != nil && c.PaymentSummary != nil
}

type ClientCreateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p ClientCreateRequest) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}

// ClientFilter narrows List. Query matches name or email, case-insensitive.
type ClientFilter struct {
	Query string
}

// ClientUpdateRequest is a partial update, nil fields are left untouched.
type ClientUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (p ClientUpdateRequest) Validate() error {
	for field, v := range map[string]*string{"name": p.Name, "email": p.Email, "phone": p.Phone} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%s must not be empty", field)
		}
	}
	return nil
}

// Apply merges the provided fields into c.
func (p ClientUpdateRequest) Apply(c *Client) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
}

// Insights is the output of one AI refresh.
type Insights struct {
	PredictionScore float64 `json:"prediction_score"`
	RiskFactors     string  `json:"risk_factors"`
	PaymentSummary  string  `json:"payment_summary"`
}
