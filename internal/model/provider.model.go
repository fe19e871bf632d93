package model

// Email is the message handed to the email sender.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	FromName string
}

type PaymentLinkRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CustomerID  string  `json:"customer_id"`
}

type PaymentLink struct {
	URL string `json:"url"`
}
