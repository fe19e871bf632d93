package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/valyala/fasthttp"
)

const paymentLinkPath = "/api/v1/payment-links"

var ErrEmptyLink = errors.New("payment gateway returned an empty link")

type PaymentLinkClient struct {
	*httpClient
}

func NewPaymentLinkClient(cfg Config) *PaymentLinkClient {
	return &PaymentLinkClient{httpClient: newHTTPClient("payment-gateway", cfg)}
}

func (c *PaymentLinkClient) Create(ctx context.Context, req model.PaymentLinkRequest) (*model.PaymentLink, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.doRequest(ctx, fasthttp.MethodPost, paymentLinkPath, nil, body)
	if err != nil {
		logger.Error("Payment link creation failed", "customer_id", req.CustomerID, "error", err)
		return nil, err
	}

	var link model.PaymentLink
	if err := json.Unmarshal(respBody, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if link.URL == "" {
		return nil, ErrEmptyLink
	}

	logger.Debug("Payment link created", "customer_id", req.CustomerID, "url", link.URL)
	return &link, nil
}
