package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
	"github.com/valyala/fasthttp"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	smsSendPath     = "/api/v1/sms/send"
	defaultPriority = "normal"
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
	StatusPending   DeliveryStatus = "PENDING"
)

type SendRequest struct {
	MessageID   string `json:"message_id"`
	PhoneNumber string `json:"phone_number"`
	Content     string `json:"content"`
	Priority    string `json:"priority"`
}

type SendResponse struct {
	MessageID   string         `json:"message_id"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	OperatorID  string         `json:"operator_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// OperatorClient sends SMS through the operator HTTP API. There is no retry:
// a failed send is reported once and the caller records it as a warning.
type OperatorClient struct {
	*httpClient
}

func NewOperatorClient(cfg Config) *OperatorClient {
	return &OperatorClient{httpClient: newHTTPClient("sms-operator", cfg)}
}

func (c *OperatorClient) Send(ctx context.Context, phone, message string) error {
	start := time.Now()
	resp, err := c.send(ctx, &SendRequest{
		MessageID:   uuid.NewString(),
		PhoneNumber: phone,
		Content:     message,
		Priority:    defaultPriority,
	})
	prom.ObserveNotification(ChannelSMS, err == nil, time.Since(start).Seconds())
	if err != nil {
		logger.Warn("SMS send failed", "phone", phone, "error", err)
		return err
	}

	logger.Info("SMS sent", "phone", phone, "message_id", resp.MessageID, "operator_id", resp.OperatorID)
	return nil
}

func (c *OperatorClient) send(ctx context.Context, req *SendRequest) (*SendResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	respBody, err := c.doRequest(ctx, fasthttp.MethodPost, smsSendPath, nil, body)
	if err != nil {
		return nil, err
	}

	var resp SendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Status != StatusDelivered {
		return &resp, fmt.Errorf("sms not delivered: status=%s code=%s: %s", resp.Status, resp.ErrorCode, resp.ErrorMsg)
	}
	return &resp, nil
}
