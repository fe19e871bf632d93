package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/pkg/logger"
	"github.com/nimasrn/paywise/pkg/prom"
	"github.com/valyala/fasthttp"
)

const (
	DefaultElasticEmailURL = "https://api.elasticemail.com"
	elasticEmailSendPath   = "/v4/emails/transactional"
	elasticEmailKeyHeader  = "X-ElasticEmail-ApiKey"
)

var htmlTag = regexp.MustCompile(`<[^>]*>?`)

type elasticEmailPayload struct {
	Recipients elasticEmailRecipients `json:"Recipients"`
	Content    elasticEmailContent    `json:"Content"`
	Options    elasticEmailOptions    `json:"Options"`
}

type elasticEmailRecipients struct {
	To []string `json:"To"`
}

type elasticEmailContent struct {
	Body    []elasticEmailBody `json:"Body"`
	From    string             `json:"From"`
	Subject string             `json:"Subject"`
}

type elasticEmailBody struct {
	ContentType string `json:"ContentType"`
	Content     string `json:"Content"`
	Charset     string `json:"Charset"`
}

type elasticEmailOptions struct {
	IsTransactional bool `json:"IsTransactional"`
}

type ElasticEmailConfig struct {
	Config
	APIKey    string
	FromEmail string
}

type ElasticEmailClient struct {
	*httpClient
	apiKey    string
	fromEmail string
}

func NewElasticEmailClient(cfg ElasticEmailConfig) *ElasticEmailClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultElasticEmailURL
	}
	return &ElasticEmailClient{
		httpClient: newHTTPClient("elastic-email", cfg.Config),
		apiKey:     cfg.APIKey,
		fromEmail:  cfg.FromEmail,
	}
}

func (c *ElasticEmailClient) Send(ctx context.Context, email model.Email) error {
	start := time.Now()
	err := c.send(ctx, email)
	prom.ObserveNotification(ChannelEmail, err == nil, time.Since(start).Seconds())
	if err != nil {
		logger.Warn("Email send failed", "to", email.To, "subject", email.Subject, "error", err)
		return err
	}
	logger.Info("Email sent", "to", email.To, "subject", email.Subject)
	return nil
}

func (c *ElasticEmailClient) send(ctx context.Context, email model.Email) error {
	body, err := json.Marshal(c.payload(email))
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}
	headers := map[string]string{elasticEmailKeyHeader: c.apiKey}
	if _, err := c.doRequest(ctx, fasthttp.MethodPost, elasticEmailSendPath, headers, body); err != nil {
		return fmt.Errorf("elastic email: %w", err)
	}
	return nil
}

func (c *ElasticEmailClient) payload(email model.Email) elasticEmailPayload {
	return elasticEmailPayload{
		Recipients: elasticEmailRecipients{To: []string{email.To}},
		Content: elasticEmailContent{
			Body: []elasticEmailBody{
				{ContentType: "HTML", Content: email.HTMLBody, Charset: "utf-8"},
				{ContentType: "PlainText", Content: htmlTag.ReplaceAllString(email.HTMLBody, ""), Charset: "utf-8"},
			},
			From:    FromAddress(email.FromName, c.fromEmail),
			Subject: email.Subject,
		},
		Options: elasticEmailOptions{IsTransactional: true},
	}
}

// FromAddress renders `Name <addr>`, or the bare address when name is empty.
func FromAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return fmt.Sprintf("%s <%s>", name, addr)
}
