package main

import (
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DeliveryStatus mirrors the operator's SMS delivery states.
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
)

type SendSMSRequest struct {
	MessageID   string `json:"message_id" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Priority    string `json:"priority"`
}

type SendSMSResponse struct {
	MessageID   string         `json:"message_id"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	OperatorID  string         `json:"operator_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

// EmailRequest is the subset of the Elastic Email v4 transactional payload
// the sandbox reads.
type EmailRequest struct {
	Recipients struct {
		To []string `json:"To" binding:"required,min=1"`
	} `json:"Recipients"`
	Content struct {
		Body []struct {
			ContentType string `json:"ContentType"`
			Content     string `json:"Content"`
		} `json:"Body"`
		From    string `json:"From" binding:"required"`
		Subject string `json:"Subject" binding:"required"`
	} `json:"Content"`
}

type EmailResponse struct {
	TransactionID string `json:"TransactionID"`
	MessageID     string `json:"MessageID"`
}

type PaymentLinkRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"required"`
	CustomerID  string  `json:"customer_id" binding:"required"`
}

type PaymentLinkResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// OutboxEntry records one notification the sandbox accepted.
type OutboxEntry struct {
	Channel   string    `json:"channel"`
	To        string    `json:"to"`
	Subject   string    `json:"subject,omitempty"`
	Content   string    `json:"content"`
	Delivered bool      `json:"delivered"`
	At        time.Time `json:"at"`
}

type Options struct {
	DeliveryRate float64
	MinDelay     time.Duration
	MaxDelay     time.Duration
	EmailAPIKey  string // empty accepts any key
	LinkBaseURL  string
}

// Sandbox stands in for the SMS operator, Elastic Email and the payment
// gateway during local development.
type Sandbox struct {
	opts       Options
	operatorID string

	mu     sync.Mutex
	rng    *rand.Rand
	outbox []OutboxEntry
	links  map[string]PaymentLinkRequest
}

func NewSandbox(opts Options) *Sandbox {
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if opts.LinkBaseURL == "" {
		opts.LinkBaseURL = "http://localhost:8081/pay"
	}
	return &Sandbox{
		opts:       opts,
		operatorID: "SANDBOX_" + uuid.New().String()[:8],
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		links:      make(map[string]PaymentLinkRequest),
	}
}

func (s *Sandbox) randomDelay() time.Duration {
	delta := s.opts.MaxDelay - s.opts.MinDelay
	if delta <= 0 {
		return s.opts.MinDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.MinDelay + time.Duration(s.rng.Int63n(int64(delta)))
}

func (s *Sandbox) shouldDeliver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < s.opts.DeliveryRate
}

func (s *Sandbox) record(e OutboxEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, e)
}

func (s *Sandbox) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	time.Sleep(s.randomDelay())

	resp := SendSMSResponse{
		MessageID:   req.MessageID,
		OperatorID:  s.operatorID,
		ProcessedAt: time.Now(),
	}
	delivered := s.shouldDeliver()
	if delivered {
		now := time.Now()
		resp.Status = StatusDelivered
		resp.DeliveredAt = &now
		log.Info().Str("message_id", req.MessageID).Str("phone", req.PhoneNumber).Msg("SMS delivered")
	} else {
		resp.Status = StatusFailed
		resp.ErrorCode = "NETWORK_ERROR"
		resp.ErrorMsg = "Network connectivity issue with operator"
		log.Warn().Str("message_id", req.MessageID).Str("phone", req.PhoneNumber).Msg("SMS delivery failed")
	}
	s.record(OutboxEntry{Channel: "sms", To: req.PhoneNumber, Content: req.Content, Delivered: delivered, At: resp.ProcessedAt})

	// 202: accepted but not delivered, as the real operator answers
	status := http.StatusOK
	if !delivered {
		status = http.StatusAccepted
	}
	c.JSON(status, resp)
}

func (s *Sandbox) SendEmail(c *gin.Context) {
	if key := s.opts.EmailAPIKey; key != "" && c.GetHeader("X-ElasticEmail-ApiKey") != key {
		c.JSON(http.StatusUnauthorized, gin.H{"Error": "Access denied"})
		return
	}

	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"Error": err.Error()})
		return
	}

	var html string
	for _, b := range req.Content.Body {
		if strings.EqualFold(b.ContentType, "HTML") {
			html = b.Content
		}
	}
	now := time.Now()
	for _, to := range req.Recipients.To {
		s.record(OutboxEntry{Channel: "email", To: to, Subject: req.Content.Subject, Content: html, Delivered: true, At: now})
	}
	log.Info().Strs("to", req.Recipients.To).Str("subject", req.Content.Subject).Msg("Email accepted")

	c.JSON(http.StatusOK, EmailResponse{TransactionID: uuid.NewString(), MessageID: uuid.NewString()})
}

func (s *Sandbox) CreatePaymentLink(c *gin.Context) {
	var req PaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.links[id] = req
	s.mu.Unlock()

	log.Info().Str("link_id", id).Str("customer_id", req.CustomerID).Float64("amount", req.Amount).Msg("Payment link created")
	c.JSON(http.StatusCreated, PaymentLinkResponse{ID: id, URL: s.opts.LinkBaseURL + "/" + id})
}

func (s *Sandbox) GetPaymentLink(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	req, ok := s.links[id]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment link not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "amount": req.Amount, "description": req.Description, "customer_id": req.CustomerID})
}

// Entries returns a copy of the outbox.
func (s *Sandbox) Entries() []OutboxEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]OutboxEntry, len(s.outbox))
	copy(entries, s.outbox)
	return entries
}

func (s *Sandbox) Outbox(c *gin.Context) {
	c.JSON(http.StatusOK, s.Entries())
}

func (s *Sandbox) HealthCheck(c *gin.Context) {
	s.mu.Lock()
	rate := s.opts.DeliveryRate
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"operator_id":   s.operatorID,
		"timestamp":     time.Now(),
		"delivery_rate": rate,
	})
}

// UpdateConfig changes the SMS delivery rate at runtime.
func (s *Sandbox) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	s.mu.Lock()
	if config.DeliveryRate != nil && *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
		s.opts.DeliveryRate = *config.DeliveryRate
		log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
	}
	rate := s.opts.DeliveryRate
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"message": "Configuration updated", "delivery_rate": rate})
}

func SetupRouter(s *Sandbox) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sms/send", s.SendSMS)
		v1.POST("/payment-links", s.CreatePaymentLink)
		v1.GET("/payment-links/:id", s.GetPaymentLink)
		v1.GET("/outbox", s.Outbox)
		v1.GET("/health", s.HealthCheck)
		v1.PUT("/config", s.UpdateConfig)
	}
	router.POST("/v4/emails/transactional", s.SendEmail)
	router.GET("/health", s.HealthCheck)

	return router
}
