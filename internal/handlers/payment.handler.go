package handlers

import (
	"context"
	"strings"

	"github.com/fasthttp/router"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/services"
	xhttp "github.com/nimasrn/paywise/pkg/http"
)

type PaymentService interface {
	Request(ctx context.Context, p model.PaymentCreateRequest) (*services.PaymentRequestResult, error)
	Get(ctx context.Context, id string) (*model.Payment, error)
	List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, error)
	UpdateStatus(ctx context.Context, id string, p model.PaymentStatusUpdateRequest) (*services.PaymentStatusResult, error)
	ExpireOverdue(ctx context.Context) (*services.ExpiryResult, error)
	Events(ctx context.Context, id string) ([]*model.PaymentEvent, error)
	Dashboard(ctx context.Context) (*model.Dashboard, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler) {
	e.GET("/payments", h.ListPayments)
	e.POST("/payments", h.CreatePayment)
	e.POST("/payments/expire", h.ExpirePayments)
	e.GET("/payments/{id}", h.GetPayment)
	e.PUT("/payments/{id}/status", h.UpdatePaymentStatus)
	e.GET("/payments/{id}/events", h.ListPaymentEvents)
	e.GET("/dashboard", h.GetDashboard)
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: svc,
	}
}

// createPaymentRequest accepts due_date either as YYYY-MM-DD or RFC3339.
type createPaymentRequest struct {
	ClientID            string                    `json:"client_id"`
	Amount              float64                   `json:"amount"`
	Description         string                    `json:"description"`
	DueDate             string                    `json:"due_date"`
	CommunicationMethod model.CommunicationMethod `json:"communication_method"`
}

type paymentRequestResponse struct {
	*model.Payment
	Notifications []model.NotificationResult `json:"notifications"`
}

type expireResponse struct {
	Count   int              `json:"count"`
	Expired []*model.Payment `json:"expired"`
}

// paymentFilter reads ?status=, a comma separated list of payment statuses.
func paymentFilter(ctx *xhttp.RequestCtx) (model.PaymentFilter, error) {
	var f model.PaymentFilter
	if v := query(ctx, "status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			f.Statuses = append(f.Statuses, model.PaymentStatus(strings.TrimSpace(s)))
		}
	}
	return f, f.Validate()
}

/* --------------------------------- Routes ----------------------------------- */

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx) {
	f, err := paymentFilter(ctx)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
		return
	}

	payments, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeData(ctx, xhttp.StatusOK, payments, nil)
}

func (h *PaymentHandler) CreatePayment(ctx *xhttp.RequestCtx) {
	var req createPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
		return
	}

	p := model.PaymentCreateRequest{
		ClientID:            strings.TrimSpace(req.ClientID),
		Amount:              req.Amount,
		Description:         req.Description,
		CommunicationMethod: req.CommunicationMethod,
	}
	if v := strings.TrimSpace(req.DueDate); v != "" {
		t, err := parseTime(v)
		if err != nil {
			writeError(ctx, xhttp.StatusBadRequest, "invalid due_date; use YYYY-MM-DD or RFC3339")
			return
		}
		p.DueDate = t
	}

	res, err := h.svc.Request(ctx, p)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeMessage(ctx, xhttp.StatusCreated, paymentRequestResponse{
		Payment:       res.Payment,
		Notifications: res.Notifications,
	}, res.Message, res.Warnings)
}

func (h *PaymentHandler) GetPayment(ctx *xhttp.RequestCtx) {
	p, err := h.svc.Get(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, p, nil)
}

func (h *PaymentHandler) UpdatePaymentStatus(ctx *xhttp.RequestCtx) {
	var req model.PaymentStatusUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		writeError(ctx, xhttp.StatusBadRequest, "Missing status in payload")
		return
	}

	res, err := h.svc.UpdateStatus(ctx, pathParam(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, res.Payment, res.Warnings)
}

func (h *PaymentHandler) ListPaymentEvents(ctx *xhttp.RequestCtx) {
	events, err := h.svc.Events(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if events == nil {
		events = []*model.PaymentEvent{}
	}
	writeData(ctx, xhttp.StatusOK, events, nil)
}

func (h *PaymentHandler) ExpirePayments(ctx *xhttp.RequestCtx) {
	res, err := h.svc.ExpireOverdue(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, expireResponse{Count: len(res.Expired), Expired: res.Expired}, nil)
}

func (h *PaymentHandler) GetDashboard(ctx *xhttp.RequestCtx) {
	d, err := h.svc.Dashboard(ctx)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, d, nil)
}
