package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/paywise/internal/model"
	"github.com/nimasrn/paywise/internal/services"
	xhttp "github.com/nimasrn/paywise/pkg/http"
)

type ClientService interface {
	Create(ctx context.Context, p model.ClientCreateRequest) (*services.ClientResult, error)
	Get(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, f model.ClientFilter) ([]*model.Client, error)
	Update(ctx context.Context, id string, p model.ClientUpdateRequest) (*services.ClientResult, error)
	Delete(ctx context.Context, id string) error
	RefreshAI(ctx context.Context, id string) (*model.Client, error)
	AddTransaction(ctx context.Context, id string, p model.TransactionCreateRequest) (*services.ClientResult, error)
}

// ClientPayments lists the payment requests of one client.
type ClientPayments interface {
	ListByClient(ctx context.Context, clientID string) ([]*model.Payment, error)
}

type ClientHandler struct {
	svc      ClientService
	payments ClientPayments
}

func RegisterClientRoutes(e *router.Group, h *ClientHandler) {
	e.GET("/clients", h.ListClients)
	e.POST("/clients", h.CreateClient)
	e.GET("/clients/{id}", h.GetClient)
	e.PUT("/clients/{id}", h.UpdateClient)
	e.DELETE("/clients/{id}", h.DeleteClient)
	e.POST("/clients/{id}/refresh-ai", h.RefreshAI)
	e.POST("/clients/{id}/transactions", h.AddTransaction)
	e.GET("/clients/{id}/payments", h.ListClientPayments)
}

func NewClientHandler(svc ClientService, payments ClientPayments) *ClientHandler {
	return &ClientHandler{
		svc:      svc,
		payments: payments,
	}
}

/* --------------------------------- Routes ----------------------------------- */

func (h *ClientHandler) ListClients(ctx *xhttp.RequestCtx) {
	clients, err := h.svc.List(ctx, model.ClientFilter{Query: query(ctx, "q")})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if clients == nil {
		clients = []*model.Client{}
	}
	writeData(ctx, xhttp.StatusOK, clients, nil)
}

func (h *ClientHandler) CreateClient(ctx *xhttp.RequestCtx) {
	var req model.ClientCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, res.Client, res.Warnings)
}

func (h *ClientHandler) GetClient(ctx *xhttp.RequestCtx) {
	c, err := h.svc.Get(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, c, nil)
}

func (h *ClientHandler) UpdateClient(ctx *xhttp.RequestCtx) {
	var req model.ClientUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.Update(ctx, pathParam(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, res.Client, res.Warnings)
}

func (h *ClientHandler) DeleteClient(ctx *xhttp.RequestCtx) {
	if err := h.svc.Delete(ctx, pathParam(ctx, "id")); err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeMessage(ctx, xhttp.StatusOK, nil, "Client deleted successfully", nil)
}

// RefreshAI fails with 500 when the insight provider fails, unlike the
// mutations which only report a warning.
func (h *ClientHandler) RefreshAI(ctx *xhttp.RequestCtx) {
	c, err := h.svc.RefreshAI(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusOK, c, nil)
}

func (h *ClientHandler) AddTransaction(ctx *xhttp.RequestCtx) {
	var req model.TransactionCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.AddTransaction(ctx, pathParam(ctx, "id"), req)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeData(ctx, xhttp.StatusCreated, res.Client, res.Warnings)
}

func (h *ClientHandler) ListClientPayments(ctx *xhttp.RequestCtx) {
	payments, err := h.payments.ListByClient(ctx, pathParam(ctx, "id"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	if payments == nil {
		payments = []*model.Payment{}
	}
	writeData(ctx, xhttp.StatusOK, payments, nil)
}
