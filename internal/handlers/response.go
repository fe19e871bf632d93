package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/paywise/internal/services"
	xhttp "github.com/nimasrn/paywise/pkg/http"
	"github.com/nimasrn/paywise/pkg/logger"
)

// envelope is the body shape of every API response.
type envelope struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeData(ctx *xhttp.RequestCtx, status int, data any, warnings []string) {
	writeJSON(ctx, status, envelope{Success: true, Data: data, Warnings: warnings})
}

func writeMessage(ctx *xhttp.RequestCtx, status int, data any, msg string, warnings []string) {
	writeJSON(ctx, status, envelope{Success: true, Data: data, Message: msg, Warnings: warnings})
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, envelope{Success: false, Error: msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	var (
		providerErr *services.ProviderError
		refreshErr  *services.AIRefreshError
	)
	switch {
	case errors.Is(err, services.ErrValidation):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.As(err, &providerErr):
		logger.Warn("provider call failed", "provider", providerErr.Provider, "error", providerErr.Err)
		writeError(ctx, xhttp.StatusBadGateway, err.Error())
	case errors.As(err, &refreshErr):
		logger.Error("ai refresh failed", "client_id", refreshErr.ClientID, "error", refreshErr.Err)
		writeError(ctx, xhttp.StatusInternalServerError, err.Error())
	default:
		logger.Error("request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

func pathParam(ctx *xhttp.RequestCtx, key string) string {
	v, _ := ctx.UserValue(key).(string)
	return strings.TrimSpace(v)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
