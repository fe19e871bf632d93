package handlers

import (
	"context"
	"sort"

	"github.com/fasthttp/router"
	gateway "github.com/nimasrn/paywise/internal/gateways"
	xhttp "github.com/nimasrn/paywise/pkg/http"
)

// HealthCheck probes one dependency, nil means healthy.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks    map[string]HealthCheck
	providers []gateway.StatsReporter
}

type healthResponse struct {
	Status    string                  `json:"status"`
	Checks    map[string]string       `json:"checks,omitempty"`
	Providers []gateway.ProviderStats `json:"providers,omitempty"`
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(checks map[string]HealthCheck, providers ...gateway.StatsReporter) *HealthHandler {
	return &HealthHandler{
		checks:    checks,
		providers: providers,
	}
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	resp := healthResponse{Status: "ok"}

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	for _, p := range h.providers {
		resp.Providers = append(resp.Providers, p.Stats())
	}
	sort.Slice(resp.Providers, func(i, j int) bool { return resp.Providers[i].Name < resp.Providers[j].Name })

	status := xhttp.StatusOK
	if resp.Status != "ok" {
		status = xhttp.StatusServiceUnavailable
	}
	writeJSON(ctx, status, envelope{Success: status == xhttp.StatusOK, Data: resp})
}
