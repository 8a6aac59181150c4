package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/pkg/httpcontext"
	"github.com/sorayamlj/FocusTache/usecase/dashboard"
)

type DashboardHandler struct {
	baseHandler
	service *dashboard.Service
}

func NewDashboardHandler(service *dashboard.Service, adapter *httpcontext.Adapter, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		service:     service,
	}
}

// @Summary Dashboard snapshot
// @Tags dashboard
// @Router /api/v1/dashboard [get]
func (h *DashboardHandler) GetSnapshot(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	snapshot, err := h.service.Snapshot(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, snapshot)
}
