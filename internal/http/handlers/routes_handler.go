// README: Route override handler.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdispatch/internal/modules/routes"
)

type RouteUpdater interface {
	Upsert(ctx context.Context, e routes.Entry) error
}

type RouteHandler struct {
	routes RouteUpdater
}

func NewRouteHandler(svc RouteUpdater) *RouteHandler {
	return &RouteHandler{routes: svc}
}

func (h *RouteHandler) Put(c *gin.Context) {
	var req routes.Entry
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.routes.Upsert(c.Request.Context(), req); err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, req)
}
