// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdispatch/internal/http/handlers"
	"fleetdispatch/internal/http/middleware"
)

type RouterDeps struct {
	Dispatch handlers.DispatchService
	Routes   handlers.RouteUpdater
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatch)
	api.GET("/bookings/:id/availability", dispatchHandler.Availability)
	api.GET("/bookings/:id/suggestion", dispatchHandler.Suggest)
	api.POST("/bookings/:id/assign", dispatchHandler.Assign)
	api.DELETE("/bookings/:id/assign", dispatchHandler.Unassign)
	api.GET("/schedule/conflicts", dispatchHandler.Conflicts)
	api.POST("/schedule/auto-assign", dispatchHandler.AutoAssign)
	api.POST("/schedule/unassign", dispatchHandler.BulkUnassign)

	engineHandler := handlers.NewEngineHandler(deps.Dispatch)
	api.GET("/travel-time", engineHandler.TravelTime)
	api.POST("/engine/suggest", engineHandler.Suggest)
	api.POST("/engine/conflicts", engineHandler.Conflicts)

	routeHandler := handlers.NewRouteHandler(deps.Routes)
	api.PUT("/routes", routeHandler.Put)

	return r
}
