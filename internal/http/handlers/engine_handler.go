// README: Stateless engine handlers; evaluate caller-supplied data without storage.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetdispatch/internal/modules/scheduling"
)

type EngineHandler struct {
	dispatch DispatchService
}

func NewEngineHandler(svc DispatchService) *EngineHandler {
	return &EngineHandler{dispatch: svc}
}

func (h *EngineHandler) TravelTime(c *gin.Context) {
	origin := c.Query("origin")
	destination := c.Query("destination")
	if origin == "" || destination == "" {
		writeError(c, http.StatusBadRequest, "origin and destination are required")
		return
	}
	e := h.dispatch.Engine()
	writeJSON(c, http.StatusOK, map[string]any{
		"origin":            origin,
		"destination":       destination,
		"travel_minutes":    e.EstimateTravelTime(origin, destination),
		"wait_minutes":      e.WaitTime(origin),
		"tolerance_minutes": e.Tolerance(origin),
	})
}

type suggestReq struct {
	Booking  scheduling.Booking  `json:"booking"`
	Snapshot scheduling.Snapshot `json:"snapshot"`
}

func (h *EngineHandler) Suggest(c *gin.Context) {
	var req suggestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Booking.PickupDate == "" || req.Booking.PickupTime == "" {
		writeError(c, http.StatusBadRequest, "booking pickup_date and pickup_time are required")
		return
	}
	writeJSON(c, http.StatusOK, h.dispatch.SuggestFor(req.Booking, req.Snapshot))
}

type conflictsReq struct {
	Bookings []scheduling.Booking `json:"bookings"`
}

func (h *EngineHandler) Conflicts(c *gin.Context) {
	var req conflictsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	writeJSON(c, http.StatusOK, h.dispatch.Engine().DetectScheduleConflicts(req.Bookings))
}
