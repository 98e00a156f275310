// README: Dispatch handlers over stored bookings (availability, suggestion, assignment, day operations).
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetdispatch/internal/modules/dispatch"
	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

type DispatchService interface {
	Availability(ctx context.Context, bookingID, driverID types.ID) (*dispatch.AvailabilityResult, error)
	Suggest(ctx context.Context, bookingID types.ID) (*dispatch.Suggestion, error)
	Assign(ctx context.Context, cmd dispatch.AssignCommand) (*dispatch.AssignResult, error)
	Unassign(ctx context.Context, bookingID types.ID) error
	BulkUnassign(ctx context.Context, date string) (*dispatch.BulkUnassignResult, error)
	Conflicts(ctx context.Context, date string) (scheduling.ConflictReport, error)
	AutoAssignDay(ctx context.Context, cmd dispatch.AutoAssignCommand) (*dispatch.AutoAssignResult, error)
	SuggestFor(b scheduling.Booking, snap scheduling.Snapshot) *dispatch.Suggestion
	Engine() *scheduling.Engine
}

type DispatchHandler struct {
	dispatch DispatchService
}

func NewDispatchHandler(svc DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatch: svc}
}

func (h *DispatchHandler) Availability(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	driverID := c.Query("driver_id")
	if !isValidID(driverID) {
		writeError(c, http.StatusBadRequest, "missing or invalid driver_id")
		return
	}
	res, err := h.dispatch.Availability(c.Request.Context(), id, types.ID(driverID))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *DispatchHandler) Suggest(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	res, err := h.dispatch.Suggest(c.Request.Context(), id)
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type assignReq struct {
	DriverID string `json:"driver_id"`
	Force    bool   `json:"force"`
}

func (h *DispatchHandler) Assign(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if !isValidID(req.DriverID) {
		writeError(c, http.StatusBadRequest, "missing or invalid driver_id")
		return
	}
	res, err := h.dispatch.Assign(c.Request.Context(), dispatch.AssignCommand{
		BookingID: id,
		DriverID:  types.ID(req.DriverID),
		Force:     req.Force,
	})
	if errors.Is(err, dispatch.ErrNeedsConfirmation) {
		// The caller repeats the request with force=true after showing the messages.
		writeJSON(c, http.StatusConflict, res)
		return
	}
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *DispatchHandler) Unassign(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	if err := h.dispatch.Unassign(c.Request.Context(), id); err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"booking_id": id, "status": scheduling.StatusPending})
}

func (h *DispatchHandler) Conflicts(c *gin.Context) {
	report, err := h.dispatch.Conflicts(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, report)
}

func (h *DispatchHandler) AutoAssign(c *gin.Context) {
	release := false
	if v := c.Query("release_conflicts"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid release_conflicts")
			return
		}
		release = b
	}
	res, err := h.dispatch.AutoAssignDay(c.Request.Context(), dispatch.AutoAssignCommand{
		Date:             c.Query("date"),
		ReleaseConflicts: release,
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *DispatchHandler) BulkUnassign(c *gin.Context) {
	res, err := h.dispatch.BulkUnassign(c.Request.Context(), c.Query("date"))
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func bookingParam(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "missing or invalid booking id")
		return "", false
	}
	return types.ID(id), true
}
