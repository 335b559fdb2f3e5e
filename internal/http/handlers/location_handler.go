// README: Driver position reports and the customer tracking view.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"parcelbid/internal/http/middleware"
	"parcelbid/internal/modules/location"
	"parcelbid/internal/types"
)

type LocationHandler struct {
	locations *location.Service
}

func NewLocationHandler(svc *location.Service) *LocationHandler {
	return &LocationHandler{locations: svc}
}

type reportLocationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *LocationHandler) Report(c *gin.Context) {
	var req reportLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.locations.Report(c.Request.Context(), location.ReportCommand{
		OrderID:  types.ID(c.Param("id")),
		DriverID: types.ID(middleware.CallerUID(c)),
		Position: types.Point{Lat: req.Lat, Lng: req.Lng},
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, u)
}

func (h *LocationHandler) Tracking(c *gin.Context) {
	t, err := h.locations.Tracking(c.Request.Context(), types.ID(c.Param("id")), types.ID(middleware.CallerUID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}
