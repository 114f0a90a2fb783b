package waitlist

import (
	"net/http"
	"strconv"

	"bookwise/internal/api"
	"bookwise/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Join godoc
// @Summary      Join waitlist
// @Description  Appends the user to the end of the service's queue.
// @Tags         waitlist
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        serviceID  path      int          true  "Service ID"
// @Param        entry      body      JoinRequest  true  "Waitlist entry"
// @Success      201        {object}  Entry
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /services/{serviceID}/waitlist [post]
func (h *Handler) Join(c *gin.Context) {
	orgID, ok := auth.GetOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "organization not resolved"})
		return
	}

	serviceID, err := strconv.ParseInt(c.Param("serviceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid service ID"})
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	entry, err := h.service.Join(c.Request.Context(), orgID, serviceID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Leave godoc
// @Summary      Leave waitlist
// @Description  Removes the entry and closes the gap in the queue.
// @Tags         waitlist
// @Security     BearerAuth
// @Produce      json
// @Param        entryID  path      int  true  "Waitlist entry ID"
// @Success      200      {object}  api.MessageResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /waitlist/{entryID} [delete]
func (h *Handler) Leave(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid entry ID"})
		return
	}

	if err := h.service.Leave(c.Request.Context(), orgID, entryID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Removed from waitlist"})
}

// Reorder godoc
// @Summary      Reorder waitlist entry
// @Description  Moves the entry to the given position and shifts its neighbours.
// @Tags         waitlist
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        entryID   path      int             true  "Waitlist entry ID"
// @Param        position  body      ReorderRequest  true  "Target position"
// @Success      200       {object}  api.MessageResponse
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /waitlist/{entryID}/position [put]
func (h *Handler) Reorder(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid entry ID"})
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.Reorder(c.Request.Context(), orgID, entryID, req.Position); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Waitlist entry moved"})
}

// Position godoc
// @Summary      My waitlist position
// @Tags         waitlist
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {object}  PositionResponse
// @Router       /services/{serviceID}/waitlist/position [get]
func (h *Handler) Position(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	serviceID, err := strconv.ParseInt(c.Param("serviceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid service ID"})
		return
	}

	position, err := h.service.PositionOf(c.Request.Context(), serviceID, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, PositionResponse{Position: position})
}

// Notify godoc
// @Summary      Notify waitlist entry
// @Description  Marks the entry as notified of an open spot; the claim expires after 24 hours unless overridden.
// @Tags         waitlist
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        entryID  path      int            true   "Waitlist entry ID"
// @Param        notify   body      NotifyRequest  false  "Expiry override"
// @Success      200      {object}  Entry
// @Failure      404      {object}  api.ErrorResponse
// @Router       /waitlist/{entryID}/notify [post]
func (h *Handler) Notify(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid entry ID"})
		return
	}

	var req NotifyRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := h.service.Notify(c.Request.Context(), orgID, entryID, req.ExpiresAt)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListByService godoc
// @Summary      List waitlist for a service
// @Tags         waitlist
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {array}   Entry
// @Failure      404        {object}  api.ErrorResponse
// @Router       /services/{serviceID}/waitlist [get]
func (h *Handler) ListByService(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	serviceID, err := strconv.ParseInt(c.Param("serviceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid service ID"})
		return
	}

	entries, err := h.service.ListByService(c.Request.Context(), orgID, serviceID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
