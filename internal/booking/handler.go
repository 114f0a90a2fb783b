package booking

import (
	"net/http"
	"strconv"
	"time"

	"bookwise/internal/api"
	"bookwise/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
	finder  *SlotFinder
}

func NewHandler(service Service, finder *SlotFinder) *Handler {
	return &Handler{service: service, finder: finder}
}

type CancelBookingRequest struct {
	ByStaff bool `json:"by_staff"`
}

type TransitionRequest struct {
	Status Status `json:"status" binding:"required"`
}

// Create godoc
// @Summary      Create booking
// @Description  Validates references, runs conflict detection and persists the booking.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        booking  body      CreateBookingRequest  true  "Booking"
// @Success      201      {object}  CreateBookingResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	orgID, ok := auth.GetOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "organization not resolved"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := h.service.Create(c.Request.Context(), orgID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	b, err := h.service.Get(c.Request.Context(), orgID, bookingID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Update godoc
// @Summary      Update booking
// @Description  Applies the supplied fields; re-runs conflict detection when the window changes.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                   true  "Booking ID"
// @Param        booking    body      UpdateBookingRequest  true  "Fields to update"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [patch]
func (h *Handler) Update(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.Update(c.Request.Context(), orgID, bookingID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Flips the booking to a cancelled status and triggers waitlist auto-promotion for capacity-limited services.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                   true   "Booking ID"
// @Param        cancel     body      CancelBookingRequest  false  "Cancellation actor"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Cancel(c.Request.Context(), orgID, bookingID, req.ByStaff); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking cancelled successfully"})
}

// Transition godoc
// @Summary      Transition booking status
// @Description  Moves the booking along the lifecycle state machine (e.g. confirmed to attended).
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                true  "Booking ID"
// @Param        status     body      TransitionRequest  true  "Target status"
// @Success      200        {object}  api.MessageResponse
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/status [post]
func (h *Handler) Transition(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	bookingID, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.service.Transition(c.Request.Context(), orgID, bookingID, req.Status); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking status updated"})
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Booking
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "user not authenticated"})
		return
	}

	bookings, err := h.service.ListByUser(c.Request.Context(), orgID, userID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// AvailableSlots godoc
// @Summary      Find available time slots
// @Description  Scans the day between 06:00 and 22:00 in 30-minute steps and returns conflict-free slots of the requested duration.
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        date              query     string  true   "Date (YYYY-MM-DD)"
// @Param        duration_minutes  query     int     true   "Requested duration in minutes"
// @Param        service_id        query     int     false  "Service"
// @Param        resource_id       query     int     false  "Resource"
// @Param        staff_id          query     int     false  "Staff member"
// @Success      200  {array}   Slot
// @Failure      400  {object}  api.ErrorResponse
// @Router       /availability/slots [get]
func (h *Handler) AvailableSlots(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date, use YYYY-MM-DD"})
		return
	}

	durationMinutes, err := strconv.Atoi(c.Query("duration_minutes"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid duration_minutes"})
		return
	}

	q := SlotQuery{
		OrganizationID:  orgID,
		Date:            date,
		DurationMinutes: durationMinutes,
		ServiceID:       optionalIDQuery(c, "service_id"),
		ResourceID:      optionalIDQuery(c, "resource_id"),
		StaffID:         optionalIDQuery(c, "staff_id"),
	}

	slots, err := h.finder.AvailableSlots(c.Request.Context(), q)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func optionalIDQuery(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
