package schedule

import (
	"net/http"
	"strconv"
	"time"

	"bookwise/internal/api"
	"bookwise/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service        Service
	defaultHorizon time.Duration
}

func NewHandler(service Service, defaultHorizon time.Duration) *Handler {
	return &Handler{service: service, defaultHorizon: defaultHorizon}
}

type OccurrencesResponse struct {
	ScheduleID  int64       `json:"schedule_id"`
	Occurrences []time.Time `json:"occurrences"`
}

// Create godoc
// @Summary      Create recurring schedule
// @Description  Validates the recurrence definition and stores the schedule; malformed definitions fail here, not at expansion time.
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        schedule  body      CreateScheduleRequest  true  "Schedule"
// @Success      201       {object}  RecurringSchedule
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /schedules [post]
func (h *Handler) Create(c *gin.Context) {
	orgID, ok := auth.GetOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "organization not resolved"})
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sched, err := h.service.Create(c.Request.Context(), orgID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, sched)
}

// Get godoc
// @Summary      Get recurring schedule
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {object}  RecurringSchedule
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID} [get]
func (h *Handler) Get(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	sched, err := h.service.Get(c.Request.Context(), orgID, scheduleID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sched)
}

// Update godoc
// @Summary      Update recurring schedule
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        scheduleID  path      int                    true  "Schedule ID"
// @Param        schedule    body      CreateScheduleRequest  true  "Schedule"
// @Success      200         {object}  RecurringSchedule
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID} [put]
func (h *Handler) Update(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	var req CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	sched, err := h.service.Update(c.Request.Context(), orgID, scheduleID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, sched)
}

// Delete godoc
// @Summary      Delete recurring schedule
// @Description  Deletes the schedule and removes its future materialized bookings.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {object}  api.MessageResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID} [delete]
func (h *Handler) Delete(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), orgID, scheduleID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Schedule deleted"})
}

// ListByService godoc
// @Summary      List schedules for a service
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {array}   RecurringSchedule
// @Failure      404        {object}  api.ErrorResponse
// @Router       /services/{serviceID}/schedules [get]
func (h *Handler) ListByService(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	serviceID, err := strconv.ParseInt(c.Param("serviceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid service ID"})
		return
	}

	schedules, err := h.service.ListByService(c.Request.Context(), orgID, serviceID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// Occurrences godoc
// @Summary      Expand schedule occurrences
// @Description  Returns the occurrence start times intersecting the window, with cancelled and rescheduled slots removed.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int     true  "Schedule ID"
// @Param        from        query     string  true  "Window start (RFC 3339)"
// @Param        to          query     string  true  "Window end (RFC 3339)"
// @Success      200         {object}  OccurrencesResponse
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/occurrences [get]
func (h *Handler) Occurrences(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid from, use RFC 3339"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid to, use RFC 3339"})
		return
	}

	occurrences, err := h.service.Occurrences(c.Request.Context(), orgID, scheduleID, from, to)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, OccurrencesResponse{ScheduleID: scheduleID, Occurrences: occurrences})
}

// Materialize godoc
// @Summary      Materialize schedule occurrences
// @Description  Inserts confirmed bookings for every occurrence up to the horizon; safe to re-run.
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID    path      int  true   "Schedule ID"
// @Param        horizon_days  query     int  false  "Materialization horizon in days"
// @Success      200           {object}  MaterializeResponse
// @Failure      400           {object}  api.ErrorResponse
// @Failure      404           {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/materialize [post]
func (h *Handler) Materialize(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	horizon := h.defaultHorizon
	if raw := c.Query("horizon_days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid horizon_days"})
			return
		}
		horizon = time.Duration(days) * 24 * time.Hour
	}

	resp, err := h.service.Materialize(c.Request.Context(), orgID, scheduleID, horizon)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AddException godoc
// @Summary      Add recurrence exception
// @Description  Suppresses one occurrence; RESCHEDULED exceptions carry the replacement start time.
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        scheduleID  path      int                     true  "Schedule ID"
// @Param        exception   body      CreateExceptionRequest  true  "Exception"
// @Success      201         {object}  RecurrenceException
// @Failure      400         {object}  api.ErrorResponse
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/exceptions [post]
func (h *Handler) AddException(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	var req CreateExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	ex, err := h.service.AddException(c.Request.Context(), orgID, scheduleID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, ex)
}

// ListExceptions godoc
// @Summary      List recurrence exceptions
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {array}   RecurrenceException
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/exceptions [get]
func (h *Handler) ListExceptions(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	exceptions, err := h.service.ListExceptions(c.Request.Context(), orgID, scheduleID)
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, exceptions)
}

// RemoveException godoc
// @Summary      Remove recurrence exception
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID   path      int  true  "Schedule ID"
// @Param        exceptionID  path      int  true  "Exception ID"
// @Success      200          {object}  api.MessageResponse
// @Failure      404          {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/exceptions/{exceptionID} [delete]
func (h *Handler) RemoveException(c *gin.Context) {
	orgID, _ := auth.GetOrganizationID(c)
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}
	exceptionID, err := strconv.ParseInt(c.Param("exceptionID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid exception ID"})
		return
	}

	if err := h.service.RemoveException(c.Request.Context(), orgID, scheduleID, exceptionID); err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Exception removed"})
}
