package calendar

import (
	"net/http"
	"strconv"
	"time"

	"bookwise/internal/api"
	"bookwise/internal/auth"
	"bookwise/internal/timeutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Events godoc
// @Summary      Calendar events
// @Description  Projects bookings in the window into uniform calendar events; staff, member, service and resource filters narrow the view.
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        from         query     string  true   "Window start (RFC 3339)"
// @Param        to           query     string  true   "Window end (RFC 3339)"
// @Param        staff_id     query     int     false  "Staff member"
// @Param        user_id      query     int     false  "Member"
// @Param        service_id   query     int     false  "Service"
// @Param        resource_id  query     int     false  "Resource"
// @Success      200  {array}   Event
// @Failure      400  {object}  api.ErrorResponse
// @Router       /calendar [get]
func (h *Handler) Events(c *gin.Context) {
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

	h.respond(c, from, to)
}

// Day godoc
// @Summary      Day calendar
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        date      query     string  true   "Date (YYYY-MM-DD)"
// @Param        staff_id  query     int     false  "Staff member"
// @Param        user_id   query     int     false  "Member"
// @Success      200  {array}   Event
// @Failure      400  {object}  api.ErrorResponse
// @Router       /calendar/day [get]
func (h *Handler) Day(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date, use YYYY-MM-DD"})
		return
	}

	from := timeutil.StartOfDay(date)
	h.respond(c, from, from.Add(24*time.Hour))
}

// Week godoc
// @Summary      Week calendar
// @Description  Seven days starting from the Monday of the given date's week.
// @Tags         calendar
// @Security     BearerAuth
// @Produce      json
// @Param        date      query     string  true   "Date (YYYY-MM-DD)"
// @Param        staff_id  query     int     false  "Staff member"
// @Param        user_id   query     int     false  "Member"
// @Success      200  {array}   Event
// @Failure      400  {object}  api.ErrorResponse
// @Router       /calendar/week [get]
func (h *Handler) Week(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid date, use YYYY-MM-DD"})
		return
	}

	day := timeutil.StartOfDay(date)
	offset := (int(day.Weekday()) + 6) % 7 // Monday start
	from := day.AddDate(0, 0, -offset)
	h.respond(c, from, from.AddDate(0, 0, 7))
}

func (h *Handler) respond(c *gin.Context, from, to time.Time) {
	orgID, ok := auth.GetOrganizationID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "organization not resolved"})
		return
	}

	events, err := h.repo.Events(c.Request.Context(), Filter{
		OrganizationID: orgID,
		From:           from,
		To:             to,
		StaffID:        optionalIDQuery(c, "staff_id"),
		UserID:         optionalIDQuery(c, "user_id"),
		ServiceID:      optionalIDQuery(c, "service_id"),
		ResourceID:     optionalIDQuery(c, "resource_id"),
	})
	if err != nil {
		api.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
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
