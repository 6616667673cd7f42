package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type AnalyticsController struct {
	Logger  *slog.Logger
	Service domain.AnalyticsService
}

func NewAnalyticsController(logger *slog.Logger, svc domain.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{Logger: logger, Service: svc}
}

// Overview godoc
// @Summary Analytics overview
// @Description Dashboard totals, attendance rate, and most popular event. Organizers see their own events; admins see all.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the overview stats"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /analytics/overview [get]
func (c *AnalyticsController) Overview(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	stats, err := c.Service.Overview(r.Context(), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}

// Categories godoc
// @Summary Published events grouped by category
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains category stats sorted by count"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /analytics/categories [get]
func (c *AnalyticsController) Categories(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	stats, err := c.Service.Categories(r.Context(), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}

// EngagementTimeline godoc
// @Summary Engagement timeline
// @Description Events created in the period, bucketed by day (week, month) or month (year).
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param period query string false "Period: week, month (default), year"
// @Success 200 {object} helpers.APIResponse "data contains timeline buckets sorted by date"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /analytics/engagement-timeline [get]
func (c *AnalyticsController) EngagementTimeline(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	buckets, err := c.Service.EngagementTimeline(r.Context(), userID, role, r.URL.Query().Get("period"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, buckets)
}

// TopEvents godoc
// @Summary Top performing events
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Number of events to return (default 5)"
// @Param sortBy query string false "Ranking: attendees (default), views, engagement"
// @Success 200 {object} helpers.APIResponse "data contains the ranked events"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /analytics/top-events [get]
func (c *AnalyticsController) TopEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	limit := 5
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	events, err := c.Service.TopEvents(r.Context(), userID, role, limit, r.URL.Query().Get("sortBy"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// UserActivity godoc
// @Summary User activity statistics
// @Description Admin only. Role counts plus the most active students and organizers.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the user activity stats"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /analytics/user-activity [get]
func (c *AnalyticsController) UserActivity(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())

	stats, err := c.Service.UserActivity(r.Context(), role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}

// EventAttendance godoc
// @Summary Attendance report for an event
// @Description Event owner or admin only.
// @Tags analytics
// @Produce json
// @Security ApiKeyAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the attendance report"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /analytics/attendance/{eventID} [get]
func (c *AnalyticsController) EventAttendance(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	report, err := c.Service.EventAttendance(r.Context(), r.PathValue("eventID"), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, report)
}
