// Package http wires the controllers, middleware, and routes of the
// campusevents API.
package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// Controllers groups the controllers the router dispatches to.
type Controllers struct {
	Auth      *controllers.AuthController
	Events    *controllers.EventController
	Comments  *controllers.CommentController
	Users     *controllers.UserController
	Analytics *controllers.AnalyticsController
	Badges    *controllers.BadgeController
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	optional := middleware.OptionalAuth(verifier)
	organizer := middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)
	admin := middleware.RequireRole(domain.RoleAdmin)

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", c.Auth.Login)

	// Events
	mux.HandleFunc("GET /api/events/all", c.Events.List)
	mux.HandleFunc("GET /api/events/my/registered", auth(c.Events.MyRegistered))
	mux.HandleFunc("GET /api/events/my/created", auth(organizer(c.Events.MyCreated)))
	mux.HandleFunc("GET /api/events/stats/dashboard", auth(organizer(c.Events.DashboardStats)))
	mux.HandleFunc("POST /api/events/create", auth(organizer(c.Events.Create)))
	mux.HandleFunc("GET /api/events/{id}", optional(c.Events.Get))
	mux.HandleFunc("PUT /api/events/{id}", auth(organizer(c.Events.Update)))
	mux.HandleFunc("DELETE /api/events/{id}", auth(organizer(c.Events.Delete)))
	mux.HandleFunc("POST /api/events/{id}/register", auth(c.Events.Register))
	mux.HandleFunc("POST /api/events/{id}/unregister", auth(c.Events.Unregister))
	mux.HandleFunc("PATCH /api/events/{id}/toggle-featured", auth(admin(c.Events.ToggleFeatured)))

	// Comments
	mux.HandleFunc("GET /api/comments/moderation/reported", auth(organizer(c.Comments.ListReported)))
	mux.HandleFunc("POST /api/comments/{eventID}", auth(c.Comments.Create))
	mux.HandleFunc("GET /api/comments/{eventID}", optional(c.Comments.List))
	mux.HandleFunc("PUT /api/comments/{commentID}", auth(c.Comments.Edit))
	mux.HandleFunc("DELETE /api/comments/{commentID}", auth(c.Comments.Delete))
	mux.HandleFunc("POST /api/comments/{commentID}/like", auth(c.Comments.ToggleLike))
	mux.HandleFunc("POST /api/comments/{commentID}/reply", auth(c.Comments.Reply))
	mux.HandleFunc("POST /api/comments/{commentID}/report", auth(c.Comments.Report))
	mux.HandleFunc("PATCH /api/comments/{commentID}/pin", auth(c.Comments.TogglePin))
	mux.HandleFunc("DELETE /api/comments/{commentID}/moderate", auth(c.Comments.ModerateDelete))

	// Users
	mux.HandleFunc("GET /api/users/profile/me", auth(c.Users.Me))
	mux.HandleFunc("PUT /api/users/profile/me", auth(c.Users.UpdateMe))
	mux.HandleFunc("POST /api/users/profile/me/avatar", auth(c.Users.UploadAvatar))
	mux.HandleFunc("GET /api/users/profile/me/history", auth(c.Users.History))
	mux.HandleFunc("PUT /api/users/profile/me/notifications", auth(c.Users.UpdateNotifications))
	mux.HandleFunc("GET /api/users/profile/{userID}", c.Users.Get)
	mux.HandleFunc("POST /api/users/{userID}/badges", auth(admin(c.Users.AwardBadge)))

	// Analytics
	mux.HandleFunc("GET /api/analytics/overview", auth(organizer(c.Analytics.Overview)))
	mux.HandleFunc("GET /api/analytics/categories", auth(organizer(c.Analytics.Categories)))
	mux.HandleFunc("GET /api/analytics/engagement-timeline", auth(organizer(c.Analytics.EngagementTimeline)))
	mux.HandleFunc("GET /api/analytics/top-events", auth(organizer(c.Analytics.TopEvents)))
	mux.HandleFunc("GET /api/analytics/user-activity", auth(admin(c.Analytics.UserActivity)))
	mux.HandleFunc("GET /api/analytics/attendance/{eventID}", auth(organizer(c.Analytics.EventAttendance)))

	// Badges
	mux.HandleFunc("GET /api/badges", c.Badges.Catalog)

	// Operational endpoints
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
