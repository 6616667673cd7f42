package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// maxAvatarBytes caps multipart form memory for avatar uploads (2 MiB).
const maxAvatarBytes = 2 << 20

// UpdateProfileRequest is the request body for PUT /users/profile/me.
type UpdateProfileRequest struct {
	Bio         *string             `json:"bio"`
	Phone       *string             `json:"phone"`
	Department  *string             `json:"department"`
	Year        *string             `json:"year"`
	Interests   *[]string           `json:"interests"`
	SocialLinks *domain.SocialLinks `json:"social_links"`
}

// NotificationPreferencesRequest is the request body for
// PUT /users/profile/me/notifications.
type NotificationPreferencesRequest struct {
	Enabled        bool `json:"enabled"`
	EventReminders bool `json:"event_reminders"`
	EventUpdates   bool `json:"event_updates"`
	Comments       bool `json:"comments"`
	Registrations  bool `json:"registrations"`
}

// AwardBadgeRequest is the request body for POST /users/{userID}/badges.
type AwardBadgeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Validate implements Validator.
func (req AwardBadgeRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// EventHistoryResponse is the response body for GET /users/profile/me/history.
type EventHistoryResponse struct {
	Attended  []*domain.Event `json:"attended"`
	Organized []*domain.Event `json:"organized"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// Me godoc
// @Summary Get my profile
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Router /users/profile/me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	user, err := c.Service.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// Get godoc
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} helpers.APIResponse "data contains the user"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/profile/{userID} [get]
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.GetProfile(r.Context(), r.PathValue("userID"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update my profile
// @Description Partial update; absent fields are left unchanged.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateProfileRequest true "Profile fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Router /users/profile/me [put]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req UpdateProfileRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateProfile(r.Context(), userID, domain.ProfileUpdate{
		Bio:         req.Bio,
		Phone:       req.Phone,
		Department:  req.Department,
		Year:        req.Year,
		Interests:   req.Interests,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// UploadAvatar godoc
// @Summary Upload my avatar
// @Description Multipart form with an "avatar" image file.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the new avatar URL"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /users/profile/me/avatar [post]
func (c *UserController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := c.Service.UploadAvatar(r.Context(), userID, &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"avatar": url})
}

// History godoc
// @Summary Get my event history
// @Description Events I attended and events I organized.
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains attended and organized event lists"
// @Router /users/profile/me/history [get]
func (c *UserController) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	attended, organized, err := c.Service.EventHistory(r.Context(), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventHistoryResponse{Attended: attended, Organized: organized})
}

// UpdateNotifications godoc
// @Summary Update my notification preferences
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body NotificationPreferencesRequest true "Notification preferences"
// @Success 200 {object} helpers.APIResponse "data contains the updated user"
// @Router /users/profile/me/notifications [put]
func (c *UserController) UpdateNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req NotificationPreferencesRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.UpdateNotificationPreferences(r.Context(), userID, domain.NotificationPreferences{
		Enabled:        req.Enabled,
		EventReminders: req.EventReminders,
		EventUpdates:   req.EventUpdates,
		Comments:       req.Comments,
		Registrations:  req.Registrations,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, user)
}

// AwardBadge godoc
// @Summary Manually award a badge
// @Description Admin only. Fails when the user already holds a badge with the same name.
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param userID path string true "User ID"
// @Param body body AwardBadgeRequest true "Badge data"
// @Success 201 {object} helpers.APIResponse "data contains the awarded badge"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userID}/badges [post]
func (c *UserController) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req AwardBadgeRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	badge, err := c.Service.AwardBadge(r.Context(), r.PathValue("userID"), domain.Badge{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		EarnedAt:    time.Now(),
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, badge)
}
