package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// CommentRequest is the request body for creating, editing, and replying to
// comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// Validate implements Validator.
func (req CommentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Content) == "" {
		errs = append(errs, "content is required")
	} else if len([]rune(req.Content)) > domain.MaxCommentLength {
		errs = append(errs, "content must be 500 characters or less")
	}
	return errs
}

// CommentWithBadgesResponse is returned by comment operations that can award
// badges.
type CommentWithBadgesResponse struct {
	Comment   *domain.Comment `json:"comment"`
	NewBadges []domain.Badge  `json:"new_badges,omitempty"`
}

// CommentListResponse is the response body for listing event comments.
type CommentListResponse struct {
	Comments []*domain.Comment `json:"comments"`
	Total    int               `json:"total"`
}

type CommentController struct {
	Logger  *slog.Logger
	Service domain.CommentService
}

func NewCommentController(logger *slog.Logger, svc domain.CommentService) *CommentController {
	return &CommentController{Logger: logger, Service: svc}
}

// Create godoc
// @Summary Comment on an event
// @Tags comments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param eventID path string true "Event ID"
// @Param body body CommentRequest true "Comment content"
// @Success 201 {object} helpers.APIResponse "data contains the comment and any new badges"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{eventID} [post]
func (c *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, newBadges, err := c.Service.Create(r.Context(), r.PathValue("eventID"), userID, req.Content)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, CommentWithBadgesResponse{Comment: comment, NewBadges: newBadges})
}

// List godoc
// @Summary List comments for an event
// @Description Returns top-level comments with nested replies. Sort: latest (default, pinned first), oldest, likes.
// @Tags comments
// @Produce json
// @Param eventID path string true "Event ID"
// @Param sort query string false "Sort order: latest, oldest, likes"
// @Success 200 {object} helpers.APIResponse "data contains comments and total"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{eventID} [get]
func (c *CommentController) List(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.UserIDFromContext(r.Context())
	sort := domain.CommentSort(r.URL.Query().Get("sort"))

	comments, total, err := c.Service.ListForEvent(r.Context(), r.PathValue("eventID"), viewerID, sort)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, CommentListResponse{Comments: comments, Total: total})
}

// Edit godoc
// @Summary Edit your own comment
// @Tags comments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Param body body CommentRequest true "New content"
// @Success 200 {object} helpers.APIResponse "data contains the updated comment"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID} [put]
func (c *CommentController) Edit(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, err := c.Service.Edit(r.Context(), r.PathValue("commentID"), userID, req.Content)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, comment)
}

// Delete godoc
// @Summary Delete your own comment
// @Description Soft delete; the comment becomes a tombstone so replies stay readable.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID} [delete]
func (c *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := c.Service.Delete(r.Context(), r.PathValue("commentID"), userID); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Comment deleted successfully"})
}

// ToggleLikeResponse is the response body for toggling a comment like.
type ToggleLikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likes_count"`
}

// ToggleLike godoc
// @Summary Like or unlike a comment
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains liked state and like count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/like [post]
func (c *CommentController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	liked, count, err := c.Service.ToggleLike(r.Context(), r.PathValue("commentID"), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ToggleLikeResponse{Liked: liked, LikeCount: count})
}

// Reply godoc
// @Summary Reply to a comment
// @Description Threads are one level deep; replying to a reply is rejected.
// @Tags comments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Parent comment ID"
// @Param body body CommentRequest true "Reply content"
// @Success 201 {object} helpers.APIResponse "data contains the reply and any new badges"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/reply [post]
func (c *CommentController) Reply(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req CommentRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	comment, newBadges, err := c.Service.Reply(r.Context(), r.PathValue("commentID"), userID, req.Content)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, CommentWithBadgesResponse{Comment: comment, NewBadges: newBadges})
}

// Report godoc
// @Summary Report a comment
// @Description Each user can report a comment once.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/report [post]
func (c *CommentController) Report(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := c.Service.Report(r.Context(), r.PathValue("commentID"), userID); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Comment reported successfully"})
}

// TogglePin godoc
// @Summary Pin or unpin a comment
// @Description Event organizers (own events) and admins only.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains the pinned state"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/pin [patch]
func (c *CommentController) TogglePin(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	pinned, err := c.Service.TogglePin(r.Context(), r.PathValue("commentID"), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"pinned": pinned})
}

// ModerateDelete godoc
// @Summary Moderate-delete a comment
// @Description Event organizers (own events) and admins only. Deleting a top-level comment also deletes its replies.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Param commentID path string true "Comment ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /comments/{commentID}/moderate [delete]
func (c *CommentController) ModerateDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	if err := c.Service.ModerateDelete(r.Context(), r.PathValue("commentID"), userID, role); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Comment removed successfully"})
}

// ListReported godoc
// @Summary List reported comments
// @Description Admins see all reported comments; organizers see reports on their own events.
// @Tags comments
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains comments and total"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /comments/moderation/reported [get]
func (c *CommentController) ListReported(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	comments, err := c.Service.ListReported(r.Context(), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, CommentListResponse{Comments: comments, Total: len(comments)})
}
