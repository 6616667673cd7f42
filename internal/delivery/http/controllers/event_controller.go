package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// maxBannerBytes caps multipart form memory for banner uploads (5 MiB).
const maxBannerBytes = 5 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{Logger: logger, Service: svc}
}

// bannerUpload extracts the optional "banner" file from a multipart form.
// Returns nil when the request carries no banner. The caller owns closing the
// underlying file via the returned closer.
func bannerUpload(r *http.Request) (*domain.Upload, func(), error) {
	file, header, err := r.FormFile("banner")
	if err == http.ErrMissingFile {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	upload := &domain.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	}
	return upload, func() { _ = file.Close() }, nil
}

// eventInputFromForm reads event fields from a parsed multipart form.
func eventInputFromForm(r *http.Request) (domain.EventInput, error) {
	input := domain.EventInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
	}
	if s := r.FormValue("date"); s != "" {
		date, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return input, err
		}
		input.Date = date
	}
	if s := r.FormValue("capacity"); s != "" {
		capacity, err := strconv.Atoi(s)
		if err != nil {
			return input, err
		}
		input.Capacity = &capacity
	}
	return input, nil
}

// CreateEventRequest is the JSON request body for POST /events/create.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Capacity    *int      `json:"capacity"`
	Status      string    `json:"status"`
}

// Validate implements Validator.
func (req CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, "description is required")
	}
	if req.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, "location is required")
	}
	if !domain.ValidCategory(req.Category) {
		errs = append(errs, "unknown category")
	}
	if req.Status != "" && !domain.ValidEventStatus(req.Status) {
		errs = append(errs, "unknown status")
	}
	return errs
}

// EventWithBadgesResponse is returned by operations that can award badges.
type EventWithBadgesResponse struct {
	Event     *domain.Event  `json:"event"`
	NewBadges []domain.Badge `json:"new_badges,omitempty"`
}

// Create godoc
// @Summary Create an event
// @Description Create an event as an organizer or admin. Accepts JSON or multipart/form-data with an optional "banner" image. Status defaults to published.
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains event and any new badges"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/create [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var input domain.EventInput
	var banner *domain.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBannerBytes); err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
			return
		}
		var err error
		input, err = eventInputFromForm(r)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		upload, closeFile, err := bannerUpload(r)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid banner upload")
			return
		}
		defer closeFile()
		banner = upload
	} else {
		var req CreateEventRequest
		if !h.DecodeAndValidate(w, r, &req) {
			return
		}
		input = domain.EventInput{
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			Location:    req.Location,
			Category:    req.Category,
			Capacity:    req.Capacity,
			Status:      req.Status,
		}
	}

	event, newBadges, err := c.Service.Create(r.Context(), userID, input, banner)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, EventWithBadgesResponse{Event: event, NewBadges: newBadges})
}

// List godoc
// @Summary List events
// @Description List events with optional filters. Defaults to published events only; pass status explicitly to see drafts you can access.
// @Tags events
// @Produce json
// @Param status query string false "Event status filter"
// @Param category query string false "Category filter"
// @Param featured query bool false "Only featured events"
// @Param upcoming query bool false "Only events in the next 7 days"
// @Param popular query bool false "Order by view count"
// @Param search query string false "Search in title and description"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Router /events/all [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Status:       q.Get("status"),
		Category:     q.Get("category"),
		FeaturedOnly: q.Get("featured") == "true",
		UpcomingOnly: q.Get("upcoming") == "true",
		PopularFirst: q.Get("popular") == "true",
		Search:       q.Get("search"),
	}
	if filter.Status == "" {
		filter.Status = string(domain.StatusPublished)
	}

	events, err := c.Service.List(r.Context(), filter)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// Get godoc
// @Summary Get a single event
// @Description Get an event by ID. When the caller is authenticated, a unique view is recorded.
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := middleware.UserIDFromContext(r.Context())
	event, err := c.Service.Get(r.Context(), r.PathValue("id"), viewerID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the JSON request body for PUT /events/{id}.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Category    *string    `json:"category"`
	Capacity    *int       `json:"capacity"`
	Status      *string    `json:"status"`
}

func (req UpdateEventRequest) toUpdate() domain.EventUpdate {
	return domain.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Status:      req.Status,
	}
}

// eventUpdateFromForm reads updatable fields from a parsed multipart form;
// absent fields stay nil.
func eventUpdateFromForm(r *http.Request) (domain.EventUpdate, error) {
	var update domain.EventUpdate
	form := r.MultipartForm.Value
	if v, ok := form["title"]; ok && len(v) > 0 {
		update.Title = &v[0]
	}
	if v, ok := form["description"]; ok && len(v) > 0 {
		update.Description = &v[0]
	}
	if v, ok := form["location"]; ok && len(v) > 0 {
		update.Location = &v[0]
	}
	if v, ok := form["category"]; ok && len(v) > 0 {
		update.Category = &v[0]
	}
	if v, ok := form["status"]; ok && len(v) > 0 {
		update.Status = &v[0]
	}
	if v, ok := form["date"]; ok && len(v) > 0 {
		date, err := time.Parse(time.RFC3339, v[0])
		if err != nil {
			return update, err
		}
		update.Date = &date
	}
	if v, ok := form["capacity"]; ok && len(v) > 0 {
		capacity, err := strconv.Atoi(v[0])
		if err != nil {
			return update, err
		}
		update.Capacity = &capacity
	}
	return update, nil
}

// Update godoc
// @Summary Update an event
// @Description Update an event you own (admins may update any). Accepts JSON or multipart/form-data; attendees are emailed about title, date, and location changes.
// @Tags events
// @Accept json,mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	var update domain.EventUpdate
	var banner *domain.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBannerBytes); err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
			return
		}
		var err error
		update, err = eventUpdateFromForm(r)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
			return
		}
		upload, closeFile, err := bannerUpload(r)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid banner upload")
			return
		}
		defer closeFile()
		banner = upload
	} else {
		var req UpdateEventRequest
		if !h.DecodeAndValidate(w, r, &req) {
			return
		}
		update = req.toUpdate()
	}

	event, err := c.Service.Update(r.Context(), r.PathValue("id"), userID, role, update, banner)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Delete an event you own (admins may delete any).
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	if err := c.Service.Delete(r.Context(), r.PathValue("id"), userID, role); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Event deleted successfully"})
}

// Register godoc
// @Summary Register for an event
// @Description Register the authenticated user for a published event. Fails when the event is full or not published.
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event and any new badges"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/register [post]
func (c *EventController) Register(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	event, newBadges, err := c.Service.Register(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, EventWithBadgesResponse{Event: event, NewBadges: newBadges})
}

// Unregister godoc
// @Summary Unregister from an event
// @Description Remove the authenticated user from the event roster. Stats and badges already earned are kept.
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/unregister [post]
func (c *EventController) Unregister(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	if err := c.Service.Unregister(r.Context(), r.PathValue("id"), userID); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Successfully unregistered from event"})
}

// MyRegistered godoc
// @Summary List my registered events
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Router /events/my/registered [get]
func (c *EventController) MyRegistered(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	events, err := c.Service.MyRegistered(r.Context(), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// MyCreated godoc
// @Summary List events I created
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Router /events/my/created [get]
func (c *EventController) MyCreated(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	events, err := c.Service.MyCreated(r.Context(), userID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

// ToggleFeatured godoc
// @Summary Toggle the featured flag on an event
// @Description Admin only.
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/toggle-featured [patch]
func (c *EventController) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.RoleFromContext(r.Context())

	event, err := c.Service.ToggleFeatured(r.Context(), r.PathValue("id"), role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, event)
}

// DashboardStats godoc
// @Summary Event dashboard statistics
// @Description Organizers see their own events; admins see all.
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} helpers.APIResponse "data contains dashboard totals"
// @Router /events/stats/dashboard [get]
func (c *EventController) DashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	role, _ := middleware.RoleFromContext(r.Context())

	stats, err := c.Service.DashboardStats(r.Context(), userID, role)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, stats)
}
