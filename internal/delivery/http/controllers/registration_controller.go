package controllers

import (
	"log/slog"
	"net/http"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// RegistrationSuccessResponse is the success response envelope for POST /attendee/events/{eventID}/registrations (201).
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// CancelRegistrationData is returned by DELETE /attendee/events/{eventID}/registrations.
// SpotsLeft is omitted when the follow-up read fails; the cancellation still stands.
type CancelRegistrationData struct {
	EventID   string `json:"event_id"`
	SpotsLeft *int   `json:"spots_left,omitempty"`
}

// CancelRegistrationSuccessResponse is the success response envelope for DELETE /attendee/events/{eventID}/registrations (200).
type CancelRegistrationSuccessResponse struct {
	Data  CancelRegistrationData `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// MyRegistrationItem is an item in the response for GET /attendee/registrations.
type MyRegistrationItem struct {
	Registration *domain.Registration `json:"registration"`
	Event        EventResponse        `json:"event"`
}

// ListMyRegistrationsSuccessResponse is the success response envelope for GET /attendee/registrations (200).
type ListMyRegistrationsSuccessResponse struct {
	Data  []MyRegistrationItem `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Register godoc
// @Summary Register the current user for an event
// @Description Takes one spot of the event. Fails with event_full when no spots are left and already_registered when the user already holds a spot.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full or already_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: registration_failed"
// @Router /attendee/events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	reg, err := c.Service.Register(r.Context(), principal, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Cancel godoc
// @Summary Cancel the current user's registration
// @Description Frees the user's spot. Fails with not_registered when the user holds no spot for the event.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CancelRegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: registration_failed"
// @Router /attendee/events/{eventID}/registrations [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.Cancel(r.Context(), principal, eventID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	data := CancelRegistrationData{EventID: eventID}
	if left, err := c.Service.SpotsLeft(r.Context(), eventID); err != nil {
		c.Logger.WarnContext(r.Context(), "spots left unavailable after cancel",
			"event_id", eventID, "user_id", principal.UserID, "err", err)
	} else {
		data.SpotsLeft = &left
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, data)
}

// ListMyRegistrations godoc
// @Summary Get the current user's registrations
// @Description Returns the authenticated user's registrations, newest first, each with its event.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListMyRegistrationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/registrations [get]
func (c *RegistrationController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	items, err := c.Service.ListMyRegistrations(r.Context(), principal)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}

	out := make([]MyRegistrationItem, 0, len(items))
	for _, it := range items {
		out = append(out, MyRegistrationItem{
			Registration: it.Registration,
			Event:        newEventResponse(it.Event),
		})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}
