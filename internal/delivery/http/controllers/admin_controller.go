package controllers

import (
	"log/slog"
	"net/http"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/delivery/http/middleware"
	"eventreg/internal/domain"
)

// AdminController serves the staff-only listings.
type AdminController struct {
	Logger        *slog.Logger
	Events        domain.EventService
	Registrations domain.RegistrationService
}

func NewAdminController(logger *slog.Logger, events domain.EventService, registrations domain.RegistrationService) *AdminController {
	return &AdminController{
		Logger:        logger,
		Events:        events,
		Registrations: registrations,
	}
}

// ListRegistrationsData is a page of registrations.
type ListRegistrationsData struct {
	Items      []*domain.Registration `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListRegistrationsSuccessResponse is the success response envelope for GET /admin/registrations (200).
type ListRegistrationsSuccessResponse struct {
	Data  ListRegistrationsData `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListEvents godoc
// @Summary List all events (staff)
// @Description Returns events with capacity, registration count and spots_left. Requires organizer or admin role.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *AdminController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Events.ListEvents(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsData{
		Items:      newEventResponses(events),
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// ListRegistrations godoc
// @Summary List all registrations (staff)
// @Description Returns registrations across all events, newest first. Requires organizer or admin role.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListRegistrationsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/registrations [get]
func (c *AdminController) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	regs, total, err := c.Registrations.ListRegistrations(r.Context(), principal, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegistrationsData{
		Items:      regs,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
