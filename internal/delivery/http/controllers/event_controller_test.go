package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventreg/internal/delivery/http/helpers"
	"eventreg/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventService struct {
	event   *domain.Event
	events  []*domain.Event
	err     error
	created *domain.Event
}

func (f *fakeEventService) CreateEvent(_ context.Context, p domain.Principal, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if !p.IsStaff() {
		return domain.ErrForbidden
	}
	if err := e.Validate(); err != nil {
		return err
	}
	e.ID = testEventID
	f.created = e
	return nil
}

func (f *fakeEventService) GetEvent(context.Context, string) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(context.Context, domain.PaginationParams) ([]*domain.Event, int, error) {
	return f.events, len(f.events), f.err
}

func TestEventController_CreateEvent(t *testing.T) {
	organizer := domain.Principal{UserID: "org-1", Roles: []string{domain.RoleOrganizer}}
	valid := `{"title":"GopherCon","location":"Berlin","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T17:00:00Z","capacity":100}`

	tests := []struct {
		name       string
		body       string
		principal  domain.Principal
		wantStatus int
		wantMsg    string
	}{
		{name: "created", body: valid, principal: organizer, wantStatus: http.StatusCreated},
		{name: "missing capacity", body: `{"title":"x","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T10:00:00Z"}`, principal: organizer, wantStatus: http.StatusBadRequest, wantMsg: "capacity is required"},
		{name: "negative capacity", body: `{"title":"x","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T10:00:00Z","capacity":-1}`, principal: organizer, wantStatus: http.StatusBadRequest, wantMsg: "capacity must be at least 0"},
		{name: "blank title", body: `{"title":"   ","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T10:00:00Z","capacity":1}`, principal: organizer, wantStatus: http.StatusBadRequest, wantMsg: "title is required"},
		{name: "ends before start", body: `{"title":"x","start_time":"2025-06-01T09:00:00Z","end_time":"2025-06-01T08:00:00Z","capacity":1}`, principal: organizer, wantStatus: http.StatusBadRequest, wantMsg: "end_time must not be before start_time"},
		{name: "attendee forbidden", body: valid, principal: domain.Principal{UserID: "u1", Roles: []string{domain.RoleAttendee}}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{}
			ctrl := NewEventController(discardLogger(), svc)
			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			ctrl.CreateEvent(w, withPrincipal(req, tt.principal))

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			resp := decodeEnvelope(t, w)
			if tt.wantMsg != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, helpers.ErrCodeBadRequest, resp.Error.Code)
				assert.Contains(t, resp.Error.Message, tt.wantMsg)
			}
			if tt.wantStatus == http.StatusCreated {
				data := resp.Data.(map[string]any)
				assert.Equal(t, testEventID, data["id"])
				assert.Equal(t, float64(100), data["spots_left"])
				assert.Equal(t, "org-1", svc.created.CreatedBy)
				assert.Equal(t, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), svc.created.StartTime)
			}
		})
	}
}

func TestEventController_GetEvent(t *testing.T) {
	svc := &fakeEventService{event: &domain.Event{ID: testEventID, Title: "Conf", Capacity: 2, RegistrationCount: 5}}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/events/"+testEventID, nil)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.GetEvent(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Equal(t, float64(0), data["spots_left"], "spots_left never goes negative")
	assert.Equal(t, float64(5), data["registration_count"])

	svc.err = domain.ErrNotFound
	w = httptest.NewRecorder()
	ctrl.GetEvent(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEventController_ListEvents(t *testing.T) {
	svc := &fakeEventService{events: []*domain.Event{
		{ID: "e2", Title: "B", Capacity: 5, RegistrationCount: 1},
		{ID: "e1", Title: "A", Capacity: 1, RegistrationCount: 1},
	}}
	ctrl := NewEventController(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/events?page=1&page_size=2", nil)
	w := httptest.NewRecorder()
	ctrl.ListEvents(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w).Data.(map[string]any)
	items := data["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(4), items[0].(map[string]any)["spots_left"])
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["total_pages"])
}

func TestAdminController_ListRegistrations(t *testing.T) {
	regs := &fakeRegistrationService{all: []*domain.Registration{{ID: "reg-1"}}}
	ctrl := NewAdminController(discardLogger(), &fakeEventService{}, regs)

	req := httptest.NewRequest(http.MethodGet, "/admin/registrations", nil)
	w := httptest.NewRecorder()
	ctrl.ListRegistrations(w, withPrincipal(req, domain.Principal{UserID: "u1", Roles: []string{domain.RoleAttendee}}))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	ctrl.ListRegistrations(w, withPrincipal(req, domain.Principal{UserID: "a1", Roles: []string{domain.RoleAdmin}}))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]any)
	assert.Len(t, data["items"].([]any), 1)
}
