package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventreg/internal/domain"
	"eventreg/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	organizer := domain.Principal{UserID: "org-1", Roles: []string{domain.RoleOrganizer}}

	tests := []struct {
		name      string
		principal domain.Principal
		event     *domain.Event
		wantErr   error
	}{
		{
			name:      "organizer creates event",
			principal: organizer,
			event:     domain.NewEvent("  GopherCon ", "talks", "Berlin", start, start.Add(time.Hour), 50, ""),
		},
		{
			name:      "attendee is forbidden",
			principal: attendee("user-1"),
			event:     domain.NewEvent("GopherCon", "", "", start, start.Add(time.Hour), 50, ""),
			wantErr:   domain.ErrForbidden,
		},
		{
			name:      "anonymous is unauthenticated",
			principal: domain.Principal{},
			event:     domain.NewEvent("GopherCon", "", "", start, start.Add(time.Hour), 50, ""),
			wantErr:   domain.ErrUnauthenticated,
		},
		{
			name:      "negative capacity",
			principal: organizer,
			event:     domain.NewEvent("GopherCon", "", "", start, start.Add(time.Hour), -1, ""),
			wantErr:   domain.ErrInvalidInput,
		},
		{
			name:      "ends before it starts",
			principal: organizer,
			event:     domain.NewEvent("GopherCon", "", "", start, start.Add(-time.Hour), 5, ""),
			wantErr:   domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			svc := &eventService{eventRepo: store.Events(), contextTimeout: time.Second, now: func() time.Time { return fixed }}

			err := svc.CreateEvent(context.Background(), tt.principal, tt.event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.event.ID)
			assert.Equal(t, "GopherCon", tt.event.Title)
			assert.Equal(t, "org-1", tt.event.CreatedBy)
			assert.Equal(t, fixed, tt.event.CreatedAt)

			got, err := svc.GetEvent(context.Background(), tt.event.ID)
			require.NoError(t, err)
			assert.Equal(t, 50, got.SpotsLeft())
		})
	}
}

func TestEventService_GetEvent(t *testing.T) {
	svc := NewEventService(&stubEventRepo{}, time.Second)
	_, err := svc.GetEvent(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	svc = NewEventService(&stubEventRepo{err: errors.New("db down")}, time.Second)
	_, err = svc.GetEvent(context.Background(), "ev-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewEventService(store.Events(), time.Second)
	organizer := domain.Principal{UserID: "org-1", Roles: []string{domain.RoleAdmin}}

	events, total, err := svc.ListEvents(ctx, domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, events)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		require.NoError(t, svc.CreateEvent(ctx, organizer, domain.NewEvent("E", "", "", start, start, 1, "")))
	}

	events, total, err = svc.ListEvents(ctx, domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, events, 2)
	assert.True(t, events[0].StartTime.After(events[1].StartTime))
}
