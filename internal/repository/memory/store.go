// Package memory is an in-process storage backend with the same contracts as the
// postgres package. It serves STORAGE_DRIVER=memory and the service concurrency tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eventreg/internal/domain"
)

// Store holds all tables. mu guards the maps; eventLocks serializes the
// registration path per event.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	emails    map[string]string
	roles     map[string]*domain.Role
	userRoles map[string]map[string]struct{}
	events    map[string]*domain.Event
	regs      map[string]map[string]*domain.Registration

	locksMu    sync.Mutex
	eventLocks map[string]chan struct{}
}

// NewStore returns an empty store seeded with the attendee, organizer and admin roles.
func NewStore() *Store {
	s := &Store{
		users:      make(map[string]*domain.User),
		emails:     make(map[string]string),
		roles:      make(map[string]*domain.Role),
		userRoles:  make(map[string]map[string]struct{}),
		events:     make(map[string]*domain.Event),
		regs:       make(map[string]map[string]*domain.Registration),
		eventLocks: make(map[string]chan struct{}),
	}
	for _, code := range []string{domain.RoleAttendee, domain.RoleOrganizer, domain.RoleAdmin} {
		s.roles[code] = domain.NewRole(uuid.NewString(), code)
	}
	return s
}

func (s *Store) Events() domain.EventRepository               { return &eventRepository{s} }
func (s *Store) Registrations() domain.RegistrationRepository { return &registrationRepository{s} }
func (s *Store) Locker() domain.EventLocker                   { return &eventLocker{s} }
func (s *Store) Users() domain.UserRepository                 { return &userRepository{s} }
func (s *Store) Roles() domain.RoleRepository                 { return &roleRepository{s} }

// eventView copies the stored event and fills RegistrationCount. Caller holds mu.
func (s *Store) eventView(e *domain.Event) *domain.Event {
	out := *e
	out.RegistrationCount = len(s.regs[e.ID])
	return &out
}

func (s *Store) lockFor(eventID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.eventLocks[eventID]
	if !ok {
		l = make(chan struct{}, 1)
		s.eventLocks[eventID] = l
	}
	return l
}

func paginate[T any](items []T, params domain.PaginationParams) []T {
	off := params.Offset()
	if off < 0 || off >= len(items) {
		return make([]T, 0)
	}
	end := len(items)
	if params.PageSize > 0 && params.PageSize < end-off {
		end = off + params.PageSize
	}
	return items[off:end]
}

type eventRepository struct{ s *Store }

func (r *eventRepository) Create(_ context.Context, e *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = uuid.NewString()
	e.RegistrationCount = 0
	stored := *e
	r.s.events[e.ID] = &stored
	return nil
}

func (r *eventRepository) GetByID(_ context.Context, id string) (*domain.Event, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.s.eventView(e), nil
}

func (r *eventRepository) List(_ context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	events := make([]*domain.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		events = append(events, r.s.eventView(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].StartTime.Equal(events[j].StartTime) {
			return events[i].StartTime.After(events[j].StartTime)
		}
		return events[i].ID < events[j].ID
	})
	return paginate(events, params), len(events), nil
}

func (r *eventRepository) CountRegistrations(_ context.Context, eventID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.regs[eventID]), nil
}

type registrationRepository struct{ s *Store }

func (r *registrationRepository) GetByEventAndUser(_ context.Context, eventID, userID string) (*domain.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	reg, ok := r.s.regs[eventID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *reg
	return &out, nil
}

func (r *registrationRepository) Delete(_ context.Context, eventID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.regs[eventID][userID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.regs[eventID], userID)
	return nil
}

func (r *registrationRepository) ListByUserID(_ context.Context, userID string) ([]*domain.Registration, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	regs := make([]*domain.Registration, 0)
	for _, byUser := range r.s.regs {
		if reg, ok := byUser[userID]; ok {
			out := *reg
			regs = append(regs, &out)
		}
	}
	sortNewestFirst(regs)
	return regs, nil
}

func (r *registrationRepository) List(_ context.Context, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	regs := make([]*domain.Registration, 0)
	for _, byUser := range r.s.regs {
		for _, reg := range byUser {
			out := *reg
			regs = append(regs, &out)
		}
	}
	sortNewestFirst(regs)
	return paginate(regs, params), len(regs), nil
}

func sortNewestFirst(regs []*domain.Registration) {
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].RegisteredAt.Equal(regs[j].RegisteredAt) {
			return regs[i].RegisteredAt.After(regs[j].RegisteredAt)
		}
		return regs[i].ID < regs[j].ID
	})
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, taken := r.s.emails[key]; taken {
		return domain.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	stored := *u
	r.s.users[u.ID] = &stored
	r.s.emails[key] = u.ID
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *r.s.users[id]
	return &out, nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepository) AssignRole(_ context.Context, userID, roleID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrNotFound
	}
	if r.s.userRoles[userID] == nil {
		r.s.userRoles[userID] = make(map[string]struct{})
	}
	r.s.userRoles[userID][roleID] = struct{}{}
	return nil
}

type roleRepository struct{ s *Store }

func (r *roleRepository) GetByCode(_ context.Context, code string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *role
	return &out, nil
}

func (r *roleRepository) ListByUserID(_ context.Context, userID string) ([]*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var roles []*domain.Role
	for _, role := range r.s.roles {
		if _, ok := r.s.userRoles[userID][role.ID]; ok {
			out := *role
			roles = append(roles, &out)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Code < roles[j].Code })
	return roles, nil
}
