package memory

import (
	"context"

	"github.com/google/uuid"

	"eventreg/internal/domain"
)

type eventLocker struct{ s *Store }

// WithEventLock holds the event's lock for the duration of fn. Inserts are staged and
// applied only when fn returns nil. Waiting for the lock honors ctx.
func (l *eventLocker) WithEventLock(ctx context.Context, eventID string, fn func(ctx context.Context, tx domain.RegistrationTx) error) error {
	l.s.mu.RLock()
	_, ok := l.s.events[eventID]
	l.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	lock := l.s.lockFor(eventID)
	select {
	case lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-lock }()

	l.s.mu.RLock()
	e, ok := l.s.events[eventID]
	var view *domain.Event
	if ok {
		view = l.s.eventView(e)
	}
	l.s.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	tx := &registrationTx{s: l.s, event: view}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type registrationTx struct {
	s      *Store
	event  *domain.Event
	staged []*domain.Registration
}

func (t *registrationTx) Event() *domain.Event {
	return t.event
}

func (t *registrationTx) InsertIfAbsent(_ context.Context, reg *domain.Registration) (bool, error) {
	for _, st := range t.staged {
		if st.UserID == reg.UserID && st.EventID == reg.EventID {
			return false, nil
		}
	}
	t.s.mu.RLock()
	_, exists := t.s.regs[reg.EventID][reg.UserID]
	t.s.mu.RUnlock()
	if exists {
		return false, nil
	}
	reg.ID = uuid.NewString()
	stored := *reg
	t.staged = append(t.staged, &stored)
	return true, nil
}

func (t *registrationTx) commit() {
	if len(t.staged) == 0 {
		return
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, reg := range t.staged {
		if t.s.regs[reg.EventID] == nil {
			t.s.regs[reg.EventID] = make(map[string]*domain.Registration)
		}
		if _, exists := t.s.regs[reg.EventID][reg.UserID]; !exists {
			t.s.regs[reg.EventID][reg.UserID] = reg
		}
	}
}
