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

// stubHasher implements domain.PasswordHasher without bcrypt's cost.
type stubHasher struct{}

func (stubHasher) GenerateSalt() (string, error) { return "salt", nil }
func (stubHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (stubHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

// stubIssuer records what it was asked to sign.
type stubIssuer struct {
	userID string
	roles  []string
	err    error
}

func (s *stubIssuer) Issue(userID, _ string, roles []string, _ time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.userID = userID
	s.roles = roles
	return "token-" + userID, nil
}

func newTestAuthService(store *memory.Store, issuer *stubIssuer) *authService {
	return &authService{
		userRepo:    store.Users(),
		roleRepo:    store.Roles(),
		hasher:      stubHasher{},
		tokenIssuer: issuer,
		tokenExpiry: time.Hour,
		now:         time.Now,
	}
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		password  string
		role      string
		wantRole  string
		wantErrIs error
	}{
		{name: "attendee by default", email: " Alice@Example.com ", password: "password1", role: "", wantRole: domain.RoleAttendee},
		{name: "organizer allowed", email: "org@example.com", password: "password1", role: "Organizer", wantRole: domain.RoleOrganizer},
		{name: "admin cannot be self-assigned", email: "root@example.com", password: "password1", role: "admin", wantRole: domain.RoleAttendee},
		{name: "invalid email", email: "nope", password: "password1", wantErrIs: domain.ErrInvalidInput},
		{name: "short password", email: "bob@example.com", password: "short", wantErrIs: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			issuer := &stubIssuer{}
			svc := newTestAuthService(store, issuer)

			user, token, err := svc.SignUp(context.Background(), tt.email, tt.password, "Name", tt.role)
			if tt.wantErrIs != nil {
				require.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, user.ID)
			assert.Equal(t, "token-"+user.ID, token)
			assert.Equal(t, []string{tt.wantRole}, issuer.roles)

			roles, err := store.Roles().ListByUserID(context.Background(), user.ID)
			require.NoError(t, err)
			require.Len(t, roles, 1)
			assert.Equal(t, tt.wantRole, roles[0].Code)
		})
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	svc := newTestAuthService(store, &stubIssuer{})
	_, _, err := svc.SignUp(context.Background(), "alice@example.com", "password1", "Alice", "")
	require.NoError(t, err)
	_, _, err = svc.SignUp(context.Background(), "ALICE@example.com", "password1", "Alice", "")
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	issuer := &stubIssuer{}
	svc := newTestAuthService(store, issuer)
	created, _, err := svc.SignUp(ctx, "alice@example.com", "password1", "Alice", "organizer")
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "Alice@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "token-"+created.ID, token)
	assert.Equal(t, []string{domain.RoleOrganizer}, issuer.roles)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password1")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_IssueToken(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	issuer := &stubIssuer{}
	svc := newTestAuthService(store, issuer)
	user, _, err := svc.SignUp(ctx, "alice@example.com", "password1", "Alice", "")
	require.NoError(t, err)

	token, err := svc.IssueToken(ctx, domain.Principal{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "token-"+user.ID, token)
	assert.Equal(t, []string{domain.RoleAttendee}, issuer.roles)

	_, err = svc.IssueToken(ctx, domain.Principal{UserID: "ghost"})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.IssueToken(ctx, domain.Principal{})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	issuer.err = errors.New("signing key missing")
	_, err = svc.IssueToken(ctx, domain.Principal{UserID: user.ID})
	require.Error(t, err)
}
