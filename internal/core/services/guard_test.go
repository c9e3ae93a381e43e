package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(token string) (*VerifiedToken, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerifiedToken), args.Error(1)
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestAuthenticate(t *testing.T) {
	email := "ops@punebus.in"

	tests := []struct {
		name  string
		token string
		setup func(v *mockVerifier, l *mockLookup)
		kind  error
		role  domain.Role
	}{
		{
			name:  "missing token",
			token: "",
			setup: func(*mockVerifier, *mockLookup) {},
			kind:  domain.ErrUnauthenticated,
		},
		{
			name:  "bad signature",
			token: "forged",
			setup: func(v *mockVerifier, _ *mockLookup) {
				v.On("Verify", "forged").Return(nil, jwt.ErrTokenInvalid)
			},
			kind: domain.ErrInvalidCredential,
		},
		{
			name:  "principal deleted",
			token: "t",
			setup: func(v *mockVerifier, l *mockLookup) {
				v.On("Verify", "t").Return(&VerifiedToken{PrincipalID: "gone"}, nil)
				l.On("GetByID", mock.Anything, "gone").Return(nil, gorm.ErrRecordNotFound)
			},
			kind: domain.ErrInvalidCredential,
		},
		{
			name:  "principal inactive",
			token: "t",
			setup: func(v *mockVerifier, l *mockLookup) {
				v.On("Verify", "t").Return(&VerifiedToken{PrincipalID: "u1"}, nil)
				l.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: "manager", IsActive: false}, nil)
			},
			kind: domain.ErrInvalidCredential,
		},
		{
			name:  "role read from store not token",
			token: "t",
			setup: func(v *mockVerifier, l *mockLookup) {
				v.On("Verify", "t").Return(&VerifiedToken{PrincipalID: "u1", Role: domain.RoleAdmin}, nil)
				l.On("GetByID", mock.Anything, "u1").Return(&models.User{
					ID: "u1", Name: "Ops", Email: &email, Password: "hash", Role: "sales", IsActive: true,
				}, nil)
			},
			role: domain.RoleSales,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, l := new(mockVerifier), new(mockLookup)
			tt.setup(v, l)
			guard := NewAccessGuard(v, l)

			p, err := guard.Authenticate(context.Background(), tt.token)
			if tt.kind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.kind), "got %v", err)
				assert.Nil(t, p)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.role, p.Role)
				assert.Equal(t, email, p.Email)
			}
			v.AssertExpectations(t)
			l.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_LookupFailureIsNotCredentialError(t *testing.T) {
	v, l := new(mockVerifier), new(mockLookup)
	v.On("Verify", "t").Return(&VerifiedToken{PrincipalID: "u1"}, nil)
	l.On("GetByID", mock.Anything, "u1").Return(nil, errors.New("connection refused"))

	_, err := NewAccessGuard(v, l).Authenticate(context.Background(), "t")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidCredential))
}

func TestJWTVerifier(t *testing.T) {
	token, err := jwt.GenerateAccessToken("u1", "Ops", "manager", "secret", 5)
	require.NoError(t, err)

	verified, err := NewJWTVerifier("secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", verified.PrincipalID)
	assert.Equal(t, domain.RoleManager, verified.Role)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), verified.ExpiresAt, 5*time.Second)

	_, err = NewJWTVerifier("other").Verify(token)
	assert.Error(t, err)
}

func TestAccessGuard_EndToEndWithJWT(t *testing.T) {
	users := newFakeUserRepo(&models.User{ID: "m1", Name: "Manager", Role: "manager", IsActive: true})
	guard := NewAccessGuard(NewJWTVerifier("secret"), users)

	token, err := jwt.GenerateAccessToken("m1", "Manager", "manager", "secret", 5)
	require.NoError(t, err)

	p, err := guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.NoError(t, guard.Authorize(p, domain.StaffOrAdmin))
	assert.True(t, errors.Is(guard.Authorize(p, domain.AdminOnly), domain.ErrForbidden))
}
