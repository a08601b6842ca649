package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
)

type memoryUsers struct {
	byName  map[string]User
	findErr error
}

func (m *memoryUsers) FindByName(ctx context.Context, name string) (User, error) {
	if m.findErr != nil {
		return User{}, m.findErr
	}
	u, ok := m.byName[name]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) Create(ctx context.Context, u User) (User, error) {
	if _, ok := m.byName[u.Name]; ok {
		return User{}, ErrUserExists
	}
	m.byName[u.Name] = u
	return u, nil
}

var authNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestAuth(t *testing.T) (*Service, *memoryUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &memoryUsers{byName: map[string]User{
		"priya": {ID: "u-1", Name: "priya", PasswordHash: string(hash), Role: RoleAdmin},
	}}
	svc := NewService(users, "test-secret", time.Hour, nil)
	svc.now = func() time.Time { return authNow }
	return svc, users
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth(t)

	sess, err := svc.Login(context.Background(), " priya ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, Identity{ID: "u-1", Name: "priya", Role: RoleAdmin}, sess.User)
	assert.Equal(t, authNow.Add(time.Hour), sess.ExpiresAt)
	assert.NotEmpty(t, sess.Token)

	id, err := svc.Authenticate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User, id)
}

func TestLoginFailures(t *testing.T) {
	svc, users := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		password string
		code     apperrors.Code
		message  string
	}{
		{"missing name", "", "x", apperrors.CodeValidation, "Name and password are required."},
		{"missing password", "priya", "", apperrors.CodeValidation, "Name and password are required."},
		{"unknown user", "ravi", "s3cret", apperrors.CodeUnauthorized, msgInvalidCredentials},
		{"wrong password", "priya", "S3CRET", apperrors.CodeUnauthorized, msgInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.user, tt.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tt.code))
			assert.Equal(t, tt.message, apperrors.As(err).Message())
		})
	}

	users.findErr = errors.New("db down")
	_, err := svc.Login(ctx, "priya", "s3cret")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDependency))
}

func TestAuthenticateRejects(t *testing.T) {
	svc, _ := newTestAuth(t)
	sess, err := svc.Login(context.Background(), "priya", "s3cret")
	require.NoError(t, err)

	svc.now = func() time.Time { return authNow.Add(2 * time.Hour) }
	_, err = svc.Authenticate(sess.Token)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized), "expired")

	svc.now = func() time.Time { return authNow }
	other := NewService(nil, "other-secret", time.Hour, nil)
	other.now = svc.now
	_, err = other.Authenticate(sess.Token)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized), "foreign signature")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Name: "priya"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Authenticate(unsigned)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized), "alg none")
}

func TestRegister(t *testing.T) {
	svc, users := newTestAuth(t)
	ctx := context.Background()

	id, err := svc.Register(ctx, "ravi", "pa55", "")
	require.NoError(t, err)
	assert.Equal(t, "ravi", id.Name)
	assert.Equal(t, RoleStaff, id.Role)
	assert.NotEqual(t, "pa55", users.byName["ravi"].PasswordHash)

	_, err = svc.Login(ctx, "ravi", "pa55")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ravi", "again", RoleStaff)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))

	_, err = svc.Register(ctx, "meera", "x", "owner")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
