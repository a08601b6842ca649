package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "valour-interiors/quotes_backend/internal/pkg/errors"
	"valour-interiors/quotes_backend/internal/pkg/logger"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const msgInvalidCredentials = "Invalid credentials."

// User is a stored credential. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Name         string
	PasswordHash string
	Role         string
}

// Identity is what a successful login reveals about a user.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Session struct {
	User      Identity  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserStore interface {
	FindByName(ctx context.Context, name string) (User, error)
	Create(ctx context.Context, u User) (User, error)
}

type Service struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	log    *logger.Logger
	now    func() time.Time
}

func NewService(users UserStore, secret string, ttl time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
	}
}

// Login checks name and password and issues a session token. Unknown names
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, name, password string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Session{}, apperrors.New(apperrors.CodeValidation, "Name and password are required.")
	}

	u, err := s.users.FindByName(ctx, name)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return Session{}, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials)
	case err != nil:
		return Session{}, apperrors.Wrap(apperrors.CodeDependency, err, "Server error during login.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn(s.log.WithField(ctx, "user_name", name), "auth.login.rejected")
		return Session{}, apperrors.New(apperrors.CodeUnauthorized, msgInvalidCredentials)
	}

	id := Identity{ID: u.ID, Name: u.Name, Role: u.Role}
	token, expires, err := mintToken(s.secret, s.now(), s.ttl, id)
	if err != nil {
		return Session{}, apperrors.Wrap(apperrors.CodeInternal, err, "Server error during login.")
	}
	return Session{User: id, Token: token, ExpiresAt: expires}, nil
}

// Authenticate resolves a bearer token to the identity it was issued for.
func (s *Service) Authenticate(token string) (Identity, error) {
	claims, err := parseToken(s.secret, s.now, token)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeUnauthorized, err, "Invalid or expired token.")
	}
	return Identity{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}

// Register stores a new user with a hashed password.
func (s *Service) Register(ctx context.Context, name, password, role string) (Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return Identity{}, apperrors.New(apperrors.CodeValidation, "Name and password are required.")
	}
	if role == "" {
		role = RoleStaff
	}
	if role != RoleAdmin && role != RoleStaff {
		return Identity{}, apperrors.New(apperrors.CodeValidation, "Role must be admin or staff.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, apperrors.Wrap(apperrors.CodeValidation, err, "Password cannot be used.")
	}
	u, err := s.users.Create(ctx, User{ID: uuid.NewString(), Name: name, PasswordHash: string(hash), Role: role})
	switch {
	case errors.Is(err, ErrUserExists):
		return Identity{}, apperrors.Wrap(apperrors.CodeConflict, err, "A user with this name already exists.")
	case err != nil:
		return Identity{}, apperrors.Wrap(apperrors.CodeDependency, err, "Failed to create user.")
	}
	return Identity{ID: u.ID, Name: u.Name, Role: u.Role}, nil
}
