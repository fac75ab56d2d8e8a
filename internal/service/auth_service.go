package service

import (
	"context"
	"fmt"
	"time"

	"freightledger/internal/clock"
	"freightledger/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	RoleLabel string `json:"role_label"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// Claims is the token payload; Subject carries the username.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	ParseToken(token string) (*Claims, error)
	GetUser(ctx context.Context, username string) (*UserResponse, error)
}

type authService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
	users  map[string]model.User
}

func NewAuthService(secret string, ttl time.Duration, clk clock.Clock, users []model.User) AuthService {
	byName := make(map[string]model.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &authService{secret: []byte(secret), ttl: ttl, clock: clk, users: byName}
}

// SeedUsers builds the demo accounts: one admin and two operators sharing password.
func SeedUsers(password string) ([]model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	users := []model.User{
		{Username: "admin", Email: "admin@logistics.com", Role: model.RoleAdmin},
		{Username: "operator1", Email: "operator1@logistics.com", Role: model.RoleOperator},
		{Username: "operator2", Email: "operator2@logistics.com", Role: model.RoleOperator},
	}
	for i := range users {
		users[i].ID = uuid.NewString()
		users[i].PasswordHash = string(hash)
	}
	return users, nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, ok := s.users[req.Username]
	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &TokenResponse{Token: signed, ExpiresAt: expiresAt, User: toUserResponse(user)}, nil
}

func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, model.ErrInvalidToken
	}
	if _, ok := s.users[claims.Subject]; !ok {
		return nil, fmt.Errorf("%w: unknown subject", model.ErrInvalidToken)
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, username string) (*UserResponse, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: unknown user %q", model.ErrInvalidToken, username)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		RoleLabel: model.RoleLabels[u.Role],
	}
}
