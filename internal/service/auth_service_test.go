package service

import (
	"context"
	"testing"
	"time"

	"freightledger/internal/clock"
	"freightledger/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthUnderTest(t *testing.T, clk clock.Clock) AuthService {
	t.Helper()
	users, err := SeedUsers("secret-pass")
	require.NoError(t, err)
	return NewAuthService("test-secret", time.Hour, clk, users)
}

func TestAuthLogin(t *testing.T) {
	now := time.Now()
	svc := newAuthUnderTest(t, clock.NewFixed(now))

	tests := []struct {
		name     string
		req      LoginRequest
		wantErr  error
		wantRole string
	}{
		{name: "admin", req: LoginRequest{Username: "admin", Password: "secret-pass"}, wantRole: model.RoleAdmin},
		{name: "operator", req: LoginRequest{Username: "operator2", Password: "secret-pass"}, wantRole: model.RoleOperator},
		{name: "wrong password", req: LoginRequest{Username: "admin", Password: "nope"}, wantErr: model.ErrInvalidCredentials},
		{name: "unknown user", req: LoginRequest{Username: "ghost", Password: "secret-pass"}, wantErr: model.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, resp.User.Role)
			assert.NotEmpty(t, resp.User.RoleLabel)

			claims, err := svc.ParseToken(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Username, claims.Subject)
			assert.Equal(t, tt.wantRole, claims.Role)
		})
	}
}

func TestAuthParseTokenRejects(t *testing.T) {
	start := time.Now()
	clk := clock.NewStepping(start, 0)
	svc := newAuthUnderTest(t, clk)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "operator1", Password: "secret-pass"})
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(start.Add(time.Hour)),
		},
	})
	forged, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(forged)
	assert.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, model.ErrInvalidToken)

	clk.Set(start.Add(2 * time.Hour))
	_, err = svc.ParseToken(resp.Token)
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuthGetUser(t *testing.T) {
	svc := newAuthUnderTest(t, clock.NewFixed(time.Now()))

	user, err := svc.GetUser(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@logistics.com", user.Email)

	_, err = svc.GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrInvalidToken)
}
