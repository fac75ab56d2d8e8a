package model

import "errors"

// Role enum constants
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var RoleLabels = map[string]string{
	RoleAdmin:    "管理员",
	RoleOperator: "操作员",
}

// User is a dashboard account. Accounts are seeded at startup and live in memory.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"` // admin, operator
	PasswordHash string `json:"-"`
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
)
