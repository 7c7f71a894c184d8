package user

import "flexileave/internal/balance"

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// MeResponse is everything the SPA needs after sign-in.
type MeResponse struct {
	UserResponse
	Balances    []balance.BalanceResponse `json:"balances"`
	Permissions []string                  `json:"permissions"`
}
