package authmodel

import "github.com/jrsteele09/churchai-session/users"

// TokenTypeBearer is the only token type the API issues.
const TokenTypeBearer = "bearer"

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	Success bool `json:"success"`

	// AccessToken is the short-lived JWT attached as "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived JWT exchanged at /v1/auth/refresh for a new access token.
	RefreshToken string `json:"refresh_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// User is the profile snapshot clients persist alongside the tokens.
	User users.Profile `json:"user"`
}

// RegisterResponse is returned by registration. Tokens are issued for every new account,
// including ones still pending approval, so clients can poll /v1/auth/me for the status.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`

	// Status is "active" when the pastor assessment auto-approved the account.
	Status          users.StatusType `json:"status"`
	CanCreateChurch bool             `json:"can_create_church"`

	// AIScore is the approval assessment score, between 0 and 1.
	AIScore               *float64 `json:"ai_score,omitempty"`
	EstimatedApprovalTime string   `json:"estimated_approval_time,omitempty"`

	AccessToken  *string `json:"access_token,omitempty"`
	RefreshToken *string `json:"refresh_token,omitempty"`
}

// RefreshResponse is returned by /v1/auth/refresh. The refresh token is not rotated.
type RefreshResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ErrorResponse is the error body for every non-2xx response. Clients read Detail as the
// human-readable message.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationErrorResponse is the 422 body. Each entry names the offending field in Loc
// (e.g. ["body", "email"]) and explains the problem in Msg.
type ValidationErrorResponse struct {
	Detail []ValidationDetail `json:"detail"`
}

type ValidationDetail struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// InternalErrorResponse is returned when a request fails in a way no handler anticipated
type InternalErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}
