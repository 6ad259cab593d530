package authmodel

import "github.com/jrsteele09/churchai-session/users"

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	// Email identifies the account. Matched case-insensitively.
	// Example: "pastor@iglesia.org"
	Email string `json:"email"`

	// Password is checked against the stored bcrypt hash.
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /v1/auth/register.
// The server treats any field it does not recognise as absent.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`

	// RegistrationType selects the onboarding path.
	// Values: "pastor_new_church", "staff_existing_church", "member"
	RegistrationType users.RegistrationType `json:"registration_type"`

	// PastorInfo is only read for "pastor_new_church" registrations and feeds the approval score.
	PastorInfo *users.PastorInfo `json:"pastor_info,omitempty"`

	// ChurchInvitationCode is required for staff and member registrations.
	// Example: "CENTRAL01"
	ChurchInvitationCode string `json:"church_invitation_code,omitempty"`

	// RequestedRole is the staff role asked for when joining an existing church.
	// Example: "secretario"
	RequestedRole users.RoleType `json:"requested_role,omitempty"`
}

// RefreshRequest is the body of POST /v1/auth/refresh. It is sent without a bearer header.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// VerifyEmailRequest is the body of POST /v1/auth/verify-email. Token is the value sent to the
// address at registration.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}
