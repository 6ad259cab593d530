package users

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
	"unicode"

	"github.com/jrsteele09/churchai-session/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// RoleType is the role a user holds within their church
type RoleType string

const (
	// Church administration
	RolePastorPrincipal RoleType = "pastor_principal"
	RolePastorAsociado  RoleType = "pastor_asociado"
	RoleAdminIglesia    RoleType = "admin_iglesia"
	RoleLiderMinisterio RoleType = "lider_ministerio"

	// Operational roles
	RoleSecretario RoleType = "secretario"
	RoleTesorero   RoleType = "tesorero"
	RoleVoluntario RoleType = "voluntario"

	// Congregation
	RoleMiembro   RoleType = "miembro"
	RoleVisitante RoleType = "visitante"

	RoleSuperAdmin RoleType = "super_admin"
)

// StaffRoles are the roles a staff registrant may request when joining an existing church.
var StaffRoles = []RoleType{
	RolePastorAsociado, RoleAdminIglesia, RoleLiderMinisterio,
	RoleSecretario, RoleTesorero, RoleVoluntario,
}

func (r RoleType) IsStaffRole() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

type StatusType string

const (
	StatusPendingApproval StatusType = "pending_approval"
	StatusActive          StatusType = "active"
	StatusSuspended       StatusType = "suspended"
	StatusRejected        StatusType = "rejected"
)

type RegistrationType string

const (
	RegistrationPastorNewChurch     RegistrationType = "pastor_new_church"
	RegistrationStaffExistingChurch RegistrationType = "staff_existing_church"
	RegistrationMember              RegistrationType = "member"
)

func (r RegistrationType) Valid() bool {
	switch r {
	case RegistrationPastorNewChurch, RegistrationStaffExistingChurch, RegistrationMember:
		return true
	}
	return false
}

// PastorInfo is supplied by pastors registering a new church and feeds the approval assessment
type PastorInfo struct {
	Denomination             string `json:"denomination"`
	YearsInMinistry          int    `json:"years_in_ministry"`
	CurrentChurchName        string `json:"current_church_name,omitempty"`
	OrdinationCertificateURL string `json:"ordination_certificate_url,omitempty"`
	ReferenceLetterURL       string `json:"reference_letter_url,omitempty"`
}

// Profile is the user snapshot handed to clients by login and /me, and persisted by the session client.
type Profile struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Role            RoleType   `json:"role"`
	Status          StatusType `json:"status"`
	CanCreateChurch bool       `json:"can_create_church"`
	HasChurch       bool       `json:"has_church"`
	ChurchID        *string    `json:"church_id"`
	IsEmailVerified bool       `json:"is_email_verified"`
	AIApprovalScore *float64   `json:"ai_approval_score"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// User is the server-side account record
type User struct {
	ID               string           `json:"id"`
	Email            string           `json:"email"`
	PasswordHash     string           `json:"-"` // never serialize
	FirstName        string           `json:"first_name"`
	LastName         string           `json:"last_name"`
	Phone            string           `json:"phone,omitempty"`
	Role             RoleType         `json:"role"`
	Status           StatusType       `json:"status"`
	RegistrationType RegistrationType `json:"registration_type,omitempty"`
	CanCreateChurch  bool             `json:"can_create_church"`
	ChurchID         string           `json:"church_id,omitempty"`
	PendingChurchID  string           `json:"pending_church_id,omitempty"` // church a staff registrant asked to join
	PastorInfo       *PastorInfo      `json:"pastor_info,omitempty"`
	IsEmailVerified  bool             `json:"is_email_verified"`
	AIApprovalScore  *float64         `json:"ai_approval_score,omitempty"`

	// EmailVerificationToken is cleared once the address is verified
	EmailVerificationToken  string    `json:"-"`
	EmailVerificationSentAt time.Time `json:"-"`
	AIApprovalNotes  []string         `json:"ai_approval_notes,omitempty"`
	DateJoined       time.Time        `json:"date_joined"`
	LastLogin        time.Time        `json:"last_login,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (u *User) HasChurch() bool {
	return u.ChurchID != ""
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Profile returns the client-facing snapshot of the user
func (u *User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Role:            u.Role,
		Status:          u.Status,
		CanCreateChurch: u.CanCreateChurch,
		HasChurch:       u.HasChurch(),
		ChurchID:        utils.PtrIfNotZero(u.ChurchID),
		IsEmailVerified: u.IsEmailVerified,
		AIApprovalScore: u.AIApprovalScore,
	}
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

// NewEmailVerificationToken returns 32 random bytes, URL-safe base64 encoded without padding
func NewEmailVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
