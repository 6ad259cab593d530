package auth

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/jrsteele09/churchai-session/users"
)

const (
	nameMinLength           = 2
	nameMaxLength           = 100
	passwordMaxLength       = 100
	phoneMaxLength          = 50
	invitationCodeMaxLength = 20
	denominationMinLength   = 2
	denominationMaxLength   = 200
	maxYearsInMinistry      = 100
	churchNameMaxLength     = 500
)

// Validator holds the request rules the auth service enforces before touching any repository.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLoginRequest only checks presence. Credentials are never format-checked on login
// so every failure looks the same to the caller.
func (v *Validator) ValidateLoginRequest(req authmodel.LoginRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Message: "field required"}
	}
	if req.Password == "" {
		return &ValidationError{Field: "password", Message: "field required"}
	}
	return nil
}

// ValidateRegisterRequest applies the per-registration-type rules
func (v *Validator) ValidateRegisterRequest(req authmodel.RegisterRequest) error {
	if !req.RegistrationType.Valid() {
		return &ValidationError{
			Field:   "registration_type",
			Message: "registration_type debe ser uno de: pastor_new_church, staff_existing_church, member",
		}
	}
	if err := v.ValidateEmail(req.Email); err != nil {
		return err
	}
	if err := validateLength("first_name", req.FirstName, nameMinLength, nameMaxLength); err != nil {
		return err
	}
	if err := validateLength("last_name", req.LastName, nameMinLength, nameMaxLength); err != nil {
		return err
	}
	if err := v.ValidatePassword("password", req.Password); err != nil {
		return err
	}
	if utf8.RuneCountInString(req.Phone) > phoneMaxLength {
		return &ValidationError{Field: "phone", Message: "phone is too long"}
	}

	switch req.RegistrationType {
	case users.RegistrationPastorNewChurch:
		if req.PastorInfo == nil {
			return &ValidationError{Field: "pastor_info", Message: "pastor_info es requerido para registro de pastor"}
		}
		if err := v.ValidatePastorInfo(req.PastorInfo); err != nil {
			return err
		}
	case users.RegistrationStaffExistingChurch:
		if strings.TrimSpace(req.ChurchInvitationCode) == "" {
			return &ValidationError{
				Field:   "church_invitation_code",
				Message: "church_invitation_code es requerido para staff",
			}
		}
		if req.RequestedRole != "" && !req.RequestedRole.IsStaffRole() {
			return &ValidationError{Field: "requested_role", Message: "requested_role is not a staff role"}
		}
	}

	if utf8.RuneCountInString(req.ChurchInvitationCode) > invitationCodeMaxLength {
		return &ValidationError{Field: "church_invitation_code", Message: "church_invitation_code is too long"}
	}
	return nil
}

func (v *Validator) ValidatePastorInfo(info *users.PastorInfo) error {
	if err := validateLength("pastor_info.denomination", info.Denomination, denominationMinLength, denominationMaxLength); err != nil {
		return err
	}
	if info.YearsInMinistry < 0 || info.YearsInMinistry > maxYearsInMinistry {
		return &ValidationError{Field: "pastor_info.years_in_ministry", Message: "years_in_ministry must be between 0 and 100"}
	}
	if utf8.RuneCountInString(info.CurrentChurchName) > churchNameMaxLength {
		return &ValidationError{Field: "pastor_info.current_church_name", Message: "current_church_name is too long"}
	}
	return nil
}

func (v *Validator) ValidateChangePasswordRequest(req authmodel.ChangePasswordRequest) error {
	if req.CurrentPassword == "" {
		return &ValidationError{Field: "current_password", Message: "field required"}
	}
	return v.ValidatePassword("new_password", req.NewPassword)
}

func (v *Validator) ValidateVerifyEmailRequest(req authmodel.VerifyEmailRequest) error {
	if strings.TrimSpace(req.Token) == "" {
		return &ValidationError{Field: "token", Message: "field required"}
	}
	return nil
}

// ValidatePassword applies the password strength rules to the named field
func (v *Validator) ValidatePassword(field, password string) error {
	if utf8.RuneCountInString(password) > passwordMaxLength {
		return &ValidationError{Field: field, Message: "password is too long"}
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		return &ValidationError{Field: field, Message: err.Error()}
	}
	return nil
}

func (v *Validator) ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return &ValidationError{Field: "email", Message: "value is not a valid email address"}
	}
	return nil
}

func validateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		return &ValidationError{Field: field, Message: "ensure this value has at least " + strconv.Itoa(min) + " characters"}
	}
	if n > max {
		return &ValidationError{Field: field, Message: "ensure this value has at most " + strconv.Itoa(max) + " characters"}
	}
	return nil
}
