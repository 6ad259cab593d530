package auth_test

import (
	"testing"

	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/authmodel"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/stretchr/testify/require"
)

func validPastorRequest() authmodel.RegisterRequest {
	return authmodel.RegisterRequest{
		Email:            "pastor@iglesia.org",
		Password:         "Secret123",
		FirstName:        "Ana",
		LastName:         "Rojas",
		RegistrationType: users.RegistrationPastorNewChurch,
		PastorInfo:       &users.PastorInfo{Denomination: "Bautista", YearsInMinistry: 3},
	}
}

func TestValidator_ValidateRegisterRequest(t *testing.T) {
	v := auth.NewValidator()

	tests := []struct {
		name   string
		modify func(r *authmodel.RegisterRequest)
		field  string
	}{
		{name: "valid pastor", modify: func(r *authmodel.RegisterRequest) {}},
		{name: "unknown registration type", modify: func(r *authmodel.RegisterRequest) { r.RegistrationType = "bishop" }, field: "registration_type"},
		{name: "invalid email", modify: func(r *authmodel.RegisterRequest) { r.Email = "not-an-email" }, field: "email"},
		{name: "display name email", modify: func(r *authmodel.RegisterRequest) { r.Email = "Ana <ana@iglesia.org>" }, field: "email"},
		{name: "short first name", modify: func(r *authmodel.RegisterRequest) { r.FirstName = "A" }, field: "first_name"},
		{name: "weak password", modify: func(r *authmodel.RegisterRequest) { r.Password = "secret123" }, field: "password"},
		{name: "pastor without info", modify: func(r *authmodel.RegisterRequest) { r.PastorInfo = nil }, field: "pastor_info"},
		{name: "negative ministry years", modify: func(r *authmodel.RegisterRequest) { r.PastorInfo.YearsInMinistry = -1 }, field: "pastor_info.years_in_ministry"},
		{
			name: "staff without code",
			modify: func(r *authmodel.RegisterRequest) {
				r.RegistrationType = users.RegistrationStaffExistingChurch
			},
			field: "church_invitation_code",
		},
		{
			name: "staff asking for a congregation role",
			modify: func(r *authmodel.RegisterRequest) {
				r.RegistrationType = users.RegistrationStaffExistingChurch
				r.ChurchInvitationCode = "CENTRAL01"
				r.RequestedRole = users.RoleMiembro
			},
			field: "requested_role",
		},
		{
			name: "member needs nothing extra",
			modify: func(r *authmodel.RegisterRequest) {
				r.RegistrationType = users.RegistrationMember
				r.PastorInfo = nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validPastorRequest()
			tt.modify(&req)
			err := v.ValidateRegisterRequest(req)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *auth.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tt.field, verr.Field)
			require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
		})
	}
}

func TestValidator_ValidateChangePasswordRequest(t *testing.T) {
	v := auth.NewValidator()

	require.NoError(t, v.ValidateChangePasswordRequest(authmodel.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "NewSecret1"}))

	var verr *auth.ValidationError
	err := v.ValidateChangePasswordRequest(authmodel.ChangePasswordRequest{CurrentPassword: "x", NewPassword: "short"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "new_password", verr.Field)

	err = v.ValidateChangePasswordRequest(authmodel.ChangePasswordRequest{NewPassword: "NewSecret1"})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "current_password", verr.Field)
}
