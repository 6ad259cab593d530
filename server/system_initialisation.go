package server

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/jrsteele09/churchai-session/churches"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem creates the super admin and, when configured, a demo church that staff and
// members can join with its invitation code. Existing records are left alone.
func (s *Server) InitialiseSystem() error {
	generatedPassword, err := s.initialiseSuperAdmin()
	if err != nil {
		return errors.Wrap(err, "[Server.InitialiseSystem] failed to bootstrap super admin")
	}

	church, err := s.initialiseDemoChurch()
	if err != nil {
		return errors.Wrap(err, "[Server.InitialiseSystem] failed to bootstrap demo church")
	}

	if generatedPassword != "" {
		log.Info().
			Str("email", s.config.GetSystemAdminEmail()).
			Str("password", generatedPassword).
			Msg("super admin created, change this password after the first login")
	}
	if church != nil {
		log.Info().
			Str("church", church.Name).
			Str("invitation_code", church.InvitationCode).
			Msg("demo church available")
	}
	return nil
}

// initialiseSuperAdmin returns the generated password when it had to invent one
func (s *Server) initialiseSuperAdmin() (string, error) {
	email := strings.ToLower(strings.TrimSpace(s.config.GetSystemAdminEmail()))
	if email == "" {
		return "", nil
	}

	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		log.Debug().Str("email", email).Msg("super admin already exists")
		return "", nil
	} else if !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return "", errors.Wrap(err, "[Server.initialiseSuperAdmin] GetByEmail")
	}

	password := s.config.GetSystemAdminPassword()
	generated := ""
	if password == "" {
		var err error
		if password, err = generatePassword(); err != nil {
			return "", err
		}
		generated = password
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", errors.Wrap(err, "[Server.initialiseSuperAdmin] HashPassword")
	}

	now := s.nowTime()
	admin := &users.User{
		Email:           email,
		PasswordHash:    passwordHash,
		FirstName:       "Super",
		LastName:        "Admin",
		Role:            users.RoleSuperAdmin,
		Status:          users.StatusActive,
		CanCreateChurch: true,
		IsEmailVerified: true,
		DateJoined:      now,
		UpdatedAt:       now,
	}
	if err := s.repos.Users.Upsert(admin); err != nil {
		return "", errors.Wrap(err, "[Server.initialiseSuperAdmin] Upsert")
	}
	return generated, nil
}

func (s *Server) initialiseDemoChurch() (*churches.Church, error) {
	name := strings.TrimSpace(s.config.GetDemoChurchName())
	code := churches.NormalizeInvitationCode(s.config.GetDemoChurchCode())
	if name == "" || code == "" {
		return nil, nil
	}

	if existing, err := s.repos.Churches.GetByInvitationCode(code); err == nil {
		return existing, nil
	} else if !apperrors.Is(err, apperrors.ErrInvalidInvitationCode) && !apperrors.Is(err, apperrors.ErrChurchNotFound) {
		return nil, errors.Wrap(err, "[Server.initialiseDemoChurch] GetByInvitationCode")
	}

	church := &churches.Church{
		Name:           name,
		InvitationCode: code,
		IsActive:       true,
		CreatedAt:      s.nowTime(),
	}
	if err := s.repos.Churches.Upsert(church); err != nil {
		return nil, errors.Wrap(err, "[Server.initialiseDemoChurch] Upsert")
	}
	return church, nil
}

// generatePassword returns a random password that satisfies the password rules
func generatePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "[generatePassword] rand.Read")
	}
	return "Aa1" + base64.RawURLEncoding.EncodeToString(b), nil
}
