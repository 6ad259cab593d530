package auth

import (
	"strings"
	"time"

	"github.com/jrsteele09/churchai-session/authmodel"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/internal/utils"
	"github.com/jrsteele09/churchai-session/token"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	staffPendingScore   = 0.5
	staffPendingMessage = "Pendiente de aprobación por el pastor"
)

// Service implements registration, login, token refresh and account operations for the REST API.
type Service struct {
	repos        Repos            // All repository dependencies
	tokenCreator *token.Manager   // Issues and verifies access and refresh tokens
	validator    *Validator       // Request rules
	nowTime      func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, tokenCreator *token.Manager, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Churches == nil {
		return nil, errors.New("[NewService] Churches repo is required")
	}
	if tokenCreator == nil {
		return nil, errors.New("[NewService] tokenCreator is required")
	}

	s := &Service{
		repos:        repos,
		tokenCreator: tokenCreator,
		validator:    NewValidator(),
		nowTime:      time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Register creates an account. Pastors registering a new church are scored and may be
// activated immediately; staff and members always wait for approval.
func (s *Service) Register(req authmodel.RegisterRequest) (*authmodel.RegisterResponse, error) {
	if err := s.validator.ValidateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if _, err := s.repos.Users.GetByEmail(email); err == nil {
		return nil, newError(apperrors.ErrUserExists, DetailEmailTaken)
	} else if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, errors.Wrap(err, "[Service.Register] GetByEmail")
	}

	role := users.RoleMiembro
	switch req.RegistrationType {
	case users.RegistrationPastorNewChurch:
		role = users.RolePastorPrincipal
	case users.RegistrationStaffExistingChurch:
		role = req.RequestedRole
		if role == "" {
			role = users.RoleVoluntario
		}
	}

	var pendingChurchID string
	if req.RegistrationType == users.RegistrationStaffExistingChurch || strings.TrimSpace(req.ChurchInvitationCode) != "" {
		church, err := s.repos.Churches.GetByInvitationCode(req.ChurchInvitationCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInvitationCode) || errors.Is(err, apperrors.ErrChurchNotFound) {
				return nil, newError(apperrors.ErrInvalidInvitationCode, DetailInvalidChurchCode)
			}
			return nil, errors.Wrap(err, "[Service.Register] GetByInvitationCode")
		}
		pendingChurchID = church.ID
	}

	passwordHash, err := users.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] HashPassword")
	}

	verificationToken, err := users.NewEmailVerificationToken()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] NewEmailVerificationToken")
	}

	now := s.nowTime()
	user := &users.User{
		Email:            email,
		PasswordHash:     passwordHash,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Phone:            req.Phone,
		Role:             role,
		Status:           users.StatusPendingApproval,
		RegistrationType: req.RegistrationType,
		PendingChurchID:  pendingChurchID,
		PastorInfo:       req.PastorInfo,
		DateJoined:       now,
		UpdatedAt:        now,

		EmailVerificationToken:  verificationToken,
		EmailVerificationSentAt: now,
	}

	message := staffPendingMessage
	estimatedApprovalTime := staffPendingMessage
	score := staffPendingScore

	autoApproved := false
	if req.RegistrationType == users.RegistrationPastorNewChurch {
		assessment := AssessPastorRegistration(user.Email, user.FirstName, user.LastName, req.PastorInfo)
		autoApproved = assessment.Decision == DecisionAutoApprove
		user.AIApprovalScore = utils.Ptr(assessment.Score)
		user.AIApprovalNotes = assessment.Notes()
		user.CanCreateChurch = assessment.CanCreateChurch

		message = assessment.Message
		estimatedApprovalTime = assessment.EstimatedApprovalTime
		score = assessment.Score
		log.Info().Str("email", user.Email).Float64("score", score).Str("decision", string(assessment.Decision)).Msg("pastor registration assessed")
	}

	// Every account starts pending; the assessment is what approves it
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.Register] Upsert")
	}
	if autoApproved {
		if err := s.repos.Users.SetStatus(user.Email, users.StatusActive); err != nil {
			return nil, errors.Wrap(err, "[Service.Register] SetStatus")
		}
		user.Status = users.StatusActive
	}

	accessToken, refreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Register] issueTokens")
	}

	log.Info().Str("user_id", user.ID).Str("status", string(user.Status)).Msg("user registered")

	return &authmodel.RegisterResponse{
		Success:               true,
		Message:               message,
		UserID:                user.ID,
		Status:                user.Status,
		CanCreateChurch:       user.CanCreateChurch,
		AIScore:               utils.Ptr(score),
		EstimatedApprovalTime: estimatedApprovalTime,
		AccessToken:           &accessToken,
		RefreshToken:          &refreshToken,
	}, nil
}

// Login exchanges credentials for a token pair. Unknown emails and wrong passwords fail identically.
func (s *Service) Login(req authmodel.LoginRequest) (*authmodel.AuthResponse, error) {
	if err := s.validator.ValidateLoginRequest(req); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, newError(apperrors.ErrInvalidCredentials, DetailInvalidCredentials)
		}
		return nil, errors.Wrap(err, "[Service.Login] GetByEmail")
	}

	if !users.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, newError(apperrors.ErrInvalidCredentials, DetailInvalidCredentials)
	}

	user.LastLogin = s.nowTime()
	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.Login] Upsert")
	}

	accessToken, refreshToken, err := s.issueTokens(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Login] issueTokens")
	}

	log.Info().Str("user_id", user.ID).Msg("login successful")

	return &authmodel.AuthResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    authmodel.TokenTypeBearer,
		User:         user.Profile(),
	}, nil
}

// Refresh issues a new access token. The refresh token itself is not rotated.
func (s *Service) Refresh(req authmodel.RefreshRequest) (*authmodel.RefreshResponse, error) {
	claims, err := s.tokenCreator.Verify(req.RefreshToken, token.TypeRefresh)
	if err != nil {
		return nil, newError(apperrors.ErrInvalidRefreshToken, DetailInvalidRefreshToken)
	}

	user, err := s.repos.Users.GetByID(claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, newError(apperrors.ErrInvalidRefreshToken, DetailUserNotFound)
		}
		return nil, errors.Wrap(err, "[Service.Refresh] GetByID")
	}

	accessToken, err := s.tokenCreator.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] CreateAccessToken")
	}

	return &authmodel.RefreshResponse{
		Success:     true,
		AccessToken: accessToken,
		TokenType:   authmodel.TokenTypeBearer,
	}, nil
}

// Authenticate resolves a bearer access token to its user
func (s *Service) Authenticate(accessToken string) (*users.User, *token.Claims, error) {
	claims, err := s.tokenCreator.Verify(accessToken, token.TypeAccess)
	if err != nil {
		return nil, nil, newError(apperrors.ErrInvalidToken, DetailCredentialsNotVerified)
	}

	user, err := s.repos.Users.GetByID(claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, newError(apperrors.ErrInvalidToken, DetailCredentialsNotVerified)
		}
		return nil, nil, errors.Wrap(err, "[Service.Authenticate] GetByID")
	}
	return user, claims, nil
}

func (s *Service) Me(user *users.User) users.Profile {
	return user.Profile()
}

// Logout revokes the presented access token. Clients drop their own credentials.
func (s *Service) Logout(user *users.User, claims *token.Claims) (*authmodel.MessageResponse, error) {
	if err := s.tokenCreator.Revoke(claims); err != nil {
		return nil, errors.Wrap(err, "[Service.Logout] Revoke")
	}
	log.Info().Str("user_id", user.ID).Msg("user logged out")
	return &authmodel.MessageResponse{Success: true, Message: "Sesión cerrada exitosamente"}, nil
}

func (s *Service) ChangePassword(user *users.User, req authmodel.ChangePasswordRequest) (*authmodel.MessageResponse, error) {
	if err := s.validator.ValidateChangePasswordRequest(req); err != nil {
		return nil, err
	}
	if !users.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return nil, newError(apperrors.ErrInvalidRequest, DetailWrongCurrentPassword)
	}

	passwordHash, err := users.HashPassword(req.NewPassword)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.ChangePassword] HashPassword")
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = s.nowTime()

	if err := s.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[Service.ChangePassword] Upsert")
	}

	log.Info().Str("user_id", user.ID).Msg("password changed")
	return &authmodel.MessageResponse{Success: true, Message: "Contraseña actualizada exitosamente"}, nil
}

// VerifyEmail marks the address that was sent token as verified. A token works once.
func (s *Service) VerifyEmail(req authmodel.VerifyEmailRequest) (*authmodel.MessageResponse, error) {
	if err := s.validator.ValidateVerifyEmailRequest(req); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByEmailVerificationToken(strings.TrimSpace(req.Token))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, newError(apperrors.ErrInvalidVerificationToken, DetailInvalidVerification)
		}
		return nil, errors.Wrap(err, "[Service.VerifyEmail] GetByEmailVerificationToken")
	}

	if err := s.repos.Users.SetEmailVerified(user.Email, true); err != nil {
		return nil, errors.Wrap(err, "[Service.VerifyEmail] SetEmailVerified")
	}

	log.Info().Str("user_id", user.ID).Msg("email verified")
	return &authmodel.MessageResponse{Success: true, Message: "Email verificado exitosamente"}, nil
}

func (s *Service) issueTokens(user *users.User) (string, string, error) {
	accessToken, err := s.tokenCreator.CreateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.tokenCreator.CreateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
