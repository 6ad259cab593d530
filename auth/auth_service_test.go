package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/churchai-session/auth"
	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/jrsteele09/churchai-session/churches"
	churchrepofakes "github.com/jrsteele09/churchai-session/churches/repofakes"
	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/token"
	"github.com/jrsteele09/churchai-session/users"
	fakeuserrepo "github.com/jrsteele09/churchai-session/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	secretStr          = "1234"
	testUserEmail      = "miembro@example.com"
	testUserPassword   = "Password123"
	testInvitationCode = "CENTRAL01"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo     users.UserRepo
	churchRepo   churches.Repo
	tokenCreator *token.Manager
	service      *auth.Service
	church       *churches.Church
	now          time.Time
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		userRepo:   fakeuserrepo.NewFakeUserRepo(),
		churchRepo: churchrepofakes.NewFakeChurchRepo(),
		now:        time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	nowFunc := func() time.Time { return f.now }

	f.tokenCreator = token.New(token.NewHMACSigner(secretStr), token.WithNowFunc(nowFunc))

	service, err := auth.NewService(auth.Repos{Users: f.userRepo, Churches: f.churchRepo}, f.tokenCreator, auth.WithNowTime(nowFunc))
	require.NoError(t, err)
	f.service = service

	f.church = &churches.Church{Name: "Iglesia Central", InvitationCode: testInvitationCode, IsActive: true}
	require.NoError(t, f.churchRepo.Upsert(f.church))
	return f
}

// createTestUser creates and stores an active member
func (f *testFixture) createTestUser(t *testing.T) *users.User {
	t.Helper()

	passwordHash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)

	u := &users.User{
		Email:        testUserEmail,
		PasswordHash: passwordHash,
		FirstName:    "John",
		LastName:     "Doe",
		Role:         users.RoleMiembro,
		Status:       users.StatusActive,
		ChurchID:     f.church.ID,
	}
	require.NoError(t, f.userRepo.Upsert(u))
	return u
}

func requireAuthError(t *testing.T, err error, kind error, detail string) {
	t.Helper()
	var authErr *auth.Error
	require.ErrorAs(t, err, &authErr)
	require.ErrorIs(t, err, kind)
	require.Equal(t, detail, authErr.Detail)
}

func TestNewService_RequiresDependencies(t *testing.T) {
	tc := token.New(token.NewHMACSigner(secretStr))

	_, err := auth.NewService(auth.Repos{Churches: churchrepofakes.NewFakeChurchRepo()}, tc)
	require.ErrorContains(t, err, "Users repo is required")

	_, err = auth.NewService(auth.Repos{Users: fakeuserrepo.NewFakeUserRepo()}, tc)
	require.ErrorContains(t, err, "Churches repo is required")

	_, err = auth.NewService(auth.Repos{Users: fakeuserrepo.NewFakeUserRepo(), Churches: churchrepofakes.NewFakeChurchRepo()}, nil)
	require.ErrorContains(t, err, "tokenCreator is required")
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createTestUser(t)

	t.Run("success", func(t *testing.T) {
		resp, err := f.service.Login(authmodel.LoginRequest{Email: "Miembro@Example.com ", Password: testUserPassword})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Equal(t, authmodel.TokenTypeBearer, resp.TokenType)
		require.Equal(t, u.ID, resp.User.ID)
		require.True(t, resp.User.HasChurch)

		claims, err := f.tokenCreator.Verify(resp.AccessToken, token.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		_, err = f.tokenCreator.Verify(resp.RefreshToken, token.TypeRefresh)
		require.NoError(t, err)

		stored, err := f.userRepo.GetByID(u.ID)
		require.NoError(t, err)
		require.Equal(t, f.now, stored.LastLogin)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, err := f.service.Login(authmodel.LoginRequest{Email: testUserEmail, Password: "Wrong1234"})
		requireAuthError(t, err, apperrors.ErrInvalidCredentials, auth.DetailInvalidCredentials)

		_, err = f.service.Login(authmodel.LoginRequest{Email: "nadie@example.com", Password: testUserPassword})
		requireAuthError(t, err, apperrors.ErrInvalidCredentials, auth.DetailInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.service.Login(authmodel.LoginRequest{Email: testUserEmail})
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})
}

func TestRegister_PastorAutoApproved(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Register(authmodel.RegisterRequest{
		Email:            "Pastor@Iglesia.org",
		Password:         "Secret123",
		FirstName:        "Ana",
		LastName:         "Rojas",
		RegistrationType: users.RegistrationPastorNewChurch,
		PastorInfo: &users.PastorInfo{
			Denomination:             "Pentecostal",
			YearsInMinistry:          15,
			CurrentChurchName:        "Iglesia Central",
			OrdinationCertificateURL: "https://docs.example.org/cert.pdf",
		},
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, users.StatusActive, resp.Status)
	require.True(t, resp.CanCreateChurch)
	require.NotNil(t, resp.AccessToken)
	require.NotNil(t, resp.RefreshToken)
	require.Equal(t, "Inmediato", resp.EstimatedApprovalTime)

	stored, err := f.userRepo.GetByEmail("pastor@iglesia.org")
	require.NoError(t, err)
	require.Equal(t, resp.UserID, stored.ID)
	require.Equal(t, users.RolePastorPrincipal, stored.Role)
	require.NotNil(t, stored.AIApprovalScore)
	require.NotEmpty(t, stored.AIApprovalNotes)
	require.Equal(t, f.now, stored.DateJoined)
	require.Equal(t, users.StatusActive, stored.Status)
	require.NotEmpty(t, stored.EmailVerificationToken)
	require.False(t, stored.IsEmailVerified)
}

func TestRegister_PastorNeedsReview(t *testing.T) {
	f := setupTestFixture(t)

	resp, err := f.service.Register(authmodel.RegisterRequest{
		Email:            "juan@gmail.com",
		Password:         "Secret123",
		FirstName:        "Juan",
		LastName:         "Perez",
		RegistrationType: users.RegistrationPastorNewChurch,
		PastorInfo:       &users.PastorInfo{Denomination: "Independiente"},
	})
	require.NoError(t, err)
	require.Equal(t, users.StatusPendingApproval, resp.Status)
	require.False(t, resp.CanCreateChurch)
	require.InDelta(t, 0.2, *resp.AIScore, 0.0001)
}

func TestRegister_Staff(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("joins church by invitation code", func(t *testing.T) {
		resp, err := f.service.Register(authmodel.RegisterRequest{
			Email:                "secretaria@example.com",
			Password:             "Secret123",
			FirstName:            "Laura",
			LastName:             "Diaz",
			RegistrationType:     users.RegistrationStaffExistingChurch,
			ChurchInvitationCode: "central01",
			RequestedRole:        users.RoleSecretario,
		})
		require.NoError(t, err)
		require.Equal(t, users.StatusPendingApproval, resp.Status)
		require.Equal(t, "Pendiente de aprobación por el pastor", resp.Message)
		require.InDelta(t, 0.5, *resp.AIScore, 0.0001)

		stored, err := f.userRepo.GetByID(resp.UserID)
		require.NoError(t, err)
		require.Equal(t, users.RoleSecretario, stored.Role)
		require.Equal(t, f.church.ID, stored.PendingChurchID)
		require.False(t, stored.HasChurch())
	})

	t.Run("defaults to volunteer", func(t *testing.T) {
		resp, err := f.service.Register(authmodel.RegisterRequest{
			Email:                "voluntario@example.com",
			Password:             "Secret123",
			FirstName:            "Pedro",
			LastName:             "Gomez",
			RegistrationType:     users.RegistrationStaffExistingChurch,
			ChurchInvitationCode: testInvitationCode,
		})
		require.NoError(t, err)
		stored, err := f.userRepo.GetByID(resp.UserID)
		require.NoError(t, err)
		require.Equal(t, users.RoleVoluntario, stored.Role)
	})

	t.Run("unknown invitation code", func(t *testing.T) {
		_, err := f.service.Register(authmodel.RegisterRequest{
			Email:                "otro@example.com",
			Password:             "Secret123",
			FirstName:            "Otro",
			LastName:             "Usuario",
			RegistrationType:     users.RegistrationStaffExistingChurch,
			ChurchInvitationCode: "NOPE",
		})
		requireAuthError(t, err, apperrors.ErrInvalidInvitationCode, auth.DetailInvalidChurchCode)

		_, err = f.userRepo.GetByEmail("otro@example.com")
		require.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)

	_, err := f.service.Register(authmodel.RegisterRequest{
		Email:            "MIEMBRO@example.com",
		Password:         "Secret123",
		FirstName:        "John",
		LastName:         "Doe",
		RegistrationType: users.RegistrationMember,
	})
	requireAuthError(t, err, apperrors.ErrUserExists, auth.DetailEmailTaken)
}

func TestRefresh(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createTestUser(t)

	login, err := f.service.Login(authmodel.LoginRequest{Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)

	t.Run("issues a new access token", func(t *testing.T) {
		f.now = f.now.Add(time.Minute)
		resp, err := f.service.Refresh(authmodel.RefreshRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Equal(t, authmodel.TokenTypeBearer, resp.TokenType)
		require.NotEqual(t, login.AccessToken, resp.AccessToken)

		user, _, err := f.service.Authenticate(resp.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, user.ID)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.service.Refresh(authmodel.RefreshRequest{RefreshToken: login.AccessToken})
		requireAuthError(t, err, apperrors.ErrInvalidRefreshToken, auth.DetailInvalidRefreshToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		require.NoError(t, f.userRepo.Delete(testUserEmail))
		_, err := f.service.Refresh(authmodel.RefreshRequest{RefreshToken: login.RefreshToken})
		requireAuthError(t, err, apperrors.ErrInvalidRefreshToken, auth.DetailUserNotFound)
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t)

	login, err := f.service.Login(authmodel.LoginRequest{Email: testUserEmail, Password: testUserPassword})
	require.NoError(t, err)

	user, claims, err := f.service.Authenticate(login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testUserEmail, f.service.Me(user).Email)

	_, _, err = f.service.Authenticate(login.RefreshToken)
	requireAuthError(t, err, apperrors.ErrInvalidToken, auth.DetailCredentialsNotVerified)

	resp, err := f.service.Logout(user, claims)
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, _, err = f.service.Authenticate(login.AccessToken)
	requireAuthError(t, err, apperrors.ErrInvalidToken, auth.DetailCredentialsNotVerified)
}

func TestChangePassword(t *testing.T) {
	f := setupTestFixture(t)
	u := f.createTestUser(t)

	_, err := f.service.ChangePassword(u, authmodel.ChangePasswordRequest{CurrentPassword: "Wrong1234", NewPassword: "NewSecret1"})
	requireAuthError(t, err, apperrors.ErrInvalidRequest, auth.DetailWrongCurrentPassword)

	_, err = f.service.ChangePassword(u, authmodel.ChangePasswordRequest{CurrentPassword: testUserPassword, NewPassword: "weak"})
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	resp, err := f.service.ChangePassword(u, authmodel.ChangePasswordRequest{CurrentPassword: testUserPassword, NewPassword: "NewSecret1"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	_, err = f.service.Login(authmodel.LoginRequest{Email: testUserEmail, Password: testUserPassword})
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.service.Login(authmodel.LoginRequest{Email: testUserEmail, Password: "NewSecret1"})
	require.NoError(t, err)
}

func TestVerifyEmail(t *testing.T) {
	f := setupTestFixture(t)
	resp, err := f.service.Register(authmodel.RegisterRequest{
		Email:                "maria@iglesia.org",
		Password:             "Secret123",
		FirstName:            "María",
		LastName:             "Gómez",
		RegistrationType:     users.RegistrationMember,
		ChurchInvitationCode: "CENTRAL01",
	})
	require.NoError(t, err)
	require.Equal(t, users.StatusPendingApproval, resp.Status)

	registered, err := f.userRepo.GetByEmail("maria@iglesia.org")
	require.NoError(t, err)
	verificationToken := registered.EmailVerificationToken
	require.NotEmpty(t, verificationToken)

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.service.VerifyEmail(authmodel.VerifyEmailRequest{Token: "no-existe"})
		requireAuthError(t, err, apperrors.ErrInvalidVerificationToken, auth.DetailInvalidVerification)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := f.service.VerifyEmail(authmodel.VerifyEmailRequest{Token: "  "})
		var validationErr *auth.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "token", validationErr.Field)
	})

	t.Run("valid token verifies once", func(t *testing.T) {
		msg, err := f.service.VerifyEmail(authmodel.VerifyEmailRequest{Token: verificationToken})
		require.NoError(t, err)
		require.True(t, msg.Success)

		stored, err := f.userRepo.GetByEmail("maria@iglesia.org")
		require.NoError(t, err)
		require.True(t, stored.IsEmailVerified)
		require.Empty(t, stored.EmailVerificationToken)

		_, err = f.service.VerifyEmail(authmodel.VerifyEmailRequest{Token: verificationToken})
		requireAuthError(t, err, apperrors.ErrInvalidVerificationToken, auth.DetailInvalidVerification)
	})
}
