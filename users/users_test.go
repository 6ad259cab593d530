package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/churchai-session/internal/utils"
	"github.com/jrsteele09/churchai-session/users"
	fakeuserrepo "github.com/jrsteele09/churchai-session/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		errMsg   string
	}{
		{name: "valid", password: "Secret123"},
		{name: "too short", password: "Sec1", errMsg: "at least 8 characters"},
		{name: "no upper", password: "secret123", errMsg: "uppercase"},
		{name: "no lower", password: "SECRET123", errMsg: "lowercase"},
		{name: "no number", password: "SecretSecret", errMsg: "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.errMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", hash)
	require.True(t, users.CheckPasswordHash("Secret123", hash))
	require.False(t, users.CheckPasswordHash("secret123", hash))
}

func TestUserProfile(t *testing.T) {
	u := &users.User{
		ID:              "u1",
		Email:           "pastor@iglesia.org",
		PasswordHash:    "hash",
		FirstName:       "Ana",
		LastName:        "Rojas",
		Role:            users.RolePastorPrincipal,
		Status:          users.StatusActive,
		CanCreateChurch: true,
		AIApprovalScore: utils.Ptr(0.8),
	}

	p := u.Profile()
	require.False(t, p.HasChurch)
	require.Nil(t, p.ChurchID)
	require.Equal(t, "Ana Rojas", p.FullName())

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": "u1", "email": "pastor@iglesia.org", "first_name": "Ana", "last_name": "Rojas",
		"role": "pastor_principal", "status": "active", "can_create_church": true, "has_church": false,
		"church_id": null, "is_email_verified": false, "ai_approval_score": 0.8
	}`, string(raw))

	u.ChurchID = "c1"
	p = u.Profile()
	require.True(t, p.HasChurch)
	require.Equal(t, "c1", *p.ChurchID)

	raw, err = json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "hash")
}

func TestFakeUserRepo(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()

	u := &users.User{Email: "Staff@Church.org", Status: users.StatusPendingApproval}
	require.NoError(t, repo.Upsert(u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail("staff@church.org")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got.FirstName = "mutated"
	again, err := repo.GetByID(u.ID)
	require.NoError(t, err)
	require.Empty(t, again.FirstName)

	require.NoError(t, repo.SetStatus("staff@church.org", users.StatusActive))
	require.NoError(t, repo.SetEmailVerified("staff@church.org", true))
	again, err = repo.GetByID(u.ID)
	require.NoError(t, err)
	require.True(t, again.IsActive())
	require.True(t, again.IsEmailVerified)

	list, err := repo.List(0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete("STAFF@church.org"))
	_, err = repo.GetByEmail("staff@church.org")
	require.Error(t, err)
}
