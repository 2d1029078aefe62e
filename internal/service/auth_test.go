package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/esscera_store/internal/hash"
	"github.com/Skotchmaster/esscera_store/internal/models"
	"github.com/Skotchmaster/esscera_store/internal/tokens"
)

func TestAuthService_Signup_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   SignupInput
		msg  string
	}{
		{name: "missing email", in: SignupInput{Username: "ann", Password: "secret"}, msg: "Email, username, and password are required"},
		{name: "missing password", in: SignupInput{Email: "ann@example.com", Username: "ann"}, msg: "Email, username, and password are required"},
		{name: "bad email", in: SignupInput{Email: "nope", Username: "ann", Password: "secret"}, msg: "email must be a valid email"},
		{name: "short password", in: SignupInput{Email: "ann@example.com", Username: "ann", Password: "123"}, msg: "password must be at least 6"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Auth.Signup(ctx, tt.in, Client{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.msg, Message(err))
		})
	}
}

func TestAuthService_Signup_CreatesUserAndSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	res, err := e.Auth.Signup(ctx, SignupInput{Email: " Ann@Example.com ", Username: "ann", Password: "secret"}, Client{Device: "test-agent", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(tokens.TTL), res.ExpiresAt, time.Minute)

	sess, err := e.Repo.FindSessionByTokenHash(ctx, tokens.Sha256Hex(res.Token))
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, sess.UserID)
	assert.Equal(t, "test-agent", sess.Device)

	_, err = e.Auth.Signup(ctx, SignupInput{Email: "ann@example.com", Username: "other", Password: "secret"}, Client{})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.Auth.Signup(ctx, SignupInput{Email: "other@example.com", Username: "ann", Password: "secret"}, Client{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := createUser(t, e, "ann", models.RoleUser)

	byName, err := e.Auth.Login(ctx, "ann", "password", Client{})
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.User.ID)

	byEmail, err := e.Auth.Login(ctx, "ann@example.com", "password", Client{})
	require.NoError(t, err)
	assert.NotEqual(t, byName.Token, byEmail.Token)

	_, err = e.Auth.Login(ctx, "ann", "wrong", Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.Auth.Login(ctx, "ghost", "password", Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.Auth.Login(ctx, "", "password", Client{})
	assert.ErrorIs(t, err, ErrValidation)

	sessions, err := e.Auth.ListSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestAuthService_Login_UnknownUserComparesPassword(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	createUser(t, e, "ann", models.RoleUser)

	var compared []string
	e.Auth.CheckPassword = func(hashed, password string) bool {
		compared = append(compared, hashed)
		return hash.CheckPassword(hashed, password)
	}

	_, err := e.Auth.Login(ctx, "ghost", "password", Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.Auth.Login(ctx, "ann", "wrong", Client{})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, compared, 2)
	for _, h := range compared {
		assert.True(t, strings.HasPrefix(h, "$2a$10$"), h)
	}
}

func TestAuthService_GetSession_NilCases(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	createUser(t, e, "ann", models.RoleUser)

	t.Run("missing token", func(t *testing.T) {
		u, err := e.Auth.GetSession(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("malformed token", func(t *testing.T) {
		u, err := e.Auth.GetSession(ctx, "not.a.jwt")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("expired token", func(t *testing.T) {
		past := &tokens.Issuer{Secret: testSecret, Now: func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }}
		token, _, err := past.Create(tokens.Payload{UserID: uuid.NewString(), Role: "USER"})
		require.NoError(t, err)

		u, err := e.Auth.GetSession(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("revoked session", func(t *testing.T) {
		res, err := e.Auth.Login(ctx, "ann", "password", Client{})
		require.NoError(t, err)

		u, err := e.Auth.GetSession(ctx, res.Token)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "ann", u.Username)

		require.NoError(t, e.Auth.Logout(ctx, res.Token))

		u, err = e.Auth.GetSession(ctx, res.Token)
		require.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestAuthService_GetSession_DeletesExpiredRow(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	createUser(t, e, "ann", models.RoleUser)

	res, err := e.Auth.Login(ctx, "ann", "password", Client{})
	require.NoError(t, err)

	e.Auth.Now = func() time.Time { return time.Now().Add(tokens.TTL + time.Hour) }

	u, err := e.Auth.GetSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = e.Repo.FindSessionByTokenHash(ctx, tokens.Sha256Hex(res.Token))
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAuthService_GetSession_DeletedUser(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	u := createUser(t, e, "ann", models.RoleUser)

	res, err := e.Auth.Login(ctx, "ann", "password", Client{})
	require.NoError(t, err)
	require.NoError(t, e.DB.Where("id = ?", u.ID).Delete(&models.User{}).Error)

	got, err := e.Auth.GetSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthService_BulkLogout(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	ann := createUser(t, e, "ann", models.RoleUser)
	createUser(t, e, "bob", models.RoleUser)

	for _, name := range []string{"ann", "ann", "bob"} {
		_, err := e.Auth.Login(ctx, name, "password", Client{})
		require.NoError(t, err)
	}

	n, err := e.Auth.LogoutAllDevices(ctx, ann.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = e.Auth.LogoutEveryone(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = e.Auth.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
