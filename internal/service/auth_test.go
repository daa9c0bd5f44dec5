package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"MiniDrive/internal/apperr"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.register(t, "alice")
	token, got, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	id, err := env.auth.Authenticate(ctx, "Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
}

func TestRegisterThenLoginLongPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	password := strings.Repeat("p", 80)

	user, err := env.auth.Register(ctx, testAdminSecret, "longpw", password)
	require.NoError(t, err)

	token, got, err := env.auth.Login(ctx, "longpw", password)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	id, err := env.auth.Authenticate(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
}

func TestAuthenticateRejectsDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ghost := env.register(t, "ghost")
	token, _, err := env.auth.Login(ctx, "ghost", "pw-ghost")
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteUser(ctx, testAdminSecret, ghost.ID))

	_, err = env.auth.Authenticate(ctx, "Bearer "+token)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "got %v", err)
}

func TestRegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	tests := []struct {
		name     string
		secret   string
		username string
		password string
		kind     apperr.Kind
	}{
		{name: "wrong secret", secret: "nope", username: "bob", password: "pw", kind: apperr.KindForbidden},
		{name: "empty secret", secret: "", username: "bob", password: "pw", kind: apperr.KindForbidden},
		{name: "missing username", secret: testAdminSecret, username: "", password: "pw", kind: apperr.KindBadRequest},
		{name: "missing password", secret: testAdminSecret, username: "bob", password: "", kind: apperr.KindBadRequest},
		{name: "duplicate", secret: testAdminSecret, username: "alice", password: "pw", kind: apperr.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.secret, tt.username, tt.password)
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestRegisterStoresHashOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	assert.NotEqual(t, "pw-alice", user.PasswordHash)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, _, wrongPw := env.auth.Login(ctx, "alice", "wrong")
	_, _, unknown := env.auth.Login(ctx, "mallory", "wrong")

	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(wrongPw))
	assert.Equal(t, apperr.KindOf(wrongPw), apperr.KindOf(unknown))
	assert.Equal(t, apperr.Message(wrongPw), apperr.Message(unknown))

	_, _, missing := env.auth.Login(ctx, "", "x")
	assert.True(t, apperr.Is(missing, apperr.KindBadRequest))
}

func TestAuthenticateRejectsBadHeaders(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	token, err := env.jwt.GenerateToken(user.ID, user.Username)
	require.NoError(t, err)

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic " + token, token, "Bearer garbage"} {
		_, err := env.auth.Authenticate(context.Background(), header)
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "header %q", header)
	}
	_, err = env.auth.Authenticate(context.Background(), "bearer "+token)
	assert.NoError(t, err)
}

func TestLoginLockout(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnvWithGuard(t, NewRedisLoginGuard(rdb, 3, time.Minute))
	ctx := context.Background()
	env.register(t, "alice")

	for i := 0; i < 3; i++ {
		_, _, err := env.auth.Login(ctx, "alice", "wrong")
		assert.Equal(t, msgBadCredentials, apperr.Message(err))
	}

	_, _, err := env.auth.Login(ctx, "alice", "pw-alice")
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
	assert.Equal(t, msgLockedOut, apperr.Message(err))

	mr.FastForward(2 * time.Minute)
	_, _, err = env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)
	assert.False(t, mr.Exists(loginFailKey("alice")))
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := newTestEnvWithGuard(t, NewRedisLoginGuard(rdb, 3, time.Minute))
	ctx := context.Background()
	env.register(t, "alice")

	for i := 0; i < 2; i++ {
		_, _, _ = env.auth.Login(ctx, "alice", "wrong")
	}
	_, _, err := env.auth.Login(ctx, "alice", "pw-alice")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, _ = env.auth.Login(ctx, "alice", "wrong")
	}
	_, _, err = env.auth.Login(ctx, "alice", "pw-alice")
	assert.NoError(t, err)
}

func TestUnknownUserFailuresAreCounted(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	guard := NewRedisLoginGuard(rdb, 2, time.Minute)
	env := newTestEnvWithGuard(t, guard)
	ctx := context.Background()

	_, _, _ = env.auth.Login(ctx, "ghost", "x")
	_, _, _ = env.auth.Login(ctx, "ghost", "x")
	locked, err := guard.Locked(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, locked)
	ttl := mr.TTL(loginFailKey("ghost"))
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}
