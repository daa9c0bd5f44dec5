package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"MiniDrive/internal/apperr"
	"MiniDrive/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGate(t *testing.T) {
	gate := NewAdminGate("secret")
	assert.NoError(t, gate.Check("secret"))
	assert.True(t, apperr.Is(gate.Check("Secret"), apperr.KindForbidden))
	assert.True(t, apperr.Is(gate.Check("secret "), apperr.KindForbidden))
	assert.True(t, apperr.Is(gate.Check(""), apperr.KindForbidden))
	assert.True(t, apperr.Is(NewAdminGate("").Check(""), apperr.KindForbidden))
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.upload(t, alice, "1.txt", "1")
	env.upload(t, alice, "2.txt", "2")

	_, err := env.admin.ListUsers(ctx, "wrong")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	users, err := env.admin.ListUsers(ctx, testAdminSecret)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, bob.ID, users[0].ID)
	assert.Equal(t, int64(0), users[0].FileCount)
	assert.Equal(t, alice.ID, users[1].ID)
	assert.Equal(t, "alice", users[1].Username)
	assert.Equal(t, int64(2), users[1].FileCount)
}

func TestDeleteUserErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	assert.True(t, apperr.Is(env.admin.DeleteUser(ctx, "wrong", alice.ID), apperr.KindForbidden))
	assert.True(t, apperr.Is(env.admin.DeleteUser(ctx, testAdminSecret, 0), apperr.KindBadRequest))
	assert.True(t, apperr.Is(env.admin.DeleteUser(ctx, testAdminSecret, alice.ID+50), apperr.KindNotFound))
}

func TestDeleteUserSweepsDependents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")

	aliceFile := env.upload(t, alice, "a.txt", "a")
	bobFile := env.upload(t, bob, "b.txt", "b")

	require.NoError(t, env.shares.Grant(ctx, alice.ID, aliceFile.ID, "bob", nil))
	require.NoError(t, env.shares.Grant(ctx, bob.ID, bobFile.ID, "alice", nil))
	_, err := env.shares.CreateLink(ctx, alice.ID, aliceFile.ID, nil, nil)
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, bob.ID, aliceFile.ID, "on alice's file")
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, alice.ID, bobFile.ID, "alice on bob's file")
	require.NoError(t, err)
	_, err = env.comments.Add(ctx, bob.ID, bobFile.ID, "bob on bob's file")
	require.NoError(t, err)

	require.NoError(t, env.admin.DeleteUser(ctx, testAdminSecret, alice.ID))

	count := func(m any, where string, args ...any) int64 {
		var n int64
		require.NoError(t, env.db.Model(m).Where(where, args...).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&model.User{}, "id = ?", alice.ID))
	assert.Zero(t, count(&model.File{}, "owner_user_id = ?", alice.ID))
	assert.Zero(t, count(&model.FileShare{}, "owner_user_id = ? OR target_user_id = ?", alice.ID, alice.ID))
	assert.Zero(t, count(&model.LinkShare{}, "owner_user_id = ?", alice.ID))
	assert.Zero(t, count(&model.Comment{}, "author_user_id = ? OR file_id = ?", alice.ID, aliceFile.ID))

	assert.Equal(t, int64(1), count(&model.File{}, "owner_user_id = ?", bob.ID))
	assert.Equal(t, int64(1), count(&model.Comment{}, "author_user_id = ?", bob.ID))

	_, err = os.Stat(filepath.Join(env.store.Root(), strconv.FormatUint(alice.ID, 10)))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(bobFile.StoragePath)
	assert.NoError(t, err)

	incoming, err := env.shares.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}
