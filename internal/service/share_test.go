package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"MiniDrive/internal/apperr"
	"MiniDrive/model"
	"MiniDrive/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	file := env.upload(t, alice, "a.txt", "x")

	tests := []struct {
		name   string
		owner  uint64
		fileID uint64
		target string
		kind   apperr.Kind
	}{
		{name: "missing file id", owner: alice.ID, fileID: 0, target: "bob", kind: apperr.KindBadRequest},
		{name: "missing target", owner: alice.ID, fileID: file.ID, target: "", kind: apperr.KindBadRequest},
		{name: "not owner", owner: bob.ID, fileID: file.ID, target: "alice", kind: apperr.KindNotFound},
		{name: "unknown target", owner: alice.ID, fileID: file.ID, target: "nobody", kind: apperr.KindNotFound},
		{name: "self share", owner: alice.ID, fileID: file.ID, target: "alice", kind: apperr.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.shares.Grant(ctx, tt.owner, tt.fileID, tt.target, nil)
			assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
		})
	}
}

func TestGrantUpsertsAndLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	file := env.upload(t, alice, "report.pdf", "x")

	require.NoError(t, env.shares.Grant(ctx, alice.ID, file.ID, "bob", nil))
	require.NoError(t, env.shares.Grant(ctx, alice.ID, file.ID, "bob", boolPtr(false)))

	var n int64
	require.NoError(t, env.db.Model(&model.FileShare{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	outgoing, err := env.shares.ListOutgoing(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "bob", outgoing[0].TargetUsername)
	assert.False(t, outgoing[0].CanDownload)

	incoming, err := env.shares.ListIncoming(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, file.ID, incoming[0].FileID)
	assert.Equal(t, "report.pdf", incoming[0].OriginalName)
	assert.Equal(t, "alice", incoming[0].OwnerUsername)

	_, err = env.shares.ListOutgoing(ctx, bob.ID, file.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRevokeAbsentGrantSucceeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	env.register(t, "bob")
	file := env.upload(t, alice, "a.txt", "x")

	assert.NoError(t, env.shares.Revoke(ctx, alice.ID, file.ID, "bob"))
	err := env.shares.Revoke(ctx, alice.ID, file.ID, "nobody")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	file := env.upload(t, alice, "a.txt", "x")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	env.shares.now = func() time.Time { return now }

	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, intPtr(3), intPtr(5))
	require.NoError(t, err)
	assert.Len(t, link.Token, utils.LinkTokenLength)
	require.NotNil(t, link.ExpiresAt)
	assert.True(t, link.ExpiresAt.Equal(now.Add(72*time.Hour)))
	require.NotNil(t, link.MaxDownloads)
	assert.Equal(t, 5, *link.MaxDownloads)
	assert.Zero(t, link.DownloadCount)

	unlimited, err := env.shares.CreateLink(ctx, alice.ID, file.ID, intPtr(0), intPtr(-1))
	require.NoError(t, err)
	assert.Nil(t, unlimited.ExpiresAt)
	assert.Nil(t, unlimited.MaxDownloads)
	assert.NotEqual(t, link.Token, unlimited.Token)

	_, err = env.shares.CreateLink(ctx, bob.ID, file.ID, nil, nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	links, err := env.shares.ListLinks(ctx, alice.ID, file.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, unlimited.ID, links[0].ID)
}

func TestRevokeLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	file := env.upload(t, alice, "a.txt", "x")
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, nil, nil)
	require.NoError(t, err)

	err = env.shares.RevokeLink(ctx, bob.ID, link.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	require.NoError(t, env.shares.RevokeLink(ctx, alice.ID, link.ID))

	_, err = env.shares.ResolvePublic(ctx, link.Token)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolvePublicSingleDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	file := env.upload(t, alice, "a.txt", "payload")
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, nil, intPtr(1))
	require.NoError(t, err)

	d, err := env.shares.ResolvePublic(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "payload", readAll(t, d))

	var stored model.LinkShare
	require.NoError(t, env.db.First(&stored, link.ID).Error)
	assert.Equal(t, 1, stored.DownloadCount)

	_, err = env.shares.ResolvePublic(ctx, link.Token)
	assert.True(t, apperr.Is(err, apperr.KindGone))
}

func TestResolvePublicTwoDownloadScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	file := env.upload(t, alice, "report.pdf", "x")
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, intPtr(0), intPtr(2))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		d, err := env.shares.ResolvePublic(ctx, link.Token)
		require.NoError(t, err)
		readAll(t, d)
	}
	var stored model.LinkShare
	require.NoError(t, env.db.First(&stored, link.ID).Error)
	assert.Equal(t, 2, stored.DownloadCount)

	_, err = env.shares.ResolvePublic(ctx, link.Token)
	assert.True(t, apperr.Is(err, apperr.KindGone))
}

func TestResolvePublicExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	file := env.upload(t, alice, "a.txt", "x")
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, intPtr(1), nil)
	require.NoError(t, err)

	past := time.Now().Add(-time.Second)
	require.NoError(t, env.db.Model(&model.LinkShare{}).Where("id = ?", link.ID).Update("expires_at", past).Error)

	for i := 0; i < 3; i++ {
		_, err = env.shares.ResolvePublic(ctx, link.Token)
		assert.True(t, apperr.Is(err, apperr.KindGone))
	}
}

func TestResolvePublicUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.shares.ResolvePublic(context.Background(), "does-not-exist")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = env.shares.ResolvePublic(context.Background(), "")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestResolvePublicMissingObjectKeepsQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	file := env.upload(t, alice, "a.txt", "x")
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, nil, intPtr(1))
	require.NoError(t, err)
	require.NoError(t, os.Remove(file.StoragePath))

	_, err = env.shares.ResolvePublic(ctx, link.Token)
	assert.True(t, apperr.Is(err, apperr.KindGone))

	var stored model.LinkShare
	require.NoError(t, env.db.First(&stored, link.ID).Error)
	assert.Zero(t, stored.DownloadCount)
}

func TestResolvePublicConcurrentNeverExceedsQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	file := env.upload(t, alice, "a.txt", "x")
	const limit = 5
	link, err := env.shares.CreateLink(ctx, alice.ID, file.ID, nil, intPtr(limit))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		gone      int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := env.shares.ResolvePublic(ctx, link.Token)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				_ = d.Body.Close()
				successes++
				return
			}
			if apperr.Is(err, apperr.KindGone) {
				gone++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, successes)
	assert.Equal(t, 25-limit, gone)

	var stored model.LinkShare
	require.NoError(t, env.db.First(&stored, link.ID).Error)
	assert.Equal(t, limit, stored.DownloadCount)
}

func TestCanAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	carol := env.register(t, "carol")
	file := env.upload(t, alice, "a.txt", "x")
	require.NoError(t, env.shares.Grant(ctx, alice.ID, file.ID, "bob", boolPtr(false)))

	for _, tt := range []struct {
		user uint64
		want bool
	}{{alice.ID, true}, {bob.ID, true}, {carol.ID, false}} {
		ok, err := env.shares.CanAccess(ctx, tt.user, file.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok)
	}
}
