package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"MiniDrive/internal/repo"
	"MiniDrive/internal/storage"
	"MiniDrive/model"
	"MiniDrive/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminSecret = "s3cret-admin"

type testEnv struct {
	db       *gorm.DB
	store    *storage.LocalStore
	jwt      *utils.JWTManager
	auth     *AuthService
	files    *FileService
	shares   *ShareService
	comments *CommentService
	admin    *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithGuard(t, NoopGuard{})
}

func newTestEnvWithGuard(t *testing.T, guard LoginGuard) *testEnv {
	t.Helper()
	dir := t.TempDir()
	db, err := repo.OpenSQLite(filepath.Join(dir, "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close(db) })

	store, err := storage.NewLocalStore(filepath.Join(dir, "storage"))
	require.NoError(t, err)

	log := zap.NewNop()
	jwt := utils.NewJWTManager("test-jwt-secret", time.Hour)
	gate := NewAdminGate(testAdminSecret)
	auth, err := NewAuthService(db, jwt, gate, guard, 4, log)
	require.NoError(t, err)
	shares := NewShareService(db, store, log)

	return &testEnv{
		db:       db,
		store:    store,
		jwt:      jwt,
		auth:     auth,
		files:    NewFileService(db, store, 1<<20, log),
		shares:   shares,
		comments: NewCommentService(db, shares),
		admin:    NewAdminService(db, store, gate, log),
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), testAdminSecret, username, "pw-"+username)
	require.NoError(t, err)
	return user
}

func (e *testEnv) upload(t *testing.T, owner *model.User, name, content string) *model.File {
	t.Helper()
	file, err := e.files.Upload(context.Background(), owner.ID, UploadInput{
		Name: name,
		Size: int64(len(content)),
		Body: bytes.NewReader([]byte(content)),
	})
	require.NoError(t, err)
	return file
}

func readAll(t *testing.T, d *Download) string {
	t.Helper()
	defer d.Body.Close()
	b, err := io.ReadAll(d.Body)
	require.NoError(t, err)
	return string(b)
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }
