package service

import (
	"context"
	"errors"
	"strings"

	"MiniDrive/internal/apperr"
	"MiniDrive/internal/repo"
	"MiniDrive/model"
	"MiniDrive/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgMissingCredentials = "missing username or password"
	msgBadCredentials     = "invalid username or password"
	msgLockedOut          = "too many failed attempts, try again later"
	msgUserExists         = "user already exists"
	msgBadToken           = "invalid or missing token"
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID   uint64
	Username string
}

type AuthService struct {
	db         *gorm.DB
	jwt        *utils.JWTManager
	gate       AdminGate
	guard      LoginGuard
	bcryptCost int
	// dummyHash is compared against when the username is unknown, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
	log       *zap.Logger
}

func NewAuthService(db *gorm.DB, jwt *utils.JWTManager, gate AdminGate, guard LoginGuard, bcryptCost int, log *zap.Logger) (*AuthService, error) {
	if guard == nil {
		guard = NoopGuard{}
	}
	dummy, err := utils.HashPwd("minidrive-dummy-password", bcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		db:         db,
		jwt:        jwt,
		gate:       gate,
		guard:      guard,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		log:        log,
	}, nil
}

// Register creates a user. It is the only way accounts come into existence.
func (s *AuthService) Register(ctx context.Context, secret, username, password string) (*model.User, error) {
	if err := s.gate.Check(secret); err != nil {
		s.log.Warn("admin register rejected", zap.String("username", username))
		return nil, err
	}
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, apperr.BadRequest(msgMissingCredentials)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperr.Internal("check username", err)
	}
	if count > 0 {
		return nil, apperr.Conflict(msgUserExists)
	}

	hash, err := utils.HashPwd(password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := &model.User{Username: username, PasswordHash: hash}
	if err := db.Create(user).Error; err != nil {
		if repo.IsDuplicateKey(err) {
			return nil, apperr.Conflict(msgUserExists)
		}
		return nil, apperr.Internal("create user", err)
	}
	s.log.Info("admin action", zap.String("action", "register"), zap.Uint64("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown usernames
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	if username == "" || password == "" {
		return "", nil, apperr.BadRequest(msgMissingCredentials)
	}

	locked, err := s.guard.Locked(ctx, username)
	if err != nil {
		s.log.Warn("login guard unavailable", zap.Error(err))
	}
	if locked {
		return "", nil, apperr.Unauthorized(msgLockedOut)
	}

	var user model.User
	err = s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, apperr.Internal("find user", err)
	}
	hash := user.PasswordHash
	if err != nil {
		hash = s.dummyHash
	}
	if !utils.CheckPwd(password, hash) || err != nil {
		if failErr := s.guard.Fail(ctx, username); failErr != nil {
			s.log.Warn("login guard unavailable", zap.Error(failErr))
		}
		return "", nil, apperr.Unauthorized(msgBadCredentials)
	}

	if err := s.guard.Reset(ctx, username); err != nil {
		s.log.Warn("login guard unavailable", zap.Error(err))
	}
	token, err := s.jwt.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, apperr.Internal("issue token", err)
	}
	return token, &user, nil
}

// Authenticate resolves an Authorization header value of the form
// "Bearer <token>". Tokens of users deleted since issue are rejected.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*Identity, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, apperr.Unauthorized(msgBadToken)
	}
	claims, err := s.jwt.VerifyToken(strings.TrimSpace(token))
	if err != nil {
		return nil, apperr.Unauthorized(msgBadToken)
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", claims.UserId).Count(&count).Error; err != nil {
		return nil, apperr.Internal("check token user", err)
	}
	if count == 0 {
		return nil, apperr.Unauthorized(msgBadToken)
	}
	return &Identity{UserID: claims.UserId, Username: claims.Username}, nil
}
