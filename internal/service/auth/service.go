package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/robklaiss/truco/internal/config"
	"github.com/robklaiss/truco/internal/model"
	pkgAuth "github.com/robklaiss/truco/pkg/auth"
	appErr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/logger"
)

type Service struct {
	db *gorm.DB
}

type LoginResult struct {
	Token    string     `json:"token"`
	ExpireAt time.Time  `json:"expireAt"`
	User     model.User `json:"user"`
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

const maxNicknameLen = 32

// GuestLogin mints an anonymous account with a generated uid. A nickname is
// optional; omitted ones get a short default derived from the uid.
func (s *Service) GuestLogin(ctx context.Context, nickname string) (*LoginResult, error) {
	uid := uuid.NewString()
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = defaultNickname(uid)
	}
	if len(nickname) > maxNicknameLen {
		nickname = nickname[:maxNicknameLen]
	}

	user := model.User{
		UID:      uid,
		Nickname: nickname,
		Guest:    true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := pkgAuth.GenerateToken(user.UID)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("guest login",
		zap.String("uid", user.UID),
		zap.String("nickname", user.Nickname))

	expireAt := time.Now().Add(time.Duration(config.GlobalConfig.JWT.Expire) * time.Hour)
	return &LoginResult{
		Token:    token,
		ExpireAt: expireAt,
		User:     user,
	}, nil
}

// Refresh issues a fresh token for an existing account.
func (s *Service) Refresh(ctx context.Context, uid string) (*LoginResult, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}

	token, err := pkgAuth.GenerateToken(user.UID)
	if err != nil {
		return nil, err
	}
	expireAt := time.Now().Add(time.Duration(config.GlobalConfig.JWT.Expire) * time.Hour)
	return &LoginResult{
		Token:    token,
		ExpireAt: expireAt,
		User:     user,
	}, nil
}

func defaultNickname(uid string) string {
	short := strings.ReplaceAll(uid, "-", "")
	if len(short) > 6 {
		short = short[:6]
	}
	return fmt.Sprintf("Jugador-%s", short)
}
