package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/robklaiss/truco/internal/model"
	appErr "github.com/robklaiss/truco/pkg/errors"
)

const maxNicknameLen = 32

type Service struct {
	db *gorm.DB
}

type UpdateProfileRequest struct {
	Nickname *string
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetProfile(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "uid = ?", uid).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, req UpdateProfileRequest) (*model.User, error) {
	updates := map[string]interface{}{}
	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname == "" {
			return nil, appErr.ErrInvalidMatchParams
		}
		if len(nickname) > maxNicknameLen {
			nickname = nickname[:maxNicknameLen]
		}
		updates["nickname"] = nickname
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&model.User{}).Where("uid = ?", uid).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, appErr.ErrUserNotFound
		}
	}

	return s.GetProfile(ctx, uid)
}

// Nickname resolves a display name, falling back to the uid when the
// account row is missing (bot matches, deleted guests).
func (s *Service) Nickname(ctx context.Context, uid string) string {
	user, err := s.GetProfile(ctx, uid)
	if err != nil || user == nil {
		return uid
	}
	return user.Nickname
}
