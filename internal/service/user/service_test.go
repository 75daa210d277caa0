package user_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/robklaiss/truco/internal/model"
	"github.com/robklaiss/truco/internal/service/user"
	appErr "github.com/robklaiss/truco/pkg/errors"
)

func newService(t *testing.T) (*gorm.DB, *user.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("failed to migrate users: %v", err)
	}
	return db, user.NewService(db)
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	db, svc := newService(t)

	seed := model.User{UID: "uid-ana", Nickname: "Ana", Guest: true}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	got, err := svc.GetProfile(ctx, "uid-ana")
	if err != nil {
		t.Fatalf("get profile failed: %v", err)
	}
	if got.Nickname != "Ana" || !got.Guest {
		t.Fatalf("unexpected profile: %+v", got)
	}

	if _, err := svc.GetProfile(ctx, "uid-nadie"); !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfileNickname(t *testing.T) {
	ctx := context.Background()
	db, svc := newService(t)

	seed := model.User{UID: "uid-ana", Nickname: "Ana"}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	nickname := "Anita"
	updated, err := svc.UpdateProfile(ctx, "uid-ana", user.UpdateProfileRequest{Nickname: &nickname})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Nickname != "Anita" {
		t.Fatalf("nickname not updated: %+v", updated)
	}

	empty := "   "
	if _, err := svc.UpdateProfile(ctx, "uid-ana", user.UpdateProfileRequest{Nickname: &empty}); err == nil {
		t.Fatalf("expected blank nickname to be rejected")
	}

	if _, err := svc.UpdateProfile(ctx, "uid-nadie", user.UpdateProfileRequest{Nickname: &nickname}); !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestNicknameFallsBackToUID(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)

	if got := svc.Nickname(ctx, "uid-fantasma"); got != "uid-fantasma" {
		t.Fatalf("expected uid fallback, got %q", got)
	}
}
