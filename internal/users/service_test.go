package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fosbar/barpos-backend/pkg/config"
	"github.com/fosbar/barpos-backend/pkg/db/models"
	"github.com/fosbar/barpos-backend/pkg/enums"
	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

type fakeRepository struct {
	users map[uuid.UUID]*models.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeRepository) Create(_ context.Context, user *models.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return errors.New(`duplicate key value violates unique constraint "idx_users_username"`)
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["display_name"].(string); ok {
		user.DisplayName = name
	}
	if role, ok := updates["role"].(enums.UserRole); ok {
		user.Role = role
	}
	if hash, ok := updates["password_hash"].(string); ok {
		user.PasswordHash = hash
	}
	if active, ok := updates["is_active"].(bool); ok {
		user.IsActive = active
	}
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "  Anna  ",
		Role:     enums.UserRoleStaff,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "anna" {
		t.Errorf("expected lowercased username, got %q", user.Username)
	}
	if user.DisplayName != "anna" {
		t.Errorf("display name should default to username, got %q", user.DisplayName)
	}
	if strings.Contains(user.PasswordHash, "correct horse") {
		t.Error("hash must not contain the plaintext password")
	}

	authed, err := svc.Authenticate(context.Background(), "Anna", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Error("authenticated wrong user")
	}

	if _, err := svc.Authenticate(context.Background(), "anna", "wrong"); err == nil {
		t.Error("wrong password should fail")
	}
	if _, err := svc.Authenticate(context.Background(), "nobody", "correct horse"); err == nil {
		t.Error("unknown user should fail")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"missing username", CreateUserInput{Role: enums.UserRoleStaff, Password: "long enough"}},
		{"bad role", CreateUserInput{Username: "anna", Role: "owner", Password: "long enough"}},
		{"short password", CreateUserInput{Username: "anna", Role: enums.UserRoleStaff, Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			var appErr *pkgerrors.Error
			if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)

	input := CreateUserInput{Username: "anna", Role: enums.UserRoleStaff, Password: "long enough"}
	if _, err := svc.CreateUser(context.Background(), input); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := svc.CreateUser(context.Background(), input)
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "anna", Role: enums.UserRoleAdmin, Password: "old password",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "new password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "anna", "old password"); err == nil {
		t.Error("old password should no longer work")
	}
	if _, err := svc.Authenticate(context.Background(), "anna", "new password"); err != nil {
		t.Errorf("new password should work: %v", err)
	}
}

func TestDeactivatedUserCannotAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "anna", Role: enums.UserRoleStaff, Password: "long enough",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := svc.SetUserActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "anna", "long enough"); err == nil {
		t.Error("inactive user should not authenticate")
	}
}
