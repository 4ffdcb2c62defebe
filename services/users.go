package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/schoolsite/models"
	"github.com/cppla/schoolsite/utils"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserService manages admin accounts.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// UserInput is the admin user form. Password is optional on update.
type UserInput struct {
	Name     string `form:"name" json:"name" validate:"required,max=255"`
	Email    string `form:"email" json:"email" validate:"required,email,max=191"`
	Password string `form:"password" json:"password" validate:"omitempty,min=8,max=72"`
}

// List returns one page of users.
func (s *UserService) List(ctx context.Context, req PageRequest) (Page[models.User], error) {
	page, err := paginate[models.User](s.db.WithContext(ctx).Model(&models.User{}), req)
	if err != nil {
		return Page[models.User]{}, storeErr("list users", err)
	}
	return page, nil
}

// Find loads one user.
func (s *UserService) Find(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return models.User{}, storeErr("find user", err)
	}
	return u, nil
}

// Create adds an admin account.
func (s *UserService) Create(ctx context.Context, actor Actor, in UserInput) (models.User, error) {
	if !actor.valid() {
		return models.User{}, ErrForbidden
	}
	verr, err := s.validate(ctx, &in, 0)
	if err != nil {
		return models.User{}, err
	}
	if in.Password == "" {
		verr.Add("password", requiredMessage(nil, "password"))
	}
	if err := verr.OrNil(); err != nil {
		return models.User{}, err
	}

	u := models.User{Name: utils.PlainText(in.Name), Email: in.Email}
	if err := u.SetPassword(in.Password); err != nil {
		return models.User{}, err
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return models.User{}, storeErr("create user", err)
	}
	utils.Sugar.Infow("user created", "id", u.ID, "by", actor.UserID)
	return u, nil
}

// Update changes name and email, and the password when one is given.
func (s *UserService) Update(ctx context.Context, actor Actor, id uint, in UserInput) (models.User, error) {
	if !actor.valid() {
		return models.User{}, ErrForbidden
	}
	u, err := s.Find(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	verr, err := s.validate(ctx, &in, id)
	if err != nil {
		return models.User{}, err
	}
	if err := verr.OrNil(); err != nil {
		return models.User{}, err
	}

	u.Name = utils.PlainText(in.Name)
	u.Email = in.Email
	if in.Password != "" {
		if err := u.SetPassword(in.Password); err != nil {
			return models.User{}, err
		}
	}
	if err := s.db.WithContext(ctx).Save(&u).Error; err != nil {
		return models.User{}, storeErr("update user", err)
	}
	utils.Sugar.Infow("user updated", "id", u.ID, "by", actor.UserID)
	return u, nil
}

// Delete removes a user. Admins cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.valid() || actor.UserID == id {
		return ErrForbidden
	}
	if _, err := s.Find(ctx, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return storeErr("delete user", err)
	}
	utils.Sugar.Infow("user deleted", "id", id, "by", actor.UserID)
	return nil
}

// Authenticate returns the user owning email when password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, storeErr("authenticate", err)
	}
	if !u.CheckPassword(password) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin when no user exists yet. It reports whether one was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return false, storeErr("count users", err)
	}
	if n > 0 {
		return false, nil
	}
	u := models.User{Name: name, Email: strings.ToLower(strings.TrimSpace(email))}
	if err := u.SetPassword(password); err != nil {
		return false, err
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return false, storeErr("create admin", err)
	}
	return true, nil
}

func (s *UserService) validate(ctx context.Context, in *UserInput, selfID uint) (*ValidationError, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	verr := newValidationError(utils.ValidateStruct(in, nil))
	if _, bad := verr.Fields["password"]; !bad && len(in.Password) > models.MaxPasswordBytes {
		verr.Add("password", fmt.Sprintf("The password field must not be greater than %d bytes.", models.MaxPasswordBytes))
	}
	if _, bad := verr.Fields["email"]; !bad {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("email = ? AND id <> ?", in.Email, selfID).
			Count(&n).Error; err != nil {
			return verr, storeErr("check email", err)
		}
		if n > 0 {
			verr.Add("email", "The email has already been taken.")
		}
	}
	return verr, nil
}
