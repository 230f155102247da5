package usecase_user

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/moviematch/core/internal/model"
)

var (
	ErrValidation   = errors.New("invalid input")
	ErrUserNotFound = errors.New("no such user")
	ErrInternal     = errors.New("internal error")
)

// Min 2 letters, letters only (latin or cyrillic).
var nameRe = regexp.MustCompile(`^[a-zа-яёA-ZА-ЯЁ]{2,}$`)

//go:generate mockery --name=UserRepository --output=./mocks/user --filename=user_repository.go
type UserRepository interface {
	Create(ctx context.Context, user model.User) error
	ByDevice(ctx context.Context, deviceID string) (model.User, error)
	UpdateName(ctx context.Context, deviceID string, name string) error
}

type Usecase struct {
	users UserRepository
}

func New(users UserRepository) *Usecase {
	return &Usecase{users: users}
}

// GetOrCreate resolves the device-bound identity, creating it on first
// contact. The device id is the sole authentication mechanism.
func (u *Usecase) GetOrCreate(ctx context.Context, deviceID string, name string) (model.User, error) {
	if err := validateDeviceID(deviceID); err != nil {
		return model.User{}, err
	}

	user, err := u.users.ByDevice(ctx, deviceID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return model.User{}, errors.Join(ErrInternal, err)
	}

	if err := validateName(name); err != nil {
		return model.User{}, err
	}
	user = model.User{
		ID:       uuid.New(),
		Name:     name,
		DeviceID: deviceID,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return model.User{}, errors.Join(ErrInternal, err)
	}
	return user, nil
}

func (u *Usecase) ByDevice(ctx context.Context, deviceID string) (model.User, error) {
	if err := validateDeviceID(deviceID); err != nil {
		return model.User{}, err
	}
	user, err := u.users.ByDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, errors.Join(ErrInternal, err)
	}
	return user, nil
}

func (u *Usecase) Rename(ctx context.Context, deviceID string, name string) (model.User, error) {
	if err := validateDeviceID(deviceID); err != nil {
		return model.User{}, err
	}
	if err := validateName(name); err != nil {
		return model.User{}, err
	}
	if err := u.users.UpdateName(ctx, deviceID, name); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, errors.Join(ErrInternal, err)
	}
	return u.users.ByDevice(ctx, deviceID)
}

func validateDeviceID(deviceID string) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device id is required", ErrValidation)
	}
	if len(deviceID) > model.MaxDeviceIDLen {
		return fmt.Errorf("%w: device id longer than %d", ErrValidation, model.MaxDeviceIDLen)
	}
	return nil
}

func validateName(name string) error {
	if len([]rune(name)) > model.MaxUserNameLen {
		return fmt.Errorf("%w: name longer than %d", ErrValidation, model.MaxUserNameLen)
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: name must contain only letters, at least 2", ErrValidation)
	}
	return nil
}
