package service

import (
	"errors"
	"fmt"

	"github.com/dukerupert/mercando/internal/store"
)

var (
	ErrDuplicateEmail           = errors.New("email already registered")
	ErrInvalidEmail             = errors.New("invalid email address")
	ErrWeakPassword             = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch         = errors.New("passwords do not match")
	ErrEmptyField               = errors.New("required field is empty")
	ErrEmailTaken               = errors.New("email already in use")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrPasswordTooShort         = errors.New("new password must be at least 6 characters")
	ErrNoChanges                = errors.New("no changes to save")
	ErrNotFound                 = errors.New("not found")
	ErrNotTrashed               = errors.New("list is not in the trash")
	ErrStorage                  = errors.New("storage failure")
)

// storageErr classifies an error coming out of a store. Zero-row writes map
// to ErrNotFound; anything else is wrapped in ErrStorage with the cause kept.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
