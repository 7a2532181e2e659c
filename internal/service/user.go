package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dukerupert/mercando/internal/model"
	"github.com/dukerupert/mercando/internal/store"
)

// ProfileUpdate carries the editable profile fields. A blank Email keeps the
// current one. Password fields are read only when ChangePassword is set.
type ProfileUpdate struct {
	Name            string
	LastName        string
	Email           string
	ChangePassword  bool
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if !strings.Contains(email, "@") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateRegistration(name, lastName, email, password string) error {
	if isBlank(name) || isBlank(lastName) || isBlank(email) || password == "" {
		return ErrEmptyField
	}
	if !validEmail(normalizeEmail(email)) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account. Checks run in order: blank fields, email
// format, password length, email already registered.
func (s *Service) Register(ctx context.Context, name, lastName, email, password string) (*model.User, error) {
	if err := validateRegistration(name, lastName, email, password); err != nil {
		return nil, err
	}
	return s.register(ctx, name, lastName, email, password)
}

// RegisterWithConfirmation is Register with a check, after the password
// length, that the password was typed the same way twice.
func (s *Service) RegisterWithConfirmation(ctx context.Context, name, lastName, email, password, confirm string) (*model.User, error) {
	if err := validateRegistration(name, lastName, email, password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}
	return s.register(ctx, name, lastName, email, password)
}

func (s *Service) register(ctx context.Context, name, lastName, email, password string) (*model.User, error) {
	defer s.metrics.ObserveOperation("register", time.Now())

	email = normalizeEmail(email)
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, storageErr(err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         strings.TrimSpace(name),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
	}
	id, err := s.users.InsertUser(ctx, u)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, storageErr(err)
	}
	u.ID = id

	s.metrics.IncrementUsersRegistered()
	s.logger.Info("user registered", "user_id", id)
	return u, nil
}

// Authenticate returns the user whose email and password match, or nil when
// either is wrong. The two failure causes are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if isBlank(email) || password == "" {
		return nil, ErrEmptyField
	}

	u, err := s.users.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, storageErr(err)
	}
	if u == nil {
		s.metrics.RecordLogin(false)
		return nil, nil
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		s.logger.Warn("verify password", "user_id", u.ID, "error", err)
		ok = false
	}
	s.metrics.RecordLogin(ok)
	if !ok {
		return nil, nil
	}
	return u, nil
}

// User returns the user with the given id or ErrNotFound.
func (s *Service) User(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// UpdateProfile applies upd to the user. Checks run in order: user exists,
// name and last name present, email format, email not used by someone else,
// then the password change (current password, new length, confirmation), and
// finally that something actually changed.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, upd ProfileUpdate) (*model.User, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(upd.Name)
	lastName := strings.TrimSpace(upd.LastName)
	if name == "" || lastName == "" {
		return nil, ErrEmptyField
	}

	email := normalizeEmail(upd.Email)
	if email == "" {
		email = u.Email
	} else if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	if email != u.Email {
		other, err := s.users.FindUserByEmail(ctx, email)
		if err != nil {
			return nil, storageErr(err)
		}
		if other != nil && other.ID != u.ID {
			return nil, ErrEmailTaken
		}
	}

	hash := u.PasswordHash
	if upd.ChangePassword {
		if upd.CurrentPassword == "" {
			return nil, ErrCurrentPasswordIncorrect
		}
		ok, err := s.hasher.Verify(u.PasswordHash, upd.CurrentPassword)
		if err != nil || !ok {
			return nil, ErrCurrentPasswordIncorrect
		}
		if utf8.RuneCountInString(upd.NewPassword) < minPasswordLen {
			return nil, ErrPasswordTooShort
		}
		if upd.NewPassword != upd.ConfirmPassword {
			return nil, ErrPasswordMismatch
		}
		hash, err = s.hasher.Hash(upd.NewPassword)
		if err != nil {
			return nil, err
		}
	}

	if !upd.ChangePassword && name == u.Name && lastName == u.LastName && email == u.Email {
		return nil, ErrNoChanges
	}

	updated := &model.User{
		ID:           u.ID,
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
	}
	err = s.users.UpdateUser(ctx, updated)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, storageErr(err)
	}

	s.logger.Info("profile updated", "user_id", u.ID, "password_changed", upd.ChangePassword)
	return updated, nil
}
