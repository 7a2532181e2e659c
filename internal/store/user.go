package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/mercando/internal/live"
	"github.com/dukerupert/mercando/internal/model"
)

type UserStore struct {
	db     *sql.DB
	broker *live.Broker
}

func NewUserStore(db *sql.DB, broker *live.Broker) *UserStore {
	return &UserStore{db: db, broker: broker}
}

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Name, &u.LastName, &u.Email, &u.PasswordHash)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, name, last_name, email, password_hash`

// InsertUser stores u and returns its new id. A taken email yields ErrDuplicate.
func (s *UserStore) InsertUser(ctx context.Context, u *model.User) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO usuarios (name, last_name, email, password_hash) VALUES (?, ?, ?, ?)`,
		u.Name, u.LastName, u.Email, u.PasswordHash,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("insert user: %w", ErrDuplicate)
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	s.broker.Publish(live.Users)
	return id, nil
}

func (s *UserStore) FindUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM usuarios WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM usuarios WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateUser overwrites every column of the user with u.ID.
func (s *UserStore) UpdateUser(ctx context.Context, u *model.User) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE usuarios SET name = ?, last_name = ?, email = ?, password_hash = ? WHERE id = ?`,
		u.Name, u.LastName, u.Email, u.PasswordHash, u.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("update user: %w", ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := checkAffected(result, "update user"); err != nil {
		return err
	}
	s.broker.Publish(live.Users)
	return nil
}
