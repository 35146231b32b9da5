package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/agrisoko/sokobot/market/model"
)

const userColumns = `id, phone, role, region, status, created_at`

// GetOrCreateUser resolves a phone identifier to a user, creating a buyer
// record on first contact.
func (s *SQLStore) GetOrCreateUser(ctx context.Context, phone string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "store.GetOrCreateUser.Select")
	}

	err = s.db.GetContext(ctx, &user,
		`INSERT INTO users (phone, role, status)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (phone) DO UPDATE SET phone = EXCLUDED.phone
		 RETURNING `+userColumns,
		phone, model.RoleBuyer, model.UserStatusActive)
	if err != nil {
		return nil, errors.Wrap(err, "store.GetOrCreateUser.Insert")
	}
	return &user, nil
}

// GetUserByID fetches a user by primary key.
func (s *SQLStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "store.GetUserByID")
	}
	return &user, nil
}

// SetUserRole updates the role; last write wins.
func (s *SQLStore) SetUserRole(ctx context.Context, userID int64, role model.Role) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	return errors.Wrap(err, "store.SetUserRole")
}

// OptedInBuyers returns buyers holding an active opt-in for the given
// commodity/region pair. Matching is uppercase exact.
func (s *SQLStore) OptedInBuyers(ctx context.Context, commodity, region string) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users,
		`SELECT DISTINCT u.id, u.phone, u.role, u.region, u.status, u.created_at
		 FROM users u
		 JOIN opt_ins o ON o.user_id = u.id
		 WHERE u.role = $1 AND o.active AND o.commodity = $2 AND o.region = $3`,
		model.RoleBuyer, strings.ToUpper(commodity), strings.ToUpper(region))
	if err != nil {
		return nil, errors.Wrap(err, "store.OptedInBuyers")
	}
	return users, nil
}

// Buyers returns every user currently holding the buyer role.
func (s *SQLStore) Buyers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM users WHERE role = $1`, model.RoleBuyer)
	if err != nil {
		return nil, errors.Wrap(err, "store.Buyers")
	}
	return users, nil
}
