package postgres

import (
	"context"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL. It is read-only:
// staff accounts are owned by the surrounding application.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a new UserStore.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

// List implements store.UserStore.List.
func (s *UserStore) List(ctx context.Context) ([]*domain.StaffUser, error) {
	query := `
		SELECT id, first_name, last_name, email, role
		FROM users
		ORDER BY first_name ASC, last_name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var users []*domain.StaffUser
	for rows.Next() {
		var user domain.StaffUser
		if err := rows.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.Role); err != nil {
			return nil, MapError(err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return users, nil
}
