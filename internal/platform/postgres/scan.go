package postgres

import (
	"database/sql"

	"github.com/medirent/opsdesk/internal/domain"
)

// Nullable join columns shared by the stores. Every reader resolves its
// client and assignee through LEFT JOINs, so the joined columns may all
// be NULL at once.

// assigneeCols receives the columns of a LEFT JOIN against users.
type assigneeCols struct {
	ID        sql.NullString
	FirstName sql.NullString
	LastName  sql.NullString
	Email     sql.NullString
	Role      sql.NullString
}

// Ref converts the joined columns into an AssigneeRef, or nil when the
// join found no row, the first-class "unassigned" state.
func (c *assigneeCols) Ref() *domain.AssigneeRef {
	if !c.ID.Valid {
		return nil
	}
	return &domain.AssigneeRef{
		ID:        c.ID.String,
		FirstName: c.FirstName.String,
		LastName:  c.LastName.String,
		Email:     c.Email.String,
		Role:      c.Role.String,
	}
}

// clientCols receives the columns of a LEFT JOIN against patients or
// companies.
type clientCols struct {
	ID        sql.NullString
	Name      sql.NullString
	Telephone sql.NullString
}

// Ref converts the joined columns into a ClientRef of the given type, or
// nil when the join found no row.
func (c *clientCols) Ref(clientType domain.ClientType) *domain.ClientRef {
	if !c.ID.Valid {
		return nil
	}
	return &domain.ClientRef{
		ID:        c.ID.String,
		Name:      c.Name.String,
		Type:      clientType,
		Telephone: c.Telephone.String,
	}
}
