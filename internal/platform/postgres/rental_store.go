package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// RentalStore implements store.RentalStore using PostgreSQL.
type RentalStore struct {
	db store.DBTX
}

// NewRentalStore creates a new RentalStore.
func NewRentalStore(db store.DBTX) *RentalStore {
	return &RentalStore{db: db}
}

const selectRental = `
	SELECT r.id, r.code, r.device_name, r.status, r.start_date, r.end_date,
	       r.alert_date, r.alert_message, r.titration_date, r.appointment_date,
	       u.id, u.first_name, u.last_name, u.email, u.role,
	       p.id, p.name, p.telephone
	FROM rentals r
	LEFT JOIN users u ON u.id = r.assigned_to_id
	LEFT JOIN patients p ON p.id = r.patient_id
`

// ListRelevantInWindow implements store.RentalStore.ListRelevantInWindow.
// A rental is relevant when any of its reminder dates falls inside the
// window; the reader decides which of them materialize as tasks.
func (s *RentalStore) ListRelevantInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Rental, error) {
	query := selectRental + `
		WHERE r.status NOT IN ($1, $2)
		  AND (r.end_date BETWEEN $3 AND $4
		    OR r.alert_date BETWEEN $3 AND $4
		    OR r.titration_date BETWEEN $3 AND $4
		    OR r.appointment_date BETWEEN $3 AND $4)
		  AND ($5::uuid IS NULL OR r.assigned_to_id = $5)
		ORDER BY r.end_date ASC NULLS LAST, r.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.RentalStatusReturned, domain.RentalStatusCancelled,
		start, end, assignedTo)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var rentals []*domain.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, MapError(err)
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return rentals, nil
}

// GetByID implements store.RentalStore.GetByID.
func (s *RentalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	query := selectRental + ` WHERE r.id = $1`

	rental, err := scanRental(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRentalNotFound
		}
		return nil, MapError(err)
	}
	return rental, nil
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	var (
		rental       domain.Rental
		deviceName   sql.NullString
		alertMessage sql.NullString
		assignee     assigneeCols
		patient      clientCols
	)

	err := row.Scan(
		&rental.ID, &rental.Code, &deviceName, &rental.Status,
		&rental.StartDate, &rental.EndDate,
		&rental.AlertDate, &alertMessage, &rental.TitrationDate, &rental.AppointmentDate,
		&assignee.ID, &assignee.FirstName, &assignee.LastName, &assignee.Email, &assignee.Role,
		&patient.ID, &patient.Name, &patient.Telephone,
	)
	if err != nil {
		return nil, err
	}

	rental.DeviceName = deviceName.String
	rental.AlertMessage = alertMessage.String
	rental.AssignedTo = assignee.Ref()
	rental.Patient = patient.Ref(domain.ClientTypePatient)
	return &rental, nil
}
