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

// AppointmentStore implements store.AppointmentStore using PostgreSQL.
// Like the manual-task store, its write paths run inside transactions so
// a zero-row compare-and-set can be diagnosed against the same snapshot.
type AppointmentStore struct {
	db *sql.DB
}

// NewAppointmentStore creates a new AppointmentStore.
func NewAppointmentStore(db *sql.DB) *AppointmentStore {
	return &AppointmentStore{db: db}
}

const selectAppointment = `
	SELECT a.id, a.code, a.kind, a.location, a.notes, a.status, a.scheduled_date,
	       a.completed_at, a.completed_by, a.updated_at,
	       u.id, u.first_name, u.last_name, u.email, u.role,
	       p.id, p.name, p.telephone
	FROM appointments a
	LEFT JOIN users u ON u.id = a.assigned_to_id
	LEFT JOIN patients p ON p.id = a.patient_id
`

// ListInWindow implements store.AppointmentStore.ListInWindow. Completed
// appointments are included; only cancelled ones are filtered out by the
// reader.
func (s *AppointmentStore) ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Appointment, error) {
	query := selectAppointment + `
		WHERE a.scheduled_date BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR a.assigned_to_id = $3)
		ORDER BY a.scheduled_date ASC, a.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, start, end, assignedTo)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var appointments []*domain.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, MapError(err)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return appointments, nil
}

// GetByID implements store.AppointmentStore.GetByID.
func (s *AppointmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	query := selectAppointment + ` WHERE a.id = $1`

	appointment, err := scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAppointmentNotFound
		}
		return nil, MapError(err)
	}
	return appointment, nil
}

// Complete implements store.AppointmentStore.Complete with the same
// compare-and-set discipline as the manual-task store.
func (s *AppointmentStore) Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE appointments
		SET status = $1, completed_at = now(), completed_by = $2, updated_at = now()
		WHERE id = $3 AND updated_at = $4 AND status <> $1
	`

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			domain.AppointmentStatusCompleted, completedBy, id, expectedUpdatedAt)
		if err != nil {
			return MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return MapError(err)
		}
		if affected == 1 {
			return nil
		}

		appointment, err := scanAppointment(tx.QueryRowContext(ctx, selectAppointment+` WHERE a.id = $1`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrAppointmentNotFound
			}
			return MapError(err)
		}
		if appointment.Status == domain.AppointmentStatusCompleted {
			return nil
		}
		return store.ErrWriteConflict
	})
}

// UpdateNotes implements store.AppointmentStore.UpdateNotes.
func (s *AppointmentStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE appointments
		SET notes = $1, updated_at = now()
		WHERE id = $2 AND updated_at = $3
	`

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, notes, id, expectedUpdatedAt)
		if err != nil {
			return MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return MapError(err)
		}
		if affected == 1 {
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return store.ErrAppointmentNotFound
		}
		return store.ErrWriteConflict
	})
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appointment domain.Appointment
		location    sql.NullString
		notes       sql.NullString
		assignee    assigneeCols
		patient     clientCols
	)

	err := row.Scan(
		&appointment.ID, &appointment.Code, &appointment.Kind, &location, &notes,
		&appointment.Status, &appointment.ScheduledDate,
		&appointment.CompletedAt, &appointment.CompletedBy, &appointment.UpdatedAt,
		&assignee.ID, &assignee.FirstName, &assignee.LastName, &assignee.Email, &assignee.Role,
		&patient.ID, &patient.Name, &patient.Telephone,
	)
	if err != nil {
		return nil, err
	}

	appointment.Location = location.String
	appointment.Notes = notes.String
	appointment.AssignedTo = assignee.Ref()
	appointment.Patient = patient.Ref(domain.ClientTypePatient)
	return &appointment, nil
}
