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

// DiagnosticStore implements store.DiagnosticStore using PostgreSQL.
type DiagnosticStore struct {
	db store.DBTX
}

// NewDiagnosticStore creates a new DiagnosticStore.
func NewDiagnosticStore(db store.DBTX) *DiagnosticStore {
	return &DiagnosticStore{db: db}
}

const selectDiagnostic = `
	SELECT d.id, d.code, d.device_name, d.status, d.scheduled_date,
	       u.id, u.first_name, u.last_name, u.email, u.role,
	       p.id, p.name, p.telephone
	FROM diagnostics d
	LEFT JOIN users u ON u.id = d.technician_id
	LEFT JOIN patients p ON p.id = d.patient_id
`

// ListPendingInWindow implements store.DiagnosticStore.ListPendingInWindow.
func (s *DiagnosticStore) ListPendingInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Diagnostic, error) {
	query := selectDiagnostic + `
		WHERE d.status NOT IN ($1, $2)
		  AND d.scheduled_date BETWEEN $3 AND $4
		  AND ($5::uuid IS NULL OR d.technician_id = $5)
		ORDER BY d.scheduled_date ASC, d.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.DiagnosticStatusCompleted, domain.DiagnosticStatusCancelled,
		start, end, assignedTo)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var diagnostics []*domain.Diagnostic
	for rows.Next() {
		diagnostic, err := scanDiagnostic(rows)
		if err != nil {
			return nil, MapError(err)
		}
		diagnostics = append(diagnostics, diagnostic)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return diagnostics, nil
}

// GetByID implements store.DiagnosticStore.GetByID.
func (s *DiagnosticStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagnostic, error) {
	query := selectDiagnostic + ` WHERE d.id = $1`

	diagnostic, err := scanDiagnostic(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDiagnosticNotFound
		}
		return nil, MapError(err)
	}
	return diagnostic, nil
}

func scanDiagnostic(row rowScanner) (*domain.Diagnostic, error) {
	var (
		diagnostic    domain.Diagnostic
		deviceName    sql.NullString
		scheduledDate sql.NullTime
		technician    assigneeCols
		patient       clientCols
	)

	err := row.Scan(
		&diagnostic.ID, &diagnostic.Code, &deviceName,
		&diagnostic.Status, &scheduledDate,
		&technician.ID, &technician.FirstName, &technician.LastName, &technician.Email, &technician.Role,
		&patient.ID, &patient.Name, &patient.Telephone,
	)
	if err != nil {
		return nil, err
	}

	diagnostic.DeviceName = deviceName.String
	diagnostic.ScheduledDate = scheduledDate.Time
	diagnostic.Technician = technician.Ref()
	diagnostic.Patient = patient.Ref(domain.ClientTypePatient)
	return &diagnostic, nil
}
