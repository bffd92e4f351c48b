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

// CNAMBonStore implements store.CNAMBonStore using PostgreSQL.
type CNAMBonStore struct {
	db store.DBTX
}

// NewCNAMBonStore creates a new CNAMBonStore.
func NewCNAMBonStore(db store.DBTX) *CNAMBonStore {
	return &CNAMBonStore{db: db}
}

const selectBon = `
	SELECT b.id, b.bon_number, b.device_name, b.start_date, b.end_date, b.renewed,
	       p.id, p.name, p.telephone
	FROM cnam_bons b
	LEFT JOIN patients p ON p.id = b.patient_id
`

// ListRenewableInWindow implements store.CNAMBonStore.ListRenewableInWindow.
// A bon is renewable once the window reaches its renewal date, which is
// renewalLead before its end date.
func (s *CNAMBonStore) ListRenewableInWindow(ctx context.Context, start, end time.Time, renewalLead time.Duration) ([]*domain.CNAMBon, error) {
	leadDays := int(renewalLead.Hours() / 24)
	query := selectBon + `
		WHERE b.renewed = false
		  AND b.end_date - ($3 * INTERVAL '1 day') BETWEEN $1 AND $2
		ORDER BY b.end_date ASC, b.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, start, end, leadDays)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var bons []*domain.CNAMBon
	for rows.Next() {
		bon, err := scanBon(rows)
		if err != nil {
			return nil, MapError(err)
		}
		bons = append(bons, bon)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return bons, nil
}

// GetByID implements store.CNAMBonStore.GetByID.
func (s *CNAMBonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CNAMBon, error) {
	query := selectBon + ` WHERE b.id = $1`

	bon, err := scanBon(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBonNotFound
		}
		return nil, MapError(err)
	}
	return bon, nil
}

func scanBon(row rowScanner) (*domain.CNAMBon, error) {
	var (
		bon        domain.CNAMBon
		deviceName sql.NullString
		patient    clientCols
	)

	err := row.Scan(
		&bon.ID, &bon.BonNumber, &deviceName, &bon.StartDate, &bon.EndDate, &bon.Renewed,
		&patient.ID, &patient.Name, &patient.Telephone,
	)
	if err != nil {
		return nil, err
	}

	bon.DeviceName = deviceName.String
	bon.Patient = patient.Ref(domain.ClientTypePatient)
	return &bon, nil
}
