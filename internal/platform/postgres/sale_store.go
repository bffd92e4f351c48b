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

// SaleStore implements store.SaleStore using PostgreSQL. The rappel
// reminder dates are derived in SQL from the sale date so the window
// predicate stays in the database.
type SaleStore struct {
	db store.DBTX
}

// NewSaleStore creates a new SaleStore.
func NewSaleStore(db store.DBTX) *SaleStore {
	return &SaleStore{db: db}
}

const selectSale = `
	SELECT s.id, s.code, s.device_name, s.sale_date,
	       s.next_maintenance_date, s.maintenance_done, s.rappel_2_done, s.rappel_7_done,
	       p.id, p.name, p.telephone,
	       c.id, c.name, c.telephone
	FROM sales s
	LEFT JOIN patients p ON p.id = s.patient_id
	LEFT JOIN companies c ON c.id = s.company_id
`

// ListRemindableInWindow implements store.SaleStore.ListRemindableInWindow.
func (s *SaleStore) ListRemindableInWindow(ctx context.Context, start, end time.Time) ([]*domain.Sale, error) {
	query := selectSale + `
		WHERE (NOT s.maintenance_done AND s.next_maintenance_date BETWEEN $1 AND $2)
		   OR (NOT s.rappel_2_done AND s.sale_date + INTERVAL '2 years' BETWEEN $1 AND $2)
		   OR (NOT s.rappel_7_done AND s.sale_date + INTERVAL '7 years' BETWEEN $1 AND $2)
		ORDER BY s.sale_date ASC, s.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var sales []*domain.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, MapError(err)
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return sales, nil
}

// GetByID implements store.SaleStore.GetByID.
func (s *SaleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	query := selectSale + ` WHERE s.id = $1`

	sale, err := scanSale(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSaleNotFound
		}
		return nil, MapError(err)
	}
	return sale, nil
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var (
		sale       domain.Sale
		deviceName sql.NullString
		patient    clientCols
		company    clientCols
	)

	err := row.Scan(
		&sale.ID, &sale.Code, &deviceName, &sale.SaleDate,
		&sale.NextMaintenanceDate, &sale.MaintenanceDone, &sale.Rappel2Done, &sale.Rappel7Done,
		&patient.ID, &patient.Name, &patient.Telephone,
		&company.ID, &company.Name, &company.Telephone,
	)
	if err != nil {
		return nil, err
	}

	sale.DeviceName = deviceName.String
	if ref := patient.Ref(domain.ClientTypePatient); ref != nil {
		sale.Client = ref
	} else {
		sale.Client = company.Ref(domain.ClientTypeCompany)
	}
	return &sale, nil
}
