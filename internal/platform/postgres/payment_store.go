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

// PaymentStore implements store.PaymentStore using PostgreSQL. Payments
// may belong to a patient or a company, so both joins are attempted and
// whichever resolves becomes the client reference.
type PaymentStore struct {
	db store.DBTX
}

// NewPaymentStore creates a new PaymentStore.
func NewPaymentStore(db store.DBTX) *PaymentStore {
	return &PaymentStore{db: db}
}

const selectPayment = `
	SELECT pay.id, pay.code, pay.amount, pay.remaining_amount, pay.status,
	       pay.due_date, pay.period_end_date,
	       p.id, p.name, p.telephone,
	       c.id, c.name, c.telephone
	FROM payments pay
	LEFT JOIN patients p ON p.id = pay.patient_id
	LEFT JOIN companies c ON c.id = pay.company_id
`

// ListDueInWindow implements store.PaymentStore.ListDueInWindow.
func (s *PaymentStore) ListDueInWindow(ctx context.Context, start, end time.Time) ([]*domain.Payment, error) {
	query := selectPayment + `
		WHERE pay.status NOT IN ($1, $2)
		  AND pay.remaining_amount > 0
		  AND (pay.due_date BETWEEN $3 AND $4
		    OR pay.period_end_date BETWEEN $3 AND $4)
		ORDER BY pay.due_date ASC NULLS LAST, pay.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query,
		domain.PaymentStatusPaid, domain.PaymentStatusCancelled, start, end)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, MapError(err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return payments, nil
}

// GetByID implements store.PaymentStore.GetByID.
func (s *PaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := selectPayment + ` WHERE pay.id = $1`

	payment, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPaymentNotFound
		}
		return nil, MapError(err)
	}
	return payment, nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment domain.Payment
		patient clientCols
		company clientCols
	)

	err := row.Scan(
		&payment.ID, &payment.Code, &payment.Amount, &payment.RemainingAmount, &payment.Status,
		&payment.DueDate, &payment.PeriodEndDate,
		&patient.ID, &patient.Name, &patient.Telephone,
		&company.ID, &company.Name, &company.Telephone,
	)
	if err != nil {
		return nil, err
	}

	if ref := patient.Ref(domain.ClientTypePatient); ref != nil {
		payment.Client = ref
	} else {
		payment.Client = company.Ref(domain.ClientTypeCompany)
	}
	return &payment, nil
}
