package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/store"
)

// In-memory fakes implementing the store contracts, including the
// compare-and-set semantics of the write paths.

type fakeManualTaskStore struct {
	tasks map[uuid.UUID]*domain.ManualTask
}

func newFakeManualTaskStore(tasks ...*domain.ManualTask) *fakeManualTaskStore {
	s := &fakeManualTaskStore{tasks: make(map[uuid.UUID]*domain.ManualTask)}
	for _, task := range tasks {
		s.tasks[task.ID] = task
	}
	return s
}

func (s *fakeManualTaskStore) Create(ctx context.Context, task *domain.ManualTask) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *fakeManualTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManualTask, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrManualTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeManualTaskStore) ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.ManualTask, error) {
	var out []*domain.ManualTask
	for _, task := range s.tasks {
		out = append(out, task)
	}
	return out, nil
}

func (s *fakeManualTaskStore) Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrManualTaskNotFound
	}
	if task.Status == domain.TaskStatusCompleted {
		return nil
	}
	if !task.UpdatedAt.Equal(expectedUpdatedAt) {
		return store.ErrWriteConflict
	}
	task.Complete(completedBy, time.Now().UTC())
	return nil
}

func (s *fakeManualTaskStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error {
	task, ok := s.tasks[id]
	if !ok {
		return store.ErrManualTaskNotFound
	}
	if !task.UpdatedAt.Equal(expectedUpdatedAt) {
		return store.ErrWriteConflict
	}
	task.Notes = notes
	task.UpdatedAt = time.Now().UTC()
	return nil
}

type fakePaymentStore struct {
	payments map[uuid.UUID]*domain.Payment
}

func (s *fakePaymentStore) ListDueInWindow(ctx context.Context, start, end time.Time) ([]*domain.Payment, error) {
	return nil, nil
}

func (s *fakePaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	payment, ok := s.payments[id]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}
	return payment, nil
}

type fakeDiagnosticStore struct {
	diagnostics map[uuid.UUID]*domain.Diagnostic
}

func (s *fakeDiagnosticStore) ListPendingInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Diagnostic, error) {
	return nil, nil
}

func (s *fakeDiagnosticStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diagnostic, error) {
	diagnostic, ok := s.diagnostics[id]
	if !ok {
		return nil, store.ErrDiagnosticNotFound
	}
	return diagnostic, nil
}

type fakeRentalStore struct {
	rentals map[uuid.UUID]*domain.Rental
}

func (s *fakeRentalStore) ListRelevantInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Rental, error) {
	return nil, nil
}

func (s *fakeRentalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rental, error) {
	rental, ok := s.rentals[id]
	if !ok {
		return nil, store.ErrRentalNotFound
	}
	return rental, nil
}

type fakeAppointmentStore struct {
	appointments map[uuid.UUID]*domain.Appointment
}

func (s *fakeAppointmentStore) ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.Appointment, error) {
	return nil, nil
}

func (s *fakeAppointmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Appointment, error) {
	appointment, ok := s.appointments[id]
	if !ok {
		return nil, store.ErrAppointmentNotFound
	}
	copied := *appointment
	return &copied, nil
}

func (s *fakeAppointmentStore) Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error {
	appointment, ok := s.appointments[id]
	if !ok {
		return store.ErrAppointmentNotFound
	}
	if appointment.Status == domain.AppointmentStatusCompleted {
		return nil
	}
	if !appointment.UpdatedAt.Equal(expectedUpdatedAt) {
		return store.ErrWriteConflict
	}
	now := time.Now().UTC()
	appointment.Status = domain.AppointmentStatusCompleted
	appointment.CompletedAt = &now
	appointment.CompletedBy = &completedBy
	appointment.UpdatedAt = now
	return nil
}

func (s *fakeAppointmentStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error {
	appointment, ok := s.appointments[id]
	if !ok {
		return store.ErrAppointmentNotFound
	}
	if !appointment.UpdatedAt.Equal(expectedUpdatedAt) {
		return store.ErrWriteConflict
	}
	appointment.Notes = notes
	appointment.UpdatedAt = time.Now().UTC()
	return nil
}

type fakeBonStore struct {
	bons map[uuid.UUID]*domain.CNAMBon
}

func (s *fakeBonStore) ListRenewableInWindow(ctx context.Context, start, end time.Time, renewalLead time.Duration) ([]*domain.CNAMBon, error) {
	return nil, nil
}

func (s *fakeBonStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CNAMBon, error) {
	bon, ok := s.bons[id]
	if !ok {
		return nil, store.ErrBonNotFound
	}
	return bon, nil
}

type fakeSaleStore struct {
	sales map[uuid.UUID]*domain.Sale
}

func (s *fakeSaleStore) ListRemindableInWindow(ctx context.Context, start, end time.Time) ([]*domain.Sale, error) {
	return nil, nil
}

func (s *fakeSaleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	sale, ok := s.sales[id]
	if !ok {
		return nil, store.ErrSaleNotFound
	}
	return sale, nil
}

type lifecycleFixture struct {
	manualTasks  *fakeManualTaskStore
	diagnostics  *fakeDiagnosticStore
	rentals      *fakeRentalStore
	payments     *fakePaymentStore
	appointments *fakeAppointmentStore
	bons         *fakeBonStore
	sales        *fakeSaleStore
	lifecycle    *Lifecycle
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		manualTasks:  newFakeManualTaskStore(),
		diagnostics:  &fakeDiagnosticStore{diagnostics: map[uuid.UUID]*domain.Diagnostic{}},
		rentals:      &fakeRentalStore{rentals: map[uuid.UUID]*domain.Rental{}},
		payments:     &fakePaymentStore{payments: map[uuid.UUID]*domain.Payment{}},
		appointments: &fakeAppointmentStore{appointments: map[uuid.UUID]*domain.Appointment{}},
		bons:         &fakeBonStore{bons: map[uuid.UUID]*domain.CNAMBon{}},
		sales:        &fakeSaleStore{sales: map[uuid.UUID]*domain.Sale{}},
	}
	f.lifecycle = NewLifecycle(
		f.manualTasks, f.diagnostics, f.rentals, f.payments,
		f.appointments, f.bons, f.sales, nil,
	)
	return f
}

func TestLifecycleCompleteManualTask(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	task, err := domain.NewManualTask("Call patient", "", domain.TaskPriorityMedium, time.Time{}, nil)
	require.NoError(t, err)
	require.NoError(t, f.manualTasks.Create(context.Background(), task))

	operator := uuid.New()
	taskID := TaskID(domain.TaskTypeManual, task.ID)

	require.NoError(t, f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypeManual, operator))

	stored, err := f.manualTasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedBy)
	assert.Equal(t, operator, *stored.CompletedBy)

	// Completing again is an idempotent success and the original stamps
	// survive.
	other := uuid.New()
	require.NoError(t, f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypeManual, other))
	stored, err = f.manualTasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, operator, *stored.CompletedBy)
}

func TestLifecycleCompleteAppointment(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	appointment := &domain.Appointment{
		ID:            uuid.New(),
		Code:          "RDV-0021",
		Kind:          "Follow-up",
		Status:        domain.AppointmentStatusScheduled,
		ScheduledDate: time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	f.appointments.appointments[appointment.ID] = appointment

	operator := uuid.New()
	taskID := TaskID(domain.TaskTypeAppointmentReminder, appointment.ID)

	require.NoError(t, f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypeAppointmentReminder, operator))
	assert.Equal(t, domain.AppointmentStatusCompleted, appointment.Status)
	require.NotNil(t, appointment.CompletedBy)
	assert.Equal(t, operator, *appointment.CompletedBy)
}

func TestLifecycleCompletePaymentRequiresAction(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	payment := &domain.Payment{
		ID:              uuid.New(),
		Code:            "PAY-0042",
		Amount:          150.00,
		RemainingAmount: 150.00,
		Status:          domain.PaymentStatusPending,
	}
	f.payments.payments[payment.ID] = payment

	taskID := TaskID(domain.TaskTypePaymentDue, payment.ID)
	err := f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypePaymentDue, uuid.New())

	var requiresAction *RequiresActionError
	require.ErrorAs(t, err, &requiresAction)
	assert.ErrorIs(t, err, ErrNotCompletable)
	assert.Equal(t, "/payments/"+payment.ID.String(), requiresAction.ActionURL)

	// Once the balance is independently settled, completion succeeds as a
	// no-op acknowledgment.
	payment.RemainingAmount = 0
	payment.Status = domain.PaymentStatusPaid
	assert.NoError(t, f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypePaymentDue, uuid.New()))
}

func TestLifecycleCompleteDerivedTypes(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	diagnostic := &domain.Diagnostic{ID: uuid.New(), Status: domain.DiagnosticStatusPending}
	f.diagnostics.diagnostics[diagnostic.ID] = diagnostic

	rental := &domain.Rental{ID: uuid.New(), Status: domain.RentalStatusActive}
	f.rentals.rentals[rental.ID] = rental

	bon := &domain.CNAMBon{ID: uuid.New()}
	f.bons.bons[bon.ID] = bon

	sale := &domain.Sale{ID: uuid.New()}
	f.sales.sales[sale.ID] = sale

	tests := []struct {
		name     string
		taskType domain.TaskType
		sourceID uuid.UUID
		resolve  func()
	}{
		{"diagnostic", domain.TaskTypeDiagnosticPending, diagnostic.ID, func() { diagnostic.Status = domain.DiagnosticStatusCompleted }},
		{"rental", domain.TaskTypeRentalExpiring, rental.ID, func() { rental.Status = domain.RentalStatusReturned }},
		{"cnam bon", domain.TaskTypeCNAMRenewal, bon.ID, func() { bon.Renewed = true }},
		{"sale rappel", domain.TaskTypeSaleRappel2Years, sale.ID, func() { sale.Rappel2Done = true }},
	}

	for _, tt := range tests {
		taskID := TaskID(tt.taskType, tt.sourceID)

		err := f.lifecycle.Complete(context.Background(), taskID, tt.taskType, uuid.New())
		var requiresAction *RequiresActionError
		require.ErrorAs(t, err, &requiresAction, "%s: unresolved precondition must require action", tt.name)
		assert.Equal(t, tt.taskType, requiresAction.TaskType, tt.name)

		tt.resolve()
		assert.NoError(t, f.lifecycle.Complete(context.Background(), taskID, tt.taskType, uuid.New()), tt.name)
	}
}

func TestLifecycleCompleteValidation(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	t.Run("unknown type", func(t *testing.T) {
		err := f.lifecycle.Complete(context.Background(), "task-"+uuid.NewString(), "INVOICE", uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvalidTaskType)
	})

	t.Run("type mismatch between ID and body", func(t *testing.T) {
		taskID := TaskID(domain.TaskTypePaymentDue, uuid.New())
		err := f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypeManual, uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvalidID)
	})

	t.Run("missing record", func(t *testing.T) {
		taskID := TaskID(domain.TaskTypeManual, uuid.New())
		err := f.lifecycle.Complete(context.Background(), taskID, domain.TaskTypeManual, uuid.New())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLifecycleUpdateNotes(t *testing.T) {
	t.Parallel()

	t.Run("manual task notes are saved", func(t *testing.T) {
		t.Parallel()

		f := newLifecycleFixture()
		task, err := domain.NewManualTask("Call patient", "", domain.TaskPriorityMedium, time.Time{}, nil)
		require.NoError(t, err)
		require.NoError(t, f.manualTasks.Create(context.Background(), task))

		taskID := TaskID(domain.TaskTypeManual, task.ID)
		require.NoError(t, f.lifecycle.UpdateNotes(context.Background(), taskID, domain.TaskTypeManual, "left voicemail"))

		stored, err := f.manualTasks.GetByID(context.Background(), task.ID)
		require.NoError(t, err)
		assert.Equal(t, "left voicemail", stored.Notes)
	})

	t.Run("appointment notes are saved", func(t *testing.T) {
		t.Parallel()

		f := newLifecycleFixture()
		appointment := &domain.Appointment{
			ID:            uuid.New(),
			Status:        domain.AppointmentStatusScheduled,
			ScheduledDate: time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		}
		f.appointments.appointments[appointment.ID] = appointment

		taskID := TaskID(domain.TaskTypeAppointmentReminder, appointment.ID)
		require.NoError(t, f.lifecycle.UpdateNotes(context.Background(), taskID, domain.TaskTypeAppointmentReminder, "patient asked to reschedule"))
		assert.Equal(t, "patient asked to reschedule", appointment.Notes)
	})

	t.Run("derived types reject notes edits", func(t *testing.T) {
		t.Parallel()

		f := newLifecycleFixture()
		taskID := TaskID(domain.TaskTypePaymentDue, uuid.New())
		err := f.lifecycle.UpdateNotes(context.Background(), taskID, domain.TaskTypePaymentDue, "called the payer")
		assert.ErrorIs(t, err, ErrNotEditable)
	})
}

func TestLifecycleWriteConflictSurfaces(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	task, err := domain.NewManualTask("Call patient", "", domain.TaskPriorityMedium, time.Time{}, nil)
	require.NoError(t, err)
	require.NoError(t, f.manualTasks.Create(context.Background(), task))

	// Another writer bumps the row between the lifecycle's read and its
	// compare-and-set write.
	conflicted := &conflictingManualTaskStore{fakeManualTaskStore: f.manualTasks}
	lifecycle := NewLifecycle(
		conflicted, f.diagnostics, f.rentals, f.payments,
		f.appointments, f.bons, f.sales, nil,
	)

	taskID := TaskID(domain.TaskTypeManual, task.ID)
	err = lifecycle.Complete(context.Background(), taskID, domain.TaskTypeManual, uuid.New())
	assert.ErrorIs(t, err, store.ErrWriteConflict)
}

// conflictingManualTaskStore hands out stale UpdatedAt tokens so every
// compare-and-set write loses its race.
type conflictingManualTaskStore struct {
	*fakeManualTaskStore
}

func (s *conflictingManualTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManualTask, error) {
	task, err := s.fakeManualTaskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.UpdatedAt = task.UpdatedAt.Add(-time.Minute)
	return task, nil
}
