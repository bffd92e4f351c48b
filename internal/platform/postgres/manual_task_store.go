package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/medirent/opsdesk/internal/domain"
	"github.com/medirent/opsdesk/internal/platform/logger"
	"github.com/medirent/opsdesk/internal/store"
)

// ManualTaskStore implements store.ManualTaskStore using PostgreSQL.
// The write paths run inside transactions so the post-write diagnosis of
// a zero-row compare-and-set reads the same snapshot it wrote against.
type ManualTaskStore struct {
	db *sql.DB
}

// NewManualTaskStore creates a new ManualTaskStore.
func NewManualTaskStore(db *sql.DB) *ManualTaskStore {
	return &ManualTaskStore{db: db}
}

// Create implements store.ManualTaskStore.Create.
func (s *ManualTaskStore) Create(ctx context.Context, task *domain.ManualTask) error {
	if err := task.Validate(); err != nil {
		return store.NewStoreError("manual_task", "create", "validation failed", err)
	}

	query := `
		INSERT INTO tasks (id, title, description, notes, status, priority,
			start_date, due_date, assigned_to_id, patient_id, company_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Notes, task.Status, task.Priority,
		task.StartDate, task.DueDate, task.AssignedToID, task.PatientID, task.CompanyID,
		task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			// A retried create with the same generated ID.
			return store.NewStoreError("manual_task", "create", "task already exists", store.ErrDuplicate)
		}
		logger.FromContext(ctx).Error("failed to create manual task",
			"task_id", task.ID, "error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ManualTaskStore.GetByID.
func (s *ManualTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ManualTask, error) {
	query := selectManualTask + ` WHERE t.id = $1`

	task, err := scanManualTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrManualTaskNotFound
		}
		return nil, MapError(err)
	}
	return task, nil
}

// ListInWindow implements store.ManualTaskStore.ListInWindow. The task's
// relevant date is its due date, falling back to its start date when no
// due date is set.
func (s *ManualTaskStore) ListInWindow(ctx context.Context, start, end time.Time, assignedTo *uuid.UUID) ([]*domain.ManualTask, error) {
	query := selectManualTask + `
		WHERE COALESCE(t.due_date, t.start_date) BETWEEN $1 AND $2
		  AND ($3::uuid IS NULL OR t.assigned_to_id = $3)
		ORDER BY COALESCE(t.due_date, t.start_date) ASC, t.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, start, end, assignedTo)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.ManualTask
	for rows.Next() {
		task, err := scanManualTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Complete implements store.ManualTaskStore.Complete. The update is a
// compare-and-set on updated_at; when zero rows match, a follow-up read
// distinguishes not-found, already-completed (success no-op) and a lost
// race (ErrWriteConflict).
func (s *ManualTaskStore) Complete(ctx context.Context, id, completedBy uuid.UUID, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE tasks
		SET status = $1, completed_at = now(), completed_by = $2, updated_at = now()
		WHERE id = $3 AND updated_at = $4 AND status <> $1
	`

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query, domain.TaskStatusCompleted, completedBy, id, expectedUpdatedAt)
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

		task, err := scanManualTask(tx.QueryRowContext(ctx, selectManualTask+` WHERE t.id = $1`, id))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrManualTaskNotFound
			}
			return MapError(err)
		}
		if task.Status == domain.TaskStatusCompleted {
			// Another operator completed it first; completion is idempotent.
			return nil
		}
		return store.ErrWriteConflict
	})
}

// UpdateNotes implements store.ManualTaskStore.UpdateNotes under the same
// compare-and-set discipline as Complete.
func (s *ManualTaskStore) UpdateNotes(ctx context.Context, id uuid.UUID, notes string, expectedUpdatedAt time.Time) error {
	query := `
		UPDATE tasks
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
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			return MapError(err)
		}
		if !exists {
			return store.ErrManualTaskNotFound
		}
		return store.ErrWriteConflict
	})
}

const selectManualTask = `
	SELECT t.id, t.title, t.description, t.notes, t.status, t.priority,
	       t.start_date, t.due_date, t.completed_at, t.completed_by,
	       t.assigned_to_id, t.patient_id, t.company_id, t.created_at, t.updated_at,
	       u.id, u.first_name, u.last_name, u.email, u.role,
	       p.id, p.name, p.telephone,
	       c.id, c.name, c.telephone
	FROM tasks t
	LEFT JOIN users u ON u.id = t.assigned_to_id
	LEFT JOIN patients p ON p.id = t.patient_id
	LEFT JOIN companies c ON c.id = t.company_id
`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanManualTask(row rowScanner) (*domain.ManualTask, error) {
	var (
		task        domain.ManualTask
		description sql.NullString
		notes       sql.NullString
		assignee    assigneeCols
		patient     clientCols
		company     clientCols
	)

	err := row.Scan(
		&task.ID, &task.Title, &description, &notes, &task.Status, &task.Priority,
		&task.StartDate, &task.DueDate, &task.CompletedAt, &task.CompletedBy,
		&task.AssignedToID, &task.PatientID, &task.CompanyID, &task.CreatedAt, &task.UpdatedAt,
		&assignee.ID, &assignee.FirstName, &assignee.LastName, &assignee.Email, &assignee.Role,
		&patient.ID, &patient.Name, &patient.Telephone,
		&company.ID, &company.Name, &company.Telephone,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Notes = notes.String
	task.AssignedTo = assignee.Ref()
	if ref := patient.Ref(domain.ClientTypePatient); ref != nil {
		task.Client = ref
	} else {
		task.Client = company.Ref(domain.ClientTypeCompany)
	}

	return &task, nil
}
