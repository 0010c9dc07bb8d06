package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/events"
)

// TaskStore handles task persistence operations.
type TaskStore struct {
	store *Store
}

// AddParams contains parameters for creating a new task.
type AddParams struct {
	Title          string
	Details        string
	BucketID       *int64
	Status         domain.TaskStatus // defaults to todo
	IsUrgent       bool
	IsImportant    bool
	DueDate        *time.Time
	ContributorUID *string // set when accepting an inbox item
}

// Add creates a new task and returns its id once durably written.
func (ts *TaskStore) Add(params AddParams) (int64, error) {
	if err := domain.ValidateTaskTitle(params.Title); err != nil {
		return 0, err
	}
	status := params.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	if err := domain.ValidateTaskStatus(string(status)); err != nil {
		return 0, err
	}

	// A task born done is complete from the start
	var completedAt *string
	if status == domain.TaskStatusDone {
		now := formatTime(time.Now())
		completedAt = &now
	}

	var id int64
	err := ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`
			INSERT INTO tasks (title, details, bucket_id, status, is_urgent, is_important, due_date, completed_at, contributor_uid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, params.Title, params.Details, params.BucketID, string(status),
			params.IsUrgent, params.IsImportant, formatTimePtr(params.DueDate), completedAt,
			params.ContributorUID)
		if err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get task id: %w", err)
		}

		if err := ew.LogMutation(tx, "task", id, "task.created", map[string]interface{}{
			"title":  params.Title,
			"status": string(status),
		}); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "upsert", Entity: "task", ID: id}}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Insert writes a task row preserving its fields but never its id; the
// store assigns a fresh one. Used by backup import and merge insertion.
// The completed-at invariant is normalized on the way in.
func (ts *TaskStore) Insert(t domain.Task) (int64, error) {
	if err := domain.ValidateTaskTitle(t.Title); err != nil {
		return 0, err
	}
	if t.Status == "" {
		t.Status = domain.TaskStatusTodo
	}
	if err := domain.ValidateTaskStatus(string(t.Status)); err != nil {
		return 0, err
	}

	if t.Status != domain.TaskStatusDone {
		t.CompletedAt = nil
	} else if t.CompletedAt == nil {
		now := time.Now()
		t.CompletedAt = &now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	var id int64
	err := ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`
			INSERT INTO tasks (title, details, bucket_id, status, is_urgent, is_important, due_date, created_at, completed_at, contributor_uid)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.Title, t.Details, t.BucketID, string(t.Status),
			t.IsUrgent, t.IsImportant, formatTimePtr(t.DueDate),
			formatTime(t.CreatedAt), formatTimePtr(t.CompletedAt), t.ContributorUID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert task: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get task id: %w", err)
		}

		if err := ew.LogMutation(tx, "task", id, "task.created", nil); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "upsert", Entity: "task", ID: id}}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateFields updates the given columns on a task. Keys are column
// names; time values may be passed as time.Time, *time.Time, or nil.
//
// The completed-at rule is enforced here: transitioning into done sets
// completed_at (unless the caller supplied one explicitly), and any
// transition away from done clears it.
func (ts *TaskStore) UpdateFields(id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if v, ok := fields["status"]; ok {
		if err := domain.ValidateTaskStatus(fmt.Sprintf("%v", v)); err != nil {
			return err
		}
	}
	if v, ok := fields["title"]; ok {
		if err := domain.ValidateTaskTitle(fmt.Sprintf("%v", v)); err != nil {
			return err
		}
	}

	return ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		var currentStatus string
		err := tx.QueryRow(`SELECT status FROM tasks WHERE id = ?`, id).Scan(&currentStatus)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get task: %w", err)
		}

		if newStatus, ok := fields["status"]; ok {
			ns := fmt.Sprintf("%v", newStatus)
			switch {
			case ns == string(domain.TaskStatusDone) && currentStatus != string(domain.TaskStatusDone):
				if _, supplied := fields["completed_at"]; !supplied {
					fields["completed_at"] = time.Now()
				}
			case ns != string(domain.TaskStatusDone):
				fields["completed_at"] = nil
			}
		}

		var setClauses []string
		var args []interface{}
		for key, value := range fields {
			setClauses = append(setClauses, fmt.Sprintf("%s = ?", key))
			args = append(args, toDBValue(value))
		}
		args = append(args, id)

		query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(setClauses, ", "))
		if _, err := tx.Exec(query, args...); err != nil {
			return nil, fmt.Errorf("failed to update task: %w", err)
		}

		if err := ew.LogMutation(tx, "task", id, "task.updated", journalPayload(fields)); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "upsert", Entity: "task", ID: id}}, nil
	})
}

// Delete removes a task.
func (ts *TaskStore) Delete(id int64) error {
	return ts.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to delete task: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
		}

		if err := ew.LogMutation(tx, "task", id, "task.deleted", nil); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "delete", Entity: "task", ID: id}}, nil
	})
}

// Get retrieves a task by id.
func (ts *TaskStore) Get(id int64) (*domain.Task, error) {
	row := ts.store.db.QueryRow(taskSelect+` WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// All returns every task ordered by creation.
func (ts *TaskStore) All() ([]domain.Task, error) {
	return ts.queryTasks(taskSelect + ` ORDER BY id`)
}

// ByBucket returns every task bound to the given bucket.
func (ts *TaskStore) ByBucket(bucketID int64) ([]domain.Task, error) {
	return ts.queryTasks(taskSelect+` WHERE bucket_id = ? ORDER BY id`, bucketID)
}

// Count returns the number of tasks.
func (ts *TaskStore) Count() (int, error) {
	var n int
	if err := ts.store.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

const taskSelect = `
	SELECT id, title, details, bucket_id, status, is_urgent, is_important,
	       due_date, created_at, completed_at, contributor_uid
	FROM tasks`

func (ts *TaskStore) queryTasks(query string, args ...interface{}) ([]domain.Task, error) {
	rows, err := ts.store.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	t := &domain.Task{}
	var bucketID sql.NullInt64
	var status, createdAt string
	var dueDate, completedAt, contributorUID sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Details, &bucketID, &status,
		&t.IsUrgent, &t.IsImportant, &dueDate, &createdAt, &completedAt, &contributorUID)
	if err != nil {
		return nil, err
	}

	if bucketID.Valid {
		t.BucketID = &bucketID.Int64
	}
	t.Status = domain.TaskStatus(status)
	t.DueDate = parseTimePtr(dueDate)
	t.CreatedAt = parseTime(createdAt)
	t.CompletedAt = parseTimePtr(completedAt)
	if contributorUID.Valid {
		t.ContributorUID = &contributorUID.String
	}
	return t, nil
}

// toDBValue converts Go time values into the store's string layout.
func toDBValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case time.Time:
		return formatTime(tv)
	case *time.Time:
		if tv == nil {
			return nil
		}
		return formatTime(*tv)
	default:
		return v
	}
}

// journalPayload renders field changes for the mutation journal.
func journalPayload(fields map[string]interface{}) map[string]interface{} {
	payload := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		payload[k] = toDBValue(v)
	}
	return payload
}
