package store

import (
	"database/sql"
	"fmt"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/events"
)

// BucketStore handles bucket persistence operations.
type BucketStore struct {
	store *Store
}

// Add creates a new bucket and returns its id once durably written.
func (bs *BucketStore) Add(name, emoji string) (int64, error) {
	if err := domain.ValidateBucketName(name); err != nil {
		return 0, err
	}

	var id int64
	err := bs.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`INSERT INTO buckets (name, emoji) VALUES (?, ?)`, name, emoji)
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get bucket id: %w", err)
		}

		if err := ew.LogMutation(tx, "bucket", id, "bucket.created", map[string]interface{}{
			"name": name,
		}); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "upsert", Entity: "bucket", ID: id}}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Insert writes a bucket row preserving its fields but never its id; the
// store assigns a fresh one. Used by backup import and merge insertion.
func (bs *BucketStore) Insert(b domain.Bucket) (int64, error) {
	if err := domain.ValidateBucketName(b.Name); err != nil {
		return 0, err
	}
	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		var id int64
		err := bs.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
			res, err := tx.Exec(`INSERT INTO buckets (name, emoji) VALUES (?, ?)`, b.Name, b.Emoji)
			if err != nil {
				return nil, fmt.Errorf("failed to insert bucket: %w", err)
			}
			id, _ = res.LastInsertId()
			if err := ew.LogMutation(tx, "bucket", id, "bucket.created", nil); err != nil {
				return nil, fmt.Errorf("failed to log event: %w", err)
			}
			return []Mutation{{Op: "upsert", Entity: "bucket", ID: id}}, nil
		})
		return id, err
	}

	var id int64
	err := bs.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`INSERT INTO buckets (name, emoji, created_at) VALUES (?, ?, ?)`,
			b.Name, b.Emoji, formatTime(createdAt))
		if err != nil {
			return nil, fmt.Errorf("failed to insert bucket: %w", err)
		}
		id, _ = res.LastInsertId()
		if err := ew.LogMutation(tx, "bucket", id, "bucket.created", nil); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}
		return []Mutation{{Op: "upsert", Entity: "bucket", ID: id}}, nil
	})
	return id, err
}

// Update changes a bucket's name and emoji.
func (bs *BucketStore) Update(id int64, name, emoji string) error {
	if err := domain.ValidateBucketName(name); err != nil {
		return err
	}

	return bs.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		res, err := tx.Exec(`UPDATE buckets SET name = ?, emoji = ? WHERE id = ?`, name, emoji, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update bucket: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil, fmt.Errorf("bucket %d: %w", id, domain.ErrNotFound)
		}

		if err := ew.LogMutation(tx, "bucket", id, "bucket.updated", map[string]interface{}{
			"name": name,
		}); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return []Mutation{{Op: "upsert", Entity: "bucket", ID: id}}, nil
	})
}

// Delete removes a bucket. Dependent tasks lose their bucket_id in the
// same transaction, so a crash mid-operation can never leave a dangling
// reference. The tasks themselves are never deleted.
func (bs *BucketStore) Delete(id int64) error {
	return bs.store.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		rows, err := tx.Query(`SELECT id FROM tasks WHERE bucket_id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to query dependent tasks: %w", err)
		}
		var unassigned []int64
		for rows.Next() {
			var taskID int64
			if err := rows.Scan(&taskID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan task id: %w", err)
			}
			unassigned = append(unassigned, taskID)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("error iterating tasks: %w", err)
		}

		if _, err := tx.Exec(`UPDATE tasks SET bucket_id = NULL WHERE bucket_id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to unassign tasks: %w", err)
		}

		res, err := tx.Exec(`DELETE FROM buckets WHERE id = ?`, id)
		if err != nil {
			return nil, fmt.Errorf("failed to delete bucket: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return nil, fmt.Errorf("bucket %d: %w", id, domain.ErrNotFound)
		}

		if err := ew.LogMutation(tx, "bucket", id, "bucket.deleted", map[string]interface{}{
			"unassigned_tasks": len(unassigned),
		}); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		muts := []Mutation{{Op: "delete", Entity: "bucket", ID: id}}
		for _, taskID := range unassigned {
			muts = append(muts, Mutation{Op: "upsert", Entity: "task", ID: taskID})
		}
		return muts, nil
	})
}

// Get retrieves a bucket by id.
func (bs *BucketStore) Get(id int64) (*domain.Bucket, error) {
	b := &domain.Bucket{}
	var createdAt string
	err := bs.store.db.QueryRow(`
		SELECT id, name, emoji, created_at FROM buckets WHERE id = ?
	`, id).Scan(&b.ID, &b.Name, &b.Emoji, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("bucket %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get bucket: %w", err)
	}
	b.CreatedAt = parseTime(createdAt)
	return b, nil
}

// All returns every bucket ordered by creation.
func (bs *BucketStore) All() ([]domain.Bucket, error) {
	rows, err := bs.store.db.Query(`
		SELECT id, name, emoji, created_at FROM buckets ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	var buckets []domain.Bucket
	for rows.Next() {
		var b domain.Bucket
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Name, &b.Emoji, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		b.CreatedAt = parseTime(createdAt)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// Count returns the number of buckets.
func (bs *BucketStore) Count() (int, error) {
	var n int
	if err := bs.store.db.QueryRow(`SELECT COUNT(*) FROM buckets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count buckets: %w", err)
	}
	return n, nil
}
