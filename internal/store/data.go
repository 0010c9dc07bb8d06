package store

import (
	"database/sql"
	"fmt"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/events"
	"github.com/nooksapp/nooks/internal/merge"
)

// LoadBucket satisfies the sync layer's entity loader.
func (s *Store) LoadBucket(id int64) (*domain.Bucket, error) {
	return s.Buckets.Get(id)
}

// LoadTask satisfies the sync layer's entity loader.
func (s *Store) LoadTask(id int64) (*domain.Task, error) {
	return s.Tasks.Get(id)
}

// Data returns the full local dataset.
func (s *Store) Data() (merge.Data, error) {
	buckets, err := s.Buckets.All()
	if err != nil {
		return merge.Data{}, err
	}
	tasks, err := s.Tasks.All()
	if err != nil {
		return merge.Data{}, err
	}
	return merge.Data{Buckets: buckets, Tasks: tasks}, nil
}

// InsertMerged inserts the reconciler's net-new items through ordinary
// add operations. Net-new tasks still reference bucket ids from the
// incoming dataset, which are meaningless here; each is re-bound to the
// post-merge local bucket by name. On a name collision the oldest local
// bucket wins.
func (s *Store) InsertMerged(netNew merge.Data, incomingBuckets []domain.Bucket) error {
	for _, b := range netNew.Buckets {
		if _, err := s.Buckets.Insert(b); err != nil {
			return fmt.Errorf("failed to insert merged bucket %q: %w", b.Name, err)
		}
	}

	if len(netNew.Tasks) == 0 {
		return nil
	}

	local, err := s.Buckets.All()
	if err != nil {
		return err
	}
	byName := make(map[string]int64, len(local))
	for _, b := range local {
		key := merge.FoldName(b.Name)
		if _, ok := byName[key]; !ok {
			byName[key] = b.ID
		}
	}

	for _, t := range netNew.Tasks {
		t.BucketID = resolveBucket(t, incomingBuckets, byName)
		if _, err := s.Tasks.Insert(t); err != nil {
			return fmt.Errorf("failed to insert merged task %q: %w", t.Title, err)
		}
	}
	return nil
}

// Clear deletes every task and bucket in one transaction. Used by the
// Replace import path before re-inserting the backup's contents.
func (s *Store) Clear() error {
	return s.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		var muts []Mutation

		collect := func(table, entity string) error {
			rows, err := tx.Query(fmt.Sprintf("SELECT id FROM %s", table))
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", table, err)
			}
			defer rows.Close()
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					return fmt.Errorf("failed to scan %s id: %w", table, err)
				}
				muts = append(muts, Mutation{Op: "delete", Entity: entity, ID: id})
			}
			return rows.Err()
		}
		if err := collect("tasks", "task"); err != nil {
			return nil, err
		}
		if err := collect("buckets", "bucket"); err != nil {
			return nil, err
		}

		if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
			return nil, fmt.Errorf("failed to clear tasks: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM buckets`); err != nil {
			return nil, fmt.Errorf("failed to clear buckets: %w", err)
		}

		if err := ew.LogMutation(tx, "store", 0, "store.cleared", map[string]interface{}{
			"deleted": len(muts),
		}); err != nil {
			return nil, fmt.Errorf("failed to log event: %w", err)
		}

		return muts, nil
	})
}

func resolveBucket(t domain.Task, incomingBuckets []domain.Bucket, byName map[string]int64) *int64 {
	name, ok := merge.BucketNameFor(t, incomingBuckets)
	if !ok {
		return nil
	}
	if id, ok := byName[merge.FoldName(name)]; ok {
		return &id
	}
	return nil
}
