package store

import (
	"database/sql"
	"fmt"

	"github.com/nooksapp/nooks/internal/events"
)

type seedBucket struct {
	name  string
	emoji string
}

type seedTask struct {
	title  string
	bucket string // seed bucket name, empty = unfiled
}

var seedBuckets = []seedBucket{
	{name: "Personal", emoji: "🏠"},
	{name: "Work", emoji: "💼"},
	{name: "Someday", emoji: "🌙"},
}

var seedTasks = []seedTask{
	{title: "Add your first task", bucket: "Personal"},
	{title: "Create a bucket for a project", bucket: "Work"},
	{title: "Export a backup", bucket: ""},
}

// SeedIfEmpty inserts the starter dataset if the store holds no buckets.
// Returns true if seeding ran. The emptiness check and the inserts are
// not protected against a truly concurrent caller; the second of two
// sequential calls is always a no-op.
func (s *Store) SeedIfEmpty() (bool, error) {
	count, err := s.Buckets.Count()
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err = s.withTx(func(tx *sql.Tx, ew *events.Writer) ([]Mutation, error) {
		var muts []Mutation
		bucketIDs := make(map[string]int64, len(seedBuckets))

		for _, b := range seedBuckets {
			res, err := tx.Exec(`INSERT INTO buckets (name, emoji) VALUES (?, ?)`, b.name, b.emoji)
			if err != nil {
				return nil, fmt.Errorf("failed to seed bucket %q: %w", b.name, err)
			}
			id, _ := res.LastInsertId()
			bucketIDs[b.name] = id
			if err := ew.LogMutation(tx, "bucket", id, "bucket.created", map[string]interface{}{"seed": true}); err != nil {
				return nil, fmt.Errorf("failed to log event: %w", err)
			}
			muts = append(muts, Mutation{Op: "upsert", Entity: "bucket", ID: id})
		}

		for _, t := range seedTasks {
			var bucketID interface{}
			if t.bucket != "" {
				bucketID = bucketIDs[t.bucket]
			}
			res, err := tx.Exec(`INSERT INTO tasks (title, bucket_id) VALUES (?, ?)`, t.title, bucketID)
			if err != nil {
				return nil, fmt.Errorf("failed to seed task %q: %w", t.title, err)
			}
			id, _ := res.LastInsertId()
			if err := ew.LogMutation(tx, "task", id, "task.created", map[string]interface{}{"seed": true}); err != nil {
				return nil, fmt.Errorf("failed to log event: %w", err)
			}
			muts = append(muts, Mutation{Op: "upsert", Entity: "task", ID: id})
		}

		return muts, nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
