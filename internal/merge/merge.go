// Package merge computes net-new items between two task datasets.
//
// Identity is name-based, never id-based: local and remote stores assign
// ids independently, so the same bucket or task carries different ids in
// different stores. A bucket is identified by its case-folded name; a
// task by its case-folded title plus the case-folded name of the bucket
// it is bound to (or a sentinel when unfiled).
package merge

import (
	"strings"

	"github.com/nooksapp/nooks/internal/domain"
)

// unfiledKey stands in for the bucket name of tasks with no bucket.
// NUL cannot appear in a real bucket name.
const unfiledKey = "\x00unfiled"

// Data is a {buckets, tasks} collection pair.
type Data struct {
	Buckets []domain.Bucket `json:"buckets"`
	Tasks   []domain.Task   `json:"tasks"`
}

// Merge returns the items in incoming that are not already present in
// existing. The result carries stripped (zero) ids: the destination
// store assigns fresh ones on insert. Neither argument is mutated.
//
// Dedup only compares incoming against existing; two incoming items
// sharing an identity pass through unchanged.
func Merge(existing, incoming Data) Data {
	existingBucketNames := make(map[string]bool, len(existing.Buckets))
	for _, b := range existing.Buckets {
		existingBucketNames[FoldName(b.Name)] = true
	}

	var newBuckets []domain.Bucket
	for _, b := range incoming.Buckets {
		if existingBucketNames[FoldName(b.Name)] {
			continue
		}
		nb := b
		nb.ID = 0
		newBuckets = append(newBuckets, nb)
	}

	existingByID := bucketNamesByID(existing.Buckets)
	incomingByID := bucketNamesByID(incoming.Buckets)

	existingKeys := make(map[string]bool, len(existing.Tasks))
	for _, t := range existing.Tasks {
		existingKeys[taskKey(t, existingByID)] = true
	}

	var newTasks []domain.Task
	for _, t := range incoming.Tasks {
		if existingKeys[taskKey(t, incomingByID)] {
			continue
		}
		nt := t
		nt.ID = 0
		newTasks = append(newTasks, nt)
	}

	return Data{Buckets: newBuckets, Tasks: newTasks}
}

// BucketNameFor resolves a task's bucket name within its own dataset,
// for re-binding merged tasks to post-merge bucket ids.
func BucketNameFor(t domain.Task, buckets []domain.Bucket) (string, bool) {
	if t.BucketID == nil {
		return "", false
	}
	for _, b := range buckets {
		if b.ID == *t.BucketID {
			return b.Name, true
		}
	}
	return "", false
}

func bucketNamesByID(buckets []domain.Bucket) map[int64]string {
	m := make(map[int64]string, len(buckets))
	for _, b := range buckets {
		m[b.ID] = b.Name
	}
	return m
}

// taskKey computes a task's merge identity against its own dataset's
// bucket list. A bucket reference that cannot be resolved counts as
// unfiled rather than failing the merge.
func taskKey(t domain.Task, bucketNames map[int64]string) string {
	bucketKey := unfiledKey
	if t.BucketID != nil {
		if name, ok := bucketNames[*t.BucketID]; ok {
			bucketKey = FoldName(name)
		}
	}
	return FoldName(t.Title) + "|" + bucketKey
}

// FoldName case-folds a bucket name or task title for identity
// comparison.
func FoldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
