package backup

import (
	"fmt"

	"github.com/nooksapp/nooks/internal/merge"
	"github.com/nooksapp/nooks/internal/store"
)

// Mode selects the terminal import behavior.
type Mode string

const (
	// ModeReplace clears the local store, then inserts every backup
	// item with its id stripped.
	ModeReplace Mode = "replace"

	// ModeMerge inserts only the reconciler's net-new items.
	ModeMerge Mode = "merge"
)

// Result summarizes what an import changed.
type Result struct {
	Mode         Mode `json:"mode"`
	BucketsAdded int  `json:"buckets_added"`
	TasksAdded   int  `json:"tasks_added"`
	Cleared      bool `json:"cleared,omitempty"`
}

// Import restores a validated backup document into the local store.
// Validation has already run by the time a Document exists; nothing
// here mutates anything before its preconditions hold.
func Import(s *store.Store, doc *Document, mode Mode) (*Result, error) {
	switch mode {
	case ModeReplace:
		return importReplace(s, doc)
	case ModeMerge:
		return importMerge(s, doc)
	default:
		return nil, fmt.Errorf("invalid import mode: %q", mode)
	}
}

// importReplace clears the store and re-inserts the backup's contents.
// Raw backup ids are stripped on insert; bucket bindings are carried
// over by re-mapping each task's old bucket id to the freshly assigned
// one.
func importReplace(s *store.Store, doc *Document) (*Result, error) {
	if err := s.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear store: %w", err)
	}

	idMap := make(map[int64]int64, len(doc.Buckets))
	for _, b := range doc.Buckets {
		oldID := b.ID
		newID, err := s.Buckets.Insert(b)
		if err != nil {
			return nil, fmt.Errorf("failed to restore bucket %q: %w", b.Name, err)
		}
		idMap[oldID] = newID
	}

	for _, t := range doc.Tasks {
		if t.BucketID != nil {
			if newID, ok := idMap[*t.BucketID]; ok {
				t.BucketID = &newID
			} else {
				t.BucketID = nil
			}
		}
		if _, err := s.Tasks.Insert(t); err != nil {
			return nil, fmt.Errorf("failed to restore task %q: %w", t.Title, err)
		}
	}

	return &Result{
		Mode:         ModeReplace,
		BucketsAdded: len(doc.Buckets),
		TasksAdded:   len(doc.Tasks),
		Cleared:      true,
	}, nil
}

// importMerge reconciles the backup against the current dataset and
// inserts only the net-new items. Each net-new task's bucket reference
// is resolved to the post-merge local bucket by name, since raw backup
// ids are not trustworthy after reconciliation.
func importMerge(s *store.Store, doc *Document) (*Result, error) {
	current, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("failed to read current data: %w", err)
	}

	incoming := merge.Data{Buckets: doc.Buckets, Tasks: doc.Tasks}
	netNew := merge.Merge(current, incoming)

	if err := s.InsertMerged(netNew, doc.Buckets); err != nil {
		return nil, err
	}

	return &Result{
		Mode:         ModeMerge,
		BucketsAdded: len(netNew.Buckets),
		TasksAdded:   len(netNew.Tasks),
	}, nil
}
