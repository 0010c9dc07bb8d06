package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/merge"
	"github.com/nooksapp/nooks/internal/remote"
)

// memoryCallbacks backs the coordinator with plain slices.
type memoryCallbacks struct {
	data     merge.Data
	inserted []merge.Data
}

func (m *memoryCallbacks) callbacks() Callbacks {
	return Callbacks{
		GetLocalData: func() (merge.Data, error) { return m.data, nil },
		InsertMergedItems: func(netNew merge.Data, incomingBuckets []domain.Bucket) error {
			m.inserted = append(m.inserted, netNew)
			m.data.Buckets = append(m.data.Buckets, netNew.Buckets...)
			m.data.Tasks = append(m.data.Tasks, netNew.Tasks...)
			return nil
		},
		GetAllLocalData: func() (merge.Data, error) { return m.data, nil },
	}
}

func TestCoordinatorMergesAndPushesBack(t *testing.T) {
	client := remote.NewMemoryClient()
	ctx := context.Background()
	if err := client.PutBucket(ctx, "acct-1", domain.Bucket{ID: 7, Name: "Errands"}); err != nil {
		t.Fatal(err)
	}
	if err := client.PutTask(ctx, "acct-1", domain.Task{ID: 70, Title: "buy stamps"}); err != nil {
		t.Fatal(err)
	}

	local := &memoryCallbacks{data: merge.Data{
		Buckets: []domain.Bucket{{ID: 1, Name: "Work"}},
		Tasks:   []domain.Task{{ID: 10, Title: "report"}},
	}}

	coord := NewCoordinator(client, quietLogger())
	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	if err := coord.Run(ctx, sess, local.callbacks()); err != nil {
		t.Fatal(err)
	}

	if coord.StateFor("acct-1") != StateSynced {
		t.Errorf("state = %s", coord.StateFor("acct-1"))
	}

	// Remote-only items landed locally.
	if len(local.inserted) != 1 {
		t.Fatalf("inserted %d batches", len(local.inserted))
	}
	if len(local.inserted[0].Buckets) != 1 || local.inserted[0].Buckets[0].Name != "Errands" {
		t.Errorf("net-new buckets = %+v", local.inserted[0].Buckets)
	}

	// Push-back mirrored the local-only items remotely.
	if client.BucketCount("acct-1") != 2 {
		t.Errorf("remote has %d buckets", client.BucketCount("acct-1"))
	}
	if client.TaskCount("acct-1") != 2 {
		t.Errorf("remote has %d tasks", client.TaskCount("acct-1"))
	}
}

func TestCoordinatorRunsAtMostOncePerAccount(t *testing.T) {
	client := remote.NewMemoryClient()
	local := &memoryCallbacks{}

	coord := NewCoordinator(client, quietLogger())
	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	if err := coord.Run(context.Background(), sess, local.callbacks()); err != nil {
		t.Fatal(err)
	}

	inserts := len(local.inserted)

	// Second run is skipped entirely.
	if err := coord.Run(context.Background(), sess, local.callbacks()); err != nil {
		t.Fatal(err)
	}
	if len(local.inserted) != inserts {
		t.Error("second run inserted data")
	}
	if coord.StateFor("acct-1") != StateSynced {
		t.Errorf("state = %s", coord.StateFor("acct-1"))
	}
}

func TestCoordinatorSkipsAfterErrorState(t *testing.T) {
	client := remote.NewMemoryClient()
	client.SetErr(errors.New("remote down"))
	local := &memoryCallbacks{}

	coord := NewCoordinator(client, quietLogger())
	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	if err := coord.Run(context.Background(), sess, local.callbacks()); err == nil {
		t.Fatal("expected first run to fail")
	}
	if coord.StateFor("acct-1") != StateError {
		t.Errorf("state = %s", coord.StateFor("acct-1"))
	}

	// The account was seen; recovery does not retry within this process
	// even after the remote comes back.
	client.SetErr(nil)
	if err := coord.Run(context.Background(), sess, local.callbacks()); err != nil {
		t.Fatal(err)
	}
	if len(local.inserted) != 0 {
		t.Error("skipped run inserted data")
	}
	if coord.StateFor("acct-1") != StateError {
		t.Errorf("state = %s after skipped rerun", coord.StateFor("acct-1"))
	}
}

func TestCoordinatorDistinctAccountsSyncIndependently(t *testing.T) {
	client := remote.NewMemoryClient()
	coord := NewCoordinator(client, quietLogger())

	a := &memoryCallbacks{}
	b := &memoryCallbacks{data: merge.Data{Tasks: []domain.Task{{ID: 1, Title: "b only"}}}}

	if err := coord.Run(context.Background(), Session{AccountID: "acct-a", Email: "a@x"}, a.callbacks()); err != nil {
		t.Fatal(err)
	}
	if err := coord.Run(context.Background(), Session{AccountID: "acct-b", Email: "b@x"}, b.callbacks()); err != nil {
		t.Fatal(err)
	}

	if coord.StateFor("acct-a") != StateSynced || coord.StateFor("acct-b") != StateSynced {
		t.Error("both accounts should be synced")
	}
	if client.TaskCount("acct-b") != 1 {
		t.Error("acct-b push-back missing")
	}
	if client.TaskCount("acct-a") != 0 {
		t.Error("acct-a gained tasks from acct-b")
	}
}

func TestCoordinatorRequiresSession(t *testing.T) {
	coord := NewCoordinator(remote.NewMemoryClient(), quietLogger())
	if err := coord.Run(context.Background(), Session{}, Callbacks{}); err == nil {
		t.Fatal("expected error for inactive session")
	}
}

func TestCoordinatorTimeout(t *testing.T) {
	client := remote.NewMemoryClient()
	local := &memoryCallbacks{}

	coord := NewCoordinator(client, quietLogger())
	coord.SetTimeout(time.Nanosecond)

	sess := Session{AccountID: "acct-slow", Email: "s@x"}
	err := coord.Run(context.Background(), sess, local.callbacks())
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if coord.StateFor("acct-slow") != StateError {
		t.Errorf("state = %s", coord.StateFor("acct-slow"))
	}
}

func TestStateForUnknownAccount(t *testing.T) {
	coord := NewCoordinator(remote.NewMemoryClient(), quietLogger())
	if st := coord.StateFor("nobody"); st != StateUnauthenticated {
		t.Errorf("state = %s", st)
	}
}
