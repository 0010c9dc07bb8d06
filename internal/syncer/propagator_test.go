package syncer

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/remote"
	"github.com/nooksapp/nooks/internal/store"
)

// fakeLoader serves entities from maps, standing in for the local store.
type fakeLoader struct {
	buckets map[int64]domain.Bucket
	tasks   map[int64]domain.Task
}

func (f *fakeLoader) LoadBucket(id int64) (*domain.Bucket, error) {
	b, ok := f.buckets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (f *fakeLoader) LoadTask(id int64) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func waitDrained(t *testing.T, p *Propagator) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if p.Pending() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("propagator still has %d pending ops", p.Pending())
}

func TestPropagatorMirrorsMutations(t *testing.T) {
	client := remote.NewMemoryClient()
	loader := &fakeLoader{
		buckets: map[int64]domain.Bucket{1: {ID: 1, Name: "Work"}},
		tasks:   map[int64]domain.Task{10: {ID: 10, Title: "report"}},
	}
	p := NewPropagator(client, loader, quietLogger())
	defer p.Close()

	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	p.Enqueue(sess, store.Mutation{Op: "upsert", Entity: "bucket", ID: 1})
	p.Enqueue(sess, store.Mutation{Op: "upsert", Entity: "task", ID: 10})
	waitDrained(t, p)

	if client.BucketCount("acct-1") != 1 {
		t.Error("bucket not mirrored")
	}
	if client.TaskCount("acct-1") != 1 {
		t.Error("task not mirrored")
	}
}

func TestPropagatorDeleteMirrors(t *testing.T) {
	client := remote.NewMemoryClient()
	loader := &fakeLoader{buckets: map[int64]domain.Bucket{1: {ID: 1, Name: "Work"}}}
	p := NewPropagator(client, loader, quietLogger())
	defer p.Close()

	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	p.Enqueue(sess, store.Mutation{Op: "upsert", Entity: "bucket", ID: 1})
	waitDrained(t, p)

	p.Enqueue(sess, store.Mutation{Op: "delete", Entity: "bucket", ID: 1})
	waitDrained(t, p)

	if client.BucketCount("acct-1") != 0 {
		t.Error("delete not mirrored")
	}
}

func TestPropagatorNoopWhenSignedOut(t *testing.T) {
	client := remote.NewMemoryClient()
	p := NewPropagator(client, &fakeLoader{}, quietLogger())
	defer p.Close()

	p.Enqueue(Session{}, store.Mutation{Op: "upsert", Entity: "bucket", ID: 1})

	if p.Pending() != 0 {
		t.Error("signed-out enqueue should be a no-op")
	}
}

func TestPropagatorSwallowsRemoteFailure(t *testing.T) {
	client := remote.NewMemoryClient()
	client.SetErr(errors.New("remote down"))
	loader := &fakeLoader{buckets: map[int64]domain.Bucket{1: {ID: 1, Name: "Work"}}}
	p := NewPropagator(client, loader, quietLogger())
	defer p.Close()

	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	p.Enqueue(sess, store.Mutation{Op: "upsert", Entity: "bucket", ID: 1})

	// Drains despite the failing remote; no error surfaces anywhere.
	waitDrained(t, p)
	if client.BucketCount("acct-1") != 0 {
		t.Error("write should not have landed")
	}
}

func TestPropagatorEntityDeletedBeforeSend(t *testing.T) {
	client := remote.NewMemoryClient()
	// Loader holds nothing: the entity vanished before the mirror ran.
	p := NewPropagator(client, &fakeLoader{}, quietLogger())
	defer p.Close()

	sess := Session{AccountID: "acct-1", Email: "a@example.com"}
	p.Enqueue(sess, store.Mutation{Op: "upsert", Entity: "task", ID: 42})
	waitDrained(t, p)

	if client.TaskCount("acct-1") != 0 {
		t.Error("vanished entity should not be mirrored")
	}
}

func TestPropagatorBindNotifier(t *testing.T) {
	client := remote.NewMemoryClient()
	loader := &fakeLoader{buckets: map[int64]domain.Bucket{3: {ID: 3, Name: "Home"}}}
	p := NewPropagator(client, loader, quietLogger())
	defer p.Close()

	n := p.Bind(Session{AccountID: "acct-2", Email: "b@example.com"})
	n.Notify(store.Mutation{Op: "upsert", Entity: "bucket", ID: 3})
	waitDrained(t, p)

	if client.BucketCount("acct-2") != 1 {
		t.Error("bound notifier did not mirror")
	}
}
