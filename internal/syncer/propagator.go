package syncer

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nooksapp/nooks/internal/domain"
	"github.com/nooksapp/nooks/internal/remote"
	"github.com/nooksapp/nooks/internal/store"
)

const (
	defaultQueueSize = 256
	maxAttempts      = 3
	baseRetryDelay   = 250 * time.Millisecond
	maxRetryDelay    = 2 * time.Second
	sendTimeout      = 10 * time.Second
)

// Loader reads current entity state at send time, so the mirror always
// carries the latest committed row rather than a stale snapshot.
type Loader interface {
	LoadBucket(id int64) (*domain.Bucket, error)
	LoadTask(id int64) (*domain.Task, error)
}

type op struct {
	id     string
	sess   Session
	op     string // "upsert" or "delete"
	entity string // "bucket" or "task"
	entID  int64
}

// Propagator is the best-effort outbox mirroring local mutations to the
// remote store. Enqueue never blocks the mutation's caller and no
// failure ever surfaces: a remote miss is repaired by the next local
// write or by the initial sync's push-back step.
type Propagator struct {
	client remote.Client
	loader Loader
	logger *log.Logger

	mu      sync.Mutex
	queue   chan op
	pending int
	closed  bool
	done    chan struct{}
}

// NewPropagator creates a propagator and starts its worker. If logger
// is nil, a default stderr logger is used.
func NewPropagator(client remote.Client, loader Loader, logger *log.Logger) *Propagator {
	if logger == nil {
		logger = NewLogger("")
	}
	p := &Propagator{
		client: client,
		loader: loader,
		logger: logger,
		queue:  make(chan op, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go p.worker()
	return p
}

// Bind returns a store.Notifier that enqueues every mutation for the
// given session.
func (p *Propagator) Bind(sess Session) store.Notifier {
	return boundNotifier{p: p, sess: sess}
}

type boundNotifier struct {
	p    *Propagator
	sess Session
}

func (n boundNotifier) Notify(m store.Mutation) {
	n.p.Enqueue(n.sess, m)
}

// Enqueue queues a mutation for remote mirroring. It is a clean no-op
// when no account is signed in or the entity has no id yet. A full
// queue drops the op with a warning; the mirror is best-effort.
func (p *Propagator) Enqueue(sess Session, m store.Mutation) {
	if !sess.Active() || m.ID == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	o := op{
		id:     uuid.NewString(),
		sess:   sess,
		op:     m.Op,
		entity: m.Entity,
		entID:  m.ID,
	}
	select {
	case p.queue <- o:
		p.pending++
	default:
		p.logger.Printf("WARNING: outbox full, dropping %s %s/%d", m.Op, m.Entity, m.ID)
	}
}

// Pending returns the number of queued, not-yet-completed operations.
func (p *Propagator) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}

// Close stops accepting new operations, drains the queue, and waits for
// the worker to finish.
func (p *Propagator) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()
	<-p.done
}

func (p *Propagator) worker() {
	for o := range p.queue {
		p.process(o)
		p.mu.Lock()
		p.pending--
		p.mu.Unlock()
	}
	close(p.done)
}

// process retries with capped backoff, then gives up. Failures are
// logged here and nowhere else; the local mutation already succeeded.
func (p *Propagator) process(o op) {
	delay := baseRetryDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := p.send(o)
		if err == nil {
			return
		}
		p.logger.Printf("WARNING: %s %s/%d (op %s) attempt %d/%d failed: %v",
			o.op, o.entity, o.entID, o.id, attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(delay)
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}
	p.logger.Printf("WARNING: giving up on %s %s/%d (op %s)", o.op, o.entity, o.entID, o.id)
}

func (p *Propagator) send(o op) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	switch {
	case o.entity == "bucket" && o.op == "upsert":
		b, err := p.loader.LoadBucket(o.entID)
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted locally before the mirror caught up; the delete
			// mutation that follows handles the remote side.
			return nil
		}
		if err != nil {
			return err
		}
		return p.client.PutBucket(ctx, o.sess.AccountID, *b)
	case o.entity == "bucket" && o.op == "delete":
		return p.client.DeleteBucket(ctx, o.sess.AccountID, o.entID)
	case o.entity == "task" && o.op == "upsert":
		t, err := p.loader.LoadTask(o.entID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return p.client.PutTask(ctx, o.sess.AccountID, *t)
	case o.entity == "task" && o.op == "delete":
		return p.client.DeleteTask(ctx, o.sess.AccountID, o.entID)
	default:
		p.logger.Printf("WARNING: unknown outbox op %s %s", o.op, o.entity)
		return nil
	}
}
